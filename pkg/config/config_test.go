package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", "")
	t.Setenv("FREE_MAX_PHOTOS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultAdminEmails, cfg.AdminEmails)
	assert.Equal(t, 5, cfg.Quotas.FreeMaxPhotos)
	assert.Equal(t, 100, cfg.Quotas.MaxListings(true))
	assert.Equal(t, 10, cfg.Quotas.MaxListings(false))
}

func TestCORSOriginsDefaultToPublicSite(t *testing.T) {
	t.Setenv("PUBLIC_BASE_URL", "https://example.km/")
	t.Setenv("CORS_ALLOW_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.km"}, cfg.CORSAllowOrigins)

	t.Setenv("CORS_ALLOW_ORIGINS", "https://example.km, http://localhost:3000")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.km", "http://localhost:3000"}, cfg.CORSAllowOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", " Boss@Example.com , ops@example.com,")
	t.Setenv("PUBLIC_BASE_URL", "https://example.km/")
	t.Setenv("DATA_BACKEND", "SQLite")
	t.Setenv("PRO_MAX_PHOTOS", "12")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"Boss@Example.com", "ops@example.com"}, cfg.AdminEmails)
	assert.Equal(t, "https://example.km", cfg.PublicBaseURL)
	assert.Equal(t, "sqlite", cfg.DataBackend)
	assert.Equal(t, 12, cfg.Quotas.MaxPhotos(true))
}

func TestIsAdminEmail(t *testing.T) {
	cfg := &Config{AdminEmails: []string{"Admin@comoresmarket.com"}}

	assert.True(t, cfg.IsAdminEmail(" admin@ComoresMarket.com "))
	assert.False(t, cfg.IsAdminEmail("someone@comoresmarket.com"))
	assert.False(t, cfg.IsAdminEmail(""))
}
