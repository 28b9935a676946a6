package usecase

import (
	"context"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeoUseCase_Sitemap(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "seller", "Seller", false)
	product := env.seedProduct(t, "seller", "Pirogue")

	uc := NewSeoUseCase(env.repos.Products, "https://comoresmarket.test/")
	body, err := uc.Sitemap(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "<?xml"))

	var sitemap Sitemap
	require.NoError(t, xml.Unmarshal(body, &sitemap))
	assert.Len(t, sitemap.URLs, len(staticPages)+1)
	assert.Equal(t, "https://comoresmarket.test/", sitemap.URLs[0].Loc)
	last := sitemap.URLs[len(sitemap.URLs)-1]
	assert.Equal(t, "https://comoresmarket.test/annonce/"+product.ID, last.Loc)
	assert.NotEmpty(t, last.LastMod)
}

func TestSeoUseCase_RobotsAndManifest(t *testing.T) {
	uc := NewSeoUseCase(nil, "https://comoresmarket.test")

	robots := uc.Robots()
	for _, route := range []string{"/compte", "/messages", "/publier", "/modifier/", "/mes-annonces", "/admin", "/favoris"} {
		assert.Contains(t, robots, "Disallow: "+route+"\n")
	}
	assert.Contains(t, robots, "Sitemap: https://comoresmarket.test/sitemap.xml")
	assert.NotContains(t, robots, "Disallow: /annonce")

	manifest := uc.Manifest()
	assert.Equal(t, "standalone", manifest.Display)
	assert.NotEmpty(t, manifest.Icons)
}
