package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginChecker(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"listed origin", []string{"https://comoresmarket.km"}, "https://comoresmarket.km", true},
		{"foreign origin", []string{"https://comoresmarket.km"}, "https://evil.example", false},
		{"native client", []string{"https://comoresmarket.km"}, "", true},
		{"wildcard", []string{"*"}, "https://evil.example", true},
		{"nothing configured", nil, "https://comoresmarket.km", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, originChecker(tt.allowed)(req))
		})
	}
}
