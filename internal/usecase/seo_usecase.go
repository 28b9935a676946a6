package usecase

import (
	"context"
	"encoding/xml"
	"strings"
	"time"

	"comoresmarket/internal/domain/repository"
)

const (
	sitemapNamespace   = "http://www.sitemaps.org/schemas/sitemap/0.9"
	sitemapMaxListings = 5000
)

// staticPages are the public pages listed in the sitemap.
var staticPages = []struct {
	Path       string
	ChangeFreq string
	Priority   string
}{
	{"/", "daily", "1.0"},
	{"/recherche", "daily", "0.8"},
	{"/pro", "monthly", "0.6"},
	{"/auth", "yearly", "0.3"},
	{"/cgu", "yearly", "0.2"},
}

// PrivateRoutes are kept out of search engines.
var PrivateRoutes = []string{
	"/compte",
	"/messages",
	"/publier",
	"/modifier/",
	"/mes-annonces",
	"/admin",
	"/favoris",
	"/auth",
}

type SitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

type ManifestIcon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type"`
	Purpose string `json:"purpose,omitempty"`
}

type WebManifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Description     string         `json:"description"`
	StartURL        string         `json:"start_url"`
	Scope           string         `json:"scope"`
	Display         string         `json:"display"`
	Lang            string         `json:"lang"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Icons           []ManifestIcon `json:"icons"`
}

// SeoUseCase renders the generated artifacts of the public site.
type SeoUseCase struct {
	productRepo repository.ProductRepository
	baseURL     string
}

func NewSeoUseCase(productRepo repository.ProductRepository, baseURL string) *SeoUseCase {
	return &SeoUseCase{productRepo: productRepo, baseURL: strings.TrimRight(baseURL, "/")}
}

// Sitemap lists the static pages and the most recent listings.
func (uc *SeoUseCase) Sitemap(ctx context.Context) ([]byte, error) {
	products, _, err := uc.productRepo.List(ctx, repository.ProductFilter{}, sitemapMaxListings, 0)
	if err != nil {
		return nil, err
	}

	sitemap := Sitemap{
		Xmlns: sitemapNamespace,
		URLs:  make([]SitemapURL, 0, len(staticPages)+len(products)),
	}
	for _, page := range staticPages {
		sitemap.URLs = append(sitemap.URLs, SitemapURL{
			Loc:        uc.baseURL + page.Path,
			ChangeFreq: page.ChangeFreq,
			Priority:   page.Priority,
		})
	}
	for _, p := range products {
		modified := p.UpdatedAt
		if modified.IsZero() {
			modified = p.CreatedAt
		}
		sitemap.URLs = append(sitemap.URLs, SitemapURL{
			Loc:        uc.baseURL + "/annonce/" + p.ID,
			LastMod:    modified.UTC().Format(time.DateOnly),
			ChangeFreq: "weekly",
			Priority:   "0.7",
		})
	}

	body, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

func (uc *SeoUseCase) Robots() string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	for _, route := range PrivateRoutes {
		b.WriteString("Disallow: " + route + "\n")
	}
	b.WriteString("\nSitemap: " + uc.baseURL + "/sitemap.xml\n")
	return b.String()
}

func (uc *SeoUseCase) Manifest() WebManifest {
	return WebManifest{
		Name:            "Comores Market",
		ShortName:       "Comores Market",
		Description:     "Petites annonces aux Comores : achetez et vendez près de chez vous.",
		StartURL:        "/",
		Scope:           "/",
		Display:         "standalone",
		Lang:            "fr",
		BackgroundColor: "#ffffff",
		ThemeColor:      "#0f766e",
		Icons: []ManifestIcon{
			{Src: "/icons/icon-192.png", Sizes: "192x192", Type: "image/png"},
			{Src: "/icons/icon-512.png", Sizes: "512x512", Type: "image/png"},
			{Src: "/icons/maskable-512.png", Sizes: "512x512", Type: "image/png", Purpose: "maskable"},
		},
	}
}
