package entity

import (
	"encoding/json"
	"strings"
	"time"
)

// ImageList is the ordered list of photo URLs of a listing. The first image
// is the cover.
type ImageList []string

// ImageListFromValue converts a decoded document field into an ImageList.
// Older documents hold a single string (a URL or a JSON-encoded array)
// instead of an array.
func ImageListFromValue(v interface{}) ImageList {
	switch images := v.(type) {
	case nil:
		return ImageList{}
	case string:
		return ParseImageList(images)
	case []string:
		return compactURLs(images)
	case []interface{}:
		urls := make([]string, 0, len(images))
		for _, item := range images {
			if url, ok := item.(string); ok {
				urls = append(urls, url)
			}
		}
		return compactURLs(urls)
	}
	return ImageList{}
}

// ParseImageList decodes the text column encoding used by older rows: either
// a JSON array or one URL.
func ParseImageList(raw string) ImageList {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ImageList{}
	}
	switch {
	case strings.HasPrefix(raw, "["):
		var urls []string
		if err := json.Unmarshal([]byte(raw), &urls); err == nil {
			return compactURLs(urls)
		}
	case strings.HasPrefix(raw, `"`):
		var inner string
		if err := json.Unmarshal([]byte(raw), &inner); err == nil {
			return ParseImageList(inner)
		}
	}
	return ImageList{raw}
}

// Cover returns the first image or an empty string.
func (l ImageList) Cover() string {
	if len(l) == 0 {
		return ""
	}
	return l[0]
}

// Contains reports whether url is part of the list.
func (l ImageList) Contains(url string) bool {
	for _, u := range l {
		if u == url {
			return true
		}
	}
	return false
}

func compactURLs(urls []string) ImageList {
	out := make(ImageList, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

type Product struct {
	ID             string    `json:"id" firestore:"id"`
	Title          string    `json:"title" firestore:"title"`
	Description    string    `json:"description" firestore:"description"`
	Price          int64     `json:"price" firestore:"price"`
	Images         ImageList `json:"images" firestore:"images"`
	CategoryID     string    `json:"category_id" firestore:"categoryId"`
	SubCategory    string    `json:"sub_category,omitempty" firestore:"subCategory"`
	LocationIsland string    `json:"location_island" firestore:"locationIsland"`
	LocationCity   string    `json:"location_city,omitempty" firestore:"locationCity"`
	UserID         string    `json:"user_id" firestore:"userId"`
	WhatsappNumber string    `json:"whatsapp_number,omitempty" firestore:"whatsappNumber"`
	CreatedAt      time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt      time.Time `json:"updated_at" firestore:"updatedAt"`
}

// ProductSummary is the listing projection embedded in conversations and
// favorites.
type ProductSummary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Price  int64  `json:"price"`
	Image  string `json:"image,omitempty"`
	UserID string `json:"user_id"`
}

func (p *Product) Summary() *ProductSummary {
	if p == nil {
		return nil
	}
	return &ProductSummary{
		ID:     p.ID,
		Title:  p.Title,
		Price:  p.Price,
		Image:  p.Images.Cover(),
		UserID: p.UserID,
	}
}

// WithoutContact returns a copy of the listing with the seller's WhatsApp
// number removed.
func (p *Product) WithoutContact() *Product {
	if p == nil {
		return nil
	}
	c := *p
	c.WhatsappNumber = ""
	return &c
}
