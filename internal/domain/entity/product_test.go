package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImageListFromValue(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  ImageList
	}{
		{"array", []interface{}{"https://cdn/a.jpg", "https://cdn/b.jpg"}, ImageList{"https://cdn/a.jpg", "https://cdn/b.jpg"}},
		{"string slice", []string{"https://cdn/a.jpg"}, ImageList{"https://cdn/a.jpg"}},
		{"encoded array in string", `["https://cdn/a.jpg"]`, ImageList{"https://cdn/a.jpg"}},
		{"bare url", "https://cdn/a.jpg", ImageList{"https://cdn/a.jpg"}},
		{"nil", nil, ImageList{}},
		{"blank entries dropped", []interface{}{"", " https://cdn/a.jpg ", 42}, ImageList{"https://cdn/a.jpg"}},
		{"unexpected type", int64(3), ImageList{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ImageListFromValue(tt.value))
		})
	}
}

func TestParseImageList(t *testing.T) {
	assert.Equal(t, ImageList{"https://cdn/a.jpg"}, ParseImageList(`"[\"https://cdn/a.jpg\"]"`))
	assert.Equal(t, ImageList{}, ParseImageList("  "))
	assert.Equal(t, ImageList{"https://cdn/a.jpg"}, ParseImageList("https://cdn/a.jpg"))
}

func TestProductSummary(t *testing.T) {
	var missing *Product
	assert.Nil(t, missing.Summary())

	p := &Product{ID: "p1", Title: "Vélo", Price: 40000, Images: ImageList{"https://cdn/1.jpg", "https://cdn/2.jpg"}, UserID: "u1"}
	assert.Equal(t, &ProductSummary{ID: "p1", Title: "Vélo", Price: 40000, Image: "https://cdn/1.jpg", UserID: "u1"}, p.Summary())
}

func TestMessageImageHelpers(t *testing.T) {
	m := &Message{Content: ImageContent("https://cdn/chat-images/x.jpg"), SenderID: "a", ReceiverID: "b"}
	assert.True(t, m.IsImage())
	assert.Equal(t, "https://cdn/chat-images/x.jpg", m.ImageURL())
	assert.Equal(t, ImagePlaceholder, m.Preview())
	assert.Equal(t, "b", m.CounterpartOf("a"))
	assert.Equal(t, "a", m.CounterpartOf("b"))

	text := &Message{Content: "Bonjour"}
	assert.False(t, text.IsImage())
	assert.Empty(t, text.ImageURL())
	assert.Equal(t, "Bonjour", text.Preview())
}

func TestPublicProfileHidesPhoneOfFreeSellers(t *testing.T) {
	free := &Profile{ID: "u1", FullName: "Said", PhoneNumber: "+2693320000"}
	assert.Empty(t, free.Public().PhoneNumber)

	pro := &Profile{ID: "u2", FullName: "Nadia", PhoneNumber: "+2693320000", IsPro: true}
	assert.Equal(t, "+2693320000", pro.Public().PhoneNumber)
}
