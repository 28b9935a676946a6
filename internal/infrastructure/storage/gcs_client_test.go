package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectNameFromURL(t *testing.T) {
	name, err := ObjectNameFromURL("cm-assets", "https://storage.googleapis.com/cm-assets/chat-images/abc.jpg")
	assert.NoError(t, err)
	assert.Equal(t, "chat-images/abc.jpg", name)

	name, err = ObjectNameFromURL("cm-assets", "https://storage.googleapis.com/cm-assets/products/x.png?v=2")
	assert.NoError(t, err)
	assert.Equal(t, "products/x.png", name)

	_, err = ObjectNameFromURL("cm-assets", "https://storage.googleapis.com/other/chat-images/abc.jpg")
	assert.Error(t, err)

	_, err = ObjectNameFromURL("cm-assets", "https://cdn.example.com/abc.jpg")
	assert.Error(t, err)
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".jpg", extensionFor("image/jpeg"))
	assert.Equal(t, ".webp", extensionFor("image/webp"))
	assert.Equal(t, ".bin", extensionFor("application/octet-stream"))
}

func TestOwnedObject(t *testing.T) {
	tests := []struct {
		name   string
		object string
		bucket string
		owner  string
		want   bool
	}{
		{"own upload", "products/u1/abc.jpg", "products", "u1", true},
		{"other owner", "products/u2/abc.jpg", "products", "u1", false},
		{"other bucket", "avatars/u1/abc.jpg", "products", "u1", false},
		{"legacy flat key", "products/abc.jpg", "products", "u1", false},
		{"nested path", "products/u1/../u2/abc.jpg", "products", "u1", false},
		{"owner prefix of another", "products/u10/abc.jpg", "products", "u1", false},
		{"empty owner", "products//abc.jpg", "products", "", false},
		{"folder only", "products/u1/", "products", "u1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OwnedObject(tt.object, tt.bucket, tt.owner))
		})
	}
}

func TestOwnsFileParsesPublicURL(t *testing.T) {
	c := &CloudStorageClient{bucketName: "cm-assets"}
	assert.True(t, c.OwnsFile(c.PublicURL(ObjectPrefix("products", "u1")+"abc.jpg"), "products", "u1"))
	assert.False(t, c.OwnsFile("https://cdn.example.com/products/u1/abc.jpg", "products", "u1"))
	assert.False(t, c.OwnsFile("https://storage.googleapis.com/other/products/u1/abc.jpg", "products", "u1"))
}
