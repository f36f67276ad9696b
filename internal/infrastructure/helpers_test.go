package infrastructure

import (
	"testing"

	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/stretchr/testify/assert"
)

func TestGetExtensionFromMIME(t *testing.T) {
	tests := map[string]string{
		"image/jpeg":                "jpg",
		"image/jpg":                 "jpg",
		"IMAGE/PNG":                 "png",
		"image/webp":                "webp",
		"image/gif; charset=binary": "gif",
	}

	for mime, want := range tests {
		got, err := GetExtensionFromMIME(mime)
		assert.NoError(t, err, mime)
		assert.Equal(t, want, got, mime)
	}

	_, err := GetExtensionFromMIME("application/pdf")
	assert.ErrorIs(t, err, e.ErrUnsupportedMediaType)
}

func TestProductImageKey(t *testing.T) {
	assert.Equal(t, "p1/abc.png", ProductImageKey("p1", "abc", "png"))
}
