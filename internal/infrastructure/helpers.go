package infrastructure

import (
	"fmt"
	"strings"

	"github.com/DRSN-tech/storefront/pkg/e"
)

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// GetExtensionFromMIME возвращает расширение файла по MIME-типу изображения.
// Параметры типа (например "; charset=...") игнорируются.
func GetExtensionFromMIME(mime string) (string, error) {
	base, _, _ := strings.Cut(mime, ";")
	if ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(base))]; ok {
		return ext, nil
	}

	return "", fmt.Errorf("%w: %q", e.ErrUnsupportedMediaType, mime)
}

// ProductImageKey строит ключ объекта изображения внутри бакета: <productID>/<imageID>.<ext>.
func ProductImageKey(productID, imageID, ext string) string {
	return productID + "/" + imageID + "." + ext
}
