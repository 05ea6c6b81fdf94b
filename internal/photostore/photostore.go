// Package photostore archives uploaded food photos.
package photostore

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("photo not found")

type PhotoStore interface {
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
}

var extByMIME = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
	"image/tiff": ".tiff",
}

var mimeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
}

// NewKey returns a fresh storage key of the form "<prefix>/<uuid><ext>".
// An empty prefix yields just the file name.
func NewKey(prefix, mimeType string) string {
	name := uuid.NewString() + Ext(mimeType)
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// Ext maps an image MIME type to a file extension, defaulting to ".jpg".
func Ext(mimeType string) string {
	if ext, ok := extByMIME[strings.ToLower(mimeType)]; ok {
		return ext
	}
	return ".jpg"
}

// MIMEType is the inverse of Ext, defaulting to "image/jpeg".
func MIMEType(key string) string {
	if m, ok := mimeByExt[strings.ToLower(path.Ext(key))]; ok {
		return m
	}
	return "image/jpeg"
}
