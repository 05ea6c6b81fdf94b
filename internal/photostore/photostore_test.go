package photostore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKey(t *testing.T) {
	key := NewKey("scans", "image/png")
	assert.True(t, strings.HasPrefix(key, "scans/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.NotEqual(t, key, NewKey("scans", "image/png"))

	bare := NewKey("", "image/webp")
	assert.NotContains(t, bare, "/")
	assert.True(t, strings.HasSuffix(bare, ".webp"))
}

func TestExtAndMIMEType(t *testing.T) {
	tests := []struct {
		mime string
		ext  string
	}{
		{"image/jpeg", ".jpg"},
		{"image/png", ".png"},
		{"image/gif", ".gif"},
		{"image/webp", ".webp"},
		{"image/bmp", ".bmp"},
		{"image/tiff", ".tiff"},
	}
	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			assert.Equal(t, tt.ext, Ext(tt.mime))
			assert.Equal(t, tt.mime, MIMEType("scans/x"+tt.ext))
		})
	}

	assert.Equal(t, ".jpg", Ext("application/octet-stream"))
	assert.Equal(t, "image/jpeg", MIMEType("noext"))
	assert.Equal(t, "image/jpeg", MIMEType("a.JPEG"))
}
