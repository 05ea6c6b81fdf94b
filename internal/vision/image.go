package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned for bytes no registered decoder accepts.
var ErrUnsupportedImage = errors.New("unsupported image format")

// Image is an upload that decoded successfully, in a format every backend
// accepts.
type Image struct {
	Data     []byte
	MIMEType string
	Width    int
	Height   int
}

// passthrough lists the decoded formats model APIs take as-is.
var passthrough = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// DecodeImage checks that data is a readable image. JPEG, PNG, GIF and WebP
// are returned unchanged; other decodable formats (BMP, TIFF) are re-encoded
// as PNG.
func DecodeImage(data []byte) (*Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	bounds := img.Bounds()

	if mime, ok := passthrough[format]; ok {
		return &Image{Data: data, MIMEType: mime, Width: bounds.Dx(), Height: bounds.Dy()}, nil
	}

	slog.Debug("converting image to png", "format", format)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode %s as png: %w", format, err)
	}
	return &Image{Data: buf.Bytes(), MIMEType: "image/png", Width: bounds.Dx(), Height: bounds.Dy()}, nil
}
