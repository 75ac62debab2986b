package texture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// ImageInfo describes an encoded image without decoding its pixels.
type ImageInfo struct {
	Format string
	Width  int
	Height int
}

// Probe reads the format and dimensions of an encoded image.
func Probe(data []byte) (ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("probing image: %w", err)
	}
	return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// FormatMatchesMIME reports whether a probed format agrees with a MIME type.
func FormatMatchesMIME(format, mimeType string) bool {
	ext := Extension(mimeType)
	switch ext {
	case "jpg", "pjpeg":
		ext = "jpeg"
	case "x-ms-bmp":
		ext = "bmp"
	}
	return ext == format
}
