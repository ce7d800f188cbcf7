package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Output formats accepted by Encode.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// DefaultJPEGQuality is used when no quality is given.
const DefaultJPEGQuality = 95

// EncodedImage contains an image encoded as base64.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Encode encodes img as PNG or JPEG and returns it as base64.
//
// format is "png" (the default when empty), "jpeg" or "jpg". quality only
// applies to JPEG; values <= 0 select DefaultJPEGQuality.
func Encode(img image.Image, format string, quality int) (*EncodedImage, error) {
	f, mime, err := outputFormat(format)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, f, imaging.JPEGQuality(jpegQuality(quality))); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	b := img.Bounds()
	return &EncodedImage{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    mime,
	}, nil
}

// Save writes img to path, choosing the encoder from the file extension
// (.png, .jpg, .jpeg, .gif, .bmp, .tif, .tiff).
func Save(img image.Image, path string, quality int) error {
	if err := imaging.Save(img, path, imaging.JPEGQuality(jpegQuality(quality))); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// CheckFormat reports whether Encode accepts format.
func CheckFormat(format string) error {
	_, _, err := outputFormat(format)
	return err
}

func outputFormat(name string) (imaging.Format, string, error) {
	switch name {
	case "", FormatPNG:
		return imaging.PNG, "image/png", nil
	case FormatJPEG, "jpg":
		return imaging.JPEG, "image/jpeg", nil
	default:
		return 0, "", fmt.Errorf("unsupported output format: %s (use png or jpeg)", name)
	}
}

func jpegQuality(q int) int {
	if q <= 0 {
		return DefaultJPEGQuality
	}
	if q > 100 {
		return 100
	}
	return q
}
