package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Decoded is an input image ready for the cartoon pipeline.
//
// Whatever the source format and color model, Image is always a 3-channel
// color buffer (alpha carried along but ignored by the pipeline) with its
// origin at (0,0) and EXIF orientation already applied. Grayscale and
// paletted inputs are expanded to color, the way a forced-color decode does.
type Decoded struct {
	// Image holds the decoded pixels.
	Image *image.NRGBA

	// Format is the name the decoder registered under: "png", "jpeg", "gif",
	// "bmp", "tiff" or "webp".
	Format string

	// HasAlpha reports whether the source color model carried transparency.
	HasAlpha bool

	// SizeBytes is the size of the encoded source.
	SizeBytes int64
}

// Decode reads and decodes an encoded image from r.
//
// # Errors
//
//   - Returns error if r cannot be read or holds no data
//   - Returns error if the data is not a supported image format
func Decode(r io.Reader) (*Decoded, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes decodes an encoded image held in memory.
func DecodeBytes(data []byte) (*Decoded, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("failed to decode image: no data")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return &Decoded{
		Image:     imaging.Clone(img),
		Format:    format,
		HasAlpha:  modelHasAlpha(cfg.ColorModel),
		SizeBytes: int64(len(data)),
	}, nil
}

// DecodeBase64 decodes a base64-encoded image. A data URL prefix such as
// "data:image/png;base64," is accepted and stripped.
func DecodeBase64(s string) (*Decoded, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ",")
		if i < 0 {
			return nil, fmt.Errorf("invalid data URL: missing ','")
		}
		s = s[i+1:]
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image data: %w", err)
	}
	return DecodeBytes(data)
}

// Load reads and decodes the image file at path.
//
// Nothing is cached: every call reads the file again.
func Load(path string) (*Decoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// modelHasAlpha reports whether images in model can carry transparency.
func modelHasAlpha(model color.Model) bool {
	switch model {
	case color.RGBAModel, color.NRGBAModel, color.RGBA64Model, color.NRGBA64Model, color.AlphaModel, color.Alpha16Model:
		return true
	}
	if p, ok := model.(color.Palette); ok {
		for _, c := range p {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}

// ImageInfo contains metadata about a decoded image.
type ImageInfo struct {
	// Width is the image width in pixels, after orientation is applied.
	Width int `json:"width"`

	// Height is the image height in pixels, after orientation is applied.
	Height int `json:"height"`

	// Format is the detected image format, based on file contents.
	Format string `json:"format"`

	// MimeType is the MIME type matching Format.
	MimeType string `json:"mime_type"`

	// HasAlpha indicates whether the source had a transparency channel.
	// Transparency is dropped by the cartoon pipeline.
	HasAlpha bool `json:"has_alpha"`

	// SizeBytes is the size of the encoded source in bytes.
	SizeBytes int64 `json:"size_bytes"`
}

// Info summarizes d.
func (d *Decoded) Info() *ImageInfo {
	b := d.Image.Bounds()
	return &ImageInfo{
		Width:     b.Dx(),
		Height:    b.Dy(),
		Format:    d.Format,
		MimeType:  mimeTypes[d.Format],
		HasAlpha:  d.HasAlpha,
		SizeBytes: d.SizeBytes,
	}
}

var mimeTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"webp": "image/webp",
}
