package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Named regions accepted by RegionRect.
var regionNames = []string{
	"top-left", "top-right", "bottom-left", "bottom-right",
	"top-half", "bottom-half", "left-half", "right-half", "center",
}

// Crop extracts the rectangle (x1,y1)-(x2,y2) from img. Coordinates are
// relative to the image's top-left corner; x2 and y2 are exclusive.
func Crop(img *image.NRGBA, x1, y1, x2, y2 int) (*image.NRGBA, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if x1 < 0 || y1 < 0 || x2 > w || y2 > h {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (0,0)-(%d,%d)",
			x1, y1, x2, y2, w, h)
	}
	if x1 >= x2 || y1 >= y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	return imaging.Crop(img, image.Rect(x1, y1, x2, y2).Add(b.Min)), nil
}

// CropRegion extracts a named region of img, for cartoonifying only part of
// a photo.
func CropRegion(img *image.NRGBA, region string) (*image.NRGBA, error) {
	r, err := RegionRect(img.Bounds().Dx(), img.Bounds().Dy(), region)
	if err != nil {
		return nil, err
	}
	return Crop(img, r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}

// RegionRect resolves a region name against a w x h image.
func RegionRect(w, h int, region string) (image.Rectangle, error) {
	midX := w / 2
	midY := h / 2

	switch region {
	case "top-left":
		return image.Rect(0, 0, midX, midY), nil
	case "top-right":
		return image.Rect(midX, 0, w, midY), nil
	case "bottom-left":
		return image.Rect(0, midY, midX, h), nil
	case "bottom-right":
		return image.Rect(midX, midY, w, h), nil
	case "top-half":
		return image.Rect(0, 0, w, midY), nil
	case "bottom-half":
		return image.Rect(0, midY, w, h), nil
	case "left-half":
		return image.Rect(0, 0, midX, h), nil
	case "right-half":
		return image.Rect(midX, 0, w, h), nil
	case "center":
		// Center 50% of the image
		return image.Rect(w/4, h/4, w-w/4, h-h/4), nil
	default:
		return image.Rectangle{}, fmt.Errorf("unknown region: %s", region)
	}
}

// RegionNames lists the names RegionRect understands.
func RegionNames() []string {
	return append([]string(nil), regionNames...)
}
