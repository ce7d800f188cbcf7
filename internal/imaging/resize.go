package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// FitWithin scales img down with a Lanczos filter so that neither side
// exceeds maxDim, preserving the aspect ratio.
//
// img is returned unchanged when maxDim <= 0 or the image already fits.
// Images are never upscaled.
func FitWithin(img *image.NRGBA, maxDim int) *image.NRGBA {
	if maxDim <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxDim && b.Dy() <= maxDim {
		return img
	}
	return imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
}
