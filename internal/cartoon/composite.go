package cartoon

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/parallel"
)

// Composite draws the edge mask over colors. The single-channel mask is
// replicated across R, G and B and ANDed with each channel: mask 0 forces
// black, mask 255 keeps the color. Alpha is set to opaque.
func Composite(colors *image.NRGBA, mask *image.Gray) (*image.NRGBA, error) {
	w, h := colors.Rect.Dx(), colors.Rect.Dy()
	if mask.Rect.Dx() != w || mask.Rect.Dy() != h {
		return nil, fmt.Errorf("%w: mask is %dx%d, color image is %dx%d",
			ErrProcessing, mask.Rect.Dx(), mask.Rect.Dy(), w, h)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			ci := colors.PixOffset(colors.Rect.Min.X, colors.Rect.Min.Y+y)
			mi := mask.PixOffset(mask.Rect.Min.X, mask.Rect.Min.Y+y)
			di := y * dst.Stride
			for x := 0; x < w; x++ {
				m := mask.Pix[mi+x]
				dst.Pix[di] = colors.Pix[ci] & m
				dst.Pix[di+1] = colors.Pix[ci+1] & m
				dst.Pix[di+2] = colors.Pix[ci+2] & m
				dst.Pix[di+3] = 255
				ci += 4
				di += 4
			}
		}
	})

	return dst, nil
}
