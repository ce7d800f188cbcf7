package cartoon

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/parallel"
)

// bilateralTap is one neighbor offset of the circular filter window.
type bilateralTap struct {
	dx, dy int
	weight float64
}

// BilateralFilter smooths src while keeping color boundaries sharp. Each
// neighbor inside a disk of radius diameter/2 contributes with weight
//
//	exp(-d²/2σs²) * exp(-Δ²/2σc²)
//
// where d is the spatial distance and Δ the sum of absolute channel
// differences from the center pixel. Borders are mirrored without repeating
// the edge pixel.
func BilateralFilter(src *image.NRGBA, diameter int, sigmaColor, sigmaSpace float64) *image.NRGBA {
	radius := max(diameter/2, 1)
	colorCoeff := -0.5 / (sigmaColor * sigmaColor)
	spaceCoeff := -0.5 / (sigmaSpace * sigmaSpace)

	colorWeight := make([]float64, 3*256)
	for i := range colorWeight {
		colorWeight[i] = math.Exp(float64(i*i) * colorCoeff)
	}

	var taps []bilateralTap
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			r := math.Sqrt(float64(dx*dx + dy*dy))
			if r > float64(radius) {
				continue
			}
			taps = append(taps, bilateralTap{dx: dx, dy: dy, weight: math.Exp(r * r * spaceCoeff)})
		}
	}

	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	at := func(x, y int) int {
		return src.PixOffset(src.Rect.Min.X+x, src.Rect.Min.Y+y)
	}

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				o := at(x, y)
				r0, g0, b0 := int(src.Pix[o]), int(src.Pix[o+1]), int(src.Pix[o+2])

				var sumR, sumG, sumB, wsum float64
				for _, t := range taps {
					q := at(reflect101(x+t.dx, w), reflect101(y+t.dy, h))
					r, g, b := int(src.Pix[q]), int(src.Pix[q+1]), int(src.Pix[q+2])
					wt := t.weight * colorWeight[absInt(r-r0)+absInt(g-g0)+absInt(b-b0)]
					sumR += wt * float64(r)
					sumG += wt * float64(g)
					sumB += wt * float64(b)
					wsum += wt
				}

				d := y*dst.Stride + x*4
				dst.Pix[d] = roundChannel(sumR / wsum)
				dst.Pix[d+1] = roundChannel(sumG / wsum)
				dst.Pix[d+2] = roundChannel(sumB / wsum)
				dst.Pix[d+3] = 255
			}
		}
	})

	return dst
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
