package cartoon

import (
	"image"

	"github.com/anthonynsimon/bild/parallel"
)

// BT.601 luma weights in 14-bit fixed point. They sum to 1<<14, so a gray
// input pixel maps to itself.
const (
	lumaR     = 4899
	lumaG     = 9617
	lumaB     = 1868
	lumaShift = 14
)

// Grayscale reduces src to a single luma channel:
//
//	Y = (4899*R + 9617*G + 1868*B + 8192) >> 14
//
// Alpha is ignored. The result has src's size with its origin at (0,0).
func Grayscale(src *image.NRGBA) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			si := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
			di := y * dst.Stride
			for x := 0; x < w; x++ {
				r := uint32(src.Pix[si])
				g := uint32(src.Pix[si+1])
				b := uint32(src.Pix[si+2])
				dst.Pix[di+x] = uint8((r*lumaR + g*lumaG + b*lumaB + 1<<(lumaShift-1)) >> lumaShift)
				si += 4
			}
		}
	})

	return dst
}

// MedianBlur replaces every pixel with the median of its size x size
// neighborhood. Pixels beyond the border replicate the nearest edge pixel.
// size must be odd.
//
// Each row keeps a 256-bin histogram of its window and slides it one column
// at a time, so the cost per pixel is linear in size rather than in size².
func MedianBlur(src *image.Gray, size int) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	r := size / 2
	half := size * size / 2
	dst := image.NewGray(image.Rect(0, 0, w, h))

	// cols[p] is the source column of padded column p, i.e. x = p - r.
	cols := make([]int, w+size-1)
	for p := range cols {
		cols[p] = src.Rect.Min.X + clamp(p-r, 0, w-1)
	}

	parallel.Line(h, func(start, end int) {
		var hist [256]int
		rows := make([]int, size)
		for y := start; y < end; y++ {
			for i := range rows {
				rows[i] = src.PixOffset(0, src.Rect.Min.Y+clamp(y-r+i, 0, h-1))
			}

			hist = [256]int{}
			for p := 0; p < size; p++ {
				for _, ro := range rows {
					hist[src.Pix[ro+cols[p]]]++
				}
			}

			di := y * dst.Stride
			for x := 0; x < w; x++ {
				if x > 0 {
					out, in := cols[x-1], cols[x+size-1]
					for _, ro := range rows {
						hist[src.Pix[ro+out]]--
						hist[src.Pix[ro+in]]++
					}
				}
				dst.Pix[di+x] = histMedian(&hist, half)
			}
		}
	})

	return dst
}

// histMedian returns the value at rank half (zero-based) of hist.
func histMedian(hist *[256]int, half int) uint8 {
	n := 0
	for v, c := range hist {
		n += c
		if n > half {
			return uint8(v)
		}
	}
	return 255
}
