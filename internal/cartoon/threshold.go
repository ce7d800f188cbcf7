package cartoon

import (
	"image"

	"github.com/anthonynsimon/bild/parallel"
)

// AdaptiveThreshold builds the edge mask. For every pixel the mean of its
// blockSize x blockSize neighborhood is taken (edges replicated, mean rounded
// to the nearest integer) and the pixel becomes 255 when
//
//	src > mean - c
//
// and 0 otherwise. Outlines therefore come out black on a white field.
// blockSize must be odd.
func AdaptiveThreshold(src *image.Gray, blockSize, c int) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	r := blockSize / 2

	// Summed-area table over the edge-replicated image, with a leading row
	// and column of zeros so that window sums need no bounds checks.
	pw, ph := w+2*r, h+2*r
	stride := pw + 1
	sat := make([]uint64, stride*(ph+1))
	for py := 0; py < ph; py++ {
		row := src.Pix[src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+clamp(py-r, 0, h-1)):]
		var rowSum uint64
		for px := 0; px < pw; px++ {
			rowSum += uint64(row[clamp(px-r, 0, w-1)])
			sat[(py+1)*stride+px+1] = sat[py*stride+px+1] + rowSum
		}
	}

	area := uint64(blockSize * blockSize)
	dst := image.NewGray(image.Rect(0, 0, w, h))

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			si := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
			top := y * stride
			bottom := (y + blockSize) * stride
			for x := 0; x < w; x++ {
				sum := sat[bottom+x+blockSize] - sat[top+x+blockSize] - sat[bottom+x] + sat[top+x]
				mean := int((sum + area/2) / area)
				if int(src.Pix[si+x]) > mean-c {
					dst.Pix[y*dst.Stride+x] = 255
				}
			}
		}
	})

	return dst
}

// clamp constrains val to [min, max]. Used for edge replication.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// reflect101 maps an out-of-range index back into [0, n) by mirroring
// around the edge pixels without repeating them (gfedcb|abcdefgh|gfedcba).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		} else {
			i = 2*(n-1) - i
		}
	}
	return i
}
