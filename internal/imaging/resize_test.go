package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		maxDim        int
		wantW, wantH  int
	}{
		{"disabled", 400, 200, 0, 400, 200},
		{"already fits", 100, 50, 100, 100, 50},
		{"landscape", 400, 200, 100, 100, 50},
		{"portrait", 150, 600, 200, 50, 200},
		{"square", 300, 300, 120, 120, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createPatternImage(tt.width, tt.height, color.NRGBA{50, 60, 70, 255}, color.NRGBA{80, 90, 100, 255})
			out := FitWithin(img, tt.maxDim)
			b := out.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestFitWithin_ReturnsSameImageWhenSmall(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	if FitWithin(img, 64) != img {
		t.Error("small image should be returned as-is")
	}
}
