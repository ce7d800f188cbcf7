package imaging

import (
	"image"
	"image/color"
	"math"
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-359 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// Swatch describes one palette color of a cartoon and how much of the image
// it covers.
type Swatch struct {
	Hex        string   `json:"hex"`        // Hex format "#RRGGBB"
	RGB        RGBColor `json:"rgb"`        // RGB components
	HSL        HSLColor `json:"hsl"`        // HSL representation
	Pixels     int      `json:"pixels"`     // Pixels of exactly this color
	Percentage float64  `json:"percentage"` // Share of all pixels (0-100)
}

// Swatches counts how many pixels of img match each palette color exactly.
//
// Pass the quantized stage of a pipeline run to get the share of every
// cluster. Results are sorted by coverage, most common first; palette
// colors that cover nothing are still listed with zero pixels.
func Swatches(img *image.NRGBA, palette []color.NRGBA) []Swatch {
	counts := make(map[RGBColor]int, len(palette))
	for _, c := range palette {
		counts[RGBColor{R: c.R, G: c.G, B: c.B}] = 0
	}

	b := img.Bounds()
	total := b.Dx() * b.Dy()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			key := RGBColor{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2]}
			if _, ok := counts[key]; ok {
				counts[key]++
			}
			i += 4
		}
	}

	swatches := make([]Swatch, 0, len(counts))
	for rgb, n := range counts {
		s := NewSwatch(rgb)
		s.Pixels = n
		if total > 0 {
			s.Percentage = float64(n) / float64(total) * 100
		}
		swatches = append(swatches, s)
	}

	sort.Slice(swatches, func(i, j int) bool {
		if swatches[i].Pixels != swatches[j].Pixels {
			return swatches[i].Pixels > swatches[j].Pixels
		}
		return swatches[i].Hex < swatches[j].Hex
	})
	return swatches
}

// NewSwatch fills in the hex and HSL forms of rgb. Coverage is left at zero.
func NewSwatch(rgb RGBColor) Swatch {
	c := colorful.Color{
		R: float64(rgb.R) / 255,
		G: float64(rgb.G) / 255,
		B: float64(rgb.B) / 255,
	}
	h, s, l := c.Hsl()

	return Swatch{
		Hex: strings.ToUpper(c.Hex()),
		RGB: rgb,
		HSL: HSLColor{
			H: int(math.Round(h)) % 360,
			S: int(math.Round(s * 100)),
			L: int(math.Round(l * 100)),
		},
	}
}
