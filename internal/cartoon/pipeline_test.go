package cartoon

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"sync"
	"testing"
)

// createTestScene draws a sky, a ground strip and a dark square: enough
// structure for outlines and several clusters.
func createTestScene(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{135, 190, 235, 255} // sky
			if y >= 2*h/3 {
				c = color.NRGBA{60, 150, 60, 255} // ground
			}
			if x >= w/4 && x < w/2 && y >= h/4 && y < 2*h/3 {
				c = color.NRGBA{40, 30, 20, 255} // building
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func seededParams(seed uint64) Params {
	return DefaultParams().WithSeed(seed)
}

func TestCartoonify_MidGrayExample(t *testing.T) {
	src := createSolidImage(10, 10, color.NRGBA{128, 128, 128, 255})

	out, err := Cartoonify(src, Params{LineSize: 7, BlurValue: 7, K: 2})
	if err != nil {
		t.Fatalf("Cartoonify failed: %v", err)
	}
	if out.Bounds() != image.Rect(0, 0, 10, 10) {
		t.Fatalf("bounds: got %v, want 10x10", out.Bounds())
	}

	colored := 0
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			c := out.NRGBAAt(x, y)
			if c.R == 0 && c.G == 0 && c.B == 0 {
				continue
			}
			colored++
			for _, v := range []uint8{c.R, c.G, c.B} {
				if math.Abs(float64(v)-128) > 2 {
					t.Fatalf("(%d,%d): got %v, want black or near (128,128,128)", x, y, c)
				}
			}
		}
	}
	if colored == 0 {
		t.Error("every pixel came out black; a flat image has no edges")
	}
}

func TestRun_ShapeAndRange(t *testing.T) {
	src := createTestScene(24, 16)

	res, err := Run(src, seededParams(1))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := image.Rect(0, 0, 24, 16)
	bounds := map[string]image.Rectangle{
		"gray":      res.Gray.Rect,
		"blurred":   res.Blurred.Rect,
		"edges":     res.Edges.Rect,
		"quantized": res.Quantized.Rect,
		"smoothed":  res.Smoothed.Rect,
		"cartoon":   res.Cartoon.Rect,
	}
	for name, b := range bounds {
		if b != want {
			t.Errorf("%s bounds: got %v, want %v", name, b, want)
		}
	}

	for i := 3; i < len(res.Cartoon.Pix); i += 4 {
		if res.Cartoon.Pix[i] != 255 {
			t.Fatalf("alpha at byte %d: got %d, want 255", i, res.Cartoon.Pix[i])
		}
	}
	for i, v := range res.Edges.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("edge mask byte %d: got %d, want 0 or 255", i, v)
		}
	}
}

func TestRun_EdgesAndIdentity(t *testing.T) {
	src := createTestScene(40, 30)

	res, err := Run(src, seededParams(2))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	edges := 0
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			got := res.Cartoon.NRGBAAt(x, y)
			if res.Edges.GrayAt(x, y).Y == 0 {
				edges++
				if got != (color.NRGBA{0, 0, 0, 255}) {
					t.Errorf("edge pixel (%d,%d): got %v, want black", x, y, got)
				}
				continue
			}
			if want := res.Smoothed.NRGBAAt(x, y); got != want {
				t.Errorf("non-edge pixel (%d,%d): got %v, want smoothed %v", x, y, got, want)
			}
		}
	}
	if edges == 0 {
		t.Error("scene with a dark square produced no edge pixels")
	}
}

func TestRun_PaletteBound(t *testing.T) {
	src := createNoiseImage(20, 20, 5)

	for _, k := range []int{2, 6, 20} {
		p := Params{LineSize: 5, BlurValue: 3, K: k}.WithSeed(8)
		res, err := Run(src, p)
		if err != nil {
			t.Fatalf("k=%d: Run failed: %v", k, err)
		}
		if n := len(distinctImageColors(res.Quantized)); n > k {
			t.Errorf("k=%d: quantized stage has %d colors", k, n)
		}
		if len(res.Palette) > k {
			t.Errorf("k=%d: palette has %d colors", k, len(res.Palette))
		}
	}
}

func TestRun_SeededRunsMatch(t *testing.T) {
	src := createTestScene(32, 24)

	first, err := Run(src, seededParams(77))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	second, err := Run(src, seededParams(77))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !bytes.Equal(first.Cartoon.Pix, second.Cartoon.Pix) {
		t.Error("same seed produced different cartoons")
	}
}

func TestRun_SeedReplay(t *testing.T) {
	src := createNoiseImage(16, 16, 3)

	first, err := Run(src, DefaultParams())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	replay, err := Run(src, DefaultParams().WithSeed(first.Seed))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !bytes.Equal(first.Cartoon.Pix, replay.Cartoon.Pix) {
		t.Error("replaying the reported seed did not reproduce the output")
	}
}

func TestRun_UnseededRunsShareEdges(t *testing.T) {
	src := createNoiseImage(24, 18, 4)

	first, err := Run(src, DefaultParams())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	second, err := Run(src, DefaultParams())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !bytes.Equal(first.Edges.Pix, second.Edges.Pix) {
		t.Error("edge masks differ between runs")
	}
	if first.Cartoon.Rect != second.Cartoon.Rect {
		t.Error("output shapes differ between runs")
	}
	for y := 0; y < 18; y++ {
		for x := 0; x < 24; x++ {
			if first.Edges.GrayAt(x, y).Y != 0 {
				continue
			}
			if first.Cartoon.NRGBAAt(x, y) != second.Cartoon.NRGBAAt(x, y) {
				t.Fatalf("edge pixel (%d,%d) differs between runs", x, y)
			}
		}
	}
}

func TestRun_DoesNotModifyInput(t *testing.T) {
	src := createTestScene(20, 20)
	before := append([]uint8(nil), src.Pix...)

	if _, err := Run(src, seededParams(1)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !bytes.Equal(src.Pix, before) {
		t.Error("input image was modified")
	}
}

func TestRun_OffsetOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 20, 22, 29))
	for y := 20; y < 29; y++ {
		for x := 10; x < 22; x++ {
			src.Set(x, y, color.RGBA{uint8(x * 9), uint8(y * 4), 90, 255})
		}
	}

	out, err := Cartoonify(src, seededParams(4))
	if err != nil {
		t.Fatalf("Cartoonify failed: %v", err)
	}
	if out.Bounds() != image.Rect(0, 0, 12, 9) {
		t.Errorf("bounds: got %v, want (0,0)-(12,9)", out.Bounds())
	}
}

func TestRun_Timings(t *testing.T) {
	res, err := Run(createTestScene(16, 16), seededParams(1))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{StageGrayscale, StageMedian, StageEdges, StageQuantize, StageBilateral, StageComposite}
	if len(res.Timings) != len(want) {
		t.Fatalf("timings: got %d entries, want %d", len(res.Timings), len(want))
	}
	for i, stage := range want {
		if res.Timings[i].Stage != stage {
			t.Errorf("timing %d: got %s, want %s", i, res.Timings[i].Stage, stage)
		}
	}
	if res.Total() < 0 {
		t.Error("negative total duration")
	}
	if res.Backend != DefaultBackend {
		t.Errorf("backend: got %s, want %s", res.Backend, DefaultBackend)
	}
}

func TestRun_ThresholdOffsetDecoupled(t *testing.T) {
	src := createSolidImage(12, 12, color.NRGBA{128, 128, 128, 255})

	res, err := Run(src, seededParams(1).WithThresholdOffset(0))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// A zero offset turns every flat pixel into an edge.
	for i, v := range res.Edges.Pix {
		if v != 0 {
			t.Fatalf("edge byte %d: got %d, want 0", i, v)
		}
	}
	for i := 0; i < len(res.Cartoon.Pix); i += 4 {
		if res.Cartoon.Pix[i] != 0 || res.Cartoon.Pix[i+1] != 0 || res.Cartoon.Pix[i+2] != 0 {
			t.Fatalf("pixel %d not black", i/4)
		}
	}
}

func TestRun_Concurrent(t *testing.T) {
	src := createTestScene(24, 24)
	want, err := Cartoonify(src, seededParams(5))
	if err != nil {
		t.Fatalf("Cartoonify failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Cartoonify(src, seededParams(5))
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(got.Pix, want.Pix) {
				errs <- errors.New("concurrent run diverged")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestRun_InvalidInput(t *testing.T) {
	valid := createTestScene(8, 8)

	tests := []struct {
		name    string
		img     image.Image
		params  Params
		wantErr error
	}{
		{"even line size", valid, Params{LineSize: 4, BlurValue: 7, K: 9}, ErrInvalidParameter},
		{"even blur value", valid, Params{LineSize: 7, BlurValue: 6, K: 9}, ErrInvalidParameter},
		{"k of one", valid, Params{LineSize: 7, BlurValue: 7, K: 1}, ErrInvalidParameter},
		{"k above pixel count", valid, Params{LineSize: 7, BlurValue: 7, K: 65}, ErrInvalidParameter},
		{"nil image", nil, DefaultParams(), ErrInvalidImage},
		{"empty image", image.NewNRGBA(image.Rect(0, 0, 0, 0)), DefaultParams(), ErrInvalidImage},
		{"zero height", image.NewNRGBA(image.Rect(0, 0, 5, 0)), DefaultParams(), ErrInvalidImage},
		{"grayscale image", image.NewGray(image.Rect(0, 0, 8, 8)), DefaultParams(), ErrInvalidImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Cartoonify(tt.img, tt.params)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got error %v, want %v", err, tt.wantErr)
			}
			if out != nil {
				t.Error("expected no output on error")
			}
		})
	}
}
