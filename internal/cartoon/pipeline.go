package cartoon

import (
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"
	"time"

	"github.com/disintegration/imaging"
)

// Stage names, in execution order.
const (
	StageGrayscale = "grayscale"
	StageMedian    = "median_blur"
	StageEdges     = "adaptive_threshold"
	StageQuantize  = "kmeans"
	StageBilateral = "bilateral"
	StageComposite = "composite"
)

// StageTiming records how long one stage took.
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration_ns"`
}

// Result carries the output of every stage of one pipeline run.
//
// All images share the input's width and height and have their origin at
// (0,0). Cartoon is the final stylized image.
type Result struct {
	Gray      *image.Gray  // stage 1
	Blurred   *image.Gray  // stage 2
	Edges     *image.Gray  // stage 3, values 0 or 255
	Quantized *image.NRGBA // stage 4, at most K colors
	Smoothed  *image.NRGBA // stage 5
	Cartoon   *image.NRGBA // stage 6

	// Palette holds the distinct k-means center colors.
	Palette []color.NRGBA

	// Compactness of the winning k-means attempt.
	Compactness float64

	// Seed that drove k-means. Passing it back through Params.Seed
	// reproduces the run.
	Seed uint64

	Backend string
	Timings []StageTiming
}

// track appends the time elapsed since start under stage.
func (r *Result) track(stage string, start time.Time) {
	r.Timings = append(r.Timings, StageTiming{Stage: stage, Duration: time.Since(start)})
}

// Total returns the summed duration of all stages.
func (r *Result) Total() time.Duration {
	var total time.Duration
	for _, t := range r.Timings {
		total += t.Duration
	}
	return total
}

// Cartoonify renders img as a cartoon with the default backend.
//
// img must be a non-empty color image. The returned image has img's size,
// its origin at (0,0), and opaque alpha. img itself is not modified.
//
// # Errors
//
//   - ErrInvalidImage: img is nil, empty or single-channel.
//   - ErrInvalidParameter: p fails Validate for img's pixel count.
//   - ErrProcessing: a stage failed numerically.
func Cartoonify(img image.Image, p Params) (*image.NRGBA, error) {
	res, err := Run(img, p)
	if err != nil {
		return nil, err
	}
	return res.Cartoon, nil
}

// Run is Cartoonify but returns every intermediate stage as well.
func Run(img image.Image, p Params) (*Result, error) {
	return RunBackend(DefaultBackend, img, p)
}

// RunBackend runs the pipeline on the named backend.
func RunBackend(name string, img image.Image, p Params) (*Result, error) {
	b, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	src, err := prepare(img, p)
	if err != nil {
		return nil, err
	}
	return b.Run(src, p)
}

// prepare checks the pipeline preconditions and returns a private NRGBA copy
// of img.
func prepare(img image.Image, p Params) (*image.NRGBA, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: no image", ErrInvalidImage)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: image is %dx%d", ErrInvalidImage, bounds.Dx(), bounds.Dy())
	}
	switch img.(type) {
	case *image.Gray, *image.Gray16, *image.Alpha, *image.Alpha16:
		return nil, fmt.Errorf("%w: %T has a single channel, need color", ErrInvalidImage, img)
	}
	if err := p.Validate(bounds.Dx() * bounds.Dy()); err != nil {
		return nil, err
	}
	return imaging.Clone(img), nil
}

func resolveSeed(p Params) uint64 {
	if p.Seed != nil {
		return *p.Seed
	}
	return rand.Uint64()
}

// nativeBackend is the pure Go implementation.
type nativeBackend struct{}

func (nativeBackend) Name() string { return DefaultBackend }

func (nativeBackend) Run(src *image.NRGBA, p Params) (*Result, error) {
	res := &Result{Backend: DefaultBackend, Seed: resolveSeed(p)}

	start := time.Now()
	res.Gray = Grayscale(src)
	res.track(StageGrayscale, start)

	start = time.Now()
	res.Blurred = MedianBlur(res.Gray, p.BlurValue)
	res.track(StageMedian, start)

	start = time.Now()
	res.Edges = AdaptiveThreshold(res.Blurred, p.LineSize, p.Offset())
	res.track(StageEdges, start)

	start = time.Now()
	q, err := Quantize(src, p.K, res.Seed)
	if err != nil {
		return nil, fmt.Errorf("color quantization: %w", err)
	}
	res.Quantized = q.Image
	res.Palette = q.Palette
	res.Compactness = q.Compactness
	res.track(StageQuantize, start)

	start = time.Now()
	res.Smoothed = BilateralFilter(res.Quantized, BilateralDiameter, BilateralSigmaColor, BilateralSigmaSpace)
	res.track(StageBilateral, start)

	start = time.Now()
	res.Cartoon, err = Composite(res.Smoothed, res.Edges)
	if err != nil {
		return nil, fmt.Errorf("compositing: %w", err)
	}
	res.track(StageComposite, start)

	return res, nil
}
