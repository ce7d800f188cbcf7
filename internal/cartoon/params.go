package cartoon

import "fmt"

// Fixed tuning of the quantization and smoothing stages.
const (
	KMeansMaxIter  = 20
	KMeansEpsilon  = 0.001
	KMeansAttempts = 10

	BilateralDiameter   = 7
	BilateralSigmaColor = 200.0
	BilateralSigmaSpace = 200.0
)

// Params holds the per-call knobs of the pipeline.
type Params struct {
	// LineSize is the adaptive-threshold window size. Odd, >= 3. Larger values
	// produce thicker outlines.
	LineSize int `json:"line_size"`

	// BlurValue is the median-blur kernel size. Odd, >= 3.
	BlurValue int `json:"blur_value"`

	// K is the number of colors in the quantized palette. 2 <= K <= H*W.
	K int `json:"k"`

	// ThresholdOffset is the constant subtracted from the neighborhood mean in
	// the edge stage. Nil means BlurValue.
	ThresholdOffset *int `json:"threshold_offset,omitempty"`

	// Seed fixes the k-means random source. Nil draws a fresh seed per call.
	Seed *uint64 `json:"seed,omitempty"`
}

// DefaultParams returns line size 7, blur 7 and nine colors.
func DefaultParams() Params {
	return Params{LineSize: 7, BlurValue: 7, K: 9}
}

// Offset returns the adaptive-threshold constant in effect.
func (p Params) Offset() int {
	if p.ThresholdOffset != nil {
		return *p.ThresholdOffset
	}
	return p.BlurValue
}

// WithSeed returns a copy of p with the k-means seed set.
func (p Params) WithSeed(seed uint64) Params {
	p.Seed = &seed
	return p
}

// WithThresholdOffset returns a copy of p with an explicit threshold constant.
func (p Params) WithThresholdOffset(c int) Params {
	p.ThresholdOffset = &c
	return p
}

// Validate checks p against an image with the given number of pixels.
func (p Params) Validate(pixels int) error {
	if err := checkKernel("line size", p.LineSize); err != nil {
		return err
	}
	if err := checkKernel("blur value", p.BlurValue); err != nil {
		return err
	}
	if p.K < 2 {
		return fmt.Errorf("%w: k must be at least 2, got %d", ErrInvalidParameter, p.K)
	}
	if p.K > pixels {
		return fmt.Errorf("%w: k=%d exceeds pixel count %d", ErrInvalidParameter, p.K, pixels)
	}
	return nil
}

func checkKernel(name string, size int) error {
	if size < 3 {
		return fmt.Errorf("%w: %s must be at least 3, got %d", ErrInvalidParameter, name, size)
	}
	if size%2 == 0 {
		return fmt.Errorf("%w: %s must be odd, got %d", ErrInvalidParameter, name, size)
	}
	return nil
}

// Range is an inclusive integer interval with a step, as presented to users.
type Range struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Step    int `json:"step"`
	Default int `json:"default"`
}

// Contains reports whether v lies in r and on its step grid.
func (r Range) Contains(v int) bool {
	if v < r.Min || v > r.Max {
		return false
	}
	return r.Step <= 1 || (v-r.Min)%r.Step == 0
}

// Limits are the ranges a caller offers for each parameter. The pipeline
// accepts anything Validate accepts; Limits is the narrower, user-facing
// contract enforced by the tool and CLI surfaces.
type Limits struct {
	LineSize  Range `json:"line_size"`
	BlurValue Range `json:"blur_value"`
	K         Range `json:"k"`
}

// DefaultLimits are the slider ranges: odd 3-15 for both kernels, 2-20 colors.
func DefaultLimits() Limits {
	return Limits{
		LineSize:  Range{Min: 3, Max: 15, Step: 2, Default: 7},
		BlurValue: Range{Min: 3, Max: 15, Step: 2, Default: 7},
		K:         Range{Min: 2, Max: 20, Step: 1, Default: 9},
	}
}

// Check reports the first parameter of p that falls outside l.
func (l Limits) Check(p Params) error {
	switch {
	case !l.LineSize.Contains(p.LineSize):
		return fmt.Errorf("%w: line size %d outside %d-%d (step %d)",
			ErrInvalidParameter, p.LineSize, l.LineSize.Min, l.LineSize.Max, l.LineSize.Step)
	case !l.BlurValue.Contains(p.BlurValue):
		return fmt.Errorf("%w: blur value %d outside %d-%d (step %d)",
			ErrInvalidParameter, p.BlurValue, l.BlurValue.Min, l.BlurValue.Max, l.BlurValue.Step)
	case !l.K.Contains(p.K):
		return fmt.Errorf("%w: k %d outside %d-%d", ErrInvalidParameter, p.K, l.K.Min, l.K.Max)
	}
	return nil
}
