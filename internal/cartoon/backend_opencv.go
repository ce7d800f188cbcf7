//go:build opencv

package cartoon

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"
)

func init() {
	Register(openCVBackend{})
}

// openCVBackend runs the stages through GoCV. Mats built from Go images are
// in BGR channel order.
//
// k-means draws from OpenCV's process-wide RNG, which Run reseeds on every
// call. Seeded runs are only reproducible when no other opencv run is in
// flight; concurrent calls are otherwise safe but may interleave the RNG.
// The native backend has no such limit.
type openCVBackend struct{}

func (openCVBackend) Name() string { return "opencv" }

func (openCVBackend) Run(src *image.NRGBA, p Params) (*Result, error) {
	res := &Result{Backend: "opencv", Seed: resolveSeed(p)}
	gocv.SetRNGSeed(int(res.Seed & 0x7fffffff))

	bgr, err := gocv.ImageToMatRGB(src)
	if err != nil {
		return nil, fmt.Errorf("%w: converting input: %v", ErrProcessing, err)
	}
	defer bgr.Close()

	start := time.Now()
	gray := gocv.NewMat()
	defer gray.Close()
	if err := gocv.CvtColor(bgr, &gray, gocv.ColorBGRToGray); err != nil {
		return nil, fmt.Errorf("%w: grayscale conversion: %v", ErrProcessing, err)
	}
	res.Gray = grayFromMat(gray)
	res.track(StageGrayscale, start)

	start = time.Now()
	blurred := gocv.NewMat()
	defer blurred.Close()
	if err := gocv.MedianBlur(gray, &blurred, p.BlurValue); err != nil {
		return nil, fmt.Errorf("%w: median blur: %v", ErrProcessing, err)
	}
	res.Blurred = grayFromMat(blurred)
	res.track(StageMedian, start)

	start = time.Now()
	edges := gocv.NewMat()
	defer edges.Close()
	if err := gocv.AdaptiveThreshold(blurred, &edges, 255, gocv.AdaptiveThresholdMean,
		gocv.ThresholdBinary, p.LineSize, float32(p.Offset())); err != nil {
		return nil, fmt.Errorf("%w: adaptive threshold: %v", ErrProcessing, err)
	}
	res.Edges = grayFromMat(edges)
	res.track(StageEdges, start)

	start = time.Now()
	samples := bgr.Reshape(1, bgr.Rows()*bgr.Cols())
	defer samples.Close()
	data := gocv.NewMat()
	defer data.Close()
	samples.ConvertTo(&data, gocv.MatTypeCV32F)

	labels := gocv.NewMat()
	defer labels.Close()
	centers := gocv.NewMat()
	defer centers.Close()
	criteria := gocv.NewTermCriteria(gocv.Count|gocv.EPS, KMeansMaxIter, KMeansEpsilon)
	res.Compactness = gocv.KMeans(data, p.K, &labels, criteria, KMeansAttempts, gocv.KMeansRandomCenters, &centers)
	if labels.Empty() || centers.Rows() != p.K {
		return nil, fmt.Errorf("%w: k-means returned %d centers, want %d", ErrProcessing, centers.Rows(), p.K)
	}

	palette := make([]color.NRGBA, p.K)
	for c := range palette {
		palette[c] = color.NRGBA{
			R: roundChannel(float64(centers.GetFloatAt(c, 2))),
			G: roundChannel(float64(centers.GetFloatAt(c, 1))),
			B: roundChannel(float64(centers.GetFloatAt(c, 0))),
			A: 255,
		}
	}
	w, h := src.Rect.Dx(), src.Rect.Dy()
	quantized := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		c := palette[labels.GetIntAt(i, 0)]
		copy(quantized.Pix[i*4:], []uint8{c.R, c.G, c.B, 255})
	}
	res.Quantized = quantized
	res.Palette = distinctColors(palette)
	res.track(StageQuantize, start)

	start = time.Now()
	qmat, err := gocv.ImageToMatRGB(quantized)
	if err != nil {
		return nil, fmt.Errorf("%w: converting quantized image: %v", ErrProcessing, err)
	}
	defer qmat.Close()
	smoothed := gocv.NewMat()
	defer smoothed.Close()
	if err := gocv.BilateralFilter(qmat, &smoothed, BilateralDiameter, BilateralSigmaColor, BilateralSigmaSpace); err != nil {
		return nil, fmt.Errorf("%w: bilateral filter: %v", ErrProcessing, err)
	}
	res.Smoothed = nrgbaFromBGRMat(smoothed)
	res.track(StageBilateral, start)

	start = time.Now()
	edges3 := gocv.NewMat()
	defer edges3.Close()
	if err := gocv.CvtColor(edges, &edges3, gocv.ColorGrayToBGR); err != nil {
		return nil, fmt.Errorf("%w: expanding edge mask: %v", ErrProcessing, err)
	}
	combined := gocv.NewMat()
	defer combined.Close()
	if err := gocv.BitwiseAnd(smoothed, edges3, &combined); err != nil {
		return nil, fmt.Errorf("%w: compositing: %v", ErrProcessing, err)
	}
	res.Cartoon = nrgbaFromBGRMat(combined)
	res.track(StageComposite, start)

	return res, nil
}

func grayFromMat(m gocv.Mat) *image.Gray {
	w, h := m.Cols(), m.Rows()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.Pix[y*dst.Stride+x] = m.GetUCharAt(y, x)
		}
	}
	return dst
}

func nrgbaFromBGRMat(m gocv.Mat) *image.NRGBA {
	w, h := m.Cols(), m.Rows()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := m.GetVecbAt(y, x)
			o := y*dst.Stride + x*4
			dst.Pix[o] = v[2]
			dst.Pix[o+1] = v[1]
			dst.Pix[o+2] = v[0]
			dst.Pix[o+3] = 255
		}
	}
	return dst
}
