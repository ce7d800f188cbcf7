package cartoon

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// clustering is the outcome of one k-means attempt.
type clustering struct {
	labels      []int32
	centers     [][3]float64
	compactness float64
}

// Quantization is the stage-4 output.
type Quantization struct {
	// Image has every pixel replaced by its cluster's center color.
	Image *image.NRGBA

	// Palette holds the distinct center colors, in cluster order.
	Palette []color.NRGBA

	// Compactness is the sum of squared distances from each pixel to its
	// center for the winning attempt.
	Compactness float64
}

// Quantize reduces src to at most k colors with k-means clustering over its
// RGB values. KMeansAttempts independent attempts are run, each seeded from
// seed, and the most compact one wins. k must be in [2, pixel count].
func Quantize(src *image.NRGBA, k int, seed uint64) (*Quantization, error) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	points := make([][3]float64, 0, w*h)
	for y := 0; y < h; y++ {
		i := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
		for x := 0; x < w; x++ {
			points = append(points, [3]float64{
				float64(src.Pix[i]), float64(src.Pix[i+1]), float64(src.Pix[i+2]),
			})
			i += 4
		}
	}

	best, err := kmeans(points, k, seed)
	if err != nil {
		return nil, err
	}

	centers := make([]color.NRGBA, k)
	for c, center := range best.centers {
		centers[c] = color.NRGBA{
			R: roundChannel(center[0]),
			G: roundChannel(center[1]),
			B: roundChannel(center[2]),
			A: 255,
		}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, label := range best.labels {
		c := centers[label]
		o := i * 4
		dst.Pix[o] = c.R
		dst.Pix[o+1] = c.G
		dst.Pix[o+2] = c.B
		dst.Pix[o+3] = 255
	}

	return &Quantization{
		Image:       dst,
		Palette:     distinctColors(centers),
		Compactness: best.compactness,
	}, nil
}

// kmeans runs KMeansAttempts attempts concurrently and keeps the one with
// the lowest compactness. Ties go to the earliest attempt so that a fixed
// seed gives a fixed answer.
func kmeans(points [][3]float64, k int, seed uint64) (*clustering, error) {
	if k < 2 || k > len(points) {
		return nil, fmt.Errorf("%w: k=%d with %d samples", ErrInvalidParameter, k, len(points))
	}

	box := boundingBox(points)
	results := make([]*clustering, KMeansAttempts)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for a := range KMeansAttempts {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(seed, uint64(a)))
			c := kmeansAttempt(points, k, box, rng)
			if math.IsNaN(c.compactness) || math.IsInf(c.compactness, 0) {
				return fmt.Errorf("%w: k-means attempt %d produced compactness %v", ErrProcessing, a, c.compactness)
			}
			results[a] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := results[0]
	for _, c := range results[1:] {
		if c.compactness < best.compactness {
			best = c
		}
	}
	return best, nil
}

// kmeansAttempt runs Lloyd iterations from random starting centers until the
// largest squared center shift drops to KMeansEpsilon² or KMeansMaxIter
// rounds have been spent.
func kmeansAttempt(points [][3]float64, k int, box [3][2]float64, rng *rand.Rand) *clustering {
	centers := make([][3]float64, k)
	old := make([][3]float64, k)
	labels := make([]int32, len(points))
	counts := make([]int, k)
	sums := make([][3]float64, k)
	eps := KMeansEpsilon * KMeansEpsilon

	for c := range centers {
		centers[c] = randomCenter(box, rng)
	}
	compactness := assignLabels(points, centers, labels)

	for iter := 1; iter < KMeansMaxIter; iter++ {
		copy(old, centers)
		updateCenters(points, labels, old, centers, counts, sums)

		shift := 0.0
		for c := range centers {
			shift = math.Max(shift, distSq(centers[c], old[c]))
		}

		compactness = assignLabels(points, centers, labels)
		if shift <= eps {
			break
		}
	}

	return &clustering{labels: labels, centers: centers, compactness: compactness}
}

// randomCenter draws a point uniformly from the data bounding box widened
// by a third of its extent on each side.
func randomCenter(box [3][2]float64, rng *rand.Rand) [3]float64 {
	const margin = 1.0 / 3
	var c [3]float64
	for j := range c {
		c[j] = (rng.Float64()*(1+2*margin)-margin)*(box[j][1]-box[j][0]) + box[j][0]
	}
	return c
}

// assignLabels points every sample at its nearest center (lowest index on
// ties) and returns the summed squared distance.
func assignLabels(points [][3]float64, centers [][3]float64, labels []int32) float64 {
	var total float64
	for i, p := range points {
		best, bestDist := 0, math.MaxFloat64
		for c := range centers {
			if d := distSq(p, centers[c]); d < bestDist {
				best, bestDist = c, d
			}
		}
		labels[i] = int32(best)
		total += bestDist
	}
	return total
}

// updateCenters moves every center to the mean of its members. A cluster
// left empty takes over the member of the largest cluster that lies
// farthest from that cluster's previous center.
func updateCenters(points [][3]float64, labels []int32, old, centers [][3]float64, counts []int, sums [][3]float64) {
	for c := range sums {
		sums[c] = [3]float64{}
		counts[c] = 0
	}
	for i, p := range points {
		l := labels[i]
		sums[l][0] += p[0]
		sums[l][1] += p[1]
		sums[l][2] += p[2]
		counts[l]++
	}

	for c := range counts {
		if counts[c] != 0 {
			continue
		}

		largest := 0
		for j := range counts {
			if counts[j] > counts[largest] {
				largest = j
			}
		}

		far, farDist := -1, -1.0
		for i, p := range points {
			if int(labels[i]) != largest {
				continue
			}
			if d := distSq(p, old[largest]); d > farDist {
				far, farDist = i, d
			}
		}

		p := points[far]
		labels[far] = int32(c)
		counts[largest]--
		counts[c]++
		for j := range 3 {
			sums[largest][j] -= p[j]
			sums[c][j] += p[j]
		}
	}

	for c := range centers {
		n := float64(counts[c])
		centers[c] = [3]float64{sums[c][0] / n, sums[c][1] / n, sums[c][2] / n}
	}
}

func boundingBox(points [][3]float64) [3][2]float64 {
	var box [3][2]float64
	for j := range 3 {
		box[j] = [2]float64{points[0][j], points[0][j]}
	}
	for _, p := range points[1:] {
		for j := range 3 {
			box[j][0] = math.Min(box[j][0], p[j])
			box[j][1] = math.Max(box[j][1], p[j])
		}
	}
	return box
}

func distSq(a, b [3]float64) float64 {
	d0, d1, d2 := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return d0*d0 + d1*d1 + d2*d2
}

func roundChannel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}

// distinctColors returns colors with duplicates removed, first occurrence
// kept.
func distinctColors(colors []color.NRGBA) []color.NRGBA {
	seen := make(map[color.NRGBA]bool, len(colors))
	out := make([]color.NRGBA, 0, len(colors))
	for _, c := range colors {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
