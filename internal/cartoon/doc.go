// Package cartoon renders a cartoon stylization of a still image.
//
// The pipeline is a fixed composition of six stages, each consuming the
// previous stage's output:
//
//  1. Grayscale: BT.601 luma of the color image.
//  2. Median blur: BlurValue x BlurValue median, edges replicated.
//  3. Edge mask: adaptive mean threshold over a LineSize x LineSize window.
//     Edge pixels are 0, flat regions 255.
//  4. Quantization: k-means over the original colors, every pixel replaced
//     by its cluster center.
//  5. Smoothing: bilateral filter (diameter 7, sigma 200/200) on the
//     quantized image.
//  6. Compositing: the smoothed image ANDed with the edge mask, so edges
//     come out black.
//
// # Determinism
//
// Stages 1-3 and 5-6 are deterministic. Stage 4 draws random initial centers;
// set Params.Seed to make the whole pipeline reproducible.
//
// # Backends
//
// The pure Go "native" backend is always registered. Building with the
// opencv tag adds an "opencv" backend that runs the same stages through GoCV.
//
// # Thread Safety
//
// Run and Cartoonify keep no state between calls and never modify the input
// image, so they can be called concurrently. The opencv backend seeds
// OpenCV's process-wide RNG, so its seeded runs reproduce only when no other
// opencv run overlaps them.
package cartoon
