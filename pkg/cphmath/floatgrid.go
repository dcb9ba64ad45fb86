package cphmath

import "math"

// FloatGrid is a dense 2D grid of float64 values with a separable Gaussian
// blur. Grounded on pkg/emath.FloatGrid (stride + flat slice, edge-clamped
// two-pass separable blur), generalized from the teacher's fixed 3-tap
// [1,2,1]/4 kernel to an arbitrary radius/sigma Gaussian kernel so the
// highlight-detail USM can use the spec's radius-2, sigma-1.0 kernel.
type FloatGrid struct {
	stride int
	values []float64
}

func NewFloatGrid(w, h int) FloatGrid {
	return FloatGrid{stride: w, values: make([]float64, w*h)}
}

func (fg *FloatGrid) Set(x, y int, v float64) { fg.values[fg.stride*y+x] = v }
func (fg *FloatGrid) Get(x, y int) float64 {
	x = clampInt(x, 0, fg.stride-1)
	y = clampInt(y, 0, fg.Dy()-1)
	return fg.values[fg.stride*y+x]
}
func (fg *FloatGrid) Dx() int { return fg.stride }
func (fg *FloatGrid) Dy() int { return len(fg.values) / fg.stride }

func (fg *FloatGrid) NewFromThis() FloatGrid { return NewFloatGrid(fg.Dx(), fg.Dy()) }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// GaussianKernel1D returns a normalized 1D Gaussian kernel of the given
// radius and sigma, e.g. radius=2, sigma=1.0 for the highlight-detail USM.
func GaussianKernel1D(radius int, sigma float64) []float64 {
	n := 2*radius + 1
	k := make([]float64, n)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		k[i+radius] = v
		sum += v
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// GaussianBlur runs a separable two-pass Gaussian blur with edge-clamped
// source indexing, matching the X-then-Y pass structure of
// emath.FloatGrid.GaussianBlur.
func (fg FloatGrid) GaussianBlur(radius int, sigma float64) FloatGrid {
	kernel := GaussianKernel1D(radius, sigma)
	width, height := fg.Dx(), fg.Dy()

	tmp := fg.NewFromThis()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sum := 0.0
			for i := -radius; i <= radius; i++ {
				sum += fg.Get(x+i, y) * kernel[i+radius]
			}
			tmp.Set(x, y, sum)
		}
	}

	out := fg.NewFromThis()
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			sum := 0.0
			for i := -radius; i <= radius; i++ {
				sum += tmp.Get(x, y+i) * kernel[i+radius]
			}
			out.Set(x, y, sum)
		}
	}

	return out
}
