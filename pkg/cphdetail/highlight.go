// Package cphdetail implements the highlight-detail unsharp mask: pivot
// masking, the separable Gaussian blur, motion protection across frames,
// and the temporal-frequency flicker check. Grounded on
// pkg/emath.FloatGrid's Gaussian blur and pkg/fattal02's practice of
// lifting a frame's channels into FloatGrids, processing them, and
// recomposing -- generalized from Fattal02's gradient-domain attenuation
// to a pivot-masked unsharp mask.
package cphdetail

import (
	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphframe"
	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphmath"
)

const (
	blurRadius = 2
	blurSigma  = 1.0
	usmThresh  = 0.03
)

// Options bundles the per-frame tunables the pipeline passes into Process.
type Options struct {
	Pivot     float64 // pivot_pq
	Intensity float64 // highlight_detail, already halved by motion protection if applicable
}

// Process applies the pivot-masked unsharp mask to frame in place of a
// fresh copy, returning the processed frame. When opts.Intensity is 0 the
// result is pixel-wise identical to the input (spec.md §4.4's idempotency
// invariant), and pixels at or below the pivot are always left untouched.
func Process(frame *cphframe.Frame, opts Options) *cphframe.Frame {
	out := frame.Clone()
	if opts.Intensity <= 0 {
		return out
	}

	w, h := frame.Width, frame.Height
	r, g, b := toGrids(frame)
	br := r.GaussianBlur(blurRadius, blurSigma)
	bg := g.GaussianBlur(blurRadius, blurSigma)
	bb := b.GaussianBlur(blurRadius, blurSigma)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			orig := frame.At(x, y)
			lum := orig.Max()
			mask := highlightMask(lum, opts.Pivot)
			if mask <= 0 {
				continue
			}

			d := cphmath.Vec3{
				unsharpDelta(orig[0]-br.Get(x, y), opts.Intensity),
				unsharpDelta(orig[1]-bg.Get(x, y), opts.Intensity),
				unsharpDelta(orig[2]-bb.Get(x, y), opts.Intensity),
			}

			composed := cphmath.Vec3{
				cphmath.Saturate(orig[0] + d[0]*mask),
				cphmath.Saturate(orig[1] + d[1]*mask),
				cphmath.Saturate(orig[2] + d[2]*mask),
			}
			out.Set(x, y, composed)
		}
	}

	return out
}

// highlightMask computes the [0,1] highlight weight for a MaxRGB luminance
// proxy: 0 at or below pivot, ramping linearly to 1 as lum approaches 1.
func highlightMask(lum, pivot float64) float64 {
	if lum <= pivot {
		return 0
	}
	return cphmath.Clamp(cphmath.SafeDiv(lum-pivot, 1-pivot, 0), 0, 1)
}

func unsharpDelta(d, amount float64) float64 {
	if d > usmThresh || d < -usmThresh {
		return d * amount
	}
	return 0
}

func toGrids(f *cphframe.Frame) (r, g, b cphmath.FloatGrid) {
	r = cphmath.NewFloatGrid(f.Width, f.Height)
	g = cphmath.NewFloatGrid(f.Width, f.Height)
	b = cphmath.NewFloatGrid(f.Width, f.Height)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			v := f.At(x, y)
			r.Set(x, y, v[0])
			g.Set(x, y, v[1])
			b.Set(x, y, v[2])
		}
	}
	return
}
