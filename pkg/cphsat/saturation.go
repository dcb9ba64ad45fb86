// Package cphsat implements OKLab perceptual saturation shaping and the
// two-stage gamut processor (C5). Grounded on pkg/ecolor's habit of moving
// between linear RGB and a perceptually-motivated space for chroma work, and
// on the teacher's practice of carrying a diagnostic String()/distance
// helper on every color type for error-record readability — here realized
// with github.com/lucasb-eyer/go-colorful's colorful.Color and DistanceLab.
package cphsat

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphcolor"
	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphmath"
)

// Options bundles the saturation parameters a pixel is processed with.
type Options struct {
	SatBase       float64 // sat_base, [0,2]
	SatHi         float64 // sat_hi, [0,2]
	Pivot         float64 // pivot_pq, marks the start of the highlight weight ramp
	DCICompliance bool    // trims sat_hi by 0.925 before the highlight step
}

// Saturate applies base and highlight OKLab saturation to a working-domain
// linear RGB pixel, per spec.md §4.5. lum is the MaxRGB of the pixel taken
// before this stage (the post-tone, pre-saturation luminance proxy); L is
// never modified.
func Saturate(rgb cphmath.Vec3, lum float64, opts Options) cphmath.Vec3 {
	lab := cphcolor.LinearRGBToOKLab(rgb)

	a, b := lab.A*opts.SatBase, lab.B*opts.SatBase

	satHi := opts.SatHi
	if opts.DCICompliance {
		satHi *= 0.925
	}
	aHi, bHi := a*satHi, b*satHi

	w := cphmath.Smoothstep(opts.Pivot, 1.0, lum)
	a = cphmath.Mix(a, aHi, w)
	b = cphmath.Mix(b, bHi, w)

	out := cphcolor.OKLab{L: lab.L, A: a, B: b}
	return cphcolor.OKLabToLinearRGB(out)
}

// ChromaDelta reports the perceptual (CIE Lab) distance between a pixel
// before and after a saturation or gamut operation, for diagnostics and
// throttled log lines. Both inputs are linear-RGB working-domain pixels,
// treated as sRGB-primaried for the purpose of this distance estimate --
// the metric is relative, not colorimetrically exact.
func ChromaDelta(before, after cphmath.Vec3) float64 {
	c1 := colorful.Color{R: cphmath.Saturate(before[0]), G: cphmath.Saturate(before[1]), B: cphmath.Saturate(before[2])}
	c2 := colorful.Color{R: cphmath.Saturate(after[0]), G: cphmath.Saturate(after[1]), B: cphmath.Saturate(after[2])}
	return c1.DistanceLab(c2)
}
