package cphsat

import (
	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphcolor"
	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphmath"
)

const maxPerceptualIterations = 10

// GamutResult carries the gamut-mapped pixel plus the diagnostics the
// pipeline needs for statistics and error records.
type GamutResult struct {
	Pixel         cphmath.Vec3
	WasOutOfGamut bool // true if stage 1 or stage 2 had to act
	ChromaDelta   float64
	Iterations    int  // perceptual-clamp iterations consumed, 0 if stage 2 never engaged
	Stage2Engaged bool // true if the iterative OKLab clamp ran at all
	Converged     bool // meaningless unless Stage2Engaged; true if an iterate landed inside the box
}

// TwoStageGamut runs the linear-compression stage followed by, when needed,
// the iterative OKLab perceptual clamp, per spec.md §4.5. target selects
// the gamut box: ACEScg gets the permissive 2/M scale and -0.5 negative
// floor, every other color space gets the standard 1/M scale and a 0
// negative floor.
func TwoStageGamut(pixel cphmath.Vec3, target cphcolor.ColorSpace, dciCompliance bool) GamutResult {
	stage1, stage1Acted := linearCompress(pixel, target)

	res := GamutResult{Pixel: stage1, WasOutOfGamut: stage1Acted, Converged: true}

	needsStage2 := dciCompliance || !insideGamutBox(stage1, target)
	if !needsStage2 {
		return res
	}

	clamped, iters, converged := perceptualClamp(stage1, target)
	res.Pixel = clamped
	res.Iterations = iters
	res.Stage2Engaged = true
	res.Converged = converged
	res.WasOutOfGamut = res.WasOutOfGamut || !converged || iters > 0
	res.ChromaDelta = ChromaDelta(pixel, clamped)
	return res
}

func gamutBounds(target cphcolor.ColorSpace) (lo, hi float64) {
	if target == cphcolor.ACESG {
		return -0.5, 2.0
	}
	return 0.0, 1.0
}

// ClampToGamutBox coordinate-clamps v to target's gamut box, for the final
// saturate/clamp spec.md §4.6 step 7 requires after the working-domain to
// output-color-space conversion (the primaries matrix can reintroduce
// out-of-box components that the pre-conversion two-stage pass never saw).
func ClampToGamutBox(v cphmath.Vec3, target cphcolor.ColorSpace) cphmath.Vec3 {
	return coordinateClamp(v, target)
}

func insideGamutBox(v cphmath.Vec3, target cphcolor.ColorSpace) bool {
	lo, hi := gamutBounds(target)
	for i := 0; i < 3; i++ {
		if v[i] < lo || v[i] > hi {
			return false
		}
	}
	return true
}

// linearCompress is stage 1: scale down by the max channel when it exceeds
// the gamut's headroom, then clamp negatives to the gamut's floor.
func linearCompress(v cphmath.Vec3, target cphcolor.ColorSpace) (cphmath.Vec3, bool) {
	acted := false
	lo, _ := gamutBounds(target)

	m := v[0]
	for i := 1; i < 3; i++ {
		if v[i] > m {
			m = v[i]
		}
	}

	headroom := 1.0
	if target == cphcolor.ACESG {
		headroom = 2.0
	}

	out := v
	if m > headroom {
		scale := headroom / m
		out = cphmath.Vec3{v[0] * scale, v[1] * scale, v[2] * scale}
		acted = true
	}

	for i := 0; i < 3; i++ {
		if out[i] < lo {
			out[i] = lo
			acted = true
		}
	}
	return out, acted
}

// perceptualClamp is stage 2: iterate in OKLab, shrinking chroma by 0.9 per
// retry, accepting the first iterate that lands inside the gamut box. L is
// held fixed throughout. If no iterate converges, the last one is
// coordinate-clamped to the box.
func perceptualClamp(v cphmath.Vec3, target cphcolor.ColorSpace) (cphmath.Vec3, int, bool) {
	lab := cphcolor.LinearRGBToOKLab(v)
	a, b := lab.A, lab.B

	var candidate cphmath.Vec3
	for i := 0; i < maxPerceptualIterations; i++ {
		candidate = cphcolor.OKLabToLinearRGB(cphcolor.OKLab{L: lab.L, A: a, B: b})
		if insideGamutBox(candidate, target) {
			return candidate, i, true
		}
		a *= 0.9
		b *= 0.9
	}

	return coordinateClamp(candidate, target), maxPerceptualIterations, false
}

func coordinateClamp(v cphmath.Vec3, target cphcolor.ColorSpace) cphmath.Vec3 {
	lo, hi := gamutBounds(target)
	return cphmath.Vec3{
		cphmath.Clamp(v[0], lo, hi),
		cphmath.Clamp(v[1], lo, hi),
		cphmath.Clamp(v[2], lo, hi),
	}
}
