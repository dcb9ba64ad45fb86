package cphtone

import "github.com/zhangzhangco/cinema-pro-hdr/pkg/cphmath"

// applyPPR evaluates the Pivoted Power-Rational curve: a power law in the
// shadows, a rational curve in the highlights, C1-blended across a window
// of half-width 0.1*pivot centered on the pivot. Outside the window the
// pure segment is returned unmixed.
//
// Open question (spec.md §9): the source's bulk evaluator pins the shadow
// segment to exactly `p` at x=p before blending. This implementation's
// shadow/highlight formulas already evaluate to exactly p at x=p (the
// shadow power law gives p*1^gs=p, the highlight rational gives p+0=p), so
// the "pin" reading and the "purist continuous formula" reading coincide
// here; both satisfy monotonicity and C1 under the 1e-3 threshold, and the
// first-frame self-check logs which curve variant ran (see cph/pipeline.go).
func (c Curve) applyPPR(x float64) float64 {
	p := c.Pivot
	delta := 0.1 * p
	lo, hi := p-delta, p+delta

	// shadowAt extends the shadow power law past x=p using the
	// sign-preserving power idiom, so the blend window has a smooth
	// value to mix with on both sides of the pivot.
	shadowAt := func(x float64) float64 {
		ratio := cphmath.SafeDiv(x, p, 0)
		return p * cphmath.SignedPow(ratio, c.GammaS)
	}

	// highlightAt extends the highlight rational curve below x=p the
	// same way: u goes negative, and the rational term is evaluated
	// with a sign-preserving power so it stays finite and smooth.
	highlightAt := func(x float64) float64 {
		u := cphmath.SafeDiv(x-p, 1-p, 0)
		base := cphmath.SafeDiv(u, 1+c.ShoulderH*u, 0)
		return p + cphmath.SignedPow(base, c.GammaH)*(1-p)
	}

	switch {
	case x <= lo:
		return shadowAt(x)
	case x >= hi:
		return highlightAt(x)
	default:
		return cphmath.Mix(shadowAt(x), highlightAt(x), cphmath.Smoothstep(lo, hi, x))
	}
}
