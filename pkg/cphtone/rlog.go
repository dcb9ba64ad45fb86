package cphtone

import "github.com/zhangzhangco/cinema-pro-hdr/pkg/cphmath"

// applyRLOG evaluates the Rational Logarithmic curve: logarithmic in the
// shadows, rational in the highlights, spliced over a window of half-width
// delta=0.05 centered on rlog_t. The highlight branch is rescaled by a
// continuity factor s so the two segments agree exactly at the threshold.
func (c Curve) applyRLOG(x float64) float64 {
	t := c.RlogT
	const delta = 0.05
	lo, hi := t-delta, t+delta

	dark := func(x float64) float64 {
		num := cphmath.SafeLog(1+c.RlogA*x, 0)
		den := cphmath.SafeLog(1+c.RlogA, 1)
		return cphmath.SafeDiv(num, den, 0)
	}

	highlightRaw := func(x float64) float64 {
		return cphmath.SafeDiv(c.RlogB*x, 1+c.RlogC*x, 0)
	}

	// Continuity scale: the highlight branch used in the blend is
	// s*highlightRaw(x), with s chosen so the two segments agree at t.
	s := cphmath.SafeDiv(dark(t), highlightRaw(t), 1)

	highlight := func(x float64) float64 { return s * highlightRaw(x) }

	switch {
	case x <= lo:
		return dark(x)
	case x >= hi:
		return highlight(x)
	default:
		return cphmath.Mix(dark(x), highlight(x), cphmath.Smoothstep(lo, hi, x))
	}
}
