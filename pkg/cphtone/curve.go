// Package cphtone implements the PPR and RLOG analytic tone curves, the
// shared soft-knee/toe post-processing, and their monotonicity/C1
// validators. Grounded on pkg/eclipse/tonemap.go's strategy-selection style
// (a small named-variant switch wrapping a real algorithm) and generalized
// from "pick one of N external tmo.ToneMappingOperator implementations" to
// "evaluate one of two analytic curve formulas in closed form."
package cphtone

import "github.com/zhangzhangco/cinema-pro-hdr/pkg/cphmath"

// CurveKind selects which analytic tone curve is in force.
type CurveKind int

const (
	PPR CurveKind = iota
	RLOG
)

func (k CurveKind) String() string {
	if k == RLOG {
		return "RLOG"
	}
	return "PPR"
}

// Curve evaluates a single analytic tone curve, including the shared
// soft-knee and toe-clamp post-processing. All fields are assumed already
// range-validated by the params package; Curve does not re-validate them.
type Curve struct {
	Kind CurveKind

	// PPR parameters
	Pivot       float64
	GammaS      float64
	GammaH      float64
	ShoulderH   float64

	// RLOG parameters
	RlogA float64
	RlogB float64
	RlogC float64
	RlogT float64

	// Shared post-processing
	YKnee float64
	Alpha float64
	Toe   float64
}

// Apply maps a PQ-normalized luminance proxy x in [0,1] through the
// selected curve, the soft knee, and the toe clamp, finishing with a
// range-protecting saturate. Non-finite x returns 0.
func (c Curve) Apply(x float64) float64 {
	if !cphmath.IsFinite(x) {
		return 0
	}

	var y float64
	switch c.Kind {
	case RLOG:
		y = c.applyRLOG(x)
	default:
		y = c.applyPPR(x)
	}

	if !cphmath.IsFinite(y) {
		return 0
	}

	y = c.softKnee(y)
	y = c.toeClamp(y)
	return cphmath.Saturate(y)
}

// softKnee compresses y above yknee. Only engages when y > yknee, and
// always keeps y' < 1: the normalized excess n is capped at 1, so every
// y >= 1 maps to yknee + (1-yknee)/(1+alpha).
func (c Curve) softKnee(y float64) float64 {
	if y <= c.YKnee {
		return y
	}
	maxExcess := 1 - c.YKnee
	excess := y - c.YKnee
	n := cphmath.Saturate(cphmath.SafeDiv(excess, maxExcess, 0))
	return c.YKnee + maxExcess*cphmath.SafeDiv(n, 1+c.Alpha*n, 0)
}

// toeClamp is the final lower-bound floor: toeClamp(0) == 0, and for any
// y > 0 the result is >= Toe.
func (c Curve) toeClamp(y float64) float64 {
	if y > 0 && y < c.Toe {
		return c.Toe
	}
	return y
}
