package cph

import (
	"testing"

	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphcolor"
	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphframe"
	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphmath"
)

func TestTierTwoFallbackProducesFiniteFrame(t *testing.T) {
	in := cphframe.NewFrame(2, 2, cphcolor.BT2020PQ)
	in.Set(0, 0, cphmath.Vec3{0.9, 0.4, 0.1})
	in.Set(1, 0, cphmath.Vec3{0.0, 0.0, 0.0})
	in.Set(0, 1, cphmath.Vec3{0.5, 0.5, 0.5})
	in.Set(1, 1, cphmath.Vec3{1.0, 1.0, 1.0})

	out := TierTwoFallback(in, cphcolor.BT2020PQ)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			v := out.At(x, y)
			for c := 0; c < 3; c++ {
				if !cphmath.IsFinite(v[c]) {
					t.Fatalf("pixel (%d,%d)[%d] non-finite: %v", x, y, c, v)
				}
				if v[c] < 0 || v[c] > 1 {
					t.Errorf("pixel (%d,%d)[%d] = %v, want within [0,1]", x, y, c, v[c])
				}
			}
		}
	}

	// A non-black source pixel must not collapse to black: the tmo
	// operator's result comes back as a plain color.Color, and reading it
	// wrong (e.g. via a failed hdrcolor.Color type assertion) silently
	// produces all-black output that the finiteness/range checks above
	// would never catch.
	if v := out.At(0, 0); v == (cphmath.Vec3{}) {
		t.Error("TierTwoFallback produced a black pixel for a bright, non-black input")
	}
}

func TestTierThreeFallbackIsIdentity(t *testing.T) {
	in := cphframe.NewFrame(1, 1, cphcolor.BT2020PQ)
	in.Set(0, 0, cphmath.Vec3{0.3, 0.6, 0.9})
	out := TierThreeFallback(in)
	if out.At(0, 0) != in.At(0, 0) {
		t.Errorf("TierThreeFallback changed a pixel: %v -> %v", in.At(0, 0), out.At(0, 0))
	}
	if out == in {
		t.Error("TierThreeFallback should return a clone, not the same frame")
	}
}
