package cphcolor

import (
	"math"
	"testing"

	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphmath"
)

func TestOKLabRoundTrip(t *testing.T) {
	samples := []cphmath.Vec3{
		{0.1, 0.1, 0.1},
		{1, 1, 1},
		{0.8, 0.2, 0.4},
		{0, 0, 0},
		{0.5, 0.5, 0.5},
	}
	for _, v := range samples {
		lab := LinearRGBToOKLab(v)
		back := OKLabToLinearRGB(lab)
		for i := 0; i < 3; i++ {
			if math.Abs(back[i]-v[i]) > 1e-3 {
				t.Errorf("round trip %v: channel %d got %v want %v", v, i, back[i], v[i])
			}
		}
	}
}

func TestOKLabNonFinite(t *testing.T) {
	lab := LinearRGBToOKLab(cphmath.Vec3{math.NaN(), 0, 0})
	if lab != (OKLab{}) {
		t.Errorf("LinearRGBToOKLab(NaN) = %v, want zero value", lab)
	}
}
