// Package cphcolor implements the PQ (ST 2084) transfer functions, the
// frozen working-domain color matrices, and OKLab conversion used by the
// frame pipeline. It is grounded on pkg/ecolor and pkg/emath of the
// teacher repo, generalized from a single camera-development path to the
// spec's BT2020_PQ/P3_D65/ACESG/REC709 working-domain transforms.
package cphcolor

import (
	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphmath"
)

// ST 2084 constants.
const (
	pqM1    = 0.1593017578125
	pqM2    = 78.84375
	pqC1    = 0.8359375
	pqC2    = 18.8515625
	pqC3    = 18.6875
	pqScale = 10000.0 // cd/m^2
)

// PQEOTF maps a PQ-normalized code value in [0,1] to linear luminance in
// [0, 10000] cd/m^2. Non-finite input maps to 0; input >= 1 maps to 10000.
func PQEOTF(x float64) float64 {
	if !cphmath.IsFinite(x) {
		return 0
	}
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return pqScale
	}

	num := cphmath.SafePow(x, 1.0/pqM2, 0)
	num -= pqC1
	if num < 0 {
		num = 0
	}
	den := pqC2 - pqC3*cphmath.SafePow(x, 1.0/pqM2, 0)
	y := cphmath.SafeDiv(num, den, 0)
	y = cphmath.SafePow(y, 1.0/pqM1, 0)
	return y * pqScale
}

// PQOETF is the right inverse of PQEOTF: linear luminance in [0,10000] to a
// PQ-normalized code value in [0,1].
func PQOETF(y float64) float64 {
	if !cphmath.IsFinite(y) {
		return 0
	}
	if y <= 0 {
		return 0
	}
	if y >= pqScale {
		return 1
	}

	yn := y / pqScale
	num := pqC1 + pqC2*cphmath.SafePow(yn, pqM1, 0)
	den := 1 + pqC3*cphmath.SafePow(yn, pqM1, 0)
	return cphmath.SafePow(cphmath.SafeDiv(num, den, 0), pqM2, 0)
}

// PQEOTFVec3 / PQOETFVec3 apply the scalar functions per-channel.
func PQEOTFVec3(v cphmath.Vec3) cphmath.Vec3 {
	return cphmath.Vec3{PQEOTF(v[0]), PQEOTF(v[1]), PQEOTF(v[2])}
}

func PQOETFVec3(v cphmath.Vec3) cphmath.Vec3 {
	return cphmath.Vec3{PQOETF(v[0]), PQOETF(v[1]), PQOETF(v[2])}
}
