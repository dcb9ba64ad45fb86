package cphcolor

import "github.com/zhangzhangco/cinema-pro-hdr/pkg/cphmath"

// OKLab <-> linear RGB, using the published Björn Ottosson matrices
// (https://bottosson.github.io/posts/oklab/), generalized from the
// float32 LinearsRGB/OkLab pair to the pipeline's float64 Vec3 and made
// sign-preserving in the cube-root step so slightly out-of-gamut (negative)
// linear RGB survives the round trip without producing NaNs.
type OKLab struct {
	L, A, B float64
}

var (
	rgbToLMS = cphmath.Mat3{
		0.4122214708, 0.5363325363, 0.0514459929,
		0.2119034982, 0.6806995451, 0.1073969566,
		0.0883024619, 0.2817188376, 0.6299787005,
	}
	lmsToOKLab = cphmath.Mat3{
		0.2104542553, 0.7936177850, -0.0040720468,
		1.9779984951, -2.4285922050, 0.4505937099,
		0.0259040371, 0.7827717662, -0.8086757660,
	}
	oklabToLMS3 = cphmath.Mat3{
		1, 0.3963377774, 0.2158037573,
		1, -0.1055613458, -0.0638541728,
		1, -0.0894841775, -1.2914855480,
	}
	lmsToRGB = cphmath.Mat3{
		4.0767416621, -3.3077115913, 0.2309699292,
		-1.2684380046, 2.6097574011, -0.3413193965,
		-0.0041960863, -0.7034186147, 1.7076147010,
	}
)

// LinearRGBToOKLab converts a linear RGB triple to OKLab. Non-finite input
// yields (0,0,0), per spec §4.2.
func LinearRGBToOKLab(rgb cphmath.Vec3) OKLab {
	if !rgb.AllFinite() {
		return OKLab{}
	}
	lms := rgbToLMS.Apply(rgb)
	l3 := cphmath.SignedCbrt(lms[0])
	m3 := cphmath.SignedCbrt(lms[1])
	s3 := cphmath.SignedCbrt(lms[2])
	lab := lmsToOKLab.Apply(cphmath.Vec3{l3, m3, s3})
	return OKLab{lab[0], lab[1], lab[2]}
}

// OKLabToLinearRGB is the inverse of LinearRGBToOKLab.
func OKLabToLinearRGB(c OKLab) cphmath.Vec3 {
	if !cphmath.IsFinite(c.L) || !cphmath.IsFinite(c.A) || !cphmath.IsFinite(c.B) {
		return cphmath.Vec3{}
	}
	lms3 := oklabToLMS3.Apply(cphmath.Vec3{c.L, c.A, c.B})
	lms := cphmath.Vec3{lms3[0] * lms3[0] * lms3[0], lms3[1] * lms3[1] * lms3[1], lms3[2] * lms3[2] * lms3[2]}
	return lmsToRGB.Apply(lms)
}
