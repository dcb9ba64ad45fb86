package cphcolor

import "math"

// GammaExpandSRGB applies the sRGB encoding (the inverse of the sRGB EOTF)
// to a [0,1] linear-light channel, returning the display-encoded value.
// Grounded on emath.GammaExpand_F64 / ecolor's use of the same formula.
func GammaExpandSRGB(f float64) float64 {
	if f <= 0.0031308 {
		return 12.92 * f
	}
	return 1.055*math.Pow(f, 1.0/2.4) - 0.055
}
