package cphcolor

import "github.com/zhangzhangco/cinema-pro-hdr/pkg/cphmath"

// ToWorking implements C2.to_working from spec.md §2's data-flow diagram:
// a pixel tagged with an arbitrary input color space is brought into the
// BT.2020 + PQ-normalized working domain. BT2020PQ pixels pass through
// unchanged (they are already there); every other tag is treated as
// scene-linear light in its own primaries and is matrixed into BT.2020
// linear before the PQ OETF encodes it into [0,1].
func ToWorking(v cphmath.Vec3, from ColorSpace) cphmath.Vec3 {
	if from == BT2020PQ {
		return v
	}
	_, fromCS := MatrixFor(from)
	linear := fromCS.Apply(v)
	// PQOETF expects cd/m^2 in [0,10000]; the matrix set operates on a
	// normalized [0,1] linear proxy, so scale up before encoding. This is
	// undone by FromWorking's matching /pqScale, keeping the pair inverse.
	linear = cphmath.Vec3{linear[0] * pqScale, linear[1] * pqScale, linear[2] * pqScale}
	return PQOETFVec3(linear)
}

// FromWorking is C2.from_working: the inverse of ToWorking, decoding the
// PQ-normalized BT.2020 working-domain pixel back to linear light and
// matrixing it into the target primaries. BT2020PQ output leaves the pixel
// untouched.
func FromWorking(v cphmath.Vec3, to ColorSpace) cphmath.Vec3 {
	if to == BT2020PQ {
		return v
	}
	toCS, _ := MatrixFor(to)
	linear := PQEOTFVec3(v)
	// PQEOTF scales to [0,10000] cd/m^2; the matrix set operates on a
	// normalized linear range, so rescale back to the [0,1] linear proxy
	// before matrixing primaries.
	linear = cphmath.Vec3{linear[0] / pqScale, linear[1] / pqScale, linear[2] / pqScale}
	return toCS.Apply(linear)
}
