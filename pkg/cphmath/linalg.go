package cphmath

import (
	"fmt"

	"golang.org/x/image/math/f64"
)

// Vec3 and Mat3 reuse golang.org/x/image's f64 layout so that the working
// domain's color matrices and the affine plumbing share one representation.
type Vec3 f64.Vec3
type Mat3 f64.Mat3

// MatMult returns a*b, row-major.
func (a Mat3) MatMult(b Mat3) Mat3 {
	return Mat3{
		a[0]*b[0] + a[1]*b[3] + a[2]*b[6],
		a[0]*b[1] + a[1]*b[4] + a[2]*b[7],
		a[0]*b[2] + a[1]*b[5] + a[2]*b[8],

		a[3]*b[0] + a[4]*b[3] + a[5]*b[6],
		a[3]*b[1] + a[4]*b[4] + a[5]*b[7],
		a[3]*b[2] + a[4]*b[5] + a[5]*b[8],

		a[6]*b[0] + a[7]*b[3] + a[8]*b[6],
		a[6]*b[1] + a[7]*b[4] + a[8]*b[7],
		a[6]*b[2] + a[7]*b[5] + a[8]*b[8],
	}
}

// Apply multiplies the matrix by a column vector.
func (m Mat3) Apply(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}

func (m Mat3) String() string {
	return fmt.Sprintf("[%10f, %10f, %10f]\n[%10f, %10f, %10f]\n[%10f, %10f, %10f]\n",
		m[0], m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8])
}

func (v Vec3) String() string {
	return fmt.Sprintf("[%12.10f, %12.10f, %12.10f]", v[0], v[1], v[2])
}

// Max returns the largest of the three channels (the MaxRGB proxy).
func (v Vec3) Max() float64 {
	m := v[0]
	if v[1] > m {
		m = v[1]
	}
	if v[2] > m {
		m = v[2]
	}
	return m
}

// Scale multiplies every channel by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// FloorAt clamps every channel to be >= min.
func (v Vec3) FloorAt(min float64) Vec3 {
	r := v
	if r[0] < min {
		r[0] = min
	}
	if r[1] < min {
		r[1] = min
	}
	if r[2] < min {
		r[2] = min
	}
	return r
}

// CeilingAt clamps every channel to be <= max.
func (v Vec3) CeilingAt(max float64) Vec3 {
	r := v
	if r[0] > max {
		r[0] = max
	}
	if r[1] > max {
		r[1] = max
	}
	if r[2] > max {
		r[2] = max
	}
	return r
}

// AllFinite reports whether every channel is finite.
func (v Vec3) AllFinite() bool {
	return IsFinite(v[0]) && IsFinite(v[1]) && IsFinite(v[2])
}
