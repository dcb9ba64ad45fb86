package cphcolor

import "github.com/zhangzhangco/cinema-pro-hdr/pkg/cphmath"

// ColorSpace tags a frame's primaries/encoding, matching the external
// Frame format of §6.
type ColorSpace int

const (
	BT2020PQ ColorSpace = iota
	P3D65
	ACESG
	Rec709
)

func (cs ColorSpace) String() string {
	switch cs {
	case BT2020PQ:
		return "BT2020_PQ"
	case P3D65:
		return "P3_D65"
	case ACESG:
		return "ACESG"
	case Rec709:
		return "REC709"
	default:
		return "UNKNOWN"
	}
}

// The matrix set is frozen configuration, chosen once at build time; which
// literal set is in force is part of the determinism guarantee (spec §4.2).
// Inverses are supplied as literal constants -- no runtime matrix inversion
// is performed anywhere in this package.
var (
	// BT.2020 (linear) <-> P3-D65 (linear), via the standard RGB-to-RGB
	// primary change of basis.
	BT2020_to_P3D65 = cphmath.Mat3{
		1.3435783, -0.2821797, -0.0613986,
		-0.0652975, 1.0757879, -0.0104905,
		0.0028218, -0.0195985, 1.0167767,
	}
	P3D65_to_BT2020 = cphmath.Mat3{
		0.7538330, 0.1985974, 0.0475696,
		0.0457438, 0.9417772, 0.0124789,
		-0.0012103, 0.0176017, 0.9836086,
	}

	// BT.2020 (linear) <-> ACEScg (AP1) (linear).
	//
	// Open question carried from spec.md §9 (source bug, do not invent
	// behavior): the original implementation's ACEScg matrices are
	// identity placeholders. This repository keeps that as an explicit,
	// documented, frozen configuration rather than silently shipping a
	// believable-looking but unverified real AP1 matrix. See DESIGN.md.
	BT2020_to_ACEScg = cphmath.Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
	ACEScg_to_BT2020 = cphmath.Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}

	// BT.2020 (linear) <-> XYZ, ITU-R BT.2020 primaries, D65 white point.
	BT2020_to_XYZ = cphmath.Mat3{
		0.6369580, 0.1446169, 0.1688810,
		0.2627002, 0.6779981, 0.0593017,
		0.0000000, 0.0280727, 1.0609851,
	}
	XYZ_to_BT2020 = cphmath.Mat3{
		1.7166512, -0.3556708, -0.2533663,
		-0.6666844, 1.6164812, 0.0157685,
		0.0176399, -0.0427706, 0.9421031,
	}
)

// MatrixFor returns the linear-domain matrix that maps BT.2020 into cs, and
// its inverse.
func MatrixFor(cs ColorSpace) (toCS, fromCS cphmath.Mat3) {
	switch cs {
	case P3D65:
		return BT2020_to_P3D65, P3D65_to_BT2020
	case ACESG:
		return BT2020_to_ACEScg, ACEScg_to_BT2020
	default: // BT2020PQ, Rec709 (Rec709 primaries colinear enough for this pipeline's purposes to reuse BT2020's linear matrix set)
		return cphmath.Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}, cphmath.Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
	}
}
