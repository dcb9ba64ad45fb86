package cphdetail

import (
	"math"
	"testing"

	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphcolor"
	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphframe"
	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphmath"
)

func TestEnergyNoPreviousIsZero(t *testing.T) {
	cur := solidFrame(4, 4, cphmath.Vec3{0.5, 0.5, 0.5})
	if e := Energy(cur, nil, 0.18); e != 0 {
		t.Errorf("Energy with nil prev = %v, want 0", e)
	}
}

func TestEnergyIgnoresBelowPivotPixels(t *testing.T) {
	cur := solidFrame(4, 4, cphmath.Vec3{0.1, 0.1, 0.1})
	prev := solidFrame(4, 4, cphmath.Vec3{0.9, 0.9, 0.9})
	if e := Energy(cur, prev, 0.18); e != 0 {
		t.Errorf("Energy over below-pivot frame = %v, want 0", e)
	}
}

// S6: motion energy above threshold halves the effective highlight intensity.
func TestSuppressHalvesIntensity(t *testing.T) {
	mt := NewMotionTracker()
	suppress := mt.Suppress(0.05) // above motionSuppressCur
	if !suppress {
		t.Fatalf("expected suppression at energy 0.05")
	}
	eff := EffectiveIntensity(0.4, suppress)
	if eff != 0.2 {
		t.Errorf("EffectiveIntensity = %v, want 0.2", eff)
	}
}

func TestSuppressFalseBelowThresholds(t *testing.T) {
	mt := NewMotionTracker()
	if mt.Suppress(0.005) {
		t.Errorf("expected no suppression at low energy with empty history")
	}
}

func TestMotionTrackerMeanRing(t *testing.T) {
	mt := NewMotionTracker()
	for i := 0; i < motionRingSize; i++ {
		mt.Record(0.02)
	}
	if math.Abs(mt.Mean()-0.02) > 1e-12 {
		t.Errorf("Mean = %v, want 0.02", mt.Mean())
	}
	// push one more distinct sample, wrapping the ring; mean should shift.
	mt.Record(0.0)
	if mt.Mean() == 0.02 {
		t.Errorf("expected Mean to change after wraparound overwrite")
	}
}

func TestEnergyClampedToUnitRange(t *testing.T) {
	cur := solidFrame(2, 2, cphmath.Vec3{1.0, 1.0, 1.0})
	prev := cphframe.NewFrame(2, 2, cphcolor.BT2020PQ)
	e := Energy(cur, prev, 0.0)
	if e < 0 || e > 1 {
		t.Errorf("Energy = %v, want within [0,1]", e)
	}
}
