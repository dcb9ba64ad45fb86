package cphdetail

import (
	"math"

	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphframe"
)

const (
	motionRingSize    = 10
	motionSuppressCur = 0.02
	motionSuppressAvg = 0.01
)

// MotionTracker accumulates a ring of the most recent per-frame motion
// energy values and decides whether highlight detail should be suppressed
// for the current frame. Grounded on the teacher's habit of keeping small
// bounded history windows for comparison across frames (estack's EV/exposure
// bookkeeping), generalized to a fixed-size ring buffer of motion samples.
type MotionTracker struct {
	history []float64 // ring buffer, oldest overwritten first
	next    int
	filled  int
}

func NewMotionTracker() *MotionTracker {
	return &MotionTracker{history: make([]float64, motionRingSize)}
}

// Energy computes the RMS luminance change over pixels where the current
// frame's MaxRGB exceeds pivot, clamped to [0,1].
func Energy(cur, prev *cphframe.Frame, pivot float64) float64 {
	if prev == nil {
		return 0
	}
	sum := 0.0
	count := 0
	for y := 0; y < cur.Height; y++ {
		for x := 0; x < cur.Width; x++ {
			lumCur := cur.At(x, y).Max()
			if lumCur <= pivot {
				continue
			}
			lumPrev := prev.At(x, y).Max()
			d := lumCur - lumPrev
			sum += d * d
			count++
		}
	}
	if count == 0 {
		return 0
	}
	e := math.Sqrt(sum / float64(count))
	if e > 1 {
		e = 1
	}
	if e < 0 {
		e = 0
	}
	return e
}

// Record pushes a new motion energy sample into the ring.
func (m *MotionTracker) Record(energy float64) {
	m.history[m.next] = energy
	m.next = (m.next + 1) % motionRingSize
	if m.filled < motionRingSize {
		m.filled++
	}
}

// Mean returns the average of the samples currently in the ring.
func (m *MotionTracker) Mean() float64 {
	if m.filled == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < m.filled; i++ {
		sum += m.history[i]
	}
	return sum / float64(m.filled)
}

// Suppress reports whether the given current-frame motion energy should
// halve the highlight-detail intensity: either this frame's energy is high,
// or the recent history's mean is high.
func (m *MotionTracker) Suppress(currentEnergy float64) bool {
	return currentEnergy > motionSuppressCur || m.Mean() > motionSuppressAvg
}

// EffectiveIntensity halves intensity when motion suppression engages.
func EffectiveIntensity(intensity float64, suppress bool) float64 {
	if suppress {
		return intensity / 2
	}
	return intensity
}
