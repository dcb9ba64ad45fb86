package cph

import (
	"time"

	"github.com/codahale/hdrhistogram"
)

// statsMinValue/statsMaxValue/statsSigFigs configure the hdrhistogram.Histogram
// that backs per-frame MaxRGB trimming. MaxRGB is PQ-normalized to [0,1];
// the histogram stores it scaled to an integer microunit range since
// hdrhistogram only buckets int64s.
const (
	statsScale    = 1_000_000 // microunits per [0,1]
	statsMinValue = 1
	statsMaxValue = statsScale
	statsSigFigs  = 3
)

// Statistics is the per-frame snapshot of spec.md §3: trimmed MaxRGB
// min/avg/max/variance, frame counter, last-update time, and the curve
// self-check flags from the first frame.
type Statistics struct {
	MinMaxRGB        float64
	AvgMaxRGB        float64
	MaxMaxRGB        float64
	VarianceMaxRGB   float64
	FrameCount       uint64
	LastUpdate       time.Time
	CurveMonotonic   bool
	CurveC1Continuous bool
	MaxDerivativeGap float64
	SelfCheckRun     bool

	// OutOfGamutFraction is the share of this frame's pixels for which
	// cphsat.TwoStageGamut reported WasOutOfGamut -- stage 1 compressing a
	// bright highlight back into the box, or stage 2 needing to act at all.
	// Per spec.md §4.5 this is a statistics-only signal: it does not drive
	// GAMUT_OOG or fallback escalation, which key on stage-2 non-convergence.
	OutOfGamutFraction float64
}

// frameAccumulator collects one frame's MaxRGB samples into an
// hdrhistogram.Histogram, grounded on the teacher's package-level
// `Hists []histogram.Histogram` (pkg/estack/luminance.go's streaming
// percentile bookkeeping), generalized from a fixed histogram slice to one
// histogram built per frame and then trimmed.
type frameAccumulator struct {
	hist         *hdrhistogram.Histogram
	count        int64
	gamutSamples int64
	gamutOOG     int64
}

func newFrameAccumulator() *frameAccumulator {
	return &frameAccumulator{hist: hdrhistogram.New(statsMinValue, statsMaxValue, statsSigFigs)}
}

// Add records one pixel's MaxRGB sample.
func (a *frameAccumulator) Add(maxRGB float64) {
	v := int64(maxRGB*statsScale + 0.5)
	if v < statsMinValue {
		v = statsMinValue
	}
	if v > statsMaxValue {
		v = statsMaxValue
	}
	_ = a.hist.RecordValue(v)
	a.count++
}

// RecordGamut tallies one pixel's cphsat.GamutResult.WasOutOfGamut flag for
// the frame's OutOfGamutFraction statistic.
func (a *frameAccumulator) RecordGamut(wasOutOfGamut bool) {
	a.gamutSamples++
	if wasOutOfGamut {
		a.gamutOOG++
	}
}

// trimmedMinMax returns the 1%/99% percentile bounds recorded by the
// histogram, in [0,1] units.
func (a *frameAccumulator) trimmedMinMax() (lo, hi float64) {
	if a.count == 0 {
		return 0, 0
	}
	lo = float64(a.hist.ValueAtQuantile(1.0)) / statsScale
	hi = float64(a.hist.ValueAtQuantile(99.0)) / statsScale
	return lo, hi
}

// trimmedMeanVariance walks the histogram's bucket distribution, excluding
// any bar outside the 1%/99% quantile bounds, so the mean/variance share
// the same trimmed-tail contract as trimmedMinMax instead of being pulled
// by the same outliers the min/max trim is meant to discard.
func (a *frameAccumulator) trimmedMeanVariance() (mean, variance float64) {
	if a.count == 0 {
		return 0, 0
	}
	loV := a.hist.ValueAtQuantile(1.0)
	hiV := a.hist.ValueAtQuantile(99.0)

	var n int64
	var sum, sumSq float64
	for _, bar := range a.hist.Distribution() {
		if bar.Count == 0 || bar.From < loV || bar.From > hiV {
			continue
		}
		mid := float64(bar.From+bar.To) / 2 / statsScale
		n += bar.Count
		sum += mid * float64(bar.Count)
		sumSq += mid * mid * float64(bar.Count)
	}
	if n == 0 {
		return 0, 0
	}
	mean = sum / float64(n)
	variance = sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, variance
}

// finalize converts the accumulator into a Statistics update, preserving
// the caller's frame counter and curve self-check flags.
func (a *frameAccumulator) finalize(prev Statistics, now time.Time) Statistics {
	lo, hi := a.trimmedMinMax()
	mean, variance := a.trimmedMeanVariance()
	s := prev
	s.MinMaxRGB = lo
	s.MaxMaxRGB = hi
	s.AvgMaxRGB = mean
	s.VarianceMaxRGB = variance
	s.FrameCount = prev.FrameCount + 1
	s.LastUpdate = now
	if a.gamutSamples > 0 {
		s.OutOfGamutFraction = float64(a.gamutOOG) / float64(a.gamutSamples)
	} else {
		s.OutOfGamutFraction = 0
	}
	return s
}
