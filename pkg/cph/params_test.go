package cph

import "testing"

func TestDefaultParamsIsValid(t *testing.T) {
	if !DefaultParams().IsValid() {
		t.Fatal("DefaultParams() is not valid")
	}
}

func TestCinemaFlatParamsIsValid(t *testing.T) {
	if !CinemaFlatParams().IsValid() {
		t.Fatal("CinemaFlatParams() is not valid")
	}
}

// S2: pivot_pq = -0.1 is finite but out of range, so it is coordinate-
// clamped to the nearest extreme (0.05), not the range midpoint. See
// DESIGN.md's note on the S2 narrative-vs-algorithm discrepancy: this
// follows §3's literal clamp_to_valid algorithm (and the original source's
// FixInvalid-then-clamp), which only substitutes the midpoint for
// non-finite fields.
func TestValidateAndCorrectS2(t *testing.T) {
	p := DefaultParams()
	p.PivotPQ = -0.1

	h := NewHandler()
	var codes []ErrorCode
	h.SetCallback(func(e Error) { codes = append(codes, e.Code) })

	corrected := ValidateAndCorrect(&p, h)
	if !corrected {
		t.Fatal("expected ValidateAndCorrect to report a correction")
	}
	if p.PivotPQ != ranges["pivot_pq"].lo {
		t.Errorf("pivot_pq = %v, want %v (coordinate-clamped to the lower extreme)", p.PivotPQ, ranges["pivot_pq"].lo)
	}
	if !p.IsValid() {
		t.Error("params not valid after correction")
	}

	found := false
	for _, c := range codes {
		if c == RangePivot {
			found = true
		}
	}
	if !found {
		t.Errorf("expected RANGE_PIVOT among reported codes, got %v", codes)
	}
}

func TestValidateAndCorrectNonFiniteIsNanInf(t *testing.T) {
	p := DefaultParams()
	p.Alpha = nanFloat()

	h := NewHandler()
	var codes []ErrorCode
	h.SetCallback(func(e Error) { codes = append(codes, e.Code) })

	ValidateAndCorrect(&p, h)

	found := false
	for _, c := range codes {
		if c == NanInf {
			found = true
		}
	}
	if !found {
		t.Errorf("expected NAN_INF for a non-finite field, got %v", codes)
	}
}

func nanFloat() float64 {
	var zero float64
	return zero / zero
}

func TestValidateAndCorrectNoOpOnValidParams(t *testing.T) {
	p := DefaultParams()
	h := NewHandler()
	if ValidateAndCorrect(&p, h) {
		t.Error("expected no correction for an already-valid bundle")
	}
}

func TestClampToValidMidpointsNonFinite(t *testing.T) {
	p := DefaultParams()
	p.GammaS = nanFloat()
	p.ClampToValid()
	if p.GammaS != ranges["gamma_s"].mid() {
		t.Errorf("GammaS = %v, want midpoint %v", p.GammaS, ranges["gamma_s"].mid())
	}
}
