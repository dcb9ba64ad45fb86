package cph

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphcolor"
	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphframe"
	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphmath"
	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphtone"
)

// S1: Cinema-Flat, pixel (0.5,0.5,0.5) in BT2020_PQ. After the full
// pipeline the output must be finite and inside [0,1]^3. The PPR curve
// alone is additionally checked to move 0.5 away from identity; its exact
// PPR(0.5) value (~0.396, not the spec narrative's ~0.512) is asserted by
// cphtone's TestCinemaFlatS1 (see DESIGN.md on that discrepancy).
func TestProcessFrameS1(t *testing.T) {
	params := CinemaFlatParams()
	h := NewHandler()
	pl, err := InitWithHandler(params, h)
	if err != nil {
		t.Fatalf("InitWithHandler: %v", err)
	}

	in := cphframe.NewFrame(1, 1, cphcolor.BT2020PQ)
	in.Set(0, 0, cphmath.Vec3{0.5, 0.5, 0.5})

	out := pl.ProcessFrame(in, cphcolor.BT2020PQ)
	v := out.At(0, 0)
	for i := 0; i < 3; i++ {
		if !cphmath.IsFinite(v[i]) {
			t.Fatalf("component %d non-finite: %v", i, v)
		}
		if v[i] < 0 || v[i] > 1 {
			t.Errorf("component %d = %v, want within [0,1]", i, v[i])
		}
	}

	curve := curveFor(params)
	toneOnly := curve.Apply(0.5)
	if math.Abs(toneOnly-0.5) < 1e-9 {
		t.Errorf("expected the tone curve to move 0.5 away from identity for Cinema-Flat")
	}
}

// S3: an input pixel with R=NaN is replaced with (0,0,0) by the
// working-domain converter, and processing completes without re-raising
// NAN_INF downstream for that same frame.
func TestProcessFrameS3(t *testing.T) {
	h := NewHandler()
	var codes []ErrorCode
	h.SetCallback(func(e Error) { codes = append(codes, e.Code) })

	pl, _ := InitWithHandler(DefaultParams(), h)

	in := cphframe.NewFrame(1, 1, cphcolor.BT2020PQ)
	in.Set(0, 0, cphmath.Vec3{math.NaN(), 0.3, 0.4})

	out := pl.ProcessFrame(in, cphcolor.BT2020PQ)
	v := out.At(0, 0)
	for i := 0; i < 3; i++ {
		if !cphmath.IsFinite(v[i]) {
			t.Fatalf("output component %d non-finite: %v", i, v)
		}
	}

	nanInfCount := 0
	for _, c := range codes {
		if c == NanInf {
			nanInfCount++
		}
	}
	if nanInfCount != 1 {
		t.Errorf("expected exactly one NAN_INF report (sanitization), got %d", nanInfCount)
	}
}

func TestProcessFrameRunsSelfCheckOnFirstFrame(t *testing.T) {
	pl, _ := InitWithHandler(DefaultParams(), NewHandler())
	in := cphframe.NewFrame(1, 1, cphcolor.BT2020PQ)
	in.Set(0, 0, cphmath.Vec3{0.2, 0.3, 0.4})

	if pl.GetStatistics().SelfCheckRun {
		t.Fatal("self-check should not have run before the first frame")
	}
	pl.ProcessFrame(in, cphcolor.BT2020PQ)
	stats := pl.GetStatistics()
	if !stats.SelfCheckRun {
		t.Error("expected self-check to run on the first frame")
	}
	if !stats.CurveMonotonic {
		t.Error("expected the default PPR curve to pass the monotonicity validator")
	}
}

func TestProcessFrameStatisticsAccumulate(t *testing.T) {
	pl, _ := InitWithHandler(DefaultParams(), NewHandler())
	in := cphframe.NewFrame(4, 4, cphcolor.BT2020PQ)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			in.Set(x, y, cphmath.Vec3{0.3, 0.3, 0.3})
		}
	}
	pl.ProcessFrame(in, cphcolor.BT2020PQ)
	stats := pl.GetStatistics()
	if stats.FrameCount != 1 {
		t.Errorf("FrameCount = %d, want 1", stats.FrameCount)
	}
	pl.ProcessFrame(in, cphcolor.BT2020PQ)
	if pl.GetStatistics().FrameCount != 2 {
		t.Errorf("FrameCount after second frame = %d, want 2", pl.GetStatistics().FrameCount)
	}
}

// Under dci_compliance the perceptual clamp is forced to run on every
// pixel; when it fails to converge that is specifically a DCI_BOUND
// failure (see pipeline.go's ProcessFrame gamut switch), which also
// escalates this frame to the tier-2 neutral-mapping fallback.
func TestProcessFrameOutOfGamutReportsDCIBoundAndFallsBack(t *testing.T) {
	h := NewHandler()
	var codes []ErrorCode
	h.SetCallback(func(e Error) { codes = append(codes, e.Code) })

	p := DefaultParams()
	p.DCI = true
	p.SatBase = 2.0
	p.SatHi = 2.0
	pl, _ := InitWithHandler(p, h)

	in := cphframe.NewFrame(1, 1, cphcolor.BT2020PQ)
	in.Set(0, 0, cphmath.Vec3{0.95, 0.05, 0.05})

	out := pl.ProcessFrame(in, cphcolor.P3D65)

	found := false
	for _, c := range codes {
		if c == DCIBound {
			found = true
		}
	}
	if !found {
		t.Errorf("expected DCI_BOUND under forced DCI perceptual clamp, got %v", codes)
	}
	if out.ColorSpace != cphcolor.P3D65 {
		t.Errorf("tier-2 fallback output color space = %v, want %v", out.ColorSpace, cphcolor.P3D65)
	}
}

// Without dci_compliance, stage 1's linear compression always lands the
// pixel back inside the gamut box by construction (it scales down to the
// headroom boundary and clamps negatives to the floor), so stage 2 never
// engages -- "was originally out of gamut" here is the ordinary highlight
// path, not a failure. It must show up in statistics only: no GAMUT_OOG
// report, and no fallback to the tier-2 neutral mapping.
func TestProcessFrameOutOfGamutRecordsStatisticsWithoutDCI(t *testing.T) {
	h := NewHandler()
	var codes []ErrorCode
	h.SetCallback(func(e Error) { codes = append(codes, e.Code) })

	p := DefaultParams()
	p.SatBase = 2.0
	p.SatHi = 2.0
	pl, _ := InitWithHandler(p, h)

	in := cphframe.NewFrame(1, 1, cphcolor.BT2020PQ)
	in.Set(0, 0, cphmath.Vec3{0.95, 0.05, 0.05})

	out := pl.ProcessFrame(in, cphcolor.P3D65)

	for _, c := range codes {
		if c == GamutOOG {
			t.Errorf("GAMUT_OOG reported for a stage-1-only compression, got %v", codes)
		}
	}
	v := out.At(0, 0)
	if v == (cphmath.Vec3{}) {
		t.Error("expected no tier-2 fallback to black for a merely out-of-gamut highlight")
	}
	if pl.GetStatistics().OutOfGamutFraction <= 0 {
		t.Error("expected OutOfGamutFraction to record the stage-1 compression")
	}
}

// DET_MISMATCH fires once, on the first frame processed with outputCS
// ACESG, and escalates that frame to the tier-2 fallback.
func TestProcessFrameDetMismatchOnACESGOnce(t *testing.T) {
	h := NewHandler()
	var codes []ErrorCode
	h.SetCallback(func(e Error) { codes = append(codes, e.Code) })

	pl, _ := InitWithHandler(DefaultParams(), h)
	in := cphframe.NewFrame(1, 1, cphcolor.BT2020PQ)
	in.Set(0, 0, cphmath.Vec3{0.3, 0.3, 0.3})

	pl.ProcessFrame(in, cphcolor.ACESG)
	pl.ProcessFrame(in, cphcolor.ACESG)

	count := 0
	for _, c := range codes {
		if c == DetMismatch {
			count++
		}
	}
	if count != 1 {
		t.Errorf("DET_MISMATCH fired %d times across two ACESG frames, want 1", count)
	}
}

// The self-check plot is opt-in and renders on the same first frame that
// runs the monotonicity/C1 validators.
func TestProcessFrameWritesSelfCheckPlotWhenEnabled(t *testing.T) {
	pl, _ := InitWithHandler(DefaultParams(), NewHandler())
	plotPath := filepath.Join(t.TempDir(), "selfcheck.png")
	pl.SetSelfCheckPlotFile(plotPath)

	in := cphframe.NewFrame(1, 1, cphcolor.BT2020PQ)
	in.Set(0, 0, cphmath.Vec3{0.2, 0.3, 0.4})
	pl.ProcessFrame(in, cphcolor.BT2020PQ)

	if _, err := os.Stat(plotPath); err != nil {
		t.Errorf("expected self-check plot at %s: %v", plotPath, err)
	}
}

func TestCurveForSelectsRLOG(t *testing.T) {
	p := DefaultParams()
	p.Curve = CurveRLOG
	c := curveFor(p)
	if c.Kind != cphtone.RLOG {
		t.Errorf("curveFor did not select RLOG for CurveRLOG params")
	}
}
