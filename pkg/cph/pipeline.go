package cph

import (
	"fmt"
	"log"
	"time"

	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphcolor"
	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphdetail"
	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphframe"
	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphmath"
	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphsat"
	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphtone"
)

const workingColorSpace = cphcolor.BT2020PQ

// frequencyWindow bounds how many recently-processed frames are retained
// for the temporal-flicker check of spec.md §4.4.
const frequencyWindow = 32

// Pipeline owns an immutable parameter bundle, a compiled tone curve, the
// running statistics, and the motion tracker across frames. Grounded on
// pkg/eclipse.FusedImage as the per-run orchestrator that owns config,
// layers and a Pixels buffer and walks every pixel exactly once while
// deriving statistics (FusedImage.Fuse).
type Pipeline struct {
	params  Params
	curve   cphtone.Curve
	handler *Handler

	stats        Statistics
	motion       *cphdetail.MotionTracker
	prevFrame    *cphframe.Frame
	selfChecked  bool
	recent       []*cphframe.Frame // bounded ring for the frequency check
	detailFrozen bool              // true after HL_FLICKER until the caller clears it

	detMismatchReported bool // DET_MISMATCH is logged once per pipeline lifetime

	selfCheckPlotFile string // if set, runSelfCheck also renders a diagnostic PNG here
}

// SetSelfCheckPlotFile enables rendering a diagnostic PNG of the active
// curve (via cphtone.Curve.PlotSelfCheck) on the next first-frame self-check.
// Pass "" to disable. The render is best-effort: a failure only logs, it
// never escalates to a pipeline error, since the plot is a colorist aid,
// not part of the validated pipeline output.
func (pl *Pipeline) SetSelfCheckPlotFile(path string) { pl.selfCheckPlotFile = path }

// Init builds a Pipeline from params, using the process-wide default error
// handler. Per spec.md §6's init(params) -> ok|error, a non-finite or
// out-of-range bundle is corrected in place rather than rejected outright.
func Init(params Params) (*Pipeline, error) {
	return InitWithHandler(params, DefaultHandler())
}

// InitWithHandler is Init with an explicit handler, so tests and
// alternative hosts are never forced through the process-wide singleton
// (spec.md §9's design note on not depending on the singleton for
// correctness).
func InitWithHandler(params Params, h *Handler) (*Pipeline, error) {
	ValidateAndCorrect(&params, h)

	p := &Pipeline{
		params:  params,
		curve:   curveFor(params),
		handler: h,
		motion:  cphdetail.NewMotionTracker(),
	}
	return p, nil
}

func curveFor(p Params) cphtone.Curve {
	switch p.Curve {
	case CurveRLOG:
		return cphtone.Curve{
			Kind:  cphtone.RLOG,
			Pivot: p.PivotPQ,
			RlogA: p.RlogA, RlogB: p.RlogB, RlogC: p.RlogC, RlogT: p.RlogT,
			YKnee: p.YKnee, Alpha: p.Alpha, Toe: p.Toe,
		}
	default:
		return cphtone.Curve{
			Kind:      cphtone.PPR,
			Pivot:     p.PivotPQ,
			GammaS:    p.GammaS,
			GammaH:    p.GammaH,
			ShoulderH: p.ShoulderH,
			YKnee:     p.YKnee,
			Alpha:     p.Alpha,
			Toe:       p.Toe,
		}
	}
}

// SetMode updates the deterministic/dci_compliance flags without a full
// reinitialization, per spec.md §6's set_mode.
func (pl *Pipeline) SetMode(deterministic, dciCompliance bool) {
	pl.params.Deterministic = deterministic
	pl.params.DCI = dciCompliance
}

// GetStatistics returns the current statistics snapshot.
func (pl *Pipeline) GetStatistics() Statistics { return pl.stats }

// GetLastError delegates to the handler.
func (pl *Pipeline) GetLastError() *Error { return pl.handler.LastError() }

// ResetErrors delegates to the handler.
func (pl *Pipeline) ResetErrors() { pl.handler.ResetErrors() }

// ProcessFrame runs the 8-step sequence of spec.md §4.6, returning the
// output frame in outputCS.
func (pl *Pipeline) ProcessFrame(input *cphframe.Frame, outputCS cphcolor.ColorSpace) *cphframe.Frame {
	if !pl.selfChecked {
		pl.runSelfCheck()
		pl.selfChecked = true
	}

	detMismatchThisFrame := false
	if outputCS == cphcolor.ACESG && !pl.detMismatchReported {
		pl.detMismatchReported = true
		detMismatchThisFrame = true
		pl.handler.Report(Error{Code: DetMismatch, Message: "ACEScg primaries matrices are a frozen identity placeholder; cross-platform agreement is not guaranteed", Action: "det-mismatch-acesg"})
	}

	working := pl.toWorkingDomain(input)

	working, tier3 := pl.toneMap(working)

	if !tier3 && !pl.detailFrozen && pl.params.HLDetail > 0 {
		working = pl.applyHighlightDetail(working)
	}

	out := cphframe.NewFrame(working.Width, working.Height, outputCS)
	acc := newFrameAccumulator()
	anyGamutOOG := false
	anyDCIBound := false

	for y := 0; y < working.Height; y++ {
		for x := 0; x < working.Width; x++ {
			v := working.At(x, y)

			if !tier3 {
				v = cphsat.Saturate(v, v.Max(), cphsat.Options{
					SatBase:       pl.params.SatBase,
					SatHi:         pl.params.SatHi,
					Pivot:         pl.params.PivotPQ,
					DCICompliance: pl.params.DCI,
				})

				res := cphsat.TwoStageGamut(v, outputCS, pl.params.DCI)
				v = res.Pixel
				acc.RecordGamut(res.WasOutOfGamut)
				switch {
				case pl.params.DCI && res.Stage2Engaged && !res.Converged:
					// Stage 2 runs unconditionally under dci_compliance (see
					// gamut.go's needsStage2), so a convergence failure here
					// is specifically a DCI compliance-check failure, the
					// literal DCI_BOUND trigger.
					anyDCIBound = true
				case res.Stage2Engaged && !res.Converged:
					// Outside dci_compliance, stage 2 only engages when
					// stage 1 left the pixel outside the box; a convergence
					// failure here is the literal GAMUT_OOG trigger.
					// "Was originally out of gamut" on its own (stage 1
					// merely compressing a bright pixel) is the normal path
					// and feeds statistics only, never fallback escalation.
					anyGamutOOG = true
				}
			}

			v = cphcolor.FromWorking(v, outputCS)
			v = cphsat.ClampToGamutBox(v, outputCS)
			out.Set(x, y, v)
			acc.Add(v.Max())
		}
	}

	if anyGamutOOG {
		pl.handler.Report(Error{Code: GamutOOG, Message: "perceptual clamp did not converge", Action: "gamut-clamped"})
	}
	if anyDCIBound {
		pl.handler.Report(Error{Code: DCIBound, Message: "perceptual clamp did not converge under dci_compliance", Action: "gamut-clamped"})
	}

	if frameFallbackTier(anyGamutOOG, anyDCIBound, detMismatchThisFrame) == Tier2 {
		out = TierTwoFallback(input, outputCS)
	}

	pl.stats = acc.finalize(pl.stats, time.Now())
	pl.prevFrame = working
	pl.recordRecent(working)
	return out
}

// frameFallbackTier reduces this frame's tier-2 conditions to a single
// escalation decision: any one of them is sufficient to disable the CPH
// extension path for the frame, per spec.md §4.8 tier 2's disposition.
// Tier 3 (non-finite intermediate) is handled separately in toneMap, since
// it must short-circuit before saturation/gamut ever run.
func frameFallbackTier(gamutOOG, dciBound, detMismatch bool) Tier {
	if gamutOOG || dciBound || detMismatch {
		return Tier2
	}
	return TierNone
}

func (pl *Pipeline) recordRecent(f *cphframe.Frame) {
	pl.recent = append(pl.recent, f)
	if len(pl.recent) > frequencyWindow {
		pl.recent = pl.recent[len(pl.recent)-frequencyWindow:]
	}
}

// CheckFrequency runs C4's temporal-frequency flicker check over the
// pipeline's rolling window of recently-processed working-domain frames,
// per spec.md §4.4. On a failing check it emits HL_FLICKER and freezes
// highlight detail (the "fallback: standard -- disable detail" disposition)
// until ClearFrequencyFreeze is called.
func (pl *Pipeline) CheckFrequency(fps float64) cphdetail.FrequencyReport {
	report := cphdetail.CheckFrequency(pl.recent, fps)
	if report.Flicker {
		pl.detailFrozen = true
		pl.handler.Report(Error{Code: HLFlicker, Message: "temporal flicker band exceeded 20% of spectrum energy", Action: "detail-disabled"})
	}
	return report
}

// ClearFrequencyFreeze re-enables highlight detail after a prior
// CheckFrequency failure, typically once a host has re-run with adjusted
// parameters.
func (pl *Pipeline) ClearFrequencyFreeze() { pl.detailFrozen = false }

// toWorkingDomain converts input into the BT.2020+PQ-normalized working
// domain via C2.to_working, sanitizing non-finite pixels to black first
// per spec.md §4.6 step 2 (a non-finite source pixel would otherwise
// poison the matrix/PQ conversion rather than surviving it as black).
func (pl *Pipeline) toWorkingDomain(input *cphframe.Frame) *cphframe.Frame {
	sanitized := input.Clone()
	replaced := sanitized.SanitizeNonFinite()
	if replaced > 0 {
		pl.handler.Report(Error{Code: NanInf, Message: "non-finite input pixel replaced with black", Action: "sanitized"})
	}

	out := cphframe.NewFrame(sanitized.Width, sanitized.Height, workingColorSpace)
	for y := 0; y < sanitized.Height; y++ {
		for x := 0; x < sanitized.Width; x++ {
			out.Set(x, y, cphcolor.ToWorking(sanitized.At(x, y), sanitized.ColorSpace))
		}
	}
	return out
}

// toneMap is pipeline step 3: scale each pixel by the tone-mapped MaxRGB
// ratio, per spec.md §4.6. It never mutates f: on success it returns a new
// frame; the moment the curve produces a non-finite result anywhere, it
// reports NAN_INF and returns f unchanged with tier3 set, satisfying tier
// 3's "replace the luminance map with identity" without discarding any
// pixels already scanned.
func (pl *Pipeline) toneMap(f *cphframe.Frame) (*cphframe.Frame, bool) {
	out := f.Clone()
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			v := f.At(x, y)
			m := v.Max()
			if m <= 0 {
				continue
			}
			mPrime := pl.curve.Apply(m)
			if !cphmath.IsFinite(mPrime) {
				pl.handler.Report(Error{Code: NanInf, Message: "tone curve produced a non-finite result", Field: "curve", Action: "tier3-identity"})
				return f, true
			}
			scale := cphmath.SafeDiv(mPrime, m, 0)
			out.Set(x, y, cphmath.Vec3{
				cphmath.Saturate(v[0] * scale),
				cphmath.Saturate(v[1] * scale),
				cphmath.Saturate(v[2] * scale),
			})
		}
	}
	return out, false
}

// applyHighlightDetail is pipeline step 4: the motion-protected USM pass.
func (pl *Pipeline) applyHighlightDetail(f *cphframe.Frame) *cphframe.Frame {
	energy := cphdetail.Energy(f, pl.prevFrame, pl.params.PivotPQ)
	suppress := pl.motion.Suppress(energy)
	pl.motion.Record(energy)

	intensity := cphdetail.EffectiveIntensity(pl.params.HLDetail, suppress)
	return cphdetail.Process(f, cphdetail.Options{Pivot: pl.params.PivotPQ, Intensity: intensity})
}

// runSelfCheck runs C3's monotonicity and C1 validators on the active
// curve, on the first frame after (re)initialization, per spec.md §4.6
// step 9.
func (pl *Pipeline) runSelfCheck() {
	report := pl.curve.Validate()
	pl.stats.CurveMonotonic = report.Monotonic
	pl.stats.CurveC1Continuous = report.C1Continuous
	pl.stats.MaxDerivativeGap = report.MaxDerivativeGap
	pl.stats.SelfCheckRun = true

	if pl.curve.Kind == cphtone.PPR {
		log.Printf("cph: curve self-check: PPR blends the continuous shadow/highlight formulas around the pivot (no pin to p before blending)")
	}

	if !report.Monotonic || !report.C1Continuous {
		pl.handler.Report(Error{Code: RangeKnee, Message: "curve self-check failed monotonicity or C1 continuity", Action: "tier1-self-check-failed"})
	}

	if pl.selfCheckPlotFile != "" {
		title := fmt.Sprintf("%s pivot=%.3f", pl.params.Curve, pl.params.PivotPQ)
		if err := pl.curve.PlotSelfCheck(report, title, pl.selfCheckPlotFile); err != nil {
			log.Printf("cph: self-check plot %q: %v", pl.selfCheckPlotFile, err)
		}
	}
}
