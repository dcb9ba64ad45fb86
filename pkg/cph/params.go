// Package cph is the top-level orchestrator: the parameter model (C7), the
// frame pipeline (C6), and the error/fallback machinery (C8). Grounded on
// pkg/eclipse.Config / pkg/estack.Configuration for the parameter bundle and
// its YAML load/validate pattern, and on pkg/eclipse.FusedImage for the
// per-frame orchestration shape.
package cph

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v2"
)

// CurveKind selects which analytic tone curve a Params bundle drives.
type CurveKind string

const (
	CurvePPR  CurveKind = "PPR"
	CurveRLOG CurveKind = "RLOG"
)

// Params is the flat parameter bundle of spec.md §3. Every field is a
// finite real number (or bool); ranges are enforced by IsValid and
// ClampToValid, never by the zero value alone.
type Params struct {
	Curve      CurveKind `yaml:"curve" json:"curve"`
	PivotPQ    float64   `yaml:"pivot_pq" json:"pivot_pq"`
	GammaS     float64   `yaml:"gamma_s" json:"gamma_s"`
	GammaH     float64   `yaml:"gamma_h" json:"gamma_h"`
	ShoulderH  float64   `yaml:"shoulder_h" json:"shoulder_h"`
	RlogA      float64   `yaml:"rlog_a" json:"rlog_a"`
	RlogB      float64   `yaml:"rlog_b" json:"rlog_b"`
	RlogC      float64   `yaml:"rlog_c" json:"rlog_c"`
	RlogT      float64   `yaml:"rlog_t" json:"rlog_t"`
	YKnee      float64   `yaml:"yknee" json:"yknee"`
	Alpha      float64   `yaml:"alpha" json:"alpha"`
	Toe        float64   `yaml:"toe" json:"toe"`
	BlackLift  float64   `yaml:"black_lift" json:"black_lift"`
	HLDetail   float64   `yaml:"highlight_detail" json:"highlight_detail"`
	SatBase    float64   `yaml:"sat_base" json:"sat_base"`
	SatHi      float64   `yaml:"sat_hi" json:"sat_hi"`
	DCI        bool      `yaml:"dci_compliance" json:"dci_compliance"`
	Deterministic bool   `yaml:"deterministic" json:"deterministic"`
}

// paramRange describes the admissible closed interval for one numeric
// field, used by both the validity predicate and the clamping operation.
type paramRange struct {
	lo, hi float64
}

var ranges = map[string]paramRange{
	"pivot_pq":         {0.05, 0.30},
	"gamma_s":          {1.0, 1.6},
	"gamma_h":          {0.8, 1.4},
	"shoulder_h":       {0.5, 3.0},
	"rlog_a":           {1.0, 16.0},
	"rlog_b":           {0.8, 1.2},
	"rlog_c":           {0.5, 3.0},
	"rlog_t":           {0.4, 0.7},
	"yknee":            {0.95, 0.99},
	"alpha":            {0.2, 1.0},
	"toe":              {0.0, 0.01},
	"black_lift":       {0.0, 0.02},
	"highlight_detail": {0.0, 1.0},
	"sat_base":         {0.0, 2.0},
	"sat_hi":           {0.0, 2.0},
}

func (r paramRange) mid() float64 { return (r.lo + r.hi) / 2 }

// DefaultParams returns the spec.md §3 default parameter bundle.
func DefaultParams() Params {
	return Params{
		Curve:     CurvePPR,
		PivotPQ:   0.18,
		GammaS:    1.25,
		GammaH:    1.10,
		ShoulderH: 1.5,
		RlogA:     8.0,
		RlogB:     1.0,
		RlogC:     1.5,
		RlogT:     0.55,
		YKnee:     0.97,
		Alpha:     0.6,
		Toe:       0.002,
		BlackLift: 0.002,
		HLDetail:  0.2,
		SatBase:   1.0,
		SatHi:     0.95,
	}
}

// CinemaFlatParams is the "Cinema-Flat" preset, selected by cph-demo's
// -preset cinema-flat and used by scenario S1.
func CinemaFlatParams() Params {
	p := DefaultParams()
	p.GammaS = 1.10
	p.GammaH = 1.05
	p.ShoulderH = 1.0
	p.BlackLift = 0.003
	p.HLDetail = 0.2
	p.SatBase = 1.0
	p.SatHi = 0.95
	return p
}

// fields returns this bundle's range-checked fields, by range-table key.
func (p Params) fields() map[string]float64 {
	return map[string]float64{
		"pivot_pq":         p.PivotPQ,
		"gamma_s":          p.GammaS,
		"gamma_h":          p.GammaH,
		"shoulder_h":       p.ShoulderH,
		"rlog_a":           p.RlogA,
		"rlog_b":           p.RlogB,
		"rlog_c":           p.RlogC,
		"rlog_t":           p.RlogT,
		"yknee":            p.YKnee,
		"alpha":            p.Alpha,
		"toe":              p.Toe,
		"black_lift":       p.BlackLift,
		"highlight_detail": p.HLDetail,
		"sat_base":         p.SatBase,
		"sat_hi":           p.SatHi,
	}
}

func isFinite(f float64) bool {
	return f-f == 0 // NaN-NaN and Inf-Inf are both NaN, which never equals 0
}

// IsValid is the conjunction of finiteness and range checks for every
// field, plus curve identity and the pivot_pq/rlog_t open-interval
// invariants.
func (p Params) IsValid() bool {
	if p.Curve != CurvePPR && p.Curve != CurveRLOG {
		return false
	}
	if p.PivotPQ <= 0 || p.PivotPQ >= 1 || p.RlogT <= 0 || p.RlogT >= 1 {
		return false
	}
	for name, v := range p.fields() {
		r := ranges[name]
		if !isFinite(v) || v < r.lo || v > r.hi {
			return false
		}
	}
	return true
}

// correction records which range-table field a ValidateAndCorrect pass
// adjusted, and the error code that should accompany it.
type correction struct {
	field string
	code  ErrorCode
}

// ClampToValid rewrites p in place to satisfy IsValid: non-finite fields
// become the range midpoint, then every field is coordinate-clamped to its
// extremes. Curve defaults to PPR if unrecognized.
func (p *Params) ClampToValid() []correction {
	var corrections []correction

	if p.Curve != CurvePPR && p.Curve != CurveRLOG {
		p.Curve = CurvePPR
	}

	assign := func(name string, get func() float64, set func(float64)) {
		r := ranges[name]
		v := get()
		if !isFinite(v) {
			set(r.mid())
			corrections = append(corrections, correction{name, codeFor(name)})
			return
		}
		clamped := v
		if clamped < r.lo {
			clamped = r.lo
		}
		if clamped > r.hi {
			clamped = r.hi
		}
		if clamped != v {
			set(clamped)
			corrections = append(corrections, correction{name, codeFor(name)})
		}
	}

	assign("pivot_pq", func() float64 { return p.PivotPQ }, func(v float64) { p.PivotPQ = v })
	assign("gamma_s", func() float64 { return p.GammaS }, func(v float64) { p.GammaS = v })
	assign("gamma_h", func() float64 { return p.GammaH }, func(v float64) { p.GammaH = v })
	assign("shoulder_h", func() float64 { return p.ShoulderH }, func(v float64) { p.ShoulderH = v })
	assign("rlog_a", func() float64 { return p.RlogA }, func(v float64) { p.RlogA = v })
	assign("rlog_b", func() float64 { return p.RlogB }, func(v float64) { p.RlogB = v })
	assign("rlog_c", func() float64 { return p.RlogC }, func(v float64) { p.RlogC = v })
	assign("rlog_t", func() float64 { return p.RlogT }, func(v float64) { p.RlogT = v })
	assign("yknee", func() float64 { return p.YKnee }, func(v float64) { p.YKnee = v })
	assign("alpha", func() float64 { return p.Alpha }, func(v float64) { p.Alpha = v })
	assign("toe", func() float64 { return p.Toe }, func(v float64) { p.Toe = v })
	assign("black_lift", func() float64 { return p.BlackLift }, func(v float64) { p.BlackLift = v })
	assign("highlight_detail", func() float64 { return p.HLDetail }, func(v float64) { p.HLDetail = v })
	assign("sat_base", func() float64 { return p.SatBase }, func(v float64) { p.SatBase = v })
	assign("sat_hi", func() float64 { return p.SatHi }, func(v float64) { p.SatHi = v })

	return corrections
}

// codeFor maps a range-table field name to the error code ValidateAndCorrect
// should raise when that field required correction.
func codeFor(field string) ErrorCode {
	switch field {
	case "pivot_pq":
		return RangePivot
	case "yknee", "alpha", "toe":
		return RangeKnee
	default:
		return RangeKnee
	}
}

// ValidateAndCorrect clamps p in place and reports, per spec.md §4.7,
// whether any correction was applied, emitting the corresponding error
// code(s) through h. Non-finite fields are always reported as NanInf
// regardless of which range-table bucket they fall in.
func ValidateAndCorrect(p *Params, h *Handler) bool {
	before := *p
	corrections := p.ClampToValid()
	if len(corrections) == 0 {
		return false
	}
	for _, c := range corrections {
		code := c.code
		if !isFinite(before.fields()[c.field]) {
			code = NanInf
		}
		h.Report(Error{Code: code, Field: c.field, Message: "parameter out of range, corrected"})
	}
	return true
}

// LoadParamsYAML loads a preset from YAML, grounded on
// eclipse.newConfigFromYaml / Config.AsYaml's load/marshal pair. Unlike the
// JSON path, YAML presets are treated as trusted config and unknown keys
// are silently ignored by yaml.v2's default behavior.
func LoadParamsYAML(r io.Reader) (Params, error) {
	p := DefaultParams()
	b, err := io.ReadAll(r)
	if err != nil {
		return p, err
	}
	if err := yaml.Unmarshal(b, &p); err != nil {
		return p, err
	}
	return p, nil
}

// AsYAML marshals p back to YAML, for diagnostics and preset round-tripping.
func (p Params) AsYAML() (string, error) {
	b, err := yaml.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// LoadParamsJSON decodes a sidecar JSON parameter record. Per spec.md §6,
// unknown fields are rejected with SchemaMissing rather than silently
// ignored, since JSON is the strict external-schema path.
func LoadParamsJSON(r io.Reader) (Params, error) {
	p := DefaultParams()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return p, &SchemaError{Err: err}
	}
	return p, nil
}

// SchemaError wraps a JSON decode failure so callers can distinguish
// SCHEMA_MISSING from an ordinary I/O error.
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string { return "schema_missing: " + e.Err.Error() }
func (e *SchemaError) Unwrap() error { return e.Err }
