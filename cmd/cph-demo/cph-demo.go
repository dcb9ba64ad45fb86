// cph-demo is a thin CLI front-end exercising the cph library on a
// synthetic gradient frame. Grounded on cmd/eclipse-hdr's flag-parse-then-
// drive-the-library shape: flags configure a Params bundle instead of an
// eclipse.Config, and the "image" is generated in-process instead of
// loaded from disk, since file loading is explicitly out of scope (see
// SPEC_FULL.md §1 Non-goals).
package main

import (
	"flag"
	"log"
	"os"

	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cph"
	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphcolor"
	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphframe"
	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphmath"
)

var (
	fPreset  string
	fWidth   int
	fHeight  int
	fOutCS   string
	fDCI     bool
	fDeterministic bool
	fPresetFile string
	fSelfCheckPlot string
)

func init() {
	flag.StringVar(&fPreset, "preset", "default", "built-in preset: default, cinema-flat")
	flag.StringVar(&fPresetFile, "params", "", "YAML parameter file overriding -preset")
	flag.IntVar(&fWidth, "width", 64, "synthetic frame width")
	flag.IntVar(&fHeight, "height", 64, "synthetic frame height")
	flag.StringVar(&fOutCS, "output", "BT2020_PQ", "output color space: BT2020_PQ, P3_D65, ACESG, REC709")
	flag.BoolVar(&fDCI, "dci", false, "enable DCI compliance mode")
	flag.BoolVar(&fDeterministic, "deterministic", false, "enable deterministic mode")
	flag.StringVar(&fSelfCheckPlot, "selfcheck-plot", "", "if set, write a diagnostic PNG of the curve self-check here")
	flag.Parse()

	log.Printf("cph-demo starting\n")
}

func outputColorSpace(name string) cphcolor.ColorSpace {
	switch name {
	case "P3_D65":
		return cphcolor.P3D65
	case "ACESG":
		return cphcolor.ACESG
	case "REC709":
		return cphcolor.Rec709
	default:
		return cphcolor.BT2020PQ
	}
}

func loadParams() cph.Params {
	if fPresetFile != "" {
		f, err := os.Open(fPresetFile)
		if err != nil {
			log.Fatalf("opening -params file: %v", err)
		}
		defer f.Close()
		p, err := cph.LoadParamsYAML(f)
		if err != nil {
			log.Fatalf("loading YAML params: %v", err)
		}
		return p
	}
	if fPreset == "cinema-flat" {
		return cph.CinemaFlatParams()
	}
	return cph.DefaultParams()
}

// syntheticFrame builds a diagonal luminance ramp so the demo exercises
// shadow, midtone and highlight regions of the active tone curve in one
// frame.
func syntheticFrame(w, h int) *cphframe.Frame {
	f := cphframe.NewFrame(w, h, cphcolor.BT2020PQ)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t := float64(x+y) / float64(w+h-2)
			f.Set(x, y, cphmath.Vec3{t, t * 0.9, t * 0.8})
		}
	}
	return f
}

func main() {
	params := loadParams()
	params.DCI = fDCI
	params.Deterministic = fDeterministic

	h := cph.NewHandler()
	h.SetCallback(func(e cph.Error) {
		log.Printf("cph-demo error: %s", e)
	})

	pl, err := cph.InitWithHandler(params, h)
	if err != nil {
		log.Fatalf("cph.Init: %v", err)
	}
	if fSelfCheckPlot != "" {
		pl.SetSelfCheckPlotFile(fSelfCheckPlot)
	}

	in := syntheticFrame(fWidth, fHeight)
	out := pl.ProcessFrame(in, outputColorSpace(fOutCS))

	stats := pl.GetStatistics()
	log.Printf("processed %dx%d frame -> %s", out.Width, out.Height, out.ColorSpace)
	log.Printf("stats: min=%.4f avg=%.4f max=%.4f var=%.6f frames=%d out_of_gamut=%.4f", stats.MinMaxRGB, stats.AvgMaxRGB, stats.MaxMaxRGB, stats.VarianceMaxRGB, stats.FrameCount, stats.OutOfGamutFraction)
	log.Printf("curve self-check: monotonic=%v c1_continuous=%v max_derivative_gap=%.6f", stats.CurveMonotonic, stats.CurveC1Continuous, stats.MaxDerivativeGap)

	if last := pl.GetLastError(); last != nil {
		log.Printf("last error: %s", *last)
	}
}
