package cphtone

import (
	"github.com/fogleman/gg"

	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphcolor"
)

// PlotSelfCheck renders the curve sampled at 257 points (256 equal steps)
// across [0,1] next
// to the y=x reference line, annotated with the validation report, and
// saves it as a PNG. Grounded on emath.FloatGrid.ToImg, which uses the
// same gg.NewContextForImage + DrawString pattern to annotate a plotted
// grid with a title -- here the "grid" is the curve itself rather than a
// Fattal02 gradient field.
func (c Curve) PlotSelfCheck(report ValidationReport, title, filename string) error {
	const size = 512
	dc := gg.NewContext(size, size)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB(0.85, 0.85, 0.85)
	dc.SetLineWidth(1)
	dc.MoveTo(0, size)
	dc.LineTo(size, 0)
	dc.Stroke()

	dc.SetRGB(0.1, 0.4, 0.9)
	dc.SetLineWidth(2)
	const samples = 256
	for i := 0; i <= samples; i++ {
		x := float64(i) / float64(samples)
		y := c.Apply(x)
		px, py := x*size, size-y*size
		if i == 0 {
			dc.MoveTo(px, py)
		} else {
			dc.LineTo(px, py)
		}
	}
	dc.Stroke()

	// sRGB-gamma-encoded preview of the same curve, in a dimmer red, so a
	// colorist can sanity-check what the PQ-domain curve will look like on
	// a display-referred monitor without leaving the self-check image.
	dc.SetRGB(0.8, 0.3, 0.3)
	dc.SetLineWidth(1)
	for i := 0; i <= samples; i++ {
		x := float64(i) / float64(samples)
		y := cphcolor.GammaExpandSRGB(c.Apply(x))
		px, py := x*size, size-y*size
		if i == 0 {
			dc.MoveTo(px, py)
		} else {
			dc.LineTo(px, py)
		}
	}
	dc.Stroke()

	dc.SetRGB(0, 0, 0)
	dc.DrawString(title, 10, 20)
	status := "monotonic=ok c1=ok"
	if !report.Monotonic {
		status = "monotonic=FAIL"
	} else if !report.C1Continuous {
		status = "c1=FAIL"
	}
	dc.DrawString(status, 10, 36)

	return dc.SavePNG(filename)
}
