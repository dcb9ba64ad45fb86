// Package cphframe defines the Frame/Pixel data model that every pipeline
// stage reads and writes, matching spec.md §3 and the external Frame
// format of §6. Grounded on pkg/eclipse.FusedImage / pkg/estack.Stack,
// which likewise own a flat per-pixel buffer addressed by (x,y) and carry
// a width/height/bounds plus a color-space-ish tag.
package cphframe

import (
	"fmt"

	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphcolor"
	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphmath"
)

const Channels = 3

// Frame is a dense, row-major array of 3-channel float32 pixels, tagged
// with a single color space for the whole frame (the tag is per-frame,
// not per-pixel, per spec.md §3).
type Frame struct {
	Width      int
	Height     int
	ColorSpace cphcolor.ColorSpace
	Data       []float32 // len == Width*Height*Channels
}

// Stride is the external byte stride: width * channels * 4 bytes, per
// spec.md §6.
func (f *Frame) Stride() int { return f.Width * Channels * 4 }

// NewFrame allocates a black frame of the given size.
func NewFrame(w, h int, cs cphcolor.ColorSpace) *Frame {
	return &Frame{Width: w, Height: h, ColorSpace: cs, Data: make([]float32, w*h*Channels)}
}

func (f *Frame) index(x, y int) int { return (y*f.Width + x) * Channels }

// At returns the pixel at (x,y) as a Vec3.
func (f *Frame) At(x, y int) cphmath.Vec3 {
	i := f.index(x, y)
	return cphmath.Vec3{float64(f.Data[i]), float64(f.Data[i+1]), float64(f.Data[i+2])}
}

// Set writes the pixel at (x,y).
func (f *Frame) Set(x, y int, v cphmath.Vec3) {
	i := f.index(x, y)
	f.Data[i] = float32(v[0])
	f.Data[i+1] = float32(v[1])
	f.Data[i+2] = float32(v[2])
}

// Clone returns a deep copy, used wherever a stage needs to compare against
// the pre-stage pixel values (e.g. highlight-detail's identity invariant,
// motion protection's previous-frame diff).
func (f *Frame) Clone() *Frame {
	out := &Frame{Width: f.Width, Height: f.Height, ColorSpace: f.ColorSpace, Data: make([]float32, len(f.Data))}
	copy(out.Data, f.Data)
	return out
}

// SanitizeNonFinite replaces any pixel with a non-finite channel with black,
// matching the Frame invariant in spec.md §3 and the working-domain
// converter's behavior for non-finite input pixels (spec.md §4.6 step 2,
// scenario S3).
func (f *Frame) SanitizeNonFinite() (replaced int) {
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			v := f.At(x, y)
			if !v.AllFinite() {
				f.Set(x, y, cphmath.Vec3{})
				replaced++
			}
		}
	}
	return replaced
}

func (f *Frame) String() string {
	return fmt.Sprintf("Frame[%dx%d, %s]", f.Width, f.Height, f.ColorSpace)
}
