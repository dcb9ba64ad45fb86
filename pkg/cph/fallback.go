package cph

import (
	"image"
	"image/color"
	"log"
	"sync"
	"time"

	"github.com/mdouchement/hdr/hdrcolor"
	"github.com/mdouchement/hdr/tmo"

	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphcolor"
	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphframe"
	"github.com/zhangzhangco/cinema-pro-hdr/pkg/cphmath"
)

// ErrorCallback is invoked on every error regardless of throttling.
type ErrorCallback func(Error)

// Handler is the process-wide, mutex-guarded error handler of spec.md §5:
// it owns the throttle table and the last-error record, and invokes the
// user callback unconditionally. Grounded on the teacher's package-level
// mutable state, generalized with sync.Once + sync.Mutex per spec.md §4.8 --
// stdlib sync is the correct choice here since no example repo in the
// corpus carries a third-party mutex/singleton helper (see DESIGN.md).
type Handler struct {
	mu        sync.Mutex
	throttle  *Throttler
	lastError *Error
	callback  ErrorCallback
}

var (
	singletonOnce sync.Once
	singleton     *Handler
)

// DefaultHandler returns the process-wide singleton handler, lazily
// initialized exactly once.
func DefaultHandler() *Handler {
	singletonOnce.Do(func() {
		singleton = NewHandler()
	})
	return singleton
}

func NewHandler() *Handler {
	return &Handler{throttle: NewThrottler()}
}

// SetCallback installs the single user-supplied error callback.
func (h *Handler) SetCallback(cb ErrorCallback) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.callback = cb
}

// Report records err as the last error, runs it through the throttle, logs
// it if allowed, and always invokes the callback.
func (h *Handler) Report(err Error) {
	now := time.Now()
	err.Timestamp = now.UnixNano()

	h.mu.Lock()
	h.lastError = &err
	cb := h.callback
	h.mu.Unlock()

	if h.throttle.Allow(err.Code, now) {
		log.Printf("cph: %s", err)
	}

	if cb != nil {
		cb(err)
	}
}

// LastError returns the most recently reported error, or nil if none.
func (h *Handler) LastError() *Error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastError
}

// ResetErrors clears the last-error record. Throttle counters are left
// alone -- they decay on their own rolling windows.
func (h *Handler) ResetErrors() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastError = nil
}

// AggregateReport delegates to the handler's throttler.
func (h *Handler) AggregateReport() []Summary {
	return h.throttle.AggregateReport()
}

// frameHDRView adapts a cphframe.Frame to the hdr.Image interface
// (image.Image + HDRAt) that github.com/mdouchement/hdr/tmo operators
// expect, grounded on pkg/eclipse.FusedImage's own ColorModel/Bounds/At/
// HDRAt quartet.
type frameHDRView struct {
	f *cphframe.Frame
}

func (v frameHDRView) ColorModel() color.Model   { return hdrcolor.RGBModel }
func (v frameHDRView) Bounds() image.Rectangle   { return image.Rect(0, 0, v.f.Width, v.f.Height) }
func (v frameHDRView) Size() int                 { return v.f.Width * v.f.Height }
func (v frameHDRView) At(x, y int) color.Color   { return v.HDRAt(x, y) }
func (v frameHDRView) HDRAt(x, y int) hdrcolor.Color {
	p := v.f.At(x, y)
	return hdrcolor.RGB{R: p[0], G: p[1], B: p[2]}
}

// TierTwoFallback runs the "basic-layer-only" neutral mapping of spec.md
// §4.8 tier 2: the current frame's CPH extension path (highlight detail,
// saturation, gamut) is disabled, and the tone stage is replaced by
// tmo.NewLinear's Perform() over the frame -- the teacher's own "linear"
// entry in its Tonemappers list, reused here as the literal definition of
// "neutral mapping consistent with the default parameter bundle". The
// result is tagged outputCS directly: the neutral path bypasses C2's
// working-domain round trip entirely, it never ran through it.
func TierTwoFallback(frame *cphframe.Frame, outputCS cphcolor.ColorSpace) *cphframe.Frame {
	view := frameHDRView{f: frame}
	mapped := tmo.NewLinear(view).Perform()

	out := cphframe.NewFrame(frame.Width, frame.Height, outputCS)
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			// tmo operators Perform() into a standard LDR image.Image, not an
			// hdr.Image -- the teacher reads the result the same way, via
			// color.Color.RGBA() (pixel.go's TonemappedRGB), never HDRRGBA().
			r, g, b, _ := mapped.At(x, y).RGBA()
			out.Set(x, y, cphmath.Vec3{
				cphmath.Saturate(float64(r) / 65535.0),
				cphmath.Saturate(float64(g) / 65535.0),
				cphmath.Saturate(float64(b) / 65535.0),
			})
		}
	}
	return out
}

// TierThreeFallback replaces the frame's luminance map with identity and
// bypasses saturation/gamut, per spec.md §4.8 tier 3: it returns an
// unmodified copy of frame. It performs no color conversion itself; any
// working-domain round trip is left to the caller.
func TierThreeFallback(frame *cphframe.Frame) *cphframe.Frame {
	return frame.Clone()
}
