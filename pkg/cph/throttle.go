package cph

import (
	"fmt"
	"sync"
	"time"
)

const (
	throttleMaxPerWindow = 10
	throttleWindow       = time.Second
)

// throttleEntry tracks one error code's rolling-window counter.
type throttleEntry struct {
	windowStart time.Time
	count       int
	suppressed  int
	firstSeen   time.Time
	lastSeen    time.Time
}

// Throttler bounds log volume per error code to spec.md §4.8's 10 logs per
// rolling 1-second window, while still counting everything suppressed for
// the aggregate report. Grounded on the teacher's single package-level
// mutex-guarded state (the Hists package var in estack/luminance.go),
// generalized from a fixed slice of histograms to a map keyed by code.
type Throttler struct {
	mu      sync.Mutex
	entries map[ErrorCode]*throttleEntry
}

func NewThrottler() *Throttler {
	return &Throttler{entries: map[ErrorCode]*throttleEntry{}}
}

// Allow reports whether this occurrence of code should actually be logged,
// updating the rolling window and suppressed counter as a side effect.
func (t *Throttler) Allow(code ErrorCode, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[code]
	if !ok {
		e = &throttleEntry{windowStart: now, firstSeen: now}
		t.entries[code] = e
	}

	if now.Sub(e.windowStart) >= throttleWindow {
		e.windowStart = now
		e.count = 0
	}

	e.lastSeen = now
	e.count++

	if e.count > throttleMaxPerWindow {
		e.suppressed++
		return false
	}
	return true
}

// Summary is one code's aggregate throttling state, for the aggregate
// report.
type Summary struct {
	Code       ErrorCode
	Suppressed int
	FirstSeen  time.Time
	LastSeen   time.Time
}

func (s Summary) String() string {
	return fmt.Sprintf("%s: %d suppressed between %s and %s", s.Code, s.Suppressed, s.FirstSeen.Format(time.RFC3339), s.LastSeen.Format(time.RFC3339))
}

// AggregateReport snapshots every code's throttle state.
func (t *Throttler) AggregateReport() []Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Summary, 0, len(t.entries))
	for code, e := range t.entries {
		out = append(out, Summary{Code: code, Suppressed: e.suppressed, FirstSeen: e.firstSeen, LastSeen: e.lastSeen})
	}
	return out
}
