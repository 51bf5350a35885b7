// Package clock provides the millisecond counter used for debounce timing.
//
// Readings are uint32 milliseconds and wrap to zero after 2^32-1 ms
// (about 49.7 days). Callers must compute elapsed time as now-then on
// uint32 values, which stays correct across a single wrap.
package clock

import (
	"sync"
	"time"
)

// Clock returns a monotonically non-decreasing millisecond counter.
type Clock interface {
	Millis() uint32
}

// System is a Clock backed by the Go monotonic clock.
// The counter starts at zero when the System is created.
type System struct {
	start time.Time
}

// NewSystem creates a System clock starting at zero.
func NewSystem() *System {
	return &System{start: time.Now()}
}

// Millis returns milliseconds since the clock was created, truncated to 32 bits.
func (s *System) Millis() uint32 {
	return uint32(time.Since(s.start).Milliseconds())
}

// Fake is a manually driven Clock for tests.
type Fake struct {
	mu  sync.Mutex
	now uint32
}

// NewFake creates a Fake clock reading start.
func NewFake(start uint32) *Fake {
	return &Fake{now: start}
}

// Millis returns the current fake reading.
func (f *Fake) Millis() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set moves the clock to ms.
func (f *Fake) Set(ms uint32) {
	f.mu.Lock()
	f.now = ms
	f.mu.Unlock()
}

// Advance moves the clock forward by ms, wrapping past the uint32 maximum.
func (f *Fake) Advance(ms uint32) {
	f.mu.Lock()
	f.now += ms
	f.mu.Unlock()
}
