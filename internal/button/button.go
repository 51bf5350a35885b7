// Package button implements a debounced digital input.
//
// A Button owns the state of one input line and is polled by the caller:
// nothing is sampled in the background. Debouncing is time-windowed from the
// last accepted change, so a burst of bounces collapses to at most one
// accepted transition per window.
//
// All timing uses the uint32 millisecond counter from package clock and
// compares elapsed values (now-then), never absolute timestamps, so the
// counter may wrap.
package button

import (
	"math"
	"time"

	"github.com/sweeney/dcc-button/internal/clock"
	"github.com/sweeney/dcc-button/internal/gpio"
)

// Button tracks debounced state for a single input line.
// It is not safe for concurrent use; poll each Button from one goroutine.
type Button struct {
	pins  gpio.Pins
	clock clock.Clock

	pin      int
	window   uint32 // debounce window, ms
	pullUp   bool
	invert   bool
	state    bool // current debounced state, true = pressed
	previous bool // state before the last accepted change
	changed  bool // the last Read accepted a transition

	lastRead   uint32
	lastChange uint32
}

// Config describes the line a Button is attached to.
type Config struct {
	Pin      int
	Debounce time.Duration
	PullUp   bool
	Invert   bool
}

// Attach configures the line, takes one sample and returns a Button whose
// state is that sample. Both timestamps start at the current clock reading.
func Attach(pins gpio.Pins, clk clock.Clock, cfg Config) *Button {
	b := &Button{
		pins:   pins,
		clock:  clk,
		pin:    cfg.Pin,
		window: durationToMillis(cfg.Debounce),
		pullUp: cfg.PullUp,
		invert: cfg.Invert,
	}

	pins.SetMode(b.pin, gpio.ModeFor(b.pullUp))
	b.state = b.sample()
	b.previous = b.state
	b.lastRead = clk.Millis()
	b.lastChange = b.lastRead
	return b
}

func (b *Button) sample() bool {
	return b.pins.Level(b.pin) != b.invert
}

// Read samples the line and returns the debounced state.
// A level different from the current state is accepted only once the
// debounce window has elapsed since the last accepted change.
func (b *Button) Read() bool {
	now := b.clock.Millis()
	observed := b.sample()

	if now-b.lastChange < b.window {
		b.changed = false
	} else {
		b.previous = b.state
		b.state = observed
		b.changed = b.state != b.previous
		if b.changed {
			b.lastChange = now
		}
	}

	b.lastRead = now
	return b.state
}

// IsPressed reports the state as of the last Read.
func (b *Button) IsPressed() bool {
	return b.state
}

// IsReleased reports the inverse of IsPressed.
func (b *Button) IsReleased() bool {
	return !b.state
}

// WasPressed reports whether the last Read accepted a change to pressed.
func (b *Button) WasPressed() bool {
	return b.state && b.changed
}

// WasReleased reports whether the last Read accepted a change to released.
func (b *Button) WasReleased() bool {
	return !b.state && b.changed
}

// PressedFor reports whether the button was pressed and had been for at
// least ms milliseconds as of the last Read. No new sample is taken.
func (b *Button) PressedFor(ms uint32) bool {
	return b.state && b.lastRead-b.lastChange >= ms
}

// ReleasedFor is the released counterpart of PressedFor.
func (b *Button) ReleasedFor(ms uint32) bool {
	return !b.state && b.lastRead-b.lastChange >= ms
}

// LastChange returns the clock reading at the last accepted change,
// or at Attach if none has been accepted.
func (b *Button) LastChange() uint32 {
	return b.lastChange
}

// Pin returns the line offset the button is attached to.
func (b *Button) Pin() int {
	return b.pin
}

// Window returns the debounce window in milliseconds.
func (b *Button) Window() uint32 {
	return b.window
}

func durationToMillis(d time.Duration) uint32 {
	ms := d.Milliseconds()
	if ms < 0 {
		return 0
	}
	if ms > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(ms)
}
