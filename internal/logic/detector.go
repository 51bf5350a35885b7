package logic

import (
	"math"
	"time"

	"github.com/sweeney/dcc-button/internal/button"
)

// Detector polls a Button and reports its transitions as events.
type Detector struct {
	button        *button.Button
	longPress     uint32 // ms; 0 disables HELD
	heldReported  bool
	startTime     time.Time
	eventCounts   EventCounts
	lastHeartbeat time.Time
}

// NewDetector creates a detector for b. A HELD event is emitted once per
// press when the button has been pressed for longPress; zero disables it.
// The startTime is used for calculating uptime in heartbeat events.
func NewDetector(b *button.Button, longPress time.Duration, startTime time.Time) *Detector {
	return &Detector{
		button:        b,
		longPress:     millis(longPress),
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Process reads the button once and returns any events that should be emitted.
func (d *Detector) Process(now time.Time) []Event {
	b := d.button
	b.Read()

	var events []Event
	emit := func(t EventType) {
		events = append(events, Event{
			Timestamp: now,
			Type:      t,
			Pin:       b.Pin(),
			State:     boolToState(b.IsPressed()),
		})
	}

	switch {
	case b.WasPressed():
		d.heldReported = false
		emit(EventPressed)
	case b.WasReleased():
		d.heldReported = false
		emit(EventReleased)
	}

	if d.longPress > 0 && !d.heldReported && b.PressedFor(d.longPress) {
		d.heldReported = true
		emit(EventHeld)
	}

	// Count events
	for _, e := range events {
		switch e.Type {
		case EventPressed:
			d.eventCounts.Pressed++
		case EventReleased:
			d.eventCounts.Released++
		case EventHeld:
			d.eventCounts.Held++
		}
	}

	return events
}

func boolToState(pressed bool) State {
	if pressed {
		return StatePressed
	}
	return StateReleased
}

func millis(d time.Duration) uint32 {
	ms := d.Milliseconds()
	if ms <= 0 {
		return 0
	}
	if ms > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(ms)
}

// CurrentState returns the debounced state as of the last Process.
func (d *Detector) CurrentState() State {
	return boolToState(d.button.IsPressed())
}

// LastChange returns the button's last-change clock reading in milliseconds.
func (d *Detector) LastChange() uint32 {
	return d.button.LastChange()
}

// EventCountsSnapshot returns a copy of the event counts.
func (d *Detector) EventCountsSnapshot() EventCounts {
	return d.eventCounts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (d *Detector) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(d.lastHeartbeat) < interval {
		return nil
	}

	d.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(d.startTime),
		Counts:    d.eventCounts,
	}
}
