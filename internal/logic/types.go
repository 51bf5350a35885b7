// Package logic turns polled button state into transition events.
// This package has NO hardware or network dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Wall-clock time is always injectable via time.Time parameters.
package logic

import "time"

// State represents the debounced state of a button.
type State string

const (
	StatePressed  State = "PRESSED"
	StateReleased State = "RELEASED"
)

// EventType represents a button event.
type EventType string

const (
	EventPressed  EventType = "PRESSED"
	EventReleased EventType = "RELEASED"
	EventHeld     EventType = "HELD"
)

// Event represents a button event to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Pin       int
	State     State
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	Pressed  int
	Released int
	Held     int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}
