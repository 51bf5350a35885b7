// Package status provides a thread-safe status tracker for the dcc-button daemon.
// It is read by the HTTP handlers and by system event publishing.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/dcc-button/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	Pin         int
	PollMs      int64
	DebounceMs  int64
	LongPressMs int64
	HeartbeatMs int64
	PullUp      bool
	Invert      bool
	Broker      string
	HTTPAddr    string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	State         logic.State
	Ready         bool // at least one poll has completed
	LastChangeMs  uint32
	Counts        logic.EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// Update sets the button state, last change reading, and event counts.
// Called from runLoop on every tick.
func (t *Tracker) Update(state logic.State, lastChangeMs uint32, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.Ready = true
	t.snap.LastChangeMs = lastChangeMs
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
