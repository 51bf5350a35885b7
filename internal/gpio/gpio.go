// Package gpio provides digital input line access with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Mode selects how an input line is biased.
type Mode int

const (
	// ModeInput is a floating input with bias disabled.
	ModeInput Mode = iota
	// ModeInputPullUp enables the internal pull-up resistor.
	ModeInputPullUp
)

// String returns the mode name used in logs and status output.
func (m Mode) String() string {
	switch m {
	case ModeInput:
		return "INPUT"
	case ModeInputPullUp:
		return "INPUT_PULLUP"
	default:
		return "UNKNOWN"
	}
}

// ModeFor returns ModeInputPullUp when pullUp is set, ModeInput otherwise.
func ModeFor(pullUp bool) Mode {
	if pullUp {
		return ModeInputPullUp
	}
	return ModeInput
}

// Pins configures and samples input lines by offset.
// Both methods are total: implementations that can fail log the failure
// rather than return it.
type Pins interface {
	// SetMode configures pin as an input with the given bias.
	SetMode(pin int, mode Mode)

	// Level returns the instantaneous raw level of pin (true = high).
	Level(pin int) bool
}

// DefaultPin is the BCM line offset used when none is given.
const DefaultPin = 17
