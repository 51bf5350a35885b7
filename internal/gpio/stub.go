//go:build !linux

package gpio

import "errors"

var _ Pins = (*Chip)(nil)

// Chip is not available on non-Linux platforms.
type Chip struct{}

// OpenChip returns an error on non-Linux platforms.
func OpenChip(name string) (*Chip, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// SetMode is a no-op on non-Linux platforms.
func (c *Chip) SetMode(pin int, mode Mode) {}

// Level always reports low on non-Linux platforms.
func (c *Chip) Level(pin int) bool {
	return false
}

// Close is a no-op on non-Linux platforms.
func (c *Chip) Close() error {
	return nil
}
