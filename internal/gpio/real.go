//go:build linux

package gpio

import (
	"fmt"
	"log"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

var _ Pins = (*Chip)(nil)

// Chip reads input lines from actual hardware using the Linux GPIO character device.
// It is safe for concurrent use; each line is requested on first SetMode.
type Chip struct {
	mu      sync.Mutex
	chip    *gpiocdev.Chip
	lines   map[int]*gpiocdev.Line
	last    map[int]bool
	failing map[int]bool
}

// OpenChip opens the named GPIO chip, e.g. "gpiochip0".
func OpenChip(name string) (*Chip, error) {
	chip, err := gpiocdev.NewChip(name)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", name, err)
	}
	return &Chip{
		chip:    chip,
		lines:   make(map[int]*gpiocdev.Line),
		last:    make(map[int]bool),
		failing: make(map[int]bool),
	}, nil
}

func bias(mode Mode) gpiocdev.LineBias {
	if mode == ModeInputPullUp {
		return gpiocdev.WithPullUp
	}
	return gpiocdev.WithBiasDisabled
}

// SetMode requests pin as an input, or reconfigures it if already requested.
// Failures are logged; the pin then reads as low.
func (c *Chip) SetMode(pin int, mode Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if line, ok := c.lines[pin]; ok {
		if err := line.Reconfigure(gpiocdev.AsInput, bias(mode)); err != nil {
			log.Printf("gpio: reconfigure pin %d as %s: %v", pin, mode, err)
		}
		return
	}

	line, err := c.chip.RequestLine(pin, gpiocdev.AsInput, bias(mode))
	if err != nil {
		log.Printf("gpio: request pin %d as %s: %v", pin, mode, err)
		return
	}
	c.lines[pin] = line
}

// Level returns the raw level of pin. On a read error the last good level
// is returned and the error is logged once until the pin reads cleanly again.
func (c *Chip) Level(pin int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	line, ok := c.lines[pin]
	if !ok {
		if !c.failing[pin] {
			log.Printf("gpio: pin %d read before SetMode", pin)
			c.failing[pin] = true
		}
		return false
	}

	v, err := line.Value()
	if err != nil {
		if !c.failing[pin] {
			log.Printf("gpio: read pin %d: %v", pin, err)
			c.failing[pin] = true
		}
		return c.last[pin]
	}
	if c.failing[pin] {
		log.Printf("gpio: pin %d reading again", pin)
		c.failing[pin] = false
	}

	level := v != 0
	c.last[pin] = level
	return level
}

// Close releases GPIO resources.
// Lines are reconfigured to plain inputs before closing so a pull-up
// is not left driving external hardware after the daemon exits.
func (c *Chip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for pin, line := range c.lines {
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithBiasDisabled); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", pin, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", pin, err))
		}
		delete(c.lines, pin)
	}
	if c.chip != nil {
		if err := c.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		c.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
