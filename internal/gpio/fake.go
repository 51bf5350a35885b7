package gpio

import "sync"

// FakePins is a test double with settable and scripted line levels.
type FakePins struct {
	mu      sync.Mutex
	modes   map[int]Mode
	levels  map[int]bool
	scripts map[int][]bool
	reads   map[int]int
}

// NewFakePins creates a FakePins with every line low and unconfigured.
func NewFakePins() *FakePins {
	return &FakePins{
		modes:   make(map[int]Mode),
		levels:  make(map[int]bool),
		scripts: make(map[int][]bool),
		reads:   make(map[int]int),
	}
}

// SetMode records the mode for pin.
func (f *FakePins) SetMode(pin int, mode Mode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modes[pin] = mode
}

// Mode returns the mode last set for pin and whether SetMode was called.
func (f *FakePins) Mode(pin int) (Mode, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.modes[pin]
	return m, ok
}

// Set drives pin to level and discards any remaining script for it.
func (f *FakePins) Set(pin int, level bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.levels[pin] = level
	delete(f.scripts, pin)
}

// Script queues levels for pin. Each Level call consumes the next one;
// once exhausted the last level repeats.
func (f *FakePins) Script(pin int, levels ...bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[pin] = append(f.scripts[pin], levels...)
}

// Level returns the next scripted level for pin, or its set level.
func (f *FakePins) Level(pin int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reads[pin]++
	if s := f.scripts[pin]; len(s) > 0 {
		f.levels[pin] = s[0]
		if len(s) > 1 {
			f.scripts[pin] = s[1:]
		} else {
			delete(f.scripts, pin)
		}
	}
	return f.levels[pin]
}

// Reads returns how many times Level was called for pin.
func (f *FakePins) Reads(pin int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads[pin]
}
