package button

import (
	"math"
	"testing"
	"time"

	"github.com/sweeney/dcc-button/internal/clock"
	"github.com/sweeney/dcc-button/internal/gpio"
)

const testPin = 17

func newTestButton(t *testing.T, start uint32, level bool, cfg Config) (*Button, *gpio.FakePins, *clock.Fake) {
	t.Helper()
	pins := gpio.NewFakePins()
	pins.Set(cfg.Pin, level)
	clk := clock.NewFake(start)
	return Attach(pins, clk, cfg), pins, clk
}

func defaultConfig() Config {
	return Config{Pin: testPin, Debounce: 50 * time.Millisecond}
}

func TestAttach(t *testing.T) {
	cfg := Config{Pin: testPin, Debounce: 25 * time.Millisecond, PullUp: true}
	b, pins, _ := newTestButton(t, 1000, true, cfg)

	if mode, ok := pins.Mode(testPin); !ok || mode != gpio.ModeInputPullUp {
		t.Errorf("expected pin configured INPUT_PULLUP, got %v (set=%v)", mode, ok)
	}
	if pins.Reads(testPin) != 1 {
		t.Errorf("expected exactly one sample at attach, got %d", pins.Reads(testPin))
	}
	if !b.IsPressed() {
		t.Error("expected pressed from initial high sample")
	}
	if b.WasPressed() || b.WasReleased() {
		t.Error("no transition should be reported after attach")
	}
	if b.LastChange() != 1000 {
		t.Errorf("expected lastChange 1000, got %d", b.LastChange())
	}
	if b.Window() != 25 {
		t.Errorf("expected window 25ms, got %d", b.Window())
	}
	if b.Pin() != testPin {
		t.Errorf("expected pin %d, got %d", testPin, b.Pin())
	}
}

func TestAttachPlainInput(t *testing.T) {
	_, pins, _ := newTestButton(t, 0, false, defaultConfig())
	if mode, _ := pins.Mode(testPin); mode != gpio.ModeInput {
		t.Errorf("expected INPUT, got %v", mode)
	}
}

func TestAttachInverted(t *testing.T) {
	cfg := defaultConfig()
	cfg.Invert = true

	b, _, _ := newTestButton(t, 0, false, cfg)
	if !b.IsPressed() {
		t.Error("inverted low line should read as pressed")
	}

	b, _, _ = newTestButton(t, 0, true, cfg)
	if b.IsPressed() {
		t.Error("inverted high line should read as released")
	}
}

func TestReadAcceptsChangeAfterWindow(t *testing.T) {
	b, pins, clk := newTestButton(t, 0, false, defaultConfig())

	clk.Set(100)
	pins.Set(testPin, true)
	if !b.Read() {
		t.Fatal("expected Read to return pressed")
	}
	if !b.WasPressed() {
		t.Error("expected WasPressed after accepted change")
	}
	if b.WasReleased() {
		t.Error("WasReleased should be false on press")
	}
	if b.LastChange() != 100 {
		t.Errorf("expected lastChange 100, got %d", b.LastChange())
	}

	// Next read with no change clears the flag
	clk.Set(110)
	b.Read()
	if b.WasPressed() {
		t.Error("WasPressed should clear on the following read")
	}
	if b.LastChange() != 100 {
		t.Errorf("lastChange should not move without a transition, got %d", b.LastChange())
	}
}

func TestReadRelease(t *testing.T) {
	b, pins, clk := newTestButton(t, 0, true, defaultConfig())

	clk.Set(60)
	pins.Set(testPin, false)
	if b.Read() {
		t.Fatal("expected Read to return released")
	}
	if !b.WasReleased() || b.WasPressed() {
		t.Errorf("expected WasReleased only, got pressed=%v released=%v", b.WasPressed(), b.WasReleased())
	}
}

func TestDebounceSuppression(t *testing.T) {
	b, pins, clk := newTestButton(t, 0, false, defaultConfig())

	// Raw level flips at 0, 10, 20 and holds high from 20 to 200
	steps := []struct {
		at    uint32
		level bool
	}{
		{0, true},
		{10, false},
		{20, true},
		{30, true},
		{40, true},
		{49, true},
	}
	for _, s := range steps {
		clk.Set(s.at)
		pins.Set(testPin, s.level)
		if b.Read() {
			t.Errorf("t=%d: state changed inside debounce window", s.at)
		}
		if b.WasPressed() || b.WasReleased() {
			t.Errorf("t=%d: transition reported inside debounce window", s.at)
		}
	}

	accepted := 0
	for at := uint32(50); at <= 200; at += 10 {
		clk.Set(at)
		if !b.Read() {
			t.Errorf("t=%d: expected pressed once window elapsed", at)
		}
		if b.WasPressed() {
			accepted++
			if at != 50 {
				t.Errorf("expected transition at t=50, got t=%d", at)
			}
		}
	}
	if accepted != 1 {
		t.Errorf("expected exactly one accepted transition, got %d", accepted)
	}
}

func TestDebounceAcceptsOnLateRead(t *testing.T) {
	b, pins, clk := newTestButton(t, 0, false, defaultConfig())

	pins.Set(testPin, true)
	clk.Set(137)
	if !b.Read() || !b.WasPressed() {
		t.Error("expected transition on first read after window")
	}
	if b.LastChange() != 137 {
		t.Errorf("expected lastChange at read time 137, got %d", b.LastChange())
	}
}

func TestWindowRearm(t *testing.T) {
	b, pins, clk := newTestButton(t, 0, false, defaultConfig())

	clk.Set(100)
	pins.Set(testPin, true)
	b.Read()
	if !b.WasPressed() {
		t.Fatal("expected press at t=100")
	}

	// Noise before T+W never produces a transition
	for at := uint32(101); at < 150; at++ {
		clk.Set(at)
		pins.Set(testPin, at%2 == 0)
		if !b.Read() {
			t.Fatalf("t=%d: state changed before window re-armed", at)
		}
		if b.WasPressed() || b.WasReleased() {
			t.Fatalf("t=%d: transition reported before window re-armed", at)
		}
	}

	clk.Set(150)
	pins.Set(testPin, false)
	if b.Read() {
		t.Error("expected release accepted at T+W")
	}
	if !b.WasReleased() {
		t.Error("expected WasReleased at T+W")
	}
}

func TestWindowMeasuredFromLastChange(t *testing.T) {
	b, pins, clk := newTestButton(t, 0, false, defaultConfig())

	// Long idle: window has long elapsed, so a single sample is accepted
	// immediately with no settle period.
	clk.Set(5000)
	pins.Set(testPin, true)
	b.Read()
	if !b.WasPressed() {
		t.Error("expected immediate acceptance after idle period")
	}
}

func TestZeroWindow(t *testing.T) {
	cfg := defaultConfig()
	cfg.Debounce = 0
	b, pins, clk := newTestButton(t, 0, false, cfg)

	pins.Set(testPin, true)
	b.Read()
	if !b.WasPressed() {
		t.Error("zero window should accept at the attach instant")
	}

	pins.Set(testPin, false)
	b.Read()
	if !b.WasReleased() {
		t.Error("zero window should accept every change")
	}

	clk.Advance(1)
	b.Read()
	if b.WasPressed() || b.WasReleased() {
		t.Error("no transition expected without a level change")
	}
}

func TestQueriesAreIdempotent(t *testing.T) {
	b, pins, clk := newTestButton(t, 0, false, defaultConfig())
	clk.Set(80)
	pins.Set(testPin, true)
	b.Read()

	// Line and clock move on, but queries reflect the last Read only
	pins.Set(testPin, false)
	clk.Set(10000)

	for i := 0; i < 3; i++ {
		if !b.IsPressed() {
			t.Errorf("call %d: IsPressed changed without Read", i)
		}
		if !b.WasPressed() {
			t.Errorf("call %d: WasPressed changed without Read", i)
		}
		if b.PressedFor(1) {
			t.Errorf("call %d: PressedFor used a fresh clock sample", i)
		}
		if b.LastChange() != 80 {
			t.Errorf("call %d: LastChange changed without Read", i)
		}
	}
	if pins.Reads(testPin) != 2 {
		t.Errorf("queries must not sample the line, got %d reads", pins.Reads(testPin))
	}
}

func TestMutualExclusion(t *testing.T) {
	b, pins, clk := newTestButton(t, 0, false, defaultConfig())

	levels := []bool{true, true, false, true, false, false, true, false}
	for i, level := range levels {
		clk.Advance(30)
		pins.Set(testPin, level)
		b.Read()

		if b.IsPressed() == b.IsReleased() {
			t.Errorf("read %d: IsPressed and IsReleased must differ", i)
		}
		if b.WasPressed() && b.WasReleased() {
			t.Errorf("read %d: WasPressed and WasReleased both true", i)
		}
		if b.PressedFor(0) && b.ReleasedFor(0) {
			t.Errorf("read %d: PressedFor and ReleasedFor both true", i)
		}
	}
}

func TestPressedForBoundary(t *testing.T) {
	b, pins, clk := newTestButton(t, 0, false, defaultConfig())

	clk.Set(200)
	pins.Set(testPin, true)
	b.Read()
	if !b.PressedFor(0) {
		t.Error("PressedFor(0) should be true at the transition read")
	}
	if b.PressedFor(1) {
		t.Error("PressedFor(1) should be false at the transition read")
	}

	clk.Set(250)
	b.Read()
	if !b.PressedFor(50) {
		t.Error("PressedFor(W) should be true at T+W")
	}
	if b.PressedFor(51) {
		t.Error("PressedFor(W+1) should be false at T+W")
	}
	if b.ReleasedFor(0) {
		t.Error("ReleasedFor should be false while pressed")
	}
}

func TestReleasedFor(t *testing.T) {
	b, _, clk := newTestButton(t, 0, false, defaultConfig())

	clk.Set(1000)
	b.Read()
	if !b.ReleasedFor(1000) {
		t.Error("expected ReleasedFor(1000) since attach")
	}
	if b.ReleasedFor(1001) {
		t.Error("expected ReleasedFor(1001) false")
	}
	if b.PressedFor(0) {
		t.Error("PressedFor should be false while released")
	}
}

func TestInvertNegatesState(t *testing.T) {
	levels := []bool{false, true, true, false, true, false, false, true, true}

	plainCfg := defaultConfig()
	invCfg := defaultConfig()
	invCfg.Invert = true

	plain, plainPins, plainClk := newTestButton(t, 0, levels[0], plainCfg)
	inv, invPins, invClk := newTestButton(t, 0, levels[0], invCfg)

	if plain.IsPressed() == inv.IsPressed() {
		t.Fatal("initial states should be negations")
	}

	for i, level := range levels[1:] {
		plainClk.Advance(20)
		invClk.Advance(20)
		plainPins.Set(testPin, level)
		invPins.Set(testPin, level)

		if plain.Read() == inv.Read() {
			t.Errorf("read %d: inverted state should negate plain state", i)
		}
		if plain.WasPressed() != inv.WasReleased() || plain.WasReleased() != inv.WasPressed() {
			t.Errorf("read %d: transitions should mirror", i)
		}
	}
}

func TestWraparoundDebounce(t *testing.T) {
	start := uint32(math.MaxUint32 - 20)
	b, pins, clk := newTestButton(t, start, false, defaultConfig())

	// 10ms after attach, still before the wrap
	clk.Advance(10)
	pins.Set(testPin, true)
	b.Read()
	if b.IsPressed() {
		t.Fatal("change accepted inside window before wrap")
	}

	// Counter wraps; 49ms elapsed since attach
	clk.Set(start + 49)
	if clk.Millis() > start {
		t.Fatal("test setup: clock should have wrapped")
	}
	b.Read()
	if b.IsPressed() {
		t.Error("change accepted inside window across wrap")
	}

	clk.Set(start + 50)
	b.Read()
	if !b.WasPressed() {
		t.Error("expected transition at 50ms elapsed across wrap")
	}
	if b.LastChange() != start+50 {
		t.Errorf("expected lastChange %d, got %d", start+50, b.LastChange())
	}
}

func TestWraparoundPressedFor(t *testing.T) {
	start := uint32(math.MaxUint32 - 100)
	b, pins, clk := newTestButton(t, start, false, defaultConfig())

	clk.Set(start + 60)
	pins.Set(testPin, true)
	b.Read()
	if !b.WasPressed() {
		t.Fatal("expected press before wrap")
	}

	clk.Set(start + 60 + 500)
	b.Read()
	if !b.PressedFor(500) {
		t.Error("PressedFor(500) should hold across wrap")
	}
	if b.PressedFor(501) {
		t.Error("PressedFor(501) should be false across wrap")
	}
}

func TestDurationToMillis(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want uint32
	}{
		{"zero", 0, 0},
		{"negative", -5 * time.Millisecond, 0},
		{"sub-millisecond", 900 * time.Microsecond, 0},
		{"typical", 25 * time.Millisecond, 25},
		{"clamped", time.Duration(math.MaxInt64), math.MaxUint32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := durationToMillis(tt.in); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}
