// Command dcc-button polls a debounced push button on a GPIO line and publishes
// its presses, releases and long presses to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/dcc-button/internal/button"
	"github.com/sweeney/dcc-button/internal/clock"
	"github.com/sweeney/dcc-button/internal/gpio"
	"github.com/sweeney/dcc-button/internal/logic"
	"github.com/sweeney/dcc-button/internal/mqtt"
	"github.com/sweeney/dcc-button/internal/status"
	"github.com/sweeney/dcc-button/internal/web"
)

type options struct {
	chip        string
	pin         int
	poll        time.Duration
	debounce    time.Duration
	pullUp      bool
	invert      bool
	longPress   time.Duration
	broker      string
	topicPrefix string
	heartbeat   time.Duration
	httpAddr    string
	printState  bool
}

func main() {
	var o options
	flag.StringVar(&o.chip, "chip", "gpiochip0", "GPIO chip name")
	flag.IntVar(&o.pin, "pin", gpio.DefaultPin, "GPIO line offset of the button")
	flag.DurationVar(&o.poll, "poll", 5*time.Millisecond, "Button polling interval")
	flag.DurationVar(&o.debounce, "debounce", 25*time.Millisecond, "Debounce window")
	flag.BoolVar(&o.pullUp, "pullup", true, "Enable the internal pull-up resistor")
	flag.BoolVar(&o.invert, "invert", true, "Treat a low level as pressed (button to ground)")
	flag.DurationVar(&o.longPress, "long-press", time.Second, "Hold time before a HELD event (0 to disable)")
	flag.StringVar(&o.broker, "broker", "tcp://localhost:1883", "MQTT broker address")
	flag.StringVar(&o.topicPrefix, "topic-prefix", mqtt.DefaultTopicPrefix, "MQTT topic prefix")
	flag.DurationVar(&o.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&o.httpAddr, "http", ":8080", "HTTP status address (empty to disable)")
	flag.BoolVar(&o.printState, "print-state", false, "Print current state and exit")

	flag.Parse()

	if err := run(o); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func (o options) buttonConfig() button.Config {
	return button.Config{
		Pin:      o.pin,
		Debounce: o.debounce,
		PullUp:   o.pullUp,
		Invert:   o.invert,
	}
}

func run(o options) error {
	// Initialize GPIO
	chip, err := gpio.OpenChip(o.chip)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer chip.Close()

	btn := button.Attach(chip, clock.NewSystem(), o.buttonConfig())

	// Print state mode
	if o.printState {
		fmt.Printf("pin %d: %s\n", o.pin, stateString(btn.IsPressed()))
		return nil
	}

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(o.broker, o.topicPrefix)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		Pin:         o.pin,
		PollMs:      o.poll.Milliseconds(),
		DebounceMs:  o.debounce.Milliseconds(),
		LongPressMs: o.longPress.Milliseconds(),
		HeartbeatMs: o.heartbeat.Milliseconds(),
		PullUp:      o.pullUp,
		Invert:      o.invert,
		Broker:      o.broker,
		HTTPAddr:    o.httpAddr,
	})
	tracker.SetMQTTConnected(publisher.IsConnected())

	if err := publisher.PublishSystem(startupEvent(btn, tracker)); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", o.httpAddr)
	}

	log.Printf("started: pin=%d mode=%s invert=%v poll=%v debounce=%v long-press=%v broker=%s heartbeat=%v",
		o.pin, gpio.ModeFor(o.pullUp), o.invert, o.poll, o.debounce, o.longPress, o.broker, o.heartbeat)

	ticker := time.NewTicker(o.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(btn, publisher, publisher, tracker, o.longPress, o.heartbeat, time.Now, ticker.C, sigCh)
}

func runLoop(btn *button.Button, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, longPress, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	startTime := now()
	detector := logic.NewDetector(btn, longPress, startTime)

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			events := detector.Process(t)

			for _, event := range events {
				log.Printf("event: %s (pin=%d state=%s)", event.Type, event.Pin, event.State)
				if err := publisher.Publish(event); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				tracker.Update(detector.CurrentState(), detector.LastChange(), detector.EventCountsSnapshot())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			// Check for heartbeat
			if hbData := detector.CheckHeartbeat(t, heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%v pressed=%d released=%d held=%d",
					hbData.Uptime, hbData.Counts.Pressed, hbData.Counts.Released, hbData.Counts.Held)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

// startupEvent seeds tracker with the line sampled at attach and returns the
// retained STARTUP event carrying that snapshot.
func startupEvent(btn *button.Button, tracker *status.Tracker) mqtt.SystemEvent {
	state := logic.State(stateString(btn.IsPressed()))
	tracker.Update(state, btn.LastChange(), logic.EventCounts{})

	snap := tracker.Snapshot()
	return mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
}

func stateString(pressed bool) string {
	if pressed {
		return string(logic.StatePressed)
	}
	return string(logic.StateReleased)
}
