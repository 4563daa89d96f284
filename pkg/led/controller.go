// Package led drives a single indicator LED: direct on/off writes plus
// a background blink with safe start/stop semantics.
package led

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Controller blinks a Device at a fixed period. It is either idle or
// blinking; while idle the device is off, and at most one blink
// goroutine is alive at any time.
type Controller struct {
	dev    Device
	period time.Duration
	logger *slog.Logger

	mu       sync.Mutex
	blinking bool
	stop     chan struct{} // generation token owned by the live blink goroutine
}

// New verifies device access with a single off-write and returns a
// controller that blinks at the given period. A failed probe is a
// startup error: better to find out about permissions before the
// first notification arrives.
func New(dev Device, period time.Duration, logger *slog.Logger) (*Controller, error) {
	if period <= 0 {
		period = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := dev.Set(false); err != nil {
		return nil, fmt.Errorf("verify led access: %w", err)
	}
	logger.Info("led control verified")
	return &Controller{dev: dev, period: period, logger: logger}, nil
}

// Set writes the device state directly. Only meaningful while idle;
// a running blink goroutine will overwrite it on its next toggle.
func (c *Controller) Set(on bool) error {
	return c.dev.Set(on)
}

// Start launches the blink goroutine, beginning with an on-write.
// Calling Start while already blinking is a no-op.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.blinking {
		return
	}
	c.blinking = true
	c.stop = make(chan struct{})
	c.logger.Info("starting led blink", "period", c.period)
	go c.blink(c.stop)
}

// Stop cancels the blink goroutine and writes the device off before
// returning. It does not wait for the goroutine: blocking on a task
// that may be mid-write invites deadlock, and the caller-side off-write
// already guarantees the device is off when Stop returns. The goroutine
// performs its own final off-write on the way out, so the off state is
// doubly assured. Calling Stop while idle is a no-op.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if !c.blinking {
		c.mu.Unlock()
		return nil
	}
	c.blinking = false
	close(c.stop)
	c.stop = nil
	c.mu.Unlock()

	c.logger.Info("stopping led blink")
	return c.dev.Set(false)
}

// Blinking reports whether a blink goroutine is active.
func (c *Controller) Blinking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blinking
}

// Period returns the configured blink period.
func (c *Controller) Period() time.Duration {
	return c.period
}

// blink alternates the device until its generation token is closed.
// The token is checked before every write and at every wait, and write
// failures never end the loop: a transient permission or device error
// must not leave the blink dead while the alert condition holds.
func (c *Controller) blink(stop chan struct{}) {
	on := true
	for {
		select {
		case <-stop:
			_ = c.dev.Set(false)
			return
		default:
		}

		if err := c.dev.Set(on); err != nil {
			c.logger.Error("led write failed", "err", err)
		}
		on = !on

		select {
		case <-stop:
			_ = c.dev.Set(false)
			return
		case <-time.After(c.period):
		}
	}
}
