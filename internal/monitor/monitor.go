// Package monitor drives an LED from an upstream alert source. The poll
// monitor watches the Beeper Desktop API for unread messages; the stream
// monitor watches desktop notifications through a dbus-monitor
// subprocess. Both turn the LED off whenever their upstream goes away,
// so a lit LED always means a live alert.
package monitor

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Blinker is the LED control surface a monitor drives. Start and Stop
// are idempotent; Stop leaves the LED dark.
type Blinker interface {
	Start()
	Stop() error
	Blinking() bool
}

// upstreamRetry is the fixed wait between probes while an upstream is
// down. Both upstreams are local processes, so there is no backoff.
const upstreamRetry = 10 * time.Second

// waitForUpstream blocks until probe succeeds, logging hint after every
// failed attempt. Returns false if ctx ended first.
func waitForUpstream(ctx context.Context, logger *slog.Logger, hint string, probe func(context.Context) bool) bool {
	for {
		if probe(ctx) {
			return true
		}
		logger.Warn(hint, "retry_in", upstreamRetry)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(upstreamRetry):
		}
	}
}

func loggerFor(logger *slog.Logger, debug bool) *slog.Logger {
	if logger != nil {
		return logger
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
