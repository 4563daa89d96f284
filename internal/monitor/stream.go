package monitor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/kennylindholm/beeper-led-blinker/internal/dbus"
	"github.com/kennylindholm/beeper-led-blinker/internal/tracker"
)

// sourceRestartDelay is the fixed pause before respawning a dead
// notification source. A variable so tests can shorten it.
var sourceRestartDelay = 5 * time.Second

// startSource launches the notification line source. Swapped in tests.
var startSource = startDbusMonitor

// daemonRunning probes the notification daemon. swaync-client exits
// zero when swaync is up. Swapped in tests.
var daemonRunning = func(ctx context.Context) bool {
	return exec.CommandContext(ctx, "swaync-client", "--count", "--skip-wait").Run() == nil
}

// startDbusMonitor spawns dbus-monitor on the session bus and streams
// its stdout line by line. The channel closes when the process exits.
func startDbusMonitor(ctx context.Context) (<-chan string, func(), error) {
	cmd := exec.CommandContext(ctx, "dbus-monitor", "--session", "interface='org.freedesktop.Notifications'")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("opening dbus-monitor pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("starting dbus-monitor: %w", err)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	stop := func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}
	return lines, stop, nil
}

type StreamConfig struct {
	SyncEvery  time.Duration
	StatusAddr string
	Debug      bool
	Logger     *slog.Logger
}

// StreamMonitor blinks the LED while a tracked notification matches a
// filter. Close signals clear all tracked notifications: the stream
// carries no usable notification IDs, so clearing is the only safe
// reaction, and the periodic sync repairs the LED afterwards.
type StreamMonitor struct {
	cfg    StreamConfig
	items  *tracker.Tracker
	led    Blinker
	logger *slog.Logger
	met    *metrics

	mu        sync.Mutex
	available bool
	lastSync  time.Time
}

func NewStream(items *tracker.Tracker, led Blinker, cfg StreamConfig) *StreamMonitor {
	if cfg.SyncEvery <= 0 {
		cfg.SyncEvery = 3 * time.Second
	}
	return &StreamMonitor{
		cfg:    cfg,
		items:  items,
		led:    led,
		logger: loggerFor(cfg.Logger, cfg.Debug),
		met:    newMetrics(),
	}
}

// Start runs the stream loop until ctx ends. The notification source is
// respawned after a fixed delay whenever it dies; a source that cannot
// be spawned at all is fatal.
func (m *StreamMonitor) Start(ctx context.Context) error {
	if m.items == nil {
		return errors.New("notification tracker is required")
	}
	if m.led == nil {
		return errors.New("led blinker is required")
	}

	startStatusServer(ctx, m.cfg.StatusAddr, m.logger, m.met, m.snapshot)

	if !m.waitForDaemon(ctx) {
		return nil
	}
	m.setAvailable(true)
	m.logger.Info("notification daemon reachable, monitoring notifications", "sync_every", m.cfg.SyncEvery)

	ticker := time.NewTicker(m.cfg.SyncEvery)
	defer ticker.Stop()

	for {
		lines, stop, err := startSource(ctx)
		if err != nil {
			return fmt.Errorf("starting notification source: %w", err)
		}
		m.watch(ctx, lines, ticker.C)
		stop()

		if ctx.Err() != nil {
			m.logger.Info("monitor stopping")
			return nil
		}

		m.met.restarts.Inc()
		m.logger.Warn("notification source ended, restarting", "delay", sourceRestartDelay)
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopping")
			return nil
		case <-time.After(sourceRestartDelay):
		}
	}
}

// watch consumes one source session. A fresh parser per session keeps a
// dead source's partial frame from leaking into the next one.
func (m *StreamMonitor) watch(ctx context.Context, lines <-chan string, tick <-chan time.Time) {
	parser := dbus.NewParser(dbus.NotifySchema())
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			m.handleLine(parser, line)
		case <-tick:
			m.sync(ctx)
		}
	}
}

func (m *StreamMonitor) handleLine(parser *dbus.Parser, line string) {
	for _, ev := range parser.Feed(line) {
		switch ev.Kind {
		case dbus.EventComplete:
			m.met.notifications.Inc()
			n := ev.Notification
			item := tracker.Item{
				ID:    dbus.SynthesizeID(n, time.Now()),
				App:   n.App,
				Title: n.Summary,
				Body:  n.Body,
			}
			if m.items.Upsert(item) && !m.led.Blinking() {
				m.logger.Info("matching notification, starting led blink", "app", n.App, "summary", n.Summary)
				m.led.Start()
			}
		case dbus.EventClosed:
			m.met.closes.Inc()
			m.logger.Info("notification closed, clearing tracked notifications", "close_id", ev.CloseID)
			m.items.Clear()
			if err := m.led.Stop(); err != nil {
				m.logger.Error("failed to stop led", "err", err)
			}
		}
	}
	m.updateGauges()
}

// sync reconciles the LED against the tracked notifications and checks
// that the notification daemon is still alive.
func (m *StreamMonitor) sync(ctx context.Context) {
	m.logger.Debug("performing periodic sync")
	m.met.checks.Inc()

	if !daemonRunning(ctx) {
		m.setAvailable(false)
		m.logger.Warn("notification daemon went away, turning led off")
		if err := m.led.Stop(); err != nil {
			m.logger.Error("failed to stop led", "err", err)
		}
		m.updateGauges()
		if !m.waitForDaemon(ctx) {
			return
		}
	}
	m.setAvailable(true)
	m.markSynced()

	matching := m.items.MatchCount()
	if matching > 0 && !m.led.Blinking() {
		m.logger.Info("sync: starting led blink", "matching", matching)
		m.led.Start()
	} else if matching == 0 && m.led.Blinking() {
		m.logger.Info("sync: stopping led blink, no matching notifications")
		if err := m.led.Stop(); err != nil {
			m.logger.Error("failed to stop led", "err", err)
		}
	}
	m.updateGauges()
}

func (m *StreamMonitor) waitForDaemon(ctx context.Context) bool {
	return waitForUpstream(ctx, m.logger,
		"notification daemon not available, make sure swaync is running",
		daemonRunning)
}

func (m *StreamMonitor) setAvailable(up bool) {
	m.mu.Lock()
	m.available = up
	m.mu.Unlock()
	setBool(m.met.upstreamUp, up)
}

func (m *StreamMonitor) markSynced() {
	m.mu.Lock()
	m.lastSync = time.Now()
	m.mu.Unlock()
}

func (m *StreamMonitor) updateGauges() {
	m.met.tracked.Set(float64(m.items.Len()))
	m.met.matching.Set(float64(m.items.MatchCount()))
	setBool(m.met.blinking, m.led.Blinking())
}

func (m *StreamMonitor) snapshot(now time.Time) statusResponse {
	m.mu.Lock()
	available := m.available
	lastSync := m.lastSync
	m.mu.Unlock()

	tracked := m.items.Len()
	matching := m.items.MatchCount()
	resp := statusResponse{
		ObservedAt:        now,
		Mode:              "notifications",
		Blinking:          m.led.Blinking(),
		UpstreamAvailable: available,
		Tracked:           &tracked,
		Matching:          &matching,
	}
	if !lastSync.IsZero() {
		resp.LastChecked = lastSync.Format(time.RFC3339)
	}
	return resp
}
