package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/kennylindholm/beeper-led-blinker/internal/beeper"
)

// MessageSource is the slice of the Beeper API client the poll monitor
// needs.
type MessageSource interface {
	Available(ctx context.Context) bool
	UnreadCount(ctx context.Context, opts beeper.CountOptions) (int, error)
}

type PollConfig struct {
	Interval   time.Duration
	Count      beeper.CountOptions
	StatusAddr string
	Debug      bool
	Logger     *slog.Logger
}

// PollMonitor blinks the LED while unread messages exist.
type PollMonitor struct {
	cfg    PollConfig
	api    MessageSource
	led    Blinker
	logger *slog.Logger
	met    *metrics

	mu          sync.Mutex
	available   bool
	lastUnread  int
	lastChecked time.Time
}

func NewPoll(api MessageSource, led Blinker, cfg PollConfig) *PollMonitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	return &PollMonitor{
		cfg:    cfg,
		api:    api,
		led:    led,
		logger: loggerFor(cfg.Logger, cfg.Debug),
		met:    newMetrics(),
	}
}

// Start runs the poll loop until ctx ends. The initial count is fetched
// immediately so the LED reflects reality before the first tick.
func (m *PollMonitor) Start(ctx context.Context) error {
	if m.api == nil {
		return errors.New("message source is required")
	}
	if m.led == nil {
		return errors.New("led blinker is required")
	}

	startStatusServer(ctx, m.cfg.StatusAddr, m.logger, m.met, m.snapshot)

	if !m.waitForAPI(ctx) {
		return nil
	}
	m.logger.Info("beeper api reachable", "poll_every", m.cfg.Interval)

	m.check(ctx)

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopping")
			return nil
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

// check performs one poll cycle: availability probe, unread count,
// LED reconciliation. A count error leaves the LED untouched.
func (m *PollMonitor) check(ctx context.Context) {
	m.met.checks.Inc()

	if !m.api.Available(ctx) {
		m.setAvailable(false)
		m.logger.Warn("beeper api went away, turning led off")
		if err := m.led.Stop(); err != nil {
			m.logger.Error("failed to stop led", "err", err)
		}
		setBool(m.met.blinking, m.led.Blinking())
		if !m.waitForAPI(ctx) {
			return
		}
	}
	m.setAvailable(true)

	count, err := m.api.UnreadCount(ctx, m.cfg.Count)
	if err != nil {
		m.logger.Error("failed to count unread messages", "err", err)
		return
	}
	m.recordCount(count)
	m.apply(count)
}

func (m *PollMonitor) apply(count int) {
	if count > 0 && !m.led.Blinking() {
		m.logger.Info("unread messages, starting led blink", "count", count)
		m.led.Start()
	} else if count == 0 && m.led.Blinking() {
		m.logger.Info("no unread messages, stopping led blink")
		if err := m.led.Stop(); err != nil {
			m.logger.Error("failed to stop led", "err", err)
		}
	} else {
		m.logger.Debug("led state unchanged", "count", count, "blinking", m.led.Blinking())
	}
	setBool(m.met.blinking, m.led.Blinking())
}

func (m *PollMonitor) waitForAPI(ctx context.Context) bool {
	return waitForUpstream(ctx, m.logger,
		"beeper desktop api not available, make sure beeper desktop is running and the api is enabled in settings > developers",
		m.api.Available)
}

func (m *PollMonitor) setAvailable(up bool) {
	m.mu.Lock()
	m.available = up
	m.mu.Unlock()
	setBool(m.met.upstreamUp, up)
}

func (m *PollMonitor) recordCount(count int) {
	m.mu.Lock()
	m.lastUnread = count
	m.lastChecked = time.Now()
	m.mu.Unlock()
	m.met.unread.Set(float64(count))
}

func (m *PollMonitor) snapshot(now time.Time) statusResponse {
	m.mu.Lock()
	defer m.mu.Unlock()

	unread := m.lastUnread
	resp := statusResponse{
		ObservedAt:        now,
		Mode:              "beeper",
		Blinking:          m.led.Blinking(),
		UpstreamAvailable: m.available,
		LastUnread:        &unread,
	}
	if !m.lastChecked.IsZero() {
		resp.LastChecked = m.lastChecked.Format(time.RFC3339)
	}
	return resp
}
