package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kennylindholm/beeper-led-blinker/internal/beeper"
	"github.com/kennylindholm/beeper-led-blinker/internal/config"
	"github.com/kennylindholm/beeper-led-blinker/internal/monitor"
	"github.com/kennylindholm/beeper-led-blinker/pkg/led"
)

const defaultLedPath = "/sys/class/leds/input3::capslock/brightness"

func main() {
	_ = godotenv.Load()

	var (
		token           = flag.String("token", os.Getenv("BEEPER_TOKEN"), "Beeper Desktop API access token (required)")
		apiURL          = flag.String("api-url", envDefault("BEEPER_API_URL", beeper.DefaultBaseURL), "Beeper Desktop API base URL")
		ledPath         = flag.String("led-path", envDefault("LED_PATH", defaultLedPath), "LED device path")
		interval        = flag.Duration("interval", envDuration("POLL_INTERVAL", 5*time.Second), "How often to poll for unread messages")
		blinkInterval   = flag.Duration("blink-interval", envDuration("BLINK_INTERVAL", 500*time.Millisecond), "LED blink interval")
		maxAgeDays      = flag.Int("max-age-days", envInt("MAX_AGE_DAYS", 7), "Ignore messages older than this many days (0 = all history)")
		excludeArchived = flag.Bool("exclude-archived", envBool("EXCLUDE_ARCHIVED", true), "Ignore archived chats")
		excludeMuted    = flag.Bool("exclude-muted", envBool("EXCLUDE_MUTED", true), "Ignore muted chats")
		statusAddr      = flag.String("status-addr", envDefault("STATUS_ADDR", ""), "Listen address for HTTP status (empty to disable)")
		configPath      = flag.String("config", envDefault("LEDBLINKER_CONFIG", ""), "Optional YAML config file")
		debug           = flag.Bool("debug", envBool("DEBUG", false), "Enable debug logging")
	)
	flag.Parse()

	if *configPath != "" {
		file, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		set := setFlags()
		if !set["led-path"] && file.LedPath != "" {
			*ledPath = file.LedPath
		}
		if !set["blink-interval"] && file.BlinkInterval != nil {
			*blinkInterval = file.BlinkInterval.Std()
		}
		if !set["status-addr"] && file.StatusAddr != "" {
			*statusAddr = file.StatusAddr
		}
		if !set["debug"] && file.Debug != nil {
			*debug = *file.Debug
		}
		if b := file.Beeper; b != nil {
			if !set["api-url"] && b.URL != "" {
				*apiURL = b.URL
			}
			if !set["interval"] && b.Interval != nil {
				*interval = b.Interval.Std()
			}
			if !set["max-age-days"] && b.MaxAgeDays != nil {
				*maxAgeDays = *b.MaxAgeDays
			}
			if !set["exclude-archived"] && b.ExcludeArchived != nil {
				*excludeArchived = *b.ExcludeArchived
			}
			if !set["exclude-muted"] && b.ExcludeMuted != nil {
				*excludeMuted = *b.ExcludeMuted
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	if *debug {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	slog.SetDefault(logger)

	if *token == "" {
		log.Fatal("token is required (set BEEPER_TOKEN or --token)")
	}

	logger.Info("starting beeper led blinker",
		"api_url", *apiURL,
		"led_path", *ledPath,
		"poll_every", *interval,
		"max_age_days", *maxAgeDays,
		"exclude_archived", *excludeArchived,
		"exclude_muted", *excludeMuted,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	controller, err := led.New(led.SysfsDevice{Path: *ledPath}, *blinkInterval, logger)
	if err != nil {
		log.Fatalf("led setup failed: %v", err)
	}
	defer func() {
		if err := controller.Stop(); err != nil {
			logger.Error("failed to turn led off", "err", err)
		}
	}()

	api := beeper.Client{
		BaseURL: *apiURL,
		Token:   *token,
		Logger:  logger,
	}

	m := monitor.NewPoll(api, controller, monitor.PollConfig{
		Interval: *interval,
		Count: beeper.CountOptions{
			MaxAgeDays:      *maxAgeDays,
			ExcludeArchived: *excludeArchived,
			ExcludeMuted:    *excludeMuted,
		},
		StatusAddr: *statusAddr,
		Debug:      *debug,
		Logger:     logger,
	})

	if err := m.Start(ctx); err != nil {
		logger.Error("monitor failed", "err", err)
		return
	}
}

func setFlags() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "1" || v == "true" || v == "TRUE" || v == "yes" || v == "on"
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}
