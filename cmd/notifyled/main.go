package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kennylindholm/beeper-led-blinker/internal/config"
	"github.com/kennylindholm/beeper-led-blinker/internal/monitor"
	"github.com/kennylindholm/beeper-led-blinker/internal/tracker"
	"github.com/kennylindholm/beeper-led-blinker/pkg/led"
)

const defaultLedPath = "/sys/class/leds/input3::capslock/brightness"

// filterList collects repeated --filter flags.
type filterList []string

func (f *filterList) String() string { return strings.Join(*f, ",") }

func (f *filterList) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func main() {
	_ = godotenv.Load()

	var filters filterList
	flag.Var(&filters, "filter", "Text filter pattern (regex); may be repeated")
	var (
		ledPath         = flag.String("led-path", envDefault("LED_PATH", defaultLedPath), "LED device path")
		blinkInterval   = flag.Duration("blink-interval", envDuration("BLINK_INTERVAL", 500*time.Millisecond), "LED blink interval")
		caseInsensitive = flag.Bool("case-insensitive", envBool("CASE_INSENSITIVE", false), "Case insensitive filter matching")
		interval        = flag.Duration("interval", envDuration("SYNC_INTERVAL", 3*time.Second), "How often to sync LED state with tracked notifications")
		statusAddr      = flag.String("status-addr", envDefault("STATUS_ADDR", ""), "Listen address for HTTP status (empty to disable)")
		configPath      = flag.String("config", envDefault("LEDBLINKER_CONFIG", ""), "Optional YAML config file")
		debug           = flag.Bool("debug", envBool("DEBUG", false), "Enable debug logging")
	)
	flag.Parse()

	var file *config.File
	if *configPath != "" {
		var err error
		file, err = config.Load(*configPath)
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
		if n := file.Notify; n != nil {
			if !set["case-insensitive"] && n.CaseInsensitive != nil {
				*caseInsensitive = *n.CaseInsensitive
			}
			if !set["interval"] && n.Interval != nil {
				*interval = n.Interval.Std()
			}
		}
	}

	// filters: explicit flags beat the config file, which beats FILTERS
	patterns := []string(filters)
	if len(patterns) == 0 && file != nil && file.Notify != nil {
		patterns = file.Notify.Filters
	}
	if len(patterns) == 0 {
		if v := os.Getenv("FILTERS"); v != "" {
			patterns = strings.Split(v, ",")
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

	if len(patterns) == 0 {
		log.Fatal("at least one filter is required (use --filter)")
	}

	filterSet, err := tracker.CompileFilters(patterns, *caseInsensitive)
	if err != nil {
		log.Fatalf("compile filters: %v", err)
	}

	logger.Info("starting notification led blinker",
		"led_path", *ledPath,
		"filters", patterns,
		"case_insensitive", *caseInsensitive,
		"sync_every", *interval,
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

	items := tracker.New(filterSet, logger)

	m := monitor.NewStream(items, controller, monitor.StreamConfig{
		SyncEvery:  *interval,
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

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}
