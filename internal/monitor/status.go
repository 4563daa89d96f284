package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// statusResponse is the JSON document served at the status root.
// Tracked and Matching appear in notification mode, LastUnread in
// beeper mode.
type statusResponse struct {
	ObservedAt        time.Time `json:"observed_at"`
	Mode              string    `json:"mode"`
	Blinking          bool      `json:"blinking"`
	UpstreamAvailable bool      `json:"upstream_available"`
	Tracked           *int      `json:"tracked,omitempty"`
	Matching          *int      `json:"matching,omitempty"`
	LastUnread        *int      `json:"last_unread,omitempty"`
	LastChecked       string    `json:"last_checked,omitempty"`
}

// statusHandler serves the JSON snapshot at / and prometheus metrics at
// /metrics.
func statusHandler(logger *slog.Logger, met *metrics, snap func(time.Time) statusResponse) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snap(time.Now())); err != nil {
			logger.Error("failed to encode status", "err", err)
		}
	})
	mux.Handle("/metrics", promhttp.HandlerFor(met.registry, promhttp.HandlerOpts{}))
	return mux
}

// startStatusServer runs the status handler on addr until ctx ends.
// A no-op when addr is empty.
func startStatusServer(ctx context.Context, addr string, logger *slog.Logger, met *metrics, snap func(time.Time) statusResponse) {
	if addr == "" {
		return
	}

	srv := &http.Server{Addr: addr, Handler: statusHandler(logger, met, snap)}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		logger.Info("status server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("status server failed", "err", err)
		}
	}()
}
