package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
)

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

var (
	red    = color.New(color.FgRed, color.Bold)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
)

func main() {
	statusURL := flag.String("url", envDefault("LEDSTATUS_URL", "http://127.0.0.1:8070/"), "Status endpoint URL")
	timeout := flag.Duration("timeout", envDuration("LEDSTATUS_TIMEOUT", 3*time.Second), "HTTP request timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	resp, err := fetchStatus(ctx, *statusURL)
	if err != nil {
		log.Fatalf("fetch status: %v", err)
	}

	printStatus(resp, os.Stdout)
}

func fetchStatus(ctx context.Context, url string) (statusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return statusResponse{}, fmt.Errorf("build request: %w", err)
	}

	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		return statusResponse{}, fmt.Errorf("request status: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return statusResponse{}, fmt.Errorf("unexpected status %s: %s", res.Status, strings.TrimSpace(string(body)))
	}

	var status statusResponse
	if err := json.NewDecoder(res.Body).Decode(&status); err != nil {
		return statusResponse{}, fmt.Errorf("decode response: %w", err)
	}

	return status, nil
}

func printStatus(resp statusResponse, w io.Writer) {
	if resp.ObservedAt.IsZero() {
		resp.ObservedAt = time.Now()
	}
	fmt.Fprintf(w, "Observed at: %s\n\n", resp.ObservedAt.Format(time.RFC3339))

	state := stateOf(resp)
	upstream := "available"
	if !resp.UpstreamAvailable {
		upstream = "unavailable"
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATE\tMODE\tUPSTREAM\tDETAILS")
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", state, resp.Mode, upstream, summarize(resp))
	_ = tw.Flush()

	// colorize after the flush so escape codes never skew column widths
	fmt.Fprint(w, colorizeState(buf.String(), state))
}

func stateOf(resp statusResponse) string {
	if !resp.UpstreamAvailable {
		return "UNAVAILABLE"
	}
	if resp.Blinking {
		return "BLINKING"
	}
	return "IDLE"
}

func summarize(resp statusResponse) string {
	var parts []string
	switch resp.Mode {
	case "beeper":
		if resp.LastUnread != nil {
			parts = append(parts, fmt.Sprintf("%d unread", *resp.LastUnread))
		}
	case "notifications":
		if resp.Tracked != nil && resp.Matching != nil {
			parts = append(parts, fmt.Sprintf("%d tracked, %d matching", *resp.Tracked, *resp.Matching))
		}
	}
	if resp.LastChecked != "" {
		parts = append(parts, fmt.Sprintf("last checked %s", resp.LastChecked))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func colorizeState(out, state string) string {
	var c *color.Color
	switch state {
	case "BLINKING":
		c = red
	case "IDLE":
		c = green
	case "UNAVAILABLE":
		c = yellow
	default:
		return out
	}
	return strings.Replace(out, state, c.Sprint(state), 1)
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
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
