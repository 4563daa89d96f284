// Package beeper is a minimal client for the local HTTP API exposed by
// Beeper Desktop.
package beeper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// DefaultBaseURL is where Beeper Desktop serves its local API.
	DefaultBaseURL = "http://localhost:23373"

	searchPath  = "/v0/search-messages"
	searchLimit = 500

	// afterFormat is the timestamp layout the API accepts for the
	// "after" query parameter: RFC 3339, whole seconds, UTC.
	afterFormat = "2006-01-02T15:04:05Z"
)

// ErrUnavailable reports that the API did not answer at all, as opposed
// to answering with an error.
var ErrUnavailable = errors.New("beeper api unavailable")

var timeNow = time.Now

// Client talks to the Beeper Desktop local API.
type Client struct {
	BaseURL string
	Token   string
	Client  *http.Client
	Logger  *slog.Logger
}

func (c Client) client() *http.Client {
	if c.Client == nil {
		return &http.Client{Timeout: 10 * time.Second}
	}
	return c.Client
}

func (c Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c Client) base() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return c.BaseURL
}

// Available reports whether the API answers requests with a success
// status. Transport failures and error statuses both mean the desktop
// app is not ready yet.
func (c Client) Available(ctx context.Context) bool {
	q := url.Values{}
	q.Set("limit", "1")
	req, err := c.searchRequest(ctx, q)
	if err != nil {
		return false
	}
	resp, err := c.client().Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 300
}

// UnreadCount fetches unread messages and counts the ones that pass the
// configured filters. The endpoint filters server-side already; each
// message is checked again here so a stale or lagging server cannot
// inflate the count.
func (c Client) UnreadCount(ctx context.Context, opts CountOptions) (int, error) {
	q := url.Values{}
	q.Set("unreadOnly", "true")
	q.Set("limit", strconv.Itoa(searchLimit))

	var cutoff time.Time
	if opts.MaxAgeDays > 0 {
		cutoff = timeNow().UTC().Add(-time.Duration(opts.MaxAgeDays) * 24 * time.Hour)
		q.Set("after", cutoff.Format(afterFormat))
	}
	if opts.ExcludeArchived {
		q.Set("excludeArchived", "true")
	}
	if opts.ExcludeMuted {
		q.Set("excludeMuted", "true")
	}

	req, err := c.searchRequest(ctx, q)
	if err != nil {
		return 0, err
	}
	resp, err := c.client().Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("searching messages failed: %s", resp.Status)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return 0, fmt.Errorf("decoding search response: %w", err)
	}

	count := 0
	perChat := make(map[string]int)
	for _, m := range sr.Items {
		if !keep(m, cutoff, opts) {
			continue
		}
		count++
		perChat[m.Title]++
	}
	for title, n := range perChat {
		c.logger().Debug("unread messages", "chat", title, "count", n)
	}
	return count, nil
}

func (c Client) searchRequest(ctx context.Context, q url.Values) (*http.Request, error) {
	u := c.base() + searchPath + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func keep(m Message, cutoff time.Time, opts CountOptions) bool {
	if !m.IsUnread {
		return false
	}
	if !cutoff.IsZero() && m.Timestamp.Before(cutoff) {
		return false
	}
	if opts.ExcludeArchived && m.IsArchived {
		return false
	}
	if opts.ExcludeMuted && m.IsMuted {
		return false
	}
	return true
}
