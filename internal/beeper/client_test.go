package beeper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveItems(t *testing.T, items []Message) (*httptest.Server, *url.Values) {
	t.Helper()
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		if err := json.NewEncoder(w).Encode(searchResponse{Items: items}); err != nil {
			t.Errorf("encoding response: %v", err)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestUnreadCountQuery(t *testing.T) {
	var (
		gotPath  string
		gotQuery url.Values
		gotAuth  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer srv.Close()

	c := Client{BaseURL: srv.URL, Token: "secret", Client: srv.Client()}
	_, err := c.UnreadCount(context.Background(), CountOptions{
		MaxAgeDays:      7,
		ExcludeArchived: true,
		ExcludeMuted:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, "/v0/search-messages", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "true", gotQuery.Get("unreadOnly"))
	assert.Equal(t, "500", gotQuery.Get("limit"))
	assert.Equal(t, "true", gotQuery.Get("excludeArchived"))
	assert.Equal(t, "true", gotQuery.Get("excludeMuted"))

	after, err := time.Parse(afterFormat, gotQuery.Get("after"))
	require.NoError(t, err, "after must be RFC 3339 in whole seconds")
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, -7), after, time.Minute)
}

func TestUnreadCountAgeCutoff(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return now }
	defer func() { timeNow = time.Now }()

	// the server ignores the after parameter and returns a stale
	// message anyway; the client must not count it
	srv, _ := serveItems(t, []Message{
		{ID: "fresh", Title: "alice", Timestamp: now.Add(-time.Hour), IsUnread: true},
		{ID: "stale", Title: "bob", Timestamp: now.AddDate(0, 0, -10), IsUnread: true},
	})

	c := Client{BaseURL: srv.URL, Token: "t", Client: srv.Client()}
	n, err := c.UnreadCount(context.Background(), CountOptions{MaxAgeDays: 7})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUnreadCountNoCutoff(t *testing.T) {
	srv, got := serveItems(t, []Message{
		{ID: "old", Timestamp: time.Now().AddDate(-1, 0, 0), IsUnread: true},
		{ID: "new", Timestamp: time.Now(), IsUnread: true},
	})

	c := Client{BaseURL: srv.URL, Token: "t", Client: srv.Client()}
	n, err := c.UnreadCount(context.Background(), CountOptions{MaxAgeDays: 0})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.False(t, got.Has("after"), "no cutoff means no after parameter")
}

func TestUnreadCountRefilters(t *testing.T) {
	items := []Message{
		{ID: "a", IsUnread: true},
		{ID: "b", IsUnread: false},
		{ID: "c", IsUnread: true, IsArchived: true},
		{ID: "d", IsUnread: true, IsMuted: true},
	}

	srv, _ := serveItems(t, items)
	c := Client{BaseURL: srv.URL, Token: "t", Client: srv.Client()}

	n, err := c.UnreadCount(context.Background(), CountOptions{
		ExcludeArchived: true,
		ExcludeMuted:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = c.UnreadCount(context.Background(), CountOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, n, "read messages never count, archived and muted do unless excluded")
}

func TestUnreadCountUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	u := srv.URL
	srv.Close()

	c := Client{BaseURL: u, Token: "t"}
	_, err := c.UnreadCount(context.Background(), CountOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestUnreadCountServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := Client{BaseURL: srv.URL, Token: "t", Client: srv.Client()}
	_, err := c.UnreadCount(context.Background(), CountOptions{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable, "an answering server is not unavailable")
	assert.Contains(t, err.Error(), "500")
}

func TestAvailable(t *testing.T) {
	var gotQuery url.Values
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.WriteHeader(status)
	}))

	c := Client{BaseURL: srv.URL, Token: "t", Client: srv.Client()}
	assert.True(t, c.Available(context.Background()))
	assert.Equal(t, "1", gotQuery.Get("limit"))

	status = http.StatusUnauthorized
	assert.False(t, c.Available(context.Background()), "an error status is not ready")

	srv.Close()
	assert.False(t, c.Available(context.Background()))
}
