package monitor

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusResponseJSONShape(t *testing.T) {
	tracked, matching := 3, 1
	stream := statusResponse{
		ObservedAt:        time.Date(2024, 6, 3, 15, 4, 5, 0, time.UTC),
		Mode:              "notifications",
		Blinking:          true,
		UpstreamAvailable: true,
		Tracked:           &tracked,
		Matching:          &matching,
		LastChecked:       "2024-06-03T15:04:00Z",
	}
	b, err := json.Marshal(stream)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(b, &fields))
	assert.Equal(t, "notifications", fields["mode"])
	assert.Contains(t, fields, "observed_at")
	assert.Contains(t, fields, "tracked")
	assert.Contains(t, fields, "matching")
	assert.NotContains(t, fields, "last_unread")

	unread := 0
	poll := statusResponse{
		ObservedAt: time.Now(),
		Mode:       "beeper",
		LastUnread: &unread,
	}
	b, err = json.Marshal(poll)
	require.NoError(t, err)

	fields = map[string]any{}
	require.NoError(t, json.Unmarshal(b, &fields))
	assert.Contains(t, fields, "last_unread", "a zero count is still reported")
	assert.NotContains(t, fields, "tracked")
	assert.NotContains(t, fields, "last_checked")
}

func TestStatusHandler(t *testing.T) {
	met := newMetrics()
	met.blinking.Set(1)

	unread := 7
	snap := func(now time.Time) statusResponse {
		return statusResponse{
			ObservedAt:        now,
			Mode:              "beeper",
			Blinking:          true,
			UpstreamAvailable: true,
			LastUnread:        &unread,
		}
	}

	srv := httptest.NewServer(statusHandler(discardLogger(), met, snap))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got statusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "beeper", got.Mode)
	assert.True(t, got.Blinking)
	require.NotNil(t, got.LastUnread)
	assert.Equal(t, 7, *got.LastUnread)

	metricsResp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	assert.Equal(t, http.StatusOK, metricsResp.StatusCode)
	body, err := io.ReadAll(metricsResp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ledblinker_blinking 1")

	notFound, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	defer notFound.Body.Close()
	assert.Equal(t, http.StatusNotFound, notFound.StatusCode)
}
