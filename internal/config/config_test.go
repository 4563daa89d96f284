package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledblinker.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFullFile(t *testing.T) {
	path := writeConfig(t, `
led_path: /sys/class/leds/input5::scrolllock/brightness
blink_interval: 250ms
status_addr: 127.0.0.1:9090
debug: true
beeper:
  url: http://localhost:9999
  interval: 10s
  max_age_days: 3
  exclude_archived: false
  exclude_muted: true
notify:
  filters:
    - "(?i)urgent"
    - "alice"
  case_insensitive: true
  interval: 7s
`)

	f, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/sys/class/leds/input5::scrolllock/brightness", f.LedPath)
	require.NotNil(t, f.BlinkInterval)
	assert.Equal(t, 250*time.Millisecond, f.BlinkInterval.Std())
	assert.Equal(t, "127.0.0.1:9090", f.StatusAddr)
	require.NotNil(t, f.Debug)
	assert.True(t, *f.Debug)

	require.NotNil(t, f.Beeper)
	assert.Equal(t, "http://localhost:9999", f.Beeper.URL)
	require.NotNil(t, f.Beeper.Interval)
	assert.Equal(t, 10*time.Second, f.Beeper.Interval.Std())
	require.NotNil(t, f.Beeper.MaxAgeDays)
	assert.Equal(t, 3, *f.Beeper.MaxAgeDays)
	require.NotNil(t, f.Beeper.ExcludeArchived)
	assert.False(t, *f.Beeper.ExcludeArchived)
	require.NotNil(t, f.Beeper.ExcludeMuted)
	assert.True(t, *f.Beeper.ExcludeMuted)

	require.NotNil(t, f.Notify)
	assert.Equal(t, []string{"(?i)urgent", "alice"}, f.Notify.Filters)
	require.NotNil(t, f.Notify.CaseInsensitive)
	assert.True(t, *f.Notify.CaseInsensitive)
	require.NotNil(t, f.Notify.Interval)
	assert.Equal(t, 7*time.Second, f.Notify.Interval.Std())
}

func TestLoadPartialFile(t *testing.T) {
	path := writeConfig(t, "led_path: /tmp/led\n")

	f, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/led", f.LedPath)
	assert.Nil(t, f.BlinkInterval)
	assert.Nil(t, f.Debug)
	assert.Nil(t, f.Beeper)
	assert.Nil(t, f.Notify)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoadBadYAML(t *testing.T) {
	path := writeConfig(t, "led_path: [unclosed\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadBadDuration(t *testing.T) {
	path := writeConfig(t, "blink_interval: fast\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "zero blink interval",
			content: "blink_interval: 0s\n",
			wantErr: "blink_interval must be positive",
		},
		{
			name:    "negative max age",
			content: "beeper:\n  max_age_days: -1\n",
			wantErr: "max_age_days must be >= 0",
		},
		{
			name:    "zero beeper interval",
			content: "beeper:\n  interval: 0s\n",
			wantErr: "beeper.interval must be positive",
		},
		{
			name:    "zero notify interval",
			content: "notify:\n  interval: 0s\n",
			wantErr: "notify.interval must be positive",
		},
		{
			name:    "empty filter pattern",
			content: "notify:\n  filters:\n    - \"\"\n",
			wantErr: "empty patterns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
