// Package config loads the optional YAML config file shared by the
// beeperled and notifyled daemons. Every field is optional: a setting
// left out of the file falls back to the flag, environment, or builtin
// value. The API token is deliberately absent; it comes from the
// environment or a flag only.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings such as
// "500ms" or "5s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// File represents the top-level YAML configuration
type File struct {
	LedPath       string    `yaml:"led_path,omitempty"`
	BlinkInterval *Duration `yaml:"blink_interval,omitempty"`
	StatusAddr    string    `yaml:"status_addr,omitempty"`
	Debug         *bool     `yaml:"debug,omitempty"`

	Beeper *BeeperSection `yaml:"beeper,omitempty"`
	Notify *NotifySection `yaml:"notify,omitempty"`
}

// BeeperSection configures the beeperled daemon
type BeeperSection struct {
	URL             string    `yaml:"url,omitempty"`
	Interval        *Duration `yaml:"interval,omitempty"`
	MaxAgeDays      *int      `yaml:"max_age_days,omitempty"`
	ExcludeArchived *bool     `yaml:"exclude_archived,omitempty"`
	ExcludeMuted    *bool     `yaml:"exclude_muted,omitempty"`
}

// NotifySection configures the notifyled daemon
type NotifySection struct {
	Filters         []string  `yaml:"filters,omitempty"`
	CaseInsensitive *bool     `yaml:"case_insensitive,omitempty"`
	Interval        *Duration `yaml:"interval,omitempty"`
}

// Validate performs strict validation on the configuration
func (f *File) Validate() error {
	if f.BlinkInterval != nil && f.BlinkInterval.Std() <= 0 {
		return fmt.Errorf("blink_interval must be positive")
	}
	if f.Beeper != nil {
		if f.Beeper.Interval != nil && f.Beeper.Interval.Std() <= 0 {
			return fmt.Errorf("beeper.interval must be positive")
		}
		if f.Beeper.MaxAgeDays != nil && *f.Beeper.MaxAgeDays < 0 {
			return fmt.Errorf("beeper.max_age_days must be >= 0 (0 = all history), got %d", *f.Beeper.MaxAgeDays)
		}
	}
	if f.Notify != nil {
		if f.Notify.Interval != nil && f.Notify.Interval.Std() <= 0 {
			return fmt.Errorf("notify.interval must be positive")
		}
		for _, p := range f.Notify.Filters {
			if p == "" {
				return fmt.Errorf("notify.filters must not contain empty patterns")
			}
		}
	}
	return nil
}

// Load reads and validates the YAML config from the specified path
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &f, nil
}
