package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds all configurable codeclock settings. Durations are expressed
// in seconds in the config file.
type Config struct {
	InactivityTimeoutSec int      `json:"inactivity_timeout_seconds"`
	FocusTimeoutSec      int      `json:"focus_timeout_seconds"`
	FlushIntervalSec     int      `json:"flush_interval_seconds"`
	FlushThresholdSec    int      `json:"flush_threshold_seconds"`
	BranchPollSec        int      `json:"branch_poll_seconds"`
	IgnorePatterns       []string `json:"ignore_patterns"`
	DefaultPeriod        string   `json:"default_period"` // day|week|month|year|all
	LogLevel             string   `json:"log_level"`
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		InactivityTimeoutSec: 150,
		FocusTimeoutSec:      180,
		FlushIntervalSec:     5,
		FlushThresholdSec:    60,
		BranchPollSec:        5,
		IgnorePatterns:       []string{},
		DefaultPeriod:        "week",
		LogLevel:             "info",
	}
}

// LoadGlobal reads ~/.config/codeclock/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "codeclock", "config.json")
	return loadFile(path, true)
}

// LoadProject reads .codeclockconfig in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".codeclockconfig", false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()
	for _, layer := range []*Config{global, project} {
		if layer == nil {
			continue
		}
		if layer.InactivityTimeoutSec > 0 {
			result.InactivityTimeoutSec = layer.InactivityTimeoutSec
		}
		if layer.FocusTimeoutSec > 0 {
			result.FocusTimeoutSec = layer.FocusTimeoutSec
		}
		if layer.FlushIntervalSec > 0 {
			result.FlushIntervalSec = layer.FlushIntervalSec
		}
		if layer.FlushThresholdSec > 0 {
			result.FlushThresholdSec = layer.FlushThresholdSec
		}
		if layer.BranchPollSec > 0 {
			result.BranchPollSec = layer.BranchPollSec
		}
		if len(layer.IgnorePatterns) > 0 {
			result.IgnorePatterns = layer.IgnorePatterns
		}
		if layer.DefaultPeriod != "" {
			result.DefaultPeriod = layer.DefaultPeriod
		}
		if layer.LogLevel != "" {
			result.LogLevel = layer.LogLevel
		}
	}
	return result
}

// Validate checks the merged config against the tracker's accepted ranges,
// so a bad file is reported at startup instead of surfacing as a tracker
// construction error.
func (c Config) Validate() error {
	check := func(name string, v, lo, hi int) error {
		if v < lo || v > hi {
			return fmt.Errorf("%s is %d, want between %d and %d", name, v, lo, hi)
		}
		return nil
	}
	if err := check("inactivity_timeout_seconds", c.InactivityTimeoutSec, 30, 7200); err != nil {
		return err
	}
	if err := check("focus_timeout_seconds", c.FocusTimeoutSec, 30, 7200); err != nil {
		return err
	}
	if err := check("flush_interval_seconds", c.FlushIntervalSec, 1, 300); err != nil {
		return err
	}
	if err := check("flush_threshold_seconds", c.FlushThresholdSec, 5, 1800); err != nil {
		return err
	}
	if err := check("branch_poll_seconds", c.BranchPollSec, 1, 300); err != nil {
		return err
	}
	switch c.DefaultPeriod {
	case "day", "week", "month", "year", "all":
	default:
		return fmt.Errorf("default_period is %q, want day, week, month, year or all", c.DefaultPeriod)
	}
	return nil
}

// Duration accessors for wiring the tracker and collector.

func (c Config) InactivityTimeout() time.Duration {
	return time.Duration(c.InactivityTimeoutSec) * time.Second
}

func (c Config) FocusTimeout() time.Duration {
	return time.Duration(c.FocusTimeoutSec) * time.Second
}

func (c Config) FlushInterval() time.Duration {
	return time.Duration(c.FlushIntervalSec) * time.Second
}

func (c Config) FlushThreshold() time.Duration {
	return time.Duration(c.FlushThresholdSec) * time.Second
}

func (c Config) BranchPollInterval() time.Duration {
	return time.Duration(c.BranchPollSec) * time.Second
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
