// Package config loads and validates settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds settings shared by every command. CLI flags override them.
type Config struct {
	FPS        int           // tick rate for playback
	Catalog    string        // default motion catalog path
	DBPath     string        // SQLite library and journal; empty disables journaling
	LogLevel   string        // debug, info, warn or error
	DrillPause time.Duration // pause between unbounded drill passes
	Mirror     bool          // play as player 2
}

// Load reads configuration from the environment. Malformed values are
// reported together rather than silently replaced by defaults.
func Load() (Config, error) {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var (
		cfg Config
		err error
	)
	cfg.FPS, err = envInt("SCONE_FPS", 60)
	collect(err)
	cfg.Catalog = envStr("SCONE_CATALOG", "")
	cfg.DBPath = envStr("SCONE_DB", "")
	cfg.LogLevel = envStr("SCONE_LOG_LEVEL", "info")
	cfg.DrillPause, err = envDuration("SCONE_DRILL_PAUSE", time.Second)
	collect(err)
	cfg.Mirror, err = envBool("SCONE_MIRROR", false)
	collect(err)

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.FPS < 1 {
		errs = append(errs, fmt.Errorf("SCONE_FPS must be at least 1, got %d", c.FPS))
	}
	if c.DrillPause < 0 {
		errs = append(errs, fmt.Errorf("SCONE_DRILL_PAUSE must not be negative, got %s", c.DrillPause))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("SCONE_LOG_LEVEL=%q is not a valid level", s)
	}
	return level, nil
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid integer", key, v)
	}
	return n, nil
}

func envDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid duration", key, v)
	}
	return d, nil
}

func envBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s=%q is not a valid boolean", key, v)
	}
	return b, nil
}
