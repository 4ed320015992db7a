// Package config handles configuration file loading and parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration that can be unmarshaled from human-readable
// strings like "650ms", "1s", "2m", or from integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	// Bare integers are milliseconds.
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '650ms', '1s' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the swaydisplayd configuration.
// Loaded from $XDG_CONFIG_HOME/swaydisplayd/config.toml.
type Config struct {
	Watcher WatcherConfig `toml:"watcher"`
	Kanshi  KanshiConfig  `toml:"kanshi"`
	Log     LogConfig     `toml:"log"`
}

// WatcherConfig controls the compositor change watcher.
type WatcherConfig struct {
	PollInterval Duration `toml:"poll_interval"` // e.g. "650ms" or 650
}

// KanshiConfig controls profile persistence and the kanshi process.
type KanshiConfig struct {
	Dir    string `toml:"dir"`    // Base directory; empty = $XDG_CONFIG_HOME/kanshi
	Reload bool   `toml:"reload"` // Restart kanshi after a persistent apply
}

// LogConfig controls daemon logging.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Watcher: WatcherConfig{
			PollInterval: Duration(650 * time.Millisecond),
		},
		Kanshi: KanshiConfig{
			Dir:    "",
			Reload: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Path returns the default path to the config file.
func Path() string {
	return filepath.Join(xdg.ConfigHome, "swaydisplayd", "config.toml")
}

// Load loads the configuration from the specified path. If path is empty the
// default path is used; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	interval := c.Watcher.PollInterval.Duration()
	if interval < 50*time.Millisecond || interval > time.Minute {
		return fmt.Errorf("poll_interval must be between 50ms and 1m, got %s", interval)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q, must be debug, info, warn or error", c.Log.Level)
	}

	return nil
}

// Save writes the configuration to the specified path, creating parent
// directories as needed. The write goes through a temp file and rename.
func (c *Config) Save(path string) error {
	if path == "" {
		path = Path()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}
