// Package config loads the small amount of ambient configuration this
// module needs: watchdog timeout, permissive-decode mode, and the
// logging level. It is deliberately thin — the business logic lives
// in hdlc and ax25, not here.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape, loaded with yaml.v3.
type Config struct {
	// Permissive, when true, delivers frames with a bad FCS instead of
	// dropping them and replaces non-printable callsign characters
	// with '?'.
	Permissive bool `yaml:"permissive"`

	// WatchdogTimeout is how long the framer waits in HUNT/FRAMING
	// before forcing a resync to SEARCH. Zero means use
	// hdlc.DefaultTimeout.
	WatchdogTimeout Duration `yaml:"watchdog_timeout"`

	// LogLevel is one of charmbracelet/log's level names: "debug",
	// "info", "warn", "error".
	LogLevel string `yaml:"log_level"`
}

// Duration wraps time.Duration so it can be written in a config file
// as "5s" rather than a raw integer nanosecond count.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string ("5s", "2m30s", ...).
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Permissive:      false,
		WatchdogTimeout: 0,
		LogLevel:        "info",
	}
}

// Load reads and parses a YAML config file at path, starting from
// Default and overwriting only the fields the file sets.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %q: %w", path, err)
	}

	return cfg, nil
}
