package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Config holds the CLI's runtime settings.
type Config struct {
	DBPath      string       `yaml:"db"`
	Schedule    string       `yaml:"schedule"`     // default --schedule value
	LogLevel    string       `yaml:"log"`          // "", "debug", "info", "warn", "error"
	LogFormat   string       `yaml:"log_format"`   // "text" or "json"
	MetricsFile string       `yaml:"metrics_file"` // node-exporter textfile; empty disables
	NamePattern string       `yaml:"name_pattern"`
	Cycle       CycleDefault `yaml:"cycle"`
}

// CycleDefault seeds `schedule create` when flags are omitted.
type CycleDefault struct {
	SlotCount          int     `yaml:"slot_count"`
	SlotsPerSecond     float64 `yaml:"slots_per_second"`
	TotalCapacityBytes int     `yaml:"total_capacity_bytes"`
}

// DefaultDir is where the database and config file live unless overridden.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cadence"
	}
	return filepath.Join(home, ".cadence")
}

// DefaultPath is the config file read when no path is given.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// DefaultConfig returns a Config with sensible defaults. Logging is off.
func DefaultConfig() Config {
	return Config{
		DBPath:      filepath.Join(DefaultDir(), "cadence.db"),
		LogFormat:   "text",
		NamePattern: `^[A-Za-z0-9]+$`,
		Cycle: CycleDefault{
			SlotCount:          16,
			SlotsPerSecond:     16,
			TotalCapacityBytes: 4096,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path falls back to CADENCE_CONFIG and then
// DefaultPath; only an explicitly named file must exist.
func Load(fsys afero.Fs, path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		if v := os.Getenv("CADENCE_CONFIG"); v != "" {
			path, explicit = v, true
		} else {
			path = DefaultPath()
		}
	}

	data, err := afero.ReadFile(fsys, path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CADENCE_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("CADENCE_SCHEDULE"); v != "" {
		cfg.Schedule = v
	}
	if v := os.Getenv("CADENCE_LOG"); v != "" {
		// Accept a boolean as shorthand for info-level logging.
		if on, err := strconv.ParseBool(v); err == nil {
			if on {
				cfg.LogLevel = "info"
			} else {
				cfg.LogLevel = ""
			}
		} else {
			cfg.LogLevel = v
		}
	}
	if v := os.Getenv("CADENCE_METRICS_FILE"); v != "" {
		cfg.MetricsFile = v
	}
}

var validLogLevels = map[string]bool{"": true, "debug": true, "info": true, "warn": true, "error": true}

// Validate checks the settings that would otherwise fail later.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("config: db path is required")
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("config: log level %q is invalid", c.LogLevel)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("config: log_format %q is invalid (text or json)", c.LogFormat)
	}
	if _, err := regexp.Compile(c.NamePattern); err != nil {
		return fmt.Errorf("config: name_pattern: %w", err)
	}
	if c.Cycle.SlotCount <= 0 || c.Cycle.SlotsPerSecond <= 0 || c.Cycle.TotalCapacityBytes < 0 {
		return fmt.Errorf("config: cycle defaults must be positive")
	}
	return nil
}

// NameRegexp compiles NamePattern. Validate has already checked it.
func (c Config) NameRegexp() *regexp.Regexp {
	return regexp.MustCompile(c.NamePattern)
}
