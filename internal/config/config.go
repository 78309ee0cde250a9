package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Settings are the tunables persisted by `queuectl config set`.
// Precedence: compiled defaults, then the settings file, then env.
type Settings struct {
	MaxRetries  int `json:"max_retries" env:"QUEUECTL_MAX_RETRIES"`
	BackoffBase int `json:"backoff_base" env:"QUEUECTL_BACKOFF_BASE"`
	JobTimeout  int `json:"job_timeout" env:"QUEUECTL_JOB_TIMEOUT"`
}

func defaults() Settings {
	return Settings{
		MaxRetries:  5,
		BackoffBase: 3,
		JobTimeout:  300,
	}
}

// Keys accepted by Set, in file order.
var Keys = []string{"max_retries", "backoff_base", "job_timeout"}

type Config struct {
	DataDir string `env:"QUEUECTL_DATA_DIR" envDefault:"."`
}

func Load() (*Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &c, nil
}

func (c *Config) DBPath() string       { return filepath.Join(c.DataDir, "queue.db") }
func (c *Config) SettingsPath() string { return filepath.Join(c.DataDir, "queuectl.json") }
func (c *Config) MarkerPath() string   { return filepath.Join(c.DataDir, "queuectl.pid") }
func (c *Config) LogPath() string      { return filepath.Join(c.DataDir, "worker.log") }

// Settings reads the current settings fresh on every call, so workers
// pick up backoff_base/job_timeout changes without restarting. An
// unreadable or corrupt file falls back to defaults.
func (c *Config) Settings() Settings {
	s := defaults()
	if raw, err := os.ReadFile(c.SettingsPath()); err == nil {
		_ = json.Unmarshal(raw, &s)
	}
	_ = env.Parse(&s)
	return s
}

// Set persists one key to the settings file.
func (c *Config) Set(key string, value int) error {
	s := defaults()
	if raw, err := os.ReadFile(c.SettingsPath()); err == nil {
		_ = json.Unmarshal(raw, &s)
	}
	switch key {
	case "max_retries":
		s.MaxRetries = value
	case "backoff_base":
		s.BackoffBase = value
	case "job_timeout":
		s.JobTimeout = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.SettingsPath(), raw, 0o644)
}

// All returns the effective settings keyed by file name.
func (c *Config) All() map[string]int {
	s := c.Settings()
	return map[string]int{
		"max_retries":  s.MaxRetries,
		"backoff_base": s.BackoffBase,
		"job_timeout":  s.JobTimeout,
	}
}
