// Package config loads ~/.config/nextup/config.yaml. Per-user preferences
// such as energy and timezone live in the database settings table instead.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/nextup/internal/constants"
	"github.com/julianstephens/nextup/internal/stuck"
)

const defaultConfigYAML = `# nextup configuration

# Task parsing and breakdown service (OpenAI-compatible chat endpoint).
# The API key is read from the OS keyring (nextup secret set ai) or NEXTUP_AI_API_KEY.
ai:
  base_url: http://localhost:8787/v1
  model: gpt-4o-mini
  timeout_seconds: 20

# A task skipped this many times in a row while it was "next" is stuck.
stuck:
  threshold: 3
  reset_on_keep: false
  reset_on_defer: false

planning:
  default_minutes: 240

# Log file inside <config dir>/logs unless an absolute path is given.
log:
  file: nextup.log
  level: info
  max_size_mb: 10
  max_backups: 3
`

type AIConfig struct {
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the request timeout.
func (a AIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

type StuckConfig struct {
	Threshold    int  `yaml:"threshold"`
	ResetOnKeep  bool `yaml:"reset_on_keep"`
	ResetOnDefer bool `yaml:"reset_on_defer"`
}

type PlanningConfig struct {
	DefaultMinutes int `yaml:"default_minutes"`
}

type LogConfig struct {
	File       string `yaml:"file"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Config models config.yaml.
type Config struct {
	AI       AIConfig       `yaml:"ai"`
	Stuck    StuckConfig    `yaml:"stuck"`
	Planning PlanningConfig `yaml:"planning"`
	Log      LogConfig      `yaml:"log"`
}

func Default() Config {
	return Config{
		AI: AIConfig{
			BaseURL:        constants.DefaultAIBaseURL,
			Model:          constants.DefaultAIModel,
			TimeoutSeconds: constants.DefaultAITimeoutSeconds,
		},
		Stuck:    StuckConfig{Threshold: constants.DefaultStuckThreshold},
		Planning: PlanningConfig{DefaultMinutes: constants.DefaultBudgetMin},
		Log: LogConfig{
			File:       constants.AppName + ".log",
			Level:      "info",
			MaxSizeMB:  constants.DefaultLogMaxSizeMB,
			MaxBackups: constants.DefaultLogMaxBackups,
		},
	}
}

// StuckPolicy converts the stuck section into a detector policy.
func (c Config) StuckPolicy() stuck.Policy {
	return stuck.Policy{
		Threshold:    c.Stuck.Threshold,
		ResetOnKeep:  c.Stuck.ResetOnKeep,
		ResetOnDefer: c.Stuck.ResetOnDefer,
	}
}

// Path returns config.yaml inside dir.
func Path(dir string) string {
	return filepath.Join(dir, constants.ConfigFileName)
}

// Load reads path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the parent directory.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// EnsureFile writes the commented default config when path does not exist.
// It reports whether a file was created.
func EnsureFile(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return false, fmt.Errorf("config: create dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0600); err != nil {
		return false, fmt.Errorf("config: write %s: %w", path, err)
	}
	return true, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	c.AI.BaseURL = strings.TrimRight(strings.TrimSpace(c.AI.BaseURL), "/")
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = def.AI.BaseURL
	}
	if strings.TrimSpace(c.AI.Model) == "" {
		c.AI.Model = def.AI.Model
	}
	if c.AI.TimeoutSeconds == 0 {
		c.AI.TimeoutSeconds = def.AI.TimeoutSeconds
	}
	if c.Stuck.Threshold == 0 {
		c.Stuck.Threshold = def.Stuck.Threshold
	}
	if c.Planning.DefaultMinutes == 0 {
		c.Planning.DefaultMinutes = def.Planning.DefaultMinutes
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.File == "" {
		c.Log.File = def.Log.File
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = def.Log.MaxSizeMB
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = def.Log.MaxBackups
	}
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.AI.BaseURL, "http://") && !strings.HasPrefix(c.AI.BaseURL, "https://") {
		return fmt.Errorf("ai.base_url must be an http(s) URL, got %q", c.AI.BaseURL)
	}
	if c.AI.TimeoutSeconds < 0 {
		return fmt.Errorf("ai.timeout_seconds must be positive")
	}
	if c.Stuck.Threshold < 1 {
		return fmt.Errorf("stuck.threshold must be at least 1")
	}
	if c.Planning.DefaultMinutes < 1 || c.Planning.DefaultMinutes > constants.MaxEstimatedMinutes {
		return fmt.Errorf("planning.default_minutes must be between 1 and %d", constants.MaxEstimatedMinutes)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 {
		return fmt.Errorf("log.max_size_mb and log.max_backups must not be negative")
	}
	return nil
}
