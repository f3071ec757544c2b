package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestEnsureFileWritesParsableDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	created, err := EnsureFile(path)
	if err != nil || !created {
		t.Fatalf("EnsureFile() = %v, %v", created, err)
	}
	created, err = EnsureFile(path)
	if err != nil || created {
		t.Fatalf("second EnsureFile() = %v, %v", created, err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != Default() {
		t.Errorf("default file parsed as %+v, want %+v", cfg, Default())
	}
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "stuck:\n  threshold: 5\n  reset_on_keep: true\nai:\n  base_url: https://ai.example.test/v1/\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	policy := cfg.StuckPolicy()
	if policy.Threshold != 5 || !policy.ResetOnKeep || policy.ResetOnDefer {
		t.Errorf("StuckPolicy() = %+v", policy)
	}
	if cfg.AI.BaseURL != "https://ai.example.test/v1" {
		t.Errorf("BaseURL = %q, trailing slash should be trimmed", cfg.AI.BaseURL)
	}
	if cfg.AI.Model != Default().AI.Model || cfg.Planning.DefaultMinutes != Default().Planning.DefaultMinutes {
		t.Errorf("unset fields should keep defaults: %+v", cfg)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "ai: [", "parse"},
		{"bad url", "ai:\n  base_url: ftp://x\n", "base_url"},
		{"negative threshold", "stuck:\n  threshold: -1\n", "threshold"},
		{"huge budget", "planning:\n  default_minutes: 5000\n", "default_minutes"},
		{"bad log level", "log:\n  level: loud\n", "log.level"},
		{"negative log size", "log:\n  max_size_mb: -1\n", "max_size_mb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Planning.DefaultMinutes = 90
	cfg.Stuck.ResetOnDefer = true

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != cfg {
		t.Errorf("Load() = %+v, want %+v", got, cfg)
	}
}
