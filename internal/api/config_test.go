package api

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfig_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_LayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("listen_addr: \":9999\"\ndefault_horizon_seconds: 7200\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ListenAddr != ":9999" {
		t.Errorf("listen_addr = %q, want :9999", cfg.ListenAddr)
	}
	if cfg.DefaultHorizonSeconds != 7200 {
		t.Errorf("default_horizon_seconds = %v, want 7200", cfg.DefaultHorizonSeconds)
	}
	// Untouched fields keep their defaults.
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("metrics_addr = %q, want default :9090", cfg.MetricsAddr)
	}
	if cfg.TickSeconds != 1 {
		t.Errorf("tick_seconds = %v, want default 1", cfg.TickSeconds)
	}
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("default_horizon_seconds: -10\ntick_seconds: 0\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DefaultHorizonSeconds != 3600 {
		t.Errorf("default_horizon_seconds = %v, want fallback 3600", cfg.DefaultHorizonSeconds)
	}
	if cfg.TickSeconds != 1 {
		t.Errorf("tick_seconds = %v, want fallback 1", cfg.TickSeconds)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: [oops\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for malformed YAML")
	}
}
