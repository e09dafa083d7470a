package api

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds fleet-server settings, loadable from YAML.
type Config struct {
	ListenAddr   string   `yaml:"listen_addr"`
	MetricsAddr  string   `yaml:"metrics_addr"`
	AllowOrigins []string `yaml:"allow_origins"`

	// DefaultHorizonSeconds bounds conjunction screening when a request
	// does not specify a horizon.
	DefaultHorizonSeconds float64 `yaml:"default_horizon_seconds"`
	// TickSeconds is the simulated time step applied by the tick endpoint
	// when the request does not specify one.
	TickSeconds float64 `yaml:"tick_seconds"`
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() Config {
	return Config{
		ListenAddr:            ":8080",
		MetricsAddr:           ":9090",
		AllowOrigins:          []string{"http://localhost:4200"},
		DefaultHorizonSeconds: 3600,
		TickSeconds:           1,
	}
}

// LoadConfig reads a YAML config file, layering it over the defaults. An
// empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
	}

	if cfg.DefaultHorizonSeconds <= 0 {
		cfg.DefaultHorizonSeconds = 3600
	}
	if cfg.TickSeconds <= 0 {
		cfg.TickSeconds = 1
	}
	return cfg, nil
}
