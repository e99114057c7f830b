package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/vietddude/guardian/internal/connectivity"
	"github.com/vietddude/guardian/internal/errhandling/recovery"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML after expanding environment variables and applies
// defaults.
func Parse(data []byte) (*AppConfig, error) {
	cfg := AppConfig{
		Connectivity: defaultConnectivity(),
	}
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *AppConfig {
	cfg := AppConfig{Connectivity: defaultConnectivity()}
	applyDefaults(&cfg)
	return &cfg
}

// DefaultMemoryRetention applies when no database is configured.
const DefaultMemoryRetention = 7 * 24 * time.Hour

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}

	def := recovery.DefaultConfig()
	if cfg.Recovery.DefaultRetryAfter <= 0 {
		cfg.Recovery.DefaultRetryAfter = def.DefaultRetryAfter
	}
	if cfg.Recovery.MaxRetryAfter <= 0 {
		cfg.Recovery.MaxRetryAfter = def.MaxRetryAfter
	}
	if cfg.Recovery.MaxRetries <= 0 {
		cfg.Recovery.MaxRetries = def.MaxRetries
	}

	if cfg.Connectivity.Interval <= 0 {
		cfg.Connectivity.Interval = 10 * time.Second
	}
	if cfg.Connectivity.Timeout <= 0 {
		cfg.Connectivity.Timeout = 3 * time.Second
	}

	if cfg.API.RefreshPath == "" {
		cfg.API.RefreshPath = "/auth/refresh"
	}
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = 10 * time.Second
	}

	// The in-memory journal cannot keep forever.
	if cfg.Database.URL == "" && cfg.Journal.Retention <= 0 {
		cfg.Journal.Retention = DefaultMemoryRetention
	}
}

// initial_online defaults to true, so it is seeded before decoding.
func defaultConnectivity() connectivity.ProbeConfig {
	return connectivity.ProbeConfig{InitialOnline: true}
}
