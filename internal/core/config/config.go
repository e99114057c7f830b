package config

import (
	"time"

	"github.com/vietddude/guardian/internal/connectivity"
	"github.com/vietddude/guardian/internal/errhandling/recovery"
	"github.com/vietddude/guardian/internal/infra/api"
	redisclient "github.com/vietddude/guardian/internal/infra/redis"
	"github.com/vietddude/guardian/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server       ServerConfig             `yaml:"server"`
	Logging      LoggingConfig            `yaml:"logging"`
	Recovery     recovery.Config          `yaml:"recovery"`
	Connectivity connectivity.ProbeConfig `yaml:"connectivity"`
	API          api.Config               `yaml:"api"`
	Redis        redisclient.Config       `yaml:"redis"`
	Database     postgres.Config          `yaml:"database"`
	Journal      JournalConfig            `yaml:"journal"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// JournalConfig holds incident journal settings.
type JournalConfig struct {
	Retention time.Duration `yaml:"retention"` // 0 = keep forever (postgres only)
}
