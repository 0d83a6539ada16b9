package config

import (
	"time"

	"github.com/bnema/deskview/internal/domain/entity"
)

// Default configuration constants
const (
	// Logging defaults
	defaultMaxLogAgeDays = 7 // days

	// View defaults
	defaultRetryInterval        = 10 * time.Second
	defaultMaxRetries           = 3
	defaultLoadingScreenTimeout = 15 * time.Second
	defaultProbeInterval        = 60 * time.Second
)

// getDefaultLogDir returns the default log directory, falls back to empty string on error
func getDefaultLogDir() string {
	logDir, err := GetLogDir()
	if err != nil {
		return ""
	}
	return logDir
}

// DefaultConfig returns the default configuration values for deskview.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:         "info",
			Format:        "text",
			MaxAge:        defaultMaxLogAgeDays,
			LogDir:        getDefaultLogDir(),
			EnableFileLog: false,
		},
		Database: DatabaseConfig{
			// Path is set dynamically in Load()
		},
		Views: ViewsConfig{
			RetryInterval:        defaultRetryInterval,
			MaxRetries:           defaultMaxRetries,
			LoadingScreenTimeout: defaultLoadingScreenTimeout,
			ProbeInterval:        defaultProbeInterval,
			MinimumServerVersion: entity.DefaultMinimumServerVersion,
		},
		Servers: []ServerEntry{},
	}
}
