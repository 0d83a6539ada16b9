package bootstrap

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/bnema/deskview/internal/infrastructure/config"
	"github.com/bnema/deskview/internal/logging"
)

const (
	logMaxSizeMB  = 10
	logMaxBackups = 5
	logDirPerm    = 0o755
)

// NewLogger builds the process logger from the logging section. When file
// logging is enabled records are also written to a rotated file in LogDir.
// The returned cleanup closes that file.
func NewLogger(cfg config.LoggingConfig) (zerolog.Logger, func(), error) {
	lc := logging.DefaultConfig()
	lc.Level = logging.ParseLevel(cfg.Level)
	if cfg.Format != "" {
		lc.Format = cfg.Format
	}
	lc.TimeFormat = "15:04:05"

	cleanup := func() {}
	if cfg.EnableFileLog && cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, logDirPerm); err != nil {
			return zerolog.Nop(), cleanup, fmt.Errorf("create log dir: %w", err)
		}
		rotator, err := logging.NewLogRotator(cfg.LogDir, logMaxSizeMB, logMaxBackups, cfg.MaxAge, true)
		if err != nil {
			return zerolog.Nop(), cleanup, err
		}
		lc.File = rotator
		cleanup = func() { _ = rotator.Close() }
	}
	return logging.New(lc), cleanup, nil
}
