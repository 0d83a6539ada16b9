package config

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/bnema/deskview/internal/domain/entity"
	urlutil "github.com/bnema/deskview/internal/domain/url"
)

// validateConfig performs comprehensive validation of configuration values
func validateConfig(config *Config) error {
	var validationErrors []string

	validationErrors = append(validationErrors, validateLogging(config)...)
	validationErrors = append(validationErrors, validateViews(config)...)
	validationErrors = append(validationErrors, validateServers(config)...)

	if len(validationErrors) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(validationErrors, "\n  - "))
	}

	return nil
}

func validateLogging(config *Config) []string {
	var validationErrors []string
	if config.Logging.MaxAge < 0 {
		validationErrors = append(validationErrors, "logging.max_age must be non-negative")
	}
	switch config.Logging.Level {
	case "trace", "debug", "info", "warn", "error", "fatal", "":
	default:
		validationErrors = append(validationErrors, fmt.Sprintf(
			"logging.level must be one of: trace, debug, info, warn, error, fatal (got: %s)",
			config.Logging.Level,
		))
	}
	switch config.Logging.Format {
	case "text", "json", "console", "":
	default:
		validationErrors = append(validationErrors, fmt.Sprintf(
			"logging.format must be one of: text, json, console (got: %s)",
			config.Logging.Format,
		))
	}
	return validationErrors
}

func validateViews(config *Config) []string {
	var validationErrors []string
	v := config.Views
	if v.RetryInterval <= 0 {
		validationErrors = append(validationErrors, "views.retry_interval must be positive")
	}
	if v.MaxRetries < 1 {
		validationErrors = append(validationErrors, "views.max_retries must be at least 1")
	}
	if v.LoadingScreenTimeout <= 0 {
		validationErrors = append(validationErrors, "views.loading_screen_timeout must be positive")
	}
	if v.ProbeInterval <= v.RetryInterval {
		validationErrors = append(validationErrors, fmt.Sprintf(
			"views.probe_interval (%s) must be longer than views.retry_interval (%s)",
			v.ProbeInterval, v.RetryInterval,
		))
	}
	if v.MinimumServerVersion != "" {
		if _, err := version.NewVersion(v.MinimumServerVersion); err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf(
				"views.minimum_server_version is not a version: %s", v.MinimumServerVersion,
			))
		}
	}
	return validationErrors
}

func validateServers(config *Config) []string {
	var validationErrors []string
	names := make(map[string]bool, len(config.Servers))
	urls := make(map[string]bool, len(config.Servers))

	for i, srv := range config.Servers {
		prefix := fmt.Sprintf("servers[%d]", i)
		if strings.TrimSpace(srv.Name) == "" {
			validationErrors = append(validationErrors, prefix+".name cannot be empty")
		} else if names[srv.Name] {
			validationErrors = append(validationErrors, fmt.Sprintf("%s.name %q is used twice", prefix, srv.Name))
		}
		names[srv.Name] = true

		if parsed, err := urlutil.ParseServerURL(srv.URL); err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("%s.url %q: %v", prefix, srv.URL, err))
		} else {
			if urls[parsed.String()] {
				validationErrors = append(validationErrors, fmt.Sprintf("%s.url %q is used twice", prefix, srv.URL))
			}
			urls[parsed.String()] = true
		}

		if srv.Order < 0 {
			validationErrors = append(validationErrors, prefix+".order must be non-negative")
		}

		kinds := make(map[entity.TabKind]bool, len(srv.Tabs))
		for j, tab := range srv.Tabs {
			kind, err := entity.ParseTabKind(tab.Kind)
			if err != nil {
				validationErrors = append(validationErrors, fmt.Sprintf("%s.tabs[%d]: %v", prefix, j, err))
				continue
			}
			if kinds[kind] {
				validationErrors = append(validationErrors, fmt.Sprintf("%s.tabs[%d]: kind %s listed twice", prefix, j, kind))
			}
			kinds[kind] = true
		}
	}
	return validationErrors
}
