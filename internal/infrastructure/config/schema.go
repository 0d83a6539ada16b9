package config

import "time"

// Config represents the complete configuration for deskview.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging" toml:"logging" json:"logging"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database" toml:"database" json:"database"`
	// Views holds the timings of the per-tab load state machine.
	Views ViewsConfig `mapstructure:"views" yaml:"views" toml:"views" json:"views"`
	// Servers is the configured server list, in display order.
	Servers []ServerEntry `mapstructure:"servers" yaml:"servers" toml:"servers" json:"servers"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" toml:"level" json:"level" jsonschema:"enum=trace,enum=debug,enum=info,enum=warn,enum=error,enum=fatal"`
	Format string `mapstructure:"format" yaml:"format" toml:"format" json:"format" jsonschema:"enum=text,enum=json,enum=console"`
	MaxAge int    `mapstructure:"max_age" yaml:"max_age" toml:"max_age" json:"max_age" jsonschema:"minimum=0"`

	// File output configuration
	LogDir        string `mapstructure:"log_dir" yaml:"log_dir" toml:"log_dir,omitempty" json:"log_dir,omitempty"`
	EnableFileLog bool   `mapstructure:"enable_file_log" yaml:"enable_file_log" toml:"enable_file_log" json:"enable_file_log"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	// Path is set to the XDG data file when empty.
	Path string `mapstructure:"path" yaml:"path" toml:"path,omitempty" json:"path,omitempty"`
}

// ViewsConfig controls retries, the loading screen fallback and background
// probing of unreachable servers.
type ViewsConfig struct {
	RetryInterval        time.Duration `mapstructure:"retry_interval" yaml:"retry_interval" toml:"retry_interval" json:"retry_interval"`
	MaxRetries           int           `mapstructure:"max_retries" yaml:"max_retries" toml:"max_retries" json:"max_retries" jsonschema:"minimum=1"`
	LoadingScreenTimeout time.Duration `mapstructure:"loading_screen_timeout" yaml:"loading_screen_timeout" toml:"loading_screen_timeout" json:"loading_screen_timeout"`
	// ProbeInterval must be longer than RetryInterval.
	ProbeInterval        time.Duration `mapstructure:"probe_interval" yaml:"probe_interval" toml:"probe_interval" json:"probe_interval"`
	MinimumServerVersion string        `mapstructure:"minimum_server_version" yaml:"minimum_server_version" toml:"minimum_server_version" json:"minimum_server_version"`
	UserAgent            string        `mapstructure:"user_agent" yaml:"user_agent" toml:"user_agent,omitempty" json:"user_agent,omitempty"`
}

// ServerEntry is one configured server.
type ServerEntry struct {
	Name       string     `mapstructure:"name" yaml:"name" toml:"name" json:"name" jsonschema:"required"`
	URL        string     `mapstructure:"url" yaml:"url" toml:"url" json:"url" jsonschema:"required,format=uri"`
	Order      int        `mapstructure:"order" yaml:"order" toml:"order,omitempty" json:"order,omitempty"`
	Predefined bool       `mapstructure:"predefined" yaml:"predefined" toml:"predefined,omitempty" json:"predefined,omitempty"`
	Tabs       []TabEntry `mapstructure:"tabs" yaml:"tabs" toml:"tabs,omitempty" json:"tabs,omitempty"`
}

// TabEntry overrides the default state of one tab kind.
type TabEntry struct {
	Kind  string `mapstructure:"kind" yaml:"kind" toml:"kind" json:"kind" jsonschema:"enum=messaging,enum=playbooks,enum=boards"`
	Order int    `mapstructure:"order" yaml:"order" toml:"order" json:"order"`
	Open  bool   `mapstructure:"open" yaml:"open" toml:"open" json:"open"`
}
