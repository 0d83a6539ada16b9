package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/bnema/deskview/internal/domain/entity"
)

// Manager handles configuration loading, watching, and reloading.
type Manager struct {
	config    *Config
	viper     *viper.Viper
	mu        sync.RWMutex
	callbacks []func(*Config)
	watching  bool
	// configFile is set when the manager reads an explicit path instead of
	// searching the XDG config directory.
	configFile string
}

// NewManager creates a new configuration manager reading config.toml from
// the XDG config directory or the current directory.
func NewManager() (*Manager, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")

	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config directory: %w\nCheck XDG_CONFIG_HOME environment variable or HOME directory", err)
	}
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Current directory for development

	if err := bindEnv(v); err != nil {
		return nil, err
	}

	return &Manager{
		viper:     v,
		callbacks: make([]func(*Config), 0),
	}, nil
}

// NewManagerForFile creates a configuration manager bound to one file.
// A missing file is created with the defaults on Load.
func NewManagerForFile(path string) (*Manager, error) {
	if path == "" {
		return nil, errors.New("config file path is empty")
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := bindEnv(v); err != nil {
		return nil, err
	}

	return &Manager{
		viper:      v,
		callbacks:  make([]func(*Config), 0),
		configFile: path,
	}, nil
}

func bindEnv(v *viper.Viper) error {
	// DESKVIEW_VIEWS_RETRY_INTERVAL, DESKVIEW_DATABASE_PATH, ...
	v.SetEnvPrefix("DESKVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("logging.level", "DESKVIEW_LOG_LEVEL"); err != nil {
		return fmt.Errorf("failed to bind DESKVIEW_LOG_LEVEL: %w", err)
	}
	if err := v.BindEnv("logging.format", "DESKVIEW_LOG_FORMAT"); err != nil {
		return fmt.Errorf("failed to bind DESKVIEW_LOG_FORMAT: %w", err)
	}
	return nil
}

// Load loads the configuration from file and environment variables.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.configFile == "" {
		if err := EnsureDirectories(); err != nil {
			return fmt.Errorf("failed to ensure directories: %w", err)
		}
	}

	m.setDefaults()

	if err := m.readConfigFile(); err != nil {
		return err
	}

	config, err := m.decode()
	if err != nil {
		return err
	}

	m.config = config
	return nil
}

func (m *Manager) readConfigFile() error {
	err := m.viper.ReadInConfig()
	if err == nil {
		return nil
	}

	var configFileNotFoundError viper.ConfigFileNotFoundError
	if !errors.As(err, &configFileNotFoundError) && !errors.Is(err, fs.ErrNotExist) {
		configFile := m.viper.ConfigFileUsed()
		if configFile == "" {
			configFile, _ = m.targetFile()
		}
		return fmt.Errorf("failed to read config file at %s: %w\nCheck the file format (must be valid TOML) and permissions", configFile, err)
	}

	if createErr := m.createDefaultConfig(); createErr != nil {
		target, _ := m.targetFile()
		return fmt.Errorf(
			"failed to create default config at %s: %w\nTry creating the directory manually or check permissions",
			target,
			createErr,
		)
	}
	if rereadErr := m.viper.ReadInConfig(); rereadErr != nil {
		return fmt.Errorf(
			"failed to read newly created config file: %w\nThe config file was created but couldn't be read. Please check the file format",
			rereadErr,
		)
	}
	return nil
}

// decode unmarshals, completes and validates the current viper state.
func (m *Manager) decode() (*Config, error) {
	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf(
			"failed to parse config file at %s: %w\nCheck for syntax errors, invalid values, or type mismatches",
			m.viper.ConfigFileUsed(),
			err,
		)
	}
	if err := ensureDatabasePath(config); err != nil {
		return nil, err
	}
	normalizeConfig(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

func ensureDatabasePath(config *Config) error {
	if config.Database.Path != "" {
		return nil
	}
	dbPath, err := GetDatabaseFile()
	if err != nil {
		return fmt.Errorf("failed to get database path: %w", err)
	}
	config.Database.Path = dbPath
	return nil
}

func normalizeConfig(config *Config) {
	config.Logging.Level = strings.ToLower(strings.TrimSpace(config.Logging.Level))
	config.Logging.Format = strings.ToLower(strings.TrimSpace(config.Logging.Format))
	config.Views.MinimumServerVersion = strings.TrimPrefix(strings.TrimSpace(config.Views.MinimumServerVersion), "v")
	if config.Views.MinimumServerVersion == "" {
		config.Views.MinimumServerVersion = entity.DefaultMinimumServerVersion
	}

	if config.Servers == nil {
		config.Servers = []ServerEntry{}
	}
	for i := range config.Servers {
		srv := &config.Servers[i]
		srv.Name = strings.TrimSpace(srv.Name)
		srv.URL = strings.TrimSpace(srv.URL)
		for j := range srv.Tabs {
			srv.Tabs[j].Kind = strings.ToLower(strings.TrimSpace(srv.Tabs[j].Kind))
		}
	}
}

// Get returns the current configuration (thread-safe).
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return DefaultConfig()
	}
	return m.config.clone()
}

// ServerConfigs returns the configured servers as domain snapshots.
func (m *Manager) ServerConfigs() []entity.ServerConfig {
	return m.Get().ServerConfigs()
}

// ServerConfigs converts the server entries. Entries are validated on load,
// so unknown tab kinds are skipped here.
func (c *Config) ServerConfigs() []entity.ServerConfig {
	out := make([]entity.ServerConfig, 0, len(c.Servers))
	for _, srv := range c.Servers {
		sc := entity.ServerConfig{
			Name:       srv.Name,
			URL:        srv.URL,
			Predefined: srv.Predefined,
			Order:      srv.Order,
		}
		for _, tab := range srv.Tabs {
			kind, err := entity.ParseTabKind(tab.Kind)
			if err != nil {
				continue
			}
			sc.Tabs = append(sc.Tabs, entity.TabConfig{Kind: kind, Order: tab.Order, IsOpen: tab.Open})
		}
		out = append(out, sc)
	}
	return out
}

func (c *Config) clone() *Config {
	out := *c
	out.Servers = make([]ServerEntry, len(c.Servers))
	for i, srv := range c.Servers {
		srv.Tabs = append([]TabEntry(nil), srv.Tabs...)
		out.Servers[i] = srv
	}
	return &out
}

// GetConfigFile returns the path to the configuration file being used.
func (m *Manager) GetConfigFile() string {
	return m.viper.ConfigFileUsed()
}

func (m *Manager) targetFile() (string, error) {
	if m.configFile != "" {
		return m.configFile, nil
	}
	return GetConfigFile()
}

// createDefaultConfig creates a default configuration file.
func (m *Manager) createDefaultConfig() error {
	configFile, err := m.targetFile()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configFile), dirPerm); err != nil {
		return err
	}

	m.viper.SetConfigType("toml")
	if err := m.viper.SafeWriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if m.configFile == "" {
		fmt.Printf("Created default configuration file: %s (TOML format)\n", configFile)
	}

	return nil
}

// setDefaults sets default configuration values in Viper.
func (m *Manager) setDefaults() {
	defaults := DefaultConfig()

	// Note: Database.Path is set dynamically in Load(), no defaults needed

	m.viper.SetDefault("logging.level", defaults.Logging.Level)
	m.viper.SetDefault("logging.format", defaults.Logging.Format)
	m.viper.SetDefault("logging.max_age", defaults.Logging.MaxAge)
	m.viper.SetDefault("logging.log_dir", defaults.Logging.LogDir)
	m.viper.SetDefault("logging.enable_file_log", defaults.Logging.EnableFileLog)

	// Durations are written as strings so the generated file stays readable.
	m.viper.SetDefault("views.retry_interval", defaults.Views.RetryInterval.String())
	m.viper.SetDefault("views.max_retries", defaults.Views.MaxRetries)
	m.viper.SetDefault("views.loading_screen_timeout", defaults.Views.LoadingScreenTimeout.String())
	m.viper.SetDefault("views.probe_interval", defaults.Views.ProbeInterval.String())
	m.viper.SetDefault("views.minimum_server_version", defaults.Views.MinimumServerVersion)
	m.viper.SetDefault("views.user_agent", defaults.Views.UserAgent)
}
