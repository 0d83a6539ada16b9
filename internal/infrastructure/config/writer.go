package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	urlutil "github.com/bnema/deskview/internal/domain/url"
)

// fileConfig is the on-disk form of Config. Durations are written as
// strings so the file stays readable and decodes through Load.
type fileConfig struct {
	Logging  LoggingConfig  `toml:"logging"`
	Database DatabaseConfig `toml:"database"`
	Views    fileViews      `toml:"views"`
	Servers  []ServerEntry  `toml:"servers"`
}

type fileViews struct {
	RetryInterval        string `toml:"retry_interval"`
	MaxRetries           int    `toml:"max_retries"`
	LoadingScreenTimeout string `toml:"loading_screen_timeout"`
	ProbeInterval        string `toml:"probe_interval"`
	MinimumServerVersion string `toml:"minimum_server_version"`
	UserAgent            string `toml:"user_agent,omitempty"`
}

func toFileConfig(cfg *Config) fileConfig {
	return fileConfig{
		Logging:  cfg.Logging,
		Database: cfg.Database,
		Views: fileViews{
			RetryInterval:        cfg.Views.RetryInterval.String(),
			MaxRetries:           cfg.Views.MaxRetries,
			LoadingScreenTimeout: cfg.Views.LoadingScreenTimeout.String(),
			ProbeInterval:        cfg.Views.ProbeInterval.String(),
			MinimumServerVersion: cfg.Views.MinimumServerVersion,
			UserAgent:            cfg.Views.UserAgent,
		},
		Servers: cfg.Servers,
	}
}

// WriteConfigOrdered writes the configuration to path with fields in
// definition order. The file is replaced atomically.
func WriteConfigOrdered(cfg *Config, path string) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(toFileConfig(cfg)); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// UpdateServers applies fn to the server entries and writes the result to
// the config file. Nothing is written when the result does not validate.
// Callbacks are notified as for a reload.
func (m *Manager) UpdateServers(fn func([]ServerEntry) ([]ServerEntry, error)) error {
	m.mu.Lock()
	if m.config == nil {
		m.mu.Unlock()
		return errors.New("configuration not loaded")
	}

	next := m.config.clone()
	servers, err := fn(next.Servers)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	next.Servers = servers
	normalizeConfig(next)
	if err := validateConfig(next); err != nil {
		m.mu.Unlock()
		return err
	}

	path := m.viper.ConfigFileUsed()
	if path == "" {
		if path, err = m.targetFile(); err != nil {
			m.mu.Unlock()
			return err
		}
	}
	if err := WriteConfigOrdered(stripDerived(next), path); err != nil {
		m.mu.Unlock()
		return err
	}
	if err := m.reload(); err != nil {
		m.mu.Unlock()
		return err
	}
	m.notifyCallbacksLocked()
	return nil
}

// stripDerived clears values that Load fills in from XDG paths, so the
// written file keeps following them.
func stripDerived(cfg *Config) *Config {
	out := cfg.clone()
	if dbPath, err := GetDatabaseFile(); err == nil && out.Database.Path == dbPath {
		out.Database.Path = ""
	}
	if out.Logging.LogDir == getDefaultLogDir() {
		out.Logging.LogDir = ""
	}
	return out
}

// AddServerEntry appends entry. Names are unique and so are URLs once
// normalized.
func AddServerEntry(entries []ServerEntry, entry ServerEntry) ([]ServerEntry, error) {
	entry.Name = strings.TrimSpace(entry.Name)
	parsed, err := urlutil.ParseServerURL(entry.URL)
	if err != nil {
		return nil, fmt.Errorf("server %q: %w", entry.Name, err)
	}
	for _, e := range entries {
		if e.Name == entry.Name {
			return nil, fmt.Errorf("a server named %q already exists", entry.Name)
		}
		if other, err := urlutil.ParseServerURL(e.URL); err == nil && other.String() == parsed.String() {
			return nil, fmt.Errorf("%s is already configured as %q", parsed, e.Name)
		}
	}
	if entry.Order == 0 {
		for _, e := range entries {
			entry.Order = max(entry.Order, e.Order+1)
		}
		entry.Order = max(entry.Order, len(entries))
	}
	return append(entries, entry), nil
}

// RemoveServerEntry drops the server called name.
func RemoveServerEntry(entries []ServerEntry, name string) ([]ServerEntry, error) {
	for i, e := range entries {
		if e.Name == name {
			return append(entries[:i:i], entries[i+1:]...), nil
		}
	}
	return nil, fmt.Errorf("no server named %q", name)
}
