package config

import (
	"reflect"
	"sync"

	"github.com/bnema/deskview/internal/domain/entity"
)

// ServerSource exposes the server list of a Manager as a
// port.ServerConfigSource. Callbacks only fire when a reload changed the
// servers themselves.
type ServerSource struct {
	manager *Manager

	mu   sync.Mutex
	last []entity.ServerConfig
}

// NewServerSource wraps a loaded manager.
func NewServerSource(manager *Manager) *ServerSource {
	return &ServerSource{
		manager: manager,
		last:    manager.ServerConfigs(),
	}
}

// Servers returns the current snapshot.
func (s *ServerSource) Servers() []entity.ServerConfig {
	return s.manager.ServerConfigs()
}

// OnServersChanged registers fn to receive every changed snapshot.
func (s *ServerSource) OnServersChanged(fn func([]entity.ServerConfig)) {
	s.manager.OnConfigChange(func(cfg *Config) {
		next := cfg.ServerConfigs()
		if !s.swap(next) {
			return
		}
		fn(next)
	})
}

// swap records next and reports whether it differs from the previous snapshot.
func (s *ServerSource) swap(next []entity.ServerConfig) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reflect.DeepEqual(s.last, next) {
		return false
	}
	s.last = next
	return true
}
