package port

import "github.com/bnema/deskview/internal/domain/entity"

// ServerConfigSource is the read-only configuration store for servers.
type ServerConfigSource interface {
	// Servers returns the current snapshot.
	Servers() []entity.ServerConfig
	// OnServersChanged registers fn to receive every new snapshot.
	OnServersChanged(fn func([]entity.ServerConfig))
}
