package repository

import (
	"context"

	"github.com/bnema/deskview/internal/domain/entity"
)

// NavigationStateRepository persists last-active pointers and tab open flags.
type NavigationStateRepository interface {
	// Load returns the stored state. An empty database yields an empty state.
	Load(ctx context.Context) (*entity.NavigationState, error)

	// SaveLastActive records kind as the active tab of serverURL and marks
	// serverURL as the current server.
	SaveLastActive(ctx context.Context, serverURL string, kind entity.TabKind) error

	// SaveTabOpen records the open flag of a tab.
	SaveTabOpen(ctx context.Context, key entity.TabKey, open bool) error

	// ForgetServer drops everything stored for serverURL.
	ForgetServer(ctx context.Context, serverURL string) error
}
