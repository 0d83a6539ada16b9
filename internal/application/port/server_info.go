package port

import (
	"context"

	"github.com/bnema/deskview/internal/domain/entity"
)

// ServerInfoFetcher asks a server about itself. Used for compatibility
// gating and for background reachability probing.
type ServerInfoFetcher interface {
	FetchServerInfo(ctx context.Context, serverURL string) (entity.RemoteInfo, error)
}
