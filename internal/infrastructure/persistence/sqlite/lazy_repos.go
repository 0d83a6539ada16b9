package sqlite

import (
	"context"
	"database/sql"
	"sync"

	"github.com/bnema/deskview/internal/application/port"
	"github.com/bnema/deskview/internal/domain/entity"
	"github.com/bnema/deskview/internal/domain/repository"
)

// LazyNavigationStateRepository opens the database on the first call that
// needs it.
type LazyNavigationStateRepository struct {
	provider port.DatabaseProvider

	mu   sync.Mutex
	db   *sql.DB
	repo repository.NavigationStateRepository
}

// NewLazyNavigationStateRepository creates a lazy-loading navigation state repository.
func NewLazyNavigationStateRepository(provider port.DatabaseProvider) repository.NavigationStateRepository {
	return &LazyNavigationStateRepository{provider: provider}
}

func (r *LazyNavigationStateRepository) current(ctx context.Context) (repository.NavigationStateRepository, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db != db {
		r.db = db
		r.repo = NewNavigationStateRepository(db)
	}
	return r.repo, nil
}

func (r *LazyNavigationStateRepository) Load(ctx context.Context) (*entity.NavigationState, error) {
	repo, err := r.current(ctx)
	if err != nil {
		return nil, err
	}
	return repo.Load(ctx)
}

func (r *LazyNavigationStateRepository) SaveLastActive(ctx context.Context, serverURL string, kind entity.TabKind) error {
	repo, err := r.current(ctx)
	if err != nil {
		return err
	}
	return repo.SaveLastActive(ctx, serverURL, kind)
}

func (r *LazyNavigationStateRepository) SaveTabOpen(ctx context.Context, key entity.TabKey, open bool) error {
	repo, err := r.current(ctx)
	if err != nil {
		return err
	}
	return repo.SaveTabOpen(ctx, key, open)
}

func (r *LazyNavigationStateRepository) ForgetServer(ctx context.Context, serverURL string) error {
	repo, err := r.current(ctx)
	if err != nil {
		return err
	}
	return repo.ForgetServer(ctx, serverURL)
}
