package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bnema/deskview/internal/domain/entity"
	"github.com/bnema/deskview/internal/domain/repository"
	"github.com/bnema/deskview/internal/infrastructure/persistence/sqlite/sqlc"
	"github.com/bnema/deskview/internal/logging"
)

type navigationStateRepo struct {
	db      *sql.DB
	queries *sqlc.Queries
}

// NewNavigationStateRepository creates a new SQLite-backed navigation state repository.
func NewNavigationStateRepository(db *sql.DB) repository.NavigationStateRepository {
	return &navigationStateRepo{
		db:      db,
		queries: sqlc.New(db),
	}
}

func (r *navigationStateRepo) Load(ctx context.Context) (*entity.NavigationState, error) {
	log := logging.FromContext(ctx)
	state := entity.NewNavigationState()

	current, err := r.queries.GetCurrentServer(ctx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("load current server: %w", err)
	default:
		state.CurrentServerURL = current
	}

	active, err := r.queries.ListActiveTabs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active tabs: %w", err)
	}
	for _, row := range active {
		kind, err := entity.ParseTabKind(row.TabKind)
		if err != nil {
			log.Warn().Str("server_url", row.ServerUrl).Str("tab_kind", row.TabKind).Msg("skipping unknown active tab kind")
			continue
		}
		state.LastActiveTabs[row.ServerUrl] = kind
	}

	tabs, err := r.queries.ListTabStates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tab states: %w", err)
	}
	for _, row := range tabs {
		kind, err := entity.ParseTabKind(row.TabKind)
		if err != nil {
			log.Warn().Str("server_url", row.ServerUrl).Str("tab_kind", row.TabKind).Msg("skipping unknown tab state kind")
			continue
		}
		state.OpenTabs[entity.TabKey{ServerURL: row.ServerUrl, Kind: kind}] = row.IsOpen
	}

	log.Debug().
		Str("current_server", state.CurrentServerURL).
		Int("active_tabs", len(state.LastActiveTabs)).
		Int("tab_states", len(state.OpenTabs)).
		Msg("navigation state loaded")
	return state, nil
}

func (r *navigationStateRepo) SaveLastActive(ctx context.Context, serverURL string, kind entity.TabKind) error {
	logging.FromContext(ctx).Debug().Str("server_url", serverURL).Str("tab_kind", kind.String()).Msg("saving last active tab")

	return r.inTx(ctx, func(q *sqlc.Queries) error {
		if err := q.UpsertActiveTab(ctx, sqlc.UpsertActiveTabParams{
			ServerUrl: serverURL,
			TabKind:   kind.String(),
		}); err != nil {
			return fmt.Errorf("save active tab: %w", err)
		}
		if err := q.SetCurrentServer(ctx, serverURL); err != nil {
			return fmt.Errorf("save current server: %w", err)
		}
		return nil
	})
}

func (r *navigationStateRepo) SaveTabOpen(ctx context.Context, key entity.TabKey, open bool) error {
	return r.queries.UpsertTabState(ctx, sqlc.UpsertTabStateParams{
		ServerUrl: key.ServerURL,
		TabKind:   key.Kind.String(),
		IsOpen:    open,
	})
}

func (r *navigationStateRepo) ForgetServer(ctx context.Context, serverURL string) error {
	logging.FromContext(ctx).Debug().Str("server_url", serverURL).Msg("forgetting server navigation state")

	return r.inTx(ctx, func(q *sqlc.Queries) error {
		if err := q.DeleteActiveTab(ctx, serverURL); err != nil {
			return err
		}
		if err := q.DeleteTabStates(ctx, serverURL); err != nil {
			return err
		}
		return q.ClearCurrentServer(ctx, serverURL)
	})
}

func (r *navigationStateRepo) inTx(ctx context.Context, fn func(q *sqlc.Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
