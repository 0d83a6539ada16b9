package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/deskview/internal/domain/entity"
	"github.com/bnema/deskview/internal/infrastructure/persistence/sqlite"
	"github.com/bnema/deskview/internal/logging"
)

func testCtx() context.Context {
	logger := logging.NewFromConfigValues("debug", "console")
	return logging.WithContext(context.Background(), logger)
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.NewConnection(testCtx(), filepath.Join(t.TempDir(), "deskview.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

const (
	alphaURL = "https://alpha.example.com/"
	betaURL  = "https://beta.example.com/team/"
)

func TestNavigationStateRepository_EmptyDatabase(t *testing.T) {
	repo := sqlite.NewNavigationStateRepository(openTestDB(t))

	state, err := repo.Load(testCtx())
	require.NoError(t, err)

	assert.Empty(t, state.CurrentServerURL)
	assert.Empty(t, state.LastActiveTabs)
	assert.Empty(t, state.OpenTabs)
}

func TestNavigationStateRepository_RoundTrip(t *testing.T) {
	ctx := testCtx()
	repo := sqlite.NewNavigationStateRepository(openTestDB(t))

	require.NoError(t, repo.SaveLastActive(ctx, alphaURL, entity.TabKindPlaybooks))
	require.NoError(t, repo.SaveLastActive(ctx, betaURL, entity.TabKindMessaging))
	require.NoError(t, repo.SaveLastActive(ctx, alphaURL, entity.TabKindBoards))
	require.NoError(t, repo.SaveTabOpen(ctx, entity.TabKey{ServerURL: alphaURL, Kind: entity.TabKindBoards}, true))
	require.NoError(t, repo.SaveTabOpen(ctx, entity.TabKey{ServerURL: alphaURL, Kind: entity.TabKindPlaybooks}, true))
	require.NoError(t, repo.SaveTabOpen(ctx, entity.TabKey{ServerURL: alphaURL, Kind: entity.TabKindPlaybooks}, false))

	state, err := repo.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, alphaURL, state.CurrentServerURL, "last write wins")
	assert.Equal(t, map[string]entity.TabKind{
		alphaURL: entity.TabKindBoards,
		betaURL:  entity.TabKindMessaging,
	}, state.LastActiveTabs)
	assert.Equal(t, map[entity.TabKey]bool{
		{ServerURL: alphaURL, Kind: entity.TabKindBoards}:    true,
		{ServerURL: alphaURL, Kind: entity.TabKindPlaybooks}: false,
	}, state.OpenTabs)
}

func TestNavigationStateRepository_ForgetServer(t *testing.T) {
	ctx := testCtx()
	repo := sqlite.NewNavigationStateRepository(openTestDB(t))

	require.NoError(t, repo.SaveLastActive(ctx, betaURL, entity.TabKindMessaging))
	require.NoError(t, repo.SaveLastActive(ctx, alphaURL, entity.TabKindPlaybooks))
	require.NoError(t, repo.SaveTabOpen(ctx, entity.TabKey{ServerURL: alphaURL, Kind: entity.TabKindBoards}, true))

	require.NoError(t, repo.ForgetServer(ctx, alphaURL))

	state, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, state.CurrentServerURL)
	assert.Equal(t, map[string]entity.TabKind{betaURL: entity.TabKindMessaging}, state.LastActiveTabs)
	assert.Empty(t, state.OpenTabs)

	require.NoError(t, repo.ForgetServer(ctx, "https://unknown.example.com/"))
}

func TestNavigationStateRepository_SkipsUnknownKinds(t *testing.T) {
	ctx := testCtx()
	db := openTestDB(t)
	repo := sqlite.NewNavigationStateRepository(db)

	_, err := db.ExecContext(ctx, `INSERT INTO active_tabs (server_url, tab_kind) VALUES (?, 'calendar')`, alphaURL)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO tab_states (server_url, tab_kind, is_open) VALUES (?, 'calendar', 1)`, alphaURL)
	require.NoError(t, err)

	state, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, state.LastActiveTabs)
	assert.Empty(t, state.OpenTabs)
}

func TestNavigationStateRepository_SurvivesReopen(t *testing.T) {
	ctx := testCtx()
	dbPath := filepath.Join(t.TempDir(), "deskview.sqlite")

	db, err := sqlite.NewConnection(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, sqlite.NewNavigationStateRepository(db).SaveLastActive(ctx, alphaURL, entity.TabKindBoards))
	require.NoError(t, db.Close())

	db, err = sqlite.NewConnection(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	version, err := sqlite.GetMigrationStatus(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	state, err := sqlite.NewNavigationStateRepository(db).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, alphaURL, state.CurrentServerURL)
	assert.Equal(t, entity.TabKindBoards, state.LastActiveTabs[alphaURL])
}

func TestNewConnection_InMemory(t *testing.T) {
	ctx := testCtx()
	db, err := sqlite.NewConnection(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := sqlite.NewNavigationStateRepository(db)
	require.NoError(t, repo.SaveLastActive(ctx, alphaURL, entity.TabKindMessaging))

	state, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, alphaURL, state.CurrentServerURL)
}

func TestNewConnection_EmptyPath(t *testing.T) {
	_, err := sqlite.NewConnection(testCtx(), "")
	assert.Error(t, err)
}
