package sqlite_test

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/deskview/internal/domain/entity"
	"github.com/bnema/deskview/internal/infrastructure/persistence/sqlite"
)

func TestLazyDB_InitializesOnFirstAccess(t *testing.T) {
	ctx := testCtx()
	lazy := sqlite.NewLazyDB(filepath.Join(t.TempDir(), "test.db"))
	t.Cleanup(func() { _ = lazy.Close() })

	assert.False(t, lazy.IsInitialized())

	db, err := lazy.DB(ctx)
	require.NoError(t, err)
	require.NotNil(t, db)
	assert.True(t, lazy.IsInitialized())

	again, err := lazy.DB(ctx)
	require.NoError(t, err)
	assert.Same(t, db, again)
}

func TestLazyDB_ConcurrentAccess(t *testing.T) {
	ctx := testCtx()
	lazy := sqlite.NewLazyDB(filepath.Join(t.TempDir(), "test.db"))
	t.Cleanup(func() { _ = lazy.Close() })

	const goroutines = 10
	var wg sync.WaitGroup
	dbs := make([]*sql.DB, goroutines)
	errs := make([]error, goroutines)
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dbs[i], errs[i] = lazy.DB(ctx)
		}()
	}
	wg.Wait()

	for i := range goroutines {
		require.NoError(t, errs[i])
		assert.Same(t, dbs[0], dbs[i])
	}
}

func TestLazyDB_CloseBeforeInit(t *testing.T) {
	lazy := sqlite.NewLazyDB(filepath.Join(t.TempDir(), "test.db"))

	assert.NoError(t, lazy.Close())
	assert.Equal(t, "test.db", filepath.Base(lazy.Path()))
}

func TestLazyDB_RejectsUseAfterClose(t *testing.T) {
	ctx := testCtx()
	lazy := sqlite.NewLazyDB(filepath.Join(t.TempDir(), "test.db"))

	_, err := lazy.DB(ctx)
	require.NoError(t, err)
	require.NoError(t, lazy.Close())
	assert.False(t, lazy.IsInitialized())

	_, err = lazy.DB(ctx)
	assert.ErrorIs(t, err, sqlite.ErrDatabaseClosed)
	assert.NoError(t, lazy.Close(), "second close is a no-op")
}

func TestLazyDB_RetriesFailedOpen(t *testing.T) {
	ctx := testCtx()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	// The parent "directory" is a regular file, so the first open fails.
	lazy := sqlite.NewLazyDB(filepath.Join(blocker, "test.db"))
	t.Cleanup(func() { _ = lazy.Close() })
	_, err := lazy.DB(ctx)
	require.Error(t, err)
	assert.False(t, lazy.IsInitialized())

	require.NoError(t, os.Remove(blocker))
	_, err = lazy.DB(ctx)
	require.NoError(t, err)
	assert.True(t, lazy.IsInitialized())
}

func TestLazyNavigationStateRepository(t *testing.T) {
	ctx := testCtx()
	lazy := sqlite.NewLazyDB(filepath.Join(t.TempDir(), "test.db"))
	t.Cleanup(func() { _ = lazy.Close() })

	repo := sqlite.NewLazyNavigationStateRepository(lazy)
	assert.False(t, lazy.IsInitialized(), "constructing the repository does not open the database")

	require.NoError(t, repo.SaveTabOpen(ctx, entity.TabKey{ServerURL: alphaURL, Kind: entity.TabKindBoards}, true))
	assert.True(t, lazy.IsInitialized())

	state, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, state.OpenTabs[entity.TabKey{ServerURL: alphaURL, Kind: entity.TabKindBoards}])
}

func TestLazyNavigationStateRepository_InitFailure(t *testing.T) {
	ctx := testCtx()
	repo := sqlite.NewLazyNavigationStateRepository(sqlite.NewLazyDB(""))

	_, err := repo.Load(ctx)
	require.Error(t, err)
	assert.Error(t, repo.SaveLastActive(ctx, alphaURL, entity.TabKindMessaging))
}
