package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/deskview/internal/application/port"
	"github.com/bnema/deskview/internal/logging"
)

// ErrDatabaseClosed is returned by LazyDB.DB after Close.
var ErrDatabaseClosed = errors.New("database closed")

// LazyDB opens the database on first use, so commands that never read
// navigation state skip the WASM compilation. A failed open is retried on
// the next call.
type LazyDB struct {
	path   string
	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

var _ port.DatabaseProvider = (*LazyDB)(nil)

// NewLazyDB returns a provider for the database at path.
func NewLazyDB(path string) *LazyDB {
	return &LazyDB{path: path}
}

// DB returns the shared connection, opening it if needed.
func (l *LazyDB) DB(ctx context.Context) (*sql.DB, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.closed:
		return nil, ErrDatabaseClosed
	case l.db != nil:
		return l.db, nil
	}

	db, err := NewConnection(ctx, l.path)
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("path", l.path).Msg("navigation state database unavailable")
		return nil, fmt.Errorf("open navigation state database: %w", err)
	}
	l.db = db
	return db, nil
}

// Close closes the connection if it was opened. Later DB calls fail.
func (l *LazyDB) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

// IsInitialized reports whether the connection is open.
func (l *LazyDB) IsInitialized() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db != nil
}

// Path returns the database path.
func (l *LazyDB) Path() string {
	return l.path
}
