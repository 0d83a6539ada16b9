// Package sqlite persists navigation state in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/bnema/deskview/internal/logging"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const dbDirPerm = 0o750

// Applied by the driver on every new connection.
var filePragmas = []string{
	"journal_mode(wal)",
	"synchronous(normal)",
	"busy_timeout(5000)",
	"foreign_keys(1)",
}

var memoryPragmas = []string{
	"busy_timeout(5000)",
	"foreign_keys(1)",
}

// dataSourceName builds a file: URI carrying the pragmas, which the ncruces
// driver runs when it opens a connection.
func dataSourceName(dbPath string) string {
	pragmas := filePragmas
	if dbPath == MemoryPath {
		pragmas = memoryPragmas
	}
	q := url.Values{"_pragma": pragmas}
	u := url.URL{Scheme: "file", Opaque: dbPath, RawQuery: q.Encode()}
	return u.String()
}

// NewConnection opens the navigation state database at dbPath and brings
// its schema up to date. The parent directory is created when missing.
func NewConnection(ctx context.Context, dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), dbDirPerm); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dataSourceName(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: SQLite has a single writer, and an in-memory
	// database only lives as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logging.FromContext(ctx).Info().Str("path", dbPath).Msg("navigation state database ready")
	return db, nil
}
