package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/credkeeper/internal/filex"
	"github.com/dmitrijs2005/credkeeper/internal/server/repositories/credentials"
)

// ErrUnsupportedDSN is returned by Open for an unknown DSN scheme.
var ErrUnsupportedDSN = errors.New("unsupported database dsn")

// Store is an opened credential backend.
type Store struct {
	Credentials credentials.Repository
	Backend     string
	db          *sql.DB
}

// Close releases the underlying database handle, if any.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// Open selects a backend by DSN, connects, and migrates it.
//
//	memory://                      in-process map
//	postgres://..., postgresql://  PostgreSQL via pgx
//	sqlite://<path>, file:<path>   SQLite via modernc.org/sqlite
func Open(ctx context.Context, dsn string) (*Store, error) {
	switch {
	case dsn == "memory" || strings.HasPrefix(dsn, "memory://"):
		return &Store{Credentials: credentials.NewMemoryRepository(), Backend: "memory"}, nil

	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return openSQL(ctx, "pgx", dsn, "postgres", &PostgresRepositoryManager{}, 0)

	case strings.HasPrefix(dsn, "sqlite://"), strings.HasPrefix(dsn, "file:"):
		dsn = strings.TrimPrefix(dsn, "sqlite://")
		if path := sqliteFilePath(dsn); path != "" {
			if err := filex.EnsureParentDir(path); err != nil {
				return nil, fmt.Errorf("prepare sqlite: %w", err)
			}
		}
		return openSQL(ctx, "sqlite", dsn, "sqlite", &SQLiteRepositoryManager{}, 1)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDSN, redact(dsn))
	}
}

// openSQL connects with driver, runs migrations and, when maxConns > 0,
// caps the pool afterwards. SQLite is capped at one connection so writers
// queue instead of failing with SQLITE_BUSY.
func openSQL(ctx context.Context, driver, dsn, backend string, m RepositoryManager, maxConns int) (*Store, error) {
	db, err := sqlOpen(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", backend, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", backend, err)
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", backend, err)
	}

	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}

	return &Store{Credentials: m.Credentials(db), Backend: backend, db: db}, nil
}

// sqliteFilePath returns the on-disk path of a SQLite DSN, or "" for
// in-memory databases.
func sqliteFilePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return ""
	}
	return path
}

// redact hides everything after the scheme so credentials in a DSN never
// reach logs or error messages.
func redact(dsn string) string {
	if i := strings.Index(dsn, "://"); i >= 0 {
		return dsn[:i+3] + "***"
	}
	if len(dsn) > 8 {
		return dsn[:8] + "***"
	}
	return dsn
}
