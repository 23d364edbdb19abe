package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"santacall/internal/platform/clock"
	apperrors "santacall/internal/platform/errors"
	"santacall/internal/platform/supabase"

	_ "modernc.org/sqlite"
)

// SQLiteSessionCache keeps the serialized backend session between runs so
// the app can start already signed in.
type SQLiteSessionCache struct {
	db    *sql.DB
	clock clock.Clock
}

var _ supabase.SessionStorage = (*SQLiteSessionCache)(nil)

func OpenSQLiteSessionCache(dbPath string, clk clock.Clock) (*SQLiteSessionCache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	cache, err := NewSQLiteSessionCache(context.Background(), db, clk)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

func NewSQLiteSessionCache(ctx context.Context, db *sql.DB, clk clock.Clock) (*SQLiteSessionCache, error) {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	cache := &SQLiteSessionCache{db: db, clock: clk}
	if err := cache.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return cache, nil
}

func (s *SQLiteSessionCache) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS auth_sessions (
  storage_key TEXT PRIMARY KEY,
  payload BLOB NOT NULL,
  updated_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create auth_sessions table: %w", err)
	}
	return nil
}

func (s *SQLiteSessionCache) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM auth_sessions WHERE storage_key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return payload, nil
}

func (s *SQLiteSessionCache) Save(ctx context.Context, key string, value []byte) error {
	const stmt = `
INSERT INTO auth_sessions (storage_key, payload, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(storage_key) DO UPDATE SET
  payload=excluded.payload,
  updated_at=excluded.updated_at;
`
	if _, err := s.db.ExecContext(ctx, stmt, key, value, s.clock.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SQLiteSessionCache) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE storage_key = ?`, key); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func (s *SQLiteSessionCache) Close() error {
	return s.db.Close()
}
