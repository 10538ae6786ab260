package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		ns          TEXT NOT NULL,
		key         TEXT NOT NULL,
		value       TEXT NOT NULL,
		revision    INTEGER NOT NULL DEFAULT 1,
		updated_at  TEXT NOT NULL,
		PRIMARY KEY (ns, key)
	);
	CREATE INDEX IF NOT EXISTS idx_kv_updated ON kv(updated_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Load(ctx context.Context, ns, key string, dst any) (bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE ns = ? AND key = ?`, ns, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s/%s: %w", ns, key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return true, fmt.Errorf("decode %s/%s: %w", ns, key, err)
	}
	return true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, ns, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", ns, key, err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv (ns, key, value, revision, updated_at) VALUES (?, ?, ?, 1, ?)
		 ON CONFLICT(ns, key) DO UPDATE SET
		   value = excluded.value,
		   revision = kv.revision + 1,
		   updated_at = excluded.updated_at`,
		ns, key, string(b), now)
	if err != nil {
		return fmt.Errorf("save %s/%s: %w", ns, key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
