// Package sqlite stores chamber snapshots in a single SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/daniacca/atmosdb/internal/store"
)

const defaultPath = "atmosdb.db"

// Store keeps the latest record of every chamber as a JSON blob.
type Store struct {
	db   *sql.DB
	path string
}

var _ store.Store = (*Store)(nil)

// New opens (or creates) the database at path and ensures the snapshot table.
func New(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		chamber_id TEXT PRIMARY KEY,
		tick INTEGER NOT NULL,
		saved_at TEXT NOT NULL,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create snapshots table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Driver() store.Driver { return store.DriverSQLite }

func (s *Store) Save(ctx context.Context, rec store.Record) error {
	if err := store.ValidateRecord(rec); err != nil {
		return err
	}
	data, err := store.EncodeRecord(rec)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots(chamber_id, tick, saved_at, payload) VALUES(?,?,?,?)
		ON CONFLICT(chamber_id) DO UPDATE SET tick=excluded.tick, saved_at=excluded.saved_at, payload=excluded.payload`,
		rec.ChamberID, rec.Tick, rec.SavedAt.UTC().Format(time.RFC3339Nano), data,
	); err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", rec.ChamberID, err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, chamberID string) (store.Record, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE chamber_id = ?`, chamberID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Record{}, store.ErrNotFound
	}
	if err != nil {
		return store.Record{}, fmt.Errorf("select snapshot %s: %w", chamberID, err)
	}
	return store.DecodeRecord(payload)
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT chamber_id FROM snapshots ORDER BY chamber_id`)
	if err != nil {
		return nil, fmt.Errorf("select snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) Delete(ctx context.Context, chamberID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE chamber_id = ?`, chamberID)
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", chamberID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
