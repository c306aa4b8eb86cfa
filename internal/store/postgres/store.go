// Package postgres stores chamber snapshots in a Postgres table with a JSONB
// payload column.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"github.com/daniacca/atmosdb/internal/store"
)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/atmosdb?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store keeps the latest record of every chamber.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// New opens a Postgres-backed store using dsn (falls back to defaultDSN),
// pings it and ensures the snapshot table exists.
func New(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureTable(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func ensureTable(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS snapshots (
		chamber_id TEXT PRIMARY KEY,
		tick BIGINT NOT NULL,
		saved_at TIMESTAMPTZ NOT NULL,
		payload JSONB NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure snapshots table: %w", err)
	}
	return nil
}

func (s *Store) Driver() store.Driver { return store.DriverPostgres }

func (s *Store) Save(ctx context.Context, rec store.Record) error {
	if err := store.ValidateRecord(rec); err != nil {
		return err
	}
	data, err := store.EncodeRecord(rec)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots(chamber_id, tick, saved_at, payload) VALUES($1,$2,$3,$4)
		ON CONFLICT (chamber_id) DO UPDATE SET tick = EXCLUDED.tick, saved_at = EXCLUDED.saved_at, payload = EXCLUDED.payload`,
		rec.ChamberID, rec.Tick, rec.SavedAt.UTC(), string(data),
	); err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", rec.ChamberID, err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, chamberID string) (store.Record, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE chamber_id = $1`, chamberID).Scan(&payload)
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
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE chamber_id = $1`, chamberID)
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

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
