// Package store persists chamber snapshots. A Store keeps the latest Record of
// each chamber; drivers live in the fs, sqlite, postgres and s3 subpackages.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/daniacca/atmosdb/internal/atmos"
)

// ErrNotFound is returned when no snapshot exists for a chamber.
var ErrNotFound = errors.New("snapshot not found")

// Driver names a Store implementation.
type Driver string

const (
	DriverNone     Driver = "none"
	DriverFS       Driver = "fs"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverS3       Driver = "s3"
)

// Record is a point-in-time capture of a chamber: its tick counter and mixture.
type Record struct {
	ChamberID string                `json:"chamber_id"`
	Tick      int64                 `json:"tick"`
	SavedAt   time.Time             `json:"saved_at"`
	Mixture   atmos.MixtureSnapshot `json:"mixture"`
}

// Store keeps the latest record per chamber.
type Store interface {
	Driver() Driver
	Save(ctx context.Context, rec Record) error
	Load(ctx context.Context, chamberID string) (Record, error)
	// List returns the ids of every stored chamber, sorted.
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, chamberID string) error
	Close() error
}

// ValidateRecord checks that a record can be stored and later restored.
func ValidateRecord(rec Record) error {
	if rec.ChamberID == "" {
		return fmt.Errorf("record chamber id is required")
	}
	if rec.Tick < 0 {
		return fmt.Errorf("record tick must not be negative, got %d", rec.Tick)
	}
	return atmos.ValidateSnapshot(rec.Mixture, nil)
}

// EncodeRecord encodes a record to JSON.
func EncodeRecord(rec Record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return data, nil
}

// DecodeRecord decodes a record from JSON.
func DecodeRecord(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to decode record: %w", err)
	}
	return rec, nil
}
