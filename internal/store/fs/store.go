// Package fs stores chamber snapshots as JSON files in a directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/daniacca/atmosdb/internal/store"
)

const suffix = ".snapshot.json"

// Store writes one <dir>/<chamberID>.snapshot.json file per chamber.
type Store struct {
	mu  sync.Mutex
	dir string
}

var _ store.Store = (*Store)(nil)

// New creates the directory if needed and returns a Store rooted at it.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("snapshot directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Driver() store.Driver { return store.DriverFS }

// Path returns the file a chamber's snapshot is written to.
func (s *Store) Path(chamberID string) string {
	return filepath.Join(s.dir, chamberID+suffix)
}

func (s *Store) checkID(chamberID string) error {
	if chamberID == "" || strings.ContainsAny(chamberID, `/\`) || chamberID == "." || chamberID == ".." {
		return fmt.Errorf("invalid chamber id %q", chamberID)
	}
	return nil
}

// Save writes the record to a temp file and renames it into place.
func (s *Store) Save(_ context.Context, rec store.Record) error {
	if err := store.ValidateRecord(rec); err != nil {
		return err
	}
	if err := s.checkID(rec.ChamberID); err != nil {
		return err
	}
	data, err := store.EncodeRecord(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, rec.ChamberID+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.Path(rec.ChamberID)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

func (s *Store) Load(_ context.Context, chamberID string) (store.Record, error) {
	if err := s.checkID(chamberID); err != nil {
		return store.Record{}, err
	}
	data, err := os.ReadFile(s.Path(chamberID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store.Record{}, store.ErrNotFound
		}
		return store.Record{}, fmt.Errorf("read snapshot: %w", err)
	}
	return store.DecodeRecord(data)
}

func (s *Store) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read snapshot dir: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), suffix))
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) Delete(_ context.Context, chamberID string) error {
	if err := s.checkID(chamberID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.Path(chamberID)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store.ErrNotFound
		}
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return nil }
