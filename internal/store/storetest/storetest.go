// Package storetest holds a behaviour suite every store driver runs in its tests.
package storetest

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/daniacca/atmosdb/internal/atmos"
	"github.com/daniacca/atmosdb/internal/store"
)

// Record returns a valid record for chamberID.
func Record(chamberID string, tick int64) store.Record {
	m, err := atmos.NewMixture(
		[]atmos.GasSpecies{
			{ID: atmos.Oxygen, Name: "Oxygen", SpecificHeat: 20},
			{ID: atmos.Nitrogen, Name: "Nitrogen", SpecificHeat: 20},
		},
		[]float64{21, 79},
		atmos.T20C, atmos.CellStdVolume,
	)
	if err != nil {
		panic(err)
	}
	return store.Record{
		ChamberID: chamberID,
		Tick:      tick,
		SavedAt:   time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
		Mixture:   m.Snapshot(),
	}
}

// Exercise runs save, overwrite, load, list and delete against an empty store.
func Exercise(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Load(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing chamber, got %v", err)
	}

	if err := s.Save(ctx, Record("beta", 1)); err != nil {
		t.Fatalf("save beta: %v", err)
	}
	if err := s.Save(ctx, Record("alpha", 5)); err != nil {
		t.Fatalf("save alpha: %v", err)
	}
	if err := s.Save(ctx, Record("beta", 9)); err != nil {
		t.Fatalf("overwrite beta: %v", err)
	}

	rec, err := s.Load(ctx, "beta")
	if err != nil {
		t.Fatalf("load beta: %v", err)
	}
	if rec.ChamberID != "beta" || rec.Tick != 9 {
		t.Fatalf("expected latest beta record at tick 9, got %+v", rec)
	}
	if !rec.SavedAt.Equal(Record("beta", 9).SavedAt) {
		t.Fatalf("saved_at mismatch: %v", rec.SavedAt)
	}
	if len(rec.Mixture.Gases) != 2 || rec.Mixture.Gases[1].Moles != 21 {
		t.Fatalf("mixture mismatch: %+v", rec.Mixture)
	}

	ids, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !slices.Equal(ids, []string{"alpha", "beta"}) {
		t.Fatalf("expected [alpha beta], got %v", ids)
	}

	if err := s.Delete(ctx, "alpha"); err != nil {
		t.Fatalf("delete alpha: %v", err)
	}
	if _, err := s.Load(ctx, "alpha"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, "alpha"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}

	if err := s.Save(ctx, store.Record{}); err == nil {
		t.Fatal("expected invalid record to be rejected")
	}
}
