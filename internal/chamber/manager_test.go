package chamber

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	fsstore "github.com/daniacca/atmosdb/internal/store/fs"
)

func TestNewManager(t *testing.T) {
	m := NewManager()
	if m == nil {
		t.Fatal("NewManager returned nil")
	}
	if ids := m.ListChambers(); len(ids) != 0 {
		t.Errorf("Expected no chambers, got %v", ids)
	}
	if m.Store() != nil {
		t.Error("Expected no store")
	}
}

func TestManager_CreateChamber(t *testing.T) {
	m := NewManager()
	rs := burnerRuleset(t)

	c, err := m.CreateChamber("lab", rs)
	if err != nil {
		t.Fatalf("Expected no error creating chamber, got: %v", err)
	}
	if c.ID() != "lab" || c.Ruleset() != rs {
		t.Errorf("Unexpected chamber %s with ruleset %s", c.ID(), c.Ruleset().Config.Name)
	}

	got, exists := m.GetChamber("lab")
	if !exists || got != c {
		t.Fatal("Expected chamber to exist after creation")
	}

	if _, err := m.CreateChamber("lab", nil); !errors.Is(err, ErrChamberExists) {
		t.Errorf("Expected ErrChamberExists, got %v", err)
	}
	if _, err := m.CreateChamber("", nil); err == nil {
		t.Error("Expected error for empty id")
	}

	std, err := m.CreateChamber("station", nil)
	if err != nil {
		t.Fatalf("CreateChamber: %v", err)
	}
	if std.Ruleset().Config.Name != "standard" {
		t.Errorf("Expected standard ruleset, got %s", std.Ruleset().Config.Name)
	}
}

func TestManager_SharesDependencies(t *testing.T) {
	st, err := fsstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("fs store: %v", err)
	}
	nm := NewNotificationManager()
	defer nm.Close()
	hook := newMockNotifier("hook")
	_ = nm.RegisterNotifier(hook)

	m := NewManager()
	m.SetStore(st, 1)
	m.SetNotificationManager(nm)
	m.SetMetrics(NewMetrics())
	m.SetLogger(nil)

	c, err := m.CreateChamber("lab", burnerRuleset(t, "hook"))
	if err != nil {
		t.Fatalf("CreateChamber: %v", err)
	}
	if err := c.AddGas("fuel", 10, 500); err != nil {
		t.Fatalf("AddGas: %v", err)
	}
	if err := c.AddGas("ox", 20, 500); err != nil {
		t.Fatalf("AddGas: %v", err)
	}
	if _, err := c.Step(context.Background()); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if _, err := st.Load(context.Background(), "lab"); err != nil {
		t.Errorf("Expected snapshot from the shared store, got %v", err)
	}
	if m.Store() != st {
		t.Error("Expected Store to return the shared store")
	}
}

func TestManager_DeleteChamber(t *testing.T) {
	m := NewManager()
	c, _ := m.CreateChamber("lab", nil)
	if err := c.Run(time.Hour); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if err := m.DeleteChamber("lab"); err != nil {
		t.Fatalf("DeleteChamber: %v", err)
	}
	if c.IsRunning() {
		t.Error("Expected deleted chamber to be stopped")
	}
	if _, exists := m.GetChamber("lab"); exists {
		t.Error("Expected chamber to be gone")
	}
	if err := m.DeleteChamber("lab"); !errors.Is(err, ErrChamberNotFound) {
		t.Errorf("Expected ErrChamberNotFound, got %v", err)
	}
}

func TestManager_ListChambersSorted(t *testing.T) {
	m := NewManager()
	for _, id := range []ID{"gamma", "alpha", "beta"} {
		if _, err := m.CreateChamber(id, nil); err != nil {
			t.Fatalf("CreateChamber %s: %v", id, err)
		}
	}
	ids := m.ListChambers()
	if len(ids) != 3 || ids[0] != "alpha" || ids[1] != "beta" || ids[2] != "gamma" {
		t.Errorf("Expected [alpha beta gamma], got %v", ids)
	}
}

func TestManager_UpdateChamberRuleset(t *testing.T) {
	m := NewManager()
	if err := m.UpdateChamberRuleset("missing", StandardRuleset()); !errors.Is(err, ErrChamberNotFound) {
		t.Errorf("Expected ErrChamberNotFound, got %v", err)
	}

	c, _ := m.CreateChamber("lab", nil)
	rs := burnerRuleset(t)
	if err := m.UpdateChamberRuleset("lab", rs); err != nil {
		t.Fatalf("UpdateChamberRuleset: %v", err)
	}
	if c.Ruleset() != rs {
		t.Error("Expected the new ruleset to be active")
	}
}

func TestManager_StopAll(t *testing.T) {
	m := NewManager()
	a, _ := m.CreateChamber("a", nil)
	b, _ := m.CreateChamber("b", nil)
	_ = a.Run(time.Hour)
	_ = b.Run(time.Hour)
	m.StopAll()
	if a.IsRunning() || b.IsRunning() {
		t.Error("Expected every chamber to be stopped")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := NewManager()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := ID(NewRandomID())
			if _, err := m.CreateChamber(id, nil); err != nil {
				t.Errorf("CreateChamber: %v", err)
				return
			}
			_ = m.ListChambers()
			if i%2 == 0 {
				_ = m.DeleteChamber(id)
			}
		}(i)
	}
	wg.Wait()
	if got := len(m.ListChambers()); got != 10 {
		t.Errorf("Expected 10 chambers, got %d", got)
	}
}

func TestNewRandomID(t *testing.T) {
	a, b := NewRandomID(), NewRandomID()
	if len(a) != 16 {
		t.Errorf("Expected 16 hex characters, got %q", a)
	}
	if a == b {
		t.Error("Expected distinct ids")
	}
}
