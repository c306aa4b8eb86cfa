package chamber

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/daniacca/atmosdb/internal/atmos"
	"github.com/daniacca/atmosdb/internal/store"
)

var (
	ErrChamberNotFound = errors.New("chamber not found")
	ErrChamberExists   = errors.New("chamber already exists")
)

// NewRandomID returns 16 random hex characters.
func NewRandomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Manager manages multiple chambers, each isolated from the others. Chambers
// it creates share its store, notification manager, metrics and logger.
type Manager struct {
	mu       sync.RWMutex
	chambers map[ID]*Chamber

	store         store.Store
	snapshotEvery int64
	notifications *NotificationManager
	metrics       *Metrics
	logger        atmos.Logger
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		chambers: make(map[ID]*Chamber),
		logger:   atmos.NewNoOpLogger(),
	}
}

// SetStore sets the snapshot store handed to new chambers.
func (m *Manager) SetStore(s store.Store, every int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = s
	m.snapshotEvery = every
}

// Store returns the snapshot store, if any.
func (m *Manager) Store() store.Store {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store
}

func (m *Manager) SetNotificationManager(nm *NotificationManager) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = nm
}

func (m *Manager) SetMetrics(metrics *Metrics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = metrics
}

func (m *Manager) SetLogger(logger atmos.Logger) {
	if logger == nil {
		logger = atmos.NewNoOpLogger()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// CreateChamber creates a chamber with the given ID and ruleset. A nil
// ruleset means the standard one.
func (m *Manager) CreateChamber(id ID, rs *Ruleset) (*Chamber, error) {
	if id == "" {
		return nil, fmt.Errorf("chamber id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.chambers[id]; exists {
		return nil, fmt.Errorf("chamber %s: %w", id, ErrChamberExists)
	}

	c := New(id, rs)
	c.SetLogger(m.logger)
	c.SetStore(m.store, m.snapshotEvery)
	c.SetNotificationManager(m.notifications)
	c.SetMetrics(m.metrics)
	m.chambers[id] = c
	return c, nil
}

// GetChamber retrieves a chamber by ID
func (m *Manager) GetChamber(id ID) (*Chamber, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, exists := m.chambers[id]
	return c, exists
}

// DeleteChamber stops and removes a chamber. Its stored snapshot is kept.
func (m *Manager) DeleteChamber(id ID) error {
	m.mu.Lock()
	c, exists := m.chambers[id]
	if exists {
		delete(m.chambers, id)
	}
	metrics := m.metrics
	m.mu.Unlock()

	if !exists {
		return fmt.Errorf("chamber %s: %w", id, ErrChamberNotFound)
	}
	c.Stop()
	metrics.Forget(id)
	return nil
}

// ListChambers returns the IDs of all chambers in order.
func (m *Manager) ListChambers() []ID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]ID, 0, len(m.chambers))
	for id := range m.chambers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// UpdateChamberRuleset swaps the ruleset of an existing chamber and keeps
// its mixture.
func (m *Manager) UpdateChamberRuleset(id ID, rs *Ruleset) error {
	c, exists := m.GetChamber(id)
	if !exists {
		return fmt.Errorf("chamber %s: %w", id, ErrChamberNotFound)
	}
	return c.SetRuleset(rs)
}

// StopAll stops every running chamber.
func (m *Manager) StopAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.chambers {
		c.Stop()
	}
}
