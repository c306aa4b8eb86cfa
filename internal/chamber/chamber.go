package chamber

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/daniacca/atmosdb/internal/atmos"
	"github.com/daniacca/atmosdb/internal/store"
)

// ID identifies a chamber.
type ID string

// ErrNoStore is returned by snapshot operations on a chamber without a store.
var ErrNoStore = errors.New("chamber has no snapshot store")

// Chamber is one isolated mixture driven by a ruleset. All access to the
// mixture goes through the chamber's lock, so a Chamber is safe for concurrent
// use while the mixture itself is not.
type Chamber struct {
	mu      sync.Mutex
	id      ID
	ruleset *Ruleset
	engine  *atmos.Engine
	mixture *atmos.GasMixture
	tick    int64

	store         store.Store
	snapshotEvery int64
	notifications *NotificationManager
	metrics       *Metrics
	logger        atmos.Logger

	stopCh    chan struct{}
	isRunning bool
}

// New creates a chamber holding an empty mixture at room temperature in a
// standard cell volume.
func New(id ID, rs *Ruleset) *Chamber {
	if rs == nil {
		rs = StandardRuleset()
	}
	return &Chamber{
		id:      id,
		ruleset: rs,
		engine:  rs.Engine,
		mixture: atmos.NewEmptyMixture(atmos.T20C, atmos.CellStdVolume),
		logger:  atmos.NewNoOpLogger(),
	}
}

// SetLogger sets the logger used by the chamber and its engine.
func (c *Chamber) SetLogger(logger atmos.Logger) {
	if logger == nil {
		logger = atmos.NewNoOpLogger()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = logger
	c.engine = c.ruleset.Engine.WithLogger(logger)
}

// SetStore enables snapshots. A positive every saves the chamber each time
// the tick counter reaches a multiple of it.
func (c *Chamber) SetStore(s store.Store, every int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = s
	c.snapshotEvery = every
}

// SetNotificationManager routes events of fired rules to nm.
func (c *Chamber) SetNotificationManager(nm *NotificationManager) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = nm
}

// SetMetrics enables step metrics.
func (c *Chamber) SetMetrics(m *Metrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = m
}

func (c *Chamber) ID() ID {
	return c.id
}

// Tick returns the number of passes run so far.
func (c *Chamber) Tick() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tick
}

// Ruleset returns the active ruleset.
func (c *Chamber) Ruleset() *Ruleset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ruleset
}

// Mixture returns a snapshot of the current mixture.
func (c *Chamber) Mixture() atmos.MixtureSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mixture.Snapshot()
}

// Step runs one reaction pass. The tick advances even when the pass fails;
// in that case the partial result is returned with the error.
func (c *Chamber) Step(ctx context.Context) (atmos.Result, error) {
	c.mu.Lock()
	started := time.Now()
	c.tick++
	tick := c.tick
	res, err := c.engine.Apply(c.mixture)
	elapsed := time.Since(started)
	snap := c.mixture.Snapshot()
	rs, nm, metrics, logger := c.ruleset, c.notifications, c.metrics, c.logger
	st, every := c.store, c.snapshotEvery
	c.mu.Unlock()

	metrics.ObserveStep(c.id, res, err, elapsed, snap)
	if err != nil {
		logger.Errorf("chamber %s: tick %d failed: %v", c.id, tick, err)
	}

	if nm != nil {
		for _, f := range res.Fired {
			routes := rs.Routes(f.RuleID)
			if len(routes) == 0 {
				continue
			}
			nm.Enqueue(NewReactionEvent(c.id, f, res.Signals, tick, snap), routes)
		}
	}

	if st != nil && every > 0 && tick%every == 0 {
		rec := store.Record{ChamberID: string(c.id), Tick: tick, SavedAt: time.Now().UTC(), Mixture: snap}
		serr := st.Save(ctx, rec)
		metrics.ObserveSnapshot(string(st.Driver()), serr)
		if serr != nil {
			logger.Errorf("chamber %s: snapshot at tick %d failed: %v", c.id, tick, serr)
		}
	}
	return res, err
}

// Preview lists the rules that would fire on the current mixture, without
// applying them.
func (c *Chamber) Preview() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	eligible := c.engine.Evaluate(c.mixture)
	ids := make([]string, 0, len(eligible))
	for _, r := range eligible {
		ids = append(ids, r.ID)
	}
	return ids
}

// ReplaceMixture swaps the mixture for the one described by snap.
func (c *Chamber) ReplaceMixture(snap atmos.MixtureSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, err := atmos.MixtureFromSnapshot(snap, c.ruleset.Catalog)
	if err != nil {
		return err
	}
	c.mixture = m
	return nil
}

// AddGas merges moles of gas at temperature into the chamber. A temperature
// of zero uses the chamber's own.
func (c *Chamber) AddGas(gas atmos.SpeciesID, moles, temperature float64) error {
	if moles <= 0 {
		return &atmos.NegativeAmountError{Value: moles}
	}
	if temperature < 0 {
		return fmt.Errorf("temperature must not be negative, got %v", temperature)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	species, ok := c.ruleset.Catalog.Lookup(gas)
	if !ok {
		return &atmos.GasNotFoundError{Gas: gas}
	}
	if temperature == 0 {
		temperature = c.mixture.Temperature
	}
	added, err := atmos.NewMixture([]atmos.GasSpecies{species}, []float64{moles}, temperature, c.mixture.Volume())
	if err != nil {
		return err
	}
	if c.mixture.IsEmpty() {
		c.mixture = added
		return nil
	}
	return c.mixture.Merge(added)
}

// Remove takes amount moles out of the chamber and returns what was removed.
func (c *Chamber) Remove(amount float64) (atmos.MixtureSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed, err := c.mixture.Remove(amount)
	if err != nil {
		return atmos.MixtureSnapshot{}, err
	}
	return removed.Snapshot(), nil
}

// RemoveRatio takes a fraction of every gas out of the chamber.
func (c *Chamber) RemoveRatio(ratio float64) (atmos.MixtureSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed, err := c.mixture.RemoveRatio(ratio)
	if err != nil {
		return atmos.MixtureSnapshot{}, err
	}
	return removed.Snapshot(), nil
}

// SetRuleset replaces the ruleset and keeps the mixture's moles and
// temperature. The new catalog must know every gas the chamber holds; the
// gases are rebound to its species so specific heats follow the swap.
func (c *Chamber) SetRuleset(rs *Ruleset) error {
	if rs == nil {
		return fmt.Errorf("ruleset is required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := rs.covers(c.mixture); err != nil {
		return err
	}
	m, err := atmos.MixtureFromSnapshot(c.mixture.Snapshot(), rs.Catalog)
	if err != nil {
		return fmt.Errorf("rebind mixture to ruleset %s: %w", rs.Config.Name, err)
	}
	c.mixture = m
	c.ruleset = rs
	c.engine = rs.Engine.WithLogger(c.logger)
	return nil
}

// SaveSnapshot writes the chamber state to its store.
func (c *Chamber) SaveSnapshot(ctx context.Context) (store.Record, error) {
	c.mu.Lock()
	st := c.store
	rec := store.Record{
		ChamberID: string(c.id),
		Tick:      c.tick,
		SavedAt:   time.Now().UTC(),
		Mixture:   c.mixture.Snapshot(),
	}
	metrics := c.metrics
	c.mu.Unlock()

	if st == nil {
		return store.Record{}, ErrNoStore
	}
	err := st.Save(ctx, rec)
	metrics.ObserveSnapshot(string(st.Driver()), err)
	if err != nil {
		return store.Record{}, err
	}
	return rec, nil
}

// Restore loads the chamber's last snapshot and resumes from its tick.
func (c *Chamber) Restore(ctx context.Context) (store.Record, error) {
	c.mu.Lock()
	st := c.store
	c.mu.Unlock()
	if st == nil {
		return store.Record{}, ErrNoStore
	}

	rec, err := st.Load(ctx, string(c.id))
	if err != nil {
		return store.Record{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	m, err := atmos.MixtureFromSnapshot(rec.Mixture, c.ruleset.Catalog)
	if err != nil {
		return store.Record{}, fmt.Errorf("restore chamber %s: %w", c.id, err)
	}
	c.mixture = m
	c.tick = rec.Tick
	return rec, nil
}

// Run steps the chamber on a ticker in its own goroutine until Stop is
// called. Calling Run on a running chamber does nothing.
func (c *Chamber) Run(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	stop := make(chan struct{})
	c.stopCh = stop
	c.isRunning = true
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_, _ = c.Step(context.Background())
			case <-stop:
				return
			}
		}
	}()
	return nil
}

// Stop halts a running chamber. Run can be called again afterwards.
func (c *Chamber) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isRunning {
		return
	}
	close(c.stopCh)
	c.isRunning = false
}

// IsRunning reports whether the chamber is ticking on its own.
func (c *Chamber) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isRunning
}
