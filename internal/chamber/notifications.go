package chamber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/daniacca/atmosdb/internal/atmos"
)

// ReactionEvent is published when a rule with notification routes fires.
type ReactionEvent struct {
	ChamberID ID     `json:"chamber_id"`
	RuleID    string `json:"rule_id"`
	RuleName  string `json:"rule_name"`
	Tick      int64  `json:"tick"`
	Timestamp int64  `json:"timestamp"`

	Extent  float64        `json:"extent"`
	Energy  float64        `json:"energy"`
	Signals []atmos.Signal `json:"signals,omitempty"`

	// Mixture is the chamber state at the end of the pass.
	Mixture atmos.MixtureSnapshot `json:"mixture"`
}

// NewReactionEvent builds the event for one firing. Only the signals emitted
// by the firing rule are kept.
func NewReactionEvent(chamberID ID, firing atmos.Firing, signals []atmos.Signal, tick int64, mixture atmos.MixtureSnapshot) ReactionEvent {
	var own []atmos.Signal
	for _, s := range signals {
		if s.RuleID == firing.RuleID {
			own = append(own, s)
		}
	}
	return ReactionEvent{
		ChamberID: chamberID,
		RuleID:    firing.RuleID,
		RuleName:  firing.RuleName,
		Tick:      tick,
		Timestamp: time.Now().Unix(),
		Extent:    firing.Extent,
		Energy:    firing.Energy,
		Signals:   own,
		Mixture:   mixture,
	}
}

// JSON returns the event encoded as JSON.
func (e ReactionEvent) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// Notifier is the interface that all notification channels must implement
type Notifier interface {
	// ID returns a unique identifier for this notifier
	ID() string

	// Type returns the type of notifier (e.g., "webhook", "websocket")
	Type() string

	// Notify sends a notification event. The context bounds the delivery.
	Notify(ctx context.Context, event ReactionEvent) error

	// Close releases any resources held by the notifier
	Close() error
}

const (
	defaultQueueSize  = 1024
	defaultMaxRetries = 3
	defaultBackoff    = 100 * time.Millisecond
	jobTimeout        = 30 * time.Second
)

type notificationJob struct {
	Event       ReactionEvent
	NotifierIDs []string
}

// NotificationManager holds the registered notifiers and delivers events to
// them, either through an asynchronous queue or synchronously.
type NotificationManager struct {
	mu        sync.RWMutex
	notifiers map[string]Notifier
	jobs      chan notificationJob
	closed    bool
	wg        sync.WaitGroup

	logger     atmos.Logger
	metrics    *Metrics
	maxRetries int
	backoff    time.Duration
}

// NewNotificationManager creates a manager with one delivery worker.
func NewNotificationManager() *NotificationManager {
	nm := &NotificationManager{
		notifiers:  make(map[string]Notifier),
		jobs:       make(chan notificationJob, defaultQueueSize),
		logger:     atmos.NewNoOpLogger(),
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
	}
	nm.startWorkers(1)
	return nm
}

// SetLogger sets the logger for delivery failures.
func (nm *NotificationManager) SetLogger(logger atmos.Logger) {
	if logger == nil {
		logger = atmos.NewNoOpLogger()
	}
	nm.mu.Lock()
	nm.logger = logger
	nm.mu.Unlock()
}

// SetMetrics enables delivery metrics.
func (nm *NotificationManager) SetMetrics(m *Metrics) {
	nm.mu.Lock()
	nm.metrics = m
	nm.mu.Unlock()
}

// SetRetryPolicy changes how often and how patiently a failed delivery is retried.
func (nm *NotificationManager) SetRetryPolicy(maxRetries int, backoff time.Duration) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	if maxRetries >= 0 {
		nm.maxRetries = maxRetries
	}
	if backoff > 0 {
		nm.backoff = backoff
	}
}

// RegisterNotifier registers a notifier with the manager
func (nm *NotificationManager) RegisterNotifier(notifier Notifier) error {
	if notifier == nil {
		return fmt.Errorf("notifier cannot be nil")
	}
	id := notifier.ID()
	if id == "" {
		return fmt.Errorf("notifier ID cannot be empty")
	}

	nm.mu.Lock()
	defer nm.mu.Unlock()
	if nm.closed {
		return fmt.Errorf("notification manager is closed")
	}
	if _, exists := nm.notifiers[id]; exists {
		return fmt.Errorf("notifier with ID %s already exists", id)
	}
	nm.notifiers[id] = notifier
	return nil
}

// UnregisterNotifier closes a notifier and removes it from the manager
func (nm *NotificationManager) UnregisterNotifier(id string) error {
	nm.mu.Lock()
	notifier, exists := nm.notifiers[id]
	if exists {
		delete(nm.notifiers, id)
	}
	nm.mu.Unlock()

	if !exists {
		return fmt.Errorf("notifier with ID %s not found", id)
	}
	if err := notifier.Close(); err != nil {
		return fmt.Errorf("error closing notifier %s: %w", id, err)
	}
	return nil
}

// GetNotifier retrieves a notifier by ID
func (nm *NotificationManager) GetNotifier(id string) (Notifier, bool) {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	notifier, exists := nm.notifiers[id]
	return notifier, exists
}

// ListNotifiers returns the registered notifier IDs in order
func (nm *NotificationManager) ListNotifiers() []string {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	ids := make([]string, 0, len(nm.notifiers))
	for id := range nm.notifiers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Enqueue queues an event for asynchronous delivery. It never blocks: the
// event is dropped when the queue is full or the manager is closed.
func (nm *NotificationManager) Enqueue(event ReactionEvent, notifierIDs []string) bool {
	if len(notifierIDs) == 0 {
		return false
	}

	nm.mu.RLock()
	defer nm.mu.RUnlock()
	if nm.closed {
		return false
	}
	select {
	case nm.jobs <- notificationJob{Event: event, NotifierIDs: notifierIDs}:
		return true
	default:
		nm.logger.Warnf("notification queue full, dropping notification: chamber=%s rule=%s", event.ChamberID, event.RuleID)
		return false
	}
}

func (nm *NotificationManager) startWorkers(n int) {
	for range n {
		nm.wg.Add(1)
		go nm.worker()
	}
}

func (nm *NotificationManager) worker() {
	defer nm.wg.Done()
	for job := range nm.jobs {
		nm.dispatchJob(job)
	}
}

func (nm *NotificationManager) dispatchJob(job notificationJob) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	for _, id := range job.NotifierIDs {
		nm.notifyWithRetry(ctx, id, job.Event)
	}
}

// notifyWithRetry delivers with exponential backoff between attempts
func (nm *NotificationManager) notifyWithRetry(ctx context.Context, notifierID string, event ReactionEvent) {
	nm.mu.RLock()
	notifier, ok := nm.notifiers[notifierID]
	logger, metrics := nm.logger, nm.metrics
	maxRetries, backoff := nm.maxRetries, nm.backoff
	nm.mu.RUnlock()

	if !ok {
		logger.Warnf("notification failed: notifier=%s error=notifier not found", notifierID)
		metrics.ObserveNotification(notifierID, errors.New("not found"))
		return
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := notifier.Notify(ctx, event)
		metrics.ObserveNotification(notifierID, err)
		if err == nil {
			return
		}
		logger.Warnf("notification failed: notifier=%s attempt=%d error=%v", notifierID, attempt+1, err)
		if attempt == maxRetries {
			logger.Errorf("notification failed after %d attempts: notifier=%s", maxRetries+1, notifierID)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
			backoff *= 2
		}
	}
}

// Notify delivers an event to the given notifiers synchronously, once each.
func (nm *NotificationManager) Notify(ctx context.Context, event ReactionEvent, notifierIDs []string) error {
	var errs []error
	for _, id := range notifierIDs {
		nm.mu.RLock()
		notifier, exists := nm.notifiers[id]
		nm.mu.RUnlock()

		if !exists {
			errs = append(errs, fmt.Errorf("notifier %s not found", id))
			continue
		}
		if err := notifier.Notify(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("notifier %s failed: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// Close drains the queue, stops the worker and closes every notifier.
func (nm *NotificationManager) Close() error {
	nm.mu.Lock()
	if nm.closed {
		nm.mu.Unlock()
		return nil
	}
	nm.closed = true
	close(nm.jobs)
	nm.mu.Unlock()

	nm.wg.Wait()

	nm.mu.Lock()
	var errs []error
	for id, notifier := range nm.notifiers {
		if err := notifier.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing notifier %s: %w", id, err))
		}
	}
	nm.notifiers = make(map[string]Notifier)
	nm.mu.Unlock()

	return errors.Join(errs...)
}
