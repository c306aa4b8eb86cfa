package chamber

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/daniacca/atmosdb/internal/atmos"
)

// Metrics publishes chamber activity to a dedicated Prometheus registry.
// A nil *Metrics records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	steps         *prometheus.CounterVec
	stepDuration  *prometheus.HistogramVec
	firings       *prometheus.CounterVec
	energy        *prometheus.GaugeVec
	temperature   *prometheus.GaugeVec
	pressure      *prometheus.GaugeVec
	totalMoles    *prometheus.GaugeVec
	snapshots     *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// NewMetrics registers the chamber collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atmosdb",
			Name:      "steps_total",
			Help:      "Reaction passes run per chamber, by result.",
		}, []string{"chamber", "result"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "atmosdb",
			Name:      "step_duration_seconds",
			Help:      "Time spent applying the reaction engine once.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}, []string{"chamber"}),
		firings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atmosdb",
			Name:      "reactions_fired_total",
			Help:      "Rules fired per chamber.",
		}, []string{"chamber", "rule"}),
		energy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "atmosdb",
			Name:      "energy_released_joules",
			Help:      "Net energy released by the last pass.",
		}, []string{"chamber"}),
		temperature: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "atmosdb",
			Name:      "temperature_kelvin",
			Help:      "Mixture temperature after the last pass.",
		}, []string{"chamber"}),
		pressure: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "atmosdb",
			Name:      "pressure_kpa",
			Help:      "Mixture pressure after the last pass.",
		}, []string{"chamber"}),
		totalMoles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "atmosdb",
			Name:      "total_moles",
			Help:      "Moles held by the mixture after the last pass.",
		}, []string{"chamber"}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atmosdb",
			Name:      "snapshots_total",
			Help:      "Snapshots written, by store driver and result.",
		}, []string{"driver", "result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "atmosdb",
			Name:      "notifications_total",
			Help:      "Notification deliveries, by notifier and result.",
		}, []string{"notifier", "result"}),
	}
	m.registry.MustRegister(
		m.steps,
		m.stepDuration,
		m.firings,
		m.energy,
		m.temperature,
		m.pressure,
		m.totalMoles,
		m.snapshots,
		m.notifications,
	)
	return m
}

// Registry exposes the registry for scraping.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveStep records one reaction pass and the mixture it left behind.
func (m *Metrics) ObserveStep(id ID, res atmos.Result, err error, duration time.Duration, snap atmos.MixtureSnapshot) {
	if m == nil {
		return
	}
	chamber := string(id)
	m.steps.WithLabelValues(chamber, resultLabel(err)).Inc()
	m.stepDuration.WithLabelValues(chamber).Observe(duration.Seconds())
	for _, f := range res.Fired {
		m.firings.WithLabelValues(chamber, f.RuleID).Inc()
	}
	m.energy.WithLabelValues(chamber).Set(res.EnergyReleased)
	m.observeMixture(chamber, snap)
}

func (m *Metrics) observeMixture(chamber string, snap atmos.MixtureSnapshot) {
	m.temperature.WithLabelValues(chamber).Set(snap.Temperature)
	pressure, moles := 0.0, 0.0
	if snap.Pressure != nil {
		pressure = *snap.Pressure
	}
	if snap.TotalMoles != nil {
		moles = *snap.TotalMoles
	}
	m.pressure.WithLabelValues(chamber).Set(pressure)
	m.totalMoles.WithLabelValues(chamber).Set(moles)
}

// ObserveSnapshot records a snapshot write.
func (m *Metrics) ObserveSnapshot(driver string, err error) {
	if m == nil {
		return
	}
	m.snapshots.WithLabelValues(driver, resultLabel(err)).Inc()
}

// ObserveNotification records one delivery attempt.
func (m *Metrics) ObserveNotification(notifierID string, err error) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(notifierID, resultLabel(err)).Inc()
}

// Forget drops every series of a deleted chamber.
func (m *Metrics) Forget(id ID) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{"chamber": string(id)}
	m.steps.DeletePartialMatch(labels)
	m.stepDuration.DeletePartialMatch(labels)
	m.firings.DeletePartialMatch(labels)
	m.energy.DeletePartialMatch(labels)
	m.temperature.DeletePartialMatch(labels)
	m.pressure.DeletePartialMatch(labels)
	m.totalMoles.DeletePartialMatch(labels)
}
