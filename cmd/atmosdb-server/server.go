package main

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/daniacca/atmosdb/internal/chamber"
	"github.com/daniacca/atmosdb/internal/store"
)

// Server represents the HTTP server for AtmosDB
type Server struct {
	manager       *chamber.Manager
	notifications *chamber.NotificationManager
	metrics       *chamber.Metrics
	logger        *Logger
}

// NewServer creates a new server instance. Chambers created through it share
// one notification manager, one metrics registry and the server logger.
func NewServer(logger *Logger) *Server {
	if logger == nil {
		logger = NewLogger("info")
	}
	metrics := chamber.NewMetrics()

	notifications := chamber.NewNotificationManager()
	notifications.SetLogger(logger)
	notifications.SetMetrics(metrics)

	manager := chamber.NewManager()
	manager.SetLogger(logger)
	manager.SetMetrics(metrics)
	manager.SetNotificationManager(notifications)

	return &Server{
		manager:       manager,
		notifications: notifications,
		metrics:       metrics,
		logger:        logger,
	}
}

// SetStore sets the snapshot store for chambers created from now on.
func (s *Server) SetStore(st store.Store, everyTicks int64) {
	s.manager.SetStore(st, everyTicks)
}

// Handler returns the router for every endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/ruleset/schema", s.handleRulesetSchema)
	mux.HandleFunc("/chambers", s.handleChambers)
	mux.HandleFunc("/chamber/", s.handleChamberRoutes)
	mux.HandleFunc("/notifiers", s.handleNotifiersRoutes)
	mux.HandleFunc("/notifiers/", s.handleNotifiersRoutes)
	return mux
}

// Close stops every chamber, drains pending notifications and closes the
// snapshot store.
func (s *Server) Close() error {
	s.manager.StopAll()
	var errs []error
	if err := s.notifications.Close(); err != nil {
		errs = append(errs, err)
	}
	if st := s.manager.Store(); st != nil {
		if err := st.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
