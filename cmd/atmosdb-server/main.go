package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg := loadServerConfig()
	logger := NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := NewServer(logger)

	st, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to open snapshot store: driver=%s error=%v", cfg.SnapshotDriver, err)
	}
	if st != nil {
		srv.SetStore(st, cfg.SnapshotEveryTicks)
		logger.Infof("Snapshot store ready: driver=%s every_ticks=%d", st.Driver(), cfg.SnapshotEveryTicks)
	} else {
		logger.Infof("Snapshots disabled")
	}

	if _, err := applyInitialRuleset(ctx, srv, cfg); err != nil {
		logger.Fatalf("Failed to prepare chamber: chamber_id=%s error=%v", cfg.ChamberID, err)
	}
	logger.Infof("Chamber ready: chamber_id=%s", cfg.ChamberID)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("atmosdb-server listening on %s", cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("HTTP server failed: %v", err)
		}
	case <-ctx.Done():
		logger.Infof("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("HTTP shutdown: %v", err)
	}
	if err := srv.Close(); err != nil {
		logger.Warnf("Server close: %v", err)
	}
}
