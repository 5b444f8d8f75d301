package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/xelth-com/mfgtrack/internal/backendsim"
	"github.com/xelth-com/mfgtrack/internal/buildinfo"
	"github.com/xelth-com/mfgtrack/internal/websocket"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the simulated PHP backend over the mock store",
	Long: `Serves the backend contract (/api/*.php, PHPSESSID sessions, /ws/alerts)
from a seeded in-memory store. Point API_BASE_URL at it to exercise live mode.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.EnsureSeeded(); err != nil {
		return err
	}

	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	sim := backendsim.New(store, hub, cfg.Server.SessionSecret, logger)
	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           sim.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Simulated backend starting",
			zap.String("addr", server.Addr),
			zap.String("version", buildinfo.Version),
			zap.Any("counts", store.Counts()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("Shutting down gracefully")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}
	logger.Info("Shutdown complete")
	return nil
}
