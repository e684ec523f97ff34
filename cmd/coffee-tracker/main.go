// main is the entry point of the coffee tracker.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file (plus env overrides)
//  2. Initialise the logger
//  3. Open (and set up) the SQLite database
//  4. Build the router: API, health, metrics and the browser client
//  5. Start the HTTP server in a separate goroutine
//  6. Block until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, close the database
//
// RUNNING THE SERVER:
//
//	go run ./cmd/coffee-tracker --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/coffee-tracker
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/aanand-mishra/coffee-tracker/internal/config"
	"github.com/aanand-mishra/coffee-tracker/internal/http/router"
	"github.com/aanand-mishra/coffee-tracker/internal/logger"
	"github.com/aanand-mishra/coffee-tracker/internal/metrics"
	"github.com/aanand-mishra/coffee-tracker/internal/storage/sqlite"
)

func main() {
	cfg := config.MustLoad()

	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting coffee-tracker",
		zap.String("env", cfg.Env),
		zap.String("version", "1.0.0"),
	)

	// The concrete *sqlite.SQLite is handed to the router as a
	// storage.Storage; nothing above this line knows it is SQLite.
	storage, err := sqlite.New(cfg)
	if err != nil {
		log.Fatal("failed to initialise storage", zap.Error(err))
	}
	defer storage.Close()

	log.Info("storage initialised", zap.String("path", cfg.StoragePath))

	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      router.New(storage, log, metrics.New(), cfg),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	// ListenAndServe blocks, so it runs in its own goroutine and main
	// waits on the signal channel below.
	go func() {
		log.Info("server started", zap.String("address", cfg.HTTPServer.Addr))

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server encountered an error", zap.Error(err))
		}
	}()

	// Buffered so the signal is not dropped if main is briefly busy.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	// Shutdown stops accepting connections and waits for active requests
	// until ctx expires.
	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully", zap.Error(err))
		return
	}

	log.Info("server stopped gracefully")
}
