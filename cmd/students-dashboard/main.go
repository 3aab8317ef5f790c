// main is the entry point of the students dashboard.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Build the snapshot source (JSON file or SQLite) and the record store
//  4. Start the initial load in the background; until it succeeds every
//     reader sees loading = true
//  5. Register all HTTP routes and start the server
//  6. Block until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, close the store
//
// RUNNING THE SERVER:
//
//	go run ./cmd/students-dashboard --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/students-dashboard
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aanand-mishra/students-dashboard/internal/config"
	"github.com/aanand-mishra/students-dashboard/internal/http/router"
	"github.com/aanand-mishra/students-dashboard/internal/metrics"
	"github.com/aanand-mishra/students-dashboard/internal/storage"
	"github.com/aanand-mishra/students-dashboard/internal/storage/jsonfile"
	"github.com/aanand-mishra/students-dashboard/internal/storage/memory"
	"github.com/aanand-mishra/students-dashboard/internal/storage/sqlite"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting students-dashboard",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	// ── 3. Source + Store ─────────────────────────────────────────────────
	source, closeSource, err := openSource(cfg.Source)
	if err != nil {
		log.Error("failed to open source", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeSource.Close()

	store := memory.New(source, memory.Options{
		Logger: log.With(slog.String("component", "store")),
		Strict: cfg.Store.Strict,
	})
	defer store.Close()

	var metricsHandler http.Handler
	if !cfg.Metrics.Disabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		cols, err := metrics.New(reg)
		if err != nil {
			log.Error("failed to register metrics", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer cols.Observe(store)()
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	// ── 4. Initial Load ───────────────────────────────────────────────────
	// Runs in the background. A failure is logged by the store and leaves
	// it in the failed state; POST /api/reload retries.
	go func() {
		if err := store.Load(context.Background()); err != nil &&
			!errors.Is(err, storage.ErrClosed) {
			log.Warn("initial load did not complete; retry with POST /api/reload")
		}
	}()

	// ── 5. HTTP Server ────────────────────────────────────────────────────
	server := &http.Server{
		Addr: cfg.HTTPServer.Addr,
		Handler: router.New(router.Dependencies{
			Store:   store,
			Metrics: metricsHandler,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// ListenAndServe returns http.ErrServerClosed when Shutdown() is
		// called. That's expected — we don't want to log it as an error.
		if err := server.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 6. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		return
	}

	log.Info("server stopped gracefully")
}

// openSource builds the configured snapshot source. The returned closer
// releases whatever the source holds open.
func openSource(cfg config.Source) (storage.Source, io.Closer, error) {
	switch cfg.Kind {
	case config.SourceSQLite:
		db, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	default:
		return jsonfile.New(cfg.Path), closerFunc(func() error { return nil }), nil
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
