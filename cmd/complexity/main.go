// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command complexity starts the Aleutian complexity API server.
//
// The server estimates the time and space complexity of source snippets
// with a heuristic pattern catalog. It does not parse or execute code.
//
// Usage:
//
//	go run ./cmd/complexity
//	go run ./cmd/complexity -port 9090 -config ./complexity.yaml
//
// Settings come from the embedded defaults, an optional YAML file and
// COMPLEXITY_* environment variables (a .env file in the working directory
// is loaded first). See config.EnvVars for the full list.
//
// Example requests:
//
//	# Health check
//	curl http://localhost:12218/v1/complexity/health
//
//	# Analyze a snippet
//	curl -X POST http://localhost:12218/v1/complexity/analyze \
//	  -H "Content-Type: application/json" \
//	  -d '{"dialect": "python", "snippet": "for a in xs:\n    for b in xs:\n        pass"}'
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AleutianAI/AleutianBigO/services/complexity"
	"github.com/AleutianAI/AleutianBigO/services/complexity/catalog"
	"github.com/AleutianAI/AleutianBigO/services/complexity/config"
	"github.com/AleutianAI/AleutianBigO/services/complexity/store"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	// gcInterval is how often Badger value log GC runs for on-disk data.
	gcInterval = 10 * time.Minute

	// shutdownTimeout bounds graceful shutdown.
	shutdownTimeout = 15 * time.Second
)

func main() {
	port := flag.Int("port", 0, "Port to listen on (overrides config)")
	debug := flag.Bool("debug", false, "Enable debug mode")
	configPath := flag.String("config", "", "Path to a YAML config file")
	traceStdout := flag.Bool("trace-stdout", false, "Print spans to stderr")
	otlpEndpoint := flag.String("otlp-endpoint", os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"), "OTLP/gRPC collector address")
	flag.Parse()

	if err := run(*port, *debug, *configPath, telemetryOptions{
		stdout:       *traceStdout,
		otlpEndpoint: *otlpEndpoint,
	}); err != nil {
		slog.Error("Complexity server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(port int, debug bool, configPath string, telOpts telemetryOptions) error {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// A missing .env file is normal.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := setupTelemetry(ctx, telOpts)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			slog.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	var cfg *config.ServiceConfig
	if configPath != "" {
		cfg, err = config.LoadServiceConfigFile(ctx, configPath)
	} else {
		cfg, err = config.GetServiceConfig(ctx)
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = withPort(cfg, port)

	cat, err := catalog.GetCatalog(ctx)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	dbCfg := storeConfig(cfg, slog.Default())
	db, err := store.OpenDB(dbCfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Warn("Failed to close BadgerDB", slog.String("error", err.Error()))
		}
	}()
	go db.RunGC(ctx, gcInterval)

	cache, err := store.NewVerdictCache(cfg.CacheSize, db, cfg.CacheTTL, slog.Default())
	if err != nil {
		return fmt.Errorf("creating verdict cache: %w", err)
	}
	opts := []complexity.ServiceOption{complexity.WithVerdictCache(cache)}
	if cfg.HistoryEnabled {
		history, err := store.NewHistoryStore(db, slog.Default())
		if err != nil {
			return fmt.Errorf("creating history store: %w", err)
		}
		opts = append(opts, complexity.WithHistory(history))
	}

	svc, err := complexity.NewService(cfg, cat, opts...)
	if err != nil {
		return err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	if debug {
		router.Use(gin.Logger())
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	complexity.RegisterRoutes(v1, complexity.NewHandlers(svc))

	printBanner(cfg, cat.Version(), dbCfg.InMemory)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting complexity server", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down complexity server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func printBanner(cfg *config.ServiceConfig, catalogVersion string, inMemory bool) {
	storage := cfg.DataDir
	if inMemory {
		storage = "in-memory (set COMPLEXITY_DATA_DIR to persist)"
	}

	banner := `
╔═══════════════════════════════════════════════════════════════════╗
║                    ALEUTIAN COMPLEXITY SERVER                     ║
╠═══════════════════════════════════════════════════════════════════╣
║                                                                   ║
║  Heuristic time and space complexity for code snippets.           ║
║  Catalog: %-55s ║
║  Storage: %-55s ║
║                                                                   ║
║  Quick Start:                                                     ║
║    curl http://localhost:%d/v1/complexity/health
║    curl http://localhost:%d/v1/complexity/dialects/python/example
║    curl -X POST http://localhost:%d/v1/complexity/analyze \
║      -H "Content-Type: application/json" \
║      -d '{"dialect": "js", "snippet": "for (x of xs) {}"}'
║                                                                   ║
║  Endpoints:                                                       ║
║  ├── Analyze: /analyze, /analyze/batch, /features                 ║
║  ├── Reference: /dialects, /dialects/:dialect/example, /rules     ║
║  ├── History: /history, /history/:id                              ║
║  └── Health: /health, /ready, /metrics                            ║
║                                                                   ║
║  Press Ctrl+C to stop                                             ║
╚═══════════════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, catalogVersion, storage, cfg.Port, cfg.Port, cfg.Port)
}

// withPort returns cfg with the -port flag applied. The loaded config may
// be the shared singleton, so a non-zero port goes on a copy.
func withPort(cfg *config.ServiceConfig, port int) *config.ServiceConfig {
	if port <= 0 || port == cfg.Port {
		return cfg
	}
	c := *cfg
	c.Port = port
	return &c
}

// storeConfig maps the service settings onto the Badger store. Verdict
// cache and history share one instance; without a data directory it lives
// in memory and is lost on restart.
func storeConfig(cfg *config.ServiceConfig, logger *slog.Logger) store.Config {
	if cfg.DataDir == "" {
		return store.InMemoryConfig()
	}
	return store.Config{
		Path:       cfg.DataDir,
		SyncWrites: cfg.SyncWrites,
		Logger:     logger,
	}
}
