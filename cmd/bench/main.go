// Package main runs the quadtree planner against uniform-grid A* over sweeps
// of generated maps and writes per-trial and per-configuration CSV output.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pthm-cable/quadstar/bench"
	"github.com/pthm-cable/quadstar/config"
	"github.com/pthm-cable/quadstar/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot (empty = use config)")
	repeat := flag.Int("repeat", 0, "Trials per configuration (0 = use config)")
	metricsAddr := flag.String("metrics-addr", "", "Serve prometheus metrics on this address while running (e.g. :9100)")
	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *repeat > 0 {
		cfg.Bench.Trials = *repeat
	}
	if *outputDir != "" {
		cfg.Telemetry.OutputDir = *outputDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *metricsAddr != "" {
		srv := serveMetrics(*metricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	om, err := telemetry.NewOutputManager(cfg.Telemetry.OutputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	defer om.Close()

	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
		os.Exit(1)
	}

	runner, err := bench.NewRunner(cfg, bench.WithOutput(om))
	if err != nil {
		slog.Error("failed to create runner", "error", err)
		os.Exit(1)
	}

	slog.Info("starting benchmark",
		"run_id", runner.RunID(),
		"sizes", cfg.Bench.Sizes,
		"wall_frequencies", cfg.Bench.WallFrequencies,
		"kinds", cfg.Bench.Kinds,
		"trials", cfg.Bench.Trials,
		"output_dir", om.Dir(),
	)

	began := time.Now()
	summaries, err := runner.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Warn("benchmark interrupted", "completed", len(summaries))
			return
		}
		slog.Error("benchmark failed", "error", err)
		os.Exit(1)
	}

	runner.Perf().Stats().LogStats()
	slog.Info("benchmark complete",
		"run_id", runner.RunID(),
		"configurations", len(summaries),
		"elapsed", time.Since(began).Round(time.Millisecond).String(),
	)
}

func serveMetrics(addr string) *http.Server {
	var admin http.ServeMux
	admin.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: &admin}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "error", err)
		}
	}()
	slog.Info("serving metrics", "addr", addr)
	return srv
}
