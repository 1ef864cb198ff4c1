package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	app "github.com/chrisfahey1010/LakeMapper/internal/app"
	"github.com/chrisfahey1010/LakeMapper/internal/config"
	"github.com/chrisfahey1010/LakeMapper/internal/domain/identity"
	"github.com/chrisfahey1010/LakeMapper/pkg/logger"
	"github.com/chrisfahey1010/LakeMapper/pkg/metrics"
)

const readHeaderTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// Disable default Go metrics collection; the pipeline registers its own
	// metrics on a custom registry.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Optionally expose Prometheus metrics while the batch runs.
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: readHeaderTimeout,
		}
		go func() {
			log.Info(ctx, "serving metrics", logger.String("addr", cfg.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(ctx, "metrics server failed", logger.Error(err))
			}
		}()
		defer srv.Close()
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithInputPaths(cfg.BathymetryPath, cfg.SurveyPath),
		app.WithOutputDir(cfg.OutputDir),
		app.WithTargetCRS(cfg.TargetCRS),
		app.WithExportCRS(cfg.ExportCRS),
		app.WithBufferDistance(cfg.BufferDistance),
		app.WithAreaBounds(cfg.MinLakeArea, cfg.MaxLakeArea),
		app.WithWorkerCount(cfg.WorkerCount),
	)

	summary, err := svc.Run(ctx)
	if err != nil {
		if errors.Is(err, identity.ErrNoMatch) {
			// Nothing to process is a diagnostic outcome, not a crash.
			log.Warn(ctx, "no lake identifiers matched across layers; nothing to do")
			return 0
		}
		log.Error(ctx, "pipeline run failed", logger.Error(err))
		return 1
	}

	log.Info(ctx, "done",
		logger.String("run_id", summary.RunID),
		logger.Int("admitted_lakes", summary.AdmittedLakes),
		logger.String("output_dir", cfg.OutputDir),
	)
	return 0
}
