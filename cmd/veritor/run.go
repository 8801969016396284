package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"veritor-hq/veritor/pkg/audit"
	"veritor-hq/veritor/pkg/policy/manager"
	"veritor-hq/veritor/pkg/policy/store"
	"veritor-hq/veritor/pkg/telemetry/metrics"
)

var runFlags struct {
	watch  bool
	dryRun bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the verification engine as a long-lived process",
	Long: `Run loads and compiles the configured policies and keeps the engine
resident: optional hot reload on definition changes, an async audit
trail with scheduled retention pruning, and a Prometheus metrics
endpoint.

Examples:
  # Run with default config
  veritor run

  # Run with custom config and hot reload
  veritor run --config /etc/veritor/config.yaml --watch

  # Validate config and policies without staying resident
  veritor run --dry-run`,
	RunE: runEngine,
}

func init() {
	runCmd.Flags().BoolVarP(&runFlags.watch, "watch", "w", false, "reload policies on file changes")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "load and compile policies, then exit")
	rootCmd.AddCommand(runCmd)
}

func runEngine(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	if runFlags.watch {
		cfg.Policy.Watch = true
	}

	fmt.Printf("Veritor %s\n", Version)

	// Policy definition store
	var backend store.Backend
	switch cfg.Store.Backend {
	case "sqlite":
		backend, err = store.NewSQLiteBackend(cfg.Store.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open policy store: %w", err)
		}
	default:
		backend = store.NewMemoryBackend()
	}
	defer backend.Close()

	// Audit trail
	var recorder *audit.Recorder
	var scheduler *audit.Scheduler
	if cfg.Audit.Enabled {
		var auditStorage audit.Storage
		switch cfg.Audit.Backend {
		case "sqlite":
			auditStorage, err = audit.NewSQLiteStorage(&audit.SQLiteConfig{Path: cfg.Audit.SQLitePath})
			if err != nil {
				return fmt.Errorf("failed to open audit storage: %w", err)
			}
		default:
			auditStorage = audit.NewMemoryStorage()
		}
		defer auditStorage.Close()

		recorder = audit.NewRecorder(auditStorage, &audit.RecorderConfig{
			BufferSize: cfg.Audit.BufferSize,
		})
		defer recorder.Stop()

		if cfg.Audit.PruneSchedule != "" {
			pruner := audit.NewPruner(auditStorage, &audit.RetentionConfig{
				RetentionDays: cfg.Audit.RetentionDays,
				PruneSchedule: cfg.Audit.PruneSchedule,
			})
			scheduler = audit.NewScheduler(pruner)
		}
		fmt.Printf("✓ Audit trail initialized (%s)\n", cfg.Audit.Backend)
	}

	// Metrics
	var engineMetrics *metrics.Metrics
	if cfg.Metrics.Enabled {
		engineMetrics = metrics.New(nil)
	}

	mgr := manager.New(&manager.Config{
		PolicyPath: cfg.Policy.Path,
		Loader: &manager.LoaderConfig{
			MaxFileSize:       cfg.Policy.MaxFileSize,
			AllowedExtensions: []string{".yaml", ".yml"},
			SkipHidden:        true,
		},
		WatchDebounce: cfg.Policy.DebounceInterval,
		Store:         backend,
		Auditor:       auditorOrNil(recorder),
		Metrics:       engineMetrics,
	})

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := mgr.LoadAll(ctx); err != nil {
		if mgr.Registry().Count() == 0 {
			return err
		}
		// Partial failure: the good policies are published, the rest are
		// reported and retried on the next reload.
		fmt.Fprintln(os.Stderr, err)
	}
	fmt.Printf("✓ Policies loaded (%d registered, registry %s)\n",
		mgr.Registry().Count(), mgr.Registry().Version())

	if runFlags.dryRun {
		fmt.Println("✓ Configuration and policies valid")
		return nil
	}

	if scheduler != nil {
		if err := scheduler.Start(ctx); err != nil {
			slog.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer scheduler.Stop()
		}
	}

	errChan := make(chan error, 2)

	var metricsSrv *http.Server
	if engineMetrics != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", engineMetrics.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, "ok")
		})
		metricsSrv = &http.Server{Addr: cfg.Metrics.ListenAddress, Handler: mux}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
		fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", cfg.Metrics.ListenAddress)
	}

	if cfg.Policy.Watch {
		go func() {
			if err := mgr.Watch(ctx); err != nil && ctx.Err() == nil {
				errChan <- fmt.Errorf("policy watcher error: %w", err)
			}
		}()
		fmt.Printf("✓ Watching %s for changes\n", cfg.Policy.Path)
	}

	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	fmt.Println("\nShutting down gracefully...")
	if metricsSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", "error", err)
		}
	}
	fmt.Println("✓ Stopped")
	return nil
}

// auditorOrNil avoids storing a typed nil in the Auditor interface field.
func auditorOrNil(recorder *audit.Recorder) manager.Auditor {
	if recorder == nil {
		return nil
	}
	return recorder
}
