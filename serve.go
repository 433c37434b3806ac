package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"electricity-dashboard/internal/config"
	"electricity-dashboard/internal/electricity/application"
	"electricity-dashboard/internal/electricity/domain/electricity"
	"electricity-dashboard/internal/electricity/infrastructure/memory"
	"electricity-dashboard/internal/electricity/infrastructure/postgres"
	"electricity-dashboard/internal/electricity/infrastructure/rediscache"
	"electricity-dashboard/internal/electricity/infrastructure/synthetic"
	electricityhttp "electricity-dashboard/internal/electricity/interfaces/http"
	"electricity-dashboard/internal/observability/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serves the daily stats, day detail and export endpoints together with
/metrics, /healthz and /readyz.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		db    *sql.DB
		repo  electricity.ReadingRepository
		ready func(context.Context) error
	)
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		mem, err := seededMemoryRepository(cfg.Storage.SeedDays, time.Now())
		if err != nil {
			return err
		}
		logger.WithField("readings", mem.Len()).Info("memory storage seeded")
		repo = mem
	default:
		db, err = openDB(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		repo = postgres.NewReadingRepository(db)
		ready = db.PingContext
	}

	metrics.Init(db, logger)

	if cfg.Redis.Addr != "" {
		store, err := rediscache.NewRedisStore(ctx, rediscache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.WithError(err).Warn("redis unavailable, day detail cache disabled")
		} else {
			defer store.Close()
			cached, err := rediscache.NewDetailCache(repo, store, cfg.Redis.TTL, logger)
			if err != nil {
				return err
			}
			repo = cached
			logger.WithField("addr", cfg.Redis.Addr).Info("day detail cache enabled")
		}
	}

	service, err := application.NewStatsService(repo,
		application.WithQueryTimeout(cfg.Database.QueryTimeout),
		application.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	handler, err := electricityhttp.NewHandler(service,
		electricityhttp.WithLimits(electricityhttp.Limits{DefaultLimit: cfg.API.DefaultLimit, MaxLimit: cfg.API.MaxLimit}),
		electricityhttp.WithExportMaxRows(cfg.API.ExportMaxRows),
		electricityhttp.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      newHTTPHandler(newMux(handler, ready), cfg.HTTP.CORSOrigin, logger),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{"addr": cfg.HTTP.Addr, "storage": cfg.Storage.Driver}).Info("http listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// newMux wires the API routes plus the operational endpoints. ready may be
// nil when there is no backing database to check.
func newMux(handler *electricityhttp.Handler, ready func(context.Context) error) *http.ServeMux {
	mux := http.NewServeMux()
	electricityhttp.Register(mux, handler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func newHTTPHandler(mux http.Handler, corsOrigin string, logger logrus.FieldLogger) http.Handler {
	return requestIDMiddleware(loggingMiddleware(corsMiddleware(mux, corsOrigin), logger))
}

func seededMemoryRepository(days int, now time.Time) (*memory.ReadingRepository, error) {
	if days <= 0 {
		return memory.NewReadingRepository(), nil
	}
	readings, err := synthetic.Generate(synthetic.Options{
		Start:        now.UTC().AddDate(0, 0, -days),
		Days:         days,
		Seed:         1,
		MissingRatio: 0.01,
		NullRatio:    0.01,
	})
	if err != nil {
		return nil, fmt.Errorf("seed memory storage: %w", err)
	}
	return memory.NewReadingRepository(readings...), nil
}
