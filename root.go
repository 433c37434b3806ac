package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"electricity-dashboard/internal/config"
	"electricity-dashboard/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "electricity-dashboard",
	Short: "Daily statistics over hourly electricity readings",
	Long: `electricity-dashboard serves daily production, consumption and price
statistics computed from hourly readings, and ships the tooling around it:
schema migration, synthetic seeding and a terminal client for the API.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $CONFIG_PATH, then built-in defaults)")
}

func loadConfig() (config.Config, error) {
	return config.Load(cfgFile)
}

func newLogger(cfg config.Config) (*logrus.Logger, error) {
	return logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
}

// openDB opens the pgx-backed pool and verifies it is reachable.
func openDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.QueryTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}
