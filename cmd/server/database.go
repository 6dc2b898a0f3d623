package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/task-api/internal/config"
	"github.com/phrazzld/task-api/internal/platform/migrate"
	"github.com/phrazzld/task-api/internal/platform/postgres"
	"github.com/phrazzld/task-api/internal/platform/sqlite"
	"github.com/phrazzld/task-api/internal/redact"
	"github.com/phrazzld/task-api/internal/store"
)

// setupAppDatabase opens the relational store named by cfg.URL.
// sqlite:// and file: URLs select SQLite; anything else goes to PostgreSQL.
func setupAppDatabase(
	ctx context.Context,
	cfg config.DatabaseConfig,
	logger *slog.Logger,
) (*sql.DB, migrate.Dialect, error) {
	var (
		db      *sql.DB
		dialect migrate.Dialect
		err     error
	)

	if sqlite.IsSQLiteURL(cfg.URL) {
		dialect = migrate.DialectSQLite
		db, err = sqlite.Open(ctx, cfg.URL)
	} else {
		dialect = migrate.DialectPostgres
		db, err = postgres.Open(ctx, cfg.URL, postgres.PoolOptions{
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute,
		})
	}
	if err != nil {
		logger.Error("database connection failed",
			slog.String("dialect", string(dialect)),
			slog.String("error", redact.Error(err)))
		return nil, "", fmt.Errorf("failed to connect to %s database: %w", dialect, err)
	}

	logger.Info("database connection established", slog.String("dialect", string(dialect)))
	return db, dialect, nil
}

// newTaskStore returns the TaskStore implementation for dialect.
func newTaskStore(db *sql.DB, dialect migrate.Dialect, logger *slog.Logger) store.TaskStore {
	if dialect == migrate.DialectSQLite {
		return sqlite.NewSQLiteTaskStore(db, logger)
	}
	return postgres.NewPostgresTaskStore(db, logger)
}
