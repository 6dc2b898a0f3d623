package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/task-api/internal/config"
	"github.com/phrazzld/task-api/internal/platform/migrate"
	"github.com/phrazzld/task-api/internal/platform/redis"
	"github.com/phrazzld/task-api/internal/service"
	goredis "github.com/redis/go-redis/v9"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	db      *sql.DB
	dialect migrate.Dialect
	redis   *goredis.Client

	taskService service.TaskService
}

// newApplication connects to both stores, applies migrations when enabled and
// wires the task service. On error every resource opened so far is released.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (app *application, err error) {
	app = &application{
		config: cfg,
		logger: logger,
	}
	defer func() {
		if err != nil {
			app.cleanup()
			app = nil
		}
	}()

	app.db, app.dialect, err = setupAppDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return app, err
	}

	if cfg.Database.AutoMigrate {
		if err = migrate.Up(ctx, app.db, app.dialect, logger); err != nil {
			return app, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	app.redis, err = redis.NewClient(ctx, cfg.Redis.URL)
	if err != nil {
		return app, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("redis connection established")

	taskStore := newTaskStore(app.db, app.dialect, logger)
	counter := redis.NewViewCounter(app.redis, cfg.Redis.KeyPrefix, logger)

	app.taskService, err = service.NewTaskService(
		service.NewTaskRepositoryAdapter(taskStore, app.db),
		counter,
		logger,
	)
	if err != nil {
		return app, fmt.Errorf("failed to create task service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is canceled, then shuts down and releases resources.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", slog.String("error", err.Error()))
		}
		app.redis = nil
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
		app.db = nil
	}

	app.logger.Info("application shutdown completed")
}
