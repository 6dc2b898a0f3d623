package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/phrazzld/task-api/internal/platform/migrate"
	"github.com/phrazzld/task-api/internal/platform/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateCommand(t *testing.T) {
	dbURL := "sqlite://" + filepath.Join(t.TempDir(), "tasks.db")
	t.Setenv("TASKAPI_DATABASE_URL", dbURL)
	t.Setenv("TASKAPI_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("TASKAPI_SERVER_LOG_LEVEL", "error")

	ctx := context.Background()
	configDir := t.TempDir()

	require.NoError(t, newRootCommand().Run(ctx, []string{"task-api", "-c", configDir, "migrate", "up"}))

	db, err := sqlite.Open(ctx, dbURL)
	require.NoError(t, err)
	version, err := migrate.Version(ctx, db, migrate.DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	require.NoError(t, db.Close())

	require.NoError(t, newRootCommand().Run(ctx, []string{"task-api", "-c", configDir, "migrate", "reset"}))

	db, err = sqlite.Open(ctx, dbURL)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	version, err = migrate.Version(ctx, db, migrate.DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)
}

func TestMigrateCommandRejectsUnknownCommand(t *testing.T) {
	err := newRootCommand().Run(context.Background(), []string{"task-api", "migrate", "sideways"})

	require.Error(t, err)
	assert.ErrorIs(t, err, migrate.ErrUnknownCommand)
}
