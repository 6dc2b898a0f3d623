package postgres

import (
	"log/slog"

	"github.com/phrazzld/task-api/internal/platform/sqlstore"
	"github.com/phrazzld/task-api/internal/store"
)

// Dialect is the PostgreSQL flavour of the task queries.
var Dialect = sqlstore.Dialect{
	Name: "postgres",
	Insert: `
		INSERT INTO tasks (title, description, status, priority, assignee, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
	InsertReturnsID: true,
	Update: `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4, assignee = $5, updated_at = $6
		WHERE id = $7`,
	SelectByID: `
		SELECT id, title, description, status, priority, assignee, created_at, updated_at
		FROM tasks
		WHERE id = $1`,
	SelectAll: `
		SELECT id, title, description, status, priority, assignee, created_at, updated_at
		FROM tasks
		ORDER BY id`,
	Exists:   `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)`,
	Delete:   `DELETE FROM tasks WHERE id = $1`,
	MapError: MapError,
}

// NewPostgresTaskStore creates a TaskStore backed by PostgreSQL.
// It accepts a database connection or transaction that should be initialized
// and managed by the caller. If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *sqlstore.TaskStore {
	return sqlstore.NewTaskStore(db, Dialect, logger)
}
