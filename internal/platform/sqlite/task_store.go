package sqlite

import (
	"log/slog"

	"github.com/phrazzld/task-api/internal/platform/sqlstore"
	"github.com/phrazzld/task-api/internal/store"
)

// Dialect is the SQLite flavour of the task queries.
var Dialect = sqlstore.Dialect{
	Name: "sqlite",
	Insert: `
		INSERT INTO tasks (title, description, status, priority, assignee, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
	Update: `
		UPDATE tasks
		SET title = ?, description = ?, status = ?, priority = ?, assignee = ?, updated_at = ?
		WHERE id = ?`,
	SelectByID: `
		SELECT id, title, description, status, priority, assignee, created_at, updated_at
		FROM tasks
		WHERE id = ?`,
	SelectAll: `
		SELECT id, title, description, status, priority, assignee, created_at, updated_at
		FROM tasks
		ORDER BY id`,
	Exists:   `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = ?)`,
	Delete:   `DELETE FROM tasks WHERE id = ?`,
	MapError: MapError,
}

// NewSQLiteTaskStore creates a TaskStore backed by SQLite.
// If logger is nil, a default logger will be used.
func NewSQLiteTaskStore(db store.DBTX, logger *slog.Logger) *sqlstore.TaskStore {
	return sqlstore.NewTaskStore(db, Dialect, logger)
}
