package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/task-api/internal/domain"
)

// TaskStore defines the interface for durable task persistence.
type TaskStore interface {
	// Save inserts the task when its ID is zero and otherwise overwrites every
	// mutable column of the existing row. It returns the persisted task with
	// ID, CreatedAt and UpdatedAt populated by the store.
	// Returns ErrTaskNotFound when updating an ID that has no row.
	Save(ctx context.Context, task *domain.Task) (*domain.Task, error)

	// FindByID retrieves a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	FindByID(ctx context.Context, id int64) (*domain.Task, error)

	// FindAll returns every task ordered by ID. The result is never nil.
	FindAll(ctx context.Context) ([]*domain.Task, error)

	// ExistsByID reports whether a task with the given ID exists.
	ExistsByID(ctx context.Context, id int64) (bool, error)

	// DeleteByID removes the task with the given ID.
	// Returns ErrTaskNotFound if no row was deleted. Callers that must not
	// mutate anything for a missing ID should check ExistsByID first inside
	// the same transaction.
	DeleteByID(ctx context.Context, id int64) error

	// WithTx returns a TaskStore that runs every operation on the given
	// transaction. The transaction is owned by the caller.
	//
	// Example usage:
	//   err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
	//       exists, err := taskStore.WithTx(tx).ExistsByID(ctx, id)
	//       ...
	//   })
	WithTx(tx *sql.Tx) TaskStore
}
