package service

import (
	"context"
	"database/sql"

	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/store"
)

// NewTaskRepositoryAdapter creates a new adapter that allows a store.TaskStore
// to be used where a TaskRepository is expected.
func NewTaskRepositoryAdapter(taskStore store.TaskStore, db *sql.DB) TaskRepository {
	return &taskRepositoryAdapter{
		taskStore: taskStore,
		db:        db,
	}
}

// taskRepositoryAdapter adapts a store.TaskStore to the TaskRepository interface
type taskRepositoryAdapter struct {
	taskStore store.TaskStore
	db        *sql.DB
}

// Save implements TaskRepository.Save
func (a *taskRepositoryAdapter) Save(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	return a.taskStore.Save(ctx, task)
}

// FindByID implements TaskRepository.FindByID
func (a *taskRepositoryAdapter) FindByID(ctx context.Context, id int64) (*domain.Task, error) {
	return a.taskStore.FindByID(ctx, id)
}

// FindAll implements TaskRepository.FindAll
func (a *taskRepositoryAdapter) FindAll(ctx context.Context) ([]*domain.Task, error) {
	return a.taskStore.FindAll(ctx)
}

// ExistsByID implements TaskRepository.ExistsByID
func (a *taskRepositoryAdapter) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return a.taskStore.ExistsByID(ctx, id)
}

// DeleteByID implements TaskRepository.DeleteByID
func (a *taskRepositoryAdapter) DeleteByID(ctx context.Context, id int64) error {
	return a.taskStore.DeleteByID(ctx, id)
}

// WithTx implements TaskRepository.WithTx
func (a *taskRepositoryAdapter) WithTx(tx *sql.Tx) TaskRepository {
	return &taskRepositoryAdapter{
		taskStore: a.taskStore.WithTx(tx),
		db:        a.db,
	}
}

// DB implements TaskRepository.DB
func (a *taskRepositoryAdapter) DB() *sql.DB {
	return a.db
}
