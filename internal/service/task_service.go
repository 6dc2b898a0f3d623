package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/platform/logger"
	"github.com/phrazzld/task-api/internal/store"
)

// TaskRepository defines the relational repository interface for the service layer
type TaskRepository interface {
	// Save inserts a new task or overwrites an existing one
	Save(ctx context.Context, task *domain.Task) (*domain.Task, error)

	// FindByID retrieves a task by its ID
	FindByID(ctx context.Context, id int64) (*domain.Task, error)

	// FindAll retrieves every task ordered by ID
	FindAll(ctx context.Context) ([]*domain.Task, error)

	// ExistsByID reports whether a task with the given ID exists
	ExistsByID(ctx context.Context, id int64) (bool, error)

	// DeleteByID removes a task by its ID
	DeleteByID(ctx context.Context, id int64) error

	// WithTx returns a new repository instance that uses the provided transaction
	WithTx(tx *sql.Tx) TaskRepository

	// DB returns the underlying database connection
	DB() *sql.DB
}

// TaskView is a task together with its view count at the time of the call.
type TaskView struct {
	Task      *domain.Task
	ViewCount int64
}

// TaskService provides task-related operations
type TaskService interface {
	// CreateTask persists a new task. Its view count starts at zero.
	CreateTask(ctx context.Context, fields domain.TaskFields) (*TaskView, error)

	// GetTask retrieves a task and records one view of it.
	// The returned count includes that view.
	GetTask(ctx context.Context, id int64) (*TaskView, error)

	// ListTasks retrieves every task with its current view count.
	// Listing does not count as viewing.
	ListTasks(ctx context.Context) ([]*TaskView, error)

	// UpdateTask replaces every mutable field of an existing task.
	UpdateTask(ctx context.Context, id int64, fields domain.TaskFields) (*TaskView, error)

	// DeleteTask removes a task and its view count.
	DeleteTask(ctx context.Context, id int64) error
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	taskRepo TaskRepository
	counter  store.ViewCounter
	logger   *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	taskRepo TaskRepository,
	counter store.ViewCounter,
	logger *slog.Logger,
) (TaskService, error) {
	if taskRepo == nil {
		return nil, domain.NewValidationError("taskRepo", "cannot be nil", domain.ErrValidation)
	}
	if counter == nil {
		return nil, domain.NewValidationError("counter", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		taskRepo: taskRepo,
		counter:  counter,
		logger:   logger.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(ctx context.Context, fields domain.TaskFields) (*TaskView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(fields)
	if err != nil {
		log.Debug("rejected invalid task", slog.String("error", err.Error()))
		return nil, NewTaskServiceError("create_task", "invalid task", err)
	}

	saved, err := s.taskRepo.Save(ctx, task)
	if err != nil {
		log.Error("failed to save task", slog.String("error", err.Error()))
		return nil, NewTaskServiceError("create_task", "failed to save task", err)
	}

	log.Info("task created", slog.Int64("task_id", saved.ID))
	return &TaskView{Task: saved, ViewCount: 0}, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, id int64) (*TaskView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return nil, NewTaskServiceError("get_task", "task not found", store.ErrTaskNotFound)
		}
		log.Error("failed to retrieve task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, NewTaskServiceError("get_task", "failed to retrieve task", err)
	}

	count, err := s.counter.Increment(ctx, id)
	if err != nil {
		log.Error("failed to record task view",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, NewTaskServiceError("get_task", "failed to record view", err)
	}

	log.Debug("retrieved task",
		slog.Int64("task_id", id),
		slog.Int64("view_count", count))
	return &TaskView{Task: task, ViewCount: count}, nil
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(ctx context.Context) ([]*TaskView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tasks, err := s.taskRepo.FindAll(ctx)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, NewTaskServiceError("list_tasks", "failed to list tasks", err)
	}

	ids := make([]int64, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}

	counts, err := s.counter.GetMany(ctx, ids)
	if err != nil {
		log.Error("failed to read view counts",
			slog.String("error", err.Error()),
			slog.Int("task_count", len(tasks)))
		return nil, NewTaskServiceError("list_tasks", "failed to read view counts", err)
	}

	views := make([]*TaskView, len(tasks))
	for i, task := range tasks {
		views[i] = &TaskView{Task: task, ViewCount: counts[task.ID]}
	}

	log.Debug("listed tasks", slog.Int("task_count", len(views)))
	return views, nil
}

// UpdateTask implements TaskService.UpdateTask
// The read and the write run in one transaction so that a concurrent delete
// cannot slip between them.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	id int64,
	fields domain.TaskFields,
) (*TaskView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Task
	err := store.RunInTransaction(ctx, s.taskRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txRepo := s.taskRepo.WithTx(tx)

		task, err := txRepo.FindByID(ctx, id)
		if err != nil {
			if store.IsNotFoundError(err) {
				log.Debug("task not found for update", slog.Int64("task_id", id))
				return NewTaskServiceError("update_task", "task not found", store.ErrTaskNotFound)
			}
			log.Error("failed to retrieve task for update",
				slog.String("error", err.Error()),
				slog.Int64("task_id", id))
			return NewTaskServiceError("update_task", "failed to retrieve task", err)
		}

		if err := task.Replace(fields); err != nil {
			log.Debug("rejected invalid task update",
				slog.String("error", err.Error()),
				slog.Int64("task_id", id))
			return NewTaskServiceError("update_task", "invalid task", err)
		}

		updated, err = txRepo.Save(ctx, task)
		if err != nil {
			if store.IsNotFoundError(err) {
				return NewTaskServiceError("update_task", "task not found", store.ErrTaskNotFound)
			}
			log.Error("failed to save task update",
				slog.String("error", err.Error()),
				slog.Int64("task_id", id))
			return NewTaskServiceError("update_task", "failed to save task", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	count, err := s.counter.Get(ctx, id)
	if err != nil {
		log.Error("failed to read view count",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, NewTaskServiceError("update_task", "failed to read view count", err)
	}

	log.Info("task updated", slog.Int64("task_id", id))
	return &TaskView{Task: updated, ViewCount: count}, nil
}

// DeleteTask implements TaskService.DeleteTask
// The counter is removed only after the row deletion has committed. If that
// fails the orphaned counter is logged and the call still succeeds.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.taskRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txRepo := s.taskRepo.WithTx(tx)

		exists, err := txRepo.ExistsByID(ctx, id)
		if err != nil {
			log.Error("failed to check task existence",
				slog.String("error", err.Error()),
				slog.Int64("task_id", id))
			return NewTaskServiceError("delete_task", "failed to check task", err)
		}
		if !exists {
			log.Debug("task not found for delete", slog.Int64("task_id", id))
			return NewTaskServiceError("delete_task", "task not found", store.ErrTaskNotFound)
		}

		if err := txRepo.DeleteByID(ctx, id); err != nil {
			if store.IsNotFoundError(err) {
				return NewTaskServiceError("delete_task", "task not found", store.ErrTaskNotFound)
			}
			log.Error("failed to delete task",
				slog.String("error", err.Error()),
				slog.Int64("task_id", id))
			return NewTaskServiceError("delete_task", "failed to delete task", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.counter.Delete(ctx, id); err != nil {
		log.Warn("task deleted but view count was not removed",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
	}

	log.Info("task deleted", slog.Int64("task_id", id))
	return nil
}
