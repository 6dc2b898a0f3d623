package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/platform/logger"
	"github.com/phrazzld/task-api/internal/store"
)

// Dialect carries the SQL text and error translation for one database engine.
//
// Insert binds title, description, status, priority, assignee, created_at,
// updated_at. Update binds the same columns minus created_at, then id.
// SelectByID and SelectAll return id, title, description, status, priority,
// assignee, created_at, updated_at.
type Dialect struct {
	// Name identifies the engine in logs.
	Name string

	// Insert adds a row. When InsertReturnsID is true it must end in
	// RETURNING id; otherwise the new ID is read from sql.Result.LastInsertId.
	Insert          string
	InsertReturnsID bool

	Update     string
	SelectByID string
	SelectAll  string
	Exists     string
	Delete     string

	// MapError translates driver errors into store errors.
	MapError func(error) error
}

// TaskStore implements store.TaskStore on top of database/sql.
type TaskStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore creates a TaskStore for the given dialect.
// It accepts a database connection or transaction that should be initialized
// and managed by the caller. If logger is nil, a default logger will be used.
func NewTaskStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *TaskStore {
	if db == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if dialect.MapError == nil {
		dialect.MapError = func(err error) error { return err }
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "task_store"), slog.String("dialect", dialect.Name)),
	}
}

// WithTx implements store.TaskStore.WithTx.
func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &TaskStore{
		db:      tx,
		dialect: s.dialect,
		logger:  s.logger,
	}
}

// Save implements store.TaskStore.Save.
// New tasks (ID == 0) are inserted; existing tasks have every mutable column
// overwritten. The returned task is read back from the database.
func (s *TaskStore) Save(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during save",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return nil, err
	}

	if task.ID == 0 {
		return s.insert(ctx, log, task)
	}
	return s.update(ctx, log, task)
}

func (s *TaskStore) insert(ctx context.Context, log *slog.Logger, task *domain.Task) (*domain.Task, error) {
	args := []any{
		task.Title,
		nullString(task.Description),
		string(task.Status),
		nullInt(task.Priority),
		nullString(task.Assignee),
		task.CreatedAt.UTC(),
		task.UpdatedAt.UTC(),
	}

	var id int64
	if s.dialect.InsertReturnsID {
		if err := s.db.QueryRowContext(ctx, s.dialect.Insert, args...).Scan(&id); err != nil {
			log.Error("failed to insert task", slog.String("error", err.Error()))
			return nil, store.NewStoreError("task", "insert", "failed to insert task", s.dialect.MapError(err))
		}
	} else {
		result, err := s.db.ExecContext(ctx, s.dialect.Insert, args...)
		if err != nil {
			log.Error("failed to insert task", slog.String("error", err.Error()))
			return nil, store.NewStoreError("task", "insert", "failed to insert task", s.dialect.MapError(err))
		}
		if id, err = result.LastInsertId(); err != nil {
			log.Error("failed to read inserted task id", slog.String("error", err.Error()))
			return nil, store.NewStoreError("task", "insert", "failed to read inserted id", err)
		}
	}

	saved, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Info("task created",
		slog.Int64("task_id", saved.ID),
		slog.String("status", string(saved.Status)))
	return saved, nil
}

func (s *TaskStore) update(ctx context.Context, log *slog.Logger, task *domain.Task) (*domain.Task, error) {
	result, err := s.db.ExecContext(ctx, s.dialect.Update,
		task.Title,
		nullString(task.Description),
		string(task.Status),
		nullInt(task.Priority),
		nullString(task.Assignee),
		task.UpdatedAt.UTC(),
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return nil, store.NewStoreError("task", "update", "failed to update task", s.dialect.MapError(err))
	}

	if err := checkRowsAffected(result); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			log.Debug("task not found for update", slog.Int64("task_id", task.ID))
		} else {
			log.Error("failed to get rows affected",
				slog.String("error", err.Error()),
				slog.Int64("task_id", task.ID))
		}
		return nil, err
	}

	saved, err := s.FindByID(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	log.Info("task updated",
		slog.Int64("task_id", saved.ID),
		slog.String("status", string(saved.Status)))
	return saved, nil
}

// FindByID implements store.TaskStore.FindByID.
func (s *TaskStore) FindByID(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := scanTask(s.db.QueryRowContext(ctx, s.dialect.SelectByID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, store.NewStoreError("task", "find", "failed to load task", s.dialect.MapError(err))
	}

	return task, nil
}

// FindAll implements store.TaskStore.FindAll.
func (s *TaskStore) FindAll(ctx context.Context) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, s.dialect.SelectAll)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "find_all", "failed to query tasks", s.dialect.MapError(err))
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("task", "find_all", "failed to scan task", s.dialect.MapError(err))
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "find_all", "failed to iterate tasks", s.dialect.MapError(err))
	}

	log.Debug("found tasks", slog.Int("count", len(tasks)))
	return tasks, nil
}

// ExistsByID implements store.TaskStore.ExistsByID.
func (s *TaskStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var exists bool
	if err := s.db.QueryRowContext(ctx, s.dialect.Exists, id).Scan(&exists); err != nil {
		log.Error("failed to check task existence",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return false, store.NewStoreError("task", "exists", "failed to check task", s.dialect.MapError(err))
	}
	return exists, nil
}

// DeleteByID implements store.TaskStore.DeleteByID.
func (s *TaskStore) DeleteByID(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, s.dialect.Delete, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return store.NewStoreError("task", "delete", "failed to delete task", s.dialect.MapError(err))
	}

	if err := checkRowsAffected(result); err != nil {
		log.Debug("task not deleted", slog.String("error", err.Error()), slog.Int64("task_id", id))
		return err
	}

	log.Info("task deleted", slog.Int64("task_id", id))
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		status      string
		description sql.NullString
		priority    sql.NullInt64
		assignee    sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
	)

	err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&status,
		&priority,
		&assignee,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Description = stringPtr(description)
	task.Priority = intPtr(priority)
	task.Assignee = stringPtr(assignee)
	task.CreatedAt = createdAt.UTC()
	task.UpdatedAt = updatedAt.UTC()
	return &task, nil
}

func checkRowsAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("task", "rows_affected", "failed to get rows affected", err)
	}
	if n == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	i := int(ni.Int64)
	return &i
}
