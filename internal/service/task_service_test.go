package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/mocks"
	"github.com/phrazzld/task-api/internal/platform/logger"
	"github.com/phrazzld/task-api/internal/platform/redis"
	"github.com/phrazzld/task-api/internal/platform/sqlite"
	"github.com/phrazzld/task-api/internal/service"
	"github.com/phrazzld/task-api/internal/store"
	"github.com/phrazzld/task-api/internal/testdb"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// newTaskRepo returns a repository over a fresh, migrated in-memory database.
func newTaskRepo(t *testing.T) service.TaskRepository {
	t.Helper()

	db := testdb.OpenSQLite(t)
	return service.NewTaskRepositoryAdapter(sqlite.NewSQLiteTaskStore(db, nil), db)
}

// newRedisCounter returns a view counter on a throwaway miniredis instance.
func newRedisCounter(t *testing.T) (*miniredis.Miniredis, store.ViewCounter) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, redis.NewViewCounter(client, "", nil)
}

func newService(t *testing.T, counter store.ViewCounter) service.TaskService {
	t.Helper()

	svc, err := service.NewTaskService(newTaskRepo(t), counter, nil)
	require.NoError(t, err)
	return svc
}

func TestNewTaskServiceValidatesDependencies(t *testing.T) {
	_, err := service.NewTaskService(nil, mocks.NewMockViewCounter(), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = service.NewTaskService(newTaskRepo(t), nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateTask(t *testing.T) {
	t.Run("defaults status and starts at zero views", func(t *testing.T) {
		svc := newService(t, mocks.NewMockViewCounter())

		view, err := svc.CreateTask(context.Background(), domain.TaskFields{Title: "Write spec"})

		require.NoError(t, err)
		assert.Positive(t, view.Task.ID)
		assert.Equal(t, domain.TaskStatusTodo, view.Task.Status)
		assert.Zero(t, view.ViewCount)
		assert.Equal(t, view.Task.CreatedAt, view.Task.UpdatedAt)
	})

	t.Run("rejects blank title without touching the store", func(t *testing.T) {
		svc := newService(t, mocks.NewMockViewCounter())

		_, err := svc.CreateTask(context.Background(), domain.TaskFields{Title: "  "})
		assert.ErrorIs(t, err, domain.ErrValidation)

		views, err := svc.ListTasks(context.Background())
		require.NoError(t, err)
		assert.Empty(t, views)
	})

	t.Run("does not touch the counter", func(t *testing.T) {
		counter := mocks.NewMockViewCounter()
		svc := newService(t, counter)

		_, err := svc.CreateTask(context.Background(), domain.TaskFields{Title: "quiet"})
		require.NoError(t, err)
		assert.Zero(t, counter.Calls("Increment"))
	})
}

func TestGetTaskIncrementsViewCount(t *testing.T) {
	_, counter := newRedisCounter(t)
	svc := newService(t, counter)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, domain.TaskFields{Title: "popular"})
	require.NoError(t, err)

	first, err := svc.GetTask(ctx, created.Task.ID)
	require.NoError(t, err)
	second, err := svc.GetTask(ctx, created.Task.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ViewCount)
	assert.Equal(t, first.ViewCount+1, second.ViewCount)
	assert.Equal(t, "popular", second.Task.Title)
}

func TestGetTaskNotFoundDoesNotCount(t *testing.T) {
	counter := mocks.NewMockViewCounter()
	svc := newService(t, counter)

	_, err := svc.GetTask(context.Background(), 404)

	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.Zero(t, counter.Calls("Increment"))
	assert.False(t, counter.Has(404))
}

func TestGetTaskCounterUnavailable(t *testing.T) {
	counter := mocks.NewMockViewCounter()
	counter.IncrementFn = func(ctx context.Context, id int64) (int64, error) {
		return 0, store.ErrUnavailable
	}
	svc := newService(t, counter)

	created, err := svc.CreateTask(context.Background(), domain.TaskFields{Title: "t"})
	require.NoError(t, err)

	_, err = svc.GetTask(context.Background(), created.Task.ID)
	assert.ErrorIs(t, err, store.ErrUnavailable)

	var svcErr *service.TaskServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "get_task", svcErr.Operation)
}

func TestListTasksDoesNotIncrement(t *testing.T) {
	mr, counter := newRedisCounter(t)
	svc := newService(t, counter)
	ctx := context.Background()

	a, err := svc.CreateTask(ctx, domain.TaskFields{Title: "a"})
	require.NoError(t, err)
	b, err := svc.CreateTask(ctx, domain.TaskFields{Title: "b"})
	require.NoError(t, err)

	_, err = svc.GetTask(ctx, a.Task.ID)
	require.NoError(t, err)

	views, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, a.Task.ID, views[0].Task.ID)
	assert.Equal(t, int64(1), views[0].ViewCount)
	assert.Equal(t, b.Task.ID, views[1].Task.ID)
	assert.Zero(t, views[1].ViewCount)

	_, err = svc.ListTasks(ctx)
	require.NoError(t, err)

	stored, err := mr.Get(redis.DefaultKeyPrefix + "1")
	require.NoError(t, err)
	assert.Equal(t, "1", stored, "listing leaves counters unchanged")
	assert.False(t, mr.Exists(redis.DefaultKeyPrefix+"2"))
}

func TestListTasksEmpty(t *testing.T) {
	svc := newService(t, mocks.NewMockViewCounter())

	views, err := svc.ListTasks(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestListTasksCounterUnavailable(t *testing.T) {
	counter := mocks.NewMockViewCounter()
	counter.GetManyFn = func(ctx context.Context, ids []int64) (map[int64]int64, error) {
		return nil, store.ErrUnavailable
	}
	svc := newService(t, counter)

	_, err := svc.CreateTask(context.Background(), domain.TaskFields{Title: "t"})
	require.NoError(t, err)

	_, err = svc.ListTasks(context.Background())
	assert.ErrorIs(t, err, store.ErrUnavailable)
}

func TestUpdateTask(t *testing.T) {
	t.Run("replaces every mutable field", func(t *testing.T) {
		counter := mocks.NewMockViewCounter()
		svc := newService(t, counter)
		ctx := context.Background()

		created, err := svc.CreateTask(ctx, domain.TaskFields{
			Title:       "draft",
			Description: strPtr("old"),
			Status:      domain.TaskStatusInProgress,
			Priority:    intPtr(2),
			Assignee:    strPtr("lee"),
		})
		require.NoError(t, err)
		counter.Set(created.Task.ID, 5)

		updated, err := svc.UpdateTask(ctx, created.Task.ID, domain.TaskFields{Title: "final"})
		require.NoError(t, err)

		assert.Equal(t, created.Task.ID, updated.Task.ID)
		assert.Equal(t, "final", updated.Task.Title)
		assert.Nil(t, updated.Task.Description)
		assert.Nil(t, updated.Task.Priority)
		assert.Nil(t, updated.Task.Assignee)
		assert.Equal(t, domain.TaskStatusTodo, updated.Task.Status)
		assert.True(t, updated.Task.CreatedAt.Equal(created.Task.CreatedAt))
		assert.True(t, updated.Task.UpdatedAt.After(created.Task.UpdatedAt))
		assert.Equal(t, int64(5), updated.ViewCount, "update reports the count without incrementing")
		assert.Zero(t, counter.Calls("Increment"))

		fetched, err := svc.GetTask(ctx, created.Task.ID)
		require.NoError(t, err)
		assert.Equal(t, "final", fetched.Task.Title)
	})

	t.Run("missing task is not found", func(t *testing.T) {
		svc := newService(t, mocks.NewMockViewCounter())

		_, err := svc.UpdateTask(context.Background(), 77, domain.TaskFields{Title: "x"})
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("invalid fields leave the row untouched", func(t *testing.T) {
		svc := newService(t, mocks.NewMockViewCounter())
		ctx := context.Background()

		created, err := svc.CreateTask(ctx, domain.TaskFields{Title: "keep"})
		require.NoError(t, err)

		_, err = svc.UpdateTask(ctx, created.Task.ID, domain.TaskFields{Title: "ok", Status: "PAUSED"})
		assert.ErrorIs(t, err, domain.ErrInvalidTaskStatus)

		views, err := svc.ListTasks(ctx)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "keep", views[0].Task.Title)
	})
}

func TestDeleteTask(t *testing.T) {
	t.Run("removes the row and the counter", func(t *testing.T) {
		mr, counter := newRedisCounter(t)
		svc := newService(t, counter)
		ctx := context.Background()

		created, err := svc.CreateTask(ctx, domain.TaskFields{Title: "temp"})
		require.NoError(t, err)
		_, err = svc.GetTask(ctx, created.Task.ID)
		require.NoError(t, err)

		require.NoError(t, svc.DeleteTask(ctx, created.Task.ID))

		_, err = svc.GetTask(ctx, created.Task.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		assert.False(t, mr.Exists(redis.DefaultKeyPrefix+"1"))
	})

	t.Run("missing task mutates nothing", func(t *testing.T) {
		counter := mocks.NewMockViewCounter()
		counter.Set(9, 3)
		svc := newService(t, counter)
		ctx := context.Background()

		_, err := svc.CreateTask(ctx, domain.TaskFields{Title: "survivor"})
		require.NoError(t, err)

		err = svc.DeleteTask(ctx, 9)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		assert.Zero(t, counter.Calls("Delete"))
		assert.Equal(t, int64(3), counter.Count(9))

		views, err := svc.ListTasks(ctx)
		require.NoError(t, err)
		assert.Len(t, views, 1)
	})

	t.Run("counter failure is tolerated", func(t *testing.T) {
		counter := mocks.NewMockViewCounter()
		counter.DeleteFn = func(ctx context.Context, id int64) error {
			return store.ErrUnavailable
		}
		buf, log := logger.NewTestLogger(t)
		svc, err := service.NewTaskService(newTaskRepo(t), counter, log)
		require.NoError(t, err)
		ctx := context.Background()

		created, err := svc.CreateTask(ctx, domain.TaskFields{Title: "orphan"})
		require.NoError(t, err)

		require.NoError(t, svc.DeleteTask(ctx, created.Task.ID))
		assert.Equal(t, 1, counter.Calls("Delete"))
		logger.AssertLogContains(t, buf, "view count was not removed")

		_, err = svc.GetTask(ctx, created.Task.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestDeletedTaskCounterRestartsAtZero(t *testing.T) {
	_, counter := newRedisCounter(t)
	svc := newService(t, counter)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, domain.TaskFields{Title: "first"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = svc.GetTask(ctx, created.Task.ID)
		require.NoError(t, err)
	}
	require.NoError(t, svc.DeleteTask(ctx, created.Task.ID))

	count, err := counter.Get(ctx, created.Task.ID)
	require.NoError(t, err)
	assert.Zero(t, count, "a recreated task with this id would start from zero")
}

func TestTaskLifecycleScenario(t *testing.T) {
	_, counter := newRedisCounter(t)
	svc := newService(t, counter)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, domain.TaskFields{Title: "Write spec"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.Task.ID)
	assert.Equal(t, domain.TaskStatusTodo, created.Task.Status)
	assert.Zero(t, created.ViewCount)

	got, err := svc.GetTask(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ViewCount)

	got, err = svc.GetTask(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ViewCount)

	all, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(2), all[0].ViewCount)

	require.NoError(t, svc.DeleteTask(ctx, 1))

	_, err = svc.GetTask(ctx, 1)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}
