// Package storetest holds the behavioural contract shared by every
// store.TaskStore implementation. Backends call RunTaskStoreContract from
// their own tests against a freshly migrated database.
package storetest

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty, migrated store and the database behind it.
type Factory func(t *testing.T) (store.TaskStore, *sql.DB)

// RunTaskStoreContract runs the store contract as subtests of t.
func RunTaskStoreContract(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("save assigns id and timestamps", func(t *testing.T) {
		s, _ := newStore(t)
		ctx := context.Background()

		saved, err := s.Save(ctx, newTask(t, domain.TaskFields{Title: "Write spec"}))
		require.NoError(t, err)

		assert.Positive(t, saved.ID)
		assert.Equal(t, "Write spec", saved.Title)
		assert.Equal(t, domain.TaskStatusTodo, saved.Status)
		assert.False(t, saved.CreatedAt.IsZero())
		assert.False(t, saved.UpdatedAt.Before(saved.CreatedAt))
	})

	t.Run("round trips optional fields", func(t *testing.T) {
		s, _ := newStore(t)
		ctx := context.Background()

		desc, assignee, priority := "long form", "robin", 4
		saved, err := s.Save(ctx, newTask(t, domain.TaskFields{
			Title:       "Optional",
			Description: &desc,
			Status:      domain.TaskStatusInProgress,
			Priority:    &priority,
			Assignee:    &assignee,
		}))
		require.NoError(t, err)

		found, err := s.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		require.NotNil(t, found.Description)
		require.NotNil(t, found.Priority)
		require.NotNil(t, found.Assignee)
		assert.Equal(t, desc, *found.Description)
		assert.Equal(t, priority, *found.Priority)
		assert.Equal(t, assignee, *found.Assignee)
		assert.Equal(t, domain.TaskStatusInProgress, found.Status)
		assert.True(t, found.CreatedAt.Equal(saved.CreatedAt))
	})

	t.Run("save of existing task overwrites mutable fields", func(t *testing.T) {
		s, _ := newStore(t)
		ctx := context.Background()

		desc := "first"
		saved, err := s.Save(ctx, newTask(t, domain.TaskFields{Title: "v1", Description: &desc}))
		require.NoError(t, err)

		require.NoError(t, saved.Replace(domain.TaskFields{Title: "v2", Status: domain.TaskStatusDone}))
		updated, err := s.Save(ctx, saved)
		require.NoError(t, err)

		assert.Equal(t, saved.ID, updated.ID)
		assert.Equal(t, "v2", updated.Title)
		assert.Nil(t, updated.Description)
		assert.Equal(t, domain.TaskStatusDone, updated.Status)
		assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
	})

	t.Run("save of missing id is not found", func(t *testing.T) {
		s, _ := newStore(t)

		ts := time.Now().UTC().Truncate(time.Microsecond)
		ghost := &domain.Task{ID: 4242, Title: "ghost", Status: domain.TaskStatusTodo, CreatedAt: ts, UpdatedAt: ts}

		_, err := s.Save(context.Background(), ghost)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("find by id of missing task", func(t *testing.T) {
		s, _ := newStore(t)

		_, err := s.FindByID(context.Background(), 999)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("find all is ordered by id and never nil", func(t *testing.T) {
		s, _ := newStore(t)
		ctx := context.Background()

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, all)
		assert.Empty(t, all)

		for _, title := range []string{"a", "b", "c"} {
			_, err := s.Save(ctx, newTask(t, domain.TaskFields{Title: title}))
			require.NoError(t, err)
		}

		all, err = s.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		titles := make([]string, 0, len(all))
		for i, task := range all {
			titles = append(titles, task.Title)
			if i > 0 {
				assert.Greater(t, task.ID, all[i-1].ID)
			}
		}
		assert.Equal(t, "a,b,c", strings.Join(titles, ","))
	})

	t.Run("exists and delete", func(t *testing.T) {
		s, _ := newStore(t)
		ctx := context.Background()

		saved, err := s.Save(ctx, newTask(t, domain.TaskFields{Title: "doomed"}))
		require.NoError(t, err)

		exists, err := s.ExistsByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.True(t, exists)

		require.NoError(t, s.DeleteByID(ctx, saved.ID))

		exists, err = s.ExistsByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		assert.ErrorIs(t, s.DeleteByID(ctx, saved.ID), store.ErrTaskNotFound)
	})

	t.Run("transaction rollback discards writes", func(t *testing.T) {
		s, db := newStore(t)
		ctx := context.Background()

		sentinel := assert.AnError
		err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			if _, err := s.WithTx(tx).Save(ctx, newTask(t, domain.TaskFields{Title: "rolled back"})); err != nil {
				return err
			}
			return sentinel
		})
		require.ErrorIs(t, err, sentinel)

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("transaction commit keeps writes", func(t *testing.T) {
		s, db := newStore(t)
		ctx := context.Background()

		err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			_, err := s.WithTx(tx).Save(ctx, newTask(t, domain.TaskFields{Title: "committed"}))
			return err
		})
		require.NoError(t, err)

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "committed", all[0].Title)
	})
}

func newTask(t *testing.T, fields domain.TaskFields) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(fields)
	require.NoError(t, err)
	return task
}
