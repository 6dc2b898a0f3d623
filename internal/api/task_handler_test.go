package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/task-api/internal/api/shared"
	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/mocks"
	"github.com/phrazzld/task-api/internal/service"
	"github.com/phrazzld/task-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func sampleView(id int64, views int64) *service.TaskView {
	return &service.TaskView{
		Task: &domain.Task{
			ID:        id,
			Title:     "Write spec",
			Status:    domain.TaskStatusTodo,
			CreatedAt: fixedTime,
			UpdatedAt: fixedTime,
		},
		ViewCount: views,
	}
}

func setupRouter(svc service.TaskService) http.Handler {
	r := chi.NewRouter()
	NewTaskHandler(svc, slog.Default()).RegisterRoutes(r)
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	req = req.WithContext(shared.WithTraceID(req.Context(), "trace-123"))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestNewTaskHandlerPanicsWithoutDependencies(t *testing.T) {
	assert.Panics(t, func() { NewTaskHandler(nil, slog.Default()) })
	assert.Panics(t, func() { NewTaskHandler(&mocks.MockTaskService{}, nil) })
}

func TestCreateTask(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &mocks.MockTaskService{
			CreateTaskFn: func(ctx context.Context, fields domain.TaskFields) (*service.TaskView, error) {
				task, err := domain.NewTask(fields)
				require.NoError(t, err)
				task.ID = 1
				return &service.TaskView{Task: task}, nil
			},
		}

		w := doRequest(t, setupRouter(svc), http.MethodPost, "/tasks",
			`{"title":"Write spec","priority":2,"assignee":"sam"}`)

		require.Equal(t, http.StatusCreated, w.Code)
		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, float64(1), resp["id"])
		assert.Equal(t, "TODO", resp["status"])
		assert.Equal(t, float64(0), resp["viewCount"])
		assert.Equal(t, float64(2), resp["priority"])
		assert.Equal(t, "sam", resp["assignee"])
		assert.Nil(t, resp["description"])
		assert.Contains(t, resp, "createdAt")
		assert.Contains(t, resp, "updatedAt")

		require.Len(t, svc.Fields, 1)
		assert.Equal(t, domain.TaskStatus(""), svc.Fields[0].Status, "status defaulting happens in the domain")
	})

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"malformed json", `{"title":`, "Invalid request format"},
		{"unknown field", `{"title":"x","owner":"me"}`, "Invalid request format"},
		{"missing title", `{"description":"d"}`, "Invalid title: required field"},
		{"blank title", `{"title":"   "}`, "Invalid title: required field"},
		{"bad status", `{"title":"x","status":"BLOCKED"}`, "Invalid status: invalid value"},
		{"priority above int32", `{"title":"x","priority":3000000000}`, "Invalid priority: too long"},
		{"priority below int32", `{"title":"x","priority":-2147483649}`, "Invalid priority: too short"},
		{"long assignee", fmt.Sprintf(`{"title":"x","assignee":"%s"}`, bytes.Repeat([]byte("a"), 256)), "Invalid assignee: too long"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mocks.MockTaskService{}

			w := doRequest(t, setupRouter(svc), http.MethodPost, "/tasks", tc.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tc.message, resp.Error)
			assert.Equal(t, "trace-123", resp.TraceID)
			assert.Empty(t, svc.Fields, "service is not called")
		})
	}
}

func TestCreateTaskAcceptsPriorityBounds(t *testing.T) {
	for _, priority := range []int{2147483647, -2147483648} {
		t.Run(fmt.Sprint(priority), func(t *testing.T) {
			svc := &mocks.MockTaskService{
				CreateTaskFn: func(ctx context.Context, fields domain.TaskFields) (*service.TaskView, error) {
					task, err := domain.NewTask(fields)
					if err != nil {
						return nil, err
					}
					task.ID = 1
					return &service.TaskView{Task: task}, nil
				},
			}

			w := doRequest(t, setupRouter(svc), http.MethodPost, "/tasks",
				fmt.Sprintf(`{"title":"x","priority":%d}`, priority))

			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
			var resp TaskResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Priority)
			assert.Equal(t, priority, *resp.Priority)
		})
	}
}

func TestGetTask(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := &mocks.MockTaskService{View: sampleView(7, 3)}

		w := doRequest(t, setupRouter(svc), http.MethodGet, "/tasks/7", "")

		require.Equal(t, http.StatusOK, w.Code)
		var resp TaskResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, int64(7), resp.ID)
		assert.Equal(t, int64(3), resp.ViewCount)
		assert.True(t, fixedTime.Equal(resp.CreatedAt))
		assert.Equal(t, []int64{7}, svc.IDs)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &mocks.MockTaskService{
			Err: service.NewTaskServiceError("get_task", "task not found", store.ErrTaskNotFound),
		}

		w := doRequest(t, setupRouter(svc), http.MethodGet, "/tasks/99", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Task not found", decodeError(t, w).Error)
	})

	for _, path := range []string{"/tasks/abc", "/tasks/0", "/tasks/-4", "/tasks/1.5"} {
		t.Run("malformed id "+path, func(t *testing.T) {
			svc := &mocks.MockTaskService{}

			w := doRequest(t, setupRouter(svc), http.MethodGet, path, "")

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, svc.IDs)
		})
	}

	t.Run("counter unavailable", func(t *testing.T) {
		svc := &mocks.MockTaskService{
			Err: service.NewTaskServiceError("get_task", "failed to record view",
				fmt.Errorf("%w: dial tcp 10.0.0.5:6379: connection refused", store.ErrUnavailable)),
		}

		w := doRequest(t, setupRouter(svc), http.MethodGet, "/tasks/1", "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.NotContains(t, w.Body.String(), "10.0.0.5")
	})
}

func TestListTasks(t *testing.T) {
	t.Run("returns every task", func(t *testing.T) {
		svc := &mocks.MockTaskService{Views: []*service.TaskView{sampleView(1, 2), sampleView(2, 0)}}

		w := doRequest(t, setupRouter(svc), http.MethodGet, "/tasks", "")

		require.Equal(t, http.StatusOK, w.Code)
		var resp []TaskResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp, 2)
		assert.Equal(t, int64(2), resp[0].ViewCount)
		assert.Equal(t, int64(2), resp[1].ID)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		svc := &mocks.MockTaskService{}

		w := doRequest(t, setupRouter(svc), http.MethodGet, "/tasks", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]\n", w.Body.String())
	})

	t.Run("unexpected failure", func(t *testing.T) {
		svc := &mocks.MockTaskService{Err: fmt.Errorf("boom")}

		w := doRequest(t, setupRouter(svc), http.MethodGet, "/tasks", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Failed to list tasks", decodeError(t, w).Error)
	})
}

func TestUpdateTask(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		svc := &mocks.MockTaskService{
			UpdateTaskFn: func(ctx context.Context, id int64, fields domain.TaskFields) (*service.TaskView, error) {
				view := sampleView(id, 4)
				view.Task.Title = fields.Title
				view.Task.Status = fields.Status
				return view, nil
			},
		}

		w := doRequest(t, setupRouter(svc), http.MethodPut, "/tasks/3", `{"title":"Done it","status":"DONE"}`)

		require.Equal(t, http.StatusOK, w.Code)
		var resp TaskResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Done it", resp.Title)
		assert.Equal(t, "DONE", resp.Status)
		assert.Equal(t, int64(4), resp.ViewCount)
		require.Len(t, svc.Fields, 1)
		assert.Nil(t, svc.Fields[0].Description)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &mocks.MockTaskService{Err: store.ErrTaskNotFound}

		w := doRequest(t, setupRouter(svc), http.MethodPut, "/tasks/3", `{"title":"x"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		svc := &mocks.MockTaskService{}

		w := doRequest(t, setupRouter(svc), http.MethodPut, "/tasks/3", `{"status":"DONE"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, svc.IDs)
	})

	t.Run("domain validation from service", func(t *testing.T) {
		svc := &mocks.MockTaskService{
			Err: domain.NewValidationError("description", "is too long", domain.ErrValidation),
		}

		w := doRequest(t, setupRouter(svc), http.MethodPut, "/tasks/3", `{"title":"x"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid description: is too long", decodeError(t, w).Error)
	})
}

func TestDeleteTask(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		svc := &mocks.MockTaskService{}

		w := doRequest(t, setupRouter(svc), http.MethodDelete, "/tasks/5", "")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
		assert.Equal(t, []int64{5}, svc.IDs)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &mocks.MockTaskService{Err: store.ErrTaskNotFound}

		w := doRequest(t, setupRouter(svc), http.MethodDelete, "/tasks/5", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
