package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/service"
)

// MockTaskService implements service.TaskService for testing
type MockTaskService struct {
	CreateTaskFn func(ctx context.Context, fields domain.TaskFields) (*service.TaskView, error)
	GetTaskFn    func(ctx context.Context, id int64) (*service.TaskView, error)
	ListTasksFn  func(ctx context.Context) ([]*service.TaskView, error)
	UpdateTaskFn func(ctx context.Context, id int64, fields domain.TaskFields) (*service.TaskView, error)
	DeleteTaskFn func(ctx context.Context, id int64) error

	// Default response values
	View  *service.TaskView
	Views []*service.TaskView
	Err   error

	// Call tracking for verification
	mu     sync.Mutex
	IDs    []int64
	Fields []domain.TaskFields
}

var _ service.TaskService = (*MockTaskService)(nil)

// CreateTask implements service.TaskService
func (m *MockTaskService) CreateTask(ctx context.Context, fields domain.TaskFields) (*service.TaskView, error) {
	m.track(0, &fields)
	if m.CreateTaskFn != nil {
		return m.CreateTaskFn(ctx, fields)
	}
	return m.View, m.Err
}

// GetTask implements service.TaskService
func (m *MockTaskService) GetTask(ctx context.Context, id int64) (*service.TaskView, error) {
	m.track(id, nil)
	if m.GetTaskFn != nil {
		return m.GetTaskFn(ctx, id)
	}
	return m.View, m.Err
}

// ListTasks implements service.TaskService
func (m *MockTaskService) ListTasks(ctx context.Context) ([]*service.TaskView, error) {
	if m.ListTasksFn != nil {
		return m.ListTasksFn(ctx)
	}
	return m.Views, m.Err
}

// UpdateTask implements service.TaskService
func (m *MockTaskService) UpdateTask(
	ctx context.Context,
	id int64,
	fields domain.TaskFields,
) (*service.TaskView, error) {
	m.track(id, &fields)
	if m.UpdateTaskFn != nil {
		return m.UpdateTaskFn(ctx, id, fields)
	}
	return m.View, m.Err
}

// DeleteTask implements service.TaskService
func (m *MockTaskService) DeleteTask(ctx context.Context, id int64) error {
	m.track(id, nil)
	if m.DeleteTaskFn != nil {
		return m.DeleteTaskFn(ctx, id)
	}
	return m.Err
}

func (m *MockTaskService) track(id int64, fields *domain.TaskFields) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id != 0 {
		m.IDs = append(m.IDs, id)
	}
	if fields != nil {
		m.Fields = append(m.Fields, *fields)
	}
}
