package api

import (
	"time"

	"github.com/phrazzld/task-api/internal/domain"
	"github.com/phrazzld/task-api/internal/service"
)

// TaskRequest is the payload for creating or fully replacing a task.
// Omitted optional fields are stored as absent; an omitted status becomes TODO.
type TaskRequest struct {
	Title       string  `json:"title"                 validate:"required,notblank,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Status      string  `json:"status,omitempty"      validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority    *int    `json:"priority,omitempty"    validate:"omitempty,min=-2147483648,max=2147483647"`
	Assignee    *string `json:"assignee,omitempty"    validate:"omitempty,max=255"`
}

// Fields converts the request into domain fields.
func (r TaskRequest) Fields() domain.TaskFields {
	return domain.TaskFields{
		Title:       r.Title,
		Description: r.Description,
		Status:      domain.TaskStatus(r.Status),
		Priority:    r.Priority,
		Assignee:    r.Assignee,
	}
}

// TaskResponse is the JSON representation of a task and its view count.
type TaskResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	Priority    *int      `json:"priority"`
	Assignee    *string   `json:"assignee"`
	ViewCount   int64     `json:"viewCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// toTaskResponse converts a service view into its response representation.
func toTaskResponse(view *service.TaskView) TaskResponse {
	task := view.Task
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    task.Priority,
		Assignee:    task.Assignee,
		ViewCount:   view.ViewCount,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// toTaskResponses converts a list of views; the result is never nil.
func toTaskResponses(views []*service.TaskView) []TaskResponse {
	responses := make([]TaskResponse, 0, len(views))
	for _, view := range views {
		responses = append(responses, toTaskResponse(view))
	}
	return responses
}
