package domain

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// TaskStatus represents the workflow state of a task.
type TaskStatus string

// Possible task status values. Any status may move to any other.
const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// Field limits enforced by Validate. They mirror the column sizes of the tasks table.
const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 1000
	MaxAssigneeLength    = 255

	// Priority is stored in a 32-bit INTEGER column.
	MinPriority = math.MinInt32
	MaxPriority = math.MaxInt32
)

// IsValid reports whether s is one of the known statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

// ParseTaskStatus converts a raw string into a TaskStatus.
// An empty string yields TaskStatusTodo.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	if raw == "" {
		return TaskStatusTodo, nil
	}
	status := TaskStatus(raw)
	if !status.IsValid() {
		return "", NewValidationError("status", "must be one of TODO, IN_PROGRESS, DONE", ErrInvalidTaskStatus)
	}
	return status, nil
}

// Task is a unit of work tracked by the system.
// ID is zero until the task has been persisted for the first time.
type Task struct {
	ID          int64
	Title       string
	Description *string
	Status      TaskStatus
	Priority    *int
	Assignee    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskFields holds the client-controlled attributes of a task.
// It is used both to create a task and to replace all of its mutable fields.
type TaskFields struct {
	Title       string
	Description *string
	Status      TaskStatus
	Priority    *int
	Assignee    *string
}

// now is replaced in tests that need deterministic timestamps.
// Microsecond truncation matches the precision of the relational stores.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// NewTask creates an unsaved Task from the given fields.
// A missing status defaults to TODO. CreatedAt and UpdatedAt are set to the
// current time. Returns a ValidationError if any field is invalid.
func NewTask(fields TaskFields) (*Task, error) {
	ts := now()
	task := &Task{CreatedAt: ts, UpdatedAt: ts}
	task.apply(fields)

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Replace overwrites every mutable field with the given values and refreshes
// UpdatedAt. Fields that are nil in the input become nil on the task; an empty
// status becomes TODO. ID and CreatedAt are left untouched.
// The task is not modified if the new values fail validation.
func (t *Task) Replace(fields TaskFields) error {
	candidate := *t
	candidate.apply(fields)
	candidate.touch()

	if err := candidate.Validate(); err != nil {
		return err
	}
	*t = candidate
	return nil
}

// Validate checks the task against the domain rules.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return NewValidationError("title", "is required", ErrEmptyTitle)
	}
	if utf8.RuneCountInString(t.Title) > MaxTitleLength {
		return NewValidationError("title", "is too long", ErrValidation)
	}
	if t.Description != nil && utf8.RuneCountInString(*t.Description) > MaxDescriptionLength {
		return NewValidationError("description", "is too long", ErrValidation)
	}
	if t.Assignee != nil && utf8.RuneCountInString(*t.Assignee) > MaxAssigneeLength {
		return NewValidationError("assignee", "is too long", ErrValidation)
	}
	if t.Priority != nil && (*t.Priority < MinPriority || *t.Priority > MaxPriority) {
		return NewValidationError("priority", "is out of range", ErrValidation)
	}
	if !t.Status.IsValid() {
		return NewValidationError("status", "must be one of TODO, IN_PROGRESS, DONE", ErrInvalidTaskStatus)
	}
	if t.ID < 0 {
		return NewValidationError("id", "must not be negative", ErrInvalidID)
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		return NewValidationError("updated_at", "must not precede created_at", ErrValidation)
	}
	return nil
}

func (t *Task) apply(fields TaskFields) {
	t.Title = fields.Title
	t.Description = fields.Description
	t.Status = fields.Status
	if t.Status == "" {
		t.Status = TaskStatusTodo
	}
	t.Priority = fields.Priority
	t.Assignee = fields.Assignee
}

// touch moves UpdatedAt forward, strictly past its previous value.
func (t *Task) touch() {
	ts := now()
	if !ts.After(t.UpdatedAt) {
		ts = t.UpdatedAt.Add(time.Microsecond)
	}
	t.UpdatedAt = ts
}
