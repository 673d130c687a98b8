package model

import "time"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// DateLayout is the wire and storage format of a task due date.
const DateLayout = "2006-01-02"

// Task is owned by exactly one user. DueDate holds a calendar date at
// midnight UTC; nil means the task has no due date.
type Task struct {
	ID          string
	UserID      string
	Title       string
	Description *string
	Status      TaskStatus
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TaskListParams struct {
	UserID  string
	Page    int
	PerPage int
}

type TaskListResult struct {
	Tasks   []Task
	Total   int
	Page    int
	PerPage int
}

// LastPage mirrors the usual length-aware paginator: never below 1.
func (r TaskListResult) LastPage() int {
	if r.PerPage <= 0 || r.Total == 0 {
		return 1
	}
	return (r.Total + r.PerPage - 1) / r.PerPage
}
