package repository

import (
	"context"

	"github.com/jaekwang-park/task-api/internal/model"
)

// TaskRepository scopes every lookup and mutation by owner. A task that
// exists but belongs to someone else is reported as sql.ErrNoRows.
type TaskRepository interface {
	Create(ctx context.Context, task model.Task) (model.Task, error)
	GetByID(ctx context.Context, userID, taskID string) (model.Task, error)
	Update(ctx context.Context, task model.Task) (model.Task, error)
	Delete(ctx context.Context, userID, taskID string) error
	List(ctx context.Context, params model.TaskListParams) (model.TaskListResult, error)
}
