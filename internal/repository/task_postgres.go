package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jaekwang-park/task-api/internal/model"
)

const taskColumns = `id, user_id, title, description, status, due_date, created_at, updated_at`

type PostgresTaskRepository struct {
	db *sql.DB
}

func NewPostgresTask(db *sql.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{db: db}
}

func (r *PostgresTaskRepository) Create(ctx context.Context, task model.Task) (model.Task, error) {
	query := `
		INSERT INTO tasks (user_id, title, description, status, due_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + taskColumns

	row := r.db.QueryRowContext(ctx, query,
		task.UserID, task.Title, task.Description, task.Status, dateArg(task.DueDate),
	)

	return scanTask(row)
}

func (r *PostgresTaskRepository) GetByID(ctx context.Context, userID, taskID string) (model.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1 AND user_id = $2`

	row := r.db.QueryRowContext(ctx, query, taskID, userID)
	return scanTask(row)
}

func (r *PostgresTaskRepository) Update(ctx context.Context, task model.Task) (model.Task, error) {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, due_date = $4, updated_at = now()
		WHERE id = $5 AND user_id = $6
		RETURNING ` + taskColumns

	row := r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, task.Status, dateArg(task.DueDate), task.ID, task.UserID,
	)

	return scanTask(row)
}

func (r *PostgresTaskRepository) Delete(ctx context.Context, userID, taskID string) error {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, taskID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *PostgresTaskRepository) List(ctx context.Context, params model.TaskListParams) (model.TaskListResult, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	perPage := params.PerPage
	if perPage <= 0 {
		perPage = 15
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM tasks WHERE user_id = $1`, params.UserID,
	).Scan(&total); err != nil {
		return model.TaskListResult{}, fmt.Errorf("failed to count tasks: %w", err)
	}

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, params.UserID, perPage, (page-1)*perPage)
	if err != nil {
		return model.TaskListResult{}, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return model.TaskListResult{}, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return model.TaskListResult{}, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return model.TaskListResult{
		Tasks:   tasks,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTask(row scannable) (model.Task, error) {
	var (
		t           model.Task
		description sql.NullString
		dueDate     sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &description,
		&t.Status, &dueDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to scan task: %w", err)
	}
	if description.Valid {
		t.Description = &description.String
	}
	if dueDate.Valid {
		d := time.Date(dueDate.Time.Year(), dueDate.Time.Month(), dueDate.Time.Day(), 0, 0, 0, 0, time.UTC)
		t.DueDate = &d
	}
	return t, nil
}

// dateArg sends due dates as plain YYYY-MM-DD text so the session time zone
// cannot shift the stored day.
func dateArg(d *time.Time) any {
	if d == nil {
		return nil
	}
	return d.Format(model.DateLayout)
}

var _ TaskRepository = (*PostgresTaskRepository)(nil)
