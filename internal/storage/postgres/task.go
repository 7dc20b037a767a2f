package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/bistro/internal/domain/task"
)

const (
	taskColumns = `id, title, description, done, created_at, updated_at`

	listTasksSQL = `SELECT ` + taskColumns + ` FROM tasks ORDER BY id`

	getTaskByIDSQL = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	createTaskSQL = `INSERT INTO tasks (title, description, done)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	updateTaskSQL = `UPDATE tasks SET title = $2, description = $3, done = $4, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at`

	deleteTaskSQL = `DELETE FROM tasks WHERE id = $1`
)

var _ task.Repository = (*TaskRepository)(nil)

// TaskRepository implements task.Repository backed by PostgreSQL.
type TaskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a TaskRepository that uses the given pool.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// List returns all tasks ordered by ID.
func (r *TaskRepository) List(ctx context.Context) ([]task.Task, error) {
	rows, err := r.pool.Query(ctx, listTasksSQL)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	tasks, err := pgx.CollectRows(rows, scanTask)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// GetByID returns a single task. It returns task.ErrNotFound when no task has
// the given ID.
func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	rows, err := r.pool.Query(ctx, getTaskByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting task %d: %w", id, err)
	}

	t, err := pgx.CollectExactlyOneRow(rows, scanTask)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, task.ErrNotFound
		}
		return nil, fmt.Errorf("getting task %d: %w", id, err)
	}
	return &t, nil
}

// Create inserts t and fills in the generated ID and timestamps.
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	err := r.pool.QueryRow(ctx, createTaskSQL, t.Title, t.Description, t.Done).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	return nil
}

// Update overwrites the task with t's ID.
func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	err := r.pool.QueryRow(ctx, updateTaskSQL, t.ID, t.Title, t.Description, t.Done).
		Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.ErrNotFound
		}
		return fmt.Errorf("updating task %d: %w", t.ID, err)
	}
	return nil
}

// Delete removes the task with the given ID.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteTaskSQL, id)
	if err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}
	return nil
}

func scanTask(row pgx.CollectableRow) (task.Task, error) {
	var t task.Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Done, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}
