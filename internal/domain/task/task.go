package task

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested task does not exist.
var ErrNotFound = errors.New("task not found")

// Task is a single to-do item.
type Task struct {
	ID          int64
	Title       string
	Description string
	Done        bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Repository defines persistence operations for tasks.
type Repository interface {
	List(ctx context.Context) ([]Task, error)
	GetByID(ctx context.Context, id int64) (*Task, error)
	// Create stores t and fills in its ID and timestamps.
	Create(ctx context.Context, t *Task) error
	// Update replaces the stored task with the same ID and fills in t's
	// timestamps. Returns ErrNotFound when no such task exists.
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id int64) error
}
