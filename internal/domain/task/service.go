// Package task implements the task tracker: validation, persistence through a
// Repository, and per-operation telemetry.
package task

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 2000
)

// ValidationError indicates a request field failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// CreateRequest holds the input for creating a task.
type CreateRequest struct {
	Title       string
	Description string
	Done        bool
}

// UpdateRequest replaces every mutable field of a task.
type UpdateRequest struct {
	ID          int64
	Title       string
	Description string
	Done        bool
}

// Service encapsulates task business logic.
type Service struct {
	tasks  Repository
	tracer trace.Tracer
	ops    metric.Int64Counter
}

// NewService creates a Service. Spans and the operation counter are reported
// to the given providers.
func NewService(tasks Repository, tp trace.TracerProvider, mp metric.MeterProvider) (*Service, error) {
	ops, err := mp.Meter("bistro/task").Int64Counter("tasks.operations",
		metric.WithDescription("Task mutations by operation"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create operations counter")
	}
	return &Service{
		tasks:  tasks,
		tracer: tp.Tracer("bistro/task"),
		ops:    ops,
	}, nil
}

// List returns every task ordered by ID.
func (s *Service) List(ctx context.Context) ([]Task, error) {
	ctx, span := s.tracer.Start(ctx, "task.List")
	defer span.End()

	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list tasks")
	}
	return tasks, nil
}

// Get returns a single task.
func (s *Service) Get(ctx context.Context, id int64) (*Task, error) {
	ctx, span := s.tracer.Start(ctx, "task.Get", trace.WithAttributes(attribute.Int64("task.id", id)))
	defer span.End()

	if err := validateID(id); err != nil {
		return nil, err
	}
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get task %d", id)
	}
	return t, nil
}

// Create validates the request and stores a new task.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Task, error) {
	ctx, span := s.tracer.Start(ctx, "task.Create")
	defer span.End()

	title, err := normalize(req.Title, req.Description)
	if err != nil {
		return nil, err
	}

	t := &Task{
		Title:       title,
		Description: req.Description,
		Done:        req.Done,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, errors.Wrap(err, "create task")
	}
	span.SetAttributes(attribute.Int64("task.id", t.ID))
	s.ops.Add(ctx, 1, metric.WithAttributes(attribute.String("op", "create")))

	return t, nil
}

// Update replaces the task's title, description and completion flag.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*Task, error) {
	ctx, span := s.tracer.Start(ctx, "task.Update", trace.WithAttributes(attribute.Int64("task.id", req.ID)))
	defer span.End()

	if err := validateID(req.ID); err != nil {
		return nil, err
	}
	title, err := normalize(req.Title, req.Description)
	if err != nil {
		return nil, err
	}

	t := &Task{
		ID:          req.ID,
		Title:       title,
		Description: req.Description,
		Done:        req.Done,
	}
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, errors.Wrapf(err, "update task %d", req.ID)
	}
	s.ops.Add(ctx, 1, metric.WithAttributes(attribute.String("op", "update")))

	return t, nil
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "task.Delete", trace.WithAttributes(attribute.Int64("task.id", id)))
	defer span.End()

	if err := validateID(id); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return errors.Wrapf(err, "delete task %d", id)
	}
	s.ops.Add(ctx, 1, metric.WithAttributes(attribute.String("op", "delete")))

	return nil
}

func validateID(id int64) error {
	if id <= 0 {
		return &ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	return nil
}

// normalize trims the title and checks field lengths.
func normalize(title, description string) (string, error) {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return "", &ValidationError{Field: "title", Reason: "is required"}
	case utf8.RuneCountInString(title) > maxTitleLen:
		return "", &ValidationError{Field: "title", Reason: fmt.Sprintf("must be at most %d characters", maxTitleLen)}
	case utf8.RuneCountInString(description) > maxDescriptionLen:
		return "", &ValidationError{Field: "description", Reason: fmt.Sprintf("must be at most %d characters", maxDescriptionLen)}
	}
	return title, nil
}
