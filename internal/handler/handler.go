// Package handler exposes the task service over HTTP.
package handler

import (
	"context"
	"net/http"

	"github.com/xenking/bistro/internal/domain/auth"
	"github.com/xenking/bistro/internal/domain/task"
)

// TaskService is the subset of *task.Service used by the handlers.
type TaskService interface {
	List(ctx context.Context) ([]task.Task, error)
	Get(ctx context.Context, id int64) (*task.Task, error)
	Create(ctx context.Context, req task.CreateRequest) (*task.Task, error)
	Update(ctx context.Context, req task.UpdateRequest) (*task.Task, error)
	Delete(ctx context.Context, id int64) error
}

var _ TaskService = (*task.Service)(nil)

// Handler serves the /api/tasks routes.
type Handler struct {
	tasks TaskService
}

// NewHandler returns a Handler backed by tasks.
func NewHandler(tasks TaskService) *Handler {
	return &Handler{tasks: tasks}
}

// Register mounts the task routes on mux. Mutating routes require an API key
// with the tasks:write scope.
func (h *Handler) Register(mux *http.ServeMux, sec *SecurityHandler) {
	write := sec.Require(auth.ScopeTasksWrite)

	mux.HandleFunc("GET /api/tasks", h.ListTasks)
	mux.HandleFunc("GET /api/tasks/{id}", h.GetTask)
	mux.Handle("POST /api/tasks", write(http.HandlerFunc(h.CreateTask)))
	mux.Handle("PUT /api/tasks/{id}", write(http.HandlerFunc(h.UpdateTask)))
	mux.Handle("DELETE /api/tasks/{id}", write(http.HandlerFunc(h.DeleteTask)))
}
