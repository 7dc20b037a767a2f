package task

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// --- Mock implementations ---

type mockTaskRepo struct {
	tasks     map[int64]Task
	nextID    int64
	listErr   error
	createErr error
	lastSaved *Task
}

func newTaskRepo(tasks ...Task) *mockTaskRepo {
	m := &mockTaskRepo{tasks: make(map[int64]Task), nextID: 1}
	for _, t := range tasks {
		m.tasks[t.ID] = t
		if t.ID >= m.nextID {
			m.nextID = t.ID + 1
		}
	}
	return m
}

func (m *mockTaskRepo) List(_ context.Context) ([]Task, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]Task, 0, len(m.tasks))
	for id := int64(1); id < m.nextID; id++ {
		if t, ok := m.tasks[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTaskRepo) GetByID(_ context.Context, id int64) (*Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *mockTaskRepo) Create(_ context.Context, t *Task) error {
	if m.createErr != nil {
		return m.createErr
	}
	t.ID = m.nextID
	m.nextID++
	t.CreatedAt = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	t.UpdatedAt = t.CreatedAt
	m.tasks[t.ID] = *t
	m.lastSaved = t
	return nil
}

func (m *mockTaskRepo) Update(_ context.Context, t *Task) error {
	old, ok := m.tasks[t.ID]
	if !ok {
		return ErrNotFound
	}
	t.CreatedAt = old.CreatedAt
	t.UpdatedAt = old.CreatedAt.Add(time.Hour)
	m.tasks[t.ID] = *t
	m.lastSaved = t
	return nil
}

func (m *mockTaskRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

// --- Helpers ---

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	svc, err := NewService(repo, tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider())
	require.NoError(t, err)
	return svc
}

// --- Tests ---

func TestCreate(t *testing.T) {
	tests := []struct {
		name      string
		req       CreateRequest
		wantTitle string
		wantField string
	}{
		{
			name:      "valid",
			req:       CreateRequest{Title: "Buy milk", Description: "2 liters"},
			wantTitle: "Buy milk",
		},
		{
			name:      "title is trimmed",
			req:       CreateRequest{Title: "  Walk the dog \n"},
			wantTitle: "Walk the dog",
		},
		{
			name:      "empty title",
			req:       CreateRequest{Title: "   "},
			wantField: "title",
		},
		{
			name:      "title too long",
			req:       CreateRequest{Title: strings.Repeat("a", 201)},
			wantField: "title",
		},
		{
			name:      "title at limit counts runes",
			req:       CreateRequest{Title: strings.Repeat("é", 200)},
			wantTitle: strings.Repeat("é", 200),
		},
		{
			name:      "description too long",
			req:       CreateRequest{Title: "ok", Description: strings.Repeat("x", 2001)},
			wantField: "description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newTaskRepo()
			svc := newTestService(t, repo)

			got, err := svc.Create(context.Background(), tt.req)
			if tt.wantField != "" {
				var vErr *ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tt.wantField, vErr.Field)
				assert.Nil(t, repo.lastSaved)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(1), got.ID)
			assert.Equal(t, tt.wantTitle, got.Title)
			assert.False(t, got.CreatedAt.IsZero())
		})
	}
}

func TestCreate_RepoError(t *testing.T) {
	repo := newTaskRepo()
	repo.createErr = errors.New("db write failed")
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), CreateRequest{Title: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create task")
}

func TestList(t *testing.T) {
	repo := newTaskRepo(Task{ID: 1, Title: "a"}, Task{ID: 2, Title: "b", Done: true})
	svc := newTestService(t, repo)

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Title)
	assert.True(t, got[1].Done)

	repo.listErr = errors.New("db down")
	_, err = svc.List(context.Background())
	require.Error(t, err)
}

func TestGet(t *testing.T) {
	svc := newTestService(t, newTaskRepo(Task{ID: 7, Title: "seven"}))

	got, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "seven", got.Title)

	_, err = svc.Get(context.Background(), 8)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(context.Background(), 0)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "id", vErr.Field)
}

func TestUpdate(t *testing.T) {
	repo := newTaskRepo(Task{ID: 1, Title: "old", CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)})
	svc := newTestService(t, repo)

	got, err := svc.Update(context.Background(), UpdateRequest{ID: 1, Title: " new ", Done: true})
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.True(t, got.Done)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	_, err = svc.Update(context.Background(), UpdateRequest{ID: 99, Title: "x"})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(context.Background(), UpdateRequest{ID: 1, Title: ""})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "new", repo.tasks[1].Title, "failed update must not be stored")
}

func TestDelete(t *testing.T) {
	repo := newTaskRepo(Task{ID: 1, Title: "a"})
	svc := newTestService(t, repo)

	require.NoError(t, svc.Delete(context.Background(), 1))
	assert.Empty(t, repo.tasks)

	require.ErrorIs(t, svc.Delete(context.Background(), 1), ErrNotFound)

	var vErr *ValidationError
	require.ErrorAs(t, svc.Delete(context.Background(), -3), &vErr)
}
