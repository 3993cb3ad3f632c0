package ports

import (
	"context"

	"github.com/99minutos/task-api/internal/core/domain"
)

// CreateTaskInput is the DTO for a new task.
type CreateTaskInput struct {
	Owner       string
	Description string
	Completed   *bool
}

// ListTasksInput carries the raw list parameters from the transport layer.
type ListTasksInput struct {
	Owner     string
	Completed *bool
	SortBy    string
	Desc      bool
	Limit     int
	Skip      int
}

// TaskService defines task use cases. Every operation is scoped to the owner.
type TaskService interface {
	Create(ctx context.Context, in CreateTaskInput) (*domain.Task, error)
	Update(ctx context.Context, owner, id string, patch map[string]any) (*domain.Task, error)
	Delete(ctx context.Context, owner, id string) (*domain.Task, error)
	List(ctx context.Context, in ListTasksInput) ([]*domain.Task, error)
	Get(ctx context.Context, owner, id string) (*domain.Task, error)
}
