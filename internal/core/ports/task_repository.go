package ports

import (
	"context"

	"github.com/99minutos/task-api/internal/core/domain"
)

// ListTasksFilter carries the query parameters for listing a user's tasks.
// Owner is always enforced.
type ListTasksFilter struct {
	Owner     string
	Completed *bool  // optional equality filter
	SortBy    string // one of the TaskSortFields, empty = natural order
	Desc      bool
	Limit     int // 0 = no limit
	Skip      int
}

// TaskSortFields lists the task attributes a list may be sorted by.
var TaskSortFields = map[string]struct{}{
	"createdAt":   {},
	"updatedAt":   {},
	"description": {},
	"completed":   {},
}

// TaskRepository is the task store. Every lookup is scoped to an owner.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	FindOwned(ctx context.Context, id, owner string) (*domain.Task, error)
	UpdateOwned(ctx context.Context, id, owner string, changes domain.TaskChanges) (*domain.Task, error)
	DeleteOwned(ctx context.Context, id, owner string) (*domain.Task, error)
	List(ctx context.Context, filter ListTasksFilter) ([]*domain.Task, error)
	DeleteByOwner(ctx context.Context, owner string) (int64, error)
}
