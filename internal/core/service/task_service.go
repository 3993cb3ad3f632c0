package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/task-api/internal/pkg/metrics"
	"github.com/99minutos/task-api/internal/core/domain"
	"github.com/99minutos/task-api/internal/core/ports"
)

// taskFields is the allow-list for Update.
var taskFields = map[string]struct{}{
	"description": {},
	"completed":   {},
}

type TaskService struct {
	repo   ports.TaskRepository
	logger zerolog.Logger
}

func NewTaskService(repo ports.TaskRepository, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, logger: logger}
}

// Create stores a new task owned by in.Owner.
func (s *TaskService) Create(ctx context.Context, in ports.CreateTaskInput) (*domain.Task, error) {
	description, err := domain.NormalizeDescription(in.Description)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &domain.Task{
		Description: description,
		Owner:       in.Owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Completed != nil {
		task.Completed = *in.Completed
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		s.logger.Error().Err(err).Str("owner", in.Owner).Msg("failed to create task")
		return nil, err
	}

	metrics.TasksCreatedTotal.Inc()
	s.logger.Info().Str("task_id", created.ID).Str("owner", in.Owner).Msg("task created")
	return created, nil
}

// Update applies patch to a task the caller owns. Keys outside the allow-list
// reject the whole patch. A foreign, missing or malformed id is ErrTaskNotFound.
func (s *TaskService) Update(ctx context.Context, owner, id string, patch map[string]any) (*domain.Task, error) {
	for key := range patch {
		if _, ok := taskFields[key]; !ok {
			return nil, domain.ErrInvalidUpdates
		}
	}

	var changes domain.TaskChanges
	if raw, ok := patch["description"]; ok {
		v, isString := raw.(string)
		if !isString {
			return nil, domain.NewValidationError("Description must be a string.")
		}
		description, err := domain.NormalizeDescription(v)
		if err != nil {
			return nil, err
		}
		changes.Description = &description
	}
	if raw, ok := patch["completed"]; ok {
		v, isBool := raw.(bool)
		if !isBool {
			return nil, domain.NewValidationError(`The task must have a "completed" status.`)
		}
		changes.Completed = &v
	}

	var (
		task *domain.Task
		err  error
	)
	if changes.Empty() {
		task, err = s.repo.FindOwned(ctx, id, owner)
	} else {
		task, err = s.repo.UpdateOwned(ctx, id, owner, changes)
	}
	return task, notFoundOnInvalidID(err)
}

// Delete removes a task the caller owns and returns it.
func (s *TaskService) Delete(ctx context.Context, owner, id string) (*domain.Task, error) {
	task, err := s.repo.DeleteOwned(ctx, id, owner)
	if err != nil {
		return nil, notFoundOnInvalidID(err)
	}
	metrics.TasksDeletedTotal.Inc()
	return task, nil
}

// List returns the caller's tasks. Unknown sort keys and negative paging values are ignored.
func (s *TaskService) List(ctx context.Context, in ports.ListTasksInput) ([]*domain.Task, error) {
	filter := ports.ListTasksFilter{
		Owner:     in.Owner,
		Completed: in.Completed,
	}
	if _, ok := ports.TaskSortFields[in.SortBy]; ok {
		filter.SortBy = in.SortBy
		filter.Desc = in.Desc
	}
	if in.Limit > 0 {
		filter.Limit = in.Limit
	}
	if in.Skip > 0 {
		filter.Skip = in.Skip
	}

	return s.repo.List(ctx, filter)
}

// Get returns a task the caller owns. A malformed id is reported as domain.ErrInvalidID.
func (s *TaskService) Get(ctx context.Context, owner, id string) (*domain.Task, error) {
	return s.repo.FindOwned(ctx, id, owner)
}

func notFoundOnInvalidID(err error) error {
	if errors.Is(err, domain.ErrInvalidID) {
		return domain.ErrTaskNotFound
	}
	return err
}
