package handler

import (
	"time"

	"github.com/99minutos/task-api/internal/core/domain"
)

type createTaskRequest struct {
	Description string `json:"description" validate:"required"`
	Completed   *bool  `json:"completed,omitempty"`
}

type taskResponse struct {
	ID          string    `json:"_id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Description: t.Description,
		Completed:   t.Completed,
		Owner:       t.Owner,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTaskResponses(tasks []*domain.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return out
}

type createdTaskData struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	ID          string `json:"_id"`
}

type createTaskResponse struct {
	Message string          `json:"message"`
	Data    createdTaskData `json:"data"`
}

type deleteResponse struct {
	IsDeleted bool   `json:"isDeleted"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
}
