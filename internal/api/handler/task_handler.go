package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/task-api/internal/core/domain"
	"github.com/99minutos/task-api/internal/core/ports"
)

const (
	msgTaskCreated    = "Task created!"
	msgNoTaskFound    = "No task was found."
	msgNoTasksFound   = "Search completed: No tasks was found."
	msgNoTaskSearched = "Search completed: No task was found."
	errCreateTask     = "Unable to create a new task."
)

type TaskHandler struct {
	tasks ports.TaskService
}

func NewTaskHandler(tasks ports.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// Create stores a task owned by the caller.
//
// @Summary      Create a task
// @Tags         tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      createTaskRequest  true  "Task"
// @Success      201   {object}  createTaskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: errCreateTask})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: errCreateTask})
	}

	task, err := h.tasks.Create(c.Request().Context(), ports.CreateTaskInput{
		Owner:       user.ID,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: errCreateTask})
	}

	return c.JSON(http.StatusCreated, createTaskResponse{
		Message: msgTaskCreated,
		Data:    createdTaskData{Description: task.Description, Completed: task.Completed, ID: task.ID},
	})
}

// Update patches one of the caller's tasks.
//
// @Summary      Update a task
// @Tags         tasks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Task id"
// @Param        body  body      map[string]any  true  "Any of description, completed"
// @Success      200   {object}  updateResponse
// @Failure      400   {object}  updateResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  updateResponse
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	patch, err := bindPatch(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: errInvalidBody})
	}

	task, err := h.tasks.Update(c.Request().Context(), user.ID, c.Param("id"), patch)
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.Is(err, domain.ErrInvalidUpdates):
			return c.JSON(http.StatusBadRequest, updateResponse{IsUpdated: false, Message: msgInvalidUpdates})
		case errors.Is(err, domain.ErrTaskNotFound):
			return c.JSON(http.StatusNotFound, updateResponse{IsUpdated: false, Message: msgNoTaskFound})
		case errors.As(err, &ve):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: ve.Message})
		}
		return err
	}

	return c.JSON(http.StatusOK, updateResponse{IsUpdated: true, Data: toTaskResponse(task)})
}

// Delete removes one of the caller's tasks.
//
// @Summary      Delete a task
// @Tags         tasks
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  deleteResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  deleteResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	task, err := h.tasks.Delete(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, deleteResponse{IsDeleted: false, Message: msgNoTaskFound})
		}
		return err
	}

	return c.JSON(http.StatusOK, deleteResponse{IsDeleted: true, Data: toTaskResponse(task)})
}

// List returns the caller's tasks.
//
// @Summary      List tasks
// @Tags         tasks
// @Security     BearerAuth
// @Produce      json
// @Param        completed  query     string  false  "true or false"
// @Param        sortBy     query     string  false  "field:asc|desc, field one of createdAt, updatedAt, description, completed"
// @Param        limit      query     int     false  "Page size"
// @Param        skip       query     int     false  "Offset"
// @Success      200        {object}  searchResponse
// @Failure      401        {object}  errorResponse
// @Failure      500        {object}  errorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	tasks, err := h.tasks.List(c.Request().Context(), parseListQuery(c, user.ID))
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return c.JSON(http.StatusOK, searchResponse{SearchResult: false, Message: msgNoTasksFound})
	}

	return c.JSON(http.StatusOK, searchResponse{SearchResult: true, Data: toTaskResponses(tasks)})
}

// Get returns one of the caller's tasks.
//
// @Summary      Get a task
// @Tags         tasks
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  searchResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  searchResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	task, err := h.tasks.Get(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidID):
			return c.JSON(http.StatusOK, searchResponse{SearchResult: false, Message: msgSearchInvalidID})
		case errors.Is(err, domain.ErrTaskNotFound):
			return c.JSON(http.StatusNotFound, searchResponse{SearchResult: false, Message: msgNoTaskSearched})
		}
		return err
	}

	return c.JSON(http.StatusOK, searchResponse{SearchResult: true, Data: toTaskResponse(task)})
}

// parseListQuery reads completed, sortBy, limit and skip. Values that do not
// parse are left at their zero value so the service ignores them.
func parseListQuery(c echo.Context, owner string) ports.ListTasksInput {
	in := ports.ListTasksInput{Owner: owner}

	if raw := c.QueryParam("completed"); raw != "" {
		completed := raw == "true"
		in.Completed = &completed
	}

	if raw := c.QueryParam("sortBy"); raw != "" {
		field, dir, _ := strings.Cut(raw, ":")
		in.SortBy = field
		in.Desc = dir == "desc"
	}

	if n, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		in.Limit = n
	}
	if n, err := strconv.Atoi(c.QueryParam("skip")); err == nil {
		in.Skip = n
	}

	return in
}
