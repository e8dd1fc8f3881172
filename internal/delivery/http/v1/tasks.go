package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/timeboxhq/timebox/internal/jalali"
	"github.com/timeboxhq/timebox/internal/models"
	"github.com/timeboxhq/timebox/internal/services"
)

type getTaskResponse struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	CategoryID       string     `json:"category_id"`
	GoalID           *string    `json:"goal_id,omitempty"`
	Priority         int        `json:"priority"`
	EnergyLevel      string     `json:"energy_level"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	Status           string     `json:"status"`
	IsCompleted      bool       `json:"is_completed"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	DueDateDisplay   string     `json:"due_date_display,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func newGetTaskResponse(task *models.Task, locale jalali.Locale, now time.Time) getTaskResponse {
	resp := getTaskResponse{
		ID:               task.ID,
		Title:            task.Title,
		Description:      task.Description,
		CategoryID:       task.CategoryID,
		GoalID:           task.GoalID,
		Priority:         task.Priority,
		EnergyLevel:      task.EnergyLevel,
		EstimatedMinutes: task.EstimatedMinutes,
		Status:           task.Status(now),
		IsCompleted:      task.IsCompleted,
		CompletedAt:      task.CompletedAt,
		DueDate:          task.DueDate,
		CreatedAt:        task.CreatedAt,
		UpdatedAt:        task.UpdatedAt,
	}
	if task.DueDate != nil {
		resp.DueDateDisplay = jalali.FormatDate(locale, *task.DueDate)
	}
	return resp
}

type createTaskRequest struct {
	Title            string  `json:"title" binding:"required,max=255"`
	Description      *string `json:"description,omitempty"`
	CategoryID       string  `json:"category_id" binding:"required"`
	GoalID           *string `json:"goal_id,omitempty"`
	Priority         int     `json:"priority" binding:"required,min=1,max=4"`
	EnergyLevel      string  `json:"energy_level" binding:"required,oneof=low medium high"`
	EstimatedMinutes int     `json:"estimated_minutes" binding:"min=0"`
	DueDate          *string `json:"due_date,omitempty"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	params := services.CreateTaskParams{
		UserID:           userID,
		Title:            req.Title,
		CategoryID:       req.CategoryID,
		GoalID:           req.GoalID,
		Priority:         req.Priority,
		EnergyLevel:      req.EnergyLevel,
		EstimatedMinutes: req.EstimatedMinutes,
	}
	if req.Description != nil {
		params.Description = *req.Description
	}
	if req.DueDate != nil && *req.DueDate != "" {
		dueDate, err := jalali.ParseDateTime(*req.DueDate, time.Now())
		if err != nil {
			h.logger.Error().
				Err(err).
				Str("due_date", *req.DueDate).
				Msg("failed to parse due date")
			abort(c, newBadRequestError("invalid due date"))
			return
		}
		params.DueDate = &dueDate
	}

	task, err := h.tasks.CreateTask(c, params)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		switch {
		case errors.Is(err, services.ErrCategoryNotFound):
			abort(c, newNotFoundError(services.ErrCategoryNotFound.Error()))
		case errors.Is(err, services.ErrGoalNotFound):
			abort(c, newNotFoundError(services.ErrGoalNotFound.Error()))
		case errors.Is(err, services.ErrValidation):
			abort(c, newBadRequestError(err.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	h.logger.Info().Msg("created task")
	c.JSON(http.StatusCreated, newGetTaskResponse(task, requestLocale(c), time.Now()))
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	tasks, err := h.tasks.ListTasks(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	locale := requestLocale(c)
	now := time.Now()
	response := make([]getTaskResponse, len(tasks))
	for i, task := range tasks {
		response[i] = newGetTaskResponse(task, locale, now)
	}

	c.JSON(http.StatusOK, response)
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	taskID := c.Param("id")
	if taskID == "" {
		h.logger.Error().Msg("no task id provided")
		abort(c, newBadRequestError("task id required"))
		return
	}

	task, err := h.tasks.GetTaskByID(c, userID, taskID)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			abort(c, newNotFoundError(services.ErrTaskNotFound.Error()))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to get task")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, newGetTaskResponse(task, requestLocale(c), time.Now()))
}

type updateTaskRequest struct {
	Title            *string `json:"title,omitempty"`
	Description      *string `json:"description,omitempty"`
	CategoryID       *string `json:"category_id,omitempty"`
	GoalID           *string `json:"goal_id,omitempty"`
	Priority         *int    `json:"priority,omitempty"`
	EnergyLevel      *string `json:"energy_level,omitempty"`
	EstimatedMinutes *int    `json:"estimated_minutes,omitempty"`
	DueDate          *string `json:"due_date,omitempty"`
	ClearDueDate     bool    `json:"clear_due_date,omitempty"`
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	taskID := c.Param("id")
	if taskID == "" {
		h.logger.Error().Msg("no task id provided")
		abort(c, newBadRequestError("task id required"))
		return
	}

	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	params := services.UpdateTaskParams{
		UserID:           userID,
		TaskID:           taskID,
		Title:            req.Title,
		Description:      req.Description,
		CategoryID:       req.CategoryID,
		GoalID:           req.GoalID,
		Priority:         req.Priority,
		EnergyLevel:      req.EnergyLevel,
		EstimatedMinutes: req.EstimatedMinutes,
		ClearDueDate:     req.ClearDueDate,
	}
	if req.DueDate != nil && *req.DueDate != "" {
		dueDate, err := jalali.ParseDateTime(*req.DueDate, time.Now())
		if err != nil {
			h.logger.Error().
				Err(err).
				Str("due_date", *req.DueDate).
				Msg("failed to parse due date")
			abort(c, newBadRequestError("invalid due date"))
			return
		}
		params.DueDate = &dueDate
	}

	task, err := h.tasks.UpdateTask(c, params)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to update task")
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			abort(c, newNotFoundError(services.ErrTaskNotFound.Error()))
		case errors.Is(err, services.ErrCategoryNotFound):
			abort(c, newNotFoundError(services.ErrCategoryNotFound.Error()))
		case errors.Is(err, services.ErrGoalNotFound):
			abort(c, newNotFoundError(services.ErrGoalNotFound.Error()))
		case errors.Is(err, services.ErrValidation):
			abort(c, newBadRequestError(err.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	h.logger.Info().Msg("updated task")
	c.JSON(http.StatusOK, newGetTaskResponse(task, requestLocale(c), time.Now()))
}

func (h *handlerImpl) HandleToggleTask(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	taskID := c.Param("id")
	if taskID == "" {
		h.logger.Error().Msg("no task id provided")
		abort(c, newBadRequestError("task id required"))
		return
	}

	task, err := h.tasks.ToggleCompletion(c, userID, taskID)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			abort(c, newNotFoundError(services.ErrTaskNotFound.Error()))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to toggle task")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	h.logger.Info().Msg("toggled task completion")
	c.JSON(http.StatusOK, newGetTaskResponse(task, requestLocale(c), time.Now()))
}

type taskProgressResponse struct {
	TaskID               string  `json:"task_id"`
	ElapsedMinutes       int     `json:"elapsed_minutes"`
	EstimatedMinutes     int     `json:"estimated_minutes"`
	CompletionPercentage float64 `json:"completion_percentage"`
	Status               string  `json:"status"`
	HasActiveSession     bool    `json:"has_active_session"`
}

func (h *handlerImpl) HandleTaskProgress(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	taskID := c.Param("id")
	if taskID == "" {
		h.logger.Error().Msg("no task id provided")
		abort(c, newBadRequestError("task id required"))
		return
	}

	progress, err := h.tasks.TaskProgress(c, userID, taskID)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			abort(c, newNotFoundError(services.ErrTaskNotFound.Error()))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to get task progress")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, taskProgressResponse{
		TaskID:               progress.TaskID,
		ElapsedMinutes:       progress.ElapsedMinutes,
		EstimatedMinutes:     progress.EstimatedMinutes,
		CompletionPercentage: progress.CompletionPercentage,
		Status:               progress.Status,
		HasActiveSession:     progress.HasActiveSession,
	})
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	taskID := c.Param("id")
	if taskID == "" {
		h.logger.Error().Msg("no task id provided")
		abort(c, newBadRequestError("task id required"))
		return
	}

	err := h.tasks.DeleteTask(c, userID, taskID)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			abort(c, newNotFoundError(services.ErrTaskNotFound.Error()))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to delete task")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	h.logger.Info().Msg("deleted task")
	c.Status(http.StatusNoContent)
}
