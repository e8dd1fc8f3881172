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

type getHabitResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CategoryID  string    `json:"category_id"`
	Frequency   string    `json:"frequency"`
	Target      int       `json:"target"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func newGetHabitResponse(habit *models.Habit) getHabitResponse {
	return getHabitResponse{
		ID:          habit.ID,
		Name:        habit.Name,
		Description: habit.Description,
		CategoryID:  habit.CategoryID,
		Frequency:   habit.Frequency,
		Target:      habit.Target,
		IsActive:    habit.IsActive,
		CreatedAt:   habit.CreatedAt,
	}
}

type createHabitRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description,omitempty"`
	CategoryID  string `json:"category_id" binding:"required"`
	Frequency   string `json:"frequency" binding:"required,oneof=daily weekly monthly"`
	Target      int    `json:"target" binding:"required,min=1"`
}

func (h *handlerImpl) HandleCreateHabit(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	var req createHabitRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	habit, err := h.habits.CreateHabit(c, services.HabitParams{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Frequency:   req.Frequency,
		Target:      req.Target,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create habit")
		switch {
		case errors.Is(err, services.ErrCategoryNotFound):
			abort(c, newNotFoundError(services.ErrCategoryNotFound.Error()))
		case errors.Is(err, services.ErrValidation):
			abort(c, newBadRequestError(err.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	h.logger.Info().Msg("created habit")
	c.JSON(http.StatusCreated, newGetHabitResponse(habit))
}

func (h *handlerImpl) HandleGetHabits(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	habits, err := h.habits.ListHabits(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list habits")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	response := make([]getHabitResponse, len(habits))
	for i, habit := range habits {
		response[i] = newGetHabitResponse(habit)
	}

	c.JSON(http.StatusOK, response)
}

func (h *handlerImpl) HandleDeleteHabit(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	habitID := c.Param("id")
	if habitID == "" {
		h.logger.Error().Msg("no habit id provided")
		abort(c, newBadRequestError("habit id required"))
		return
	}

	err := h.habits.DeleteHabit(c, userID, habitID)
	if err != nil {
		if errors.Is(err, services.ErrHabitNotFound) {
			abort(c, newNotFoundError(services.ErrHabitNotFound.Error()))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to delete habit")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	h.logger.Info().Msg("deleted habit")
	c.Status(http.StatusNoContent)
}

type logHabitRequest struct {
	Date      *string `json:"date,omitempty"`
	Completed bool    `json:"completed"`
	Notes     string  `json:"notes,omitempty"`
}

type habitLogResponse struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habit_id"`
	Date      string    `json:"date"`
	Completed bool      `json:"completed"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *handlerImpl) HandleLogHabit(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	habitID := c.Param("id")
	if habitID == "" {
		h.logger.Error().Msg("no habit id provided")
		abort(c, newBadRequestError("habit id required"))
		return
	}

	var req logHabitRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	date := time.Now()
	if req.Date != nil && *req.Date != "" {
		date, err = jalali.ParseDateTime(*req.Date, time.Now())
		if err != nil {
			h.logger.Error().
				Err(err).
				Str("date", *req.Date).
				Msg("failed to parse habit date")
			abort(c, newBadRequestError("invalid date"))
			return
		}
	}

	log, err := h.habits.LogHabit(c, services.HabitLogParams{
		UserID:    userID,
		HabitID:   habitID,
		Date:      date,
		Completed: req.Completed,
		Notes:     req.Notes,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to log habit")
		switch {
		case errors.Is(err, services.ErrHabitNotFound):
			abort(c, newNotFoundError(services.ErrHabitNotFound.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	h.logger.Info().Msg("logged habit")
	c.JSON(http.StatusOK, habitLogResponse{
		ID:        log.ID,
		HabitID:   log.HabitID,
		Date:      log.Date.Format(time.DateOnly),
		Completed: log.Completed,
		Notes:     log.Notes,
		CreatedAt: log.CreatedAt,
	})
}
