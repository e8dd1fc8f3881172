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

type getGoalResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	CategoryID  string     `json:"category_id"`
	TargetHours float64    `json:"target_hours"`
	Period      string     `json:"period"`
	Status      string     `json:"status"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func newGetGoalResponse(goal *models.Goal) getGoalResponse {
	return getGoalResponse{
		ID:          goal.ID,
		Title:       goal.Title,
		Description: goal.Description,
		CategoryID:  goal.CategoryID,
		TargetHours: goal.TargetHours,
		Period:      goal.Period,
		Status:      goal.Status,
		StartDate:   goal.StartDate,
		EndDate:     goal.EndDate,
		CreatedAt:   goal.CreatedAt,
		UpdatedAt:   goal.UpdatedAt,
	}
}

type goalRequest struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description string  `json:"description,omitempty"`
	CategoryID  string  `json:"category_id" binding:"required"`
	TargetHours float64 `json:"target_hours" binding:"required,gt=0"`
	Period      string  `json:"period" binding:"required,oneof=daily weekly monthly quarterly yearly"`
	Status      string  `json:"status,omitempty" binding:"omitempty,oneof=active paused completed abandoned"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
}

func (h *handlerImpl) goalParams(c *gin.Context, userID string, req *goalRequest) (services.GoalParams, bool) {
	params := services.GoalParams{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		TargetHours: req.TargetHours,
		Period:      req.Period,
		Status:      req.Status,
		StartDate:   time.Now(),
	}
	if params.Status == "" {
		params.Status = models.GoalStatusActive
	}

	if req.StartDate != nil && *req.StartDate != "" {
		startDate, err := jalali.ParseDateTime(*req.StartDate, time.Now())
		if err != nil {
			h.logger.Error().
				Err(err).
				Str("start_date", *req.StartDate).
				Msg("failed to parse start date")
			abort(c, newBadRequestError("invalid start date"))
			return params, false
		}
		params.StartDate = startDate
	}
	if req.EndDate != nil && *req.EndDate != "" {
		endDate, err := jalali.ParseDateTime(*req.EndDate, time.Now())
		if err != nil {
			h.logger.Error().
				Err(err).
				Str("end_date", *req.EndDate).
				Msg("failed to parse end date")
			abort(c, newBadRequestError("invalid end date"))
			return params, false
		}
		params.EndDate = &endDate
	}
	return params, true
}

func (h *handlerImpl) HandleCreateGoal(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	var req goalRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	params, ok := h.goalParams(c, userID, &req)
	if !ok {
		return
	}

	goal, err := h.goals.CreateGoal(c, params)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create goal")
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

	h.logger.Info().Msg("created goal")
	c.JSON(http.StatusCreated, newGetGoalResponse(goal))
}

func (h *handlerImpl) HandleGetGoals(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	goals, err := h.goals.ListGoals(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list goals")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	response := make([]getGoalResponse, len(goals))
	for i, goal := range goals {
		response[i] = newGetGoalResponse(goal)
	}

	c.JSON(http.StatusOK, response)
}

func (h *handlerImpl) HandleUpdateGoal(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	goalID := c.Param("id")
	if goalID == "" {
		h.logger.Error().Msg("no goal id provided")
		abort(c, newBadRequestError("goal id required"))
		return
	}

	var req goalRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	params, ok := h.goalParams(c, userID, &req)
	if !ok {
		return
	}

	goal, err := h.goals.UpdateGoal(c, goalID, params)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to update goal")
		switch {
		case errors.Is(err, services.ErrGoalNotFound):
			abort(c, newNotFoundError(services.ErrGoalNotFound.Error()))
		case errors.Is(err, services.ErrCategoryNotFound):
			abort(c, newNotFoundError(services.ErrCategoryNotFound.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	h.logger.Info().Msg("updated goal")
	c.JSON(http.StatusOK, newGetGoalResponse(goal))
}

func (h *handlerImpl) HandleDeleteGoal(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	goalID := c.Param("id")
	if goalID == "" {
		h.logger.Error().Msg("no goal id provided")
		abort(c, newBadRequestError("goal id required"))
		return
	}

	err := h.goals.DeleteGoal(c, userID, goalID)
	if err != nil {
		if errors.Is(err, services.ErrGoalNotFound) {
			abort(c, newNotFoundError(services.ErrGoalNotFound.Error()))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to delete goal")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	h.logger.Info().Msg("deleted goal")
	c.Status(http.StatusNoContent)
}

type goalProgressResponse struct {
	GoalID             string  `json:"goal_id"`
	PeriodStart        string  `json:"period_start"`
	PeriodEnd          string  `json:"period_end"`
	TotalMinutes       int     `json:"total_minutes"`
	TargetHours        float64 `json:"target_hours"`
	Percentage         float64 `json:"percentage"`
	PeriodStartDisplay string  `json:"period_start_display"`
	PeriodEndDisplay   string  `json:"period_end_display"`
}

func (h *handlerImpl) HandleGoalProgress(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	goalID := c.Param("id")
	if goalID == "" {
		h.logger.Error().Msg("no goal id provided")
		abort(c, newBadRequestError("goal id required"))
		return
	}

	progress, err := h.goals.GoalProgress(c, userID, goalID)
	if err != nil {
		if errors.Is(err, services.ErrGoalNotFound) {
			abort(c, newNotFoundError(services.ErrGoalNotFound.Error()))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to get goal progress")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	locale := requestLocale(c)
	c.JSON(http.StatusOK, goalProgressResponse{
		GoalID:             progress.GoalID,
		PeriodStart:        progress.PeriodStart.Format(time.DateOnly),
		PeriodEnd:          progress.PeriodEnd.Format(time.DateOnly),
		TotalMinutes:       progress.TotalMinutes,
		TargetHours:        progress.TargetHours,
		Percentage:         progress.Percentage,
		PeriodStartDisplay: jalali.FormatDate(locale, progress.PeriodStart),
		PeriodEndDisplay:   jalali.FormatDate(locale, progress.PeriodEnd),
	})
}
