package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timeboxhq/timebox/internal/models"
	"github.com/timeboxhq/timebox/internal/services"
)

type getPreferencesResponse struct {
	WorkDuration        int     `json:"work_duration"`
	BreakDuration       int     `json:"break_duration"`
	LongBreakDuration   int     `json:"long_break_duration"`
	SessionsBeforeBreak int     `json:"sessions_before_break"`
	DailyGoalSessions   int     `json:"daily_goal_sessions"`
	WeeklyGoalHours     float64 `json:"weekly_goal_hours"`
	EnableNotifications bool    `json:"enable_notifications"`
	SessionReminders    bool    `json:"session_reminders"`
	BreakReminders      bool    `json:"break_reminders"`
	Theme               string  `json:"theme"`
}

func newGetPreferencesResponse(prefs *models.UserPreferences) getPreferencesResponse {
	return getPreferencesResponse{
		WorkDuration:        prefs.WorkDuration,
		BreakDuration:       prefs.BreakDuration,
		LongBreakDuration:   prefs.LongBreakDuration,
		SessionsBeforeBreak: prefs.SessionsBeforeBreak,
		DailyGoalSessions:   prefs.DailyGoalSessions,
		WeeklyGoalHours:     prefs.WeeklyGoalHours,
		EnableNotifications: prefs.EnableNotifications,
		SessionReminders:    prefs.SessionReminders,
		BreakReminders:      prefs.BreakReminders,
		Theme:               prefs.Theme,
	}
}

func (h *handlerImpl) HandleGetPreferences(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	prefs, err := h.preferences.GetPreferences(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get preferences")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, newGetPreferencesResponse(prefs))
}

type updatePreferencesRequest struct {
	WorkDuration        *int     `json:"work_duration,omitempty" binding:"omitempty,min=1,max=480"`
	BreakDuration       *int     `json:"break_duration,omitempty" binding:"omitempty,min=1,max=120"`
	LongBreakDuration   *int     `json:"long_break_duration,omitempty" binding:"omitempty,min=1,max=240"`
	SessionsBeforeBreak *int     `json:"sessions_before_break,omitempty" binding:"omitempty,min=1,max=20"`
	DailyGoalSessions   *int     `json:"daily_goal_sessions,omitempty" binding:"omitempty,min=1,max=50"`
	WeeklyGoalHours     *float64 `json:"weekly_goal_hours,omitempty" binding:"omitempty,gt=0"`
	EnableNotifications *bool    `json:"enable_notifications,omitempty"`
	SessionReminders    *bool    `json:"session_reminders,omitempty"`
	BreakReminders      *bool    `json:"break_reminders,omitempty"`
	Theme               *string  `json:"theme,omitempty" binding:"omitempty,oneof=light dark auto"`
}

func (h *handlerImpl) HandleUpdatePreferences(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	var req updatePreferencesRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	prefs, err := h.preferences.UpdatePreferences(c, services.UpdatePreferencesParams{
		UserID:              userID,
		WorkDuration:        req.WorkDuration,
		BreakDuration:       req.BreakDuration,
		LongBreakDuration:   req.LongBreakDuration,
		SessionsBeforeBreak: req.SessionsBeforeBreak,
		DailyGoalSessions:   req.DailyGoalSessions,
		WeeklyGoalHours:     req.WeeklyGoalHours,
		EnableNotifications: req.EnableNotifications,
		SessionReminders:    req.SessionReminders,
		BreakReminders:      req.BreakReminders,
		Theme:               req.Theme,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to update preferences")
		switch {
		case errors.Is(err, services.ErrValidation):
			abort(c, newBadRequestError(err.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	h.logger.Info().Msg("updated preferences")
	c.JSON(http.StatusOK, newGetPreferencesResponse(prefs))
}
