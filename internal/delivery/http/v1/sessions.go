package v1

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/timeboxhq/timebox/internal/jalali"
	"github.com/timeboxhq/timebox/internal/models"
	"github.com/timeboxhq/timebox/internal/services"
)

type getSessionResponse struct {
	ID                string     `json:"id"`
	TaskID            string     `json:"task_id"`
	StartTime         time.Time  `json:"start_time"`
	StartTimeDisplay  string     `json:"start_time_display"`
	EndTime           *time.Time `json:"end_time,omitempty"`
	PlannedMinutes    int        `json:"planned_minutes"`
	ActualMinutes     *int       `json:"actual_minutes,omitempty"`
	DurationDisplay   string     `json:"duration_display,omitempty"`
	Outcome           string     `json:"outcome,omitempty"`
	FocusRating       *int       `json:"focus_rating,omitempty"`
	EnergyBefore      *int       `json:"energy_before,omitempty"`
	EnergyAfter       *int       `json:"energy_after,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	Distractions      string     `json:"distractions,omitempty"`
	KeyInsights       string     `json:"key_insights,omitempty"`
	EfficiencyScore   float64    `json:"efficiency_score"`
	ProductivityScore float64    `json:"productivity_score"`
	IsActive          bool       `json:"is_active"`
}

func newGetSessionResponse(session *models.TimeboxSession, locale jalali.Locale) getSessionResponse {
	resp := getSessionResponse{
		ID:                session.ID,
		TaskID:            session.TaskID,
		StartTime:         session.StartTime,
		StartTimeDisplay:  jalali.FormatDateTime(locale, session.StartTime),
		EndTime:           session.EndTime,
		PlannedMinutes:    session.PlannedMinutes,
		ActualMinutes:     session.ActualMinutes,
		Outcome:           session.Outcome,
		FocusRating:       session.FocusRating,
		EnergyBefore:      session.EnergyBefore,
		EnergyAfter:       session.EnergyAfter,
		Notes:             session.Notes,
		Distractions:      session.Distractions,
		KeyInsights:       session.KeyInsights,
		EfficiencyScore:   session.EfficiencyScore(),
		ProductivityScore: session.ProductivityScore(),
		IsActive:          session.IsActive(),
	}
	if session.ActualMinutes != nil {
		resp.DurationDisplay = session.DurationDisplay()
	}
	return resp
}

type startSessionRequest struct {
	TaskID         string `json:"task_id" binding:"required"`
	PlannedMinutes int    `json:"planned_minutes" binding:"required,min=1"`
	EnergyBefore   *int   `json:"energy_before,omitempty" binding:"omitempty,min=1,max=5"`
}

func (h *handlerImpl) HandleStartSession(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	var req startSessionRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	session, err := h.timebox.StartSession(c, services.StartSessionParams{
		UserID:         userID,
		TaskID:         req.TaskID,
		PlannedMinutes: req.PlannedMinutes,
		EnergyBefore:   req.EnergyBefore,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to start session")
		switch {
		case errors.Is(err, services.ErrActiveSessionExists):
			abort(c, newConflictError(services.ErrActiveSessionExists.Error()))
		case errors.Is(err, services.ErrTaskNotFound):
			abort(c, newNotFoundError(services.ErrTaskNotFound.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	h.logger.Info().
		Str("session_id", session.ID).
		Msg("started session")
	c.JSON(http.StatusCreated, newGetSessionResponse(session, requestLocale(c)))
}

type closeSessionRequest struct {
	Outcome       string `json:"outcome" binding:"required,oneof=completed partial interrupted abandoned"`
	FocusRating   *int   `json:"focus_rating,omitempty" binding:"omitempty,min=1,max=5"`
	EnergyAfter   *int   `json:"energy_after,omitempty" binding:"omitempty,min=1,max=5"`
	Notes         string `json:"notes,omitempty"`
	Distractions  string `json:"distractions,omitempty"`
	KeyInsights   string `json:"key_insights,omitempty"`
	TaskCompleted bool   `json:"task_completed,omitempty"`
}

type closeSessionResponse struct {
	Session       getSessionResponse `json:"session"`
	BreakDuration int                `json:"break_duration"`
}

func (h *handlerImpl) HandleCloseSession(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	sessionID := c.Param("id")
	if sessionID == "" {
		h.logger.Error().Msg("no session id provided")
		abort(c, newBadRequestError("session id required"))
		return
	}

	var req closeSessionRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	result, err := h.timebox.CloseSession(c, services.CloseSessionParams{
		UserID:        userID,
		SessionID:     sessionID,
		Outcome:       req.Outcome,
		FocusRating:   req.FocusRating,
		EnergyAfter:   req.EnergyAfter,
		Notes:         req.Notes,
		Distractions:  req.Distractions,
		KeyInsights:   req.KeyInsights,
		TaskCompleted: req.TaskCompleted,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to close session")
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			abort(c, newNotFoundError(services.ErrSessionNotFound.Error()))
		case errors.Is(err, services.ErrValidation):
			abort(c, newBadRequestError(err.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	h.logger.Info().
		Str("session_id", sessionID).
		Msg("closed session")
	c.JSON(http.StatusOK, closeSessionResponse{
		Session:       newGetSessionResponse(result.Session, requestLocale(c)),
		BreakDuration: result.BreakDuration,
	})
}

func (h *handlerImpl) HandlePauseSession(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	sessionID := c.Param("id")
	if sessionID == "" {
		h.logger.Error().Msg("no session id provided")
		abort(c, newBadRequestError("session id required"))
		return
	}

	result, err := h.timebox.PauseSession(c, userID, sessionID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to pause session")
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			abort(c, newNotFoundError(services.ErrSessionNotFound.Error()))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	h.logger.Info().
		Str("session_id", sessionID).
		Msg("paused session")
	c.JSON(http.StatusOK, closeSessionResponse{
		Session:       newGetSessionResponse(result.Session, requestLocale(c)),
		BreakDuration: result.BreakDuration,
	})
}

const (
	defaultSessionLimit = 50
	maxSessionLimit     = 500
)

// parseSessionLimit clamps the requested page size. The limit sizes the
// result slice, so it must never come from the client unchecked.
func parseSessionLimit(raw string) uint32 {
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || parsed == 0 {
		return defaultSessionLimit
	}
	if parsed > maxSessionLimit {
		return maxSessionLimit
	}
	return uint32(parsed)
}

func (h *handlerImpl) HandleGetSessions(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	sessions, err := h.timebox.ListSessions(c, userID, parseSessionLimit(c.Query("limit")))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list sessions")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	locale := requestLocale(c)
	response := make([]getSessionResponse, len(sessions))
	for i, session := range sessions {
		response[i] = newGetSessionResponse(session, locale)
	}

	c.JSON(http.StatusOK, response)
}

func (h *handlerImpl) HandleActiveSession(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	session, err := h.timebox.ActiveSession(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get active session")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	if session == nil {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"active":  true,
		"session": newGetSessionResponse(session, requestLocale(c)),
	})
}
