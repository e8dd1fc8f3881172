package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/timeboxhq/timebox/internal/jalali"
)

// parsePeriodDays accepts Persian digits too. Anything unparseable
// falls back to the default window.
func parsePeriodDays(raw string) int {
	const defaultDays = 30
	if raw == "" {
		return defaultDays
	}

	days, err := strconv.Atoi(jalali.PersianDigitsToASCII(raw))
	if err != nil || days <= 0 {
		return defaultDays
	}
	return days
}

func (h *handlerImpl) HandleDashboardStats(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	stats, err := h.analytics.DashboardStats(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get dashboard stats")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"today": gin.H{
			"date":      jalali.FormatDateFull(requestLocale(c), time.Now()),
			"sessions":  stats.TodaySessions,
			"minutes":   stats.TodayMinutes,
			"avg_focus": stats.TodayAvgFocus,
			"completed": stats.TodayCompleted,
		},
		"tasks": gin.H{
			"total":              stats.TotalTasks,
			"completed":          stats.CompletedTasks,
			"in_progress":        stats.InProgressTasks,
			"overdue":            stats.OverdueTasks,
			"pending":            stats.PendingTasks,
			"priority_breakdown": stats.PriorityBreakdown,
		},
		"active_goals":       stats.ActiveGoals,
		"weekly_minutes":     stats.WeeklyMinutes,
		"weekday_labels":     stats.WeekdayLabels,
		"has_active_session": stats.HasActiveSession,
	})
}

func (h *handlerImpl) HandleQuickStats(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	stats, err := h.analytics.QuickStats(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get quick stats")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"today_sessions": stats.TodaySessions,
		"active_session": stats.ActiveSession,
		"pending_tasks":  stats.PendingTasks,
	})
}

type dailyStatResponse struct {
	Date        string  `json:"date"`
	DateDisplay string  `json:"date_display"`
	Sessions    int     `json:"sessions"`
	Minutes     int     `json:"minutes"`
	AvgFocus    float64 `json:"avg_focus"`
}

type categoryStatResponse struct {
	CategoryID   string `json:"category_id"`
	Name         string `json:"name"`
	Color        string `json:"color"`
	Icon         string `json:"icon"`
	TotalMinutes int    `json:"total_minutes"`
	SessionCount int    `json:"session_count"`
}

func (h *handlerImpl) HandleAnalyticsStats(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	days := parsePeriodDays(c.Query("period"))

	stats, err := h.analytics.AnalyticsStats(c, userID, days)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get analytics stats")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	locale := requestLocale(c)
	daily := make([]dailyStatResponse, len(stats.Daily))
	for i, day := range stats.Daily {
		daily[i] = dailyStatResponse{
			Date:        day.Date.Format(time.DateOnly),
			DateDisplay: jalali.FormatDate(locale, day.Date),
			Sessions:    day.Sessions,
			Minutes:     day.Minutes,
			AvgFocus:    day.AvgFocus,
		}
	}

	categories := make([]categoryStatResponse, len(stats.Categories))
	for i, category := range stats.Categories {
		categories[i] = categoryStatResponse{
			CategoryID:   category.CategoryID,
			Name:         category.Name,
			Color:        category.Color,
			Icon:         category.Icon,
			TotalMinutes: category.TotalMinutes,
			SessionCount: category.SessionCount,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"period_days": stats.Days,
		"start_date":  stats.StartDate.Format(time.DateOnly),
		"end_date":    stats.EndDate.Format(time.DateOnly),
		"totals": gin.H{
			"sessions":           stats.Totals.Sessions,
			"minutes":            stats.Totals.Minutes,
			"hours":              stats.Totals.Hours,
			"avg_focus":          stats.Totals.AvgFocus,
			"avg_session_length": stats.Totals.AvgSessionLength,
		},
		"daily":      daily,
		"categories": categories,
	})
}

func (h *handlerImpl) HandleInsights(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	days := parsePeriodDays(c.Query("period"))

	insights, err := h.analytics.Insights(c, userID, days)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get insights")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	tips := make([]gin.H, len(insights.Tips))
	for i, tip := range insights.Tips {
		tips[i] = gin.H{
			"type":    tip.Type,
			"title":   tip.Title,
			"message": tip.Message,
			"action":  tip.Action,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_sessions":       insights.TotalSessions,
		"total_hours":          insights.TotalHours,
		"avg_focus_rating":     insights.AvgFocusRating,
		"most_productive_hour": insights.MostProductiveHour,
		"best_focus_day":       insights.BestFocusDay,
		"completion_rate":      insights.CompletionRate,
		"streak":               insights.Streak,
		"tips":                 tips,
	})
}
