package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

type analyticsServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
	cache  *gocache.Cache
}

func NewAnalyticsService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
	cacheTTL time.Duration,
) AnalyticsService {
	return &analyticsServiceImpl{
		logger: logger,
		pgPool: pgPool,
		cache:  gocache.New(cacheTTL, 2*cacheTTL),
	}
}

func (s *analyticsServiceImpl) AnalyticsStats(ctx context.Context, userID string, days int) (*AnalyticsStats, error) {
	days = coerceDays(days)
	start, end := analyticsWindow(time.Now(), days)

	// The cache only absorbs rapid repeated polling; a miss always
	// recomputes from source data.
	cacheKey := fmt.Sprintf("analytics:%s:%d:%s:%s",
		userID, days, start.Format(time.DateOnly), end.Format(time.DateOnly))
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(*AnalyticsStats), nil
	}

	stats, err := s.selectSessionStats(ctx, userID, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	payload := buildAnalyticsStats(stats, start, end, days)
	s.cache.SetDefault(cacheKey, payload)

	s.logger.Debug().
		Str("user_id", userID).
		Int("days", days).
		Int("sessions", payload.Totals.Sessions).
		Msg("computed analytics stats")
	return payload, nil
}

func (s *analyticsServiceImpl) selectSessionStats(ctx context.Context, userID string, from, toExclusive time.Time) ([]sessionStat, error) {
	const selectSessionStatsQuery = `
SELECT s.start_time,
       COALESCE(s.actual_minutes, 0),
       s.planned_minutes,
       s.focus_rating,
       COALESCE(s.outcome, ''),
       c.id,
       c.name,
       c.color,
       c.icon
FROM timebox_sessions s
         JOIN tasks t ON t.id = s.task_id
         JOIN categories c ON c.id = t.category_id
WHERE s.user_id = $1
  AND s.start_time >= $2
  AND s.start_time < $3
ORDER BY s.start_time
`
	rows, err := s.pgPool.Query(ctx, selectSessionStatsQuery, userID, from, toExclusive)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select session stats")
		return nil, err
	}
	defer rows.Close()

	var stats []sessionStat
	for rows.Next() {
		var stat sessionStat
		err = rows.Scan(
			&stat.StartTime,
			&stat.ActualMinutes,
			&stat.PlannedMinutes,
			&stat.FocusRating,
			&stat.Outcome,
			&stat.CategoryID,
			&stat.CategoryName,
			&stat.CategoryColor,
			&stat.CategoryIcon,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan session stat")
			return nil, err
		}
		stats = append(stats, stat)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	return stats, nil
}

func (s *analyticsServiceImpl) DashboardStats(ctx context.Context, userID string) (*DashboardStats, error) {
	now := time.Now()
	today := dateOnly(now)
	tomorrow := today.AddDate(0, 0, 1)

	stats := new(DashboardStats)

	const selectTodayQuery = `
SELECT COUNT(*),
       COALESCE(SUM(actual_minutes), 0),
       COALESCE(AVG(focus_rating), 0),
       EXISTS(SELECT 1 FROM timebox_sessions WHERE user_id = $1 AND end_time IS NULL)
FROM timebox_sessions
WHERE user_id = $1
  AND start_time >= $2
  AND start_time < $3
`
	err := s.pgPool.QueryRow(
		ctx,
		selectTodayQuery,
		userID,
		today,
		tomorrow,
	).Scan(
		&stats.TodaySessions,
		&stats.TodayMinutes,
		&stats.TodayAvgFocus,
		&stats.HasActiveSession,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select today stats")
		return nil, err
	}
	stats.TodayAvgFocus = round1(stats.TodayAvgFocus)

	const selectTaskCountsQuery = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE is_completed),
       COUNT(*) FILTER (WHERE NOT is_completed),
       COUNT(*) FILTER (WHERE NOT is_completed AND due_date < $2),
       COUNT(*) FILTER (WHERE is_completed AND completed_at >= $3 AND completed_at < $4),
       COUNT(*) FILTER (WHERE NOT is_completed AND priority = 1),
       COUNT(*) FILTER (WHERE NOT is_completed AND priority = 2),
       COUNT(*) FILTER (WHERE NOT is_completed AND priority = 3),
       COUNT(*) FILTER (WHERE NOT is_completed AND priority = 4)
FROM tasks
WHERE user_id = $1
`
	var critical, high, medium, low int
	err = s.pgPool.QueryRow(
		ctx,
		selectTaskCountsQuery,
		userID,
		now,
		today,
		tomorrow,
	).Scan(
		&stats.TotalTasks,
		&stats.CompletedTasks,
		&stats.InProgressTasks,
		&stats.OverdueTasks,
		&stats.TodayCompleted,
		&critical,
		&high,
		&medium,
		&low,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select task counts")
		return nil, err
	}
	stats.PendingTasks = stats.InProgressTasks
	stats.PriorityBreakdown = map[string]int{
		"critical": critical,
		"high":     high,
		"medium":   medium,
		"low":      low,
	}

	const selectActiveGoalsQuery = `
SELECT COUNT(*)
FROM goals
WHERE user_id = $1 AND status = 'active'
`
	err = s.pgPool.QueryRow(ctx, selectActiveGoalsQuery, userID).Scan(&stats.ActiveGoals)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to count active goals")
		return nil, err
	}

	weekStart := today.AddDate(0, 0, -6)
	weekStats, err := s.selectSessionStats(ctx, userID, weekStart, tomorrow)
	if err != nil {
		return nil, err
	}
	stats.WeeklyMinutes, stats.WeekdayLabels = buildDailyMinutes(weekStats, weekStart, today)

	return stats, nil
}

func (s *analyticsServiceImpl) QuickStats(ctx context.Context, userID string) (*QuickStats, error) {
	now := time.Now()
	today := dateOnly(now)

	const selectQuickStatsQuery = `
SELECT (SELECT COUNT(*)
        FROM timebox_sessions
        WHERE user_id = $1 AND start_time >= $2 AND start_time < $3),
       EXISTS(SELECT 1 FROM timebox_sessions WHERE user_id = $1 AND end_time IS NULL),
       (SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND NOT is_completed)
`
	stats := new(QuickStats)
	err := s.pgPool.QueryRow(
		ctx,
		selectQuickStatsQuery,
		userID,
		today,
		today.AddDate(0, 0, 1),
	).Scan(
		&stats.TodaySessions,
		&stats.ActiveSession,
		&stats.PendingTasks,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select quick stats")
		return nil, err
	}
	return stats, nil
}

func (s *analyticsServiceImpl) Insights(ctx context.Context, userID string, days int) (*Insights, error) {
	days = coerceDays(days)
	now := time.Now()
	start, end := analyticsWindow(now, days)

	stats, err := s.selectSessionStats(ctx, userID, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	insights := buildInsights(stats)

	// The streak can reach past the analytics window, so it scans all
	// session dates.
	const selectSessionDatesQuery = `
SELECT DISTINCT date_trunc('day', start_time)
FROM timebox_sessions
WHERE user_id = $1
ORDER BY 1 DESC
LIMIT 366
`
	rows, err := s.pgPool.Query(ctx, selectSessionDatesQuery, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select session dates")
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err = rows.Scan(&d); err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan session date")
			return nil, err
		}
		dates = append(dates, d)
	}
	if err = rows.Err(); err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	insights.Streak = sessionStreak(dates, now)

	const selectActiveGoalsQuery = `
SELECT COUNT(*)
FROM goals
WHERE user_id = $1 AND status = 'active'
`
	var activeGoals int
	err = s.pgPool.QueryRow(ctx, selectActiveGoalsQuery, userID).Scan(&activeGoals)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to count active goals")
		return nil, err
	}
	insights.Tips = buildTips(insights, activeGoals)

	return &insights, nil
}
