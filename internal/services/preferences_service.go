package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/timeboxhq/timebox/internal/models"
)

type preferencesServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewPreferencesService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) PreferencesService {
	return &preferencesServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

const selectPreferencesColumns = `
SELECT user_id,
       work_duration,
       break_duration,
       long_break_duration,
       sessions_before_break,
       daily_goal_sessions,
       weekly_goal_hours,
       enable_notifications,
       session_reminders,
       break_reminders,
       theme,
       created_at,
       updated_at
FROM user_preferences
`

func scanPreferences(row pgx.Row) (*models.UserPreferences, error) {
	prefs := new(models.UserPreferences)
	err := row.Scan(
		&prefs.UserID,
		&prefs.WorkDuration,
		&prefs.BreakDuration,
		&prefs.LongBreakDuration,
		&prefs.SessionsBeforeBreak,
		&prefs.DailyGoalSessions,
		&prefs.WeeklyGoalHours,
		&prefs.EnableNotifications,
		&prefs.SessionReminders,
		&prefs.BreakReminders,
		&prefs.Theme,
		&prefs.CreatedAt,
		&prefs.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return prefs, nil
}

func (s *preferencesServiceImpl) GetPreferences(ctx context.Context, userID string) (*models.UserPreferences, error) {
	row := s.pgPool.QueryRow(
		ctx,
		selectPreferencesColumns+`WHERE user_id = $1`,
		userID,
	)
	prefs, err := scanPreferences(row)
	if err == nil {
		return prefs, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select preferences")
		return nil, err
	}

	// First access creates the default row. Concurrent first accesses
	// both insert; ON CONFLICT keeps the earlier row.
	prefs = models.DefaultPreferences(userID, time.Now())

	const insertPreferencesQuery = `
INSERT INTO user_preferences (user_id,
                              work_duration,
                              break_duration,
                              long_break_duration,
                              sessions_before_break,
                              daily_goal_sessions,
                              weekly_goal_hours,
                              enable_notifications,
                              session_reminders,
                              break_reminders,
                              theme,
                              created_at,
                              updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (user_id) DO NOTHING
`
	_, err = s.pgPool.Exec(
		ctx,
		insertPreferencesQuery,
		prefs.UserID,
		prefs.WorkDuration,
		prefs.BreakDuration,
		prefs.LongBreakDuration,
		prefs.SessionsBeforeBreak,
		prefs.DailyGoalSessions,
		prefs.WeeklyGoalHours,
		prefs.EnableNotifications,
		prefs.SessionReminders,
		prefs.BreakReminders,
		prefs.Theme,
		prefs.CreatedAt,
		prefs.UpdatedAt,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to insert default preferences")
		return nil, err
	}

	s.logger.Debug().
		Str("user_id", userID).
		Msg("created default preferences")
	return prefs, nil
}

func (s *preferencesServiceImpl) UpdatePreferences(ctx context.Context, params UpdatePreferencesParams) (*models.UserPreferences, error) {
	prefs, err := s.GetPreferences(ctx, params.UserID)
	if err != nil {
		return nil, err
	}

	if params.WorkDuration != nil {
		prefs.WorkDuration = *params.WorkDuration
	}
	if params.BreakDuration != nil {
		prefs.BreakDuration = *params.BreakDuration
	}
	if params.LongBreakDuration != nil {
		prefs.LongBreakDuration = *params.LongBreakDuration
	}
	if params.SessionsBeforeBreak != nil {
		prefs.SessionsBeforeBreak = *params.SessionsBeforeBreak
	}
	if params.DailyGoalSessions != nil {
		prefs.DailyGoalSessions = *params.DailyGoalSessions
	}
	if params.WeeklyGoalHours != nil {
		prefs.WeeklyGoalHours = *params.WeeklyGoalHours
	}
	if params.EnableNotifications != nil {
		prefs.EnableNotifications = *params.EnableNotifications
	}
	if params.SessionReminders != nil {
		prefs.SessionReminders = *params.SessionReminders
	}
	if params.BreakReminders != nil {
		prefs.BreakReminders = *params.BreakReminders
	}
	if params.Theme != nil {
		prefs.Theme = *params.Theme
	}

	if prefs.WorkDuration <= 0 || prefs.BreakDuration <= 0 || prefs.LongBreakDuration <= 0 {
		return nil, fmt.Errorf("%w: durations must be positive", ErrValidation)
	}
	switch prefs.Theme {
	case models.ThemeLight, models.ThemeDark, models.ThemeAuto:
	default:
		return nil, fmt.Errorf("%w: invalid theme %q", ErrValidation, prefs.Theme)
	}

	prefs.UpdatedAt = time.Now()

	const updatePreferencesQuery = `
UPDATE user_preferences
SET work_duration         = $1,
    break_duration        = $2,
    long_break_duration   = $3,
    sessions_before_break = $4,
    daily_goal_sessions   = $5,
    weekly_goal_hours     = $6,
    enable_notifications  = $7,
    session_reminders     = $8,
    break_reminders       = $9,
    theme                 = $10,
    updated_at            = $11
WHERE user_id = $12
`
	_, err = s.pgPool.Exec(
		ctx,
		updatePreferencesQuery,
		prefs.WorkDuration,
		prefs.BreakDuration,
		prefs.LongBreakDuration,
		prefs.SessionsBeforeBreak,
		prefs.DailyGoalSessions,
		prefs.WeeklyGoalHours,
		prefs.EnableNotifications,
		prefs.SessionReminders,
		prefs.BreakReminders,
		prefs.Theme,
		prefs.UpdatedAt,
		prefs.UserID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", prefs.UserID).
			Msg("failed to update preferences")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", prefs.UserID).
		Msg("updated preferences")
	return prefs, nil
}
