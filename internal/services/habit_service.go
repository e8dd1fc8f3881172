package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/timeboxhq/timebox/internal/models"
)

type habitServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewHabitService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) HabitService {
	return &habitServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *habitServiceImpl) CreateHabit(ctx context.Context, params HabitParams) (*models.Habit, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("%w: habit name is required", ErrValidation)
	}
	if params.Frequency == "" {
		params.Frequency = models.FrequencyDaily
	}
	if !models.ValidFrequency(params.Frequency) {
		return nil, fmt.Errorf("%w: invalid frequency %q", ErrValidation, params.Frequency)
	}
	if params.Target <= 0 {
		params.Target = 1
	}

	habitUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate habit uuid")
		return nil, err
	}

	habit := &models.Habit{
		ID:          habitUUID.String(),
		UserID:      params.UserID,
		Name:        params.Name,
		Description: params.Description,
		CategoryID:  params.CategoryID,
		Frequency:   params.Frequency,
		Target:      params.Target,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}

	const insertHabitQuery = `
INSERT INTO habits (id,
                    user_id,
                    name,
                    description,
                    category_id,
                    frequency,
                    target,
                    is_active,
                    created_at)
SELECT $1, $2, $3, $4, c.id, $6, $7, $8, $9
FROM categories c
WHERE c.id = $5 AND c.user_id = $2
RETURNING id
`
	var inserted string
	err = s.pgPool.QueryRow(
		ctx,
		insertHabitQuery,
		habit.ID,
		habit.UserID,
		habit.Name,
		habit.Description,
		habit.CategoryID,
		habit.Frequency,
		habit.Target,
		habit.IsActive,
		habit.CreatedAt,
	).Scan(&inserted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert habit")
		return nil, err
	}

	s.logger.Info().
		Str("habit_id", habit.ID).
		Str("user_id", habit.UserID).
		Msg("created habit")
	return habit, nil
}

func (s *habitServiceImpl) ListHabits(ctx context.Context, userID string) ([]*models.Habit, error) {
	const selectHabitsQuery = `
SELECT id,
       user_id,
       name,
       description,
       category_id,
       frequency,
       target,
       is_active,
       created_at
FROM habits
WHERE user_id = $1
ORDER BY name
`
	rows, err := s.pgPool.Query(ctx, selectHabitsQuery, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select habits")
		return nil, err
	}
	defer rows.Close()

	var habits []*models.Habit
	for rows.Next() {
		habit := new(models.Habit)
		err = rows.Scan(
			&habit.ID,
			&habit.UserID,
			&habit.Name,
			&habit.Description,
			&habit.CategoryID,
			&habit.Frequency,
			&habit.Target,
			&habit.IsActive,
			&habit.CreatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan habit")
			return nil, err
		}
		habits = append(habits, habit)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	return habits, nil
}

func (s *habitServiceImpl) DeleteHabit(ctx context.Context, userID, habitID string) error {
	const deleteHabitQuery = `
DELETE FROM habits
WHERE id = $1 AND user_id = $2
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteHabitQuery,
		habitID,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("habit_id", habitID).
			Msg("failed to delete habit")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrHabitNotFound
	}

	s.logger.Info().
		Str("habit_id", habitID).
		Str("user_id", userID).
		Msg("deleted habit")
	return nil
}

func (s *habitServiceImpl) LogHabit(ctx context.Context, params HabitLogParams) (*models.HabitLog, error) {
	if params.Date.IsZero() {
		params.Date = time.Now()
	}
	day := time.Date(params.Date.Year(), params.Date.Month(), params.Date.Day(), 0, 0, 0, 0, time.UTC)

	logUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate habit log uuid")
		return nil, err
	}

	habitLog := &models.HabitLog{
		ID:        logUUID.String(),
		HabitID:   params.HabitID,
		Date:      day,
		Completed: params.Completed,
		Notes:     params.Notes,
		CreatedAt: time.Now(),
	}

	// One log per habit per day; re-logging the same day overwrites it.
	const upsertHabitLogQuery = `
INSERT INTO habit_logs (id, habit_id, date, completed, notes, created_at)
SELECT $1, h.id, $3, $4, $5, $6
FROM habits h
WHERE h.id = $2 AND h.user_id = $7
ON CONFLICT (habit_id, date)
    DO UPDATE SET completed = EXCLUDED.completed,
                  notes     = EXCLUDED.notes
RETURNING id
`
	err = s.pgPool.QueryRow(
		ctx,
		upsertHabitLogQuery,
		habitLog.ID,
		habitLog.HabitID,
		habitLog.Date,
		habitLog.Completed,
		habitLog.Notes,
		habitLog.CreatedAt,
		params.UserID,
	).Scan(&habitLog.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHabitNotFound
		}

		s.logger.Error().
			Err(err).
			Str("habit_id", habitLog.HabitID).
			Msg("failed to upsert habit log")
		return nil, err
	}

	s.logger.Info().
		Str("habit_id", habitLog.HabitID).
		Str("user_id", params.UserID).
		Bool("completed", habitLog.Completed).
		Msg("logged habit")
	return habitLog, nil
}
