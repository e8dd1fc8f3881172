package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/timeboxhq/timebox/internal/models"
)

type goalServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewGoalService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) GoalService {
	return &goalServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

const selectGoalColumns = `
SELECT id,
       user_id,
       title,
       description,
       category_id,
       target_hours,
       period,
       status,
       start_date,
       end_date,
       created_at,
       updated_at
FROM goals
`

func scanGoal(row pgx.Row) (*models.Goal, error) {
	goal := new(models.Goal)
	err := row.Scan(
		&goal.ID,
		&goal.UserID,
		&goal.Title,
		&goal.Description,
		&goal.CategoryID,
		&goal.TargetHours,
		&goal.Period,
		&goal.Status,
		&goal.StartDate,
		&goal.EndDate,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return goal, nil
}

func validateGoalParams(params GoalParams) error {
	if params.Title == "" {
		return fmt.Errorf("%w: goal title is required", ErrValidation)
	}
	if !models.ValidPeriod(params.Period) {
		return fmt.Errorf("%w: invalid period %q", ErrValidation, params.Period)
	}
	if !models.ValidGoalStatus(params.Status) {
		return fmt.Errorf("%w: invalid status %q", ErrValidation, params.Status)
	}
	if params.TargetHours < 0 {
		return fmt.Errorf("%w: target hours must not be negative", ErrValidation)
	}
	return nil
}

func (s *goalServiceImpl) CreateGoal(ctx context.Context, params GoalParams) (*models.Goal, error) {
	if params.Period == "" {
		params.Period = models.PeriodWeekly
	}
	if params.Status == "" {
		params.Status = models.GoalStatusActive
	}
	if params.StartDate.IsZero() {
		params.StartDate = time.Now()
	}
	err := validateGoalParams(params)
	if err != nil {
		return nil, err
	}

	goalUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate goal uuid")
		return nil, err
	}

	now := time.Now()
	goal := &models.Goal{
		ID:          goalUUID.String(),
		UserID:      params.UserID,
		Title:       params.Title,
		Description: params.Description,
		CategoryID:  params.CategoryID,
		TargetHours: params.TargetHours,
		Period:      params.Period,
		Status:      params.Status,
		StartDate:   params.StartDate,
		EndDate:     params.EndDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	const insertGoalQuery = `
INSERT INTO goals (id,
                   user_id,
                   title,
                   description,
                   category_id,
                   target_hours,
                   period,
                   status,
                   start_date,
                   end_date,
                   created_at,
                   updated_at)
SELECT $1, $2, $3, $4, c.id, $6, $7, $8, $9, $10, $11, $12
FROM categories c
WHERE c.id = $5 AND c.user_id = $2
RETURNING id
`
	var inserted string
	err = s.pgPool.QueryRow(
		ctx,
		insertGoalQuery,
		goal.ID,
		goal.UserID,
		goal.Title,
		goal.Description,
		goal.CategoryID,
		goal.TargetHours,
		goal.Period,
		goal.Status,
		goal.StartDate,
		goal.EndDate,
		goal.CreatedAt,
		goal.UpdatedAt,
	).Scan(&inserted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert goal")
		return nil, err
	}

	s.logger.Info().
		Str("goal_id", goal.ID).
		Str("user_id", goal.UserID).
		Msg("created goal")
	return goal, nil
}

func (s *goalServiceImpl) ListGoals(ctx context.Context, userID string) ([]*models.Goal, error) {
	rows, err := s.pgPool.Query(
		ctx,
		selectGoalColumns+`WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select goals")
		return nil, err
	}
	defer rows.Close()

	var goals []*models.Goal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan goal")
			return nil, err
		}
		goals = append(goals, goal)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	return goals, nil
}

func (s *goalServiceImpl) UpdateGoal(ctx context.Context, goalID string, params GoalParams) (*models.Goal, error) {
	err := validateGoalParams(params)
	if err != nil {
		return nil, err
	}

	goal := &models.Goal{
		ID:          goalID,
		UserID:      params.UserID,
		Title:       params.Title,
		Description: params.Description,
		CategoryID:  params.CategoryID,
		TargetHours: params.TargetHours,
		Period:      params.Period,
		Status:      params.Status,
		StartDate:   params.StartDate,
		EndDate:     params.EndDate,
		UpdatedAt:   time.Now(),
	}

	const updateGoalQuery = `
UPDATE goals
SET title        = $1,
    description  = $2,
    category_id  = $3,
    target_hours = $4,
    period       = $5,
    status       = $6,
    start_date   = $7,
    end_date     = $8,
    updated_at   = $9
WHERE id = $10 AND user_id = $11
RETURNING created_at
`
	err = s.pgPool.QueryRow(
		ctx,
		updateGoalQuery,
		goal.Title,
		goal.Description,
		goal.CategoryID,
		goal.TargetHours,
		goal.Period,
		goal.Status,
		goal.StartDate,
		goal.EndDate,
		goal.UpdatedAt,
		goal.ID,
		goal.UserID,
	).Scan(&goal.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGoalNotFound
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return nil, ErrCategoryNotFound
		}

		s.logger.Error().
			Err(err).
			Str("goal_id", goal.ID).
			Msg("failed to update goal")
		return nil, err
	}

	s.logger.Info().
		Str("goal_id", goal.ID).
		Str("user_id", goal.UserID).
		Msg("updated goal")
	return goal, nil
}

func (s *goalServiceImpl) DeleteGoal(ctx context.Context, userID, goalID string) error {
	const deleteGoalQuery = `
DELETE FROM goals
WHERE id = $1 AND user_id = $2
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteGoalQuery,
		goalID,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("goal_id", goalID).
			Msg("failed to delete goal")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}

	s.logger.Info().
		Str("goal_id", goalID).
		Str("user_id", userID).
		Msg("deleted goal")
	return nil
}

func (s *goalServiceImpl) GoalProgress(ctx context.Context, userID, goalID string) (*GoalProgress, error) {
	row := s.pgPool.QueryRow(
		ctx,
		selectGoalColumns+`WHERE id = $1 AND user_id = $2`,
		goalID,
		userID,
	)
	goal, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGoalNotFound
		}

		s.logger.Error().
			Err(err).
			Str("goal_id", goalID).
			Msg("failed to select goal")
		return nil, err
	}

	start, end, ok := goal.CurrentPeriodBounds(time.Now())
	if !ok {
		// Quarterly and yearly periods report no progress.
		return &GoalProgress{
			GoalID:      goal.ID,
			TargetHours: goal.TargetHours,
		}, nil
	}

	// Sessions count toward the goal through the goal's category, with
	// completed and partial outcomes only.
	const selectPeriodMinutesQuery = `
SELECT COALESCE(SUM(s.actual_minutes), 0)
FROM timebox_sessions s
         JOIN tasks t ON t.id = s.task_id
WHERE s.user_id = $1
  AND t.category_id = $2
  AND s.outcome IN ('completed', 'partial')
  AND s.start_time >= $3
  AND s.start_time < $4
`
	var totalMinutes int
	err = s.pgPool.QueryRow(
		ctx,
		selectPeriodMinutesQuery,
		userID,
		goal.CategoryID,
		start,
		end.AddDate(0, 0, 1),
	).Scan(&totalMinutes)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("goal_id", goalID).
			Msg("failed to sum period minutes")
		return nil, err
	}

	return &GoalProgress{
		GoalID:       goal.ID,
		PeriodStart:  start,
		PeriodEnd:    end,
		TotalMinutes: totalMinutes,
		TargetHours:  goal.TargetHours,
		Percentage:   goal.PeriodProgress(totalMinutes),
	}, nil
}
