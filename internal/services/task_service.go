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

type taskServiceImpl struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewTaskService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

const selectTaskColumns = `
SELECT id,
       user_id,
       title,
       description,
       category_id,
       goal_id,
       priority,
       energy_level,
       estimated_minutes,
       is_completed,
       completed_at,
       due_date,
       created_at,
       updated_at
FROM tasks
`

func scanTask(row pgx.Row) (*models.Task, error) {
	task := new(models.Task)
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.CategoryID,
		&task.GoalID,
		&task.Priority,
		&task.EnergyLevel,
		&task.EstimatedMinutes,
		&task.IsCompleted,
		&task.CompletedAt,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func validateTaskParams(priority int, energyLevel string, estimatedMinutes int) error {
	if !models.ValidPriority(priority) {
		return fmt.Errorf("%w: priority must be 1-4", ErrValidation)
	}
	if !models.ValidEnergyLevel(energyLevel) {
		return fmt.Errorf("%w: invalid energy level %q", ErrValidation, energyLevel)
	}
	if estimatedMinutes < 0 {
		return fmt.Errorf("%w: estimated minutes must not be negative", ErrValidation)
	}
	return nil
}

// The foreign keys on category_id and goal_id prove the row exists, not
// that the caller owns it. Reference checks scope the lookup to the
// owner before writing.
func (s *taskServiceImpl) assertCategoryOwned(ctx context.Context, userID, categoryID string) error {
	const ownedCategoryQuery = `
SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1 AND user_id = $2)
`
	var owned bool
	err := s.pgPool.QueryRow(ctx, ownedCategoryQuery, categoryID, userID).Scan(&owned)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("category_id", categoryID).
			Msg("failed to check category owner")
		return err
	}
	if !owned {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *taskServiceImpl) assertGoalOwned(ctx context.Context, userID, goalID string) error {
	const ownedGoalQuery = `
SELECT EXISTS (SELECT 1 FROM goals WHERE id = $1 AND user_id = $2)
`
	var owned bool
	err := s.pgPool.QueryRow(ctx, ownedGoalQuery, goalID, userID).Scan(&owned)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("goal_id", goalID).
			Msg("failed to check goal owner")
		return err
	}
	if !owned {
		return ErrGoalNotFound
	}
	return nil
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	if params.Priority == 0 {
		params.Priority = models.PriorityMedium
	}
	if params.EnergyLevel == "" {
		params.EnergyLevel = models.EnergyMedium
	}
	if params.EstimatedMinutes == 0 {
		params.EstimatedMinutes = 25
	}
	err := validateTaskParams(params.Priority, params.EnergyLevel, params.EstimatedMinutes)
	if err != nil {
		return nil, err
	}

	if params.GoalID != nil {
		err = s.assertGoalOwned(ctx, params.UserID, *params.GoalID)
		if err != nil {
			return nil, err
		}
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}

	now := time.Now()
	task := &models.Task{
		ID:               taskUUID.String(),
		UserID:           params.UserID,
		Title:            params.Title,
		Description:      params.Description,
		CategoryID:       params.CategoryID,
		GoalID:           params.GoalID,
		Priority:         params.Priority,
		EnergyLevel:      params.EnergyLevel,
		EstimatedMinutes: params.EstimatedMinutes,
		DueDate:          params.DueDate,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	const insertTaskQuery = `
INSERT INTO tasks (id,
                   user_id,
                   title,
                   description,
                   category_id,
                   goal_id,
                   priority,
                   energy_level,
                   estimated_minutes,
                   due_date,
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
		insertTaskQuery,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.CategoryID,
		task.GoalID,
		task.Priority,
		task.EnergyLevel,
		task.EstimatedMinutes,
		task.DueDate,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&inserted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The category subselect matched nothing: absent or owned
			// by another user.
			s.logger.Warn().
				Str("category_id", task.CategoryID).
				Str("user_id", task.UserID).
				Msg("category not found")
			return nil, ErrCategoryNotFound
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return nil, ErrGoalNotFound
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) GetTaskByID(ctx context.Context, userID, taskID string) (*models.Task, error) {
	row := s.pgPool.QueryRow(
		ctx,
		selectTaskColumns+`WHERE id = $1 AND user_id = $2`,
		taskID,
		userID,
	)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select task")
		return nil, err
	}
	return task, nil
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, userID string) ([]*models.Task, error) {
	rows, err := s.pgPool.Query(
		ctx,
		selectTaskColumns+`WHERE user_id = $1 ORDER BY priority, due_date NULLS LAST, created_at`,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	return tasks, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	task, err := s.GetTaskByID(ctx, params.UserID, params.TaskID)
	if err != nil {
		return nil, err
	}

	if params.Title != nil {
		task.Title = *params.Title
	}
	if params.Description != nil {
		task.Description = *params.Description
	}
	if params.CategoryID != nil {
		task.CategoryID = *params.CategoryID
	}
	if params.GoalID != nil {
		task.GoalID = params.GoalID
	}
	if params.Priority != nil {
		task.Priority = *params.Priority
	}
	if params.EnergyLevel != nil {
		task.EnergyLevel = *params.EnergyLevel
	}
	if params.EstimatedMinutes != nil {
		task.EstimatedMinutes = *params.EstimatedMinutes
	}
	if params.DueDate != nil {
		task.DueDate = params.DueDate
	} else if params.ClearDueDate {
		task.DueDate = nil
	}

	err = validateTaskParams(task.Priority, task.EnergyLevel, task.EstimatedMinutes)
	if err != nil {
		return nil, err
	}

	if params.CategoryID != nil {
		err = s.assertCategoryOwned(ctx, params.UserID, *params.CategoryID)
		if err != nil {
			return nil, err
		}
	}
	if params.GoalID != nil {
		err = s.assertGoalOwned(ctx, params.UserID, *params.GoalID)
		if err != nil {
			return nil, err
		}
	}

	task.UpdatedAt = time.Now()

	const updateTaskQuery = `
UPDATE tasks
SET title             = $1,
    description       = $2,
    category_id       = $3,
    goal_id           = $4,
    priority          = $5,
    energy_level      = $6,
    estimated_minutes = $7,
    due_date          = $8,
    updated_at        = $9
WHERE id = $10 AND user_id = $11
`
	tag, err := s.pgPool.Exec(
		ctx,
		updateTaskQuery,
		task.Title,
		task.Description,
		task.CategoryID,
		task.GoalID,
		task.Priority,
		task.EnergyLevel,
		task.EstimatedMinutes,
		task.DueDate,
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return nil, ErrCategoryNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to update task")
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrTaskNotFound
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, userID, taskID string) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1 AND user_id = $2
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteTaskQuery,
		taskID,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Warn().
			Str("task_id", taskID).
			Str("user_id", userID).
			Msg("task not found")
		return ErrTaskNotFound
	}

	s.logger.Info().
		Str("task_id", taskID).
		Str("user_id", userID).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) ToggleCompletion(ctx context.Context, userID, taskID string) (*models.Task, error) {
	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(
		ctx,
		selectTaskColumns+`WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		taskID,
		userID,
	)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select task")
		return nil, err
	}

	now := time.Now()
	task.IsCompleted = !task.IsCompleted
	task.UpdatedAt = now
	if task.IsCompleted {
		task.CompletedAt = &now
	} else {
		task.CompletedAt = nil
	}

	// Completing a task closes its running session so the accrued time
	// is not lost.
	if task.IsCompleted {
		const closeActiveSessionQuery = `
UPDATE timebox_sessions
SET end_time       = $1,
    actual_minutes = GREATEST(1, FLOOR(EXTRACT(EPOCH FROM ($1 - start_time)) / 60)::int),
    outcome        = $2,
    notes          = 'Task completed',
    updated_at     = $1
WHERE user_id = $3 AND task_id = $4 AND end_time IS NULL
`
		_, err = tx.Exec(
			ctx,
			closeActiveSessionQuery,
			now,
			models.OutcomeCompleted,
			userID,
			taskID,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("task_id", taskID).
				Msg("failed to close active session")
			return nil, err
		}
	}

	const toggleTaskQuery = `
UPDATE tasks
SET is_completed = $1,
    completed_at = $2,
    updated_at   = $3
WHERE id = $4
`
	_, err = tx.Exec(
		ctx,
		toggleTaskQuery,
		task.IsCompleted,
		task.CompletedAt,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to toggle task completion")
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Bool("is_completed", task.IsCompleted).
		Msg("toggled task completion")
	return task, nil
}

func (s *taskServiceImpl) TaskProgress(ctx context.Context, userID, taskID string) (*TaskProgress, error) {
	task, err := s.GetTaskByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	const selectProgressQuery = `
SELECT COALESCE(SUM(actual_minutes), 0),
       MAX(start_time) FILTER (WHERE end_time IS NULL)
FROM timebox_sessions
WHERE user_id = $1 AND task_id = $2
`
	var closedMinutes int
	var activeStart *time.Time
	err = s.pgPool.QueryRow(
		ctx,
		selectProgressQuery,
		userID,
		taskID,
	).Scan(&closedMinutes, &activeStart)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select task progress")
		return nil, err
	}

	now := time.Now()
	elapsed := closedMinutes
	if activeStart != nil {
		elapsed += models.ActualMinutesBetween(*activeStart, now)
	}

	return &TaskProgress{
		TaskID:               task.ID,
		ElapsedMinutes:       elapsed,
		EstimatedMinutes:     task.EstimatedMinutes,
		CompletionPercentage: task.CompletionPercentage(elapsed),
		Status:               task.Status(now),
		HasActiveSession:     activeStart != nil,
	}, nil
}
