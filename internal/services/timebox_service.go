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

type timeboxServiceImpl struct {
	logger      zerolog.Logger
	pgPool      *pgxpool.Pool
	preferences PreferencesService
}

func NewTimeboxService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
	preferences PreferencesService,
) TimeboxService {
	return &timeboxServiceImpl{
		logger:      logger,
		pgPool:      pgPool,
		preferences: preferences,
	}
}

const selectSessionColumns = `
SELECT id,
       user_id,
       task_id,
       start_time,
       end_time,
       planned_minutes,
       actual_minutes,
       COALESCE(outcome, ''),
       focus_rating,
       energy_before,
       energy_after,
       notes,
       distractions,
       key_insights,
       created_at,
       updated_at
FROM timebox_sessions
`

func scanSession(row pgx.Row) (*models.TimeboxSession, error) {
	session := new(models.TimeboxSession)
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.TaskID,
		&session.StartTime,
		&session.EndTime,
		&session.PlannedMinutes,
		&session.ActualMinutes,
		&session.Outcome,
		&session.FocusRating,
		&session.EnergyBefore,
		&session.EnergyAfter,
		&session.Notes,
		&session.Distractions,
		&session.KeyInsights,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *timeboxServiceImpl) StartSession(ctx context.Context, params StartSessionParams) (*models.TimeboxSession, error) {
	if params.PlannedMinutes <= 0 {
		params.PlannedMinutes = 25
	}
	if params.EnergyBefore != nil && !models.ValidRating(*params.EnergyBefore) {
		return nil, fmt.Errorf("%w: energy_before must be 1-5", ErrValidation)
	}

	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the task row first. This both verifies ownership and orders
	// concurrent starts for the same user behind one another.
	const selectTaskForUpdateQuery = `
SELECT id
FROM tasks
WHERE id = $1 AND user_id = $2
FOR UPDATE
`
	var taskID string
	err = tx.QueryRow(
		ctx,
		selectTaskForUpdateQuery,
		params.TaskID,
		params.UserID,
	).Scan(&taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Str("task_id", params.TaskID).
				Str("user_id", params.UserID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Msg("failed to select task for update")
		return nil, err
	}

	const selectActiveSessionQuery = `
SELECT id
FROM timebox_sessions
WHERE user_id = $1 AND end_time IS NULL
FOR UPDATE
`
	var activeID string
	err = tx.QueryRow(
		ctx,
		selectActiveSessionQuery,
		params.UserID,
	).Scan(&activeID)
	if err == nil {
		s.logger.Warn().
			Str("user_id", params.UserID).
			Str("active_session_id", activeID).
			Msg("active session already exists")
		return nil, ErrActiveSessionExists
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		s.logger.Error().
			Err(err).
			Msg("failed to check active session")
		return nil, err
	}

	sessionUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate session uuid")
		return nil, err
	}

	now := time.Now()
	session := &models.TimeboxSession{
		ID:             sessionUUID.String(),
		UserID:         params.UserID,
		TaskID:         params.TaskID,
		StartTime:      now,
		PlannedMinutes: params.PlannedMinutes,
		EnergyBefore:   params.EnergyBefore,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	const insertSessionQuery = `
INSERT INTO timebox_sessions (id,
                              user_id,
                              task_id,
                              start_time,
                              planned_minutes,
                              energy_before,
                              notes,
                              distractions,
                              key_insights,
                              created_at,
                              updated_at)
VALUES ($1, $2, $3, $4, $5, $6, '', '', '', $7, $8)
`
	_, err = tx.Exec(
		ctx,
		insertSessionQuery,
		session.ID,
		session.UserID,
		session.TaskID,
		session.StartTime,
		session.PlannedMinutes,
		session.EnergyBefore,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		// The partial unique index is the backstop for starts racing in
		// separate transactions.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			s.logger.Warn().
				Str("user_id", params.UserID).
				Msg("concurrent session start lost the race")
			return nil, ErrActiveSessionExists
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert session")
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
		Str("session_id", session.ID).
		Str("task_id", session.TaskID).
		Str("user_id", session.UserID).
		Msg("started session")
	return session, nil
}

func (s *timeboxServiceImpl) CloseSession(ctx context.Context, params CloseSessionParams) (*CloseSessionResult, error) {
	if !models.ValidOutcome(params.Outcome) {
		return nil, fmt.Errorf("%w: invalid outcome %q", ErrValidation, params.Outcome)
	}
	if params.FocusRating != nil && !models.ValidRating(*params.FocusRating) {
		return nil, fmt.Errorf("%w: focus_rating must be 1-5", ErrValidation)
	}
	if params.EnergyAfter != nil && !models.ValidRating(*params.EnergyAfter) {
		return nil, fmt.Errorf("%w: energy_after must be 1-5", ErrValidation)
	}

	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	endTime := time.Now()

	session := &models.TimeboxSession{
		ID:           params.SessionID,
		UserID:       params.UserID,
		EndTime:      &endTime,
		Outcome:      params.Outcome,
		FocusRating:  params.FocusRating,
		EnergyAfter:  params.EnergyAfter,
		Notes:        params.Notes,
		Distractions: params.Distractions,
		KeyInsights:  params.KeyInsights,
		UpdatedAt:    endTime,
	}

	// actual_minutes depends on start_time, so close in two steps inside
	// the transaction: read the start under lock, then write the final
	// row. The end_time IS NULL guard keeps a racing close from
	// rewriting a finished session.
	const selectOpenSessionQuery = `
SELECT task_id, start_time, planned_minutes, energy_before, created_at
FROM timebox_sessions
WHERE id = $1 AND user_id = $2 AND end_time IS NULL
FOR UPDATE
`
	err = tx.QueryRow(
		ctx,
		selectOpenSessionQuery,
		session.ID,
		session.UserID,
	).Scan(
		&session.TaskID,
		&session.StartTime,
		&session.PlannedMinutes,
		&session.EnergyBefore,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Str("session_id", session.ID).
				Str("user_id", session.UserID).
				Msg("open session not found")
			return nil, ErrSessionNotFound
		}

		s.logger.Error().
			Err(err).
			Msg("failed to select open session")
		return nil, err
	}

	actualMinutes := models.ActualMinutesBetween(session.StartTime, endTime)
	session.ActualMinutes = &actualMinutes

	_, err = tx.Exec(
		ctx,
		`
UPDATE timebox_sessions
SET end_time       = $1,
    actual_minutes = $2,
    outcome        = $3,
    focus_rating   = $4,
    energy_after   = $5,
    notes          = $6,
    distractions   = $7,
    key_insights   = $8,
    updated_at     = $1
WHERE id = $9
`,
		endTime,
		actualMinutes,
		session.Outcome,
		session.FocusRating,
		session.EnergyAfter,
		session.Notes,
		session.Distractions,
		session.KeyInsights,
		session.ID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to close session")
		return nil, err
	}

	if params.TaskCompleted {
		const completeTaskQuery = `
UPDATE tasks
SET is_completed = TRUE,
    completed_at = $1,
    updated_at   = $1
WHERE id = $2 AND user_id = $3
`
		_, err = tx.Exec(
			ctx,
			completeTaskQuery,
			endTime,
			session.TaskID,
			session.UserID,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("task_id", session.TaskID).
				Msg("failed to complete task with session")
			return nil, err
		}
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return nil, err
	}

	breakDuration := 5
	prefs, err := s.preferences.GetPreferences(ctx, session.UserID)
	if err == nil {
		breakDuration = prefs.SuggestedBreak(actualMinutes, session.FocusRating)
	} else {
		s.logger.Warn().
			Err(err).
			Msg("failed to load preferences for break suggestion")
	}

	s.logger.Info().
		Str("session_id", session.ID).
		Str("user_id", session.UserID).
		Int("actual_minutes", actualMinutes).
		Str("outcome", session.Outcome).
		Bool("task_completed", params.TaskCompleted).
		Msg("closed session")
	return &CloseSessionResult{
		Session:       session,
		BreakDuration: breakDuration,
	}, nil
}

func (s *timeboxServiceImpl) PauseSession(ctx context.Context, userID, sessionID string) (*CloseSessionResult, error) {
	return s.CloseSession(ctx, CloseSessionParams{
		UserID:    userID,
		SessionID: sessionID,
		Outcome:   models.OutcomeInterrupted,
		Notes:     "Session paused by user",
	})
}

func (s *timeboxServiceImpl) GetSessionByID(ctx context.Context, userID, sessionID string) (*models.TimeboxSession, error) {
	row := s.pgPool.QueryRow(
		ctx,
		selectSessionColumns+`WHERE id = $1 AND user_id = $2`,
		sessionID,
		userID,
	)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}

		s.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Msg("failed to select session")
		return nil, err
	}
	return session, nil
}

func (s *timeboxServiceImpl) ListSessions(ctx context.Context, userID string, limit uint32) ([]*models.TimeboxSession, error) {
	if limit == 0 {
		limit = 50
	}

	rows, err := s.pgPool.Query(
		ctx,
		selectSessionColumns+`WHERE user_id = $1 ORDER BY start_time DESC LIMIT $2`,
		userID,
		limit,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select sessions")
		return nil, err
	}
	defer rows.Close()

	sessions := make([]*models.TimeboxSession, 0, limit)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan session")
			return nil, err
		}
		sessions = append(sessions, session)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	return sessions, nil
}

func (s *timeboxServiceImpl) ActiveSession(ctx context.Context, userID string) (*models.TimeboxSession, error) {
	row := s.pgPool.QueryRow(
		ctx,
		selectSessionColumns+`WHERE user_id = $1 AND end_time IS NULL`,
		userID,
	)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		s.logger.Error().
			Err(err).
			Msg("failed to select active session")
		return nil, err
	}
	return session, nil
}
