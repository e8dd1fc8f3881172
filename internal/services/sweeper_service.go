package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/timeboxhq/timebox/internal/models"
)

// Advisory lock key serializing sweep runs across processes.
const sweepLockKey = 7420031

type sweeperServiceImpl struct {
	logger      zerolog.Logger
	pgPool      *pgxpool.Pool
	preferences PreferencesService
	notifier    Notifier
}

func NewSweeperService(
	logger zerolog.Logger,
	pgPool *pgxpool.Pool,
	preferences PreferencesService,
	notifier Notifier,
) SweeperService {
	return &sweeperServiceImpl{
		logger:      logger,
		pgPool:      pgPool,
		preferences: preferences,
		notifier:    notifier,
	}
}

// escalatePriority raises an overdue task one priority rank, flooring at
// critical. Already-critical tasks are left alone.
func escalatePriority(priority int) (int, bool) {
	if priority <= models.PriorityCritical {
		return priority, false
	}
	return priority - 1, true
}

type ownerGroup struct {
	userID string
	email  string
	tasks  []*models.Task
}

// groupByOwner batches overdue tasks per owner, preserving the scan order
// of owners.
func groupByOwner(tasks []*models.Task, emails map[string]string) []*ownerGroup {
	byOwner := make(map[string]*ownerGroup)
	var groups []*ownerGroup
	for _, task := range tasks {
		group, ok := byOwner[task.UserID]
		if !ok {
			group = &ownerGroup{
				userID: task.UserID,
				email:  emails[task.UserID],
			}
			byOwner[task.UserID] = group
			groups = append(groups, group)
		}
		group.tasks = append(group.tasks, task)
	}
	return groups
}

func (s *sweeperServiceImpl) SweepOverdue(ctx context.Context) (*SweepReport, error) {
	return s.sweep(ctx, time.Now(), true, false)
}

func (s *sweeperServiceImpl) SweepUrgent(ctx context.Context) (*SweepReport, error) {
	// Superset filter: only tasks overdue for more than 24 hours, no
	// re-escalation.
	return s.sweep(ctx, time.Now().Add(-24*time.Hour), false, true)
}

func (s *sweeperServiceImpl) sweep(ctx context.Context, dueBefore time.Time, escalate, urgent bool) (*SweepReport, error) {
	conn, err := s.pgPool.Acquire(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to acquire connection")
		return nil, err
	}
	defer conn.Release()

	// Overlapping runs (slow hourly run meeting the next tick) are
	// skipped rather than stacked.
	var locked bool
	err = conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, sweepLockKey).Scan(&locked)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to take sweep lock")
		return nil, err
	}
	if !locked {
		s.logger.Warn().Msg("another sweep is running, skipping")
		return &SweepReport{}, nil
	}
	defer func() {
		_, unlockErr := conn.Exec(ctx, `SELECT pg_advisory_unlock($1)`, sweepLockKey)
		if unlockErr != nil {
			s.logger.Error().
				Err(unlockErr).
				Msg("failed to release sweep lock")
		}
	}()

	tasks, emails, err := s.selectOverdueTasks(ctx, conn, dueBefore)
	if err != nil {
		return nil, err
	}

	report := &SweepReport{OverdueTasks: len(tasks)}
	if len(tasks) == 0 {
		s.logger.Info().
			Bool("urgent", urgent).
			Msg("no overdue tasks found")
		return report, nil
	}

	groups := groupByOwner(tasks, emails)
	report.Owners = len(groups)

	for _, group := range groups {
		if escalate {
			escalated, err := s.escalateGroup(ctx, conn, group)
			if err != nil {
				// Escalation failure for one owner does not stop the
				// batch.
				s.logger.Error().
					Err(err).
					Str("user_id", group.userID).
					Msg("failed to escalate overdue tasks")
				report.FailedOwners++
				continue
			}
			report.Escalated += escalated
		}

		prefs, err := s.preferences.GetPreferences(ctx, group.userID)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("user_id", group.userID).
				Msg("failed to load preferences")
			report.FailedOwners++
			continue
		}
		if !prefs.EnableNotifications {
			continue
		}

		err = s.notifier.NotifyOverdue(ctx, group.email, group.tasks, urgent)
		if err != nil {
			// Delivery failures are logged with the owner identified
			// and the batch moves on.
			s.logger.Error().
				Err(err).
				Str("user_id", group.userID).
				Msg("failed to send overdue notification")
			report.FailedOwners++
			continue
		}
		report.Notified++
	}

	s.logger.Info().
		Int("overdue_tasks", report.OverdueTasks).
		Int("escalated", report.Escalated).
		Int("owners", report.Owners).
		Int("notified", report.Notified).
		Int("failed_owners", report.FailedOwners).
		Bool("urgent", urgent).
		Msg("finished overdue sweep")
	return report, nil
}

func (s *sweeperServiceImpl) selectOverdueTasks(ctx context.Context, conn *pgxpool.Conn, dueBefore time.Time) ([]*models.Task, map[string]string, error) {
	const selectOverdueQuery = `
SELECT t.id,
       t.user_id,
       t.title,
       t.priority,
       t.due_date,
       u.email
FROM tasks t
         JOIN users u ON u.id = t.user_id
WHERE t.due_date < $1
  AND NOT t.is_completed
ORDER BY t.user_id, t.due_date
`
	rows, err := conn.Query(ctx, selectOverdueQuery, dueBefore)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select overdue tasks")
		return nil, nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	emails := make(map[string]string)
	for rows.Next() {
		task := new(models.Task)
		var email string
		err = rows.Scan(
			&task.ID,
			&task.UserID,
			&task.Title,
			&task.Priority,
			&task.DueDate,
			&email,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan overdue task")
			return nil, nil, err
		}
		tasks = append(tasks, task)
		emails[task.UserID] = email
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, nil, err
	}
	return tasks, emails, nil
}

func (s *sweeperServiceImpl) escalateGroup(ctx context.Context, conn *pgxpool.Conn, group *ownerGroup) (int, error) {
	escalated := 0
	for _, task := range group.tasks {
		next, changed := escalatePriority(task.Priority)
		if !changed {
			continue
		}

		const escalateTaskQuery = `
UPDATE tasks
SET priority   = $1,
    updated_at = $2
WHERE id = $3 AND NOT is_completed
`
		tag, err := conn.Exec(
			ctx,
			escalateTaskQuery,
			next,
			time.Now(),
			task.ID,
		)
		if err != nil {
			return escalated, err
		}
		if tag.RowsAffected() == 0 {
			// Completed between the scan and the update.
			continue
		}

		s.logger.Debug().
			Str("task_id", task.ID).
			Int("old_priority", task.Priority).
			Int("new_priority", next).
			Msg("escalated overdue task")
		task.Priority = next
		escalated++
	}
	return escalated, nil
}

func (s *sweeperServiceImpl) CleanupCompleted(ctx context.Context, olderThanDays int) (int64, error) {
	if olderThanDays <= 0 {
		olderThanDays = 90
	}
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)

	const deleteOldCompletedQuery = `
DELETE FROM tasks
WHERE is_completed
  AND completed_at < $1
`
	tag, err := s.pgPool.Exec(ctx, deleteOldCompletedQuery, cutoff)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}

		s.logger.Error().
			Err(err).
			Msg("failed to delete old completed tasks")
		return 0, err
	}

	s.logger.Info().
		Int64("deleted", tag.RowsAffected()).
		Time("cutoff", cutoff).
		Msg("cleaned up old completed tasks")
	return tag.RowsAffected(), nil
}
