package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/timeboxhq/timebox/internal/config"
)

var globalCron *cron.Cron

const sweepTimeout = 5 * time.Minute

// MustStartSweeper schedules the overdue, urgent and cleanup sweeps.
func MustStartSweeper() {
	cfg := config.Global().Sweep
	if !cfg.Enabled {
		globalLogger.Info().Msg("sweeper disabled")
		return
	}

	globalCron = cron.New()

	_, err := globalCron.AddFunc(cfg.OverdueSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		report, err := globalSweeperService.SweepOverdue(ctx)
		if err != nil {
			globalLogger.Error().
				Err(err).
				Msg("overdue sweep failed")
			return
		}
		globalLogger.Info().
			Int("overdue_tasks", report.OverdueTasks).
			Int("escalated", report.Escalated).
			Int("owners", report.Owners).
			Int("notified", report.Notified).
			Int("failed_owners", report.FailedOwners).
			Msg("overdue sweep finished")
	})
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("spec", cfg.OverdueSpec).
			Msg("failed to schedule overdue sweep")
		panic(err)
	}

	_, err = globalCron.AddFunc(cfg.UrgentSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		report, err := globalSweeperService.SweepUrgent(ctx)
		if err != nil {
			globalLogger.Error().
				Err(err).
				Msg("urgent sweep failed")
			return
		}
		globalLogger.Info().
			Int("overdue_tasks", report.OverdueTasks).
			Int("notified", report.Notified).
			Int("failed_owners", report.FailedOwners).
			Msg("urgent sweep finished")
	})
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("spec", cfg.UrgentSpec).
			Msg("failed to schedule urgent sweep")
		panic(err)
	}

	_, err = globalCron.AddFunc(cfg.CleanupSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		deleted, err := globalSweeperService.CleanupCompleted(ctx, cfg.CleanupAfter)
		if err != nil {
			globalLogger.Error().
				Err(err).
				Msg("cleanup failed")
			return
		}
		globalLogger.Info().
			Int64("deleted", deleted).
			Msg("cleanup finished")
	})
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("spec", cfg.CleanupSpec).
			Msg("failed to schedule cleanup")
		panic(err)
	}

	globalCron.Start()
	globalLogger.Info().
		Str("overdue_spec", cfg.OverdueSpec).
		Str("urgent_spec", cfg.UrgentSpec).
		Str("cleanup_spec", cfg.CleanupSpec).
		Msg("started sweeper")
}

func StopSweeper() {
	if globalCron == nil {
		return
	}

	// Stop returns once running jobs finish.
	<-globalCron.Stop().Done()
	globalLogger.Info().Msg("stopped sweeper")
}
