package app

import (
	"github.com/timeboxhq/timebox/internal/config"
	"github.com/timeboxhq/timebox/internal/notify"
	"github.com/timeboxhq/timebox/internal/services"
)

var (
	globalAuthService        services.AuthService
	globalTaskService        services.TaskService
	globalCategoryService    services.CategoryService
	globalGoalService        services.GoalService
	globalHabitService       services.HabitService
	globalTimeboxService     services.TimeboxService
	globalAnalyticsService   services.AnalyticsService
	globalSweeperService     services.SweeperService
	globalPreferencesService services.PreferencesService
)

func MustInitServices() {
	cfg := config.Global()

	globalAuthService = services.NewAuthService(
		globalLogger,
		globalPostgresPool,
		cfg.JWT.Issuer,
		[]byte(cfg.JWT.SigningKey),
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
	)

	globalTaskService = services.NewTaskService(globalLogger, globalPostgresPool)
	globalCategoryService = services.NewCategoryService(globalLogger, globalPostgresPool)
	globalGoalService = services.NewGoalService(globalLogger, globalPostgresPool)
	globalHabitService = services.NewHabitService(globalLogger, globalPostgresPool)
	globalPreferencesService = services.NewPreferencesService(globalLogger, globalPostgresPool)
	globalTimeboxService = services.NewTimeboxService(globalLogger, globalPostgresPool, globalPreferencesService)
	globalAnalyticsService = services.NewAnalyticsService(globalLogger, globalPostgresPool, cfg.Analytics.CacheTTL)

	notifier := mustInitNotifier(cfg)
	globalSweeperService = services.NewSweeperService(
		globalLogger,
		globalPostgresPool,
		globalPreferencesService,
		notifier,
	)

	globalLogger.Info().Msg("initialized services")
}

func mustInitNotifier(cfg *config.Config) services.Notifier {
	if !cfg.SMTP.Enabled {
		globalLogger.Info().Msg("smtp disabled, using log notifier")
		return notify.NewLogNotifier(globalLogger)
	}

	notifier, err := notify.NewMailNotifier(
		globalLogger,
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
		cfg.SMTP.From,
		cfg.SMTP.SiteURL,
	)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to init mail notifier")
		panic(err)
	}

	globalLogger.Info().
		Str("host", cfg.SMTP.Host).
		Msg("initialized mail notifier")
	return notifier
}
