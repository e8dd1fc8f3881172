package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/timeboxhq/timebox/internal/services"
)

type Handler interface {
	HandleLogin(c *gin.Context)
	HandleRefresh(c *gin.Context)
	HandleRegister(c *gin.Context)
	HandleLogout(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)
	HandleLocaleMiddleware(c *gin.Context)

	HandleCreateTask(c *gin.Context)
	HandleGetTasks(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleToggleTask(c *gin.Context)
	HandleTaskProgress(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleStartSession(c *gin.Context)
	HandleCloseSession(c *gin.Context)
	HandlePauseSession(c *gin.Context)
	HandleGetSessions(c *gin.Context)
	HandleActiveSession(c *gin.Context)

	HandleCreateCategory(c *gin.Context)
	HandleGetCategories(c *gin.Context)
	HandleUpdateCategory(c *gin.Context)
	HandleDeleteCategory(c *gin.Context)

	HandleCreateGoal(c *gin.Context)
	HandleGetGoals(c *gin.Context)
	HandleUpdateGoal(c *gin.Context)
	HandleDeleteGoal(c *gin.Context)
	HandleGoalProgress(c *gin.Context)

	HandleCreateHabit(c *gin.Context)
	HandleGetHabits(c *gin.Context)
	HandleDeleteHabit(c *gin.Context)
	HandleLogHabit(c *gin.Context)

	HandleGetPreferences(c *gin.Context)
	HandleUpdatePreferences(c *gin.Context)

	HandleDashboardStats(c *gin.Context)
	HandleQuickStats(c *gin.Context)
	HandleAnalyticsStats(c *gin.Context)
	HandleInsights(c *gin.Context)

	HandleExport(c *gin.Context)
	HandleTriggerSweep(c *gin.Context)
}

type handlerImpl struct {
	logger      zerolog.Logger
	auth        services.AuthService
	tasks       services.TaskService
	categories  services.CategoryService
	goals       services.GoalService
	habits      services.HabitService
	timebox     services.TimeboxService
	analytics   services.AnalyticsService
	sweeper     services.SweeperService
	preferences services.PreferencesService
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	taskService services.TaskService,
	categoryService services.CategoryService,
	goalService services.GoalService,
	habitService services.HabitService,
	timeboxService services.TimeboxService,
	analyticsService services.AnalyticsService,
	sweeperService services.SweeperService,
	preferencesService services.PreferencesService,
) Handler {
	return &handlerImpl{
		logger:      logger,
		auth:        authService,
		tasks:       taskService,
		categories:  categoryService,
		goals:       goalService,
		habits:      habitService,
		timebox:     timeboxService,
		analytics:   analyticsService,
		sweeper:     sweeperService,
		preferences: preferencesService,
	}
}
