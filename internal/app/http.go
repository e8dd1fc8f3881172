package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/timeboxhq/timebox/internal/config"
	v1 "github.com/timeboxhq/timebox/internal/delivery/http/v1"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	registerRoutes(router)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// Wait for the interrupt signal to gracefully
	// shut down the server with a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	// kill (no params) by default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func registerRoutes(router gin.IRouter) {
	v1Handler := v1.New(
		globalLogger,
		globalAuthService,
		globalTaskService,
		globalCategoryService,
		globalGoalService,
		globalHabitService,
		globalTimeboxService,
		globalAnalyticsService,
		globalSweeperService,
		globalPreferencesService,
	)

	router = router.Group("/api/v1", v1Handler.HandleLocaleMiddleware)

	authRouter := router.Group("/auth")
	authRouter.POST("/login", v1Handler.HandleLogin)
	authRouter.POST("/refresh", v1Handler.HandleRefresh)
	authRouter.POST("/register", v1Handler.HandleRegister)
	authRouter.POST("/logout", v1Handler.HandleAuthMiddleware, v1Handler.HandleLogout)

	protected := router.Group("", v1Handler.HandleAuthMiddleware)

	tasksRouter := protected.Group("/tasks")
	tasksRouter.POST("", v1Handler.HandleCreateTask)
	tasksRouter.GET("", v1Handler.HandleGetTasks)
	tasksRouter.GET("/:id", v1Handler.HandleGetTask)
	tasksRouter.PATCH("/:id", v1Handler.HandleUpdateTask)
	tasksRouter.POST("/:id/toggle", v1Handler.HandleToggleTask)
	tasksRouter.GET("/:id/progress", v1Handler.HandleTaskProgress)
	tasksRouter.DELETE("/:id", v1Handler.HandleDeleteTask)

	sessionsRouter := protected.Group("/sessions")
	sessionsRouter.POST("", v1Handler.HandleStartSession)
	sessionsRouter.GET("", v1Handler.HandleGetSessions)
	sessionsRouter.GET("/active", v1Handler.HandleActiveSession)
	sessionsRouter.POST("/:id/close", v1Handler.HandleCloseSession)
	sessionsRouter.POST("/:id/pause", v1Handler.HandlePauseSession)

	categoriesRouter := protected.Group("/categories")
	categoriesRouter.POST("", v1Handler.HandleCreateCategory)
	categoriesRouter.GET("", v1Handler.HandleGetCategories)
	categoriesRouter.PATCH("/:id", v1Handler.HandleUpdateCategory)
	categoriesRouter.DELETE("/:id", v1Handler.HandleDeleteCategory)

	goalsRouter := protected.Group("/goals")
	goalsRouter.POST("", v1Handler.HandleCreateGoal)
	goalsRouter.GET("", v1Handler.HandleGetGoals)
	goalsRouter.PATCH("/:id", v1Handler.HandleUpdateGoal)
	goalsRouter.DELETE("/:id", v1Handler.HandleDeleteGoal)
	goalsRouter.GET("/:id/progress", v1Handler.HandleGoalProgress)

	habitsRouter := protected.Group("/habits")
	habitsRouter.POST("", v1Handler.HandleCreateHabit)
	habitsRouter.GET("", v1Handler.HandleGetHabits)
	habitsRouter.DELETE("/:id", v1Handler.HandleDeleteHabit)
	habitsRouter.POST("/:id/log", v1Handler.HandleLogHabit)

	preferencesRouter := protected.Group("/preferences")
	preferencesRouter.GET("", v1Handler.HandleGetPreferences)
	preferencesRouter.PATCH("", v1Handler.HandleUpdatePreferences)

	statsRouter := protected.Group("/stats")
	statsRouter.GET("/dashboard", v1Handler.HandleDashboardStats)
	statsRouter.GET("/quick", v1Handler.HandleQuickStats)
	statsRouter.GET("/analytics", v1Handler.HandleAnalyticsStats)
	statsRouter.GET("/insights", v1Handler.HandleInsights)

	protected.GET("/export", v1Handler.HandleExport)
	protected.POST("/sweep", v1Handler.HandleTriggerSweep)
}
