package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timeboxhq/timebox/internal/models"
	"github.com/timeboxhq/timebox/internal/services"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubAuthService struct {
	services.AuthService

	resolveToken func(ctx context.Context, token string) (string, string, error)
}

func (s *stubAuthService) ResolveToken(ctx context.Context, token string) (string, string, error) {
	return s.resolveToken(ctx, token)
}

type stubTaskService struct {
	services.TaskService

	createTask       func(ctx context.Context, params services.CreateTaskParams) (*models.Task, error)
	listTasks        func(ctx context.Context, userID string) ([]*models.Task, error)
	updateTask       func(ctx context.Context, params services.UpdateTaskParams) (*models.Task, error)
	deleteTask       func(ctx context.Context, userID, taskID string) error
	toggleCompletion func(ctx context.Context, userID, taskID string) (*models.Task, error)
}

func (s *stubTaskService) CreateTask(ctx context.Context, params services.CreateTaskParams) (*models.Task, error) {
	return s.createTask(ctx, params)
}

func (s *stubTaskService) ListTasks(ctx context.Context, userID string) ([]*models.Task, error) {
	return s.listTasks(ctx, userID)
}

func (s *stubTaskService) UpdateTask(ctx context.Context, params services.UpdateTaskParams) (*models.Task, error) {
	return s.updateTask(ctx, params)
}

func (s *stubTaskService) DeleteTask(ctx context.Context, userID, taskID string) error {
	return s.deleteTask(ctx, userID, taskID)
}

func (s *stubTaskService) ToggleCompletion(ctx context.Context, userID, taskID string) (*models.Task, error) {
	return s.toggleCompletion(ctx, userID, taskID)
}

type stubTimeboxService struct {
	services.TimeboxService

	startSession  func(ctx context.Context, params services.StartSessionParams) (*models.TimeboxSession, error)
	closeSession  func(ctx context.Context, params services.CloseSessionParams) (*services.CloseSessionResult, error)
	listSessions  func(ctx context.Context, userID string, limit uint32) ([]*models.TimeboxSession, error)
	activeSession func(ctx context.Context, userID string) (*models.TimeboxSession, error)
}

func (s *stubTimeboxService) StartSession(ctx context.Context, params services.StartSessionParams) (*models.TimeboxSession, error) {
	return s.startSession(ctx, params)
}

func (s *stubTimeboxService) CloseSession(ctx context.Context, params services.CloseSessionParams) (*services.CloseSessionResult, error) {
	return s.closeSession(ctx, params)
}

func (s *stubTimeboxService) ListSessions(ctx context.Context, userID string, limit uint32) ([]*models.TimeboxSession, error) {
	return s.listSessions(ctx, userID, limit)
}

func (s *stubTimeboxService) ActiveSession(ctx context.Context, userID string) (*models.TimeboxSession, error) {
	return s.activeSession(ctx, userID)
}

type stubCategoryService struct {
	services.CategoryService

	listCategories func(ctx context.Context, userID string) ([]*models.Category, error)
	deleteCategory func(ctx context.Context, userID, categoryID string) error
}

func (s *stubCategoryService) ListCategories(ctx context.Context, userID string) ([]*models.Category, error) {
	return s.listCategories(ctx, userID)
}

func (s *stubCategoryService) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	return s.deleteCategory(ctx, userID, categoryID)
}

type stubGoalService struct {
	services.GoalService

	listGoals func(ctx context.Context, userID string) ([]*models.Goal, error)
}

func (s *stubGoalService) ListGoals(ctx context.Context, userID string) ([]*models.Goal, error) {
	return s.listGoals(ctx, userID)
}

type testHandler struct {
	auth       *stubAuthService
	tasks      *stubTaskService
	timebox    *stubTimeboxService
	categories *stubCategoryService
	goals      *stubGoalService
	handler    Handler
}

func newTestHandler() *testHandler {
	th := &testHandler{
		auth: &stubAuthService{
			resolveToken: func(context.Context, string) (string, string, error) {
				return "user-1", "session-1", nil
			},
		},
		tasks:      &stubTaskService{},
		timebox:    &stubTimeboxService{},
		categories: &stubCategoryService{},
		goals:      &stubGoalService{},
	}
	th.handler = New(
		zerolog.Nop(),
		th.auth,
		th.tasks,
		th.categories,
		th.goals,
		nil,
		th.timebox,
		nil,
		nil,
		nil,
	)
	return th
}

func newTestRouter(th *testHandler) *gin.Engine {
	router := gin.New()
	group := router.Group("/api/v1", th.handler.HandleLocaleMiddleware, th.handler.HandleAuthMiddleware)
	group.POST("/tasks", th.handler.HandleCreateTask)
	group.GET("/tasks", th.handler.HandleGetTasks)
	group.PATCH("/tasks/:id", th.handler.HandleUpdateTask)
	group.POST("/tasks/:id/toggle", th.handler.HandleToggleTask)
	group.DELETE("/tasks/:id", th.handler.HandleDeleteTask)
	group.POST("/sessions", th.handler.HandleStartSession)
	group.GET("/sessions", th.handler.HandleGetSessions)
	group.POST("/sessions/:id/close", th.handler.HandleCloseSession)
	group.GET("/sessions/active", th.handler.HandleActiveSession)
	group.DELETE("/categories/:id", th.handler.HandleDeleteCategory)
	group.GET("/export", th.handler.HandleExport)
	return router
}

func doRequest(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer test-token")
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	th := newTestHandler()
	router := newTestRouter(th)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	th := newTestHandler()
	th.auth.resolveToken = func(context.Context, string) (string, string, error) {
		return "", "", services.ErrAuthSessionNotFound
	}
	router := newTestRouter(th)

	w := doRequest(router, http.MethodGet, "/api/v1/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleCreateTask(t *testing.T) {
	th := newTestHandler()
	th.tasks.createTask = func(_ context.Context, params services.CreateTaskParams) (*models.Task, error) {
		assert.Equal(t, "user-1", params.UserID)
		assert.Equal(t, "Write report", params.Title)
		assert.Equal(t, 2, params.Priority)
		require.NotNil(t, params.DueDate)
		return &models.Task{
			ID:         "task-1",
			UserID:     params.UserID,
			Title:      params.Title,
			CategoryID: params.CategoryID,
			Priority:   params.Priority,
			DueDate:    params.DueDate,
		}, nil
	}
	router := newTestRouter(th)

	body := `{
		"title": "Write report",
		"category_id": "cat-1",
		"priority": 2,
		"energy_level": "high",
		"estimated_minutes": 60,
		"due_date": "2030-07-01"
	}`
	w := doRequest(router, http.MethodPost, "/api/v1/tasks", body, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"task-1"`)
	assert.Contains(t, w.Body.String(), `"status":"in_progress"`)
}

func TestHandleCreateTask_JalaliDueDate(t *testing.T) {
	th := newTestHandler()
	th.tasks.createTask = func(_ context.Context, params services.CreateTaskParams) (*models.Task, error) {
		require.NotNil(t, params.DueDate)
		// 1403/06/15 converts to 2024-09-05.
		assert.Equal(t, 2024, params.DueDate.Year())
		return &models.Task{ID: "task-1", DueDate: params.DueDate}, nil
	}
	router := newTestRouter(th)

	body := `{
		"title": "گزارش",
		"category_id": "cat-1",
		"priority": 1,
		"energy_level": "low",
		"due_date": "1403/06/15"
	}`
	w := doRequest(router, http.MethodPost, "/api/v1/tasks", body, map[string]string{"X-Locale": "fa"})

	assert.Equal(t, http.StatusCreated, w.Code)
	// The display date follows the request locale.
	assert.Contains(t, w.Body.String(), "۱۴۰۳")
}

func TestHandleCreateTask_InvalidBody(t *testing.T) {
	th := newTestHandler()
	router := newTestRouter(th)

	w := doRequest(router, http.MethodPost, "/api/v1/tasks", `{"title": ""}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleCreateTask_InvalidDueDate(t *testing.T) {
	th := newTestHandler()
	router := newTestRouter(th)

	body := `{
		"title": "Task",
		"category_id": "cat-1",
		"priority": 1,
		"energy_level": "low",
		"due_date": "tomorrow"
	}`
	w := doRequest(router, http.MethodPost, "/api/v1/tasks", body, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleStartSession_Conflict(t *testing.T) {
	th := newTestHandler()
	th.timebox.startSession = func(context.Context, services.StartSessionParams) (*models.TimeboxSession, error) {
		return nil, services.ErrActiveSessionExists
	}
	router := newTestRouter(th)

	body := `{"task_id": "task-1", "planned_minutes": 25}`
	w := doRequest(router, http.MethodPost, "/api/v1/sessions", body, nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "active session already exists")
}

func TestHandleActiveSession_None(t *testing.T) {
	th := newTestHandler()
	th.timebox.activeSession = func(context.Context, string) (*models.TimeboxSession, error) {
		return nil, nil
	}
	router := newTestRouter(th)

	w := doRequest(router, http.MethodGet, "/api/v1/sessions/active", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"active":false`)
}

func TestHandleDeleteCategory_HasTasks(t *testing.T) {
	th := newTestHandler()
	th.categories.deleteCategory = func(context.Context, string, string) error {
		return services.ErrCategoryHasTasks
	}
	router := newTestRouter(th)

	w := doRequest(router, http.MethodDelete, "/api/v1/categories/cat-1", "", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "category has dependent tasks")
}

func TestHandleUpdateTask_ForeignGoal(t *testing.T) {
	th := newTestHandler()
	th.tasks.updateTask = func(_ context.Context, params services.UpdateTaskParams) (*models.Task, error) {
		assert.Equal(t, "user-1", params.UserID)
		require.NotNil(t, params.GoalID)
		assert.Equal(t, "goal-of-someone-else", *params.GoalID)
		return nil, services.ErrGoalNotFound
	}
	router := newTestRouter(th)

	body := `{"goal_id": "goal-of-someone-else"}`
	w := doRequest(router, http.MethodPatch, "/api/v1/tasks/task-1", body, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "goal not found")
}

func TestHandleUpdateTask_ForeignCategory(t *testing.T) {
	th := newTestHandler()
	th.tasks.updateTask = func(context.Context, services.UpdateTaskParams) (*models.Task, error) {
		return nil, services.ErrCategoryNotFound
	}
	router := newTestRouter(th)

	body := `{"category_id": "cat-of-someone-else"}`
	w := doRequest(router, http.MethodPatch, "/api/v1/tasks/task-1", body, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "category not found")
}

func TestHandleToggleTask_Completed(t *testing.T) {
	th := newTestHandler()
	now := time.Now()
	th.tasks.toggleCompletion = func(_ context.Context, userID, taskID string) (*models.Task, error) {
		assert.Equal(t, "user-1", userID)
		assert.Equal(t, "task-1", taskID)
		return &models.Task{
			ID:          taskID,
			UserID:      userID,
			Title:       "Write report",
			IsCompleted: true,
			CompletedAt: &now,
		}, nil
	}
	router := newTestRouter(th)

	w := doRequest(router, http.MethodPost, "/api/v1/tasks/task-1/toggle", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_completed":true`)
	assert.Contains(t, w.Body.String(), `"status":"completed"`)
}

func TestHandleCloseSession_TaskCompleted(t *testing.T) {
	th := newTestHandler()
	th.timebox.closeSession = func(_ context.Context, params services.CloseSessionParams) (*services.CloseSessionResult, error) {
		assert.Equal(t, "user-1", params.UserID)
		assert.Equal(t, "sess-1", params.SessionID)
		assert.Equal(t, models.OutcomeCompleted, params.Outcome)
		assert.True(t, params.TaskCompleted)
		end := time.Now()
		minutes := 27
		return &services.CloseSessionResult{
			Session: &models.TimeboxSession{
				ID:             params.SessionID,
				TaskID:         "task-1",
				StartTime:      end.Add(-27 * time.Minute),
				EndTime:        &end,
				PlannedMinutes: 25,
				ActualMinutes:  &minutes,
				Outcome:        params.Outcome,
			},
			BreakDuration: 5,
		}, nil
	}
	router := newTestRouter(th)

	body := `{"outcome": "completed", "task_completed": true}`
	w := doRequest(router, http.MethodPost, "/api/v1/sessions/sess-1/close", body, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"break_duration":5`)
	assert.Contains(t, w.Body.String(), `"outcome":"completed"`)
}

func TestHandleGetSessions_LimitClamped(t *testing.T) {
	th := newTestHandler()
	th.timebox.listSessions = func(_ context.Context, userID string, limit uint32) ([]*models.TimeboxSession, error) {
		assert.Equal(t, "user-1", userID)
		assert.Equal(t, uint32(maxSessionLimit), limit)
		return nil, nil
	}
	router := newTestRouter(th)

	w := doRequest(router, http.MethodGet, "/api/v1/sessions?limit=4294967295", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestParseSessionLimit(t *testing.T) {
	tests := []struct {
		raw  string
		want uint32
	}{
		{"", defaultSessionLimit},
		{"0", defaultSessionLimit},
		{"-1", defaultSessionLimit},
		{"abc", defaultSessionLimit},
		{"25", 25},
		{"500", maxSessionLimit},
		{"501", maxSessionLimit},
		{"4294967295", maxSessionLimit},
		{"99999999999999999999", defaultSessionLimit},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseSessionLimit(tt.raw), "limit=%q", tt.raw)
	}
}

func TestHandleDeleteTask_NotFound(t *testing.T) {
	th := newTestHandler()
	th.tasks.deleteTask = func(context.Context, string, string) error {
		return services.ErrTaskNotFound
	}
	router := newTestRouter(th)

	w := doRequest(router, http.MethodDelete, "/api/v1/tasks/task-1", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
