package services

import (
	"context"
	"errors"
	"time"

	"github.com/timeboxhq/timebox/internal/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserPasswordMismatch = errors.New("user password mismatch")
	ErrAuthSessionNotFound  = errors.New("auth session not found")
	ErrAuthSessionExpired   = errors.New("auth session expired")

	ErrTaskNotFound          = errors.New("task not found")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category already exists")
	ErrCategoryHasTasks      = errors.New("category has dependent tasks")
	ErrGoalNotFound          = errors.New("goal not found")
	ErrHabitNotFound         = errors.New("habit not found")
	ErrSessionNotFound       = errors.New("session not found")

	// ErrActiveSessionExists rejects a session start while the user
	// already holds an open session.
	ErrActiveSessionExists = errors.New("active session already exists")

	ErrValidation = errors.New("validation error")
)

type AuthService interface {
	// Login authenticates the user by email and password, replaces the
	// user's auth sessions with a fresh one and issues a JWT token pair.
	//
	// It returns ErrUserNotFound or ErrUserPasswordMismatch.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Refresh rotates the refresh token of the auth session it belongs
	// to. It returns ErrAuthSessionNotFound or ErrAuthSessionExpired.
	Refresh(ctx context.Context, params RefreshParams) (*LoginResult, error)

	// Register creates a user with a hashed password and logs it in.
	// It returns ErrUserAlreadyExists for a duplicate email.
	Register(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Logout invalidates all auth sessions of the user.
	Logout(ctx context.Context, userID string) error

	// ResolveToken parses an access token and returns the owning user
	// and auth session ids.
	ResolveToken(ctx context.Context, token string) (userID, sessionID string, err error)
}

type TaskService interface {
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)
	GetTaskByID(ctx context.Context, userID, taskID string) (*models.Task, error)
	ListTasks(ctx context.Context, userID string) ([]*models.Task, error)
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)
	DeleteTask(ctx context.Context, userID, taskID string) error

	// ToggleCompletion flips the completion flag. Completing a task also
	// closes its open session, if any, crediting the elapsed minutes.
	ToggleCompletion(ctx context.Context, userID, taskID string) (*models.Task, error)

	// TaskProgress derives live progress: closed session minutes plus
	// the elapsed minutes of an open session, never persisted.
	TaskProgress(ctx context.Context, userID, taskID string) (*TaskProgress, error)
}

type CategoryService interface {
	CreateCategory(ctx context.Context, params CategoryParams) (*models.Category, error)
	ListCategories(ctx context.Context, userID string) ([]*models.Category, error)
	UpdateCategory(ctx context.Context, categoryID string, params CategoryParams) (*models.Category, error)

	// DeleteCategory returns ErrCategoryHasTasks if tasks reference the
	// category.
	DeleteCategory(ctx context.Context, userID, categoryID string) error
}

type GoalService interface {
	CreateGoal(ctx context.Context, params GoalParams) (*models.Goal, error)
	ListGoals(ctx context.Context, userID string) ([]*models.Goal, error)
	UpdateGoal(ctx context.Context, goalID string, params GoalParams) (*models.Goal, error)
	DeleteGoal(ctx context.Context, userID, goalID string) error

	// GoalProgress reports completion of the goal's current period as a
	// percentage of its target hours.
	GoalProgress(ctx context.Context, userID, goalID string) (*GoalProgress, error)
}

type HabitService interface {
	CreateHabit(ctx context.Context, params HabitParams) (*models.Habit, error)
	ListHabits(ctx context.Context, userID string) ([]*models.Habit, error)
	DeleteHabit(ctx context.Context, userID, habitID string) error

	// LogHabit upserts the completion log of a habit for a calendar day.
	LogHabit(ctx context.Context, params HabitLogParams) (*models.HabitLog, error)
}

type TimeboxService interface {
	// StartSession opens a session for the task. At most one session per
	// user may be open; a concurrent or repeated start returns
	// ErrActiveSessionExists.
	StartSession(ctx context.Context, params StartSessionParams) (*models.TimeboxSession, error)

	// CloseSession ends an open session, records the accrued minutes
	// (floored at one) and the outcome, and optionally completes the
	// linked task in the same transaction.
	CloseSession(ctx context.Context, params CloseSessionParams) (*CloseSessionResult, error)

	// PauseSession is a close with the outcome forced to interrupted.
	PauseSession(ctx context.Context, userID, sessionID string) (*CloseSessionResult, error)

	GetSessionByID(ctx context.Context, userID, sessionID string) (*models.TimeboxSession, error)
	ListSessions(ctx context.Context, userID string, limit uint32) ([]*models.TimeboxSession, error)

	// ActiveSession returns the user's open session, or nil.
	ActiveSession(ctx context.Context, userID string) (*models.TimeboxSession, error)
}

type AnalyticsService interface {
	// AnalyticsStats aggregates the user's sessions over a trailing
	// window of days. Non-positive days defaults to 30.
	AnalyticsStats(ctx context.Context, userID string, days int) (*AnalyticsStats, error)

	DashboardStats(ctx context.Context, userID string) (*DashboardStats, error)
	QuickStats(ctx context.Context, userID string) (*QuickStats, error)
	Insights(ctx context.Context, userID string, days int) (*Insights, error)
}

type SweeperService interface {
	// SweepOverdue escalates the priority of past-due tasks and sends
	// one batched notification per affected owner.
	SweepOverdue(ctx context.Context) (*SweepReport, error)

	// SweepUrgent re-notifies owners of tasks overdue for more than 24
	// hours with an urgent variant. Priorities are left alone.
	SweepUrgent(ctx context.Context) (*SweepReport, error)

	// CleanupCompleted deletes completed tasks older than the retention
	// window.
	CleanupCompleted(ctx context.Context, olderThanDays int) (int64, error)
}

type PreferencesService interface {
	// GetPreferences returns the user's preferences, creating the
	// default row on first access.
	GetPreferences(ctx context.Context, userID string) (*models.UserPreferences, error)
	UpdatePreferences(ctx context.Context, params UpdatePreferencesParams) (*models.UserPreferences, error)
}

// Notifier delivers overdue-task notifications. Delivery failures are
// isolated per recipient by the sweeper.
type Notifier interface {
	NotifyOverdue(ctx context.Context, email string, tasks []*models.Task, urgent bool) error
}

type LoginParams struct {
	Email       string
	Password    string
	Fingerprint string
}

type LoginResult struct {
	UserID                string
	SessionID             string
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

type RefreshParams struct {
	RefreshToken string
	Fingerprint  string
}

type CreateTaskParams struct {
	UserID           string
	Title            string
	Description      string
	CategoryID       string
	GoalID           *string
	Priority         int
	EnergyLevel      string
	EstimatedMinutes int
	DueDate          *time.Time
}

type UpdateTaskParams struct {
	UserID           string
	TaskID           string
	Title            *string
	Description      *string
	CategoryID       *string
	GoalID           *string
	Priority         *int
	EnergyLevel      *string
	EstimatedMinutes *int
	DueDate          *time.Time
	ClearDueDate     bool
}

type TaskProgress struct {
	TaskID               string
	ElapsedMinutes       int
	EstimatedMinutes     int
	CompletionPercentage float64
	Status               string
	HasActiveSession     bool
}

type CategoryParams struct {
	UserID       string
	Name         string
	CategoryType string
	Description  string
	Color        string
	Icon         string
	IsActive     bool
}

type GoalParams struct {
	UserID      string
	Title       string
	Description string
	CategoryID  string
	TargetHours float64
	Period      string
	Status      string
	StartDate   time.Time
	EndDate     *time.Time
}

type GoalProgress struct {
	GoalID       string
	PeriodStart  time.Time
	PeriodEnd    time.Time
	TotalMinutes int
	TargetHours  float64
	Percentage   float64
}

type HabitParams struct {
	UserID      string
	Name        string
	Description string
	CategoryID  string
	Frequency   string
	Target      int
}

type HabitLogParams struct {
	UserID    string
	HabitID   string
	Date      time.Time
	Completed bool
	Notes     string
}

type StartSessionParams struct {
	UserID         string
	TaskID         string
	PlannedMinutes int
	EnergyBefore   *int
}

type CloseSessionParams struct {
	UserID        string
	SessionID     string
	Outcome       string
	FocusRating   *int
	EnergyAfter   *int
	Notes         string
	Distractions  string
	KeyInsights   string
	TaskCompleted bool
}

type CloseSessionResult struct {
	Session       *models.TimeboxSession
	BreakDuration int
}

type AnalyticsStats struct {
	Days       int
	StartDate  time.Time
	EndDate    time.Time
	Totals     AnalyticsTotals
	Daily      []DailyStat
	Categories []CategoryStat
}

type AnalyticsTotals struct {
	Sessions         int
	Minutes          int
	Hours            float64
	AvgFocus         float64
	AvgSessionLength float64
}

type DailyStat struct {
	Date     time.Time
	Sessions int
	Minutes  int
	AvgFocus float64
}

type CategoryStat struct {
	CategoryID   string
	Name         string
	Color        string
	Icon         string
	TotalMinutes int
	SessionCount int
}

type DashboardStats struct {
	TodaySessions     int
	TodayMinutes      int
	TodayAvgFocus     float64
	TodayCompleted    int
	PendingTasks      int
	ActiveGoals       int
	TotalTasks        int
	CompletedTasks    int
	InProgressTasks   int
	OverdueTasks      int
	PriorityBreakdown map[string]int
	WeeklyMinutes     []int
	WeekdayLabels     []string
	HasActiveSession  bool
}

type QuickStats struct {
	TodaySessions int
	ActiveSession bool
	PendingTasks  int
}

type Insights struct {
	TotalSessions      int
	TotalHours         float64
	AvgFocusRating     float64
	MostProductiveHour string
	BestFocusDay       string
	CompletionRate     float64
	Streak             int
	Tips               []Tip
}

type Tip struct {
	Type    string
	Title   string
	Message string
	Action  string
}

type SweepReport struct {
	OverdueTasks int
	Escalated    int
	Owners       int
	Notified     int
	FailedOwners int
}

type UpdatePreferencesParams struct {
	UserID              string
	WorkDuration        *int
	BreakDuration       *int
	LongBreakDuration   *int
	SessionsBeforeBreak *int
	DailyGoalSessions   *int
	WeeklyGoalHours     *float64
	EnableNotifications *bool
	SessionReminders    *bool
	BreakReminders      *bool
	Theme               *string
}
