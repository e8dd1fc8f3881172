package models

import "time"

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
	ThemeAuto  = "auto"
)

type UserPreferences struct {
	UserID              string
	WorkDuration        int
	BreakDuration       int
	LongBreakDuration   int
	SessionsBeforeBreak int
	DailyGoalSessions   int
	WeeklyGoalHours     float64
	EnableNotifications bool
	SessionReminders    bool
	BreakReminders      bool
	Theme               string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// DefaultPreferences is the row created lazily on first access.
func DefaultPreferences(userID string, now time.Time) *UserPreferences {
	return &UserPreferences{
		UserID:              userID,
		WorkDuration:        25,
		BreakDuration:       5,
		LongBreakDuration:   15,
		SessionsBeforeBreak: 4,
		DailyGoalSessions:   8,
		WeeklyGoalHours:     20.0,
		EnableNotifications: true,
		SessionReminders:    true,
		BreakReminders:      true,
		Theme:               ThemeLight,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// SuggestedBreak picks a break length after a closed session: long break
// after an hour of work, a short one after a high-focus sprint.
func (p *UserPreferences) SuggestedBreak(actualMinutes int, focusRating *int) int {
	if actualMinutes > 60 {
		return p.LongBreakDuration
	}
	if focusRating != nil && *focusRating >= 4 {
		return 3
	}
	return p.BreakDuration
}
