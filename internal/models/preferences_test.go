package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPreferences(t *testing.T) {
	now := time.Now()
	prefs := DefaultPreferences("user-1", now)

	assert.Equal(t, "user-1", prefs.UserID)
	assert.Equal(t, 25, prefs.WorkDuration)
	assert.Equal(t, 5, prefs.BreakDuration)
	assert.Equal(t, ThemeLight, prefs.Theme)
	assert.True(t, prefs.EnableNotifications)
}

func TestUserPreferences_SuggestedBreak(t *testing.T) {
	prefs := UserPreferences{BreakDuration: 5, LongBreakDuration: 15}

	assert.Equal(t, 15, prefs.SuggestedBreak(90, nil), "long session earns a long break")
	assert.Equal(t, 3, prefs.SuggestedBreak(30, intPtr(5)), "high focus gets a short reset")
	assert.Equal(t, 5, prefs.SuggestedBreak(30, intPtr(2)))
	assert.Equal(t, 5, prefs.SuggestedBreak(30, nil))
	assert.Equal(t, 15, prefs.SuggestedBreak(61, intPtr(5)), "duration wins over focus")
}
