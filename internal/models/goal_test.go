package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoal_CurrentPeriodBounds_Daily(t *testing.T) {
	goal := Goal{Period: PeriodDaily}
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

	start, end, ok := goal.CurrentPeriodBounds(now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, start, end)
}

func TestGoal_CurrentPeriodBounds_Weekly(t *testing.T) {
	goal := Goal{Period: PeriodWeekly}

	// 2025-06-11 is a Wednesday; the week is Mon 9th through Sun 15th.
	now := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)
	start, end, ok := goal.CurrentPeriodBounds(now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), end)

	// Sunday belongs to the week that started the previous Monday.
	sunday := time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC)
	start, end, ok = goal.CurrentPeriodBounds(sunday)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), end)

	// Monday starts a new week.
	monday := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	start, end, ok = goal.CurrentPeriodBounds(monday)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 6, 22, 0, 0, 0, 0, time.UTC), end)
}

func TestGoal_CurrentPeriodBounds_Monthly(t *testing.T) {
	goal := Goal{Period: PeriodMonthly}

	now := time.Date(2025, 2, 14, 8, 0, 0, 0, time.UTC)
	start, end, ok := goal.CurrentPeriodBounds(now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), end)

	december := time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)
	start, end, ok = goal.CurrentPeriodBounds(december)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), end)
}

func TestGoal_CurrentPeriodBounds_Unsupported(t *testing.T) {
	now := time.Now()
	for _, period := range []string{PeriodQuarterly, PeriodYearly, ""} {
		goal := Goal{Period: period}
		_, _, ok := goal.CurrentPeriodBounds(now)
		assert.False(t, ok, period)
	}
}

func TestGoal_PeriodProgress(t *testing.T) {
	goal := Goal{TargetHours: 10}

	assert.Equal(t, 0.0, goal.PeriodProgress(0))
	assert.Equal(t, 50.0, goal.PeriodProgress(300))
	assert.Equal(t, 100.0, goal.PeriodProgress(600))
	assert.Equal(t, 100.0, goal.PeriodProgress(900), "clamped at 100")

	zeroTarget := Goal{}
	assert.Equal(t, 0.0, zeroTarget.PeriodProgress(300))
}
