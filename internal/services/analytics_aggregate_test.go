package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCoerceDays(t *testing.T) {
	assert.Equal(t, 30, coerceDays(0))
	assert.Equal(t, 30, coerceDays(-5))
	assert.Equal(t, 7, coerceDays(7))
	assert.Equal(t, 365, coerceDays(365))
}

func TestAnalyticsWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 45, 0, time.UTC)

	start, end := analyticsWindow(now, 7)
	assert.Equal(t, day(2025, 6, 9), start)
	assert.Equal(t, day(2025, 6, 15), end)

	start, end = analyticsWindow(now, 1)
	assert.Equal(t, end, start, "one-day window is just today")
}

func TestBuildAnalyticsStats_GapFreeDaily(t *testing.T) {
	start, end := day(2025, 6, 9), day(2025, 6, 15)
	stats := []sessionStat{
		{StartTime: day(2025, 6, 9).Add(9 * time.Hour), ActualMinutes: 50, FocusRating: intPtr(4), CategoryID: "c1", CategoryName: "Work"},
		{StartTime: day(2025, 6, 9).Add(14 * time.Hour), ActualMinutes: 30, FocusRating: intPtr(2), CategoryID: "c1", CategoryName: "Work"},
		{StartTime: day(2025, 6, 12).Add(10 * time.Hour), ActualMinutes: 60, CategoryID: "c2", CategoryName: "Study"},
	}

	result := buildAnalyticsStats(stats, start, end, 7)

	require.Len(t, result.Daily, 7, "every calendar day appears")
	assert.Equal(t, day(2025, 6, 9), result.Daily[0].Date)
	assert.Equal(t, 2, result.Daily[0].Sessions)
	assert.Equal(t, 80, result.Daily[0].Minutes)
	assert.InDelta(t, 3.0, result.Daily[0].AvgFocus, 0.001)

	// Day without sessions emits a zero record.
	assert.Equal(t, day(2025, 6, 10), result.Daily[1].Date)
	assert.Equal(t, 0, result.Daily[1].Sessions)
	assert.Equal(t, 0, result.Daily[1].Minutes)

	assert.Equal(t, 3, result.Totals.Sessions)
	assert.Equal(t, 140, result.Totals.Minutes)
	assert.InDelta(t, 2.3, result.Totals.Hours, 0.001)
	assert.InDelta(t, 3.0, result.Totals.AvgFocus, 0.001, "unrated sessions excluded")
	assert.InDelta(t, 47.0, result.Totals.AvgSessionLength, 0.001)
}

func TestBuildAnalyticsStats_CategoryOrdering(t *testing.T) {
	start, end := day(2025, 6, 15), day(2025, 6, 15)
	base := day(2025, 6, 15).Add(8 * time.Hour)
	stats := []sessionStat{
		{StartTime: base, ActualMinutes: 20, CategoryID: "small", CategoryName: "Small"},
		{StartTime: base, ActualMinutes: 90, CategoryID: "big", CategoryName: "Big"},
		{StartTime: base, ActualMinutes: 20, CategoryID: "tie", CategoryName: "Tie"},
	}

	result := buildAnalyticsStats(stats, start, end, 1)

	require.Len(t, result.Categories, 3)
	assert.Equal(t, "big", result.Categories[0].CategoryID, "most minutes first")
	// Equal minutes keep first-seen order.
	assert.Equal(t, "small", result.Categories[1].CategoryID)
	assert.Equal(t, "tie", result.Categories[2].CategoryID)
}

func TestBuildAnalyticsStats_Empty(t *testing.T) {
	start, end := day(2025, 6, 13), day(2025, 6, 15)
	result := buildAnalyticsStats(nil, start, end, 3)

	assert.Equal(t, 0, result.Totals.Sessions)
	assert.Equal(t, 0.0, result.Totals.AvgFocus)
	require.Len(t, result.Daily, 3)
	assert.Empty(t, result.Categories)
}

func TestBuildDailyMinutes(t *testing.T) {
	start, end := day(2025, 6, 9), day(2025, 6, 15)
	stats := []sessionStat{
		{StartTime: day(2025, 6, 9).Add(9 * time.Hour), ActualMinutes: 25},
		{StartTime: day(2025, 6, 9).Add(16 * time.Hour), ActualMinutes: 25},
		{StartTime: day(2025, 6, 14).Add(11 * time.Hour), ActualMinutes: 40},
	}

	minutes, labels := buildDailyMinutes(stats, start, end)

	assert.Equal(t, []int{50, 0, 0, 0, 0, 40, 0}, minutes)
	require.Len(t, labels, 7)
	assert.Equal(t, "Mon", labels[0])
	assert.Equal(t, "Sun", labels[6])
}

func TestBuildInsights(t *testing.T) {
	morning := day(2025, 6, 9).Add(9 * time.Hour)   // Monday 09:00
	evening := day(2025, 6, 10).Add(20 * time.Hour) // Tuesday 20:00
	stats := []sessionStat{
		{StartTime: morning, ActualMinutes: 60, FocusRating: intPtr(5), Outcome: "completed"},
		{StartTime: morning.Add(24 * time.Hour), ActualMinutes: 30, FocusRating: intPtr(4), Outcome: "completed"},
		{StartTime: evening, ActualMinutes: 30, FocusRating: intPtr(2), Outcome: "abandoned"},
	}

	insights := buildInsights(stats)

	assert.Equal(t, 3, insights.TotalSessions)
	assert.InDelta(t, 2.0, insights.TotalHours, 0.001)
	assert.InDelta(t, 3.7, insights.AvgFocusRating, 0.001)
	assert.Equal(t, "09:00", insights.MostProductiveHour)
	assert.Equal(t, "Monday", insights.BestFocusDay)
	assert.InDelta(t, 66.7, insights.CompletionRate, 0.001)
}

func TestBuildInsights_NoData(t *testing.T) {
	insights := buildInsights(nil)

	assert.Equal(t, "No data", insights.MostProductiveHour)
	assert.Equal(t, "No data", insights.BestFocusDay)
	assert.Equal(t, 0.0, insights.CompletionRate)
}

func TestBuildTips(t *testing.T) {
	// Low focus, few sessions, no goals: all three tips fire.
	tips := buildTips(Insights{AvgFocusRating: 2.1, TotalSessions: 5}, 0)
	require.Len(t, tips, 3)
	assert.Equal(t, "focus", tips[0].Type)
	assert.Equal(t, "frequency", tips[1].Type)
	assert.Equal(t, "goals", tips[2].Type)

	// A seasoned user with goals gets nothing.
	tips = buildTips(Insights{AvgFocusRating: 4.5, TotalSessions: 40}, 2)
	assert.Empty(t, tips)

	// Unrated sessions do not trigger the focus tip.
	tips = buildTips(Insights{AvgFocusRating: 0, TotalSessions: 40}, 1)
	assert.Empty(t, tips)
}

func TestSessionStreak(t *testing.T) {
	now := day(2025, 6, 15).Add(18 * time.Hour)

	dates := []time.Time{
		day(2025, 6, 15).Add(9 * time.Hour),
		day(2025, 6, 14).Add(21 * time.Hour),
		day(2025, 6, 13),
		day(2025, 6, 10), // gap on the 11th and 12th
	}
	assert.Equal(t, 3, sessionStreak(dates, now))

	assert.Equal(t, 0, sessionStreak(nil, now))
	assert.Equal(t, 0, sessionStreak([]time.Time{day(2025, 6, 14)}, now), "streak must include today")
}
