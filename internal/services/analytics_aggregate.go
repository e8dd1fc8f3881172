package services

import (
	"fmt"
	"math"
	"sort"
	"time"
)

const defaultAnalyticsDays = 30

// sessionStat is one session row joined with its task's category, the
// input of the pure aggregation below.
type sessionStat struct {
	StartTime      time.Time
	ActualMinutes  int
	PlannedMinutes int
	FocusRating    *int
	Outcome        string
	CategoryID     string
	CategoryName   string
	CategoryColor  string
	CategoryIcon   string
}

// coerceDays normalizes the requested window: anything non-positive falls
// back to the 30-day default.
func coerceDays(days int) int {
	if days <= 0 {
		return defaultAnalyticsDays
	}
	return days
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// analyticsWindow resolves the inclusive [start, end] date bounds of a
// trailing window ending today.
func analyticsWindow(now time.Time, days int) (start, end time.Time) {
	end = dateOnly(now)
	return end.AddDate(0, 0, -(days - 1)), end
}

// buildAnalyticsStats aggregates session rows over the window. The daily
// series covers every calendar day in the window; days without sessions
// emit zero-valued records.
func buildAnalyticsStats(stats []sessionStat, start, end time.Time, days int) *AnalyticsStats {
	result := &AnalyticsStats{
		Days:      days,
		StartDate: start,
		EndDate:   end,
		Daily:     make([]DailyStat, 0, days),
	}

	type dayAgg struct {
		sessions   int
		minutes    int
		focusSum   int
		focusCount int
	}
	byDay := make(map[time.Time]*dayAgg)

	type catAgg struct {
		stat  CategoryStat
		order int
	}
	byCategory := make(map[string]*catAgg)

	focusSum, focusCount := 0, 0
	lengthSum, lengthCount := 0, 0
	for _, s := range stats {
		result.Totals.Sessions++
		result.Totals.Minutes += s.ActualMinutes
		if s.FocusRating != nil {
			focusSum += *s.FocusRating
			focusCount++
		}
		if s.ActualMinutes > 0 {
			lengthSum += s.ActualMinutes
			lengthCount++
		}

		day := dateOnly(s.StartTime)
		agg, ok := byDay[day]
		if !ok {
			agg = new(dayAgg)
			byDay[day] = agg
		}
		agg.sessions++
		agg.minutes += s.ActualMinutes
		if s.FocusRating != nil {
			agg.focusSum += *s.FocusRating
			agg.focusCount++
		}

		cat, ok := byCategory[s.CategoryID]
		if !ok {
			cat = &catAgg{
				stat: CategoryStat{
					CategoryID: s.CategoryID,
					Name:       s.CategoryName,
					Color:      s.CategoryColor,
					Icon:       s.CategoryIcon,
				},
				order: len(byCategory),
			}
			byCategory[s.CategoryID] = cat
		}
		cat.stat.TotalMinutes += s.ActualMinutes
		cat.stat.SessionCount++
	}

	result.Totals.Hours = round1(float64(result.Totals.Minutes) / 60)
	if focusCount > 0 {
		result.Totals.AvgFocus = round1(float64(focusSum) / float64(focusCount))
	}
	if lengthCount > 0 {
		result.Totals.AvgSessionLength = math.Round(float64(lengthSum) / float64(lengthCount))
	}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		daily := DailyStat{Date: day}
		if agg, ok := byDay[day]; ok {
			daily.Sessions = agg.sessions
			daily.Minutes = agg.minutes
			if agg.focusCount > 0 {
				daily.AvgFocus = round1(float64(agg.focusSum) / float64(agg.focusCount))
			}
		}
		result.Daily = append(result.Daily, daily)
	}

	categories := make([]*catAgg, 0, len(byCategory))
	for _, cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].stat.TotalMinutes != categories[j].stat.TotalMinutes {
			return categories[i].stat.TotalMinutes > categories[j].stat.TotalMinutes
		}
		return categories[i].order < categories[j].order
	})
	result.Categories = make([]CategoryStat, len(categories))
	for i, cat := range categories {
		result.Categories[i] = cat.stat
	}

	return result
}

// buildDailyMinutes sums session minutes per calendar day over the window,
// gap-free, oldest first.
func buildDailyMinutes(stats []sessionStat, start, end time.Time) ([]int, []string) {
	byDay := make(map[time.Time]int)
	for _, s := range stats {
		byDay[dateOnly(s.StartTime)] += s.ActualMinutes
	}

	var minutes []int
	var labels []string
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		minutes = append(minutes, byDay[day])
		labels = append(labels, day.Format("Mon"))
	}
	return minutes, labels
}

// buildInsights derives the productivity insight block from raw session
// rows.
func buildInsights(stats []sessionStat) Insights {
	insights := Insights{
		MostProductiveHour: "No data",
		BestFocusDay:       "No data",
	}

	totalMinutes := 0
	focusSum, focusCount := 0, 0
	completed := 0

	hourFocusSum := make(map[int]int)
	hourFocusCount := make(map[int]int)
	dayFocusSum := make(map[time.Weekday]int)
	dayFocusCount := make(map[time.Weekday]int)

	for _, s := range stats {
		insights.TotalSessions++
		totalMinutes += s.ActualMinutes
		if s.Outcome == "completed" {
			completed++
		}
		if s.FocusRating == nil {
			continue
		}
		focusSum += *s.FocusRating
		focusCount++
		hourFocusSum[s.StartTime.Hour()] += *s.FocusRating
		hourFocusCount[s.StartTime.Hour()]++
		dayFocusSum[s.StartTime.Weekday()] += *s.FocusRating
		dayFocusCount[s.StartTime.Weekday()]++
	}

	insights.TotalHours = round1(float64(totalMinutes) / 60)
	if focusCount > 0 {
		insights.AvgFocusRating = round1(float64(focusSum) / float64(focusCount))
	}
	if insights.TotalSessions > 0 {
		insights.CompletionRate = round1(float64(completed) / float64(insights.TotalSessions) * 100)
	}

	bestHour, bestHourFocus := -1, -1.0
	for hour := 0; hour < 24; hour++ {
		if hourFocusCount[hour] == 0 {
			continue
		}
		avg := float64(hourFocusSum[hour]) / float64(hourFocusCount[hour])
		if avg > bestHourFocus {
			bestHour, bestHourFocus = hour, avg
		}
	}
	if bestHour >= 0 {
		insights.MostProductiveHour = fmt.Sprintf("%02d:00", bestHour)
	}

	bestDayFocus := -1.0
	for day := time.Sunday; day <= time.Saturday; day++ {
		if dayFocusCount[day] == 0 {
			continue
		}
		avg := float64(dayFocusSum[day]) / float64(dayFocusCount[day])
		if avg > bestDayFocus {
			insights.BestFocusDay, bestDayFocus = day.String(), avg
		}
	}

	return insights
}

// buildTips picks at most three personalized suggestions from the
// insight numbers.
func buildTips(insights Insights, activeGoals int) []Tip {
	var tips []Tip
	if insights.AvgFocusRating > 0 && insights.AvgFocusRating < 3 {
		tips = append(tips, Tip{
			Type:    "focus",
			Title:   "Improve Your Focus",
			Message: "Your average focus rating is below 3. Try eliminating distractions before starting sessions.",
			Action:  "Turn off notifications and find a quiet workspace.",
		})
	}
	if insights.TotalSessions < 20 {
		tips = append(tips, Tip{
			Type:    "frequency",
			Title:   "Increase Session Frequency",
			Message: "You could benefit from more regular timeboxing sessions.",
			Action:  "Try to complete at least 2-3 focused sessions per day.",
		})
	}
	if activeGoals == 0 {
		tips = append(tips, Tip{
			Type:    "goals",
			Title:   "Set Some Goals",
			Message: "Having clear goals can increase motivation and focus.",
			Action:  "Create 1-2 specific, measurable goals for this week.",
		})
	}
	if len(tips) > 3 {
		tips = tips[:3]
	}
	return tips
}

// sessionStreak counts consecutive calendar days with at least one
// session, ending today.
func sessionStreak(sessionDates []time.Time, now time.Time) int {
	days := make(map[time.Time]bool, len(sessionDates))
	for _, d := range sessionDates {
		days[dateOnly(d)] = true
	}

	streak := 0
	for day := dateOnly(now); days[day]; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}
