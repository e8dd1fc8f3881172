package models

import "time"

const (
	PeriodDaily     = "daily"
	PeriodWeekly    = "weekly"
	PeriodMonthly   = "monthly"
	PeriodQuarterly = "quarterly"
	PeriodYearly    = "yearly"
)

const (
	GoalStatusActive    = "active"
	GoalStatusPaused    = "paused"
	GoalStatusCompleted = "completed"
	GoalStatusAbandoned = "abandoned"
)

type Goal struct {
	ID          string
	UserID      string
	Title       string
	Description string
	CategoryID  string
	TargetHours float64
	Period      string
	Status      string
	StartDate   time.Time
	EndDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CurrentPeriodBounds resolves the goal period containing now to inclusive
// [start, end] calendar dates. Weeks run Monday to Sunday. Quarterly and
// yearly periods are not supported and report ok=false.
func (g *Goal) CurrentPeriodBounds(now time.Time) (start, end time.Time, ok bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch g.Period {
	case PeriodDaily:
		return today, today, true
	case PeriodWeekly:
		weekday := int(today.Weekday())
		if weekday == 0 {
			// time.Sunday is 0, but the week starts on Monday.
			weekday = 7
		}
		start = today.AddDate(0, 0, -(weekday - 1))
		return start, start.AddDate(0, 0, 6), true
	case PeriodMonthly:
		start = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return start, start.AddDate(0, 1, -1), true
	}
	return time.Time{}, time.Time{}, false
}

// PeriodProgress maps accrued minutes onto the period target, clamped to
// 100. A non-positive target always reports 0.
func (g *Goal) PeriodProgress(totalMinutes int) float64 {
	targetMinutes := g.TargetHours * 60
	if targetMinutes <= 0 {
		return 0
	}
	pct := float64(totalMinutes) / targetMinutes * 100
	if pct > 100 {
		return 100
	}
	return pct
}

func ValidPeriod(p string) bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return true
	}
	return false
}

func ValidGoalStatus(s string) bool {
	switch s {
	case GoalStatusActive, GoalStatusPaused, GoalStatusCompleted, GoalStatusAbandoned:
		return true
	}
	return false
}
