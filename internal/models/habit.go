package models

import "time"

const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

type Habit struct {
	ID          string
	UserID      string
	Name        string
	Description string
	CategoryID  string
	Frequency   string
	Target      int
	IsActive    bool
	CreatedAt   time.Time
}

type HabitLog struct {
	ID        string
	HabitID   string
	Date      time.Time
	Completed bool
	Notes     string
	CreatedAt time.Time
}

func ValidFrequency(f string) bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}
