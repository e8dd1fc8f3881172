package models

import "time"

const (
	PriorityCritical = 1
	PriorityHigh     = 2
	PriorityMedium   = 3
	PriorityLow      = 4
)

const (
	EnergyLow    = "low"
	EnergyMedium = "medium"
	EnergyHigh   = "high"
)

// Task statuses are derived from the completion flag and the due date,
// never stored.
const (
	StatusCompleted  = "completed"
	StatusOverdue    = "overdue"
	StatusInProgress = "in_progress"
)

type Task struct {
	ID               string
	UserID           string
	Title            string
	Description      string
	CategoryID       string
	GoalID           *string
	Priority         int
	EnergyLevel      string
	EstimatedMinutes int
	IsCompleted      bool
	CompletedAt      *time.Time
	DueDate          *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.IsCompleted {
		return false
	}
	return now.After(*t.DueDate)
}

func (t *Task) Status(now time.Time) string {
	if t.IsCompleted {
		return StatusCompleted
	}
	if t.IsOverdue(now) {
		return StatusOverdue
	}
	return StatusInProgress
}

// CompletionPercentage maps elapsed minutes onto the estimate, clamped to
// 100. A completed task is always 100, a task with no estimate is 0.
func (t *Task) CompletionPercentage(elapsedMinutes int) float64 {
	if t.IsCompleted {
		return 100
	}
	if t.EstimatedMinutes <= 0 {
		return 0
	}
	pct := float64(elapsedMinutes) / float64(t.EstimatedMinutes) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

func ValidPriority(p int) bool {
	return p >= PriorityCritical && p <= PriorityLow
}

func ValidEnergyLevel(level string) bool {
	switch level {
	case EnergyLow, EnergyMedium, EnergyHigh:
		return true
	}
	return false
}
