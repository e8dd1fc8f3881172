package models

import (
	"fmt"
	"time"
)

const (
	OutcomeCompleted   = "completed"
	OutcomePartial     = "partial"
	OutcomeInterrupted = "interrupted"
	OutcomeAbandoned   = "abandoned"
)

type TimeboxSession struct {
	ID             string
	UserID         string
	TaskID         string
	StartTime      time.Time
	EndTime        *time.Time
	PlannedMinutes int
	ActualMinutes  *int
	Outcome        string
	FocusRating    *int
	EnergyBefore   *int
	EnergyAfter    *int
	Notes          string
	Distractions   string
	KeyInsights    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (s *TimeboxSession) IsActive() bool {
	return s.EndTime == nil
}

// ActualMinutesBetween converts a session interval into whole accrued
// minutes, flooring at 1 so even a sub-minute session records visible
// progress.
func ActualMinutesBetween(start, end time.Time) int {
	minutes := int(end.Sub(start).Minutes())
	if minutes < 1 {
		return 1
	}
	return minutes
}

func (s *TimeboxSession) DurationDisplay() string {
	if s.ActualMinutes == nil || *s.ActualMinutes == 0 {
		return "0m"
	}
	hours := *s.ActualMinutes / 60
	minutes := *s.ActualMinutes % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// EfficiencyScore is planned over actual time, capped at 1.
func (s *TimeboxSession) EfficiencyScore() float64 {
	if s.ActualMinutes == nil || *s.ActualMinutes == 0 || s.PlannedMinutes == 0 {
		return 0
	}
	eff := float64(s.PlannedMinutes) / float64(*s.ActualMinutes)
	if eff > 1 {
		return 1
	}
	return eff
}

func outcomeWeight(outcome string) float64 {
	switch outcome {
	case OutcomeCompleted:
		return 1.0
	case OutcomePartial:
		return 0.67
	case OutcomeInterrupted:
		return 0.33
	}
	return 0
}

// ProductivityScore combines focus (40%), time efficiency (30%) and the
// session outcome (30%) into a 0-100 score. Unrated sessions score 0.
func (s *TimeboxSession) ProductivityScore() float64 {
	if s.FocusRating == nil {
		return 0
	}

	focusScore := float64(*s.FocusRating) / 5 * 40
	efficiencyScore := s.EfficiencyScore() * 30
	outcomeScore := outcomeWeight(s.Outcome) * 30

	score := focusScore + efficiencyScore + outcomeScore
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

func ValidOutcome(outcome string) bool {
	switch outcome {
	case OutcomeCompleted, OutcomePartial, OutcomeInterrupted, OutcomeAbandoned:
		return true
	}
	return false
}

func ValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}
