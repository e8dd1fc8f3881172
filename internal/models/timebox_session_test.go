package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestActualMinutesBetween(t *testing.T) {
	start := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, ActualMinutesBetween(start, start.Add(10*time.Second)), "floored at one minute")
	assert.Equal(t, 1, ActualMinutesBetween(start, start.Add(90*time.Second)))
	assert.Equal(t, 27, ActualMinutesBetween(start, start.Add(27*time.Minute)))
	assert.Equal(t, 27, ActualMinutesBetween(start, start.Add(27*time.Minute+45*time.Second)), "partial minutes truncate")
}

func TestTimeboxSession_DurationDisplay(t *testing.T) {
	tests := []struct {
		minutes *int
		want    string
	}{
		{nil, "0m"},
		{intPtr(0), "0m"},
		{intPtr(45), "45m"},
		{intPtr(60), "1h 0m"},
		{intPtr(95), "1h 35m"},
	}
	for _, tt := range tests {
		s := TimeboxSession{ActualMinutes: tt.minutes}
		assert.Equal(t, tt.want, s.DurationDisplay())
	}
}

func TestTimeboxSession_EfficiencyScore(t *testing.T) {
	s := TimeboxSession{PlannedMinutes: 25, ActualMinutes: intPtr(50)}
	assert.InDelta(t, 0.5, s.EfficiencyScore(), 0.001)

	// Finishing under plan caps at 1 instead of rewarding overestimates.
	fast := TimeboxSession{PlannedMinutes: 60, ActualMinutes: intPtr(30)}
	assert.Equal(t, 1.0, fast.EfficiencyScore())

	open := TimeboxSession{PlannedMinutes: 25}
	assert.Equal(t, 0.0, open.EfficiencyScore())
}

func TestTimeboxSession_ProductivityScore(t *testing.T) {
	s := TimeboxSession{
		PlannedMinutes: 25,
		ActualMinutes:  intPtr(27),
		FocusRating:    intPtr(5),
		Outcome:        OutcomeCompleted,
	}
	assert.InDelta(t, 97.78, s.ProductivityScore(), 0.01)

	unrated := TimeboxSession{
		PlannedMinutes: 25,
		ActualMinutes:  intPtr(25),
		Outcome:        OutcomeCompleted,
	}
	assert.Equal(t, 0.0, unrated.ProductivityScore())

	abandoned := TimeboxSession{
		PlannedMinutes: 25,
		ActualMinutes:  intPtr(25),
		FocusRating:    intPtr(1),
		Outcome:        OutcomeAbandoned,
	}
	// 1/5*40 + 1*30 + 0*30
	assert.InDelta(t, 38.0, abandoned.ProductivityScore(), 0.01)
}

func TestTimeboxSession_ProductivityScore_OutcomeWeights(t *testing.T) {
	base := TimeboxSession{
		PlannedMinutes: 30,
		ActualMinutes:  intPtr(30),
		FocusRating:    intPtr(5),
	}

	scores := make(map[string]float64)
	for _, outcome := range []string{OutcomeCompleted, OutcomePartial, OutcomeInterrupted, OutcomeAbandoned} {
		s := base
		s.Outcome = outcome
		scores[outcome] = s.ProductivityScore()
	}

	assert.InDelta(t, 100.0, scores[OutcomeCompleted], 0.01)
	assert.InDelta(t, 90.1, scores[OutcomePartial], 0.01)
	assert.InDelta(t, 79.9, scores[OutcomeInterrupted], 0.01)
	assert.InDelta(t, 70.0, scores[OutcomeAbandoned], 0.01)
}

func TestTimeboxSession_IsActive(t *testing.T) {
	end := time.Now()
	assert.True(t, (&TimeboxSession{}).IsActive())
	assert.False(t, (&TimeboxSession{EndTime: &end}).IsActive())
}

func TestValidOutcome(t *testing.T) {
	assert.True(t, ValidOutcome(OutcomePartial))
	assert.False(t, ValidOutcome("done"))
}

func TestValidRating(t *testing.T) {
	assert.True(t, ValidRating(1))
	assert.True(t, ValidRating(5))
	assert.False(t, ValidRating(0))
	assert.False(t, ValidRating(6))
}
