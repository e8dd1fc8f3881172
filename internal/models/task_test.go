package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTask_Status(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		task Task
		want string
	}{
		{
			name: "completed wins over overdue",
			task: Task{IsCompleted: true, DueDate: &past},
			want: StatusCompleted,
		},
		{
			name: "past due date",
			task: Task{DueDate: &past},
			want: StatusOverdue,
		},
		{
			name: "future due date",
			task: Task{DueDate: &future},
			want: StatusInProgress,
		},
		{
			name: "no due date",
			task: Task{},
			want: StatusInProgress,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.Status(now))
		})
	}
}

func TestTask_IsOverdue_ExactDueDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	task := Task{DueDate: &now}

	// A task due exactly now is not yet overdue.
	assert.False(t, task.IsOverdue(now))
	assert.True(t, task.IsOverdue(now.Add(time.Second)))
}

func TestTask_CompletionPercentage(t *testing.T) {
	task := Task{EstimatedMinutes: 60}

	assert.Equal(t, 0.0, task.CompletionPercentage(0))
	assert.Equal(t, 50.0, task.CompletionPercentage(30))
	assert.Equal(t, 100.0, task.CompletionPercentage(60))
	assert.Equal(t, 100.0, task.CompletionPercentage(90), "clamped at 100")

	noEstimate := Task{}
	assert.Equal(t, 0.0, noEstimate.CompletionPercentage(45))

	completed := Task{IsCompleted: true, EstimatedMinutes: 60}
	assert.Equal(t, 100.0, completed.CompletionPercentage(5))
}

func TestValidPriority(t *testing.T) {
	assert.True(t, ValidPriority(PriorityCritical))
	assert.True(t, ValidPriority(PriorityLow))
	assert.False(t, ValidPriority(0))
	assert.False(t, ValidPriority(5))
}

func TestValidEnergyLevel(t *testing.T) {
	assert.True(t, ValidEnergyLevel(EnergyLow))
	assert.True(t, ValidEnergyLevel(EnergyHigh))
	assert.False(t, ValidEnergyLevel("extreme"))
	assert.False(t, ValidEnergyLevel(""))
}
