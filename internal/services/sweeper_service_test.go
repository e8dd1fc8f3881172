package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timeboxhq/timebox/internal/models"
)

func TestEscalatePriority(t *testing.T) {
	priority, changed := escalatePriority(models.PriorityLow)
	assert.Equal(t, models.PriorityMedium, priority)
	assert.True(t, changed)

	priority, changed = escalatePriority(models.PriorityHigh)
	assert.Equal(t, models.PriorityCritical, priority)
	assert.True(t, changed)

	// Critical is the floor; repeated sweeps leave it alone.
	priority, changed = escalatePriority(models.PriorityCritical)
	assert.Equal(t, models.PriorityCritical, priority)
	assert.False(t, changed)
}

func TestEscalatePriority_Converges(t *testing.T) {
	priority := models.PriorityLow
	for i := 0; i < 10; i++ {
		priority, _ = escalatePriority(priority)
	}
	assert.Equal(t, models.PriorityCritical, priority)
}

func TestGroupByOwner(t *testing.T) {
	tasks := []*models.Task{
		{ID: "t1", UserID: "alice"},
		{ID: "t2", UserID: "alice"},
		{ID: "t3", UserID: "bob"},
		{ID: "t4", UserID: "alice"},
	}
	emails := map[string]string{
		"alice": "alice@example.com",
		"bob":   "bob@example.com",
	}

	groups := groupByOwner(tasks, emails)

	require.Len(t, groups, 2)
	assert.Equal(t, "alice", groups[0].userID)
	assert.Equal(t, "alice@example.com", groups[0].email)
	assert.Len(t, groups[0].tasks, 3)
	assert.Equal(t, "bob", groups[1].userID)
	assert.Len(t, groups[1].tasks, 1)
}

func TestGroupByOwner_Empty(t *testing.T) {
	assert.Empty(t, groupByOwner(nil, nil))
}
