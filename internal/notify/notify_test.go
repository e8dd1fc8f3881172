package notify

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/timeboxhq/timebox/internal/models"
)

func TestOverdueSubject(t *testing.T) {
	assert.Equal(t, "You have 2 overdue task(s)", overdueSubject(2, false))
	assert.Equal(t, "Urgent: 1 severely overdue task(s)", overdueSubject(1, true))
}

func TestOverdueBody(t *testing.T) {
	due := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	tasks := []*models.Task{
		{Title: "Write report", DueDate: &due},
		{Title: "No deadline"},
	}

	body := overdueBody(tasks, false, "https://timebox.example")

	assert.Contains(t, body, "Write report (due 2025-06-10)")
	assert.Contains(t, body, "No deadline\n")
	assert.Contains(t, body, "https://timebox.example")
	assert.NotContains(t, body, "more than a day")

	urgent := overdueBody(tasks, true, "https://timebox.example")
	assert.Contains(t, urgent, "more than a day")
}

func TestLogNotifier(t *testing.T) {
	notifier := NewLogNotifier(zerolog.Nop())

	err := notifier.NotifyOverdue(context.Background(), "user@example.com", nil, false)
	assert.NoError(t, err)
}
