package v1

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timeboxhq/timebox/internal/models"
)

func exportStubs(th *testHandler) {
	due := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	th.tasks.listTasks = func(context.Context, string) ([]*models.Task, error) {
		return []*models.Task{{
			ID:         "task-1",
			Title:      "Write report",
			CategoryID: "cat-1",
			Priority:   models.PriorityHigh,
			DueDate:    &due,
		}}, nil
	}
	th.timebox.listSessions = func(context.Context, string, uint32) ([]*models.TimeboxSession, error) {
		return []*models.TimeboxSession{{
			ID:             "sess-1",
			TaskID:         "task-1",
			StartTime:      due,
			PlannedMinutes: 25,
		}}, nil
	}
	th.categories.listCategories = func(context.Context, string) ([]*models.Category, error) {
		return []*models.Category{{
			ID:           "cat-1",
			Name:         "Deep Work",
			CategoryType: models.CategoryTypeWork,
			IsActive:     true,
		}}, nil
	}
	th.goals.listGoals = func(context.Context, string) ([]*models.Goal, error) {
		return []*models.Goal{{
			ID:          "goal-1",
			Title:       "Ship the thing",
			CategoryID:  "cat-1",
			TargetHours: 10,
			Period:      models.PeriodWeekly,
			Status:      models.GoalStatusActive,
			StartDate:   due,
		}}, nil
	}
}

func TestHandleExport_CSVGoals(t *testing.T) {
	th := newTestHandler()
	exportStubs(th)
	router := newTestRouter(th)

	w := doRequest(router, http.MethodGet, "/api/v1/export?entity=goals&format=csv", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "goals.csv")
	assert.Contains(t, w.Body.String(), "id,title,description,category_id,target_hours")
	assert.Contains(t, w.Body.String(), "goal-1,Ship the thing,,cat-1,10.0,weekly,active,2025-06-10,,")
}

func TestHandleExport_CSVCategories(t *testing.T) {
	th := newTestHandler()
	exportStubs(th)
	router := newTestRouter(th)

	w := doRequest(router, http.MethodGet, "/api/v1/export?entity=categories&format=csv", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cat-1,Deep Work,work,,,,true,")
}

func TestHandleExport_JSONCategories(t *testing.T) {
	th := newTestHandler()
	exportStubs(th)
	router := newTestRouter(th)

	w := doRequest(router, http.MethodGet, "/api/v1/export?entity=categories&format=json", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Deep Work"`)
}

func TestHandleExport_Archive(t *testing.T) {
	th := newTestHandler()
	exportStubs(th)
	router := newTestRouter(th)

	w := doRequest(router, http.MethodGet, "/api/v1/export?format=archive", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	require.NoError(t, err)

	var names []string
	for _, file := range zr.File {
		names = append(names, file.Name)
	}
	assert.Equal(t, []string{"tasks.csv", "sessions.csv", "categories.csv", "goals.csv"}, names)
}

func TestHandleExport_UnknownEntity(t *testing.T) {
	th := newTestHandler()
	exportStubs(th)
	router := newTestRouter(th)

	w := doRequest(router, http.MethodGet, "/api/v1/export?entity=habits&format=csv", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWriteGoalsCSV(t *testing.T) {
	start := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.June, 8, 0, 0, 0, 0, time.UTC)
	goals := []*models.Goal{{
		ID:          "goal-1",
		Title:       "Read more",
		Description: "Two books a month",
		CategoryID:  "cat-2",
		TargetHours: 12.5,
		Period:      models.PeriodMonthly,
		Status:      models.GoalStatusActive,
		StartDate:   start,
		EndDate:     &end,
		CreatedAt:   start,
	}}

	var buf bytes.Buffer
	require.NoError(t, writeGoalsCSV(&buf, goals))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Equal(t,
		"goal-1,Read more,Two books a month,cat-2,12.5,monthly,active,2025-06-02,2025-06-08,2025-06-02T00:00:00Z",
		string(lines[1]))
}

func TestWriteCategoriesCSV(t *testing.T) {
	created := time.Date(2025, time.January, 5, 9, 0, 0, 0, time.UTC)
	categories := []*models.Category{{
		ID:           "cat-1",
		Name:         "Health",
		CategoryType: models.CategoryTypeHealth,
		Color:        "#00aa55",
		Icon:         "heart",
		IsActive:     false,
		CreatedAt:    created,
	}}

	var buf bytes.Buffer
	require.NoError(t, writeCategoriesCSV(&buf, categories))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Equal(t,
		"cat-1,Health,health,,#00aa55,heart,false,2025-01-05T09:00:00Z",
		string(lines[1]))
}
