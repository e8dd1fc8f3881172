package v1

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/timeboxhq/timebox/internal/models"
)

const exportSessionLimit = 10000

// HandleExport streams one entity as CSV or JSON, or a zip archive
// holding the CSV files of all entities.
func (h *handlerImpl) HandleExport(c *gin.Context) {
	userID, ok := mustUserID(h, c)
	if !ok {
		return
	}

	entity := c.DefaultQuery("entity", "tasks")
	format := c.DefaultQuery("format", "csv")

	switch format {
	case "json":
		h.exportJSON(c, userID, entity)
	case "csv":
		h.exportCSV(c, userID, entity)
	case "archive":
		h.exportArchive(c, userID)
	default:
		abort(c, newBadRequestError("unsupported format"))
	}
}

func (h *handlerImpl) exportJSON(c *gin.Context, userID, entity string) {
	locale := requestLocale(c)

	switch entity {
	case "tasks":
		tasks, err := h.tasks.ListTasks(c, userID)
		if err != nil {
			h.abortExport(c, err, entity)
			return
		}
		now := time.Now()
		response := make([]getTaskResponse, len(tasks))
		for i, task := range tasks {
			response[i] = newGetTaskResponse(task, locale, now)
		}
		c.JSON(http.StatusOK, response)
	case "sessions":
		sessions, err := h.timebox.ListSessions(c, userID, exportSessionLimit)
		if err != nil {
			h.abortExport(c, err, entity)
			return
		}
		response := make([]getSessionResponse, len(sessions))
		for i, session := range sessions {
			response[i] = newGetSessionResponse(session, locale)
		}
		c.JSON(http.StatusOK, response)
	case "categories":
		categories, err := h.categories.ListCategories(c, userID)
		if err != nil {
			h.abortExport(c, err, entity)
			return
		}
		response := make([]getCategoryResponse, len(categories))
		for i, category := range categories {
			response[i] = newGetCategoryResponse(category)
		}
		c.JSON(http.StatusOK, response)
	case "goals":
		goals, err := h.goals.ListGoals(c, userID)
		if err != nil {
			h.abortExport(c, err, entity)
			return
		}
		response := make([]getGoalResponse, len(goals))
		for i, goal := range goals {
			response[i] = newGetGoalResponse(goal)
		}
		c.JSON(http.StatusOK, response)
	default:
		abort(c, newBadRequestError("unsupported entity"))
	}
}

func (h *handlerImpl) exportCSV(c *gin.Context, userID, entity string) {
	var buf bytes.Buffer
	var err error

	switch entity {
	case "tasks":
		var tasks []*models.Task
		tasks, err = h.tasks.ListTasks(c, userID)
		if err == nil {
			err = writeTasksCSV(&buf, tasks)
		}
	case "sessions":
		var sessions []*models.TimeboxSession
		sessions, err = h.timebox.ListSessions(c, userID, exportSessionLimit)
		if err == nil {
			err = writeSessionsCSV(&buf, sessions)
		}
	case "categories":
		var categories []*models.Category
		categories, err = h.categories.ListCategories(c, userID)
		if err == nil {
			err = writeCategoriesCSV(&buf, categories)
		}
	case "goals":
		var goals []*models.Goal
		goals, err = h.goals.ListGoals(c, userID)
		if err == nil {
			err = writeGoalsCSV(&buf, goals)
		}
	default:
		abort(c, newBadRequestError("unsupported entity"))
		return
	}
	if err != nil {
		h.abortExport(c, err, entity)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", entity+".csv"))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func (h *handlerImpl) exportArchive(c *gin.Context, userID string) {
	tasks, err := h.tasks.ListTasks(c, userID)
	if err != nil {
		h.abortExport(c, err, "tasks")
		return
	}
	sessions, err := h.timebox.ListSessions(c, userID, exportSessionLimit)
	if err != nil {
		h.abortExport(c, err, "sessions")
		return
	}
	categories, err := h.categories.ListCategories(c, userID)
	if err != nil {
		h.abortExport(c, err, "categories")
		return
	}
	goals, err := h.goals.ListGoals(c, userID)
	if err != nil {
		h.abortExport(c, err, "goals")
		return
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	files := []struct {
		name  string
		write func(*bytes.Buffer) error
	}{
		{"tasks.csv", func(b *bytes.Buffer) error { return writeTasksCSV(b, tasks) }},
		{"sessions.csv", func(b *bytes.Buffer) error { return writeSessionsCSV(b, sessions) }},
		{"categories.csv", func(b *bytes.Buffer) error { return writeCategoriesCSV(b, categories) }},
		{"goals.csv", func(b *bytes.Buffer) error { return writeGoalsCSV(b, goals) }},
	}
	for _, file := range files {
		entry, err := zw.Create(file.name)
		if err == nil {
			var fileBuf bytes.Buffer
			if err = file.write(&fileBuf); err == nil {
				_, err = entry.Write(fileBuf.Bytes())
			}
		}
		if err != nil {
			h.logger.Error().
				Err(err).
				Str("file", file.name).
				Msg("failed to write archive")
			abort(c, newStatusTextError(http.StatusInternalServerError))
			return
		}
	}
	if err := zw.Close(); err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to close archive")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="timebox-export.zip"`)
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}

func (h *handlerImpl) abortExport(c *gin.Context, err error, entity string) {
	h.logger.Error().
		Err(err).
		Str("entity", entity).
		Msg("failed to export")
	abort(c, newStatusTextError(http.StatusInternalServerError))
}

func writeTasksCSV(buf *bytes.Buffer, tasks []*models.Task) error {
	w := csv.NewWriter(buf)
	header := []string{
		"id", "title", "description", "category_id", "priority",
		"energy_level", "estimated_minutes", "status", "due_date", "created_at",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	now := time.Now()
	for _, task := range tasks {
		dueDate := ""
		if task.DueDate != nil {
			dueDate = task.DueDate.Format(time.DateOnly)
		}
		record := []string{
			task.ID,
			task.Title,
			task.Description,
			task.CategoryID,
			strconv.Itoa(task.Priority),
			task.EnergyLevel,
			strconv.Itoa(task.EstimatedMinutes),
			task.Status(now),
			dueDate,
			task.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeSessionsCSV(buf *bytes.Buffer, sessions []*models.TimeboxSession) error {
	w := csv.NewWriter(buf)
	header := []string{
		"id", "task_id", "start_time", "end_time", "planned_minutes",
		"actual_minutes", "outcome", "focus_rating", "productivity_score",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, session := range sessions {
		endTime := ""
		if session.EndTime != nil {
			endTime = session.EndTime.Format(time.RFC3339)
		}
		actualMinutes := ""
		if session.ActualMinutes != nil {
			actualMinutes = strconv.Itoa(*session.ActualMinutes)
		}
		focusRating := ""
		if session.FocusRating != nil {
			focusRating = strconv.Itoa(*session.FocusRating)
		}
		record := []string{
			session.ID,
			session.TaskID,
			session.StartTime.Format(time.RFC3339),
			endTime,
			strconv.Itoa(session.PlannedMinutes),
			actualMinutes,
			session.Outcome,
			focusRating,
			strconv.FormatFloat(session.ProductivityScore(), 'f', 2, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeCategoriesCSV(buf *bytes.Buffer, categories []*models.Category) error {
	w := csv.NewWriter(buf)
	header := []string{
		"id", "name", "category_type", "description", "color", "icon",
		"is_active", "created_at",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, category := range categories {
		record := []string{
			category.ID,
			category.Name,
			category.CategoryType,
			category.Description,
			category.Color,
			category.Icon,
			strconv.FormatBool(category.IsActive),
			category.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeGoalsCSV(buf *bytes.Buffer, goals []*models.Goal) error {
	w := csv.NewWriter(buf)
	header := []string{
		"id", "title", "description", "category_id", "target_hours",
		"period", "status", "start_date", "end_date", "created_at",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, goal := range goals {
		endDate := ""
		if goal.EndDate != nil {
			endDate = goal.EndDate.Format(time.DateOnly)
		}
		record := []string{
			goal.ID,
			goal.Title,
			goal.Description,
			goal.CategoryID,
			strconv.FormatFloat(goal.TargetHours, 'f', 1, 64),
			goal.Period,
			goal.Status,
			goal.StartDate.Format(time.DateOnly),
			endDate,
			goal.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
