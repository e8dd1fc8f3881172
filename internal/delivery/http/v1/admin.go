package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timeboxhq/timebox/internal/config"
	"github.com/timeboxhq/timebox/internal/services"
)

// HandleTriggerSweep runs a sweep on demand, outside the cron schedule.
func (h *handlerImpl) HandleTriggerSweep(c *gin.Context) {
	if _, ok := mustUserID(h, c); !ok {
		return
	}

	kind := c.DefaultQuery("kind", "overdue")
	switch kind {
	case "overdue":
		report, err := h.sweeper.SweepOverdue(c)
		if err != nil {
			h.logger.Error().
				Err(err).
				Msg("failed to sweep overdue tasks")
			abort(c, newStatusTextError(http.StatusInternalServerError))
			return
		}
		c.JSON(http.StatusOK, newSweepResponse(report))
	case "urgent":
		report, err := h.sweeper.SweepUrgent(c)
		if err != nil {
			h.logger.Error().
				Err(err).
				Msg("failed to sweep urgent tasks")
			abort(c, newStatusTextError(http.StatusInternalServerError))
			return
		}
		c.JSON(http.StatusOK, newSweepResponse(report))
	case "cleanup":
		deleted, err := h.sweeper.CleanupCompleted(c, config.Global().Sweep.CleanupAfter)
		if err != nil {
			h.logger.Error().
				Err(err).
				Msg("failed to cleanup completed tasks")
			abort(c, newStatusTextError(http.StatusInternalServerError))
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": deleted})
	default:
		abort(c, newBadRequestError("unsupported sweep kind"))
	}
}

func newSweepResponse(report *services.SweepReport) gin.H {
	return gin.H{
		"overdue_tasks": report.OverdueTasks,
		"escalated":     report.Escalated,
		"owners":        report.Owners,
		"notified":      report.Notified,
		"failed_owners": report.FailedOwners,
	}
}
