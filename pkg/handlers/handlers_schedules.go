package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/arnavshah/roster-engine-go/pkg/apperr"
	"github.com/gin-gonic/gin"
)

type scheduleRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateSchedule adds an empty schedule
func (h *Handler) CreateSchedule(c *gin.Context) {
	var req scheduleRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	createdBy := ""
	if claims := currentClaims(c); claims != nil {
		createdBy = claims.UserID
	}

	schedule, err := h.Schedules.Create(c.Request.Context(), strings.TrimSpace(req.Name), createdBy)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "schedule": schedule})
}

// ListSchedules returns every schedule
func (h *Handler) ListSchedules(c *gin.Context) {
	schedules, err := h.Schedules.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "schedules": schedules})
}

// GetSchedule returns a schedule and its shifts
func (h *Handler) GetSchedule(c *gin.Context) {
	ctx := c.Request.Context()
	schedule, err := h.Schedules.Get(ctx, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	shifts, err := h.Shifts.ListBySchedule(ctx, schedule.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "schedule": schedule, "shifts": shifts})
}

// RenameSchedule changes a schedule's name
func (h *Handler) RenameSchedule(c *gin.Context) {
	var req scheduleRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	schedule, err := h.Schedules.Rename(c.Request.Context(), c.Param("id"), strings.TrimSpace(req.Name))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "schedule": schedule})
}

// DeleteSchedule removes a schedule with all of its shifts
func (h *Handler) DeleteSchedule(c *gin.Context) {
	removed, err := h.Schedules.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "shifts_deleted": removed})
}

// ListRuns returns the recent auto-populate history of a schedule
func (h *Handler) ListRuns(c *gin.Context) {
	ctx := c.Request.Context()
	schedule, err := h.Schedules.Get(ctx, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	runs, err := h.Shifts.ListRuns(ctx, schedule.ID, 30)
	if err != nil {
		fail(c, err)
		return
	}

	var created, deleted int
	for _, r := range runs {
		created += r.ShiftsCreated
		deleted += r.ShiftsDeleted
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"schedule": schedule.Name,
		"runs":     runs,
		"totals": gin.H{
			"runs":           len(runs),
			"shifts_created": created,
			"shifts_deleted": deleted,
		},
	})
}

// ExportCSV writes a schedule's shifts as CSV
func (h *Handler) ExportCSV(c *gin.Context) {
	ctx := c.Request.Context()
	schedule, err := h.Schedules.Get(ctx, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	shifts, err := h.Shifts.ListBySchedule(ctx, schedule.ID)
	if err != nil {
		fail(c, err)
		return
	}

	var out strings.Builder
	writer := csv.NewWriter(&out)
	_ = writer.Write([]string{"shift_id", "staff_id", "shift_type", "start", "end", "duration_hours"})
	for _, sh := range shifts {
		_ = writer.Write([]string{
			sh.ID,
			sh.StaffID,
			sh.ShiftType,
			sh.StartTime.In(h.Location).Format(time.RFC3339),
			sh.EndTime.In(h.Location).Format(time.RFC3339),
			fmt.Sprintf("%.2f", sh.EndTime.Sub(sh.StartTime).Hours()),
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		fail(c, apperr.Wrap(err, apperr.CodeInternal, "could not write csv"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", schedule.Name+".csv"))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(out.String()))
}
