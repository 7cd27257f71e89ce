package handlers

import (
	"net/http"
	"time"

	"github.com/arnavshah/roster-engine-go/pkg/apperr"
	"github.com/arnavshah/roster-engine-go/pkg/database"
	"github.com/arnavshah/roster-engine-go/pkg/models"
	"github.com/arnavshah/roster-engine-go/pkg/preferences"
	"github.com/arnavshah/roster-engine-go/pkg/scheduler"
	"github.com/gin-gonic/gin"
)

type createShiftRequest struct {
	ScheduleID string    `json:"schedule_id" binding:"required"`
	StaffID    string    `json:"staff_id" binding:"required"`
	StartTime  time.Time `json:"start_time" binding:"required"`
	EndTime    time.Time `json:"end_time" binding:"required"`
}

// CreateShift places one staff member on a manually chosen slot
func (h *Handler) CreateShift(c *gin.Context) {
	var req createShiftRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	ctx := c.Request.Context()

	if _, err := h.Schedules.Get(ctx, req.ScheduleID); err != nil {
		fail(c, err)
		return
	}
	if _, err := h.Users.StaffByIDs(ctx, []string{req.StaffID}); err != nil {
		fail(c, err)
		return
	}

	rec := &database.ShiftRecord{
		ScheduleID: req.ScheduleID,
		StaffID:    req.StaffID,
		ShiftType:  scheduler.ShiftType(models.NewShift("", req.StartTime.In(h.Location), req.EndTime.In(h.Location), "")),
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	}
	if err := h.Shifts.Create(ctx, rec); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "shift": rec})
}

// ShiftReport lists every shift with the staff name attached
func (h *Handler) ShiftReport(c *gin.Context) {
	rows, err := h.Shifts.Report(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "shifts": rows})
}

// ClockIn stamps the caller's shift as started
func (h *Handler) ClockIn(c *gin.Context) {
	claims := currentClaims(c)
	rec, err := h.Shifts.ClockIn(c.Request.Context(), claims.UserID, c.Param("id"), h.Now())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "shift": rec})
}

// ClockOut stamps the caller's shift as finished
func (h *Handler) ClockOut(c *gin.Context) {
	claims := currentClaims(c)
	rec, err := h.Shifts.ClockOut(c.Request.Context(), claims.UserID, c.Param("id"), h.Now())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "shift": rec})
}

// MyRoster returns every shift of the schedules the caller works in
func (h *Handler) MyRoster(c *gin.Context) {
	claims := currentClaims(c)
	shifts, err := h.Shifts.CombinedRoster(c.Request.Context(), claims.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "shifts": shifts})
}

// MyPreferences returns the caller's preferences, defaults included
func (h *Handler) MyPreferences(c *gin.Context) {
	claims := currentClaims(c)
	rec := preferences.Lookup(c.Request.Context(), h.Preferences, claims.UserID)
	c.JSON(http.StatusOK, gin.H{"success": true, "preferences": rec})
}

// UpdateMyPreferences replaces the caller's preferences
func (h *Handler) UpdateMyPreferences(c *gin.Context) {
	h.putPreferences(c, currentClaims(c).UserID)
}

// UpdateStaffPreferences lets an admin replace a staff member's preferences
func (h *Handler) UpdateStaffPreferences(c *gin.Context) {
	staffID := c.Param("staffID")
	if _, err := h.Users.StaffByIDs(c.Request.Context(), []string{staffID}); err != nil {
		fail(c, apperr.NotFound("staff", staffID))
		return
	}
	h.putPreferences(c, staffID)
}

func (h *Handler) putPreferences(c *gin.Context, staffID string) {
	var rec models.PreferenceRecord
	if err := bindJSON(c, &rec); err != nil {
		fail(c, err)
		return
	}
	saved, err := h.Preferences.Put(c.Request.Context(), staffID, rec)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "staff_id": staffID, "preferences": saved})
}
