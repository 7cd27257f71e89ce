package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/arnavshah/roster-engine-go/pkg/apperr"
	"github.com/arnavshah/roster-engine-go/pkg/client"
	"github.com/arnavshah/roster-engine-go/pkg/models"
	"github.com/gin-gonic/gin"
)

// ListStrategies returns the registered strategy names
func (h *Handler) ListStrategies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "strategies": h.Client.AvailableStrategies()})
}

type autoPopulateRequest struct {
	ScheduleID   string   `json:"schedule_id" binding:"required"`
	StrategyName string   `json:"strategy_name" binding:"required"`
	StaffIDs     []string `json:"staff_ids" binding:"required"`
	StartDate    string   `json:"start_date" binding:"required"`
	EndDate      string   `json:"end_date" binding:"required"`
	ShiftsPerDay *int     `json:"shifts_per_day"`
	ShiftType    string   `json:"shift_type" binding:"omitempty,oneof=day night mixed"`
}

// AutoPopulate replaces a schedule's shifts over a date range
func (h *Handler) AutoPopulate(c *gin.Context) {
	var req autoPopulateRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	start, end, err := h.dateRange(req.StartDate, req.EndDate)
	if err != nil {
		fail(c, err)
		return
	}

	outcome, err := h.Client.AutoPopulate(c.Request.Context(), client.AutoPopulateRequest{
		ScheduleID:   req.ScheduleID,
		StrategyName: req.StrategyName,
		StaffIDs:     req.StaffIDs,
		StartDate:    start,
		EndDate:      end,
		ShiftsPerDay: req.ShiftsPerDay,
		ShiftType:    req.ShiftType,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, outcome)
}

type compareRequest struct {
	StaffIDs     []string `json:"staff_ids" binding:"required"`
	StartDate    string   `json:"start_date" binding:"required"`
	EndDate      string   `json:"end_date" binding:"required"`
	ShiftsPerDay *int     `json:"shifts_per_day"`
	ShiftType    string   `json:"shift_type" binding:"omitempty,oneof=day night mixed"`
}

// CompareStrategies dry-runs every strategy and reports the best one
func (h *Handler) CompareStrategies(c *gin.Context) {
	var req compareRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	start, end, err := h.dateRange(req.StartDate, req.EndDate)
	if err != nil {
		fail(c, err)
		return
	}

	outcome, err := h.Client.Compare(c.Request.Context(), client.CompareRequest{
		StaffIDs:     req.StaffIDs,
		StartDate:    start,
		EndDate:      end,
		ShiftsPerDay: req.ShiftsPerDay,
		ShiftType:    req.ShiftType,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "comparison": outcome.Comparison, "best_strategy": outcome.BestStrategy})
}

// generateRequest carries caller-supplied staff and shifts for a stateless run
type generateRequest struct {
	Strategy string                `json:"strategy" binding:"required"`
	Staff    []*models.StaffMember `json:"staff" binding:"required"`
	Shifts   []*models.Shift       `json:"shifts" binding:"required"`
}

// GenerateJSON runs a strategy over the posted staff and shifts without touching storage
func (h *Handler) GenerateJSON(c *gin.Context) {
	var req generateRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	if problems := inputProblems(req.Staff, req.Shifts); problems.HasErrors() {
		fail(c, problems.ToAppError())
		return
	}

	start, end := shiftBounds(req.Shifts)
	result, err := h.Client.GenerateSchedule(c.Request.Context(), req.Strategy, req.Staff, req.Shifts, start, end)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result, "staff": req.Staff})
}

// ValidateInput checks a stateless request without running any strategy
func (h *Handler) ValidateInput(c *gin.Context) {
	var req generateRequest
	if err := bindJSON(c, &req); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{
			"valid":  false,
			"error":  apperr.Message(err),
			"code":   apperr.GetCode(err),
			"errors": fieldErrors(err),
		})
		return
	}

	problems := inputProblems(req.Staff, req.Shifts)
	if _, err := h.Client.Strategy(req.Strategy); err != nil {
		problems.Add("strategy", apperr.Message(err))
	}
	if problems.HasErrors() {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": problems.Error(), "errors": problems.Errors})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"staff_count": len(req.Staff),
			"shift_count": len(req.Shifts),
		},
	})
}

// fieldErrors lists the per-field problems carried by err, sorted by field
func fieldErrors(err error) []apperr.ValidationError {
	out := []apperr.ValidationError{}
	var appErr *apperr.AppError
	if !errors.As(err, &appErr) {
		return out
	}
	for field, msg := range appErr.Fields {
		out = append(out, apperr.ValidationError{Field: field, Message: fmt.Sprint(msg)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func inputProblems(staff []*models.StaffMember, shifts []*models.Shift) *apperr.ValidationErrors {
	problems := &apperr.ValidationErrors{}
	if len(staff) == 0 {
		problems.Add("staff", "at least one staff member is required")
	}
	if len(shifts) == 0 {
		problems.Add("shifts", "at least one shift is required")
	}

	staffIDs := make(map[string]bool)
	for _, s := range staff {
		if s == nil || s.ID == "" {
			problems.Add("staff", "staff member without ID")
			continue
		}
		if staffIDs[s.ID] {
			problems.Add("staff", "duplicate staff ID: "+s.ID)
		}
		staffIDs[s.ID] = true
	}

	shiftIDs := make(map[string]bool)
	for _, sh := range shifts {
		if sh == nil || sh.ID == "" {
			problems.Add("shifts", "shift without ID")
			continue
		}
		if shiftIDs[sh.ID] {
			problems.Add("shifts", "duplicate shift ID: "+sh.ID)
		}
		shiftIDs[sh.ID] = true
		if sh.HasStart() && !sh.End.After(sh.Start) {
			problems.Add("shifts", "shift "+sh.ID+" ends before it starts")
		}
	}
	return problems
}

// shiftBounds returns the earliest start and latest end among timed shifts
func shiftBounds(shifts []*models.Shift) (time.Time, time.Time) {
	var start, end time.Time
	for _, sh := range shifts {
		if !sh.HasStart() {
			continue
		}
		if start.IsZero() || sh.Start.Before(start) {
			start = sh.Start
		}
		if sh.End.After(end) {
			end = sh.End
		}
	}
	return start, end
}

func (h *Handler) dateRange(from, to string) (time.Time, time.Time, error) {
	start, err := parseDate("start_date", from, h.Location)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDate("end_date", to, h.Location)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
