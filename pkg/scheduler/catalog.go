package scheduler

import (
	"time"

	"github.com/arnavshah/roster-engine-go/pkg/apperr"
	"github.com/arnavshah/roster-engine-go/pkg/models"
	"github.com/google/uuid"
)

// Shift patterns understood by the catalog generator. Anything else is treated as mixed.
const (
	PatternDay   = "day"
	PatternNight = "night"
	PatternMixed = "mixed"
)

const slotHours = 8

// CatalogRequest describes the candidate shifts to generate
type CatalogRequest struct {
	StartDate    time.Time
	EndDate      time.Time
	ShiftsPerDay int
	Pattern      string
	Location     *time.Location
}

// GenerateCatalog produces ShiftsPerDay unassigned shifts for every day in [StartDate, EndDate].
//
//	day:   starts at 08:00 + n hours, 8 hours long
//	night: starts at 22:00 + n hours, 8 hours long, running into the next day
//	mixed: n = 0 is 08:00-16:00, every other n is 16:00-23:59
func GenerateCatalog(req CatalogRequest) ([]*models.Shift, error) {
	if req.ShiftsPerDay <= 0 {
		return nil, apperr.InvalidInput("shifts per day must be positive")
	}
	loc := req.Location
	if loc == nil {
		loc = time.UTC
	}
	first := midnight(req.StartDate, loc)
	last := midnight(req.EndDate, loc)
	if first.After(last) {
		return nil, apperr.InvalidInput("start date must be before end date")
	}

	var shifts []*models.Shift
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		for n := 0; n < req.ShiftsPerDay; n++ {
			start, end := slotTimes(day, n, req.Pattern)
			shift := models.NewShift(uuid.NewString(), start, end, "")
			shift.ShiftType = ShiftType(shift)
			shifts = append(shifts, shift)
		}
	}
	return shifts, nil
}

func slotTimes(day time.Time, n int, pattern string) (time.Time, time.Time) {
	y, m, d := day.Date()
	loc := day.Location()
	switch pattern {
	case PatternDay:
		start := time.Date(y, m, d, 8+n, 0, 0, 0, loc)
		return start, start.Add(slotHours * time.Hour)
	case PatternNight:
		start := time.Date(y, m, d, 22+n, 0, 0, 0, loc)
		return start, start.Add(slotHours * time.Hour)
	default:
		if n == 0 {
			return time.Date(y, m, d, 8, 0, 0, 0, loc), time.Date(y, m, d, 16, 0, 0, 0, loc)
		}
		return time.Date(y, m, d, 16, 0, 0, 0, loc), time.Date(y, m, d, 23, 59, 0, 0, loc)
	}
}

func midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Window returns [first midnight, day after last midnight) covering the dates inclusively
func Window(startDate, endDate time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	return midnight(startDate, loc), midnight(endDate, loc).AddDate(0, 0, 1)
}
