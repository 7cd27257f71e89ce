package scheduler

import (
	"time"

	"github.com/arnavshah/roster-engine-go/pkg/models"
)

// Shift type tags derived from the start hour
const (
	TypeMorning = "morning"
	TypeDay     = "day"
	TypeEvening = "evening"
	TypeNight   = "night"
	TypeRegular = "regular"
)

// Weekday numbers t from 0 (Monday) to 6 (Sunday)
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// ShiftType classifies by start hour: morning 06-14, evening 14-22, night otherwise
func ShiftType(shift *models.Shift) string {
	if !shift.HasStart() {
		return TypeRegular
	}
	hour := shift.Start.Hour()
	switch {
	case hour >= 6 && hour < 14:
		return TypeMorning
	case hour >= 14 && hour < 22:
		return TypeEvening
	default:
		return TypeNight
	}
}

// dayNightType classifies by start hour: day 06-14, evening 14-18, night otherwise
func dayNightType(shift *models.Shift) string {
	if !shift.HasStart() {
		return TypeRegular
	}
	hour := shift.Start.Hour()
	switch {
	case hour >= 6 && hour < 14:
		return TypeDay
	case hour >= 14 && hour < 18:
		return TypeEvening
	default:
		return TypeNight
	}
}

func isDayTag(tag string) bool {
	return tag == TypeMorning || tag == TypeDay || tag == TypeEvening
}

func hoursToDuration(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
