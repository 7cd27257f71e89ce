package scheduler

import (
	"math"
	"sort"
	"time"

	"github.com/arnavshah/roster-engine-go/pkg/models"
)

// DayNightDistributeStrategy fills day shifts from day-leaning staff and night shifts
// from night-leaning staff, drawing on neutral staff for both.
type DayNightDistributeStrategy struct{}

func (DayNightDistributeStrategy) Name() string  { return "day-night-distribute" }
func (DayNightDistributeStrategy) Label() string { return "Day/Night Distribution" }

func (d DayNightDistributeStrategy) GenerateSchedule(r *Roster, _, _ time.Time) *models.ScheduleResult {
	r.Reset()

	var dayShifts, nightShifts []*models.Shift
	for _, shift := range r.Shifts() {
		if isDayBucket(shift) {
			dayShifts = append(dayShifts, shift)
		} else {
			nightShifts = append(nightShifts, shift)
		}
	}

	var dayStaff, nightStaff, neutralStaff []*models.StaffMember
	for _, person := range r.Staff() {
		dayPref, nightPref := false, false
		for _, t := range r.Preferences(person.ID).PreferredShiftTypes {
			if isDayTag(t) {
				dayPref = true
			}
			if t == TypeNight {
				nightPref = true
			}
		}
		switch {
		case dayPref && !nightPref:
			dayStaff = append(dayStaff, person)
		case nightPref && !dayPref:
			nightStaff = append(nightStaff, person)
		default:
			neutralStaff = append(neutralStaff, person)
		}
	}

	usedNeutral := d.fill(r, dayShifts, dayStaff, neutralStaff)

	// Neutral staff already on day duty are kept out of the night pool
	remaining := make([]*models.StaffMember, 0, len(neutralStaff))
	for _, person := range neutralStaff {
		if !usedNeutral[person.ID] {
			remaining = append(remaining, person)
		}
	}
	d.fill(r, nightShifts, nightStaff, remaining)

	daysAssigned, nightsAssigned := 0, 0
	for _, shift := range r.Shifts() {
		if len(shift.AssignedStaff) == 0 {
			continue
		}
		if isDayBucket(shift) {
			daysAssigned++
		} else {
			nightsAssigned++
		}
	}

	score := distributionScore(daysAssigned, nightsAssigned, len(dayStaff), len(nightStaff))
	result := r.result(d, "distribution_score", score)
	dayCount, nightCount := len(dayStaff), len(nightStaff)
	result.Summary.DayStaffCount = &dayCount
	result.Summary.NightStaffCount = &nightCount
	result.Summary.DayShiftsAssigned = &daysAssigned
	result.Summary.NightShiftsAssigned = &nightsAssigned
	return result
}

// fill assigns shifts from preferred followed by neutral candidates, fewest hours first.
// It returns the neutral staff that received at least one shift.
func (DayNightDistributeStrategy) fill(r *Roster, shifts []*models.Shift, preferred, neutral []*models.StaffMember) map[string]bool {
	used := make(map[string]bool)
	isNeutral := make(map[string]bool, len(neutral))
	for _, person := range neutral {
		isNeutral[person.ID] = true
	}

	for _, shift := range shifts {
		if r.Needed(shift) <= 0 {
			continue
		}

		candidates := make([]*models.StaffMember, 0, len(preferred)+len(neutral))
		for _, person := range append(append([]*models.StaffMember{}, preferred...), neutral...) {
			if r.CanWork(person, shift) {
				candidates = append(candidates, person)
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].TotalHours < candidates[j].TotalHours
		})

		for _, person := range candidates {
			if r.Needed(shift) <= 0 {
				break
			}
			if r.AssignIfAvailable(person, shift) && isNeutral[person.ID] {
				used[person.ID] = true
			}
		}
	}
	return used
}

func isDayBucket(shift *models.Shift) bool {
	t := dayNightType(shift)
	return t == TypeDay || t == TypeEvening
}

// distributionScore compares the day share of assigned shifts with the day share of
// categorised staff: 100 at a perfect match, minus 200 per unit of deviation.
func distributionScore(dayShifts, nightShifts, dayStaff, nightStaff int) float64 {
	if dayShifts+nightShifts == 0 {
		return 0
	}
	totalStaff := dayStaff + nightStaff
	if totalStaff == 0 {
		return 0
	}
	ideal := float64(dayStaff) / float64(totalStaff)
	actual := float64(dayShifts) / float64(dayShifts+nightShifts)
	return math.Max(0, 100-math.Abs(ideal-actual)*200)
}
