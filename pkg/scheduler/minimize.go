package scheduler

import (
	"sort"
	"time"

	"github.com/arnavshah/roster-engine-go/pkg/models"
)

// MinimizeDaysStrategy packs shifts onto days a staff member already works,
// so fewer distinct days are worked overall.
type MinimizeDaysStrategy struct{}

func (MinimizeDaysStrategy) Name() string  { return "minimize-days" }
func (MinimizeDaysStrategy) Label() string { return "Minimize Days" }

func (m MinimizeDaysStrategy) GenerateSchedule(r *Roster, _, _ time.Time) *models.ScheduleResult {
	r.Reset()

	// staff ID -> worked dates
	worked := make(map[string]map[string]bool, len(r.Staff()))
	for _, person := range r.Staff() {
		worked[person.ID] = make(map[string]bool)
	}

	for _, shift := range r.chronological() {
		if r.Needed(shift) <= 0 || !shift.HasStart() {
			continue
		}
		day := dateKey(shift.Start)

		var candidates []*models.StaffMember
		for _, person := range r.Staff() {
			if r.CanWork(person, shift) && !r.Overlaps(person, shift) {
				candidates = append(candidates, person)
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			a, b := candidates[i], candidates[j]
			aSame, bSame := worked[a.ID][day], worked[b.ID][day]
			if aSame != bSame {
				return aSame
			}
			if len(worked[a.ID]) != len(worked[b.ID]) {
				return len(worked[a.ID]) > len(worked[b.ID])
			}
			return a.TotalHours < b.TotalHours
		})

		for _, person := range candidates {
			if r.Needed(shift) <= 0 {
				break
			}
			if r.AssignIfAvailable(person, shift) {
				worked[person.ID][day] = true
			}
		}
	}

	return r.result(m, "shifts_per_working_day", shiftsPerWorkingDay(r, worked))
}

// shiftsPerWorkingDay divides all assignments by the distinct (staff, day) pairs worked
func shiftsPerWorkingDay(r *Roster, worked map[string]map[string]bool) float64 {
	days := 0
	for _, dates := range worked {
		days += len(dates)
	}
	if days == 0 {
		return 0
	}
	assigned := 0
	for _, person := range r.Staff() {
		assigned += len(person.AssignedShifts)
	}
	return float64(assigned) / float64(days)
}
