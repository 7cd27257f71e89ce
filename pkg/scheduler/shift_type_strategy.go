package scheduler

import (
	"sort"
	"time"

	"github.com/arnavshah/roster-engine-go/pkg/models"
)

var shiftTypeOrder = map[string]int{TypeMorning: 0, TypeEvening: 1, TypeNight: 2, TypeRegular: 3}

// ShiftTypeStrategy keeps staff on the shift types they prefer, and otherwise on the
// type they already work most, so each person's roster stays uniform.
type ShiftTypeStrategy struct{}

func (ShiftTypeStrategy) Name() string  { return "shift-type-optimize" }
func (ShiftTypeStrategy) Label() string { return "Shift Type Optimization" }

func (st ShiftTypeStrategy) GenerateSchedule(r *Roster, _, _ time.Time) *models.ScheduleResult {
	r.Reset()

	shifts := r.chronological()
	sort.SliceStable(shifts, func(i, j int) bool {
		return shiftTypeOrder[ShiftType(shifts[i])] < shiftTypeOrder[ShiftType(shifts[j])]
	})

	// staff ID -> shift type -> count
	typeCounts := make(map[string]map[string]int, len(r.Staff()))
	for _, person := range r.Staff() {
		typeCounts[person.ID] = make(map[string]int)
	}

	for _, shift := range shifts {
		if r.Needed(shift) <= 0 {
			continue
		}
		shiftType := ShiftType(shift)

		var candidates []*models.StaffMember
		for _, person := range r.Staff() {
			if r.CanWork(person, shift) && !r.Overlaps(person, shift) {
				candidates = append(candidates, person)
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			a, b := candidates[i], candidates[j]
			aPref := r.Preferences(a.ID).Prefers(shiftType)
			bPref := r.Preferences(b.ID).Prefers(shiftType)
			if aPref != bPref {
				return aPref
			}
			if typeCounts[a.ID][shiftType] != typeCounts[b.ID][shiftType] {
				return typeCounts[a.ID][shiftType] > typeCounts[b.ID][shiftType]
			}
			return a.TotalHours < b.TotalHours
		})

		for _, person := range candidates {
			if r.Needed(shift) <= 0 {
				break
			}
			if r.AssignIfAvailable(person, shift) {
				typeCounts[person.ID][shiftType]++
			}
		}
	}

	return r.result(st, "type_consistency_score", typeConsistency(r.Staff(), typeCounts))
}

// typeConsistency averages, over staff holding shifts, the share of their shifts in their dominant type
func typeConsistency(staff []*models.StaffMember, typeCounts map[string]map[string]int) float64 {
	var total float64
	counted := 0
	for _, person := range staff {
		if len(person.AssignedShifts) == 0 {
			continue
		}
		dominant := 0
		for _, c := range typeCounts[person.ID] {
			if c > dominant {
				dominant = c
			}
		}
		total += float64(dominant) / float64(len(person.AssignedShifts)) * 100
		counted++
	}
	if counted == 0 {
		return 0
	}
	return total / float64(counted)
}
