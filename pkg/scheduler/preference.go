package scheduler

import (
	"sort"
	"time"

	"github.com/arnavshah/roster-engine-go/pkg/models"
)

const (
	preferredTypeBonus  = 3
	unavailableDayMalus = -10
)

// PreferenceBasedStrategy fills shifts in time order with the candidates whose
// stated preferences match best, breaking ties on fewest hours.
type PreferenceBasedStrategy struct{}

func (PreferenceBasedStrategy) Name() string  { return "preference-based" }
func (PreferenceBasedStrategy) Label() string { return "Preference Based" }

type preferenceCandidate struct {
	staff *models.StaffMember
	score int
	hours float64
}

func (p PreferenceBasedStrategy) GenerateSchedule(r *Roster, _, _ time.Time) *models.ScheduleResult {
	r.Reset()

	for _, shift := range r.chronological() {
		needed := r.Needed(shift)
		if needed <= 0 {
			continue
		}
		shiftType := ShiftType(shift)
		weekday := 0
		if shift.HasStart() {
			weekday = Weekday(shift.Start)
		}

		var candidates []preferenceCandidate
		for _, person := range r.Staff() {
			if !r.CanWork(person, shift) || !r.fitsHours(person, shift) {
				continue
			}
			candidates = append(candidates, preferenceCandidate{
				staff: person,
				score: p.score(r.Preferences(person.ID), weekday, shiftType),
				hours: person.TotalHours,
			})
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].score != candidates[j].score {
				return candidates[i].score > candidates[j].score
			}
			return candidates[i].hours < candidates[j].hours
		})

		if len(candidates) > needed {
			candidates = candidates[:needed]
		}
		for _, c := range candidates {
			r.assign(c.staff, shift)
		}
	}

	return r.result(p, "preference_score", p.overallScore(r))
}

func (PreferenceBasedStrategy) score(prefs models.PreferenceRecord, weekday int, shiftType string) int {
	score := 0
	if prefs.Prefers(shiftType) {
		score += preferredTypeBonus
	}
	if prefs.UnavailableOn(weekday) {
		score += unavailableDayMalus
	}
	return score
}

// overallScore is the mean, over staff holding shifts, of the percentage of their
// shifts matching a preferred type
func (PreferenceBasedStrategy) overallScore(r *Roster) float64 {
	var total float64
	counted := 0
	for _, person := range r.Staff() {
		if len(person.AssignedShifts) == 0 {
			continue
		}
		prefs := r.Preferences(person.ID)
		matched := 0
		for _, id := range person.AssignedShifts {
			if shift, ok := r.ShiftByID(id); ok && prefs.Prefers(ShiftType(shift)) {
				matched++
			}
		}
		total += float64(matched) / float64(len(person.AssignedShifts)) * 100
		counted++
	}
	if counted == 0 {
		return 0
	}
	return total / float64(counted)
}
