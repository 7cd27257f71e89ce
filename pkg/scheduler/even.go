package scheduler

import (
	"math"
	"sort"
	"time"

	"github.com/arnavshah/roster-engine-go/pkg/models"
)

// EvenDistributeStrategy hands each shift to the eligible staff with the fewest hours
type EvenDistributeStrategy struct{}

func (EvenDistributeStrategy) Name() string  { return "even-distribute" }
func (EvenDistributeStrategy) Label() string { return "Even Distribution" }

func (e EvenDistributeStrategy) GenerateSchedule(r *Roster, _, _ time.Time) *models.ScheduleResult {
	r.Reset()

	for _, shift := range r.chronological() {
		if r.Needed(shift) <= 0 {
			continue
		}

		var candidates []*models.StaffMember
		for _, person := range r.Staff() {
			if r.CanWork(person, shift) && !r.Overlaps(person, shift) {
				candidates = append(candidates, person)
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].TotalHours != candidates[j].TotalHours {
				return candidates[i].TotalHours < candidates[j].TotalHours
			}
			return len(candidates[i].AssignedShifts) < len(candidates[j].AssignedShifts)
		})

		for _, person := range candidates {
			if r.Needed(shift) <= 0 {
				break
			}
			r.AssignIfAvailable(person, shift)
		}
	}

	return r.result(e, "fairness_score", FairnessScore(r.Staff()))
}

// FairnessScore returns a percentage (0-100) of how evenly hours are spread.
// 100 is perfectly even (standard deviation 0); 0 means the deviation reaches the mean.
func FairnessScore(staff []*models.StaffMember) float64 {
	if len(staff) == 0 {
		return 100.0
	}

	var sum float64
	for _, s := range staff {
		sum += s.TotalHours
	}
	if sum == 0 {
		return 100.0
	}
	mean := sum / float64(len(staff))

	var varianceSum float64
	for _, s := range staff {
		diff := s.TotalHours - mean
		varianceSum += diff * diff
	}
	stdDev := math.Sqrt(varianceSum / float64(len(staff)))

	score := (1.0 - stdDev/mean) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}
