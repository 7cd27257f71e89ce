package scheduler

import (
	"fmt"

	"github.com/arnavshah/roster-engine-go/pkg/apperr"
	"github.com/arnavshah/roster-engine-go/pkg/models"
)

// BalanceRules bound how lopsided an accepted schedule may be
type BalanceRules struct {
	MaxHourSpread float64
	UnevenFactor  float64
}

func DefaultBalanceRules() BalanceRules {
	return BalanceRules{MaxHourSpread: 20, UnevenFactor: 1.5}
}

// ValidateBalance rejects a generated schedule whose hours are too far apart,
// that gives out fewer shifts than there are staff, or whose busiest member works
// more than UnevenFactor times the average. An empty summary passes.
func ValidateBalance(summary models.Summary, staffCount int, rules BalanceRules) error {
	if summary.IsEmpty() {
		return nil
	}
	if summary.MaxHours-summary.MinHours > rules.MaxHourSpread {
		return apperr.Unbalanced(fmt.Sprintf("schedule too unbalanced - hour difference exceeds %g hours", rules.MaxHourSpread))
	}
	if summary.TotalShiftsAssigned < staffCount {
		return apperr.Unbalanced("not enough shifts assigned - some staff may have no shifts")
	}
	if summary.MaxHours > summary.AverageHoursPerStaff*rules.UnevenFactor {
		return apperr.Unbalanced("schedule distribution too uneven")
	}
	return nil
}
