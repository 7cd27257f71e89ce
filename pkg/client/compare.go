package client

import (
	"context"
	"time"

	"github.com/arnavshah/roster-engine-go/pkg/apperr"
	"github.com/arnavshah/roster-engine-go/pkg/models"
	"github.com/arnavshah/roster-engine-go/pkg/preferences"
	"github.com/arnavshah/roster-engine-go/pkg/scheduler"
)

// CompareRequest describes a dry run of every strategy over the same window
type CompareRequest struct {
	StaffIDs     []string
	Staff        []*models.StaffMember
	StartDate    time.Time
	EndDate      time.Time
	ShiftsPerDay *int
	ShiftType    string
}

// StrategyComparison is one strategy's dry-run result
type StrategyComparison struct {
	Strategy      string         `json:"strategy"`
	Label         string         `json:"label"`
	Score         float64        `json:"score"`
	ScoreName     string         `json:"score_name"`
	Coverage      float64        `json:"coverage"`
	Fairness      float64        `json:"fairness"`
	Summary       models.Summary `json:"summary"`
	Balanced      bool           `json:"balanced"`
	BalanceReason string         `json:"balance_reason,omitempty"`
}

// CompareOutcome lists every strategy and the one that fared best
type CompareOutcome struct {
	Comparison   []StrategyComparison `json:"comparison"`
	BestStrategy string               `json:"best_strategy"`
}

// Compare runs every registered strategy on its own copy of the staff and catalog.
// Nothing is persisted. Strategy scores use different scales, so the best strategy is
// picked on balance, then slot coverage, then hour fairness, then registration order.
func (c *ScheduleClient) Compare(ctx context.Context, req CompareRequest) (*CompareOutcome, error) {
	shiftsPerDay, pattern := c.resolveShape(req.ShiftsPerDay, req.ShiftType)
	if len(req.Staff)+len(req.StaffIDs) == 0 {
		return nil, apperr.InvalidInput("staff list cannot be empty")
	}
	if req.StartDate.After(req.EndDate) {
		return nil, apperr.InvalidInput("start date must be before end date")
	}
	if shiftsPerDay <= 0 {
		return nil, apperr.InvalidInput("shifts per day must be positive")
	}
	template, err := c.resolveStaff(ctx, req.Staff, req.StaffIDs)
	if err != nil {
		return nil, err
	}
	prefs := preferences.Snapshot(ctx, c.scheduler.Provider(), template)

	outcome := &CompareOutcome{}
	bestIdx := -1
	for _, name := range c.scheduler.AvailableStrategies() {
		strategy, err := c.scheduler.Strategy(name)
		if err != nil {
			return nil, err
		}
		shifts, err := scheduler.GenerateCatalog(scheduler.CatalogRequest{
			StartDate:    req.StartDate,
			EndDate:      req.EndDate,
			ShiftsPerDay: shiftsPerDay,
			Pattern:      pattern,
			Location:     c.opts.Location,
		})
		if err != nil {
			return nil, err
		}
		staff := cloneStaff(template)
		roster, err := scheduler.NewRoster(staff, shifts, prefs)
		if err != nil {
			return nil, err
		}
		result := c.scheduler.Run(strategy, roster, req.StartDate, req.EndDate)

		cmp := StrategyComparison{
			Strategy:  strategy.Name(),
			Label:     strategy.Label(),
			Score:     result.Score,
			ScoreName: result.ScoreName,
			Coverage:  coverage(shifts),
			Fairness:  scheduler.FairnessScore(staff),
			Summary:   result.Summary,
			Balanced:  true,
		}
		if err := scheduler.ValidateBalance(result.Summary, len(staff), c.opts.Rules); err != nil {
			cmp.Balanced = false
			cmp.BalanceReason = apperr.Message(err)
		}
		outcome.Comparison = append(outcome.Comparison, cmp)

		if bestIdx < 0 || better(cmp, outcome.Comparison[bestIdx]) {
			bestIdx = len(outcome.Comparison) - 1
		}
	}
	if bestIdx >= 0 {
		outcome.BestStrategy = outcome.Comparison[bestIdx].Strategy
	}
	return outcome, nil
}

func better(a, b StrategyComparison) bool {
	if a.Balanced != b.Balanced {
		return a.Balanced
	}
	if a.Coverage != b.Coverage {
		return a.Coverage > b.Coverage
	}
	return a.Fairness > b.Fairness
}

// coverage is the percentage of required slots that were filled
func coverage(shifts []*models.Shift) float64 {
	required, filled := 0, 0
	for _, sh := range shifts {
		required += sh.Capacity()
		filled += len(sh.AssignedStaff)
	}
	if required == 0 {
		return 0
	}
	return float64(filled) / float64(required) * 100
}

func cloneStaff(staff []*models.StaffMember) []*models.StaffMember {
	out := make([]*models.StaffMember, 0, len(staff))
	for _, s := range staff {
		out = append(out, &models.StaffMember{ID: s.ID, Name: s.Name, AssignedShifts: []string{}})
	}
	return out
}
