package scheduler

import (
	"context"
	"strings"
	"time"

	"github.com/arnavshah/roster-engine-go/pkg/apperr"
	"github.com/arnavshah/roster-engine-go/pkg/logger"
	"github.com/arnavshah/roster-engine-go/pkg/models"
	"github.com/arnavshah/roster-engine-go/pkg/preferences"
)

// Strategy is an assignment policy over a Roster. Implementations keep no state
// between calls and must Reset the roster before assigning.
type Strategy interface {
	// Name is the registry key
	Name() string
	// Label is the human readable name reported in results
	Label() string
	GenerateSchedule(r *Roster, start, end time.Time) *models.ScheduleResult
}

// Scheduler maps strategy names to instances and runs them
type Scheduler struct {
	strategies map[string]Strategy
	order      []string
	provider   preferences.Provider
	log        *logger.SchedulerLogger
}

// NewScheduler registers the built-in strategies. A nil provider yields default preferences for everyone.
func NewScheduler(provider preferences.Provider) *Scheduler {
	s := &Scheduler{
		strategies: make(map[string]Strategy),
		provider:   provider,
		log:        logger.NewSchedulerLogger(),
	}
	s.register(EvenDistributeStrategy{})
	s.register(MinimizeDaysStrategy{})
	s.register(ShiftTypeStrategy{})
	s.register(PreferenceBasedStrategy{})
	s.register(DayNightDistributeStrategy{})
	return s
}

func (s *Scheduler) register(strategy Strategy) {
	s.strategies[strategy.Name()] = strategy
	s.order = append(s.order, strategy.Name())
}

// AvailableStrategies returns the registered names in registration order
func (s *Scheduler) AvailableStrategies() []string {
	return append([]string{}, s.order...)
}

// Strategy resolves a name. Underscores are accepted in place of hyphens.
func (s *Scheduler) Strategy(name string) (Strategy, error) {
	if strategy, ok := s.strategies[name]; ok {
		return strategy, nil
	}
	if strategy, ok := s.strategies[strings.ReplaceAll(name, "_", "-")]; ok {
		return strategy, nil
	}
	return nil, apperr.UnknownStrategy(name, s.AvailableStrategies())
}

// Provider returns the preference provider used for snapshots
func (s *Scheduler) Provider() preferences.Provider {
	return s.provider
}

// GenerateSchedule runs the named strategy over staff and shifts, mutating both in place
func (s *Scheduler) GenerateSchedule(ctx context.Context, name string, staff []*models.StaffMember, shifts []*models.Shift, start, end time.Time) (*models.ScheduleResult, error) {
	strategy, err := s.Strategy(name)
	if err != nil {
		return nil, err
	}
	roster, err := NewRoster(staff, shifts, preferences.Snapshot(ctx, s.provider, staff))
	if err != nil {
		return nil, err
	}
	return s.Run(strategy, roster, start, end), nil
}

// Run executes strategy on an already built roster
func (s *Scheduler) Run(strategy Strategy, roster *Roster, start, end time.Time) *models.ScheduleResult {
	began := time.Now()
	s.log.StartSchedule(strategy.Name(), len(roster.Staff()), len(roster.Shifts()))
	result := strategy.GenerateSchedule(roster, start, end)
	s.log.ScheduleComplete(strategy.Name(), time.Since(began), result.Summary.TotalShiftsAssigned, result.Score)
	return result
}
