// Package client orchestrates roster generation: it clears a date window, builds the
// candidate catalog, runs a strategy, persists the result and checks its balance.
package client

import (
	"context"
	"errors"
	"time"

	"github.com/arnavshah/roster-engine-go/pkg/apperr"
	"github.com/arnavshah/roster-engine-go/pkg/database"
	"github.com/arnavshah/roster-engine-go/pkg/logger"
	"github.com/arnavshah/roster-engine-go/pkg/models"
	"github.com/arnavshah/roster-engine-go/pkg/preferences"
	"github.com/arnavshah/roster-engine-go/pkg/scheduler"
	"github.com/rs/zerolog"
)

const (
	DefaultShiftsPerDay = 2
	DefaultShiftType    = scheduler.PatternMixed
)

// ShiftStore runs the clear-and-recreate sequence inside one transaction
type ShiftStore interface {
	WithinTransaction(ctx context.Context, fn func(tx database.ShiftTx) error) error
}

// StaffDirectory resolves staff IDs to users
type StaffDirectory interface {
	StaffByIDs(ctx context.Context, ids []string) ([]database.User, error)
}

// Options tune defaults and balance rules
type Options struct {
	ShiftsPerDay int
	ShiftType    string
	Rules        scheduler.BalanceRules
	Location     *time.Location
}

func DefaultOptions() Options {
	return Options{
		ShiftsPerDay: DefaultShiftsPerDay,
		ShiftType:    DefaultShiftType,
		Rules:        scheduler.DefaultBalanceRules(),
		Location:     time.UTC,
	}
}

// ScheduleClient is the entry point used by the HTTP handlers and the CLI
type ScheduleClient struct {
	scheduler *scheduler.Scheduler
	store     ShiftStore
	staff     StaffDirectory
	opts      Options
	log       *zerolog.Logger
	events    *logger.SchedulerLogger
}

func NewScheduleClient(s *scheduler.Scheduler, store ShiftStore, staff StaffDirectory, opts Options) *ScheduleClient {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.ShiftsPerDay <= 0 {
		opts.ShiftsPerDay = DefaultShiftsPerDay
	}
	if opts.ShiftType == "" {
		opts.ShiftType = DefaultShiftType
	}
	if opts.Rules == (scheduler.BalanceRules{}) {
		opts.Rules = scheduler.DefaultBalanceRules()
	}
	return &ScheduleClient{
		scheduler: s,
		store:     store,
		staff:     staff,
		opts:      opts,
		log:       logger.Component("schedule_client"),
		events:    logger.NewSchedulerLogger(),
	}
}

// AvailableStrategies lists the registered strategy names
func (c *ScheduleClient) AvailableStrategies() []string {
	return c.scheduler.AvailableStrategies()
}

// Strategy resolves a registered strategy by name
func (c *ScheduleClient) Strategy(name string) (scheduler.Strategy, error) {
	return c.scheduler.Strategy(name)
}

// GenerateSchedule runs a strategy over caller-supplied staff and shifts without persisting
func (c *ScheduleClient) GenerateSchedule(ctx context.Context, name string, staff []*models.StaffMember, shifts []*models.Shift, start, end time.Time) (*models.ScheduleResult, error) {
	return c.scheduler.GenerateSchedule(ctx, name, staff, shifts, start, end)
}

// AutoPopulateRequest describes one auto-populate run. ShiftsPerDay and ShiftType
// fall back to the client defaults when unset.
type AutoPopulateRequest struct {
	ScheduleID   string
	StrategyName string
	StaffIDs     []string
	Staff        []*models.StaffMember
	StartDate    time.Time
	EndDate      time.Time
	ShiftsPerDay *int
	ShiftType    string
}

// AutoPopulateOutcome reports a committed run
type AutoPopulateOutcome struct {
	Success       bool                `json:"success"`
	ScheduleID    string              `json:"schedule_id"`
	StrategyUsed  string              `json:"strategy_used"`
	ShiftsCreated int                 `json:"shifts_created"`
	ShiftsDeleted int                 `json:"shifts_deleted"`
	Score         float64             `json:"score"`
	ScoreName     string              `json:"score_name"`
	Summary       models.Summary      `json:"summary"`
	Assignments   []models.Assignment `json:"assignments"`
}

// AutoPopulate replaces the schedule's shifts in the window with a freshly generated roster.
// Nothing is persisted unless the whole sequence, balance check included, succeeds.
func (c *ScheduleClient) AutoPopulate(ctx context.Context, req AutoPopulateRequest) (*AutoPopulateOutcome, error) {
	shiftsPerDay, pattern := c.resolveShape(req.ShiftsPerDay, req.ShiftType)
	if err := c.validate(req.ScheduleID, len(req.Staff)+len(req.StaffIDs), req.StartDate, req.EndDate, shiftsPerDay); err != nil {
		return nil, err
	}
	strategy, err := c.scheduler.Strategy(req.StrategyName)
	if err != nil {
		return nil, err
	}
	staff, err := c.resolveStaff(ctx, req.Staff, req.StaffIDs)
	if err != nil {
		return nil, err
	}

	// Preferences are read before the transaction opens
	prefs := preferences.Snapshot(ctx, c.scheduler.Provider(), staff)
	from, to := scheduler.Window(req.StartDate, req.EndDate, c.opts.Location)

	var outcome *AutoPopulateOutcome
	err = c.store.WithinTransaction(ctx, func(tx database.ShiftTx) error {
		exists, err := tx.ScheduleExists(ctx, req.ScheduleID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound("schedule", req.ScheduleID)
		}

		deleted, err := tx.DeleteShiftsInRange(ctx, req.ScheduleID, from, to)
		if err != nil {
			return err
		}

		shifts, err := scheduler.GenerateCatalog(scheduler.CatalogRequest{
			StartDate:    req.StartDate,
			EndDate:      req.EndDate,
			ShiftsPerDay: shiftsPerDay,
			Pattern:      pattern,
			Location:     c.opts.Location,
		})
		if err != nil {
			return err
		}

		roster, err := scheduler.NewRoster(staff, shifts, prefs)
		if err != nil {
			return err
		}
		result := c.scheduler.Run(strategy, roster, req.StartDate, req.EndDate)

		assignments := roster.Assignments()
		records := make([]database.ShiftRecord, 0, len(assignments))
		for _, a := range assignments {
			shift, _ := roster.ShiftByID(a.ShiftID)
			records = append(records, database.ShiftRecord{
				ScheduleID: req.ScheduleID,
				StaffID:    a.StaffID,
				ShiftType:  shift.ShiftType,
				StartTime:  a.Start,
				EndTime:    a.End,
			})
		}
		if err := tx.CreateShifts(ctx, records); err != nil {
			return err
		}

		if err := scheduler.ValidateBalance(result.Summary, len(staff), c.opts.Rules); err != nil {
			c.events.BalanceRejected(req.ScheduleID, strategy.Name(), apperr.Message(err))
			return err
		}

		if err := tx.RecordRun(ctx, &database.GenerationRun{
			ScheduleID:    req.ScheduleID,
			Strategy:      strategy.Name(),
			StartDate:     from,
			EndDate:       to.AddDate(0, 0, -1),
			ShiftsCreated: len(records),
			ShiftsDeleted: deleted,
			Score:         result.Score,
		}); err != nil {
			return err
		}

		outcome = &AutoPopulateOutcome{
			Success:       true,
			ScheduleID:    req.ScheduleID,
			StrategyUsed:  strategy.Name(),
			ShiftsCreated: len(records),
			ShiftsDeleted: deleted,
			Score:         result.Score,
			ScoreName:     result.ScoreName,
			Summary:       result.Summary,
			Assignments:   assignments,
		}
		return nil
	})
	if err != nil {
		var appErr *apperr.AppError
		if !errors.As(err, &appErr) {
			err = apperr.Database(err, "failed to auto-generate schedule")
		}
		c.log.Warn().Err(err).Str("schedule_id", req.ScheduleID).Str("strategy", strategy.Name()).Msg("auto-populate rolled back")
		return nil, err
	}

	c.log.Info().
		Str("schedule_id", outcome.ScheduleID).
		Str("strategy", outcome.StrategyUsed).
		Int("created", outcome.ShiftsCreated).
		Int("deleted", outcome.ShiftsDeleted).
		Msg("auto-populate committed")
	return outcome, nil
}

func (c *ScheduleClient) resolveShape(shiftsPerDay *int, shiftType string) (int, string) {
	n := c.opts.ShiftsPerDay
	if shiftsPerDay != nil {
		n = *shiftsPerDay
	}
	if shiftType == "" {
		shiftType = c.opts.ShiftType
	}
	return n, shiftType
}

func (c *ScheduleClient) validate(scheduleID string, staffCount int, start, end time.Time, shiftsPerDay int) error {
	if scheduleID == "" {
		return apperr.InvalidInput("schedule ID is required")
	}
	if staffCount == 0 {
		return apperr.InvalidInput("staff list cannot be empty")
	}
	if start.After(end) {
		return apperr.InvalidInput("start date must be before end date")
	}
	if shiftsPerDay <= 0 {
		return apperr.InvalidInput("shifts per day must be positive")
	}
	return nil
}

func (c *ScheduleClient) resolveStaff(ctx context.Context, staff []*models.StaffMember, ids []string) ([]*models.StaffMember, error) {
	if len(staff) > 0 {
		return staff, nil
	}
	if c.staff == nil {
		return nil, apperr.New(apperr.CodeInternal, "no staff directory configured")
	}
	users, err := c.staff.StaffByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return StaffFromUsers(users), nil
}

// StaffFromUsers converts persisted users into fresh staff members
func StaffFromUsers(users []database.User) []*models.StaffMember {
	staff := make([]*models.StaffMember, 0, len(users))
	for _, u := range users {
		staff = append(staff, &models.StaffMember{ID: u.ID, Name: u.Username, AssignedShifts: []string{}})
	}
	return staff
}
