package client

import (
	"context"
	"testing"
	"time"

	"github.com/arnavshah/roster-engine-go/pkg/apperr"
	"github.com/arnavshah/roster-engine-go/pkg/database"
	"github.com/arnavshah/roster-engine-go/pkg/models"
	"github.com/arnavshah/roster-engine-go/pkg/preferences"
	"github.com/arnavshah/roster-engine-go/pkg/scheduler"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var monday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	db       *gorm.DB
	client   *ScheduleClient
	shifts   *database.ShiftStore
	schedule *database.Schedule
	staffIDs []string
}

func newFixture(t *testing.T, staff ...string) *fixture {
	t.Helper()
	db, err := database.OpenInMemory(t.Name())
	require.NoError(t, err)
	ctx := context.Background()

	users := database.NewUserStore(db)
	var ids []string
	for _, name := range staff {
		u, err := users.Create(ctx, name, "x", database.RoleStaff)
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}
	schedule, err := database.NewScheduleStore(db).Create(ctx, "Ward A", "")
	require.NoError(t, err)

	shifts := database.NewShiftStore(db)
	s := scheduler.NewScheduler(preferences.NewStore(db))
	return &fixture{
		db:       db,
		client:   NewScheduleClient(s, shifts, users, DefaultOptions()),
		shifts:   shifts,
		schedule: schedule,
		staffIDs: ids,
	}
}

func intPtr(n int) *int { return &n }

func TestAutoPopulateCommits(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()

	outcome, err := f.client.AutoPopulate(ctx, AutoPopulateRequest{
		ScheduleID:   f.schedule.ID,
		StrategyName: "even-distribute",
		StaffIDs:     f.staffIDs,
		StartDate:    monday,
		EndDate:      monday.AddDate(0, 0, 1),
	})
	require.NoError(t, err)
	require.True(t, outcome.Success)
	require.Equal(t, "even-distribute", outcome.StrategyUsed)
	require.Equal(t, 4, outcome.ShiftsCreated)
	require.Zero(t, outcome.ShiftsDeleted)
	require.Len(t, outcome.Assignments, 4)
	require.Equal(t, "fairness_score", outcome.ScoreName)
	require.Equal(t, 4, outcome.Summary.TotalShiftsAssigned)

	stored, err := f.shifts.ListBySchedule(ctx, f.schedule.ID)
	require.NoError(t, err)
	require.Len(t, stored, 4)

	// a second run replaces the window
	outcome, err = f.client.AutoPopulate(ctx, AutoPopulateRequest{
		ScheduleID:   f.schedule.ID,
		StrategyName: "shift_type_optimize",
		StaffIDs:     f.staffIDs,
		StartDate:    monday,
		EndDate:      monday.AddDate(0, 0, 1),
	})
	require.NoError(t, err)
	require.Equal(t, "shift-type-optimize", outcome.StrategyUsed)
	require.Equal(t, 4, outcome.ShiftsDeleted)

	stored, err = f.shifts.ListBySchedule(ctx, f.schedule.ID)
	require.NoError(t, err)
	require.Len(t, stored, outcome.ShiftsCreated)

	runs, err := f.shifts.ListRuns(ctx, f.schedule.ID, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
}

func TestAutoPopulateRollsBackOnImbalance(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()

	manual := &database.ShiftRecord{
		ScheduleID: f.schedule.ID,
		StaffID:    f.staffIDs[0],
		StartTime:  monday.Add(9 * time.Hour),
		EndTime:    monday.Add(12 * time.Hour),
	}
	require.NoError(t, f.shifts.Create(ctx, manual))

	// one shift for two staff cannot satisfy the balance rules
	_, err := f.client.AutoPopulate(ctx, AutoPopulateRequest{
		ScheduleID:   f.schedule.ID,
		StrategyName: "even-distribute",
		StaffIDs:     f.staffIDs,
		StartDate:    monday,
		EndDate:      monday,
		ShiftsPerDay: intPtr(1),
	})
	require.Error(t, err)
	require.True(t, apperr.Is(err, apperr.CodeUnbalancedSchedule))
	require.Contains(t, apperr.Message(err), "not enough shifts assigned")

	stored, err := f.shifts.ListBySchedule(ctx, f.schedule.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, manual.ID, stored[0].ID)

	runs, err := f.shifts.ListRuns(ctx, f.schedule.ID, 10)
	require.NoError(t, err)
	require.Empty(t, runs)
}

func TestAutoPopulateValidation(t *testing.T) {
	f := newFixture(t, "alice")
	ctx := context.Background()

	base := func() AutoPopulateRequest {
		return AutoPopulateRequest{
			ScheduleID:   f.schedule.ID,
			StrategyName: "even-distribute",
			StaffIDs:     f.staffIDs,
			StartDate:    monday,
			EndDate:      monday,
		}
	}

	cases := []struct {
		name   string
		mutate func(*AutoPopulateRequest)
		code   apperr.Code
	}{
		{name: "empty staff", mutate: func(r *AutoPopulateRequest) { r.StaffIDs = nil }, code: apperr.CodeInvalidInput},
		{name: "inverted range", mutate: func(r *AutoPopulateRequest) { r.StartDate = monday.AddDate(0, 0, 1) }, code: apperr.CodeInvalidInput},
		{name: "zero shifts per day", mutate: func(r *AutoPopulateRequest) { r.ShiftsPerDay = intPtr(0) }, code: apperr.CodeInvalidInput},
		{name: "unknown strategy", mutate: func(r *AutoPopulateRequest) { r.StrategyName = "round-robin" }, code: apperr.CodeUnknownStrategy},
		{name: "unknown staff", mutate: func(r *AutoPopulateRequest) { r.StaffIDs = []string{"ghost"} }, code: apperr.CodeInvalidInput},
		{name: "unknown schedule", mutate: func(r *AutoPopulateRequest) { r.ScheduleID = "missing" }, code: apperr.CodeNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base()
			tc.mutate(&req)
			_, err := f.client.AutoPopulate(ctx, req)
			require.Error(t, err)
			require.Equal(t, tc.code, apperr.GetCode(err))
		})
	}

	stored, err := f.shifts.ListBySchedule(ctx, f.schedule.ID)
	require.NoError(t, err)
	require.Empty(t, stored)
}

func TestAutoPopulateHonoursPreferences(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()

	prefs := preferences.NewStore(f.db)
	_, err := prefs.Put(ctx, f.staffIDs[1], models.PreferenceRecord{PreferredShiftTypes: []string{scheduler.TypeEvening}})
	require.NoError(t, err)

	outcome, err := f.client.AutoPopulate(ctx, AutoPopulateRequest{
		ScheduleID:   f.schedule.ID,
		StrategyName: "preference-based",
		StaffIDs:     f.staffIDs,
		StartDate:    monday,
		EndDate:      monday,
	})
	require.NoError(t, err)
	require.Len(t, outcome.Assignments, 2)

	for _, a := range outcome.Assignments {
		if a.Start.Hour() == 16 {
			require.Equal(t, f.staffIDs[1], a.StaffID)
		}
	}
}

func TestCompareRunsEveryStrategyWithoutPersisting(t *testing.T) {
	f := newFixture(t, "alice", "bob", "cara")
	ctx := context.Background()

	outcome, err := f.client.Compare(ctx, CompareRequest{
		StaffIDs:     f.staffIDs,
		StartDate:    monday,
		EndDate:      monday.AddDate(0, 0, 2),
		ShiftsPerDay: intPtr(3),
		ShiftType:    scheduler.PatternDay,
	})
	require.NoError(t, err)
	require.Len(t, outcome.Comparison, len(f.client.AvailableStrategies()))
	require.Contains(t, f.client.AvailableStrategies(), outcome.BestStrategy)

	for _, c := range outcome.Comparison {
		require.NotEmpty(t, c.Label)
		require.InDelta(t, 100.0, c.Coverage, 1e-9, c.Strategy)
	}

	var count int64
	require.NoError(t, f.db.Model(&database.ShiftRecord{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestBetterPrefersBalancedThenCoverage(t *testing.T) {
	balanced := StrategyComparison{Balanced: true, Coverage: 50, Fairness: 10}
	unbalanced := StrategyComparison{Balanced: false, Coverage: 100, Fairness: 100}
	require.True(t, better(balanced, unbalanced))
	require.False(t, better(unbalanced, balanced))

	fuller := StrategyComparison{Balanced: true, Coverage: 90}
	require.True(t, better(fuller, balanced))

	fairer := StrategyComparison{Balanced: true, Coverage: 50, Fairness: 20}
	require.True(t, better(fairer, balanced))
	require.False(t, better(balanced, balanced))
}

func TestGenerateScheduleOverCallerShifts(t *testing.T) {
	c := NewScheduleClient(scheduler.NewScheduler(nil), nil, nil, Options{})
	staff := []*models.StaffMember{{ID: "a"}, {ID: "b"}}
	shifts := []*models.Shift{
		models.NewShift("s1", monday.Add(8*time.Hour), monday.Add(16*time.Hour), ""),
		models.NewShift("s2", monday.Add(16*time.Hour), monday.Add(24*time.Hour), ""),
	}

	result, err := c.GenerateSchedule(context.Background(), "even-distribute", staff, shifts, monday, monday)
	require.NoError(t, err)
	require.Equal(t, 2, result.Summary.ShiftsCovered)
	require.Equal(t, 8.0, staff[0].TotalHours)
	require.Equal(t, 8.0, staff[1].TotalHours)
}
