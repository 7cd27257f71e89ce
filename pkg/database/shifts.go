package database

import (
	"context"
	"errors"
	"time"

	"github.com/arnavshah/roster-engine-go/pkg/apperr"
	"gorm.io/gorm"
)

// ShiftTx is the set of writes an auto-populate performs inside one transaction
type ShiftTx interface {
	ScheduleExists(ctx context.Context, scheduleID string) (bool, error)
	DeleteShiftsInRange(ctx context.Context, scheduleID string, from, to time.Time) (int, error)
	CreateShifts(ctx context.Context, records []ShiftRecord) error
	RecordRun(ctx context.Context, run *GenerationRun) error
}

// ShiftStore persists shift records
type ShiftStore struct {
	DB *gorm.DB
}

func NewShiftStore(db *gorm.DB) *ShiftStore {
	return &ShiftStore{DB: db}
}

// WithinTransaction runs fn in a single transaction. Any error returned by fn rolls it back.
func (s *ShiftStore) WithinTransaction(ctx context.Context, fn func(tx ShiftTx) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormShiftTx{db: tx})
	})
}

type gormShiftTx struct {
	db *gorm.DB
}

func (t *gormShiftTx) ScheduleExists(ctx context.Context, scheduleID string) (bool, error) {
	var count int64
	if err := t.db.WithContext(ctx).Model(&Schedule{}).Where("id = ?", scheduleID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteShiftsInRange removes shifts starting in [from, to)
func (t *gormShiftTx) DeleteShiftsInRange(ctx context.Context, scheduleID string, from, to time.Time) (int, error) {
	res := t.db.WithContext(ctx).
		Where("schedule_id = ? AND start_time >= ? AND start_time < ?", scheduleID, from.UTC(), to.UTC()).
		Delete(&ShiftRecord{})
	return int(res.RowsAffected), res.Error
}

func (t *gormShiftTx) CreateShifts(ctx context.Context, records []ShiftRecord) error {
	if len(records) == 0 {
		return nil
	}
	return t.db.WithContext(ctx).CreateInBatches(records, 200).Error
}

func (t *gormShiftTx) RecordRun(ctx context.Context, run *GenerationRun) error {
	return t.db.WithContext(ctx).Create(run).Error
}

// Create stores a manually scheduled shift
func (s *ShiftStore) Create(ctx context.Context, rec *ShiftRecord) error {
	if !rec.EndTime.After(rec.StartTime) {
		return apperr.InvalidInput("end time must be after start time")
	}
	if err := s.DB.WithContext(ctx).Create(rec).Error; err != nil {
		return apperr.Database(err, "could not create shift")
	}
	return nil
}

// Get loads one shift record
func (s *ShiftStore) Get(ctx context.Context, id string) (*ShiftRecord, error) {
	var rec ShiftRecord
	if err := s.DB.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("shift", id)
		}
		return nil, apperr.Database(err, "could not load shift")
	}
	return &rec, nil
}

// ClockIn stamps the start of work on a staff member's own shift
func (s *ShiftStore) ClockIn(ctx context.Context, staffID, shiftID string, now time.Time) (*ShiftRecord, error) {
	rec, err := s.Get(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if rec.StaffID != staffID {
		return nil, apperr.New(apperr.CodeForbidden, "cannot clock into another staff member's shift")
	}
	if rec.ClockIn != nil {
		return nil, apperr.New(apperr.CodeConflict, "already clocked in")
	}
	now = now.UTC()
	rec.ClockIn = &now
	if err := s.DB.WithContext(ctx).Model(rec).Update("clock_in", now).Error; err != nil {
		return nil, apperr.Database(err, "could not clock in")
	}
	return rec, nil
}

// ClockOut stamps the end of work on a staff member's own shift
func (s *ShiftStore) ClockOut(ctx context.Context, staffID, shiftID string, now time.Time) (*ShiftRecord, error) {
	rec, err := s.Get(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if rec.StaffID != staffID {
		return nil, apperr.New(apperr.CodeForbidden, "cannot clock out from another staff member's shift")
	}
	if rec.ClockIn == nil {
		return nil, apperr.New(apperr.CodeConflict, "must clock in before clocking out")
	}
	if rec.ClockOut != nil {
		return nil, apperr.New(apperr.CodeConflict, "already clocked out")
	}
	now = now.UTC()
	rec.ClockOut = &now
	if err := s.DB.WithContext(ctx).Model(rec).Update("clock_out", now).Error; err != nil {
		return nil, apperr.Database(err, "could not clock out")
	}
	return rec, nil
}

// CombinedRoster returns every shift of every schedule the staff member works in
func (s *ShiftStore) CombinedRoster(ctx context.Context, staffID string) ([]ShiftRecord, error) {
	var shifts []ShiftRecord
	sub := s.DB.Model(&ShiftRecord{}).Distinct("schedule_id").Where("staff_id = ?", staffID)
	err := s.DB.WithContext(ctx).
		Where("schedule_id IN (?)", sub).
		Order("start_time asc").
		Find(&shifts).Error
	if err != nil {
		return nil, apperr.Database(err, "could not load roster")
	}
	return shifts, nil
}

// ListBySchedule returns a schedule's shifts in start order
func (s *ShiftStore) ListBySchedule(ctx context.Context, scheduleID string) ([]ShiftRecord, error) {
	var shifts []ShiftRecord
	err := s.DB.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("start_time asc, staff_id asc").
		Find(&shifts).Error
	if err != nil {
		return nil, apperr.Database(err, "could not load shifts")
	}
	return shifts, nil
}

// ReportRow is one line of the admin shift report
type ReportRow struct {
	ShiftRecord
	StaffName string `json:"staff_name"`
}

// Report lists all shifts with the staff username attached
func (s *ShiftStore) Report(ctx context.Context) ([]ReportRow, error) {
	var rows []ReportRow
	err := s.DB.WithContext(ctx).
		Model(&ShiftRecord{}).
		Select("shift_records.*, COALESCE(users.username, 'N/A') AS staff_name").
		Joins("LEFT JOIN users ON users.id = shift_records.staff_id").
		Order("shift_records.start_time asc").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Database(err, "could not build report")
	}
	return rows, nil
}

// ListRuns returns the latest generation runs of a schedule
func (s *ShiftStore) ListRuns(ctx context.Context, scheduleID string, limit int) ([]GenerationRun, error) {
	var runs []GenerationRun
	err := s.DB.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("created_at desc").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, apperr.Database(err, "could not load generation runs")
	}
	return runs, nil
}
