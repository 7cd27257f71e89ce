package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/arnavshah/roster-engine-go/pkg/apperr"
	"gorm.io/gorm"
)

// ScheduleStore persists schedules
type ScheduleStore struct {
	DB *gorm.DB
}

func NewScheduleStore(db *gorm.DB) *ScheduleStore {
	return &ScheduleStore{DB: db}
}

func (s *ScheduleStore) nameTaken(ctx context.Context, name string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&Schedule{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

// Create adds a schedule with a unique name
func (s *ScheduleStore) Create(ctx context.Context, name, createdBy string) (*Schedule, error) {
	if name == "" {
		return nil, apperr.InvalidInput("name is required")
	}
	taken, err := s.nameTaken(ctx, name)
	if err != nil {
		return nil, apperr.Database(err, "could not check schedule name")
	}
	if taken {
		return nil, apperr.New(apperr.CodeConflict, fmt.Sprintf("schedule named '%s' already exists", name))
	}

	schedule := &Schedule{Name: name, CreatedBy: createdBy}
	if err := s.DB.WithContext(ctx).Create(schedule).Error; err != nil {
		return nil, apperr.Database(err, "could not create schedule")
	}
	return schedule, nil
}

// Get loads a schedule by id
func (s *ScheduleStore) Get(ctx context.Context, id string) (*Schedule, error) {
	var schedule Schedule
	if err := s.DB.WithContext(ctx).First(&schedule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("schedule", id)
		}
		return nil, apperr.Database(err, "could not load schedule")
	}
	return &schedule, nil
}

// List returns all schedules, newest first
func (s *ScheduleStore) List(ctx context.Context) ([]Schedule, error) {
	var schedules []Schedule
	if err := s.DB.WithContext(ctx).Order("created_at desc").Find(&schedules).Error; err != nil {
		return nil, apperr.Database(err, "could not list schedules")
	}
	return schedules, nil
}

// Rename changes a schedule's name, keeping names unique
func (s *ScheduleStore) Rename(ctx context.Context, id, name string) (*Schedule, error) {
	schedule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, apperr.InvalidInput("name is required")
	}
	taken, err := s.nameTaken(ctx, name)
	if err != nil {
		return nil, apperr.Database(err, "could not check schedule name")
	}
	if taken {
		return nil, apperr.New(apperr.CodeConflict, fmt.Sprintf("schedule named '%s' already exists", name))
	}
	if err := s.DB.WithContext(ctx).Model(schedule).Update("name", name).Error; err != nil {
		return nil, apperr.Database(err, "could not rename schedule")
	}
	schedule.Name = name
	return schedule, nil
}

// Delete removes a schedule together with its shifts and runs, returning the shift count removed
func (s *ScheduleStore) Delete(ctx context.Context, id string) (int, error) {
	schedule, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}

	var removed int
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("schedule_id = ?", schedule.ID).Delete(&ShiftRecord{})
		if res.Error != nil {
			return res.Error
		}
		removed = int(res.RowsAffected)
		if err := tx.Where("schedule_id = ?", schedule.ID).Delete(&GenerationRun{}).Error; err != nil {
			return err
		}
		return tx.Delete(schedule).Error
	})
	if err != nil {
		return 0, apperr.Database(err, "could not delete schedule")
	}
	return removed, nil
}
