package preferences

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arnavshah/roster-engine-go/pkg/apperr"
	"github.com/arnavshah/roster-engine-go/pkg/database"
	"github.com/arnavshah/roster-engine-go/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store keeps preference records in the preferences table
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) GetPreferences(ctx context.Context, staffID string) (models.PreferenceRecord, error) {
	var pref database.Preference
	if err := s.DB.WithContext(ctx).First(&pref, "staff_id = ?", staffID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PreferenceRecord{}, ErrNotFound
		}
		return models.PreferenceRecord{}, err
	}
	return models.PreferenceRecord{
		PreferredShiftTypes: pref.PreferredShiftTypes,
		UnavailableWeekdays: pref.UnavailableWeekdays,
		MaxHoursPerWeek:     pref.MaxHoursPerWeek,
		Skills:              pref.Skills,
	}.Normalize(), nil
}

// Put validates and upserts a staff member's record
func (s *Store) Put(ctx context.Context, staffID string, rec models.PreferenceRecord) (models.PreferenceRecord, error) {
	rec = rec.Normalize()
	ve := &apperr.ValidationErrors{}
	for _, d := range rec.UnavailableWeekdays {
		if d < 0 || d > 6 {
			ve.Add("unavailable_weekdays", fmt.Sprintf("weekday %d is outside 0..6", d))
		}
	}
	if ve.HasErrors() {
		return rec, ve.ToAppError()
	}

	row := database.Preference{
		StaffID:             staffID,
		PreferredShiftTypes: rec.PreferredShiftTypes,
		UnavailableWeekdays: rec.UnavailableWeekdays,
		MaxHoursPerWeek:     rec.MaxHoursPerWeek,
		Skills:              rec.Skills,
		UpdatedAt:           time.Now(),
	}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "staff_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"preferred_shift_types", "unavailable_weekdays", "max_hours_per_week", "skills", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return rec, apperr.Database(err, "could not save preferences")
	}
	return rec, nil
}
