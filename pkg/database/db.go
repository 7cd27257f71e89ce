package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Roles a user can hold
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User represents the users table. Staff members and admins share it.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"not null;default:staff;index" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Schedule represents the schedules table
type Schedule struct {
	ID        string        `gorm:"primaryKey;size:36" json:"id"`
	Name      string        `gorm:"unique;not null" json:"name"`
	CreatedBy string        `gorm:"size:36" json:"created_by"`
	CreatedAt time.Time     `json:"created_at"`
	Shifts    []ShiftRecord `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// ShiftRecord represents a persisted (staff, shift) assignment
type ShiftRecord struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	ScheduleID string     `gorm:"size:36;not null;index:idx_schedule_start" json:"schedule_id"`
	StaffID    string     `gorm:"size:36;not null;index" json:"staff_id"`
	ShiftType  string     `json:"shift_type"`
	StartTime  time.Time  `gorm:"not null;index:idx_schedule_start" json:"start_time"`
	EndTime    time.Time  `gorm:"not null" json:"end_time"`
	ClockIn    *time.Time `json:"clock_in"`
	ClockOut   *time.Time `json:"clock_out"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Preference represents the preferences table, one row per staff member
type Preference struct {
	StaffID             string    `gorm:"primaryKey;size:36" json:"staff_id"`
	PreferredShiftTypes []string  `gorm:"serializer:json" json:"preferred_shift_types"`
	UnavailableWeekdays []int     `gorm:"serializer:json" json:"unavailable_weekdays"`
	MaxHoursPerWeek     float64   `gorm:"default:40" json:"max_hours_per_week"`
	Skills              []string  `gorm:"serializer:json" json:"skills"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// GenerationRun records each successful auto-populate
type GenerationRun struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	ScheduleID    string    `gorm:"size:36;not null;index" json:"schedule_id"`
	Strategy      string    `gorm:"not null" json:"strategy"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	ShiftsCreated int       `json:"shifts_created"`
	ShiftsDeleted int       `json:"shifts_deleted"`
	Score         float64   `json:"score"`
	CreatedAt     time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (s *Schedule) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// SQLite keeps times as offset-bearing text, so range filters and ordering only
// hold when every stored instant uses the same zone.
func (r *ShiftRecord) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.StartTime = r.StartTime.UTC()
	r.EndTime = r.EndTime.UTC()
	r.ClockIn = utcPtr(r.ClockIn)
	r.ClockOut = utcPtr(r.ClockOut)
	return nil
}

func (r *GenerationRun) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.StartDate = r.StartDate.UTC()
	r.EndDate = r.EndDate.UTC()
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// Options selects the backing database
type Options struct {
	DatabaseURL string
	DataPath    string
	Verbose     bool
}

// InitDB opens Postgres when a URL is given, SQLite otherwise, and migrates the schema
func InitDB(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	cfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	if opts.Verbose {
		cfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	if opts.DatabaseURL != "" {
		dialector = postgres.New(postgres.Config{
			DSN:                  opts.DatabaseURL,
			PreferSimpleProtocol: true,
		})
		cfg.PrepareStmt = false
	} else {
		dbPath := opts.DataPath
		if dbPath == "" {
			dbPath = "roster.db"
		}
		dialector = sqlite.Open(dbPath + "?_foreign_keys=on")
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}, &Schedule{}, &ShiftRecord{}, &Preference{}, &GenerationRun{}); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
