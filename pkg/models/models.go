package models

import "time"

// DefaultMaxHoursPerWeek is the hour ceiling applied when a staff member has no preference record
const DefaultMaxHoursPerWeek = 40.0

// DefaultShiftHours is the duration assumed for a shift that carries neither times nor a duration
const DefaultShiftHours = 8.0

// StaffMember represents a person that can be placed on shifts.
// TotalHours and AssignedShifts are rebuilt on every generation pass.
type StaffMember struct {
	ID             string   `json:"id"`
	Name           string   `json:"name,omitempty"`
	TotalHours     float64  `json:"total_hours"`
	AssignedShifts []string `json:"assigned_shifts"`
}

// Shift represents a time slot that needs filling
type Shift struct {
	ID             string    `json:"id"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	DurationHours  float64   `json:"duration_hours,omitempty"`
	RequiredStaff  int       `json:"required_staff"`
	RequiredSkills []string  `json:"required_skills"`
	ShiftType      string    `json:"shift_type,omitempty"`
	AssignedStaff  []string  `json:"assigned_staff"`
}

// NewShift builds a shift with a capacity of one and no skill requirements
func NewShift(id string, start, end time.Time, shiftType string) *Shift {
	return &Shift{
		ID:             id,
		Start:          start,
		End:            end,
		DurationHours:  end.Sub(start).Hours(),
		RequiredStaff:  1,
		RequiredSkills: []string{},
		ShiftType:      shiftType,
		AssignedStaff:  []string{},
	}
}

// HasStart reports whether the shift carries a start time
func (s *Shift) HasStart() bool {
	return !s.Start.IsZero()
}

// Capacity returns how many staff the shift takes. Unset capacities count as one.
func (s *Shift) Capacity() int {
	if s.RequiredStaff <= 0 {
		return 1
	}
	return s.RequiredStaff
}

// PreferenceRecord is a staff member's stated affinities and limits.
// Weekdays are numbered 0 (Monday) through 6 (Sunday).
type PreferenceRecord struct {
	PreferredShiftTypes []string `json:"preferred_shift_types"`
	UnavailableWeekdays []int    `json:"unavailable_weekdays"`
	MaxHoursPerWeek     float64  `json:"max_hours_per_week"`
	Skills              []string `json:"skills"`
}

// DefaultPreferences returns the neutral record used when a lookup finds nothing
func DefaultPreferences() PreferenceRecord {
	return PreferenceRecord{
		PreferredShiftTypes: []string{},
		UnavailableWeekdays: []int{},
		MaxHoursPerWeek:     DefaultMaxHoursPerWeek,
		Skills:              []string{},
	}
}

// Normalize fills unset fields with their defaults
func (p PreferenceRecord) Normalize() PreferenceRecord {
	if p.PreferredShiftTypes == nil {
		p.PreferredShiftTypes = []string{}
	}
	if p.UnavailableWeekdays == nil {
		p.UnavailableWeekdays = []int{}
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.MaxHoursPerWeek <= 0 {
		p.MaxHoursPerWeek = DefaultMaxHoursPerWeek
	}
	return p
}

// Prefers reports whether shiftType is one of the preferred types
func (p PreferenceRecord) Prefers(shiftType string) bool {
	for _, t := range p.PreferredShiftTypes {
		if t == shiftType {
			return true
		}
	}
	return false
}

// UnavailableOn reports whether the weekday (0=Monday) is blocked
func (p PreferenceRecord) UnavailableOn(weekday int) bool {
	for _, d := range p.UnavailableWeekdays {
		if d == weekday {
			return true
		}
	}
	return false
}

// HasSkills reports whether every required skill is held
func (p PreferenceRecord) HasSkills(required []string) bool {
	for _, r := range required {
		found := false
		for _, s := range p.Skills {
			if s == r {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Summary aggregates hours and coverage after a generation pass
type Summary struct {
	TotalStaff           int     `json:"total_staff"`
	StaffWithShifts      int     `json:"staff_with_shifts"`
	ShiftsCovered        int     `json:"shifts_covered"`
	TotalShiftsAssigned  int     `json:"total_shifts_assigned"`
	MinHours             float64 `json:"min_hours"`
	MaxHours             float64 `json:"max_hours"`
	AverageHoursPerStaff float64 `json:"average_hours_per_staff"`

	// Only filled by the day/night strategy
	DayStaffCount       *int `json:"day_staff_count,omitempty"`
	NightStaffCount     *int `json:"night_staff_count,omitempty"`
	DayShiftsAssigned   *int `json:"day_shifts_assigned,omitempty"`
	NightShiftsAssigned *int `json:"night_shifts_assigned,omitempty"`
}

// IsEmpty reports whether the summary was computed over an empty roster
func (s Summary) IsEmpty() bool {
	return s.TotalStaff == 0
}

// ScheduleEntry is one line of a formatted schedule
type ScheduleEntry struct {
	ShiftID       string    `json:"shift_id"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	ShiftType     string    `json:"shift_type,omitempty"`
	RequiredStaff int       `json:"required_staff"`
	AssignedStaff []string  `json:"assigned_staff"`
}

// ScheduleResult is what every strategy hands back
type ScheduleResult struct {
	Strategy    string          `json:"strategy"`
	StrategyKey string          `json:"strategy_key"`
	Schedule    []ScheduleEntry `json:"schedule"`
	Summary     Summary         `json:"summary"`
	Score       float64         `json:"score"`
	ScoreName   string          `json:"score_name"`
	Unfilled    []UnfilledShift `json:"unfilled,omitempty"`
}

// UnfilledShift explains why a shift was left short of staff
type UnfilledShift struct {
	ShiftID string   `json:"shift_id"`
	Missing int      `json:"missing"`
	Reasons []string `json:"reasons"`
}

// Assignment represents a staff-shift pairing
type Assignment struct {
	ShiftID string    `json:"shift_id,omitempty"`
	StaffID string    `json:"staff_id"`
	Start   time.Time `json:"start_time"`
	End     time.Time `json:"end_time"`
}
