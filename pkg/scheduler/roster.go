package scheduler

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/arnavshah/roster-engine-go/pkg/apperr"
	"github.com/arnavshah/roster-engine-go/pkg/models"
)

// hourEpsilon absorbs float drift from fractional shift lengths such as 16:00-23:59
const hourEpsilon = 1e-9

// Roster is the mutable staff/shift graph of one generation pass.
// Strategies only touch assignment state through its methods.
type Roster struct {
	staff     []*models.StaffMember
	shifts    []*models.Shift
	staffByID map[string]*models.StaffMember
	shiftByID map[string]*models.Shift
	prefs     map[string]models.PreferenceRecord
}

// NewRoster indexes staff and shifts. IDs must be present and unique on each side.
func NewRoster(staff []*models.StaffMember, shifts []*models.Shift, prefs map[string]models.PreferenceRecord) (*Roster, error) {
	r := &Roster{
		staff:     staff,
		shifts:    shifts,
		staffByID: make(map[string]*models.StaffMember, len(staff)),
		shiftByID: make(map[string]*models.Shift, len(shifts)),
		prefs:     prefs,
	}
	for _, s := range staff {
		if s == nil || s.ID == "" {
			return nil, apperr.InvalidInput("staff member without an ID")
		}
		if _, dup := r.staffByID[s.ID]; dup {
			return nil, apperr.InvalidInput(fmt.Sprintf("duplicate staff ID: %s", s.ID))
		}
		r.staffByID[s.ID] = s
	}
	for _, sh := range shifts {
		if sh == nil || sh.ID == "" {
			return nil, apperr.InvalidInput("shift without an ID")
		}
		if _, dup := r.shiftByID[sh.ID]; dup {
			return nil, apperr.InvalidInput(fmt.Sprintf("duplicate shift ID: %s", sh.ID))
		}
		r.shiftByID[sh.ID] = sh
	}
	if r.prefs == nil {
		r.prefs = map[string]models.PreferenceRecord{}
	}
	return r, nil
}

func (r *Roster) Staff() []*models.StaffMember { return r.staff }
func (r *Roster) Shifts() []*models.Shift       { return r.shifts }

func (r *Roster) StaffByID(id string) (*models.StaffMember, bool) {
	s, ok := r.staffByID[id]
	return s, ok
}

func (r *Roster) ShiftByID(id string) (*models.Shift, bool) {
	s, ok := r.shiftByID[id]
	return s, ok
}

// Preferences returns the snapshot record for a staff member, or the default record
func (r *Roster) Preferences(staffID string) models.PreferenceRecord {
	if p, ok := r.prefs[staffID]; ok {
		return p.Normalize()
	}
	return models.DefaultPreferences()
}

// Reset clears every assignment and hour counter. Strategies call it first.
func (r *Roster) Reset() {
	for _, s := range r.staff {
		s.TotalHours = 0
		s.AssignedShifts = []string{}
	}
	for _, sh := range r.shifts {
		sh.AssignedStaff = []string{}
	}
}

// Duration returns the shift length in hours
func (r *Roster) Duration(shift *models.Shift) float64 {
	if shift.HasStart() && !shift.End.IsZero() {
		return shift.End.Sub(shift.Start).Hours()
	}
	if shift.DurationHours > 0 {
		return shift.DurationHours
	}
	return models.DefaultShiftHours
}

// Needed returns how many more staff the shift takes
func (r *Roster) Needed(shift *models.Shift) int {
	return shift.Capacity() - len(shift.AssignedStaff)
}

// CanWork reports whether staff may take shift at all: the shift must have a start,
// fall on an available weekday and require only skills the staff member holds.
func (r *Roster) CanWork(staff *models.StaffMember, shift *models.Shift) bool {
	if !shift.HasStart() {
		return false
	}
	prefs := r.Preferences(staff.ID)
	if prefs.UnavailableOn(Weekday(shift.Start)) {
		return false
	}
	return prefs.HasSkills(shift.RequiredSkills)
}

// IsAssigned reports whether the pair is already recorded
func (r *Roster) IsAssigned(staff *models.StaffMember, shift *models.Shift) bool {
	return slices.Contains(shift.AssignedStaff, staff.ID)
}

// fitsHours reports whether taking shift keeps staff within their weekly cap
func (r *Roster) fitsHours(staff *models.StaffMember, shift *models.Shift) bool {
	return staff.TotalHours+r.Duration(shift) <= r.Preferences(staff.ID).MaxHoursPerWeek+hourEpsilon
}

// AssignIfAvailable commits the pair when the shift has room and the staff member's
// hours stay within the cap. Reaching the cap exactly is allowed.
func (r *Roster) AssignIfAvailable(staff *models.StaffMember, shift *models.Shift) bool {
	if r.Needed(shift) <= 0 || r.IsAssigned(staff, shift) {
		return false
	}
	if !r.fitsHours(staff, shift) {
		return false
	}
	r.assign(staff, shift)
	return true
}

// assign records the pair without the hour check; callers pre-filter
func (r *Roster) assign(staff *models.StaffMember, shift *models.Shift) {
	shift.AssignedStaff = append(shift.AssignedStaff, staff.ID)
	staff.AssignedShifts = append(staff.AssignedShifts, shift.ID)
	staff.TotalHours += r.Duration(shift)
}

// Overlaps reports whether any shift already held by staff intersects shift
func (r *Roster) Overlaps(staff *models.StaffMember, shift *models.Shift) bool {
	if !shift.HasStart() {
		return false
	}
	end := shift.Start.Add(hoursToDuration(r.Duration(shift)))
	for _, id := range staff.AssignedShifts {
		existing, ok := r.shiftByID[id]
		if !ok || !existing.HasStart() {
			continue
		}
		exEnd := existing.Start.Add(hoursToDuration(r.Duration(existing)))
		if existing.Start.Before(end) && shift.Start.Before(exEnd) {
			return true
		}
	}
	return false
}

// Summary aggregates hours and coverage over the roster
func (r *Roster) Summary() models.Summary {
	var summary models.Summary
	summary.TotalStaff = len(r.staff)
	for _, sh := range r.shifts {
		if len(sh.AssignedStaff) > 0 {
			summary.ShiftsCovered++
		}
		summary.TotalShiftsAssigned += len(sh.AssignedStaff)
	}
	if len(r.staff) == 0 {
		return summary
	}

	minHours := math.Inf(1)
	maxHours := math.Inf(-1)
	var total float64
	for _, s := range r.staff {
		if len(s.AssignedShifts) > 0 {
			summary.StaffWithShifts++
		}
		total += s.TotalHours
		minHours = math.Min(minHours, s.TotalHours)
		maxHours = math.Max(maxHours, s.TotalHours)
	}
	summary.MinHours = minHours
	summary.MaxHours = maxHours
	summary.AverageHoursPerStaff = total / float64(len(r.staff))
	return summary
}

// FormatSchedule lists each shift with its assignees, in roster order
func (r *Roster) FormatSchedule() []models.ScheduleEntry {
	entries := make([]models.ScheduleEntry, 0, len(r.shifts))
	for _, sh := range r.shifts {
		entries = append(entries, models.ScheduleEntry{
			ShiftID:       sh.ID,
			Start:         sh.Start,
			End:           sh.End,
			ShiftType:     sh.ShiftType,
			RequiredStaff: sh.Capacity(),
			AssignedStaff: append([]string{}, sh.AssignedStaff...),
		})
	}
	return entries
}

// Assignments flattens the graph into one entry per committed pair
func (r *Roster) Assignments() []models.Assignment {
	var out []models.Assignment
	for _, sh := range r.shifts {
		for _, id := range sh.AssignedStaff {
			out = append(out, models.Assignment{
				ShiftID: sh.ID,
				StaffID: id,
				Start:   sh.Start,
				End:     sh.End,
			})
		}
	}
	return out
}

// result packages the roster state for a strategy
func (r *Roster) result(s Strategy, scoreName string, score float64) *models.ScheduleResult {
	return &models.ScheduleResult{
		Strategy:    s.Label(),
		StrategyKey: s.Name(),
		Schedule:    r.FormatSchedule(),
		Summary:     r.Summary(),
		Score:       score,
		ScoreName:   scoreName,
		Unfilled:    r.Unfilled(),
	}
}

// Unfilled lists the shifts still needing staff, with a count of what ruled each
// candidate out
func (r *Roster) Unfilled() []models.UnfilledShift {
	var out []models.UnfilledShift
	for _, sh := range r.shifts {
		missing := r.Needed(sh)
		if missing <= 0 {
			continue
		}
		out = append(out, models.UnfilledShift{ShiftID: sh.ID, Missing: missing, Reasons: r.unfilledReasons(sh)})
	}
	return out
}

func (r *Roster) unfilledReasons(shift *models.Shift) []string {
	if !shift.HasStart() {
		return []string{"shift has no start time"}
	}
	if len(r.staff) == 0 {
		return []string{"no staff available"}
	}

	var unavailable, overlapping, capped, eligible int
	for _, person := range r.staff {
		switch {
		case r.IsAssigned(person, shift):
		case !r.CanWork(person, shift):
			unavailable++
		case r.Overlaps(person, shift):
			overlapping++
		case !r.fitsHours(person, shift):
			capped++
		default:
			eligible++
		}
	}

	var reasons []string
	if unavailable > 0 {
		reasons = append(reasons, fmt.Sprintf("%d staff unavailable or missing skills", unavailable))
	}
	if overlapping > 0 {
		reasons = append(reasons, fmt.Sprintf("%d staff had overlapping shifts", overlapping))
	}
	if capped > 0 {
		reasons = append(reasons, fmt.Sprintf("%d staff at their hour limit", capped))
	}
	if eligible > 0 {
		reasons = append(reasons, fmt.Sprintf("%d eligible staff held back by the strategy", eligible))
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "every staff member is already on this shift")
	}
	return reasons
}

// chronological returns the shifts ordered by start; shifts without a start come first
func (r *Roster) chronological() []*models.Shift {
	out := append([]*models.Shift{}, r.shifts...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}
