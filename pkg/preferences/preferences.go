// Package preferences resolves staff preference records for the scheduler.
package preferences

import (
	"context"
	"errors"
	"sync"

	"github.com/arnavshah/roster-engine-go/pkg/logger"
	"github.com/arnavshah/roster-engine-go/pkg/models"
)

// ErrNotFound is returned by providers that hold no record for a staff member
var ErrNotFound = errors.New("preferences not found")

// fallbackLog is built on first use so it picks up the configured global logger
var fallbackLog = sync.OnceValue(logger.NewSchedulerLogger)

// Provider looks up a staff member's preference record
type Provider interface {
	GetPreferences(ctx context.Context, staffID string) (models.PreferenceRecord, error)
}

// Static serves records from memory
type Static map[string]models.PreferenceRecord

func (s Static) GetPreferences(_ context.Context, staffID string) (models.PreferenceRecord, error) {
	rec, ok := s[staffID]
	if !ok {
		return models.PreferenceRecord{}, ErrNotFound
	}
	return rec.Normalize(), nil
}

// Lookup never fails: a missing record or a provider error yields the default record
func Lookup(ctx context.Context, p Provider, staffID string) models.PreferenceRecord {
	if p == nil {
		return models.DefaultPreferences()
	}
	rec, err := p.GetPreferences(ctx, staffID)
	if err != nil {
		fallbackLog().PreferenceFallback(staffID, err)
		return models.DefaultPreferences()
	}
	return rec.Normalize()
}

// Snapshot fetches every staff member's record once for a generation pass
func Snapshot(ctx context.Context, p Provider, staff []*models.StaffMember) map[string]models.PreferenceRecord {
	out := make(map[string]models.PreferenceRecord, len(staff))
	for _, s := range staff {
		if _, seen := out[s.ID]; seen {
			continue
		}
		out[s.ID] = Lookup(ctx, p, s.ID)
	}
	return out
}
