package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func parseRange(loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02", startDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from date %q", startDate)
	}
	end, err := time.ParseInLocation("2006-01-02", endDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --to date %q", endDate)
	}
	return start, end, nil
}

func splitIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// shiftsPerDayFlag leaves the count unset unless the flag was given, so the configured default applies
func shiftsPerDayFlag(cmd *cobra.Command) *int {
	if !cmd.Flags().Changed("shifts-per-day") {
		return nil
	}
	n := shiftsPerDay
	return &n
}
