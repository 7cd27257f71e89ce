package main

import (
	"fmt"
	"strings"

	"github.com/arnavshah/roster-engine-go/pkg/auth"
	"github.com/arnavshah/roster-engine-go/pkg/client"
	"github.com/arnavshah/roster-engine-go/pkg/database"
	"github.com/spf13/cobra"
)

var (
	shiftsPerDay int
	shiftType    string
	staffIDs     string
	startDate    string
	endDate      string
	userRole     string
)

// strategiesCmd lists the registered strategies
var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the registered strategies",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, _, cancel, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		for _, name := range h.Client.AvailableStrategies() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

// scheduleCmd creates an empty schedule
var scheduleCmd = &cobra.Command{
	Use:   "schedule <name>",
	Short: "Create a schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, ctx, cancel, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		schedule, err := h.Schedules.Create(ctx, strings.TrimSpace(args[0]), "")
		if err != nil {
			return err
		}
		return printJSON(cmd, schedule)
	},
}

// addUserCmd creates an account with a bcrypt hashed password
var addUserCmd = &cobra.Command{
	Use:   "adduser <username> <password>",
	Short: "Create a staff or admin account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if userRole != database.RoleStaff && userRole != database.RoleAdmin {
			return fmt.Errorf("role must be %q or %q", database.RoleStaff, database.RoleAdmin)
		}
		h, ctx, cancel, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		hash, err := auth.HashPassword(args[1])
		if err != nil {
			return err
		}
		user, err := h.Users.Create(ctx, args[0], hash, userRole)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s with ID:\n%s\n", user.Role, user.Username, user.ID)
		return nil
	},
}

// populateCmd runs an auto-populate and commits it
var populateCmd = &cobra.Command{
	Use:   "populate <schedule-id> <strategy>",
	Short: "Auto-populate a schedule over a date range",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, ctx, cancel, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		start, end, err := parseRange(h.Location)
		if err != nil {
			return err
		}
		outcome, err := h.Client.AutoPopulate(ctx, client.AutoPopulateRequest{
			ScheduleID:   args[0],
			StrategyName: args[1],
			StaffIDs:     splitIDs(staffIDs),
			StartDate:    start,
			EndDate:      end,
			ShiftsPerDay: shiftsPerDayFlag(cmd),
			ShiftType:    shiftType,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, outcome)
	},
}

// compareCmd dry-runs every strategy
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Dry-run every strategy over a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, ctx, cancel, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		start, end, err := parseRange(h.Location)
		if err != nil {
			return err
		}
		outcome, err := h.Client.Compare(ctx, client.CompareRequest{
			StaffIDs:     splitIDs(staffIDs),
			StartDate:    start,
			EndDate:      end,
			ShiftsPerDay: shiftsPerDayFlag(cmd),
			ShiftType:    shiftType,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, outcome)
	},
}

func init() {
	addUserCmd.Flags().StringVar(&userRole, "role", database.RoleStaff, "Account role (staff or admin)")

	for _, c := range []*cobra.Command{populateCmd, compareCmd} {
		c.Flags().StringVar(&staffIDs, "staff", "", "Comma separated staff IDs")
		c.Flags().StringVar(&startDate, "from", "", "First day, YYYY-MM-DD")
		c.Flags().StringVar(&endDate, "to", "", "Last day, YYYY-MM-DD")
		c.Flags().IntVar(&shiftsPerDay, "shifts-per-day", client.DefaultShiftsPerDay, "Shifts generated per day")
		c.Flags().StringVar(&shiftType, "shift-type", "", "Catalog pattern: day, night or mixed")
		_ = c.MarkFlagRequired("staff")
		_ = c.MarkFlagRequired("from")
		_ = c.MarkFlagRequired("to")
	}
}
