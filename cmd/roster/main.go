package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/arnavshah/roster-engine-go/pkg/config"
	"github.com/arnavshah/roster-engine-go/pkg/handlers"
	"github.com/arnavshah/roster-engine-go/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	timeout time.Duration
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "roster",
	Short: "Generate and inspect staff rosters from the command line",
	Long: `roster drives the same scheduling engine as the HTTP server against
the configured database (DATABASE_URL or DATA_PATH).

Available subcommands:
  strategies - List the registered strategies
  schedule   - Create a schedule
  adduser    - Create a staff or admin account
  populate   - Auto-populate a schedule over a date range
  compare    - Dry-run every strategy over a date range`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "warn"
		if verbose {
			level = "debug"
		}
		logger.Init(logger.Config{Level: level, Format: "console", Output: "stderr"})
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "Operation timeout")

	rootCmd.AddCommand(strategiesCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(addUserCmd)
	rootCmd.AddCommand(populateCmd)
	rootCmd.AddCommand(compareCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration and wires the same handler graph the server uses
func setup(cmd *cobra.Command) (*handlers.Handler, context.Context, context.CancelFunc, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	h, err := handlers.Setup(ctx, cfg)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	return h, ctx, cancel, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
