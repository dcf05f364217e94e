// ABOUTME: One-shot collect-and-upload command for the tracked day window.
// ABOUTME: Honors the hourly rate guard unless forced.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stepforwardrx/stepforward/internal/engine"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"s"},
	Short:   "Collect and upload the tracked day window",
	Long: `Collect sensor readings for today plus the previous 7 days, cache
them, and upload every fresh cached day to the remote store.

Days already present remotely are updated in place, so re-running sync is
safe. Passes are rate limited to one successful upload per hour; use
--force to bypass the guard.

Examples:
  stepforward sync
  stepforward sync --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		eng, err := newEngine()
		if err != nil {
			return err
		}

		summary, err := eng.SyncPass(cmd.Context(), force)
		if errors.Is(err, engine.ErrRecentlySynced) {
			color.Yellow("Skipped: synced within the last hour.")
			fmt.Println("Use --force to upload anyway.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}

		color.Green("✓ Sync complete")
		fmt.Printf("  Uploaded:  %d\n", summary.Uploaded)
		fmt.Printf("  No data:   %d\n", summary.SkippedNoData)
		fmt.Printf("  Stale:     %d\n", summary.SkippedStale)
		if summary.Failed > 0 {
			color.Red("  Failed:    %d", summary.Failed)
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().Bool("force", false, "Bypass the one-hour rate guard")
	rootCmd.AddCommand(syncCmd)
}
