// ABOUTME: Historical range upload command with batched merge upserts.
// ABOUTME: Prints fractional progress as the range is walked.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stepforwardrx/stepforward/internal/models"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Upload a historical date range",
	Long: `Query the sensor source for every day in a date range and upload the
days that carry data in batches of 50.

Batches merge on conflict, so re-running the same range never duplicates
rows. The cache and its staleness rules are not involved; this is a direct
sensor-to-remote path.

Examples:
  stepforward backfill --from 2024-01-01 --to 2024-03-01
  stepforward backfill --from 2024-01-01              # through today`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fromArg, _ := cmd.Flags().GetString("from")
		toArg, _ := cmd.Flags().GetString("to")

		from, err := time.Parse(models.DateFormat, fromArg)
		if err != nil {
			return fmt.Errorf("invalid --from date: %w", err)
		}
		to := time.Now()
		if toArg != "" {
			to, err = time.Parse(models.DateFormat, toArg)
			if err != nil {
				return fmt.Errorf("invalid --to date: %w", err)
			}
		}

		eng, err := newEngine()
		if err != nil {
			return err
		}

		lastShown := -1
		uploaded, err := eng.Backfill(cmd.Context(), from, to, func(done, total int) {
			percent := done * 100 / total
			if percent/10 > lastShown/10 {
				fmt.Printf("  %d%% (%d/%d days)\n", percent, done, total)
				lastShown = percent
			}
		})
		if err != nil {
			return fmt.Errorf("backfill failed: %w", err)
		}

		color.Green("✓ Backfill complete")
		fmt.Printf("  Rows uploaded: %d\n", uploaded)
		return nil
	},
}

func init() {
	backfillCmd.Flags().String("from", "", "Range start date (yyyy-mm-dd)")
	backfillCmd.Flags().String("to", "", "Range end date (yyyy-mm-dd), defaults to today")
	_ = backfillCmd.MarkFlagRequired("from")
	rootCmd.AddCommand(backfillCmd)
}
