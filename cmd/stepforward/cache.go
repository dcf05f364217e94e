// ABOUTME: Cache inspection and purge commands.
// ABOUTME: Purge is explicit and confirmed; nothing else deletes entries.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stepforwardrx/stepforward/internal/models"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the local day cache",
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cached window",
	Long: `Show each day of the tracked window with its capture time and
staleness. Stale entries are kept for inspection but never uploaded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now()
		for _, date := range dayCache.WindowDates() {
			entry, err := dayCache.ReadDay(date)
			if err != nil {
				return err
			}

			day := date.Format(models.DateFormat)
			if entry == nil {
				fmt.Printf("  %s  -\n", day)
				continue
			}

			age := now.Sub(entry.CapturedAt).Round(time.Minute)
			filled := 0
			for _, m := range models.AllMetrics {
				if entry.Sample.Value(m) != nil {
					filled++
				}
			}

			if entry.IsStale(now) {
				color.Yellow("  %s  %d/%d metrics, captured %s ago (stale)", day, filled, len(models.AllMetrics), age)
			} else {
				fmt.Printf("  %s  %d/%d metrics, captured %s ago\n", day, filled, len(models.AllMetrics), age)
			}
		}
		return nil
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every cached day in the window",
	Long: `Delete every cached entry in the tracked window.

This is a destructive operation. Enrollment and upload history are kept;
only the cached day samples are removed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("This will DELETE all cached day samples on this device.")
		fmt.Print("Continue? [y/N]: ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Println("Canceled.")
			return nil
		}

		if err := dayCache.PurgeWindow(); err != nil {
			return fmt.Errorf("purge failed: %w", err)
		}
		color.Green("✓ Cache purged")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
