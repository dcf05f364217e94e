// ABOUTME: Enrollment and sync status command.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show enrollment and sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		participantID, err := dayCache.ParticipantID()
		if err != nil {
			return err
		}
		if participantID == "" {
			color.Yellow("Not enrolled")
			fmt.Println("\nRun 'stepforward setup <participant-id>' to enroll this device.")
			return nil
		}

		pharmacyID, err := dayCache.PharmacyID()
		if err != nil {
			return err
		}
		deviceID, err := dayCache.DeviceID()
		if err != nil {
			return err
		}
		last, err := dayCache.LastSuccessfulUpload()
		if err != nil {
			return err
		}

		color.Green("✓ Enrolled as %s", participantID)
		if pharmacyID != "" {
			fmt.Printf("  Pharmacy:    %s\n", pharmacyID)
		}
		fmt.Printf("  Device:      %s\n", deviceID)
		fmt.Printf("  Last upload: %s\n", formatLastUpload(last))

		cached := 0
		now := time.Now()
		stale := 0
		for _, date := range dayCache.WindowDates() {
			entry, err := dayCache.ReadDay(date)
			if err != nil {
				return err
			}
			if entry == nil {
				continue
			}
			cached++
			if entry.IsStale(now) {
				stale++
			}
		}
		fmt.Printf("  Cache:       %d/%d days", cached, len(dayCache.WindowDates()))
		if stale > 0 {
			fmt.Printf(" (%d stale)", stale)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
