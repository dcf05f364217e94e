// ABOUTME: Enrollment command linking this device to a participant id.
// ABOUTME: An already-registered id prompts overwrite-or-cancel.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stepforwardrx/stepforward/internal/engine"
	"github.com/stepforwardrx/stepforward/internal/models"
)

var setupCmd = &cobra.Command{
	Use:   "setup <participant-id>",
	Short: "Enroll this device under a participant id",
	Long: `Enroll this device under a participant id.

The id is registered with the remote store and saved locally. Ids are
case-insensitive; they are stored uppercased.

If the id is already registered (for example after reinstalling on a new
device), you can take it over and keep uploading under the same id.

Examples:
  stepforward setup P001 --pharmacy PH01
  stepforward setup p002 --take-over`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		participantID := models.NormalizeParticipantID(args[0])
		pharmacyID, _ := cmd.Flags().GetString("pharmacy")
		takeOver, _ := cmd.Flags().GetBool("take-over")

		eng, err := newEngine()
		if err != nil {
			return err
		}

		err = eng.Enroll(cmd.Context(), participantID, pharmacyID, takeOver)
		if errors.Is(err, engine.ErrParticipantTaken) {
			color.Yellow("Participant id %s is already registered.", participantID)
			fmt.Println("Another device may be uploading under this id.")
			fmt.Print("Take it over and continue on this device? [y/N]: ")
			var confirm string
			fmt.Scanln(&confirm)
			if confirm != "y" && confirm != "Y" {
				fmt.Println("Canceled.")
				return nil
			}
			err = eng.Enroll(cmd.Context(), participantID, pharmacyID, true)
		}
		if err != nil {
			return fmt.Errorf("setup failed: %w", err)
		}

		color.Green("✓ Enrolled as %s", participantID)
		if pharmacyID != "" {
			fmt.Printf("  Pharmacy: %s\n", pharmacyID)
		}
		fmt.Println("Run 'stepforward sync' to upload your first window.")
		return nil
	},
}

func init() {
	setupCmd.Flags().String("pharmacy", "", "Pharmacy affiliation id")
	setupCmd.Flags().Bool("take-over", false, "Claim the id even if it is already registered")
	rootCmd.AddCommand(setupCmd)
}
