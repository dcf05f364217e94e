// ABOUTME: Export command pulling the enrolled participant's data from the
// ABOUTME: remote store into JSON, YAML, or XLSX.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stepforwardrx/stepforward/internal/engine"
	"github.com/stepforwardrx/stepforward/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the participant's study data",
	Long: `Fetch the enrolled participant's full series, medications, and
side-effect reports from the remote store and write them to a file.

Formats: json (default), yaml, xlsx.

Examples:
  stepforward export -o data.json
  stepforward export --format xlsx -o data.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		formatArg, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		format, err := export.ParseFormat(formatArg)
		if err != nil {
			return err
		}

		participantID, err := dayCache.ParticipantID()
		if err != nil {
			return err
		}
		if participantID == "" {
			return engine.ErrNotEnrolled
		}

		client, err := newRemoteClient()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		participant, err := client.GetParticipant(ctx, participantID)
		if err != nil {
			return fmt.Errorf("fetch participant: %w", err)
		}
		samples, err := client.ListDaySamples(ctx, participantID)
		if err != nil {
			return fmt.Errorf("fetch samples: %w", err)
		}
		medications, err := client.ListMedications(ctx, participantID)
		if err != nil {
			return fmt.Errorf("fetch medications: %w", err)
		}
		sideEffects, err := client.ListSideEffects(ctx, participantID)
		if err != nil {
			return fmt.Errorf("fetch side effects: %w", err)
		}

		bundle := export.NewBundle(*participant, samples, medications, sideEffects, time.Now())

		out := os.Stdout
		if output != "" {
			out, err = os.Create(output)
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			defer out.Close()
		}

		if err := export.Write(out, format, bundle); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if output != "" {
			color.Green("✓ Exported %d day(s) to %s", len(samples), output)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", string(export.FormatJSON), "Export format: json, yaml, or xlsx")
	exportCmd.Flags().StringP("output", "o", "", "Output file (defaults to stdout)")
	rootCmd.AddCommand(exportCmd)
}
