// ABOUTME: Long-running collector agent command.
// ABOUTME: Periodic sync passes until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/stepforwardrx/stepforward/internal/engine"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the collector agent in the foreground",
	Long: `Run the collector agent: an immediate sync pass, then one per
configured interval (sync.interval, default 1h) until interrupted.

The hourly rate guard still applies between passes, so a short interval
only adds retry opportunities after failures.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Info("collector agent starting",
			zap.Duration("interval", appConfig.SyncInterval))
		fmt.Printf("Collecting every %s. Ctrl-C to stop.\n", appConfig.SyncInterval)

		runner := engine.NewRunner(eng, appConfig.SyncInterval, logger)
		if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}

		fmt.Println("Stopped.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
