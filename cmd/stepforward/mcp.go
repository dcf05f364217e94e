// ABOUTME: MCP server command exposing the collector over stdio.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	mcpserver "github.com/stepforwardrx/stepforward/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Model Context Protocol server",
	Long: `Start the MCP server on stdio for use with MCP-compatible AI
assistants.

TOOLS:

  cache_window        Inspect the cached day window
  sync_status         Show enrollment and last upload
  sync_now            Run a collect-and-upload pass
  analyze_metric      Baseline anomaly analysis for one metric
  report_side_effect  File a side-effect report`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		client, err := newRemoteClient()
		if err != nil {
			return err
		}

		server, err := mcpserver.NewServer(dayCache, eng, client)
		if err != nil {
			return fmt.Errorf("init mcp server: %w", err)
		}
		return server.Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
