package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/misty-step/cerberus/internal/mcpserver"
	"github.com/misty-step/cerberus/internal/qualityreport"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP stdio server exposing get_verdict, list_reviewers, and quality_report",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This allows editors and coding agents to query Cerberus natively for
the reviewer roster and run history. This command wires no verdict
source, so get_verdict returns an error. Configure with:

  {
    "mcpServers": {
      "cerberus": { "command": "cerberus", "args": ["mcp"] }
    }
  }

Available tools: get_verdict, list_reviewers, quality_report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return mcpRun(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func mcpRun(ctx context.Context) error {
	var history *qualityreport.Store
	dbPath := viper.GetString("history_db_path")
	store, err := qualityreport.Open(ctx, dbPath)
	if err != nil {
		ui.Warning("quality-report history cache unavailable: %v", err)
	} else {
		history = store
		defer func() { _ = store.Close() }()
	}

	srv := mcpserver.NewServer(doc, nil, history)
	if err := srv.ServeStdio(ctx); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
