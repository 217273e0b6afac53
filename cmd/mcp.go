package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/clauselens/clauselens/internal/mcp"
	"github.com/clauselens/clauselens/internal/session"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing document search and conversation tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		opts, err := sessionOptionsFromConfig(cfg)
		if err != nil {
			return err
		}
		sess, err := session.New(opts)
		if err != nil {
			return err
		}

		if err := sess.LoadIndex(ctx, indexDir(cfg)); err != nil {
			// The server still starts; search tools report the missing index.
			fmt.Fprintf(os.Stderr, "Warning: could not load index: %v\nRun `clauselens ingest` first.\n", err)
		}

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "clauselens MCP server started on stdio (%d indexed chunks)\n", sess.ChunkCount())

		srv := mcpserver.NewServer(sess)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
