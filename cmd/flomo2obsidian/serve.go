// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	flomomcp "github.com/pdiddy/flomo2obsidian/internal/mcp"
	"github.com/pdiddy/flomo2obsidian/internal/output"
	"github.com/pdiddy/flomo2obsidian/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as MCP server (stdio transport)",
	Long: `Run flomo2obsidian as a Model Context Protocol (MCP) server over stdio.

Each begin_session call opens an export and returns a session ID; convert,
preview and export act on that session, and end_session removes its scratch
files. Sessions still open when the server stops are ended.

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "flomo2obsidian": {
        "command": "flomo2obsidian",
        "args": ["serve"]
      }
    }
  }

Available tools: begin_session, convert, preview, export, end_session`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return output.NewUserError(err.Error())
		}
		store := openHistory(cmd, cfg)
		if store != nil {
			defer store.Close()
		}

		sessions := session.NewManager(cfg, sessionOptions(store)...)
		defer sessions.EndAll()

		server := flomomcp.NewServer(version, sessions)
		return server.Run(cmd.Context(), &mcp.StdioTransport{})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
