// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mcp provides a Model Context Protocol server for flomo2obsidian.
// It exposes the session lifecycle as tools so an agent can open an
// export, convert date ranges, preview days and write the output archive.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pdiddy/flomo2obsidian/internal/session"
)

// NewServer creates an MCP server with all session tools registered.
func NewServer(version string, sessions *session.Manager) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "flomo2obsidian",
		Version: version,
	}, nil)
	registerTools(server, sessions)
	return server
}

func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations returns annotations for tools that only read session state.
func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// writeAnnotations returns annotations for tools that change session state
// or write files.
func writeAnnotations(destructive bool) *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		DestructiveHint: boolPtr(destructive),
		OpenWorldHint:   boolPtr(false),
	}
}

func registerTools(server *mcp.Server, sessions *session.Manager) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "begin_session",
		Description: "Open a flomo HTML export zip. Extracts it to a scratch directory, parses every memo and returns a session ID with note counts and the date span.",
		Annotations: writeAnnotations(false),
	}, handleBeginSession(sessions))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "convert",
		Description: "Group the session's notes into one markdown document per day. Optional start and end (YYYY-MM-DD) limit the days; omitted bounds default to the earliest and latest note.",
		Annotations: writeAnnotations(false),
	}, handleConvert(sessions))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "preview",
		Description: "Return the rendered markdown of one converted day with its headings and image links.",
		Annotations: readOnlyAnnotations(),
	}, handlePreview(sessions))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export",
		Description: "Write the converted days and their attachments to an output zip, replacing any existing file at that path.",
		Annotations: writeAnnotations(true),
	}, handleExport(sessions))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "end_session",
		Description: "Close a session and remove its scratch directory.",
		Annotations: writeAnnotations(true),
	}, handleEndSession(sessions))
}
