// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pdiddy/flomo2obsidian/internal/render"
	"github.com/pdiddy/flomo2obsidian/internal/session"
	"github.com/pdiddy/flomo2obsidian/pkg/types"
)

// toolError turns a pipeline error into its user-facing description.
func toolError(err error) error {
	return errors.New(types.Description(err))
}

// --- begin_session ---

// BeginInput is the input for the begin_session tool.
type BeginInput struct {
	Path string `json:"path" jsonschema:"path to the flomo export zip"`
}

// BeginOutput is the output for the begin_session tool.
type BeginOutput struct {
	SessionID string `json:"session_id"         jsonschema:"ID to pass to the other tools"`
	Entries   int    `json:"entries"            jsonschema:"memo entries found in the export"`
	Notes     int    `json:"notes"              jsonschema:"notes parsed successfully"`
	Skipped   int    `json:"skipped"            jsonschema:"entries dropped for a missing or malformed timestamp or empty content"`
	Earliest  string `json:"earliest,omitempty" jsonschema:"timestamp of the earliest note"`
	Latest    string `json:"latest,omitempty"   jsonschema:"timestamp of the latest note"`
}

func handleBeginSession(sessions *session.Manager) mcp.ToolHandlerFor[BeginInput, BeginOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input BeginInput) (*mcp.CallToolResult, BeginOutput, error) {
		if input.Path == "" {
			return nil, BeginOutput{}, errors.New("path is required")
		}
		s, err := sessions.Begin(ctx, input.Path)
		if err != nil {
			return nil, BeginOutput{}, toolError(err)
		}

		sum := s.Summary()
		out := BeginOutput{
			SessionID: sum.ID,
			Entries:   sum.Entries,
			Notes:     sum.NoteCount,
			Skipped:   sum.Skipped,
		}
		if sum.NoteCount > 0 {
			out.Earliest = sum.Earliest.Format(time.RFC3339)
			out.Latest = sum.Latest.Format(time.RFC3339)
		}
		return nil, out, nil
	}
}

// --- convert ---

// ConvertInput is the input for the convert tool.
type ConvertInput struct {
	SessionID string `json:"session_id"      jsonschema:"session ID from begin_session"`
	Start     string `json:"start,omitempty" jsonschema:"first day to include (YYYY-MM-DD)"`
	End       string `json:"end,omitempty"   jsonschema:"last day to include (YYYY-MM-DD)"`
}

// DaySummary describes one converted day.
type DaySummary struct {
	Day    string `json:"day"    jsonschema:"calendar day (YYYY-MM-DD)"`
	File   string `json:"file"   jsonschema:"markdown filename in the output archive"`
	Notes  int    `json:"notes"  jsonschema:"notes on this day"`
	Images int    `json:"images" jsonschema:"image references on this day"`
}

// ConvertOutput is the output for the convert tool.
type ConvertOutput struct {
	Start   string       `json:"start,omitempty" jsonschema:"first day of the converted range"`
	End     string       `json:"end,omitempty"   jsonschema:"last day of the converted range"`
	Notes   int          `json:"notes"           jsonschema:"notes inside the range"`
	Images  int          `json:"images"          jsonschema:"image references inside the range"`
	Missing int          `json:"missing"         jsonschema:"image references whose file is absent from the export"`
	Days    []DaySummary `json:"days"            jsonschema:"converted days in chronological order"`
}

func handleConvert(sessions *session.Manager) mcp.ToolHandlerFor[ConvertInput, ConvertOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ConvertInput) (*mcp.CallToolResult, ConvertOutput, error) {
		s, err := sessions.Get(input.SessionID)
		if err != nil {
			return nil, ConvertOutput{}, toolError(err)
		}
		rng, err := s.ParseRange(input.Start, input.End)
		if err != nil {
			return nil, ConvertOutput{}, toolError(err)
		}
		batch, err := s.Convert(ctx, rng, nil)
		if err != nil {
			return nil, ConvertOutput{}, toolError(err)
		}
		out := ConvertOutput{
			Notes:   batch.Notes,
			Images:  batch.Images,
			Missing: batch.Missing,
			Days:    make([]DaySummary, 0, batch.Days()),
		}
		if !batch.Range.Start.IsZero() {
			out.Start = batch.Range.Start.Format(types.DayLayout)
			out.End = batch.Range.End.Format(types.DayLayout)
		}
		for _, doc := range batch.Documents {
			out.Days = append(out.Days, DaySummary{
				Day:    doc.Key(),
				File:   doc.Filename(),
				Notes:  len(doc.Notes),
				Images: doc.ImageCount(),
			})
		}
		return nil, out, nil
	}
}

// --- preview ---

// PreviewInput is the input for the preview tool.
type PreviewInput struct {
	SessionID string `json:"session_id" jsonschema:"session ID from begin_session"`
	Day       string `json:"day"        jsonschema:"converted day to show (YYYY-MM-DD)"`
}

// PreviewOutput is the output for the preview tool.
type PreviewOutput struct {
	File     string   `json:"file"               jsonschema:"markdown filename"`
	Markdown string   `json:"markdown"           jsonschema:"rendered document"`
	Headings []string `json:"headings,omitempty" jsonschema:"note titles in order"`
	Images   []string `json:"images,omitempty"   jsonschema:"image links in order"`
}

func handlePreview(sessions *session.Manager) mcp.ToolHandlerFor[PreviewInput, PreviewOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input PreviewInput) (*mcp.CallToolResult, PreviewOutput, error) {
		s, err := sessions.Get(input.SessionID)
		if err != nil {
			return nil, PreviewOutput{}, toolError(err)
		}
		if s.Batch() == nil {
			return nil, PreviewOutput{}, toolError(types.NewStageError(types.ErrNotConverted, s.ID(), nil))
		}
		text, ok := s.Rendered(input.Day)
		if !ok {
			return nil, PreviewOutput{}, errors.New("no converted document for day " + input.Day)
		}

		outline := render.ParseOutline([]byte(text))
		return nil, PreviewOutput{
			File:     input.Day + ".md",
			Markdown: text,
			Headings: outline.Headings,
			Images:   outline.Images,
		}, nil
	}
}

// --- export ---

// ExportInput is the input for the export tool.
type ExportInput struct {
	SessionID string `json:"session_id"       jsonschema:"session ID from begin_session"`
	Output    string `json:"output,omitempty" jsonschema:"output zip path (defaults to the configured export path)"`
}

// ExportOutput is the output for the export tool.
type ExportOutput struct {
	Path        string `json:"path"        jsonschema:"written archive"`
	Documents   int    `json:"documents"   jsonschema:"markdown files in the archive"`
	Attachments int    `json:"attachments" jsonschema:"files in the Attachments folder"`
	Missing     int    `json:"missing"     jsonschema:"image references that could not be copied"`
}

func handleExport(sessions *session.Manager) mcp.ToolHandlerFor[ExportInput, ExportOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ExportInput) (*mcp.CallToolResult, ExportOutput, error) {
		s, err := sessions.Get(input.SessionID)
		if err != nil {
			return nil, ExportOutput{}, toolError(err)
		}
		res, err := s.Export(ctx, input.Output)
		if err != nil {
			return nil, ExportOutput{}, toolError(err)
		}
		return nil, ExportOutput{
			Path:        res.Path,
			Documents:   res.Documents,
			Attachments: res.Attachments,
			Missing:     res.Missing,
		}, nil
	}
}

// --- end_session ---

// EndInput is the input for the end_session tool.
type EndInput struct {
	SessionID string `json:"session_id" jsonschema:"session ID from begin_session"`
}

// EndOutput is the output for the end_session tool.
type EndOutput struct {
	Ended bool `json:"ended" jsonschema:"true when the session was closed"`
}

func handleEndSession(sessions *session.Manager) mcp.ToolHandlerFor[EndInput, EndOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input EndInput) (*mcp.CallToolResult, EndOutput, error) {
		if err := sessions.End(input.SessionID); err != nil {
			return nil, EndOutput{}, toolError(err)
		}
		return nil, EndOutput{Ended: true}, nil
	}
}
