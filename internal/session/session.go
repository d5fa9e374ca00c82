// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session runs the conversion pipeline for one export archive:
// Begin parses the archive once, Convert may run many times with
// different date ranges, Export packages the latest conversion, and End
// removes every file the session created.
package session

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/flomo2obsidian/internal/archive"
	"github.com/pdiddy/flomo2obsidian/internal/attach"
	"github.com/pdiddy/flomo2obsidian/internal/convert"
	"github.com/pdiddy/flomo2obsidian/internal/daily"
	"github.com/pdiddy/flomo2obsidian/internal/extract"
	"github.com/pdiddy/flomo2obsidian/pkg/types"
)

// Recorder stores session and export history.
type Recorder interface {
	RecordSession(ctx context.Context, rec types.SessionRecord) error
	RecordExport(ctx context.Context, rec types.ExportRecord) error
}

// Option configures a Session.
type Option func(*Session)

// WithRecorder records the session and each export through r. Recording
// failures are logged and never fail the session.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithStatus sends per-day conversion status lines to w.
func WithStatus(w io.Writer) Option {
	return func(s *Session) { s.status = w }
}

// Summary describes the note set parsed by Begin.
type Summary struct {
	ID        string    `json:"id" yaml:"id"`
	Input     string    `json:"input" yaml:"input"`
	Entries   int       `json:"entries" yaml:"entries"`
	NoteCount int       `json:"note_count" yaml:"note_count"`
	Skipped   int       `json:"skipped" yaml:"skipped"`
	Earliest  time.Time `json:"earliest" yaml:"earliest"`
	Latest    time.Time `json:"latest" yaml:"latest"`
}

// ExportResult describes a written output archive.
type ExportResult struct {
	Path        string `json:"path" yaml:"path"`
	Documents   int    `json:"documents" yaml:"documents"`
	Attachments int    `json:"attachments" yaml:"attachments"`
	Missing     int    `json:"missing" yaml:"missing"`
}

// Session owns one extracted export archive and the conversions made
// from it. Its methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	id       string
	cfg      types.Config
	loc      *time.Location
	recorder Recorder
	status   io.Writer

	input      string
	extraction *archive.Extraction
	sourceRoot string
	parsed     *extract.Result

	batch *convert.Batch
	ended bool
}

// Begin validates and extracts the archive at inputPath, locates the
// export document and parses its notes. On failure nothing is left on
// disk.
func Begin(ctx context.Context, inputPath string, cfg types.Config, opts ...Option) (*Session, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if abs, err := filepath.Abs(inputPath); err == nil {
		inputPath = abs
	}

	s := &Session{
		id:    uuid.NewString(),
		cfg:   cfg,
		loc:   loc,
		input: inputPath,
	}
	for _, opt := range opts {
		opt(s)
	}

	ext, err := archive.Extract(ctx, inputPath, cfg.ScratchDir)
	if err != nil {
		return nil, err
	}
	s.extraction = ext

	if err := s.parse(ctx); err != nil {
		archive.Release(ext.Root)
		return nil, err
	}

	slog.Info("session started", "session", s.id, "input", inputPath,
		"notes", len(s.parsed.Notes), "skipped", s.parsed.Skipped())
	s.record(ctx)
	return s, nil
}

func (s *Session) parse(ctx context.Context) error {
	doc, err := archive.LocateDocument(s.extraction.WorkingDir)
	if err != nil {
		return err
	}
	f, err := os.Open(doc)
	if err != nil {
		return types.NewStageError(types.ErrParseFailed, filepath.Base(doc), err)
	}
	defer f.Close()

	res, err := extract.Extract(ctx, f, s.cfg.Extraction, s.loc)
	if err != nil {
		return err
	}
	s.parsed = res
	s.sourceRoot = filepath.Dir(doc)
	return nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Summary describes the parsed note set.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		ID:        s.id,
		Input:     s.input,
		Entries:   s.parsed.Entries,
		NoteCount: len(s.parsed.Notes),
		Skipped:   s.parsed.Skipped(),
	}
	if span, ok := daily.Span(s.parsed.Notes); ok {
		sum.Earliest, sum.Latest = span.Start, span.End
	}
	return sum
}

// Location returns the reference calendar of the session.
func (s *Session) Location() *time.Location {
	return s.loc
}

// Convert filters the notes to rng, groups them by day and renders each
// day. A nil rng converts the whole span of the notes. It returns the
// batch it installed; the batch is never modified afterwards, so callers
// may read it after the session moves on. On failure the previous
// conversion is discarded.
func (s *Session) Convert(ctx context.Context, rng *types.DateRange, progress convert.ProgressFunc) (*convert.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return nil, types.NewStageError(types.ErrSessionEnded, s.id, nil)
	}
	s.batch = nil

	batch, err := convert.Notes(ctx, s.parsed.Notes, convert.Options{
		Range:      rng,
		Location:   s.loc,
		Links:      s.cfg.Render.Links,
		SourceRoot: s.sourceRoot,
		Progress:   progress,
		Status:     s.status,
	})
	if err != nil {
		return nil, err
	}
	s.batch = batch

	slog.Debug("converted", "session", s.id, "days", batch.Days(), "notes", batch.Notes)
	return batch, nil
}

// Batch returns the latest conversion, or nil before Convert succeeds.
func (s *Session) Batch() *convert.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch
}

// Documents returns the daily documents of the latest conversion.
func (s *Session) Documents() []types.DailyDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batch == nil {
		return nil
	}
	return s.batch.Documents
}

// Rendered returns the markdown of the day with the given YYYY-MM-DD key.
func (s *Session) Rendered(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batch == nil {
		return "", false
	}
	text, ok := s.batch.Rendered[key]
	return text, ok
}

// Export relocates the attachments of the converted notes and writes the
// output archive to outputPath, replacing any existing file. An empty
// outputPath uses the configured default. It requires a prior successful
// Convert; on failure the conversion is discarded.
func (s *Session) Export(ctx context.Context, outputPath string) (*ExportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return nil, types.NewStageError(types.ErrSessionEnded, s.id, nil)
	}
	if s.batch == nil {
		return nil, types.NewStageError(types.ErrNotConverted, s.id, nil)
	}
	if outputPath == "" {
		outputPath = s.cfg.Export.Output
	}

	res, err := s.export(ctx, outputPath)
	if err != nil {
		s.batch = nil
		return nil, err
	}

	slog.Info("exported", "session", s.id, "output", res.Path,
		"documents", res.Documents, "attachments", res.Attachments)
	s.recordExport(ctx, res)
	return res, nil
}

func (s *Session) export(ctx context.Context, outputPath string) (*ExportResult, error) {
	workDir, err := os.MkdirTemp(s.extraction.Root, "export-*")
	if err != nil {
		return nil, types.NewStageError(types.ErrCopyFailed, "creating export directory", err)
	}
	defer archive.Release(workDir)

	rel, err := attach.Relocate(ctx, s.sourceRoot, filepath.Join(workDir, archive.AttachmentsDir),
		daily.Flatten(s.batch.Documents))
	if err != nil {
		return nil, err
	}

	written, err := archive.Write(ctx, s.batch.Documents, s.batch.Rendered, rel.Dir, workDir, outputPath)
	if err != nil {
		return nil, err
	}

	return &ExportResult{
		Path:        written.Path,
		Documents:   written.Documents,
		Attachments: written.Attachments,
		Missing:     rel.Missing,
	}, nil
}

// End removes the scratch directory and everything the session wrote
// into it. It is safe to call more than once.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return
	}
	s.ended = true
	s.batch = nil
	if s.extraction != nil {
		archive.Release(s.extraction.Root)
	}
	slog.Debug("session ended", "session", s.id)
}

// ScratchDir returns the directory holding the extracted archive.
func (s *Session) ScratchDir() string {
	return s.extraction.Root
}

func (s *Session) record(ctx context.Context) {
	if s.recorder == nil {
		return
	}
	sum := s.Summary()
	rec := types.SessionRecord{
		ID:        sum.ID,
		Input:     sum.Input,
		StartedAt: time.Now().UTC(),
		Entries:   sum.Entries,
		Notes:     sum.NoteCount,
		Skipped:   sum.Skipped,
		Earliest:  sum.Earliest,
		Latest:    sum.Latest,
	}
	if err := s.recorder.RecordSession(ctx, rec); err != nil {
		slog.Warn("recording session history", "session", s.id, "error", err)
	}
}

func (s *Session) recordExport(ctx context.Context, res *ExportResult) {
	if s.recorder == nil {
		return
	}
	out := res.Path
	if abs, err := filepath.Abs(out); err == nil {
		out = abs
	}
	rec := types.ExportRecord{
		SessionID:   s.id,
		Output:      out,
		ExportedAt:  time.Now().UTC(),
		Range:       s.batch.Range,
		Days:        s.batch.Days(),
		Notes:       s.batch.Notes,
		Attachments: res.Attachments,
		Missing:     res.Missing,
	}
	if err := s.recorder.RecordExport(ctx, rec); err != nil {
		slog.Warn("recording export history", "session", s.id, "output", out, "error", err)
	}
}
