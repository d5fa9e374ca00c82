// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert filters a note set to a date range, groups it into daily
// documents and renders each document to markdown.
package convert

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/flomo2obsidian/internal/attach"
	"github.com/pdiddy/flomo2obsidian/internal/daily"
	"github.com/pdiddy/flomo2obsidian/internal/render"
	"github.com/pdiddy/flomo2obsidian/pkg/types"
)

// ProgressFunc is called after each rendered day with the number of days
// rendered so far and the total.
type ProgressFunc func(current, total int)

// Options controls a conversion run.
type Options struct {
	// Range limits the notes converted. Nil converts every day from the
	// earliest to the latest note.
	Range *types.DateRange

	// Location is the reference calendar for grouping. Nil uses time.Local.
	Location *time.Location

	// Links selects how image embeds are named.
	Links types.LinkMode

	// SourceRoot is the directory image references are resolved against
	// when Links is LinksMapped.
	SourceRoot string

	Progress ProgressFunc

	// Status receives one line per rendered day and a summary line.
	// Nil discards them.
	Status io.Writer
}

// Batch holds the outcome of a conversion run.
type Batch struct {
	Range     types.DateRange
	Documents []types.DailyDocument

	// Rendered maps a document key (YYYY-MM-DD) to its markdown.
	Rendered map[string]string

	// Mapping is the attachment allocation the rendered links refer to.
	// It is nil when links are basenames.
	Mapping types.AttachmentMapping

	Notes   int
	Images  int
	Missing int
}

// Days returns the number of daily documents produced.
func (b Batch) Days() int {
	return len(b.Documents)
}

// Empty reports whether no note fell inside the range.
func (b Batch) Empty() bool {
	return len(b.Documents) == 0
}

// Notes converts notes within opts.Range into rendered daily documents.
// It returns ErrInvalidRange when the range start is after its end.
func Notes(ctx context.Context, notes []types.Note, opts Options) (*Batch, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	w := opts.Status
	if w == nil {
		w = io.Discard
	}

	rng, err := resolveRange(notes, opts.Range, loc)
	if err != nil {
		return nil, err
	}

	selected := daily.Filter(notes, rng)
	docs := daily.Group(selected, loc)

	batch := &Batch{
		Range:     rng,
		Documents: docs,
		Rendered:  make(map[string]string, len(docs)),
		Notes:     len(selected),
	}

	var links render.LinkResolver = render.BasenameLinks
	if opts.Links != types.LinksBasename {
		plan := attach.NewPlan(opts.SourceRoot, daily.Flatten(docs))
		batch.Mapping = plan.Mapping
		batch.Missing = plan.Missing
		links = plan.Links()
	}

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", doc.Key(), err)
		}
		batch.Rendered[doc.Key()] = render.Render(doc, links)
		batch.Images += doc.ImageCount()
		fmt.Fprintf(w, "rendered: %s (%d notes)\n", doc.Filename(), len(doc.Notes))
		if opts.Progress != nil {
			opts.Progress(i+1, len(docs))
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d days, %d notes, %d images (%d missing)\n",
		batch.Days(), batch.Notes, batch.Images, batch.Missing)
	return batch, nil
}

// resolveRange returns the explicit range after validation, or the whole
// days spanned by notes when rng is nil.
func resolveRange(notes []types.Note, rng *types.DateRange, loc *time.Location) (types.DateRange, error) {
	if rng != nil {
		if err := rng.Validate(); err != nil {
			return types.DateRange{}, err
		}
		return *rng, nil
	}
	span, ok := daily.Span(notes)
	if !ok {
		return types.DateRange{}, nil
	}
	return types.DayRange(span.Start, span.End, loc), nil
}
