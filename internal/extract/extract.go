// Package extract parses the flomo HTML export document into dated notes.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/flomo2obsidian/pkg/types"
)

// Result holds the notes parsed from one export document together with
// per-entry counters.
type Result struct {
	// Notes is sorted ascending by timestamp. Ties keep document order.
	Notes []types.Note

	// Entries is the number of note entries found in the document.
	Entries int

	// SkippedNoTime counts entries with a missing or unparsable timestamp.
	SkippedNoTime int

	// SkippedNoContent counts entries without a content container.
	SkippedNoContent int
}

// Skipped returns the number of entries that did not produce a note.
func (r Result) Skipped() int {
	return r.SkippedNoTime + r.SkippedNoContent
}

// Extract reads an export document from r and returns its notes.
// Timestamps are parsed in loc. Malformed entries are counted and dropped;
// only an unreadable document returns an error (ErrParseFailed).
func Extract(ctx context.Context, r io.Reader, cfg types.ExtractionConfig, loc *time.Location) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, types.NewStageError(types.ErrParseFailed, "reading document", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, types.NewStageError(types.ErrParseFailed, "document is empty", nil)
	}
	if !utf8.Valid(data) {
		return nil, types.NewStageError(types.ErrParseFailed, "document is not valid UTF-8", nil)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, types.NewStageError(types.ErrParseFailed, "parsing document", err)
	}
	if loc == nil {
		loc = time.Local
	}

	result := &Result{}
	var cancelled error
	doc.Find(cfg.NoteSelector).EachWithBreak(func(i int, entry *goquery.Selection) bool {
		if err := ctx.Err(); err != nil {
			cancelled = err
			return false
		}
		result.Entries++

		note, reason := parseEntry(entry, cfg, loc)
		switch reason {
		case skipNoTime:
			result.SkippedNoTime++
			slog.Debug("skipping entry without valid timestamp", "index", i)
		case skipNoContent:
			result.SkippedNoContent++
			slog.Debug("skipping entry without content", "index", i)
		default:
			result.Notes = append(result.Notes, note)
		}
		return true
	})
	if cancelled != nil {
		return nil, fmt.Errorf("extracting notes: %w", cancelled)
	}

	sort.SliceStable(result.Notes, func(i, j int) bool {
		return result.Notes[i].Timestamp.Before(result.Notes[j].Timestamp)
	})

	slog.Debug("extracted notes", "entries", result.Entries, "notes", len(result.Notes), "skipped", result.Skipped())
	return result, nil
}

type skipReason int

const (
	keep skipReason = iota
	skipNoTime
	skipNoContent
)

func parseEntry(entry *goquery.Selection, cfg types.ExtractionConfig, loc *time.Location) (types.Note, skipReason) {
	timeText := strings.TrimSpace(entry.Find(cfg.TimeSelector).First().Text())
	if timeText == "" {
		return types.Note{}, skipNoTime
	}
	ts, err := time.ParseInLocation(cfg.TimeLayout, timeText, loc)
	if err != nil {
		return types.Note{}, skipNoTime
	}

	content := entry.Find(cfg.ContentSelector).First()
	if content.Length() == 0 {
		return types.Note{}, skipNoContent
	}

	return types.Note{
		Timestamp: ts,
		Content:   paragraphs(content, cfg.ParagraphSelector),
		Images:    images(entry, cfg.ImageSelector, cfg.ImageAttr),
	}, keep
}

// paragraphs joins the non-empty paragraph texts of content, one per line.
func paragraphs(content *goquery.Selection, selector string) string {
	var lines []string
	content.Find(selector).Each(func(_ int, p *goquery.Selection) {
		text := strings.Join(strings.Fields(p.Text()), " ")
		if text != "" {
			lines = append(lines, text)
		}
	})
	return strings.Join(lines, "\n")
}

func images(entry *goquery.Selection, selector, attr string) []string {
	if selector == "" {
		return nil
	}
	if attr == "" {
		attr = "src"
	}
	var refs []string
	entry.Find(selector).Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr(attr); ok && strings.TrimSpace(src) != "" {
			refs = append(refs, strings.TrimSpace(src))
		}
	})
	return refs
}
