// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures of the flomo2obsidian
// pipeline: notes, daily documents, date ranges, configuration, history
// records and error kinds.
package types

import (
	"strings"
	"time"
)

// DayLayout is the calendar-day format used for daily document filenames
// and for date flags.
const DayLayout = "2006-01-02"

// Note holds one timestamped entry extracted from the export document.
// Notes are created once by the extractor and never modified.
type Note struct {
	// Timestamp is the entry time, parsed in the reference location.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Content is the entry text, one paragraph per line. The first line
	// is treated as the title.
	Content string `json:"content" yaml:"content"`

	// Images lists image references exactly as they appear in the
	// document, in document order. Duplicates are kept.
	Images []string `json:"images,omitempty" yaml:"images,omitempty"`
}

// Title returns the first line of the note content.
func (n Note) Title() string {
	title, _, _ := strings.Cut(n.Content, "\n")
	return title
}

// Body returns everything after the first line of the note content.
func (n Note) Body() string {
	_, body, _ := strings.Cut(n.Content, "\n")
	return body
}

// DailyDocument groups the notes of one calendar day. Notes are sorted by
// timestamp and all share Day's calendar date.
type DailyDocument struct {
	// Day is midnight of the calendar day in the reference location.
	Day time.Time

	Notes []Note
}

// Key returns the day formatted as YYYY-MM-DD. Rendered text is looked up
// by this key.
func (d DailyDocument) Key() string {
	return d.Day.Format(DayLayout)
}

// Filename returns the markdown filename for the day.
func (d DailyDocument) Filename() string {
	return d.Key() + ".md"
}

// ImageCount returns the number of image references across all notes of
// the day, duplicates included.
func (d DailyDocument) ImageCount() int {
	n := 0
	for _, note := range d.Notes {
		n += len(note.Images)
	}
	return n
}

// AttachmentMapping maps an image reference as written in the source
// document to its flat filename inside the attachments folder.
type AttachmentMapping map[string]string

// DateRange is an inclusive timestamp interval.
type DateRange struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// DayRange returns the range covering every instant of the calendar days
// from startDay through endDay in loc.
func DayRange(startDay, endDay time.Time, loc *time.Location) DateRange {
	s := startDay.In(loc)
	e := endDay.In(loc)
	return DateRange{
		Start: time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc),
		End:   time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), loc),
	}
}

// Contains reports whether t falls within the range, both ends included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Validate returns ErrInvalidRange when Start is after End.
func (r DateRange) Validate() error {
	if r.Start.After(r.End) {
		return NewStageError(ErrInvalidRange,
			r.Start.Format(DayLayout)+" is after "+r.End.Format(DayLayout), nil)
	}
	return nil
}
