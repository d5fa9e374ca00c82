// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package daily filters notes by date range and groups them into one
// document per calendar day.
package daily

import (
	"sort"
	"time"

	"github.com/pdiddy/flomo2obsidian/pkg/types"
)

// Filter returns the notes whose timestamp lies within rng, both ends
// included. The input slice is not modified.
func Filter(notes []types.Note, rng types.DateRange) []types.Note {
	out := make([]types.Note, 0, len(notes))
	for _, n := range notes {
		if rng.Contains(n.Timestamp) {
			out = append(out, n)
		}
	}
	return out
}

// Group partitions notes into daily documents by the calendar day of each
// timestamp in loc. Documents are sorted by day and the notes of each day
// by timestamp. No document is empty.
func Group(notes []types.Note, loc *time.Location) []types.DailyDocument {
	if loc == nil {
		loc = time.Local
	}
	byDay := make(map[string]*types.DailyDocument)
	for _, n := range notes {
		day := midnight(n.Timestamp, loc)
		key := day.Format(types.DayLayout)
		doc, ok := byDay[key]
		if !ok {
			doc = &types.DailyDocument{Day: day}
			byDay[key] = doc
		}
		doc.Notes = append(doc.Notes, n)
	}

	docs := make([]types.DailyDocument, 0, len(byDay))
	for _, doc := range byDay {
		sort.SliceStable(doc.Notes, func(i, j int) bool {
			return doc.Notes[i].Timestamp.Before(doc.Notes[j].Timestamp)
		})
		docs = append(docs, *doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Day.Before(docs[j].Day)
	})
	return docs
}

// Span returns the range from the earliest to the latest timestamp in
// notes. ok is false when notes is empty.
func Span(notes []types.Note) (rng types.DateRange, ok bool) {
	if len(notes) == 0 {
		return types.DateRange{}, false
	}
	rng.Start, rng.End = notes[0].Timestamp, notes[0].Timestamp
	for _, n := range notes[1:] {
		if n.Timestamp.Before(rng.Start) {
			rng.Start = n.Timestamp
		}
		if n.Timestamp.After(rng.End) {
			rng.End = n.Timestamp
		}
	}
	return rng, true
}

func midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Flatten returns the notes of docs in document order.
func Flatten(docs []types.DailyDocument) []types.Note {
	var out []types.Note
	for _, doc := range docs {
		out = append(out, doc.Notes...)
	}
	return out
}
