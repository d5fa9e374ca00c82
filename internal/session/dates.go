// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/flomo2obsidian/internal/daily"
	"github.com/pdiddy/flomo2obsidian/pkg/types"
)

// ParseRange builds the range covering the whole calendar days from start
// through end, both YYYY-MM-DD in the session's reference calendar. An
// empty bound defaults to the earliest or latest note day, clamped to the
// other bound; with both empty it returns nil, which Convert treats as the
// full span.
func (s *Session) ParseRange(start, end string) (*types.DateRange, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" && end == "" {
		return nil, nil
	}

	s.mu.Lock()
	span, ok := daily.Span(s.parsed.Notes)
	s.mu.Unlock()

	startDay, err := parseDay(start, span.Start, ok, s.loc)
	if err != nil {
		return nil, err
	}
	endDay, err := parseDay(end, span.End, ok, s.loc)
	if err != nil {
		return nil, err
	}

	// A defaulted bound never crosses an explicit one, so a range lying
	// wholly outside the notes converts nothing instead of failing.
	switch {
	case start == "" && startDay.After(endDay):
		startDay = endDay
	case end == "" && endDay.Before(startDay):
		endDay = startDay
	}

	rng := types.DayRange(startDay, endDay, s.loc)
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	return &rng, nil
}

func parseDay(value string, fallback time.Time, haveFallback bool, loc *time.Location) (time.Time, error) {
	if value == "" {
		if !haveFallback {
			// No notes: any day works, the filter will select nothing.
			return time.Now().In(loc), nil
		}
		return fallback, nil
	}
	t, err := time.ParseInLocation(types.DayLayout, value, loc)
	if err != nil {
		return time.Time{}, types.NewStageError(types.ErrInvalidRange,
			fmt.Sprintf("%q is not a YYYY-MM-DD date", value), nil)
	}
	return t, nil
}
