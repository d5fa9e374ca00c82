// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/flomo2obsidian/pkg/types"
)

// defaultLimit caps List when ListOptions.Limit is zero.
const defaultLimit = 20

// ListOptions filters history queries.
type ListOptions struct {
	// Limit caps the number of sessions returned. Zero uses the default;
	// a negative value returns every session.
	Limit int

	// Since excludes sessions started before it when non-zero.
	Since time.Time

	// Input filters by export archive path.
	Input string
}

// List returns recorded sessions, newest first, each with its exports
// oldest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]types.SessionRecord, error) {
	var (
		qb    strings.Builder
		args  []any
		where []string
	)
	qb.WriteString(`SELECT id, input, started_at, entries, notes, skipped, earliest, latest FROM sessions`)
	if !opts.Since.IsZero() {
		where = append(where, "started_at >= ?")
		args = append(args, formatTime(opts.Since.UTC()))
	}
	if opts.Input != "" {
		where = append(where, "input = ?")
		args = append(args, opts.Input)
	}
	if len(where) > 0 {
		qb.WriteString(" WHERE ")
		qb.WriteString(strings.Join(where, " AND "))
	}
	qb.WriteString(" ORDER BY started_at DESC, id")

	limit := opts.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit > 0 {
		qb.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var (
		records []types.SessionRecord
		index   = make(map[string]int)
	)
	for rows.Next() {
		var (
			rec                       types.SessionRecord
			started, earliest, latest string
		)
		if err := rows.Scan(&rec.ID, &rec.Input, &started, &rec.Entries, &rec.Notes, &rec.Skipped, &earliest, &latest); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		rec.StartedAt = parseTime(started)
		rec.Earliest = parseTime(earliest)
		rec.Latest = parseTime(latest)
		index[rec.ID] = len(records)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}

	if len(records) == 0 {
		return records, nil
	}
	if err := s.attachExports(ctx, records, index); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) attachExports(ctx context.Context, records []types.SessionRecord, index map[string]int) error {
	placeholders := make([]string, len(records))
	args := make([]any, len(records))
	for i, r := range records {
		placeholders[i] = "?"
		args[i] = r.ID
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, output, exported_at, range_start, range_end, days, notes, attachments, missing
		 FROM exports WHERE session_id IN (`+strings.Join(placeholders, ",")+`)
		 ORDER BY exported_at, id`, args...)
	if err != nil {
		return fmt.Errorf("querying exports: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec                  types.ExportRecord
			exported, start, end string
		)
		if err := rows.Scan(&rec.SessionID, &rec.Output, &exported, &start, &end,
			&rec.Days, &rec.Notes, &rec.Attachments, &rec.Missing); err != nil {
			return fmt.Errorf("scanning export: %w", err)
		}
		rec.ExportedAt = parseTime(exported)
		rec.Range = types.DateRange{Start: parseTime(start), End: parseTime(end)}
		i := index[rec.SessionID]
		records[i].Exports = append(records[i].Exports, rec)
	}
	return rows.Err()
}

// Prune deletes sessions (and their exports) started before cutoff and
// returns the number of sessions removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE started_at < ?`, formatTime(cutoff.UTC()))
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned sessions: %w", err)
	}
	return int(n), nil
}
