// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/flomo2obsidian/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sessionAt(id string, started time.Time) types.SessionRecord {
	return types.SessionRecord{
		ID:        id,
		Input:     "/exports/" + id + ".zip",
		StartedAt: started,
		Entries:   4,
		Notes:     3,
		Skipped:   1,
		Earliest:  time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC),
		Latest:    time.Date(2024, 1, 6, 8, 0, 0, 0, time.UTC),
	}
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.RecordSession(ctx, sessionAt("s1", base)))
	require.NoError(t, s.RecordSession(ctx, sessionAt("s2", base.Add(time.Hour))))
	require.NoError(t, s.RecordSession(ctx, sessionAt("s3", base.Add(2*time.Hour))))

	for i, out := range []string{"first.zip", "second.zip"} {
		require.NoError(t, s.RecordExport(ctx, types.ExportRecord{
			SessionID:   "s1",
			Output:      out,
			ExportedAt:  base.Add(time.Duration(i+1) * time.Minute),
			Range:       types.DateRange{Start: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 1, 6, 23, 59, 59, 0, time.UTC)},
			Days:        2,
			Notes:       3,
			Attachments: 1,
		}))
	}
}

// --- tests ---

func TestOpen_CreatesSchemaIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	assert.Equal(t, path, s2.Path())
}

func TestList_NewestFirstWithExports(t *testing.T) {
	s := testSetup(t)
	seed(t, s)

	records, err := s.List(context.Background(), ListOptions{})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"s3", "s2", "s1"}, []string{records[0].ID, records[1].ID, records[2].ID})

	s1 := records[2]
	assert.Equal(t, 3, s1.Notes)
	assert.Equal(t, time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC), s1.Earliest)
	require.Len(t, s1.Exports, 2)
	assert.Equal(t, "first.zip", s1.Exports[0].Output)
	assert.Equal(t, "second.zip", s1.Exports[1].Output)
	assert.Equal(t, 2, s1.Exports[0].Days)
	assert.Equal(t, time.Date(2024, 1, 6, 23, 59, 59, 0, time.UTC), s1.Exports[0].Range.End)
	assert.Empty(t, records[0].Exports)
}

func TestList_Filters(t *testing.T) {
	s := testSetup(t)
	seed(t, s)
	ctx := context.Background()

	tests := []struct {
		name string
		opts ListOptions
		want []string
	}{
		{name: "limit", opts: ListOptions{Limit: 1}, want: []string{"s3"}},
		{name: "since", opts: ListOptions{Since: time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)}, want: []string{"s3", "s2"}},
		{name: "input", opts: ListOptions{Input: "/exports/s2.zip"}, want: []string{"s2"}},
		{name: "no limit", opts: ListOptions{Limit: -1}, want: []string{"s3", "s2", "s1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := s.List(ctx, tt.opts)
			require.NoError(t, err)
			var got []string
			for _, r := range records {
				got = append(got, r.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecordSession_Upsert(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()
	rec := sessionAt("s1", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, s.RecordSession(ctx, rec))

	rec.Notes = 10
	require.NoError(t, s.RecordSession(ctx, rec))

	records, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 10, records[0].Notes)
}

func TestRecordExport_UnknownSession(t *testing.T) {
	s := testSetup(t)
	err := s.RecordExport(context.Background(), types.ExportRecord{SessionID: "nope", Output: "x.zip", ExportedAt: time.Now()})
	assert.Error(t, err)
}

func TestPrune(t *testing.T) {
	s := testSetup(t)
	seed(t, s)
	ctx := context.Background()

	n, err := s.Prune(ctx, time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	records, err := s.List(ctx, ListOptions{Limit: -1})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestExport(t *testing.T) {
	s := testSetup(t)
	seed(t, s)
	ctx := context.Background()

	var yamlBuf bytes.Buffer
	require.NoError(t, s.Export(ctx, &yamlBuf, FormatYAML, ListOptions{}))
	var fromYAML []types.SessionRecord
	require.NoError(t, yaml.Unmarshal(yamlBuf.Bytes(), &fromYAML))
	require.Len(t, fromYAML, 3)
	assert.Equal(t, "s1", fromYAML[2].ID)
	assert.Len(t, fromYAML[2].Exports, 2)

	var jsonBuf bytes.Buffer
	require.NoError(t, s.Export(ctx, &jsonBuf, FormatJSON, ListOptions{Limit: 2}))
	var fromJSON []types.SessionRecord
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &fromJSON))
	assert.Len(t, fromJSON, 2)

	assert.Error(t, s.Export(ctx, &jsonBuf, Format("xml"), ListOptions{}))
}

func TestExport_EmptyIsList(t *testing.T) {
	s := testSetup(t)
	var buf bytes.Buffer
	require.NoError(t, s.Export(context.Background(), &buf, FormatJSON, ListOptions{}))
	assert.Equal(t, "[]\n", buf.String())
}
