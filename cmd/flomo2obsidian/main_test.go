// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/flomo2obsidian/internal/output"
	"github.com/pdiddy/flomo2obsidian/pkg/types"
)

const fixtureHTML = `<html><body><div class="memos">
<div class="memo"><div class="time">2024-01-05 09:00:00</div><div class="content"><p>Hello</p><p>world</p></div><div class="files"><img src="file/a.jpg"></div></div>
<div class="memo"><div class="time">2024-01-05 18:00:00</div><div class="content"><p>Evening</p></div></div>
<div class="memo"><div class="time">2024-01-06 08:00:00</div><div class="content"><p>Next</p></div></div>
</div></body></html>`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flomo.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, e := range []struct{ name, body string }{
		{"flomo/index.html", fixtureHTML},
		{"flomo/file/a.jpg", "jpeg"},
	} {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = io.WriteString(w, e.body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

// setEnv isolates a command run from the host's config and history.
func setEnv(t *testing.T, historyDB string) {
	t.Helper()
	t.Setenv("FLOMO2OBSIDIAN_SCRATCH_DIR", t.TempDir())
	if historyDB == "" {
		t.Setenv("FLOMO2OBSIDIAN_HISTORY_ENABLED", "false")
	} else {
		t.Setenv("FLOMO2OBSIDIAN_HISTORY_ENABLED", "true")
		t.Setenv("FLOMO2OBSIDIAN_HISTORY_DB_PATH", historyDB)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func zipNames(t *testing.T, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()
	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func TestConvertCommand(t *testing.T) {
	setEnv(t, "")
	out := filepath.Join(t.TempDir(), "notes.zip")

	stdout, err := execute(t, "convert", writeFixture(t),
		"--timezone", "UTC", "--start=", "--end=", "--output", out, "--json")
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, out, result["output"])
	assert.EqualValues(t, 2, result["documents"])
	assert.EqualValues(t, 3, result["notes"])
	assert.EqualValues(t, 1, result["attachments"])

	assert.Equal(t, []string{"2024-01-05.md", "2024-01-06.md", "Attachments/", "Attachments/a.jpg"}, zipNames(t, out))
}

func TestConvertCommand_SingleDay(t *testing.T) {
	setEnv(t, "")
	out := filepath.Join(t.TempDir(), "notes.zip")

	_, err := execute(t, "convert", writeFixture(t),
		"--timezone", "UTC", "--start", "2024-01-06", "--end", "2024-01-06", "--output", out, "--json")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-06.md", "Attachments/"}, zipNames(t, out))
}

func TestConvertCommand_Errors(t *testing.T) {
	setEnv(t, "")

	_, err := execute(t, "convert", writeFixture(t),
		"--timezone", "UTC", "--start", "2024-01-07", "--end", "2024-01-06", "--json")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidRange)
	assert.Equal(t, output.ExitUserError, output.GetExitCode(err))

	bad := filepath.Join(t.TempDir(), "broken.zip")
	require.NoError(t, os.WriteFile(bad, []byte("not a zip"), 0o644))
	stdout, err := execute(t, "convert", bad,
		"--timezone", "UTC", "--start=", "--end=", "--json")
	require.Error(t, err)
	assert.Equal(t, output.ExitSystemError, output.GetExitCode(err))
	assert.Contains(t, stdout, "Failed to extract zip file")
}

func TestRootCommand_BadColorMode(t *testing.T) {
	setEnv(t, "")
	t.Cleanup(func() { _ = rootCmd.PersistentFlags().Set("color", "auto") })

	_, err := execute(t, "inspect", writeFixture(t), "--timezone", "UTC", "--color", "sometimes")
	require.Error(t, err)
	assert.Equal(t, output.ExitUserError, output.GetExitCode(err))
	assert.Contains(t, err.Error(), "unknown color mode")
}

func TestInspectCommand_Show(t *testing.T) {
	setEnv(t, "")

	stdout, err := execute(t, "inspect", writeFixture(t),
		"--timezone", "UTC", "--start=", "--end=", "--show", "2024-01-05", "--format", "json")
	require.NoError(t, err)

	var preview dayPreview
	require.NoError(t, json.Unmarshal([]byte(stdout), &preview))
	assert.Equal(t, "2024-01-05.md", preview.File)
	assert.Equal(t, "# Hello\n\nworld\n\n![](Attachments/a.jpg)\n\n---\n\n# Evening\n\n", preview.Markdown)
	assert.Equal(t, []string{"Hello", "Evening"}, preview.Outline.Headings)
	assert.Equal(t, 1, preview.Outline.Breaks)
}

func TestInspectCommand_List(t *testing.T) {
	setEnv(t, "")

	stdout, err := execute(t, "inspect", writeFixture(t),
		"--timezone", "UTC", "--start=", "--end=", "--show=", "--format", "json")
	require.NoError(t, err)

	var report inspectReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, 3, report.Summary.NoteCount)
	require.Len(t, report.Days, 2)
	assert.Equal(t, "2024-01-05.md", report.Days[0].File)
	assert.Equal(t, 2, report.Days[0].Notes)
	assert.Equal(t, 1, report.Days[0].Images)
}

func TestHistoryCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")
	setEnv(t, db)
	out := filepath.Join(t.TempDir(), "notes.zip")

	_, err := execute(t, "convert", writeFixture(t),
		"--timezone", "UTC", "--start=", "--end=", "--output", out, "--json")
	require.NoError(t, err)

	stdout, err := execute(t, "history", "--timezone", "UTC", "--json")
	require.NoError(t, err)

	var records []types.SessionRecord
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))
	require.Len(t, records, 1)
	assert.Equal(t, 3, records[0].Notes)
	require.Len(t, records[0].Exports, 1)
	assert.Equal(t, out, records[0].Exports[0].Output)
	assert.Equal(t, 2, records[0].Exports[0].Days)
}

func TestLoadConfig_Env(t *testing.T) {
	setDefaults()
	configureEnv()

	t.Setenv("FLOMO2OBSIDIAN_RENDER_LINKS", "basename")
	t.Setenv("FLOMO2OBSIDIAN_EXTRACTION_TIME_LAYOUT", "2006/01/02 15:04")
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, types.LinksBasename, cfg.Render.Links)
	assert.Equal(t, "2006/01/02 15:04", cfg.Extraction.TimeLayout)
	assert.Equal(t, "div.memo", cfg.Extraction.NoteSelector)

	t.Setenv("FLOMO2OBSIDIAN_RENDER_LINKS", "inline")
	_, err = loadConfig()
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	version = "1.2.3"
	stdout, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "flomo2obsidian 1.2.3\n", stdout)
}
