package output

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/pdiddy/flomo2obsidian/pkg/types"
)

func TestPrinter_JSON_Success(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, true, false)

	if err := printer.Success(map[string]any{"path": "obsidian-notes.zip", "documents": 2}); err != nil {
		t.Fatalf("Success() error = %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse JSON: %v\nOutput: %s", err, buf.String())
	}
	if result["path"] != "obsidian-notes.zip" {
		t.Errorf("path = %v, want %q", result["path"], "obsidian-notes.zip")
	}
	if result["documents"] != float64(2) {
		t.Errorf("documents = %v, want 2", result["documents"])
	}
}

func TestPrinter_JSON_Error(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, true, false)

	printer.Error(types.NewStageError(types.ErrInvalidInput, "", nil))

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse JSON: %v\nOutput: %s", err, buf.String())
	}
	if result["error"] != "Invalid flomo export file" {
		t.Errorf("error = %v", result["error"])
	}
	if result["code"] != float64(ExitUserError) {
		t.Errorf("code = %v, want %d", result["code"], ExitUserError)
	}
}

func TestPrinter_Human(t *testing.T) {
	var out, errOut bytes.Buffer
	printer := NewPrinter(&out, false, false).WithStderr(&errOut)

	if err := printer.Success(map[string]any{"message": "Exported", "path": "a.zip", "documents": 3}); err != nil {
		t.Fatalf("Success() error = %v", err)
	}
	want := "Exported\ndocuments: 3\npath: a.zip\n"
	if out.String() != want {
		t.Errorf("Success() output = %q, want %q", out.String(), want)
	}

	printer.Warn("%d attachments missing", 2)
	printer.Error(types.NewStageError(types.ErrParseFailed, "", nil))
	if !strings.Contains(errOut.String(), "Warning: 2 attachments missing") {
		t.Errorf("stderr = %q, missing warning", errOut.String())
	}
	if !strings.Contains(errOut.String(), "Error: Failed to parse HTML") {
		t.Errorf("stderr = %q, missing error", errOut.String())
	}
}

func TestPrinter_Table(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false)

	printer.Table([]string{"FILE", "NOTES"}, [][]string{
		{"2024-01-05.md", "2"},
		{"2024-01-06.md", "1"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), buf.String())
	}
	if lines[0] != "FILE           NOTES" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "2024-01-05.md  2    " {
		t.Errorf("row = %q", lines[1])
	}
}

func TestPrinter_WriteYAML(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, false)

	if err := printer.WriteYAML(map[string]int{"days": 2}); err != nil {
		t.Fatalf("WriteYAML() error = %v", err)
	}
	if buf.String() != "days: 2\n" {
		t.Errorf("WriteYAML() = %q", buf.String())
	}
}

func TestPrinter_BoxPlain(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false, false).Box("2024-01-05.md", "# Hello")
	if buf.String() != "2024-01-05.md\n\n# Hello\n" {
		t.Errorf("Box() = %q", buf.String())
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, "Converting", false)
	p.Update(1, 2)
	p.Done()
	if buf.Len() != 0 {
		t.Errorf("non-TTY progress should draw nothing, got %q", buf.String())
	}

	buf.Reset()
	p = NewProgress(&buf, "Converting", true)
	p.Update(1, 2)
	p.Update(2, 2)
	p.Done()
	out := buf.String()
	if !strings.HasPrefix(out, "\rConverting ") || !strings.Contains(out, "2/2") || !strings.HasSuffix(out, "\n") {
		t.Errorf("TTY progress output = %q", out)
	}
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ColorMode
		wantErr bool
	}{
		{"", ColorAuto, false},
		{"auto", ColorAuto, false},
		{" Always ", ColorAlways, false},
		{"never", ColorNever, false},
		{"sometimes", "", true},
	}
	for _, tt := range tests {
		got, err := ParseColorMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColorMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColorMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestColorMode_Styled(t *testing.T) {
	var buf bytes.Buffer
	if !ColorAlways.Styled(&buf) {
		t.Error("always should style a buffer")
	}
	if ColorNever.Styled(&buf) {
		t.Error("never should not style")
	}
	if ColorAuto.Styled(&buf) {
		t.Error("auto should not style a buffer")
	}
	if IsTerminal(&buf) {
		t.Error("IsTerminal(buffer) should be false")
	}

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsTerminal(f) {
		t.Error("IsTerminal(regular file) should be false")
	}

	t.Setenv("NO_COLOR", "1")
	if !ColorAlways.Styled(f) {
		t.Error("always should ignore NO_COLOR")
	}
}
