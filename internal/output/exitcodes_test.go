package output

import (
	"errors"
	"fmt"
	"testing"

	"github.com/pdiddy/flomo2obsidian/pkg/types"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    int
		wantMessage string
	}{
		{
			name:        "invalid input",
			err:         types.NewStageError(types.ErrInvalidInput, "notes.txt is not a .zip file", nil),
			wantCode:    ExitUserError,
			wantMessage: "Invalid flomo export file: notes.txt is not a .zip file",
		},
		{
			name:        "invalid range",
			err:         types.NewStageError(types.ErrInvalidRange, "", nil),
			wantCode:    ExitUserError,
			wantMessage: "Start date must not be after end date",
		},
		{
			name:        "document not found",
			err:         types.NewStageError(types.ErrDocumentNotFound, "", nil),
			wantCode:    ExitSystemError,
			wantMessage: "HTML file not found in export",
		},
		{
			name:        "wrapped packaging failure",
			err:         fmt.Errorf("exporting: %w", types.NewStageError(types.ErrPackagingFailed, "out.zip", errors.New("disk full"))),
			wantCode:    ExitSystemError,
			wantMessage: "Failed to create output archive: out.zip",
		},
		{
			name:        "not converted",
			err:         types.NewStageError(types.ErrNotConverted, "", nil),
			wantCode:    ExitConflict,
			wantMessage: "Convert the notes before exporting",
		},
		{
			name:        "plain error",
			err:         errors.New("boom"),
			wantCode:    ExitSystemError,
			wantMessage: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromError(tt.err)
			var exitErr *ExitError
			if !errors.As(err, &exitErr) {
				t.Fatalf("FromError() = %T, want *ExitError", err)
			}
			if exitErr.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", exitErr.Code, tt.wantCode)
			}
			if exitErr.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", exitErr.Message, tt.wantMessage)
			}
			if !errors.Is(err, tt.err) {
				t.Error("FromError() should keep the cause reachable")
			}
			if GetExitCode(err) != tt.wantCode {
				t.Errorf("GetExitCode() = %d, want %d", GetExitCode(err), tt.wantCode)
			}
		})
	}
}

func TestFromError_NilAndExitError(t *testing.T) {
	if FromError(nil) != nil {
		t.Error("FromError(nil) should be nil")
	}
	userErr := NewUserError("bad flag")
	if FromError(userErr) != error(userErr) {
		t.Error("FromError should return an ExitError unchanged")
	}
}

func TestGetExitCode(t *testing.T) {
	if got := GetExitCode(nil); got != ExitSuccess {
		t.Errorf("GetExitCode(nil) = %d, want %d", got, ExitSuccess)
	}
	if got := GetExitCode(errors.New("unknown flag")); got != ExitUserError {
		t.Errorf("GetExitCode(untyped) = %d, want %d", got, ExitUserError)
	}
	wrapped := fmt.Errorf("outer: %w", NewSystemErrorWithCause("io", errors.New("eof")))
	if got := GetExitCode(wrapped); got != ExitSystemError {
		t.Errorf("GetExitCode(wrapped) = %d, want %d", got, ExitSystemError)
	}
}
