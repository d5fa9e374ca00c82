package output

import (
	"errors"

	"github.com/pdiddy/flomo2obsidian/pkg/types"
)

// Exit codes:
// 0 = Success
// 1 = User error (bad args, invalid archive, invalid date range)
// 2 = System error (extraction, parse, copy or packaging failure)
// 3 = Conflict (session not converted or already ended)
const (
	ExitSuccess     = 0
	ExitUserError   = 1
	ExitSystemError = 2
	ExitConflict    = 3
)

// ExitError is an error that carries an exit code for the CLI.
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/errors.As support.
func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewUserError creates an error for user-caused issues (exit code 1).
func NewUserError(message string) *ExitError {
	return &ExitError{
		Code:    ExitUserError,
		Message: message,
	}
}

// NewSystemErrorWithCause creates a system error wrapping an underlying cause.
func NewSystemErrorWithCause(message string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitSystemError,
		Message: message,
		Cause:   cause,
	}
}

// userKinds are the error kinds caused by the caller's input.
var userKinds = []error{
	types.ErrInvalidInput,
	types.ErrInvalidRange,
	types.ErrUnknownSession,
}

// conflictKinds are the error kinds caused by session state.
var conflictKinds = []error{
	types.ErrNotConverted,
	types.ErrSessionEnded,
}

// FromError wraps a pipeline error in an ExitError whose message is the
// user-facing description of its kind. Nil stays nil and an ExitError is
// returned unchanged.
func FromError(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	code := ExitSystemError
	for _, kind := range userKinds {
		if errors.Is(err, kind) {
			code = ExitUserError
		}
	}
	for _, kind := range conflictKinds {
		if errors.Is(err, kind) {
			code = ExitConflict
		}
	}
	return &ExitError{Code: code, Message: types.Description(err), Cause: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil, ExitUserError for non-ExitError errors.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	// Cobra flag and argument errors are untyped.
	return ExitUserError
}
