// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// Error kinds returned by the pipeline stages. Match them with errors.Is.
var (
	ErrInvalidInput     = errors.New("invalid input archive")
	ErrExtractionFailed = errors.New("extraction failed")
	ErrDocumentNotFound = errors.New("document not found")
	ErrParseFailed      = errors.New("parse failed")
	ErrCopyFailed       = errors.New("copy failed")
	ErrPackagingFailed  = errors.New("packaging failed")

	ErrInvalidRange   = errors.New("invalid date range")
	ErrNotConverted   = errors.New("session has not been converted")
	ErrSessionEnded   = errors.New("session has ended")
	ErrUnknownSession = errors.New("unknown session")
)

// descriptions holds the user-facing text for each error kind.
var descriptions = map[error]string{
	ErrInvalidInput:     "Invalid flomo export file",
	ErrExtractionFailed: "Failed to extract zip file",
	ErrDocumentNotFound: "HTML file not found in export",
	ErrParseFailed:      "Failed to parse HTML",
	ErrCopyFailed:       "Failed to copy attachments",
	ErrPackagingFailed:  "Failed to create output archive",
	ErrInvalidRange:     "Start date must not be after end date",
	ErrNotConverted:     "Convert the notes before exporting",
	ErrSessionEnded:     "Session has already ended",
	ErrUnknownSession:   "No such session",
}

// StageError carries an error kind, a human-readable detail and the
// underlying cause.
type StageError struct {
	Kind   error
	Detail string
	Err    error
}

// NewStageError builds a StageError of the given kind.
func NewStageError(kind error, detail string, cause error) *StageError {
	return &StageError{Kind: kind, Detail: detail, Err: cause}
}

func (e *StageError) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes the cause.
func (e *StageError) Unwrap() error {
	return e.Err
}

// Is matches the error kind.
func (e *StageError) Is(target error) bool {
	return target == e.Kind
}

// Description returns the user-facing text for err's kind, with the
// detail appended when one is available. Unknown errors return err.Error().
func Description(err error) string {
	if err == nil {
		return ""
	}
	var se *StageError
	if errors.As(err, &se) {
		if d, ok := descriptions[se.Kind]; ok {
			if se.Detail != "" {
				return d + ": " + se.Detail
			}
			return d
		}
	}
	for kind, d := range descriptions {
		if errors.Is(err, kind) {
			return d
		}
	}
	return err.Error()
}
