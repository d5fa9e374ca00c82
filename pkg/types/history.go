// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SessionRecord is the history entry written when a session begins.
type SessionRecord struct {
	// ID is the session identifier.
	ID string `json:"id" yaml:"id"`

	// Input is the absolute path of the export archive.
	Input string `json:"input" yaml:"input"`

	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// Entries is the number of note entries found in the document.
	Entries int `json:"entries" yaml:"entries"`

	// Notes is the number of entries that parsed into notes.
	Notes int `json:"notes" yaml:"notes"`

	// Skipped is Entries minus Notes.
	Skipped int `json:"skipped" yaml:"skipped"`

	// Earliest and Latest bound the note timestamps. Both are zero when
	// the export holds no notes.
	Earliest time.Time `json:"earliest" yaml:"earliest"`
	Latest   time.Time `json:"latest" yaml:"latest"`

	// Exports lists the archives written by the session, oldest first.
	Exports []ExportRecord `json:"exports,omitempty" yaml:"exports,omitempty"`
}

// ExportRecord is the history entry written for each output archive.
type ExportRecord struct {
	SessionID  string    `json:"session_id" yaml:"session_id"`
	Output     string    `json:"output" yaml:"output"`
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`

	// Range is the date range the exported documents were filtered to.
	Range DateRange `json:"range" yaml:"range"`

	Days        int `json:"days" yaml:"days"`
	Notes       int `json:"notes" yaml:"notes"`
	Attachments int `json:"attachments" yaml:"attachments"`
	Missing     int `json:"missing" yaml:"missing"`
}
