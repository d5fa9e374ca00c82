package types

import (
	"fmt"
	"time"
)

// ExtractionConfig selects the elements of the export document that hold
// note data. Selectors are CSS selectors; the defaults match the flomo
// HTML export.
type ExtractionConfig struct {
	// NoteSelector matches one note entry container.
	NoteSelector string `mapstructure:"note_selector" json:"note_selector" yaml:"note_selector"`

	// TimeSelector matches the timestamp element inside an entry.
	TimeSelector string `mapstructure:"time_selector" json:"time_selector" yaml:"time_selector"`

	// ContentSelector matches the body container inside an entry.
	ContentSelector string `mapstructure:"content_selector" json:"content_selector" yaml:"content_selector"`

	// ParagraphSelector matches the paragraphs inside the body container.
	ParagraphSelector string `mapstructure:"paragraph_selector" json:"paragraph_selector" yaml:"paragraph_selector"`

	// ImageSelector matches image elements inside an entry.
	ImageSelector string `mapstructure:"image_selector" json:"image_selector" yaml:"image_selector"`

	// ImageAttr is the attribute holding the image reference (default "src").
	ImageAttr string `mapstructure:"image_attr" json:"image_attr" yaml:"image_attr"`

	// TimeLayout is the Go time layout of the timestamp text.
	TimeLayout string `mapstructure:"time_layout" json:"time_layout" yaml:"time_layout"`
}

// LinkMode selects how rendered image embeds name their attachment.
type LinkMode string

const (
	// LinksMapped uses the relocated, collision-resolved filename.
	LinksMapped LinkMode = "mapped"
	// LinksBasename uses the basename of the original reference.
	LinksBasename LinkMode = "basename"
)

// RenderConfig holds settings for markdown rendering.
type RenderConfig struct {
	Links LinkMode `mapstructure:"links" json:"links" yaml:"links"`
}

// ExportConfig holds settings for the export stage.
type ExportConfig struct {
	// Output is the default output archive path.
	Output string `mapstructure:"output" json:"output" yaml:"output"`
}

// HistoryConfig holds settings for the conversion history database.
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`

	// DBPath is the SQLite database file. Empty uses the config directory.
	DBPath string `mapstructure:"db_path" json:"db_path" yaml:"db_path"`
}

// Config groups all settings for a conversion session.
type Config struct {
	// ScratchDir is the parent of per-session scratch directories.
	// Empty uses os.TempDir().
	ScratchDir string `mapstructure:"scratch_dir" json:"scratch_dir" yaml:"scratch_dir"`

	// Timezone is the IANA name of the reference calendar used for parsing
	// timestamps and grouping days. "Local" or empty uses the host zone.
	Timezone string `mapstructure:"timezone" json:"timezone" yaml:"timezone"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" json:"log_level" yaml:"log_level"`

	Extraction ExtractionConfig `mapstructure:"extraction" json:"extraction" yaml:"extraction"`
	Render     RenderConfig     `mapstructure:"render" json:"render" yaml:"render"`
	Export     ExportConfig     `mapstructure:"export" json:"export" yaml:"export"`
	History    HistoryConfig    `mapstructure:"history" json:"history" yaml:"history"`
}

// DefaultConfig returns settings for a standard flomo export.
func DefaultConfig() Config {
	return Config{
		Timezone: "Local",
		LogLevel: "warn",
		Extraction: ExtractionConfig{
			NoteSelector:      "div.memo",
			TimeSelector:      "div.time",
			ContentSelector:   "div.content",
			ParagraphSelector: "p",
			ImageSelector:     "div.files img",
			ImageAttr:         "src",
			TimeLayout:        "2006-01-02 15:04:05",
		},
		Render: RenderConfig{Links: LinksMapped},
		Export: ExportConfig{Output: "obsidian-notes.zip"},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	switch c.Render.Links {
	case LinksMapped, LinksBasename:
	default:
		return fmt.Errorf("render.links must be %q or %q, got %q", LinksMapped, LinksBasename, c.Render.Links)
	}
	if c.Extraction.NoteSelector == "" || c.Extraction.TimeLayout == "" {
		return fmt.Errorf("extraction.note_selector and extraction.time_layout are required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
