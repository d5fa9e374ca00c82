// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/flomo2obsidian/internal/convert"
	"github.com/pdiddy/flomo2obsidian/internal/output"
	"github.com/pdiddy/flomo2obsidian/internal/render"
	"github.com/pdiddy/flomo2obsidian/internal/session"
	"github.com/pdiddy/flomo2obsidian/pkg/types"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <export.zip>",
	Short: "Preview the daily notes of a flomo export without writing them",
	Long: `Inspect parses the export and lists the daily markdown files a conversion
would produce, with note and image counts and the note titles of each day.
Use --show YYYY-MM-DD to print one rendered day. Nothing is written.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().String("start", "", "first day to include (YYYY-MM-DD)")
	inspectCmd.Flags().String("end", "", "last day to include (YYYY-MM-DD)")
	inspectCmd.Flags().String("show", "", "print the rendered markdown of one day (YYYY-MM-DD)")
	inspectCmd.Flags().String("format", "text", "output format: text, json or yaml")

	rootCmd.AddCommand(inspectCmd)
}

// dayReport describes one daily document.
type dayReport struct {
	Day     string         `json:"day" yaml:"day"`
	File    string         `json:"file" yaml:"file"`
	Notes   int            `json:"notes" yaml:"notes"`
	Images  int            `json:"images" yaml:"images"`
	Outline render.Outline `json:"outline" yaml:"outline"`
}

// inspectReport is the structured form of the inspect listing.
type inspectReport struct {
	Summary session.Summary `json:"summary" yaml:"summary"`
	Range   types.DateRange `json:"range" yaml:"range"`
	Missing int             `json:"missing" yaml:"missing"`
	Days    []dayReport     `json:"days" yaml:"days"`
}

// dayPreview is the structured form of --show.
type dayPreview struct {
	File     string         `json:"file" yaml:"file"`
	Markdown string         `json:"markdown" yaml:"markdown"`
	Outline  render.Outline `json:"outline" yaml:"outline"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return output.NewUserError(err.Error())
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "text", "json", "yaml":
	default:
		return output.NewUserError(fmt.Sprintf("unknown format %q (want text, json or yaml)", format))
	}

	printer := newPrinter(cmd, format == "json")

	ctx := cmd.Context()
	s, err := session.Begin(ctx, args[0], cfg)
	if err != nil {
		return fail(printer, err)
	}
	defer s.End()

	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")
	rng, err := s.ParseRange(start, end)
	if err != nil {
		return fail(printer, err)
	}
	batch, err := s.Convert(ctx, rng, nil)
	if err != nil {
		return fail(printer, err)
	}

	if day, _ := cmd.Flags().GetString("show"); day != "" {
		return showDay(printer, s, day, format)
	}
	return listDays(printer, s, batch, format)
}

func showDay(printer *output.Printer, s *session.Session, day, format string) error {
	text, ok := s.Rendered(day)
	if !ok {
		return fail(printer, output.NewUserError(fmt.Sprintf("no converted notes on %s", day)))
	}
	preview := dayPreview{
		File:     day + ".md",
		Markdown: text,
		Outline:  render.ParseOutline([]byte(text)),
	}
	switch format {
	case "json":
		return printer.WriteJSON(preview)
	case "yaml":
		return printer.WriteYAML(preview)
	}
	printer.Box(preview.File, strings.TrimRight(text, "\n"))
	return nil
}

func listDays(printer *output.Printer, s *session.Session, batch *convert.Batch, format string) error {
	report := inspectReport{
		Summary: s.Summary(),
		Range:   batch.Range,
		Missing: batch.Missing,
		Days:    make([]dayReport, 0, batch.Days()),
	}
	for _, doc := range batch.Documents {
		report.Days = append(report.Days, dayReport{
			Day:     doc.Key(),
			File:    doc.Filename(),
			Notes:   len(doc.Notes),
			Images:  doc.ImageCount(),
			Outline: render.ParseOutline([]byte(batch.Rendered[doc.Key()])),
		})
	}

	switch format {
	case "json":
		return printer.WriteJSON(report)
	case "yaml":
		return printer.WriteYAML(report)
	}

	sum := report.Summary
	printer.Section("Export")
	printer.KeyValue("input", sum.Input)
	printer.KeyValue("entries", strconv.Itoa(sum.Entries))
	printer.KeyValue("notes", strconv.Itoa(sum.NoteCount))
	printer.KeyValue("skipped", strconv.Itoa(sum.Skipped))
	if sum.NoteCount > 0 {
		printer.KeyValue("span", sum.Earliest.Format(types.DayLayout)+" to "+sum.Latest.Format(types.DayLayout))
	}

	printer.Section("Daily notes")
	if len(report.Days) == 0 {
		printer.Println("No notes fall inside the selected dates.")
		return nil
	}
	rows := make([][]string, 0, len(report.Days))
	for _, d := range report.Days {
		rows = append(rows, []string{d.File, strconv.Itoa(d.Notes), strconv.Itoa(d.Images), firstHeading(d.Outline)})
	}
	printer.Table([]string{"File", "Notes", "Images", "First note"}, rows)
	if report.Missing > 0 {
		printer.Warn("%d image reference(s) not found in the export", report.Missing)
	}
	return nil
}

func firstHeading(o render.Outline) string {
	if len(o.Headings) == 0 {
		return ""
	}
	h := o.Headings[0]
	if r := []rune(h); len(r) > 40 {
		h = string(r[:39]) + "…"
	}
	return h
}
