// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/flomo2obsidian/internal/output"
	"github.com/pdiddy/flomo2obsidian/internal/session"
)

var convertCmd = &cobra.Command{
	Use:   "convert <export.zip>",
	Short: "Convert a flomo export into a zip of daily markdown notes",
	Long: `Convert extracts the flomo export, groups its memos by calendar day and
writes an archive holding one YYYY-MM-DD.md per day plus an Attachments/
folder with every referenced image. An existing output file is replaced.

--start and --end (YYYY-MM-DD) limit the days converted; --end includes the
whole day. Omitted bounds default to the earliest and latest memo.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("start", "", "first day to convert (YYYY-MM-DD)")
	convertCmd.Flags().String("end", "", "last day to convert (YYYY-MM-DD)")
	convertCmd.Flags().StringP("output", "o", "", "output archive (default obsidian-notes.zip)")
	convertCmd.Flags().String("links", "", "image link naming: mapped or basename")
	convertCmd.Flags().Bool("json", false, "print the result as JSON")

	_ = viper.BindPFlag("export.output", convertCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("render.links", convertCmd.Flags().Lookup("links"))

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return output.NewUserError(err.Error())
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	stderr := cmd.ErrOrStderr()
	printer := newPrinter(cmd, jsonOut)
	live := !jsonOut && output.IsTerminal(stderr)

	store := openHistory(cmd, cfg)
	if store != nil {
		defer store.Close()
	}
	opts := sessionOptions(store)
	if !jsonOut && !live {
		opts = append(opts, session.WithStatus(stderr))
	}

	ctx := cmd.Context()
	s, err := session.Begin(ctx, args[0], cfg, opts...)
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

	bar := output.NewProgress(stderr, "Converting", live)
	batch, err := s.Convert(ctx, rng, bar.Update)
	bar.Done()
	if err != nil {
		return fail(printer, err)
	}
	if batch.Days() == 0 {
		printer.Warn("no notes fall inside the selected dates")
	}

	res, err := s.Export(ctx, cfg.Export.Output)
	if err != nil {
		return fail(printer, err)
	}

	sum := s.Summary()
	if !jsonOut && res.Missing > 0 {
		printer.Warn("%d image reference(s) not found in the export", res.Missing)
	}
	if sum.Skipped > 0 && !jsonOut {
		printer.Warn("%d memo(s) skipped for a bad timestamp or empty content", sum.Skipped)
	}
	return printer.Success(map[string]any{
		"message":     fmt.Sprintf("Exported %d daily note(s) to %s", res.Documents, res.Path),
		"output":      res.Path,
		"documents":   res.Documents,
		"notes":       batch.Notes,
		"attachments": res.Attachments,
		"missing":     res.Missing,
		"skipped":     sum.Skipped,
	})
}
