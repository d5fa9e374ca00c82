// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/flomo2obsidian/internal/history"
	"github.com/pdiddy/flomo2obsidian/internal/output"
	"github.com/pdiddy/flomo2obsidian/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, export or prune past conversions",
	Long: `History reads the local database that records every conversion session
and each archive it exported. Use --export to dump the records as YAML or
JSON, and --prune-before to delete sessions started before a day.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "number of sessions to show (0 for all)")
	historyCmd.Flags().String("since", "", "only sessions started on or after this day (YYYY-MM-DD)")
	historyCmd.Flags().String("input", "", "only sessions of this export archive")
	historyCmd.Flags().String("export", "", "write the records as yaml or json")
	historyCmd.Flags().String("out", "", "file for --export (default stdout)")
	historyCmd.Flags().String("prune-before", "", "delete sessions started before this day (YYYY-MM-DD)")
	historyCmd.Flags().Bool("json", false, "print the listing as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return output.NewUserError(err.Error())
	}
	loc, _ := cfg.Location()

	jsonOut, _ := cmd.Flags().GetBool("json")
	printer := newPrinter(cmd, jsonOut)

	path := cfg.History.DBPath
	if path == "" {
		if path, err = history.DefaultPath(); err != nil {
			return fail(printer, output.NewSystemErrorWithCause("locating history database", err))
		}
	}
	store, err := history.Open(path)
	if err != nil {
		return fail(printer, output.NewSystemErrorWithCause("opening history database", err))
	}
	defer store.Close()

	ctx := cmd.Context()

	if cutoff, _ := cmd.Flags().GetString("prune-before"); cutoff != "" {
		day, err := parseDayFlag("prune-before", cutoff, loc)
		if err != nil {
			return fail(printer, err)
		}
		n, err := store.Prune(ctx, day)
		if err != nil {
			return fail(printer, output.NewSystemErrorWithCause("pruning history", err))
		}
		return printer.Success(map[string]any{
			"message": fmt.Sprintf("Deleted %d session(s) started before %s", n, cutoff),
			"deleted": n,
		})
	}

	opts := history.ListOptions{}
	opts.Limit, _ = cmd.Flags().GetInt("limit")
	if opts.Limit == 0 {
		opts.Limit = -1
	}
	opts.Input, _ = cmd.Flags().GetString("input")
	if opts.Input != "" {
		if abs, err := filepath.Abs(opts.Input); err == nil {
			opts.Input = abs
		}
	}
	if since, _ := cmd.Flags().GetString("since"); since != "" {
		if opts.Since, err = parseDayFlag("since", since, loc); err != nil {
			return fail(printer, err)
		}
	}

	if format, _ := cmd.Flags().GetString("export"); format != "" {
		return exportHistory(cmd, store, history.Format(format), opts)
	}

	records, err := store.List(ctx, opts)
	if err != nil {
		return fail(printer, output.NewSystemErrorWithCause("listing history", err))
	}
	if jsonOut {
		if records == nil {
			records = []types.SessionRecord{}
		}
		return printer.WriteJSON(records)
	}
	if len(records) == 0 {
		printer.Println("No conversions recorded.")
		return nil
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		last := ""
		if n := len(rec.Exports); n > 0 {
			last = rec.Exports[n-1].Output
		}
		rows = append(rows, []string{
			rec.StartedAt.In(loc).Format("2006-01-02 15:04"),
			filepath.Base(rec.Input),
			strconv.Itoa(rec.Notes),
			strconv.Itoa(len(rec.Exports)),
			last,
		})
	}
	printer.Table([]string{"Started", "Export", "Notes", "Exports", "Last output"}, rows)
	return nil
}

func exportHistory(cmd *cobra.Command, store *history.Store, format history.Format, opts history.ListOptions) error {
	switch format {
	case history.FormatYAML, history.FormatJSON:
	default:
		return output.NewUserError(fmt.Sprintf("unknown export format %q (want yaml or json)", format))
	}

	var w io.Writer = cmd.OutOrStdout()
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return output.NewSystemErrorWithCause("creating "+out, err)
		}
		defer f.Close()
		w = f
	}
	if err := store.Export(cmd.Context(), w, format, opts); err != nil {
		return output.NewSystemErrorWithCause("exporting history", err)
	}
	return nil
}

func parseDayFlag(name, value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(types.DayLayout, value, loc)
	if err != nil {
		return time.Time{}, output.NewUserError(fmt.Sprintf("--%s: %q is not a YYYY-MM-DD date", name, value))
	}
	return t, nil
}
