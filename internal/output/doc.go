// Package output provides structured output and exit codes for the
// flomo2obsidian CLI.
//
// The Printer switches between human-readable and JSON output:
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), jsonFlag, output.ColorAuto.Styled(cmd.OutOrStdout()))
//	printer.Success(map[string]any{"message": "Exported", "path": path})
//	printer.Error(err)
//
// Human output is styled with lipgloss; under ColorAuto styles are disabled
// when output is piped or NO_COLOR is set. Pipeline errors are mapped to
// exit codes with FromError:
//
//	output.ExitUserError   // 1: bad input archive, bad flags, bad date range
//	output.ExitSystemError // 2: extraction, parsing, copy or packaging failed
//	output.ExitConflict    // 3: session state mismatch
package output
