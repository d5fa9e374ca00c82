// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the flomo2obsidian CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/flomo2obsidian/internal/history"
	"github.com/pdiddy/flomo2obsidian/internal/output"
	"github.com/pdiddy/flomo2obsidian/internal/session"
	"github.com/pdiddy/flomo2obsidian/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the flomo2obsidian CLI.
var rootCmd = &cobra.Command{
	Use:   "flomo2obsidian",
	Short: "Convert flomo HTML exports into Obsidian daily notes",
	Long: `flomo2obsidian reads the zip archive produced by flomo's HTML export and
writes a new archive with one markdown file per calendar day (YYYY-MM-DD.md)
and every referenced image collected in an Attachments/ folder.

Use convert for a one-shot conversion, inspect to preview the daily notes
without writing anything, history to review past conversions, and serve to
drive sessions from an MCP client.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return output.NewUserError(err.Error())
		}
		if flag, _ := cmd.Flags().GetString("color"); flag != "" {
			if _, err := output.ParseColorMode(flag); err != nil {
				return output.NewUserError(err.Error())
			}
		}
		verbose, _ := cmd.Flags().GetBool("verbose")
		setupLogging(cfg.LogLevel, verbose)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./flomo2obsidian.yaml or ~/.config/flomo2obsidian/config.yaml)")
	rootCmd.PersistentFlags().String("timezone", "", "IANA timezone used to read timestamps and group days (default: local)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug details to stderr")
	rootCmd.PersistentFlags().Bool("no-history", false, "do not record this run in the history database")
	rootCmd.PersistentFlags().String("color", "auto", "color output: auto, always or never")

	_ = viper.BindPFlag("timezone", rootCmd.PersistentFlags().Lookup("timezone"))
}

func initConfig() {
	// A missing .env is fine; variables already set win.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("flomo2obsidian")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "flomo2obsidian"))
		}
	}

	setDefaults()
	configureEnv()

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "path", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so environment variables can
// override keys that no config file sets.
func setDefaults() {
	d := types.DefaultConfig()
	viper.SetDefault("scratch_dir", d.ScratchDir)
	viper.SetDefault("timezone", d.Timezone)
	viper.SetDefault("log_level", d.LogLevel)
	viper.SetDefault("extraction.note_selector", d.Extraction.NoteSelector)
	viper.SetDefault("extraction.time_selector", d.Extraction.TimeSelector)
	viper.SetDefault("extraction.content_selector", d.Extraction.ContentSelector)
	viper.SetDefault("extraction.paragraph_selector", d.Extraction.ParagraphSelector)
	viper.SetDefault("extraction.image_selector", d.Extraction.ImageSelector)
	viper.SetDefault("extraction.image_attr", d.Extraction.ImageAttr)
	viper.SetDefault("extraction.time_layout", d.Extraction.TimeLayout)
	viper.SetDefault("render.links", string(d.Render.Links))
	viper.SetDefault("export.output", d.Export.Output)
	viper.SetDefault("history.enabled", d.History.Enabled)
	viper.SetDefault("history.db_path", d.History.DBPath)
}

// configureEnv maps FLOMO2OBSIDIAN_EXPORT_OUTPUT to export.output and so on.
func configureEnv() {
	viper.SetEnvPrefix("FLOMO2OBSIDIAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// loadConfig merges defaults, the config file, the environment and bound
// flags into a validated Config.
func loadConfig() (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

func setupLogging(level string, verbose bool) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// openHistory opens the history database when recording is enabled. A
// database that cannot be opened disables recording for this run.
func openHistory(cmd *cobra.Command, cfg types.Config) *history.Store {
	noHistory, _ := cmd.Flags().GetBool("no-history")
	if !cfg.History.Enabled || noHistory {
		return nil
	}
	path := cfg.History.DBPath
	if path == "" {
		var err error
		if path, err = history.DefaultPath(); err != nil {
			slog.Warn("history disabled", "error", err)
			return nil
		}
	}
	store, err := history.Open(path)
	if err != nil {
		slog.Warn("history disabled", "path", path, "error", err)
		return nil
	}
	return store
}

// sessionOptions returns the recorder option when store is open.
func sessionOptions(store *history.Store) []session.Option {
	if store == nil {
		return nil
	}
	return []session.Option{session.WithRecorder(store)}
}

// newPrinter returns a printer on the command's stdout honoring --color.
func newPrinter(cmd *cobra.Command, jsonMode bool) *output.Printer {
	stdout := cmd.OutOrStdout()
	flag, _ := cmd.Flags().GetString("color")
	mode, err := output.ParseColorMode(flag)
	if err != nil {
		mode = output.ColorAuto
	}
	return output.NewPrinter(stdout, jsonMode, mode.Styled(stdout)).WithStderr(cmd.ErrOrStderr())
}

// fail converts err to an exit error, printing it first in JSON mode.
func fail(printer *output.Printer, err error) error {
	err = output.FromError(err)
	if printer.IsJSON() {
		printer.Error(err)
	}
	return err
}

func main() {
	err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version))
	os.Exit(output.GetExitCode(err))
}
