package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	projectDir string
	verbose    bool
	logJSON    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "strings",
	Short: "Find literal strings in source code",
	Long: `Strings walks a source tree and reports every literal string it finds in
Razor views, C#, TypeScript and T-SQL, with the file, line and column of each.

Findings are written as CSV (spreadsheet friendly), JSON lines, or appended
to a SQLite database. Extraction runs in worker processes, one per language,
so a crash while parsing one file never takes the whole scan down.

Configuration is read from .strings/config.yml in the project directory and
STRINGS_* environment variables. Command line flags win over both.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", "", "project directory holding .strings/config.yml (default is the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")
}

// initLogging installs the process-wide logger. Logs go to stderr so that
// stdout stays free for results.
func initLogging() {
	slog.SetDefault(newLogger(os.Stderr, verbose, logJSON))
}

func newLogger(w io.Writer, verbose, json bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// resolveProjectDir returns the --dir flag or the working directory.
func resolveProjectDir() (string, error) {
	if projectDir != "" {
		return projectDir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}
