package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-strings/internal/config"
	"github.com/mvp-joe/project-strings/internal/lock"
	"github.com/mvp-joe/project-strings/internal/report"
)

var (
	scanOutputFlag     string
	scanFormatFlag     string
	scanWorkersFlag    int
	scanBestEffortFlag bool
	scanInProcessFlag  bool
	scanTimeoutFlag    time.Duration
	scanNoSepFlag      bool
	scanWatchFlag      bool
	scanQuietFlag      bool
	scanWaitFlag       bool
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [paths...]",
	Short: "Extract literal strings from a source tree",
	Long: `Scan discovers source files below the given paths (or paths.input from the
config), hands each language's files to its provider and writes every literal
found to a single report, ordered by file and position.

Built-in providers:
  razor       .cshtml .razor  markup text, attribute values and embedded C#
  csharp      .cs             string and interpolated string literals
  typescript  .ts .tsx        string and template literals
  tsql        .sql .csql      string literals, skipping numbers and dates

Examples:
  # Scan the current directory into result.csv
  strings scan

  # Scan two folders into JSON lines on stdout
  strings scan src/Web src/Db --output - --format jsonl

  # Append to a SQLite history, keeping going if a provider fails
  strings scan --output strings.db --best-effort

  # Re-scan whenever a source file changes
  strings scan --watch --in-process
`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVarP(&scanOutputFlag, "output", "o", "", "report path, - for stdout")
	scanCmd.Flags().StringVarP(&scanFormatFlag, "format", "f", "", "report format: "+strings.Join(report.Formats(), ", "))
	scanCmd.Flags().IntVarP(&scanWorkersFlag, "workers", "j", 0, "providers running at once")
	scanCmd.Flags().BoolVar(&scanBestEffortFlag, "best-effort", false, "drop failed providers instead of aborting")
	scanCmd.Flags().BoolVar(&scanInProcessFlag, "in-process", false, "run built-in extractors without worker processes")
	scanCmd.Flags().DurationVar(&scanTimeoutFlag, "timeout", 0, "abort a scan after this long")
	scanCmd.Flags().BoolVar(&scanNoSepFlag, "no-sep", false, "omit the sep=, line from CSV reports")
	scanCmd.Flags().BoolVarP(&scanWatchFlag, "watch", "w", false, "re-scan when source files change")
	scanCmd.Flags().BoolVarP(&scanQuietFlag, "quiet", "q", false, "disable progress output")
	scanCmd.Flags().BoolVar(&scanWaitFlag, "wait", false, "wait for a running scan of the same project instead of failing")
}

func runScan(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootDir, err := resolveProjectDir()
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	applyScanFlags(cmd, cfg, args)
	if err := config.Validate(cfg); err != nil {
		return err
	}

	// Scans writing to files hold the project lock
	if cfg.Output.Path != "-" {
		projectLock := lock.New(filepath.Join(rootDir, config.Dir), "scan")
		if scanWaitFlag {
			err = projectLock.Acquire(ctx)
		} else {
			err = projectLock.TryAcquire()
		}
		if err != nil {
			return err
		}
		defer projectLock.Release()
	}

	session, err := newScanSession(cfg, rootDir, sessionOptions{
		Logger:   slog.Default(),
		Progress: NewCLIProgressReporter(cmd.ErrOrStderr(), scanQuietFlag),
		Stdout:   cmd.OutOrStdout(),
		Watch:    scanWatchFlag,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	if scanWatchFlag {
		return session.Watch(ctx)
	}
	_, err = session.RunOnce(ctx)
	return err
}

// applyScanFlags overrides cfg with every flag set on the command line.
// Positional arguments replace paths.input.
func applyScanFlags(cmd *cobra.Command, cfg *config.Config, args []string) {
	flags := cmd.Flags()

	if len(args) > 0 {
		cfg.Paths.Input = args
	}
	if flags.Changed("output") {
		cfg.Output.Path = scanOutputFlag
		if !flags.Changed("format") {
			cfg.Output.Format = formatForPath(scanOutputFlag, cfg.Output.Format)
		}
	}
	if flags.Changed("format") {
		cfg.Output.Format = scanFormatFlag
	}
	if flags.Changed("workers") {
		cfg.Scan.Workers = scanWorkersFlag
	}
	if flags.Changed("best-effort") {
		cfg.Scan.BestEffort = scanBestEffortFlag
	}
	if flags.Changed("in-process") {
		cfg.Scan.InProcess = scanInProcessFlag
	}
	if flags.Changed("timeout") {
		cfg.Scan.Timeout = scanTimeoutFlag
	}
	if flags.Changed("no-sep") {
		cfg.Output.SeparatorLine = !scanNoSepFlag
	}
}

// formatForPath infers the report format from the output file extension,
// falling back to current.
func formatForPath(path, current string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return report.FormatCSV
	case ".jsonl", ".ndjson":
		return report.FormatJSONL
	case ".db", ".sqlite", ".sqlite3":
		return report.FormatSQLite
	}
	return current
}

// writeReport writes rep to the configured destination. File outputs are
// replaced atomically; SQLite databases are appended to.
func writeReport(ctx context.Context, out config.OutputConfig, rep *report.Report, stdout io.Writer) error {
	if out.Format == report.FormatSQLite {
		if err := os.MkdirAll(filepath.Dir(out.Path), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		return report.NewSQLiteSink(out.Path).Write(ctx, rep)
	}

	formatter, err := report.NewFormatter(out.Format, report.FormatOptions{SeparatorLine: out.SeparatorLine})
	if err != nil {
		return err
	}

	if out.Path == "-" {
		return formatter.Format(ctx, rep, stdout)
	}

	dir := filepath.Dir(out.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(out.Path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer os.Remove(tmp.Name()) // No-op after a successful rename

	if err := formatter.Format(ctx, rep, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp.Name(), out.Path); err != nil {
		return fmt.Errorf("failed to replace report: %w", err)
	}
	return nil
}
