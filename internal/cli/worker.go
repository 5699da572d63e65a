package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-strings/internal/worker"
)

var workerSingleFlag string

// workerCmd is started by scans, once per built-in provider.
var workerCmd = &cobra.Command{
	Use:   "worker <provider> <input-list> <output>",
	Short: "Run a built-in extractor over a file list",
	Long: `Worker reads one source path per line from <input-list>, extracts every file
with the named built-in provider and appends the findings to <output> in the
record format. Each path is echoed to stdout as it is processed.

With --single, one file is extracted and its records are written to stdout.

Examples:
  strings worker razor files.txt out.txt
  strings worker csharp --single Program.cs
`,
	Hidden: true,
	Args: func(cmd *cobra.Command, args []string) error {
		if workerSingleFlag != "" {
			return cobra.ExactArgs(1)(cmd, args)
		}
		return cobra.ExactArgs(3)(cmd, args)
	},
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
	workerCmd.Flags().StringVar(&workerSingleFlag, "single", "", "extract one file to stdout")
}

func runWorker(cmd *cobra.Command, args []string) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if workerSingleFlag != "" {
		return worker.Single(ctx, args[0], workerSingleFlag, cmd.OutOrStdout())
	}
	return worker.Run(ctx, args[0], args[1], args[2], cmd.OutOrStdout())
}
