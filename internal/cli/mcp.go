package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-strings/internal/config"
	"github.com/mvp-joe/project-strings/internal/mcp"
	"github.com/mvp-joe/project-strings/internal/scan"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve string extraction to MCP clients over stdio",
	Long: `Mcp starts a Model Context Protocol server on stdin/stdout exposing two tools:

  strings_extract  literals of one file
  strings_scan     literals of a tree, filterable by language and text

Paths are confined to the project directory. Providers, patterns and worker
settings come from .strings/config.yml like for scan. Logs go to stderr.

Example client configuration:
  {"command": "strings", "args": ["mcp", "--dir", "/path/to/project"]}
`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
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

	session, err := newScanSession(cfg, rootDir, sessionOptions{
		Logger:   slog.Default(),
		Progress: scan.NoOpProgressReporter{},
	})
	if err != nil {
		return err
	}
	defer session.Close()

	server, err := mcp.NewServer(session.serverOptions(rootDir))
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	return server.Serve(ctx)
}

// serverOptions exposes the session's scanner to the MCP server.
func (s *scanSession) serverOptions(rootDir string) mcp.Options {
	inputs := make([]string, len(s.roots))
	for i, r := range s.roots {
		inputs[i] = r.path
	}
	return mcp.Options{
		Root:      rootDir,
		Inputs:    inputs,
		Discovery: s.discovery,
		Scanner:   s.scanner,
		Version:   Version,
		Logger:    s.logger,
	}
}
