// Package mcp serves string extraction to MCP clients over stdio, so that
// assistants can list the literals of a file or a whole tree on demand.
package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/project-strings/internal/scan"
)

// Options configure a Server.
type Options struct {
	// Root confines every path a client names.
	Root string
	// Inputs are the absolute paths scanned when a client names none.
	Inputs    []string
	Discovery *scan.FileDiscovery
	Scanner   *scan.Scanner
	Version   string
	Logger    *slog.Logger
}

// Server manages the MCP server lifecycle.
type Server struct {
	opts Options
	mcp  *server.MCPServer
}

// NewServer creates a server with the strings_extract and strings_scan
// tools registered.
func NewServer(opts Options) (*Server, error) {
	if opts.Scanner == nil || opts.Discovery == nil {
		return nil, fmt.Errorf("scanner and discovery are required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	mcpServer := server.NewMCPServer(
		"strings-mcp",
		opts.Version,
		server.WithToolCapabilities(true),
	)

	AddExtractTool(mcpServer, opts.Scanner, opts.Root)
	AddScanTool(mcpServer, opts.Scanner, opts.Discovery, opts.Root, opts.Inputs)

	return &Server{opts: opts, mcp: mcpServer}, nil
}

// Serve answers requests on stdin/stdout until the client disconnects or
// ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("starting MCP server on stdio", "root", s.opts.Root)
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.opts.Logger.Info("stopping MCP server")
		return nil
	}
}
