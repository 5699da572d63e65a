package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/project-strings/internal/literal"
	"github.com/mvp-joe/project-strings/internal/provider"
	"github.com/mvp-joe/project-strings/internal/scan"
)

const (
	defaultScanLimit = 200
	maxScanLimit     = 5000
)

// ScanRequest holds the strings_scan arguments.
type ScanRequest struct {
	Paths    []string `json:"paths"`
	Language string   `json:"language"`
	Contains string   `json:"contains"`
	Limit    int      `json:"limit"`
}

// ScanResponse summarizes a scan and lists the first matching literals.
type ScanResponse struct {
	Files     int               `json:"files"`
	Skipped   int               `json:"skipped"`
	Failed    []string          `json:"failed_providers,omitempty"`
	Total     int               `json:"total"`
	Truncated bool              `json:"truncated"`
	Literals  []literal.Literal `json:"literals"`
}

// AddScanTool registers the strings_scan tool with an MCP server.
func AddScanTool(s *server.MCPServer, scanner *scan.Scanner, discovery *scan.FileDiscovery, root string, inputs []string) {
	tool := mcp.NewTool(
		"strings_scan",
		mcp.WithDescription("Scan directories or files for literal strings, ordered by file and position. Use to audit user-visible text, find hard-coded values or locate a message."),
		mcp.WithArray("paths",
			mcp.Description("Directories or files relative to the project root. Defaults to the configured inputs."),
			mcp.WithStringItems()),
		mcp.WithString("language",
			mcp.Description("Only literals from this provider: razor, csharp, typescript, tsql")),
		mcp.WithString("contains",
			mcp.Description("Only literals whose text contains this substring (case-insensitive)")),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum literals to return (1-%d, default: %d)", maxScanLimit, defaultScanLimit))),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createScanHandler(scanner, discovery, root, inputs))
}

// createScanHandler creates the handler function for strings_scan tool.
func createScanHandler(scanner *scan.Scanner, discovery *scan.FileDiscovery, root string, inputs []string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req ScanRequest
		if err := CoerceBindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		limit := req.Limit
		if limit <= 0 {
			limit = defaultScanLimit
		}
		limit = min(limit, maxScanLimit)

		roots := inputs
		if len(req.Paths) > 0 {
			roots = make([]string, 0, len(req.Paths))
			for _, p := range req.Paths {
				path, err := resolveInRoot(root, p)
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				roots = append(roots, path)
			}
		}

		files, err := discovery.Discover(roots)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := scanner.Run(ctx, files)
		if err != nil {
			var perr *provider.ProviderError
			if errors.As(err, &perr) {
				return mcp.NewToolResultError(perr.Error()), nil
			}
			return nil, err
		}

		matched := filterLiterals(result.Literals, req.Language, req.Contains)
		response := &ScanResponse{
			Files:    result.Stats.Files,
			Skipped:  result.Stats.Skipped,
			Total:    len(matched),
			Literals: nonNil(matched),
		}
		if len(matched) > limit {
			response.Literals = matched[:limit]
			response.Truncated = true
		}
		for _, f := range result.Failures {
			response.Failed = append(response.Failed, f.Provider)
		}

		return marshalToolResponse(response)
	}
}

// filterLiterals keeps literals whose tag1 equals language and whose text
// contains the substring, ignoring empty criteria.
func filterLiterals(lits []literal.Literal, language, contains string) []literal.Literal {
	if language == "" && contains == "" {
		return lits
	}
	contains = strings.ToLower(contains)

	var out []literal.Literal
	for _, l := range lits {
		if language != "" && !strings.EqualFold(l.Tag1, language) {
			continue
		}
		if contains != "" && !strings.Contains(strings.ToLower(l.Text), contains) {
			continue
		}
		out = append(out, l)
	}
	return out
}
