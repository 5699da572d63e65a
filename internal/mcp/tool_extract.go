package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/project-strings/internal/literal"
	"github.com/mvp-joe/project-strings/internal/provider"
	"github.com/mvp-joe/project-strings/internal/scan"
)

// ExtractRequest holds the strings_extract arguments.
type ExtractRequest struct {
	Path string `json:"path"`
}

// ExtractResponse lists the literals of one file.
type ExtractResponse struct {
	Path     string            `json:"path"`
	Total    int               `json:"total"`
	Literals []literal.Literal `json:"literals"`
}

// AddExtractTool registers the strings_extract tool with an MCP server.
func AddExtractTool(s *server.MCPServer, scanner *scan.Scanner, root string) {
	tool := mcp.NewTool(
		"strings_extract",
		mcp.WithDescription("List the literal strings in one source file (Razor, C#, TypeScript or T-SQL) with line, column and classification tags."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File path, relative to the project root (e.g., 'Views/Home/Index.cshtml')")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createExtractHandler(scanner, root))
}

// createExtractHandler creates the handler function for strings_extract tool.
func createExtractHandler(scanner *scan.Scanner, root string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req ExtractRequest
		if err := CoerceBindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		if req.Path == "" {
			return mcp.NewToolResultError("path parameter is required"), nil
		}

		path, err := resolveInRoot(root, req.Path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if _, err := os.Stat(path); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("cannot read %s: %v", req.Path, err)), nil
		}

		result, err := scanner.Run(ctx, []string{path})
		if err != nil {
			var perr *provider.ProviderError
			if errors.As(err, &perr) {
				return mcp.NewToolResultError(perr.Error()), nil
			}
			return nil, err
		}
		if len(result.Skipped) > 0 {
			return mcp.NewToolResultError(fmt.Sprintf("unsupported file type: %s", req.Path)), nil
		}

		return marshalToolResponse(&ExtractResponse{
			Path:     path,
			Total:    len(result.Literals),
			Literals: nonNil(result.Literals),
		})
	}
}

func nonNil(lits []literal.Literal) []literal.Literal {
	if lits == nil {
		return []literal.Literal{}
	}
	return lits
}
