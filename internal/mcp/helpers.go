package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// errOutsideRoot marks a path a client may not read.
var errOutsideRoot = errors.New("path is outside project root")

// marshalToolResponse returns response as JSON text (mcp-go convention).
func marshalToolResponse(response any) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// resolveInRoot resolves a client path against root and rejects anything
// that escapes it.
func resolveInRoot(root, path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", errOutsideRoot, path)
	}
	return path, nil
}
