package literal

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrParseFailure marks a strict extractor that could not tokenize its input.
var ErrParseFailure = errors.New("parse failure")

// ParseError reports a strict extractor failure for one source.
type ParseError struct {
	Language string
	Path     string
	Reason   string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s: %s", e.Language, ErrParseFailure, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s: %s", e.Language, e.Path, ErrParseFailure, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrParseFailure
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadSource reads a source file as text, dropping a leading UTF-8 BOM.
func ReadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read source: %w", err)
	}
	return string(bytes.TrimPrefix(data, utf8BOM)), nil
}

// Extension returns the lower-cased file extension of path, including a
// second dot-separated part when present ("foo.d.ts" gives ".d.ts").
// A name that starts with its only dot is all extension (".ts").
func Extension(path string) string {
	name := filepath.Base(path)
	last := strings.LastIndexByte(name, '.')
	if last <= 0 {
		if last == 0 {
			return strings.ToLower(name)
		}
		return ""
	}
	start := last
	if prev := strings.LastIndexByte(name[:last], '.'); prev != -1 {
		start = prev
	}
	return strings.ToLower(name[start:])
}
