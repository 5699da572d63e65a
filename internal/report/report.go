// Package report renders scan findings as CSV, JSON lines or a SQLite
// database.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/mvp-joe/project-strings/internal/literal"
)

// Output formats.
const (
	FormatCSV    = "csv"
	FormatJSONL  = "jsonl"
	FormatSQLite = "sqlite"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// Report is one scan's findings.
type Report struct {
	RunID    string
	Started  time.Time
	Literals []literal.Literal
}

// Formatter renders a report to a stream.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// Name returns the format name.
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// SeparatorLine starts CSV output with a "sep=," line for spreadsheet
	// applications.
	SeparatorLine bool
}

// NewFormatter returns the stream formatter for format.
func NewFormatter(format string, opts FormatOptions) (Formatter, error) {
	switch format {
	case FormatCSV:
		return NewCSVFormatter(opts), nil
	case FormatJSONL:
		return NewJSONLFormatter(opts), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}

// Formats lists every supported output format.
func Formats() []string {
	return []string{FormatCSV, FormatJSONL, FormatSQLite}
}

// NewReport wraps the findings of a scan that started at started under a
// fresh run id.
func NewReport(lits []literal.Literal, started time.Time) *Report {
	return &Report{RunID: uuid.NewString(), Started: started, Literals: lits}
}
