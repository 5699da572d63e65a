package report

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
)

// JSONLFormatter writes one JSON object per literal and line.
type JSONLFormatter struct {
	opts FormatOptions
}

// NewJSONLFormatter creates a new JSON lines formatter with the given options.
func NewJSONLFormatter(opts FormatOptions) *JSONLFormatter {
	return &JSONLFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONLFormatter) Name() string {
	return FormatJSONL
}

// Format renders the report as JSON lines.
func (f *JSONLFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	bw := bufio.NewWriter(w)
	encoder := json.NewEncoder(bw)
	encoder.SetEscapeHTML(false)

	for _, l := range report.Literals {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := encoder.Encode(l); err != nil {
			return err
		}
	}
	return bw.Flush()
}
