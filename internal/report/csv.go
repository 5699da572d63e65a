package report

import (
	"bufio"
	"context"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mvp-joe/project-strings/internal/literal"
)

var csvHeader = []string{"Path", "Extension", "Length", "Line", "Character", "Tag1", "Tag2", "Tag3", "Text"}

// CSVFormatter writes one row per literal. Cells made of digits only are
// written bare, every other cell is quoted, and each cell is followed by a
// comma.
type CSVFormatter struct {
	opts FormatOptions
}

// NewCSVFormatter creates a new CSV formatter with the given options.
func NewCSVFormatter(opts FormatOptions) *CSVFormatter {
	return &CSVFormatter{opts: opts}
}

// Name returns the format name.
func (f *CSVFormatter) Name() string {
	return FormatCSV
}

// Format renders the report as CSV. Paths are made absolute and text is
// trimmed of surrounding whitespace.
func (f *CSVFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	bw := bufio.NewWriter(w)
	if f.opts.SeparatorLine {
		bw.WriteString("sep=,\n")
	}
	writeRow(bw, csvHeader)

	row := make([]string, len(csvHeader))
	for _, l := range report.Literals {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := l.Path
		if abs, err := filepath.Abs(path); err == nil && path != "" {
			path = abs
		}
		text := strings.TrimSpace(l.Text)

		row[0] = path
		row[1] = literal.Extension(l.Path)
		row[2] = strconv.Itoa(len(text))
		row[3] = strconv.Itoa(l.Line)
		row[4] = strconv.Itoa(l.Character)
		row[5] = l.Tag1
		row[6] = l.Tag2
		row[7] = l.Tag3
		row[8] = text
		writeRow(bw, row)
	}
	return bw.Flush()
}

func writeRow(w *bufio.Writer, cells []string) {
	for _, c := range cells {
		if isDigits(c) {
			w.WriteString(c)
		} else {
			w.WriteByte('"')
			w.WriteString(strings.ReplaceAll(c, `"`, `""`))
			w.WriteByte('"')
		}
		w.WriteByte(',')
	}
	w.WriteByte('\n')
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
