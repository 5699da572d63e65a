// Package tsql finds string literals in T-SQL scripts.
package tsql

import (
	"context"
	"regexp"
	"strings"

	"github.com/mvp-joe/project-strings/internal/literal"
)

// Language is tag1 of every literal this package reports.
const Language = "tsql"

// numberOrDate matches literals that only hold a number or a date, which
// are never user facing text.
var numberOrDate = regexp.MustCompile(`(?i)^N?'[0-9.,-]+'$`)

// Extractor implements literal.Extractor for T-SQL.
type Extractor struct{}

// New returns a T-SQL extractor.
func New() *Extractor {
	return &Extractor{}
}

// Search returns the string literals of source. Quoted identifiers,
// comments and number or date literals are skipped; a string still open at
// the end of the input yields nothing.
func (e *Extractor) Search(ctx context.Context, source string) ([]literal.Literal, error) {
	lines := literal.NewLines(source)
	var out []literal.Literal

	i := 0
	for i < len(source) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c := source[i]
		switch {
		case c == '-' && strings.HasPrefix(source[i:], "--"):
			i = lineEnd(source, i)
		case c == '/' && strings.HasPrefix(source[i:], "/*"):
			i = blockCommentEnd(source, i)
		case c == '"':
			i = delimitedEnd(source, i, '"')
		case c == '[':
			i = delimitedEnd(source, i, ']')
		case c == '\'' || ((c == 'N' || c == 'n') && strings.HasPrefix(source[i+1:], "'") && !identChar(prev(source, i))):
			start := i
			end := quotedEnd(source, strings.IndexByte(source[i:], '\'')+i)
			if end < 0 {
				return out, nil
			}
			i = end
			text := source[start:end]
			if numberOrDate.MatchString(text) {
				continue
			}
			pos := lines.Position(start)
			out = append(out, literal.Literal{
				StartIndex: start,
				EndIndex:   end,
				Line:       pos.Line,
				Character:  pos.Column,
				Text:       text,
				Tag1:       Language,
			})
		case identChar(c):
			for i < len(source) && identChar(source[i]) {
				i++
			}
		default:
			i++
		}
	}
	return out, nil
}

// quotedEnd returns the index past the quote closing the string opened at
// q, honoring '' escapes, or -1.
func quotedEnd(src string, q int) int {
	j := q + 1
	for j < len(src) {
		if src[j] == '\'' {
			if j+1 < len(src) && src[j+1] == '\'' {
				j += 2
				continue
			}
			return j + 1
		}
		j++
	}
	return -1
}

// delimitedEnd skips a quoted identifier; a doubled closing delimiter is
// an escape.
func delimitedEnd(src string, open int, closing byte) int {
	j := open + 1
	for j < len(src) {
		if src[j] == closing {
			if j+1 < len(src) && src[j+1] == closing {
				j += 2
				continue
			}
			return j + 1
		}
		j++
	}
	return len(src)
}

func lineEnd(src string, i int) int {
	if idx := strings.IndexAny(src[i:], "\r\n"); idx >= 0 {
		return i + idx
	}
	return len(src)
}

// blockCommentEnd skips a comment starting at i. T-SQL block comments nest.
func blockCommentEnd(src string, i int) int {
	depth := 0
	j := i
	for j < len(src) {
		switch {
		case strings.HasPrefix(src[j:], "/*"):
			depth++
			j += 2
		case strings.HasPrefix(src[j:], "*/"):
			depth--
			j += 2
			if depth == 0 {
				return j
			}
		default:
			j++
		}
	}
	return len(src)
}

func identChar(c byte) bool {
	return c == '_' || c == '@' || c == '#' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c >= 0x80
}

func prev(src string, i int) byte {
	if i == 0 {
		return 0
	}
	return src[i-1]
}
