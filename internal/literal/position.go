package literal

import "sort"

// Position locates a byte offset in a source text.
type Position struct {
	Offset int // absolute byte offset
	Line   int // zero-based line
	Column int // zero-based byte column
}

// Advance returns the position reached after consuming text from p.
// "\r\n", "\n" and a lone "\r" each end a line.
func (p Position) Advance(text string) Position {
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			p.Line++
			p.Column = 0
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				p.Column++
				break
			}
			p.Line++
			p.Column = 0
		default:
			p.Column++
		}
		p.Offset++
	}
	return p
}

// Lines maps byte offsets of a source text to line/column positions.
type Lines struct {
	starts []int
}

// NewLines indexes the line starts of source. Line breaks are "\n" and
// "\r\n"; a lone "\r" is treated as a line break too.
func NewLines(source string) *Lines {
	starts := []int{0}
	for i := 0; i < len(source); i++ {
		switch source[i] {
		case '\n':
			starts = append(starts, i+1)
		case '\r':
			if i+1 < len(source) && source[i+1] == '\n' {
				continue
			}
			starts = append(starts, i+1)
		}
	}
	return &Lines{starts: starts}
}

// Count returns the number of lines.
func (l *Lines) Count() int {
	return len(l.starts)
}

// Position returns the line and column of offset.
func (l *Lines) Position(offset int) Position {
	line := sort.Search(len(l.starts), func(i int) bool { return l.starts[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return Position{Offset: offset, Line: line, Column: offset - l.starts[line]}
}

// Translate rebases literals produced for a fragment that starts at origin
// in an outer document. Columns are only shifted on the fragment's first
// line; later lines keep their own columns.
func Translate(lits []Literal, origin Position) []Literal {
	for i := range lits {
		if lits[i].Line == 0 {
			lits[i].Character += origin.Column
		}
		lits[i].Line += origin.Line
		lits[i].StartIndex += origin.Offset
		lits[i].EndIndex += origin.Offset
	}
	return lits
}
