package razor

import (
	"strings"

	"github.com/mvp-joe/project-strings/internal/literal"
)

// symbolKind is the lexical class of a markup symbol.
type symbolKind int

const (
	symText symbolKind = iota
	symWhiteSpace
	symNewLine
	symOpenAngle
	symCloseAngle
	symForwardSlash
	symBang
	symQuestionMark
	symLeftBracket
	symRightBracket
	symEquals
	symDoubleQuote
	symSingleQuote
)

var punctuation = map[byte]symbolKind{
	'<':  symOpenAngle,
	'>':  symCloseAngle,
	'/':  symForwardSlash,
	'!':  symBang,
	'?':  symQuestionMark,
	'[':  symLeftBracket,
	']':  symRightBracket,
	'=':  symEquals,
	'"':  symDoubleQuote,
	'\'': symSingleQuote,
}

// symbol is the smallest lexical unit of a markup fragment.
type symbol struct {
	kind    symbolKind
	content string
	start   literal.Position
}

func (s symbol) isWhitespace() bool {
	return s.kind == symWhiteSpace || s.kind == symNewLine
}

func isInlineSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\f' || c == '\v'
}

// tokenizeMarkup splits markup content that starts at start into symbols.
func tokenizeMarkup(content string, start literal.Position) []symbol {
	var out []symbol
	pos := start

	add := func(kind symbolKind, text string) {
		out = append(out, symbol{kind: kind, content: text, start: pos})
		pos = pos.Advance(text)
	}

	i := 0
	for i < len(content) {
		c := content[i]
		switch {
		case c == '\r' && i+1 < len(content) && content[i+1] == '\n':
			add(symNewLine, content[i:i+2])
			i += 2
		case c == '\r' || c == '\n':
			add(symNewLine, content[i:i+1])
			i++
		case isInlineSpace(c):
			j := i
			for j < len(content) && isInlineSpace(content[j]) {
				j++
			}
			add(symWhiteSpace, content[i:j])
			i = j
		default:
			if kind, ok := punctuation[c]; ok {
				add(kind, content[i:i+1])
				i++
				continue
			}
			j := i
			for j < len(content) && !isTextBoundary(content[j]) {
				j++
			}
			add(symText, content[i:j])
			i = j
		}
	}
	return out
}

func isTextBoundary(c byte) bool {
	if c == '\r' || c == '\n' || isInlineSpace(c) {
		return true
	}
	_, ok := punctuation[c]
	return ok
}

// splitLines cuts a symbol into per-line pieces; each piece keeps its own
// line break and absolute position.
func splitLines(s symbol) []piece {
	var out []piece
	pos := s.start
	rest := s.content
	for rest != "" {
		n := strings.IndexAny(rest, "\r\n")
		if n < 0 {
			n = len(rest)
		} else if rest[n] == '\r' && n+1 < len(rest) && rest[n+1] == '\n' {
			n += 2
		} else {
			n++
		}
		out = append(out, piece{start: pos, text: rest[:n]})
		pos = pos.Advance(rest[:n])
		rest = rest[n:]
	}
	return out
}

// piece is one line's share of a buffered symbol.
type piece struct {
	start literal.Position
	text  string
}

func (p piece) end() int {
	return p.start.Offset + len(p.text)
}

func (p piece) blank() bool {
	return strings.TrimSpace(p.text) == ""
}
