package csharp

import "strings"

type token struct {
	start int
	end   int
	kind  string
}

// scanner walks C# source and yields complete string literal tokens.
type scanner struct {
	src string
	pos int

	// atLineStart is true while only whitespace has been seen on the line.
	atLineStart bool
}

func (s *scanner) next() (token, bool) {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '\n' || c == '\r':
			s.atLineStart = true
			s.pos++
			continue
		case c == ' ' || c == '\t' || c == '\f' || c == '\v':
			s.pos++
			continue
		}

		lineStart := s.atLineStart
		s.atLineStart = false

		switch {
		case c == '#' && lineStart:
			s.pos = lineEnd(s.src, s.pos)
		case c == '/' && s.peek(1) == '/':
			s.pos = lineEnd(s.src, s.pos)
		case c == '/' && s.peek(1) == '*':
			s.pos = blockCommentEnd(s.src, s.pos)
		case c == '\'':
			s.pos = charEnd(s.src, s.pos)
		default:
			start := s.pos
			end, kind, resume, isString := stringAt(s.src, start)
			if !isString {
				s.pos++
				continue
			}
			s.pos = resume
			if end >= 0 {
				return token{start: start, end: end, kind: kind}, true
			}
		}
	}
	return token{}, false
}

func (s *scanner) peek(offset int) byte {
	if s.pos+offset < len(s.src) {
		return s.src[s.pos+offset]
	}
	return 0
}

// stringAt checks for a string literal starting at i. When one starts there,
// isString is true, end is its exclusive end (-1 if unterminated) and resume
// is where scanning continues.
func stringAt(src string, i int) (end int, kind string, resume int, isString bool) {
	at := func(j int) byte {
		if j < len(src) {
			return src[j]
		}
		return 0
	}

	switch src[i] {
	case '"':
		if isRawOpen(src, i) {
			end, resume = scanRaw(src, i)
			return end, KindString, resume, true
		}
		end, resume = scanRegular(src, i, false)
		return end, KindString, resume, true

	case '@':
		switch {
		case at(i+1) == '"':
			end, resume = scanVerbatim(src, i+1, false)
			return end, KindString, resume, true
		case at(i+1) == '$' && at(i+2) == '"':
			end, resume = scanVerbatim(src, i+2, true)
			return end, KindInterpolated, resume, true
		}

	case '$':
		j := i
		for at(j) == '$' {
			j++
		}
		switch {
		case at(j) == '@' && at(j+1) == '"' && j == i+1:
			end, resume = scanVerbatim(src, j+1, true)
			return end, KindInterpolated, resume, true
		case at(j) == '"' && isRawOpen(src, j):
			end, resume = scanRaw(src, j)
			return end, KindInterpolated, resume, true
		case at(j) == '"' && j == i+1:
			end, resume = scanRegular(src, j, true)
			return end, KindInterpolated, resume, true
		}
	}
	return -1, "", i + 1, false
}

func isRawOpen(src string, q int) bool {
	return strings.HasPrefix(src[q:], `"""`)
}

// scanRegular scans a quoted string whose opening quote is at q. Line
// breaks terminate it unsuccessfully.
func scanRegular(src string, q int, interpolated bool) (end, resume int) {
	j := q + 1
	for j < len(src) {
		switch c := src[j]; {
		case c == '\\':
			j += 2
		case c == '"':
			return j + 1, j + 1
		case c == '\n' || c == '\r':
			return -1, j
		case interpolated && c == '{':
			if j+1 < len(src) && src[j+1] == '{' {
				j += 2
				continue
			}
			h := holeEnd(src, j)
			if h < 0 {
				return -1, len(src)
			}
			j = h
		default:
			j++
		}
	}
	return -1, len(src)
}

// scanVerbatim scans an @"..." string; "" is an escaped quote and line
// breaks are part of the literal.
func scanVerbatim(src string, q int, interpolated bool) (end, resume int) {
	j := q + 1
	for j < len(src) {
		switch c := src[j]; {
		case c == '"':
			if j+1 < len(src) && src[j+1] == '"' {
				j += 2
				continue
			}
			return j + 1, j + 1
		case interpolated && c == '{':
			if j+1 < len(src) && src[j+1] == '{' {
				j += 2
				continue
			}
			h := holeEnd(src, j)
			if h < 0 {
				return -1, len(src)
			}
			j = h
		default:
			j++
		}
	}
	return -1, len(src)
}

// scanRaw scans a raw string opened by three or more quotes at q. It ends
// at the first run of the same number of quotes.
func scanRaw(src string, q int) (end, resume int) {
	n := 0
	for q+n < len(src) && src[q+n] == '"' {
		n++
	}
	closing := strings.Repeat(`"`, n)
	idx := strings.Index(src[q+n:], closing)
	if idx < 0 {
		return -1, len(src)
	}
	end = q + n + idx + n
	return end, end
}

// holeEnd returns the index just past the '}' that closes the
// interpolation hole opened at open, or -1.
func holeEnd(src string, open int) int {
	depth := 0
	j := open
	for j < len(src) {
		c := src[j]
		switch {
		case c == '{':
			depth++
			j++
		case c == '}':
			depth--
			j++
			if depth == 0 {
				return j
			}
		case c == '/' && j+1 < len(src) && src[j+1] == '/':
			j = lineEnd(src, j)
		case c == '/' && j+1 < len(src) && src[j+1] == '*':
			j = blockCommentEnd(src, j)
		case c == '\'':
			j = charEnd(src, j)
		default:
			end, _, resume, isString := stringAt(src, j)
			if !isString {
				j++
				continue
			}
			if end < 0 {
				return -1
			}
			j = resume
		}
	}
	return -1
}

func lineEnd(src string, i int) int {
	if idx := strings.IndexAny(src[i:], "\r\n"); idx >= 0 {
		return i + idx
	}
	return len(src)
}

func blockCommentEnd(src string, i int) int {
	if idx := strings.Index(src[i+2:], "*/"); idx >= 0 {
		return i + 2 + idx + 2
	}
	return len(src)
}

func charEnd(src string, i int) int {
	j := i + 1
	for j < len(src) {
		switch src[j] {
		case '\\':
			j += 2
		case '\'':
			return j + 1
		case '\n', '\r':
			return j
		default:
			j++
		}
	}
	return len(src)
}

// Skip reports whether a comment, character literal or string literal
// starts at i and returns the index just past it. Unterminated constructs
// extend to the end of their line or of src. Hosts that embed C# use it to
// step over code without being confused by braces inside literals.
func Skip(src string, i int) (next int, ok bool) {
	if i >= len(src) {
		return i, false
	}
	switch {
	case strings.HasPrefix(src[i:], "//"):
		return lineEnd(src, i), true
	case strings.HasPrefix(src[i:], "/*"):
		return blockCommentEnd(src, i), true
	case src[i] == '\'':
		return charEnd(src, i), true
	}
	if _, _, resume, isString := stringAt(src, i); isString {
		return resume, true
	}
	return i, false
}
