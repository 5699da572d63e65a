package razor

import (
	"strings"

	"github.com/mvp-joe/project-strings/internal/extractors/csharp"
	"github.com/mvp-joe/project-strings/internal/literal"
)

// fragmentKind says how the state machine treats a fragment.
type fragmentKind int

const (
	// fragmentMarkup is walked symbol by symbol.
	fragmentMarkup fragmentKind = iota
	// fragmentCode is handed to the code extractor.
	fragmentCode
	// fragmentMeta is Razor syntax that is neither markup nor code:
	// transitions, comments, delimiters and directive lines.
	fragmentMeta
)

// fragment is a contiguous slice of the document.
type fragment struct {
	kind    fragmentKind
	content string
	start   literal.Position
}

// terminator ends a markup scan.
type terminator int

const (
	endOfInput terminator = iota
	endOfElement
	endOfLine
	endOfBrace
)

// directives occupy the rest of their line.
var directives = map[string]bool{
	"addTagHelper":       true,
	"attribute":          true,
	"implements":         true,
	"inherits":           true,
	"inject":             true,
	"layout":             true,
	"model":              true,
	"namespace":          true,
	"page":               true,
	"preservewhitespace": true,
	"removeTagHelper":    true,
	"rendermode":         true,
	"tagHelperPrefix":    true,
	"typeparam":          true,
}

// statements are C# keywords that start a code block after '@'.
var statements = map[string]bool{
	"do":      true,
	"for":     true,
	"foreach": true,
	"if":      true,
	"lock":    true,
	"switch":  true,
	"try":     true,
	"while":   true,
}

// voidElements never have a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

type segmenter struct {
	src   string
	lines *literal.Lines
	out   []fragment
}

// segment splits a Razor document into markup, code and meta fragments in
// document order. Concatenating the fragments reproduces the document.
func segment(src string) []fragment {
	s := &segmenter{src: src, lines: literal.NewLines(src)}
	s.markup(0, endOfInput)
	return s.out
}

func (s *segmenter) emit(kind fragmentKind, from, to int) {
	if to <= from {
		return
	}
	s.out = append(s.out, fragment{
		kind:    kind,
		content: s.src[from:to],
		start:   s.lines.Position(from),
	})
}

// markup scans markup from i until the terminator and returns the index it
// stopped at. For endOfBrace that is the index of the unmatched '}'.
func (s *segmenter) markup(i int, until terminator) int {
	src := s.src
	start := i
	depth, braces := 0, 0

	var (
		inTag     bool
		closing   bool
		tagName   string
		quote     byte
		prevSlash bool
	)

	for i < len(src) {
		c := src[i]

		if c == '@' {
			if resume, next, ok := s.transition(start, i); ok {
				start, i = resume, next
				continue
			}
		}

		if inTag {
			switch {
			case quote != 0:
				if c == quote {
					quote = 0
				}
			case c == '"' || c == '\'':
				quote = c
			case c == '>':
				inTag = false
				switch {
				case closing:
					depth--
				case prevSlash || voidElements[strings.ToLower(tagName)]:
				default:
					depth++
				}
				if until == endOfElement && depth <= 0 {
					s.emit(fragmentMarkup, start, i+1)
					return i + 1
				}
			}
			prevSlash = c == '/'
			i++
			continue
		}

		switch {
		case until == endOfLine && (c == '\n' || c == '\r'):
			end := i + 1
			if c == '\r' && end < len(src) && src[end] == '\n' {
				end++
			}
			s.emit(fragmentMarkup, start, end)
			return end

		case until == endOfBrace && c == '{':
			braces++

		case until == endOfBrace && c == '}':
			if braces == 0 {
				s.emit(fragmentMarkup, start, i)
				return i
			}
			braces--

		case c == '<' && strings.HasPrefix(src[i:], "<!--"):
			end := strings.Index(src[i+4:], "-->")
			if end < 0 {
				i = len(src)
			} else {
				i += 4 + end + 3
			}
			continue

		case c == '<' && until == endOfElement && strings.HasPrefix(src[i:], "<text>"):
			s.emit(fragmentMarkup, start, i)
			s.emit(fragmentMeta, i, i+6)
			depth++
			i += 6
			start = i
			continue

		case c == '<' && until == endOfElement && strings.HasPrefix(src[i:], "</text>"):
			s.emit(fragmentMarkup, start, i)
			s.emit(fragmentMeta, i, i+7)
			depth--
			i += 7
			start = i
			if depth <= 0 {
				return i
			}
			continue

		case c == '<':
			j := i + 1
			closing = j < len(src) && src[j] == '/'
			if closing {
				j++
			}
			name, end := tagNameAt(src, j)
			if name != "" || closing {
				inTag, tagName, prevSlash = true, name, false
				i = end
				continue
			}
		}
		i++
	}

	s.emit(fragmentMarkup, start, len(src))
	return len(src)
}

// transition handles the '@' at index at. When it is a Razor transition
// it emits the pending markup from pending, the transition's fragments, and
// returns where markup resumes and where scanning continues.
func (s *segmenter) transition(pending, at int) (resume, next int, ok bool) {
	src := s.src
	if at+1 >= len(src) {
		return 0, 0, false
	}
	// An '@' after a letter or digit is an e-mail address, except for an
	// explicit expression such as Age@(person.Age).
	if at > 0 && isAlnum(src[at-1]) && src[at+1] != '(' {
		return 0, 0, false
	}

	switch src[at+1] {
	case '@':
		s.emit(fragmentMarkup, pending, at)
		s.emit(fragmentMeta, at, at+1)
		return at + 1, at + 2, true

	case '*':
		end := len(src)
		if n := strings.Index(src[at+2:], "*@"); n >= 0 {
			end = at + 2 + n + 2
		}
		s.emit(fragmentMarkup, pending, at)
		s.emit(fragmentMeta, at, end)
		return end, end, true

	case '(':
		s.emit(fragmentMarkup, pending, at)
		s.emit(fragmentMeta, at, at+2)
		end := s.closer(at+2, '(', ')')
		s.emit(fragmentCode, at+2, end)
		return s.closeWith(end, ')')

	case '{':
		s.emit(fragmentMarkup, pending, at)
		s.emit(fragmentMeta, at, at+2)
		end := s.codeBlock(at + 2)
		return s.closeWith(end, '}')

	case ':':
		return 0, 0, false
	}

	word, wordEnd := identAt(src, at+1)
	if word == "" {
		return 0, 0, false
	}

	switch {
	case word == "code" || word == "functions":
		if brace, found := s.braceAfter(wordEnd); found {
			s.emit(fragmentMarkup, pending, at)
			s.emit(fragmentMeta, at, brace+1)
			end := s.codeBlock(brace + 1)
			return s.closeWith(end, '}')
		}

	case word == "section":
		if brace, found := s.braceAfter(wordEnd); found {
			s.emit(fragmentMarkup, pending, at)
			s.emit(fragmentMeta, at, brace+1)
			end := s.markup(brace+1, endOfBrace)
			return s.closeWith(end, '}')
		}

	case word == "using" && s.nextNonSpace(wordEnd) != '(',
		directives[word] && s.atLineStart(at):
		end := lineEnd(src, at)
		s.emit(fragmentMarkup, pending, at)
		s.emit(fragmentMeta, at, end)
		return end, end, true

	case statements[word] || word == "using":
		s.emit(fragmentMarkup, pending, at)
		s.emit(fragmentMeta, at, at+1)
		end := s.statement(at+1, word)
		return end, end, true
	}

	s.emit(fragmentMarkup, pending, at)
	s.emit(fragmentMeta, at, at+1)
	end := s.implicit(at + 1)
	s.emit(fragmentCode, at+1, end)
	return end, end, true
}

// closeWith emits the closing delimiter at end as meta, if present.
func (s *segmenter) closeWith(end int, delim byte) (resume, next int, ok bool) {
	if end < len(s.src) && s.src[end] == delim {
		s.emit(fragmentMeta, end, end+1)
		end++
	}
	return end, end, true
}

// codeBlock emits the C# body starting at i, with markup islands, and
// returns the index of the '}' that closes it.
func (s *segmenter) codeBlock(i int) int {
	src := s.src
	start := i
	depth := 0
	atStmt := true

	for i < len(src) {
		if next, ok := csharp.Skip(src, i); ok {
			if src[i] != '/' {
				atStmt = false
			}
			i = next
			continue
		}

		c := src[i]
		switch {
		case c == '{':
			depth++
			atStmt = true
		case c == '}':
			if depth == 0 {
				s.emit(fragmentCode, start, i)
				return i
			}
			depth--
			atStmt = true
		case c == ';' || c == ':':
			atStmt = true
		case c == '@' && atStmt && i+1 < len(src) && src[i+1] == ':':
			s.emit(fragmentCode, start, i)
			s.emit(fragmentMeta, i, i+2)
			i = s.markup(i+2, endOfLine)
			start = i
			continue
		case c == '<' && atStmt && i+1 < len(src) && isLetter(src[i+1]):
			s.emit(fragmentCode, start, i)
			i = s.markup(i, endOfElement)
			start = i
			continue
		case isSpace(c):
		default:
			atStmt = false
		}
		i++
	}

	s.emit(fragmentCode, start, len(src))
	return len(src)
}

// statement emits a keyword-led C# statement that starts at i, including
// its else, catch and finally continuations, and returns its end.
func (s *segmenter) statement(i int, keyword string) int {
	src := s.src
	for {
		brace, found := s.header(i)
		if !found {
			s.emit(fragmentCode, i, brace)
			return brace
		}
		s.emit(fragmentCode, i, brace+1)
		end := s.codeBlock(brace + 1)
		if end >= len(src) {
			return end
		}
		s.emit(fragmentCode, end, end+1)
		end++

		j := end
		for j < len(src) && isSpace(src[j]) {
			j++
		}
		word, _ := identAt(src, j)
		switch {
		case keyword == "do" && word == "while":
			stop := strings.IndexByte(src[j:], ';')
			if stop < 0 {
				stop = len(src)
			} else {
				stop += j + 1
			}
			s.emit(fragmentCode, end, stop)
			return stop
		case word == "else" || word == "catch" || word == "finally":
			i = end
		default:
			return end
		}
	}
}

// header scans a statement header from i to its opening brace. When the
// statement has no block it returns the end of the statement instead.
func (s *segmenter) header(i int) (int, bool) {
	src := s.src
	parens := 0
	for i < len(src) {
		if next, ok := csharp.Skip(src, i); ok {
			i = next
			continue
		}
		switch src[i] {
		case '(':
			parens++
		case ')':
			parens--
		case '{':
			if parens <= 0 {
				return i, true
			}
		case ';':
			if parens <= 0 {
				return i + 1, false
			}
		}
		i++
	}
	return len(src), false
}

// implicit returns the end of an implicit expression starting at i:
// an identifier followed by member access, calls and indexers.
func (s *segmenter) implicit(i int) int {
	src := s.src
	word, end := identAt(src, i)
	if word == "await" && end < len(src) && src[end] == ' ' {
		if next, after := identAt(src, end+1); next != "" {
			end = after
		}
	}
	for end < len(src) {
		switch src[end] {
		case '.':
			_, after := identAt(src, end+1)
			if after == end+1 {
				return end
			}
			end = after
		case '(':
			end = s.closer(end+1, '(', ')') + 1
		case '[':
			end = s.closer(end+1, '[', ']') + 1
		default:
			return end
		}
	}
	if end > len(src) {
		end = len(src)
	}
	return end
}

// closer returns the index of the delimiter that balances an already
// consumed open, or the end of the document.
func (s *segmenter) closer(i int, open, close byte) int {
	src := s.src
	depth := 0
	for i < len(src) {
		if next, ok := csharp.Skip(src, i); ok {
			i = next
			continue
		}
		switch src[i] {
		case open:
			depth++
		case close:
			if depth == 0 {
				return i
			}
			depth--
		}
		i++
	}
	return len(src)
}

// braceAfter finds the '{' that opens a block after a keyword and its
// arguments on the same or a following line.
func (s *segmenter) braceAfter(i int) (int, bool) {
	n := strings.IndexByte(s.src[i:], '{')
	if n < 0 {
		return 0, false
	}
	if strings.ContainsAny(s.src[i:i+n], "}<;") {
		return 0, false
	}
	return i + n, true
}

func (s *segmenter) nextNonSpace(i int) byte {
	for i < len(s.src) && isSpace(s.src[i]) {
		i++
	}
	if i < len(s.src) {
		return s.src[i]
	}
	return 0
}

func (s *segmenter) atLineStart(i int) bool {
	for i > 0 {
		c := s.src[i-1]
		if c == '\n' || c == '\r' {
			return true
		}
		if !isInlineSpace(c) {
			return false
		}
		i--
	}
	return true
}

func lineEnd(src string, i int) int {
	if n := strings.IndexAny(src[i:], "\r\n"); n >= 0 {
		return i + n
	}
	return len(src)
}

func tagNameAt(src string, i int) (string, int) {
	j := i
	for j < len(src) && (isAlnum(src[j]) || src[j] == '-' || src[j] == ':' || src[j] == '.') {
		j++
	}
	if j == i || !isLetter(src[i]) {
		return "", i
	}
	return src[i:j], j
}

func identAt(src string, i int) (string, int) {
	if i >= len(src) || !(isLetter(src[i]) || src[i] == '_') {
		return "", i
	}
	j := i + 1
	for j < len(src) && (isAlnum(src[j]) || src[j] == '_') {
		j++
	}
	return src[i:j], j
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isAlnum(c byte) bool {
	return isLetter(c) || c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == '\r' || c == '\n' || isInlineSpace(c)
}
