package razor

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/mvp-joe/project-strings/internal/literal"
)

// mode is the markup context the state machine is in.
type mode int

const (
	modeDefault mode = iota
	modeInsideTag
	modeInsideSingleQuoteAttr
	modeInsideDoubleQuoteAttr
)

// lookback keeps the last two non-whitespace symbols.
type lookback struct {
	slots [2]symbol
	n     int
}

func (r *lookback) push(s symbol) {
	r.slots[0] = r.slots[1]
	r.slots[1] = s
	if r.n < len(r.slots) {
		r.n++
	}
}

// lastTwo returns the second to last and the last symbol.
func (r *lookback) lastTwo() (symbol, symbol, bool) {
	if r.n < 2 {
		return symbol{}, symbol{}, false
	}
	return r.slots[0], r.slots[1], true
}

// machine walks the fragments of one document and collects runs of text,
// attribute values and the literals of embedded code.
type machine struct {
	code     literal.Extractor
	excluded map[int]bool

	mode      mode
	recent    lookback
	attribute string

	// buffer holds the symbols of the open run; capturing is false when no
	// run is open. bufferMode is the mode the run was opened in.
	buffer     []symbol
	capturing  bool
	bufferMode mode

	out []literal.Literal
}

func newMachine(code literal.Extractor, excluded map[int]bool) *machine {
	return &machine{
		code:       code,
		excluded:   excluded,
		capturing:  true,
		bufferMode: modeDefault,
	}
}

func (m *machine) run(ctx context.Context, fragments []fragment) ([]literal.Literal, error) {
	for _, f := range fragments {
		switch f.kind {
		case fragmentCode:
			if err := m.delegate(ctx, f); err != nil {
				return nil, err
			}
		case fragmentMarkup:
			for _, s := range tokenizeMarkup(f.content, f.start) {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				m.visit(s)
			}
		case fragmentMeta:
			m.interrupt()
		}
	}
	m.flush()
	return m.out, nil
}

func (m *machine) visit(s symbol) {
	omit := false

	switch s.kind {
	case symOpenAngle:
		if m.mode == modeDefault {
			m.mode = modeInsideTag
		}
	case symCloseAngle:
		if m.mode == modeInsideTag {
			m.mode = modeDefault
		}
	case symSingleQuote, symDoubleQuote:
		switch {
		case m.mode == modeInsideTag:
			name, value, ok := m.recent.lastTwo()
			if ok && name.kind == symText && value.kind == symEquals {
				m.attribute = name.content
				m.mode = modeInsideDoubleQuoteAttr
				if s.kind == symSingleQuote {
					m.mode = modeInsideSingleQuoteAttr
				}
				omit = true
				m.begin()
			}
		case m.mode == modeInsideSingleQuoteAttr && s.kind == symSingleQuote,
			m.mode == modeInsideDoubleQuoteAttr && s.kind == symDoubleQuote:
			m.mode = modeInsideTag
		}
	case symText:
		if m.mode == modeDefault {
			m.begin()
		}
	}

	if m.mode == m.bufferMode {
		if m.capturing && !omit {
			m.buffer = append(m.buffer, s)
		}
	} else {
		m.flush()
	}

	if !s.isWhitespace() {
		m.recent.push(s)
	}
}

// begin opens a run in the current mode, keeping an already open one.
func (m *machine) begin() {
	m.bufferMode = m.mode
	if !m.capturing {
		m.capturing = true
		m.buffer = m.buffer[:0]
	}
}

// interrupt closes the open run at a non-markup fragment and reopens it
// afterwards, so runs never span content they do not contain.
func (m *machine) interrupt() {
	capturing := m.capturing
	m.flush()
	if capturing {
		m.begin()
	}
}

// delegate hands a code fragment to the code extractor and appends its
// literals, rebased into the document and classified under razor.
func (m *machine) delegate(ctx context.Context, f fragment) error {
	capturing := m.capturing
	m.flush()

	lits, err := m.code.Search(ctx, f.content)
	if err != nil {
		return fmt.Errorf("failed to extract code at line %d: %w", f.start.Line+1, err)
	}
	for _, l := range literal.Translate(lits, f.start) {
		m.out = append(m.out, l.Shift(Language))
	}

	if capturing {
		m.begin()
	}
	return nil
}

// flush turns the open run into zero or more literals and closes it.
func (m *machine) flush() {
	if m.capturing && len(m.buffer) > 0 {
		var current []piece
		for _, s := range m.buffer {
			for _, p := range splitLines(s) {
				if m.excluded[p.start.Line] {
					m.emit(current)
					current = current[:0]
					continue
				}
				if len(current) > 0 || !p.blank() {
					current = append(current, p)
				}
			}
		}
		m.emit(current)
	}
	m.capturing = false
	m.buffer = nil
}

// emit reports the pieces up to the last non-blank one as a single run,
// trimming inline whitespace from its start.
func (m *machine) emit(pieces []piece) {
	last := -1
	for i := len(pieces) - 1; i >= 0; i-- {
		if !pieces[i].blank() {
			last = i
			break
		}
	}
	if last < 0 {
		return
	}

	var sb strings.Builder
	for _, p := range pieces[:last+1] {
		sb.WriteString(p.text)
	}
	text := sb.String()
	start := pieces[0].start

	trimmed := strings.TrimLeftFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) && r != '\r' && r != '\n'
	})
	offset := len(text) - len(trimmed)
	start.Offset += offset
	start.Column += offset

	tag2, tag3 := "text", ""
	switch m.bufferMode {
	case modeDefault:
	case modeInsideSingleQuoteAttr, modeInsideDoubleQuoteAttr:
		tag2, tag3 = "attribute", m.attribute
	default:
		return
	}

	m.out = append(m.out, literal.Literal{
		StartIndex: start.Offset,
		EndIndex:   pieces[last].end(),
		Line:       start.Line,
		Character:  start.Column,
		Text:       trimmed,
		Tag1:       Language,
		Tag2:       tag2,
		Tag3:       tag3,
	})
}
