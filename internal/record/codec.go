// Package record implements the length-prefixed wire format used to move
// extraction results between a worker process and the aggregator.
//
// A record is one line:
//
//	path;start;end;line;character;tag1;tag2;tag3;text
//
// where every string field is written as "<byte length>;<bytes>;" and every
// integer as "<decimal>;". Payloads are read by length, so separators and
// line breaks inside them need no escaping.
package record

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mvp-joe/project-strings/internal/literal"
)

const (
	separator = ';'

	// maxIntDigits bounds how far an integer field is scanned before the
	// stream is declared malformed.
	maxIntDigits = 20
)

var (
	// ErrFormatViolation indicates a malformed record stream.
	ErrFormatViolation = errors.New("format violation")

	// ErrTruncatedStream indicates the stream ended inside a record.
	ErrTruncatedStream = errors.New("truncated stream")
)

// DecodeError locates a decoding failure. Err is ErrFormatViolation or
// ErrTruncatedStream.
type DecodeError struct {
	Record int
	Field  string
	Err    error
	Detail string
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("record %d: field %s: %v", e.Record, e.Field, e.Err)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Encoder writes records to an underlying writer.
type Encoder struct {
	w *bufio.Writer
}

// NewEncoder returns an encoder writing to w. Call Flush when done.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// Encode writes one record followed by a newline.
func (e *Encoder) Encode(l literal.Literal) error {
	_, err := e.w.Write(Append(nil, l))
	return err
}

// Flush writes any buffered data to the underlying writer.
func (e *Encoder) Flush() error {
	return e.w.Flush()
}

// Append appends the encoding of l, including the trailing newline, to dst.
func Append(dst []byte, l literal.Literal) []byte {
	dst = appendString(dst, l.Path)
	dst = appendInt(dst, l.StartIndex)
	dst = appendInt(dst, l.EndIndex)
	dst = appendInt(dst, l.Line)
	dst = appendInt(dst, l.Character)
	dst = appendString(dst, l.Tag1)
	dst = appendString(dst, l.Tag2)
	dst = appendString(dst, l.Tag3)
	dst = appendString(dst, l.Text)
	return append(dst, '\n')
}

func appendInt(dst []byte, v int) []byte {
	dst = strconv.AppendInt(dst, int64(v), 10)
	return append(dst, separator)
}

func appendString(dst []byte, s string) []byte {
	dst = appendInt(dst, len(s))
	dst = append(dst, s...)
	return append(dst, separator)
}

// Decoder reads records from an underlying reader.
type Decoder struct {
	r      *bufio.Reader
	record int
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Decode reads the next record. It returns io.EOF when the stream ends
// cleanly between records.
func (d *Decoder) Decode() (literal.Literal, error) {
	var l literal.Literal

	if err := d.skipLineBreaks(); err != nil {
		return l, err
	}
	d.record++

	var err error
	if l.Path, err = d.readString("path"); err != nil {
		return literal.Literal{}, err
	}
	if l.StartIndex, err = d.readInt("startIndex"); err != nil {
		return literal.Literal{}, err
	}
	if l.EndIndex, err = d.readInt("endIndex"); err != nil {
		return literal.Literal{}, err
	}
	if l.Line, err = d.readInt("line"); err != nil {
		return literal.Literal{}, err
	}
	if l.Character, err = d.readInt("character"); err != nil {
		return literal.Literal{}, err
	}
	if l.Tag1, err = d.readString("tag1"); err != nil {
		return literal.Literal{}, err
	}
	if l.Tag2, err = d.readString("tag2"); err != nil {
		return literal.Literal{}, err
	}
	if l.Tag3, err = d.readString("tag3"); err != nil {
		return literal.Literal{}, err
	}
	if l.Text, err = d.readString("text"); err != nil {
		return literal.Literal{}, err
	}
	return l, nil
}

// DecodeAll reads records until the end of r.
func DecodeAll(r io.Reader) ([]literal.Literal, error) {
	d := NewDecoder(r)
	var out []literal.Literal
	for {
		l, err := d.Decode()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, l)
	}
}

func (d *Decoder) skipLineBreaks() error {
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return err
		}
		if b != '\r' && b != '\n' {
			return d.r.UnreadByte()
		}
	}
}

func (d *Decoder) fail(field string, err error, detail string) error {
	return &DecodeError{Record: d.record, Field: field, Err: err, Detail: detail}
}

func (d *Decoder) readInt(field string) (int, error) {
	var digits []byte
	for {
		b, err := d.r.ReadByte()
		if errors.Is(err, io.EOF) {
			return 0, d.fail(field, ErrTruncatedStream, "missing separator after integer")
		}
		if err != nil {
			return 0, err
		}
		if b == separator {
			break
		}
		if len(digits) == maxIntDigits {
			return 0, d.fail(field, ErrFormatViolation, "integer too long")
		}
		digits = append(digits, b)
	}

	v, err := strconv.Atoi(string(digits))
	if err != nil {
		return 0, d.fail(field, ErrFormatViolation, fmt.Sprintf("invalid integer %q", digits))
	}
	return v, nil
}

func (d *Decoder) readString(field string) (string, error) {
	n, err := d.readInt(field)
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", d.fail(field, ErrFormatViolation, fmt.Sprintf("negative length %d", n))
	}

	var sb strings.Builder
	copied, err := io.CopyN(&sb, d.r, int64(n))
	if copied < int64(n) {
		if err == nil || errors.Is(err, io.EOF) {
			return "", d.fail(field, ErrTruncatedStream, fmt.Sprintf("declared %d bytes, got %d", n, copied))
		}
		return "", err
	}

	b, err := d.r.ReadByte()
	if errors.Is(err, io.EOF) {
		return "", d.fail(field, ErrTruncatedStream, "missing separator after payload")
	}
	if err != nil {
		return "", err
	}
	if b != separator {
		return "", d.fail(field, ErrFormatViolation, fmt.Sprintf("unexpected %q after payload, expected %q", b, separator))
	}
	return sb.String(), nil
}
