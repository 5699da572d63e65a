package record

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/mvp-joe/project-strings/internal/literal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_Format(t *testing.T) {
	t.Parallel()

	l := literal.Literal{
		Path:       "a.cs",
		StartIndex: 3,
		EndIndex:   8,
		Line:       0,
		Character:  3,
		Text:       `"x;y"`,
		Tag1:       "csharp",
		Tag2:       "StringLiteralToken",
	}

	got := string(Append(nil, l))
	assert.Equal(t, "4;a.cs;3;8;0;3;6;csharp;18;StringLiteralToken;0;;5;\"x;y\";\n", got)
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	records := []literal.Literal{
		{Path: "", StartIndex: 0, EndIndex: 0},
		{Path: "dir/file.ts", StartIndex: 10, EndIndex: 17, Line: 2, Character: 4, Text: "'hello'", Tag1: "typescript", Tag2: "StringLiteral"},
		{Path: "semi;colon.cs", Text: ";;;", Tag1: ";", Tag2: "", Tag3: "3;"},
		{Path: "multi", Text: "line one\nline two\r\n", Tag1: "razor", Tag2: "text"},
		{Path: "unicode", Text: "Grüße – 世界", Tag1: "razor", Tag2: "attribute", Tag3: "title"},
		{Path: "digits", Text: "12;34;", StartIndex: 123456, EndIndex: 123462},
	}

	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, r := range records {
		require.NoError(t, enc.Encode(r))
	}
	require.NoError(t, enc.Flush())

	got, err := DecodeAll(&buf)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestDecode_ToleratesCRLFAndMissingFinalNewline(t *testing.T) {
	t.Parallel()

	// Records joined with CRLF and no trailing line break, as some workers write them.
	stream := "1;a;0;3;0;0;2;ts;0;;0;;3;'x';\r\n1;b;4;7;1;2;2;ts;0;;0;;3;'y';"

	got, err := DecodeAll(strings.NewReader(stream))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Path)
	assert.Equal(t, "'y'", got[1].Text)
	assert.Equal(t, 1, got[1].Line)
	assert.Equal(t, 2, got[1].Character)
}

func TestDecode_EmptyStream(t *testing.T) {
	t.Parallel()

	got, err := DecodeAll(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = DecodeAll(strings.NewReader("\r\n\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stream string
		want   error
		field  string
	}{
		{
			name:   "declared length exceeds input",
			stream: "10;abc",
			want:   ErrTruncatedStream,
			field:  "path",
		},
		{
			name:   "stream ends inside integer",
			stream: "1;a;12",
			want:   ErrTruncatedStream,
			field:  "startIndex",
		},
		{
			name:   "payload not followed by separator",
			stream: "1;ab;0;0;0;0;0;;0;;0;;0;;\n",
			want:   ErrFormatViolation,
			field:  "path",
		},
		{
			name:   "non numeric integer",
			stream: "1;a;x;0;0;0;0;;0;;0;;0;;\n",
			want:   ErrFormatViolation,
			field:  "startIndex",
		},
		{
			name:   "empty integer",
			stream: "1;a;;0;0;0;0;;0;;0;;0;;\n",
			want:   ErrFormatViolation,
			field:  "startIndex",
		},
		{
			name:   "negative length",
			stream: "-1;",
			want:   ErrFormatViolation,
			field:  "path",
		},
		{
			name:   "runaway integer",
			stream: strings.Repeat("9", 64) + ";",
			want:   ErrFormatViolation,
			field:  "path",
		},
		{
			name:   "missing separator at end of stream",
			stream: "1;a;0;0;0;0;0;;0;;0;;1;x",
			want:   ErrTruncatedStream,
			field:  "text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoder(strings.NewReader(tt.stream)).Decode()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)

			var decErr *DecodeError
			require.True(t, errors.As(err, &decErr))
			assert.Equal(t, tt.field, decErr.Field)
			assert.Equal(t, 1, decErr.Record)
		})
	}
}

func TestDecodeAll_ReturnsRecordsBeforeFailure(t *testing.T) {
	t.Parallel()

	good := string(Append(nil, literal.Literal{Path: "ok", Text: "'a'"}))
	got, err := DecodeAll(strings.NewReader(good + "5;ab"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTruncatedStream))
	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].Path)

	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, 2, decErr.Record)
}
