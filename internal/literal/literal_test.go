package literal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"foo.ts", ".ts"},
		{"foo.TS", ".ts"},
		{"foo.d.ts", ".d.ts"},
		{"lib.es2017.d.ts", ".d.ts"},
		{"bar.cs", ".cs"},
		{"bar.g.cs", ".g.cs"},
		{".ts", ".ts"},
		{".d.ts", ".d.ts"},
		{"Makefile", ""},
		{filepath.Join("dir.with.dots", "view.cshtml"), ".cshtml"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Extension(tt.path))
		})
	}
}

func TestLines_Position(t *testing.T) {
	t.Parallel()

	src := "ab\ncd\r\nef\rgh"
	lines := NewLines(src)
	require.Equal(t, 4, lines.Count())

	assert.Equal(t, Position{Offset: 0, Line: 0, Column: 0}, lines.Position(0))
	assert.Equal(t, Position{Offset: 2, Line: 0, Column: 2}, lines.Position(2))
	assert.Equal(t, Position{Offset: 4, Line: 1, Column: 1}, lines.Position(4))
	assert.Equal(t, Position{Offset: 7, Line: 2, Column: 0}, lines.Position(7))
	assert.Equal(t, Position{Offset: 11, Line: 3, Column: 1}, lines.Position(11))
}

func TestPosition_Advance(t *testing.T) {
	t.Parallel()

	start := Position{Offset: 10, Line: 2, Column: 4}

	assert.Equal(t, Position{Offset: 13, Line: 2, Column: 7}, start.Advance("abc"))
	assert.Equal(t, Position{Offset: 13, Line: 3, Column: 1}, start.Advance("a\nb"))
	assert.Equal(t, Position{Offset: 13, Line: 3, Column: 0}, start.Advance("a\r\n"))
	assert.Equal(t, Position{Offset: 12, Line: 4, Column: 0}, start.Advance("\r\r"))
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	lits := []Literal{
		{StartIndex: 3, EndIndex: 8, Line: 0, Character: 3, Text: `"abc"`},
		{StartIndex: 12, EndIndex: 15, Line: 1, Character: 2, Text: `"x"`},
	}

	got := Translate(lits, Position{Offset: 100, Line: 7, Column: 20})

	assert.Equal(t, Literal{StartIndex: 103, EndIndex: 108, Line: 7, Character: 23, Text: `"abc"`}, got[0])
	assert.Equal(t, Literal{StartIndex: 112, EndIndex: 115, Line: 8, Character: 2, Text: `"x"`}, got[1])
}

func TestLiteral_Shift(t *testing.T) {
	t.Parallel()

	l := Literal{Tag1: "csharp", Tag2: "StringLiteralToken", Tag3: "ignored"}
	got := l.Shift("razor")

	assert.Equal(t, "razor", got.Tag1)
	assert.Equal(t, "csharp", got.Tag2)
	assert.Equal(t, "StringLiteralToken", got.Tag3)
	assert.Equal(t, "csharp", l.Tag1, "receiver must not change")
}

func TestReadSource_StripsBOM(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.ts")
	require.NoError(t, os.WriteFile(path, []byte("\xEF\xBB\xBFlet a = 'x';"), 0o644))

	src, err := ReadSource(path)
	require.NoError(t, err)
	assert.Equal(t, "let a = 'x';", src)

	_, err = ReadSource(filepath.Join(t.TempDir(), "missing.ts"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParseError(t *testing.T) {
	t.Parallel()

	err := error(&ParseError{Language: "typescript", Path: "a.ts", Reason: "no tree"})
	assert.True(t, errors.Is(err, ErrParseFailure))
	assert.Equal(t, "typescript: a.ts: parse failure: no tree", err.Error())
}

func TestExtractorFunc(t *testing.T) {
	t.Parallel()

	var e Extractor = ExtractorFunc(func(ctx context.Context, source string) ([]Literal, error) {
		return []Literal{{Text: source}}, nil
	})
	lits, err := e.Search(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x", WithPath(lits, "/tmp/x")[0].Path)
}
