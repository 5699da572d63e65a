package report

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mvp-joe/project-strings/internal/literal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	return NewReport([]literal.Literal{
		{
			Path: "/src/Views/Index.cshtml", StartIndex: 3, EndIndex: 17, Line: 0, Character: 3,
			Text: "  Say \"hi\"\n  ", Tag1: "razor", Tag2: "text",
		},
		{
			Path: "/src/types/lib.D.TS", StartIndex: 40, EndIndex: 43, Line: 2, Character: 7,
			Text: "'1'", Tag1: "typescript", Tag2: "StringLiteral",
		},
		{
			Path: "/src/q.sql", StartIndex: 7, EndIndex: 10, Line: 0, Character: 7,
			Text: "42", Tag1: "tsql",
		},
	}, time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC))
}

func TestNewReport(t *testing.T) {
	t.Parallel()

	a, b := sampleReport(), sampleReport()
	assert.NotEmpty(t, a.RunID)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestCSVFormatter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	f := NewCSVFormatter(FormatOptions{SeparatorLine: true})
	require.NoError(t, f.Format(context.Background(), sampleReport(), &buf))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "sep=,", lines[0])
	assert.Equal(t, `"Path","Extension","Length","Line","Character","Tag1","Tag2","Tag3","Text",`, lines[1])
	assert.Equal(t, `"/src/Views/Index.cshtml",".cshtml",8,0,3,"razor","text","","Say ""hi""",`, lines[2])
	assert.Equal(t, `"/src/types/lib.D.TS",".d.ts",3,2,7,"typescript","StringLiteral","","'1'",`, lines[3])
	assert.Equal(t, `"/src/q.sql",".sql",2,0,7,"tsql","","",42,`, lines[4])
}

func TestCSVFormatter_RelativePathsAndNoSeparator(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	report := &Report{Literals: []literal.Literal{{Path: "a.cs", Text: "x", Tag1: "csharp"}}}
	require.NoError(t, NewCSVFormatter(FormatOptions{}).Format(context.Background(), report, &buf))

	abs, err := filepath.Abs("a.cs")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], `"Path",`))
	assert.True(t, strings.HasPrefix(lines[1], `"`+abs+`",".cs",1,`))
}

func TestJSONLFormatter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	report := sampleReport()
	require.NoError(t, NewJSONLFormatter(FormatOptions{}).Format(context.Background(), report, &buf))

	var got []literal.Literal
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var l literal.Literal
		require.NoError(t, json.Unmarshal(sc.Bytes(), &l))
		got = append(got, l)
	}
	assert.Equal(t, report.Literals, got)
}

func TestNewFormatter(t *testing.T) {
	t.Parallel()

	for _, name := range []string{FormatCSV, FormatJSONL} {
		f, err := NewFormatter(name, FormatOptions{})
		require.NoError(t, err)
		assert.Equal(t, name, f.Name())
	}

	_, err := NewFormatter(FormatSQLite, FormatOptions{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
	_, err = NewFormatter("xml", FormatOptions{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFormatter_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, f := range []Formatter{NewCSVFormatter(FormatOptions{}), NewJSONLFormatter(FormatOptions{})} {
		err := f.Format(ctx, sampleReport(), &bytes.Buffer{})
		assert.ErrorIs(t, err, context.Canceled, f.Name())
	}
}

func TestSQLiteSink(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "findings.db")
	sink := NewSQLiteSink(path)
	assert.Equal(t, FormatSQLite, sink.Name())

	first, second := sampleReport(), sampleReport()
	second.Literals = second.Literals[:1]
	require.NoError(t, sink.Write(context.Background(), first))
	require.NoError(t, sink.Write(context.Background(), second))

	got, err := ReadRun(context.Background(), path, first.RunID)
	require.NoError(t, err)
	assert.Equal(t, first.Literals, got)

	got, err = ReadRun(context.Background(), path, second.RunID)
	require.NoError(t, err)
	assert.Equal(t, second.Literals, got)
}
