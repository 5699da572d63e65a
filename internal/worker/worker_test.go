package worker

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mvp-joe/project-strings/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.cs", `var a = "A";`)
	b := writeFile(t, dir, "b.cs", "var b = \"B1\";\nvar c = \"B2\";")
	list := writeFile(t, dir, "list.txt", a+"\n\n"+b+"\n")
	output := filepath.Join(dir, "out.txt")

	var log bytes.Buffer
	require.NoError(t, Run(context.Background(), "csharp", list, output, &log))

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	lits, err := record.DecodeAll(f)
	require.NoError(t, err)

	require.Len(t, lits, 3)
	assert.Equal(t, a, lits[0].Path)
	assert.Equal(t, `"A"`, lits[0].Text)
	assert.Equal(t, b, lits[2].Path)
	assert.Equal(t, 1, lits[2].Line)
	assert.Equal(t, 2, strings.Count(log.String(), "\n"))
}

func TestRun_AppendsToOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.sql", "SELECT 'x'")
	list := writeFile(t, dir, "list.txt", a)
	output := filepath.Join(dir, "out.txt")

	for i := 0; i < 2; i++ {
		require.NoError(t, Run(context.Background(), "tsql", list, output, &bytes.Buffer{}))
	}

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lits, err := record.DecodeAll(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, lits, 2)
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	list := writeFile(t, dir, "list.txt", filepath.Join(dir, "missing.cs"))

	err := Run(context.Background(), "cobol", list, filepath.Join(dir, "out"), &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrUnknownExtractor)

	err = Run(context.Background(), "csharp", filepath.Join(dir, "nolist"), filepath.Join(dir, "out"), &bytes.Buffer{})
	assert.ErrorIs(t, err, os.ErrNotExist)

	err = Run(context.Background(), "csharp", list, filepath.Join(dir, "out"), &bytes.Buffer{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSingle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "view.cshtml", "\ufeff<p title=\"T\">Hello</p>")

	var buf bytes.Buffer
	require.NoError(t, Single(context.Background(), "razor", path, &buf))

	lits, err := record.DecodeAll(&buf)
	require.NoError(t, err)
	require.Len(t, lits, 2)
	assert.Equal(t, "T", lits[0].Text)
	assert.Equal(t, "attribute", lits[0].Tag2)
	assert.Equal(t, "Hello", lits[1].Text)
	assert.Equal(t, 13, lits[1].StartIndex)
}

func TestReadFileList(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	list := writeFile(t, dir, "list.txt", "a.cs\r\n\r\n  b.cs  \nc.cs")

	files, err := ReadFileList(list)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.cs", "b.cs", "c.cs"}, files)
}
