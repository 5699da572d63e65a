package cli

// Test Plan for CLI helpers:
// - listProviders prints built-in and custom providers aligned
// - CLIProgressReporter prints a summary, or nothing when quiet
// - formatNumber groups thousands
// - newLogger honours --verbose and --log-json
// - version prints build information
// - worker --single writes decodable records to stdout

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-strings/internal/provider"
	"github.com/mvp-joe/project-strings/internal/record"
	"github.com/mvp-joe/project-strings/internal/scan"
)

func TestListProviders(t *testing.T) {
	t.Parallel()

	registry, err := provider.NewRegistry([]provider.Provider{
		{Name: "razor", Extensions: []string{".cshtml", ".razor"}},
		{Name: "vb", Extensions: []string{".vb"}, Command: "vb-strings", Args: []string{"{input}", "{output}"}},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, listProviders(&buf, registry))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"NAME", "EXTENSIONS", "COMMAND"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"razor", ".cshtml", ".razor", "(built-in)"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"vb", ".vb", "vb-strings", "{input}", "{output}"}, strings.Fields(lines[2]))
	assert.Equal(t, strings.Index(lines[0], "COMMAND"), strings.Index(lines[1], "(built-in)"))
}

func TestCLIProgressReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewCLIProgressReporter(&buf, false)
	p.OnScanStart(1200, 2)
	p.OnBatchComplete("csharp", 1000, nil)
	p.OnBatchComplete("tsql", 200, errors.New("boom"))
	p.OnScanComplete(scan.Stats{Files: 1200, Skipped: 3, Batches: 2, Literals: 4321, Failed: 1, Duration: 1500 * time.Millisecond})

	out := buf.String()
	assert.Contains(t, out, "Scanning 1,200 files with 2 providers")
	assert.Contains(t, out, "Scan complete: 4,321 literals in 1.5s")
	assert.Contains(t, out, "Skipped: 3")
	assert.Contains(t, out, "Failed:  1 providers [tsql]")
}

func TestCLIProgressReporter_Quiet(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewCLIProgressReporter(&buf, true)
	p.OnScanStart(10, 1)
	p.OnBatchComplete("csharp", 10, nil)
	p.OnScanComplete(scan.Stats{Files: 10})

	assert.Empty(t, buf.String())
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", formatNumber(0))
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,000", formatNumber(1000))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	newLogger(&buf, false, false).Debug("hidden")
	assert.Empty(t, buf.String())

	newLogger(&buf, true, false).Debug("shown", "provider", "razor")
	assert.Contains(t, buf.String(), "level=DEBUG msg=shown provider=razor")

	buf.Reset()
	newLogger(&buf, false, true).Info("json", "provider", "tsql")
	assert.Contains(t, buf.String(), `"provider":"tsql"`)

	assert.False(t, newLogger(&buf, false, false).Enabled(t.Context(), slog.LevelDebug))
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "strings dev")
}

func TestWorkerCommand_Single(t *testing.T) {
	dir := makeProject(t, map[string]string{"a.cs": `var a = "A"; var b = $"B{a}";`})
	path := filepath.Join(dir, "a.cs")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"worker", "csharp", "--single", path})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		workerSingleFlag = ""
	})

	require.NoError(t, rootCmd.Execute())

	lits, err := record.DecodeAll(&buf)
	require.NoError(t, err)
	require.Len(t, lits, 2)
	assert.Equal(t, `"A"`, lits[0].Text)
	assert.Equal(t, "InterpolatedStringToken", lits[1].Tag2)
	assert.Equal(t, path, lits[0].Path)
}

func TestWorkerCommand_FileList(t *testing.T) {
	dir := makeProject(t, map[string]string{
		"a.sql":     "SELECT 'x'",
		"files.txt": "",
	})
	list := filepath.Join(dir, "files.txt")
	require.NoError(t, os.WriteFile(list, []byte(filepath.Join(dir, "a.sql")+"\n\n"), 0644))
	output := filepath.Join(dir, "out.txt")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"worker", "tsql", list, output})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "a.sql")

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	lits, err := record.DecodeAll(f)
	require.NoError(t, err)
	require.Len(t, lits, 1)
	assert.Equal(t, "'x'", lits[0].Text)
}
