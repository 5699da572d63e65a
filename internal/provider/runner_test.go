package provider_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mvp-joe/project-strings/internal/cache"
	"github.com/mvp-joe/project-strings/internal/provider"
	"github.com/mvp-joe/project-strings/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWorkerEnv switches the test binary into a worker process. Its value
// selects the behaviour.
const fakeWorkerEnv = "STRINGS_FAKE_WORKER"

func TestMain(m *testing.M) {
	if mode := os.Getenv(fakeWorkerEnv); mode != "" {
		os.Exit(fakeWorker(mode, os.Args[1:]))
	}
	os.Exit(m.Run())
}

// fakeWorker serves "worker <name> <input> <output>".
func fakeWorker(mode string, args []string) int {
	if len(args) != 4 || args[0] != "worker" {
		fmt.Fprintf(os.Stderr, "unexpected arguments %q\n", args)
		return 2
	}
	switch mode {
	case "ok":
		fmt.Fprintln(os.Stderr, "warming up")
		if err := worker.Run(context.Background(), args[1], args[2], args[3], os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case "fail":
		fmt.Fprintln(os.Stderr, "boom")
		return 3
	case "garbage":
		if err := os.WriteFile(args[3], []byte("12;x"), 0o644); err != nil {
			return 1
		}
		return 0
	case "hang":
		time.Sleep(time.Minute)
		return 0
	}
	return 2
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func fakeRunner(t *testing.T, mode string, log *bytes.Buffer) *provider.WorkerRunner {
	t.Helper()
	return &provider.WorkerRunner{
		Executable: os.Args[0],
		TempDir:    t.TempDir(),
		Env:        []string{fakeWorkerEnv + "=" + mode},
		Logger:     testLogger(log),
	}
}

func TestInProcessRunner(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.cs", `var a = "A";`)
	b := writeFile(t, dir, "b.cs", `var b = "B";`)

	r := provider.NewInProcessRunner(nil)
	lits, err := r.Run(context.Background(), provider.Provider{Name: "csharp"}, []string{a, b})
	require.NoError(t, err)

	require.Len(t, lits, 2)
	assert.Equal(t, a, lits[0].Path)
	assert.Equal(t, `"A"`, lits[0].Text)
	assert.Equal(t, b, lits[1].Path)
}

func TestInProcessRunner_Cache(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.cs", `var a = "A";`)

	c, err := cache.New(0)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	var log bytes.Buffer
	r := provider.NewInProcessRunner(testLogger(&log))
	r.Cache = c
	p := provider.Provider{Name: "csharp"}

	first, err := r.Run(context.Background(), p, []string{a})
	require.NoError(t, err)
	assert.NotContains(t, log.String(), "msg=cached")

	second, err := r.Run(context.Background(), p, []string{a})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, log.String(), "msg=cached")
}

func TestInProcessRunner_CacheSeesChanges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.cs", `var a = "A";`)

	c, err := cache.New(0)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	r := provider.NewInProcessRunner(nil)
	r.Cache = c
	p := provider.Provider{Name: "csharp"}

	_, err = r.Run(context.Background(), p, []string{a})
	require.NoError(t, err)

	writeFile(t, dir, "a.cs", `var a = "Changed";`)
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(a, later, later))

	lits, err := r.Run(context.Background(), p, []string{a})
	require.NoError(t, err)
	require.Len(t, lits, 1)
	assert.Equal(t, `"Changed"`, lits[0].Text)
}

func TestInProcessRunner_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.cs")
	r := provider.NewInProcessRunner(nil)

	_, err := r.Run(context.Background(), provider.Provider{Name: "csharp"}, []string{missing})
	var perr *provider.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "csharp", perr.Provider)
	assert.Equal(t, []string{missing}, perr.Files)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = r.Run(context.Background(), provider.Provider{Name: "cobol"}, nil)
	assert.ErrorIs(t, err, provider.ErrInvalidProvider)

	_, err = r.Run(context.Background(), provider.Provider{Name: "csharp", Command: "x"}, nil)
	assert.ErrorIs(t, err, provider.ErrInvalidProvider)
}

func TestWorkerRunner_BuiltIn(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.cs", `var a = "A";`)
	b := writeFile(t, dir, "b.cs", "var b = \"B1\";\nvar c = \"B2\";")

	var log bytes.Buffer
	r := fakeRunner(t, "ok", &log)
	lits, err := r.Run(context.Background(), provider.Provider{Name: "csharp"}, []string{a, b})
	require.NoError(t, err)

	require.Len(t, lits, 3)
	assert.Equal(t, a, lits[0].Path)
	assert.Equal(t, `"A"`, lits[0].Text)
	assert.Equal(t, `"B2"`, lits[2].Text)
	assert.Equal(t, 1, lits[2].Line)

	out := log.String()
	assert.Contains(t, out, "provider=csharp")
	assert.Contains(t, out, "stream=stderr")
	assert.Contains(t, out, "warming up")
	assert.Contains(t, out, a)

	entries, err := os.ReadDir(r.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "exchange files are removed")
}

func TestWorkerRunner_ExternalCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFile(t, dir, "q.sql", "SELECT 'hello', '2020-01-01'")

	var log bytes.Buffer
	r := fakeRunner(t, "ok", &log)
	p := provider.Provider{
		Name:       "queries",
		Extensions: []string{".sql"},
		Command:    os.Args[0],
		Args:       []string{"worker", "tsql", "{input}", "{output}"},
	}

	lits, err := r.Run(context.Background(), p, []string{a})
	require.NoError(t, err)
	require.Len(t, lits, 1)
	assert.Equal(t, "'hello'", lits[0].Text)
	assert.Equal(t, "tsql", lits[0].Tag1)
}

func TestWorkerRunner_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode   string
		target error
	}{
		{"fail", provider.ErrWorkerFailed},
		{"garbage", nil},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			t.Parallel()

			var log bytes.Buffer
			r := fakeRunner(t, tt.mode, &log)
			_, err := r.Run(context.Background(), provider.Provider{Name: "csharp"}, []string{"a.cs"})

			var perr *provider.ProviderError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, "csharp", perr.Provider)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestWorkerRunner_FailureLogsStderr(t *testing.T) {
	t.Parallel()

	var log bytes.Buffer
	r := fakeRunner(t, "fail", &log)
	_, err := r.Run(context.Background(), provider.Provider{Name: "razor"}, []string{"a.cshtml"})

	require.Error(t, err)
	assert.Contains(t, log.String(), "boom")
	assert.Contains(t, log.String(), "provider=razor")
}

func TestWorkerRunner_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	var log bytes.Buffer
	r := fakeRunner(t, "hang", &log)
	start := time.Now()
	_, err := r.Run(ctx, provider.Provider{Name: "csharp"}, []string{"a.cs"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 30*time.Second)
}
