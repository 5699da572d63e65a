package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-strings/internal/literal"
)

// workerEnv makes the test binary act as the strings binary, so scans
// started by tests can spawn real workers.
const workerEnv = "STRINGS_CLI_TEST_WORKER"

func TestMain(m *testing.M) {
	if os.Getenv(workerEnv) != "" {
		rootCmd.SetArgs(os.Args[1:])
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		os.Exit(0)
	}
	os.Setenv(workerEnv, "1")
	os.Exit(m.Run())
}

// makeProject writes files below a fresh project directory.
func makeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

// readJSONL decodes a JSON lines report.
func readJSONL(t *testing.T, data []byte) []literal.Literal {
	t.Helper()
	var lits []literal.Literal
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		var l literal.Literal
		require.NoError(t, json.Unmarshal(sc.Bytes(), &l))
		lits = append(lits, l)
	}
	require.NoError(t, sc.Err())
	return lits
}

func texts(lits []literal.Literal) []string {
	out := make([]string, len(lits))
	for i, l := range lits {
		out[i] = l.Text
	}
	return out
}
