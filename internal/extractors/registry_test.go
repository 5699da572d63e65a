package extractors

import (
	"context"
	"testing"

	"github.com/mvp-joe/project-strings/internal/extractors/typescript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"csharp", "razor", "tsql", "typescript"}, Names())
}

func TestLookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		src  string
		tag1 string
	}{
		{"csharp", "a.cs", `var s = "x";`, "csharp"},
		{"razor", "a.cshtml", "<p>Hi</p>", "razor"},
		{"tsql", "a.sql", "SELECT 'x'", "tsql"},
		{"typescript", "a.ts", `const s: string = "x";`, "typescript"},
		{"typescript", "a.TSX", `const e = <div title="x" />;`, "typescript"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			factory, ok := Lookup(tt.name)
			require.True(t, ok)

			lits, err := factory(tt.path).Search(context.Background(), tt.src)
			require.NoError(t, err)
			require.NotEmpty(t, lits)
			assert.Equal(t, tt.tag1, lits[0].Tag1)
		})
	}
}

func TestLookup_TSXDialect(t *testing.T) {
	t.Parallel()

	factory, ok := Lookup(typescript.Language)
	require.True(t, ok)

	assert.IsType(t, &typescript.Extractor{}, factory("view.tsx"))
}

func TestLookup_Unknown(t *testing.T) {
	t.Parallel()

	_, ok := Lookup("cobol")
	assert.False(t, ok)
}
