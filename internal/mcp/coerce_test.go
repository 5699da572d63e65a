package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockArgumentGetter struct {
	args map[string]any
}

func (m *mockArgumentGetter) GetArguments() map[string]any {
	return m.args
}

func TestCoerceBindArguments(t *testing.T) {
	t.Parallel()

	t.Run("JSON string arrays", func(t *testing.T) {
		request := &mockArgumentGetter{
			args: map[string]any{
				"paths":    `["Views", "Db/Scripts"]`,
				"language": "razor",
				"limit":    "10",
			},
		}

		var result ScanRequest
		require.NoError(t, CoerceBindArguments(request, &result))

		assert.Equal(t, []string{"Views", "Db/Scripts"}, result.Paths)
		assert.Equal(t, "razor", result.Language)
		assert.Equal(t, 10, result.Limit)
	})

	t.Run("Already proper types", func(t *testing.T) {
		request := &mockArgumentGetter{
			args: map[string]any{
				"paths": []any{"src"},
				"limit": float64(25),
			},
		}

		var result ScanRequest
		require.NoError(t, CoerceBindArguments(request, &result))

		assert.Equal(t, []string{"src"}, result.Paths)
		assert.Equal(t, 25, result.Limit)
	})

	t.Run("Comma separated string", func(t *testing.T) {
		request := &mockArgumentGetter{
			args: map[string]any{"paths": "a,b"},
		}

		var result ScanRequest
		require.NoError(t, CoerceBindArguments(request, &result))
		assert.Equal(t, []string{"a", "b"}, result.Paths)
	})

	t.Run("Missing optional fields", func(t *testing.T) {
		request := &mockArgumentGetter{
			args: map[string]any{"path": "a.cs"},
		}

		var result ExtractRequest
		require.NoError(t, CoerceBindArguments(request, &result))
		assert.Equal(t, "a.cs", result.Path)
	})

	t.Run("Invalid number", func(t *testing.T) {
		request := &mockArgumentGetter{
			args: map[string]any{"limit": "lots"},
		}

		var result ScanRequest
		assert.Error(t, CoerceBindArguments(request, &result))
	})
}
