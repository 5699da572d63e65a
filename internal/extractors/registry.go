// Package extractors binds provider names to the built-in extractors.
package extractors

import (
	"sort"
	"strings"

	"github.com/mvp-joe/project-strings/internal/extractors/csharp"
	"github.com/mvp-joe/project-strings/internal/extractors/razor"
	"github.com/mvp-joe/project-strings/internal/extractors/tsql"
	"github.com/mvp-joe/project-strings/internal/extractors/typescript"
	"github.com/mvp-joe/project-strings/internal/literal"
)

// Factory returns the extractor for one source file. Some languages pick a
// dialect by the file's extension.
type Factory func(path string) literal.Extractor

var builtins = map[string]Factory{
	csharp.Language: func(string) literal.Extractor {
		return csharp.New()
	},
	razor.Language: func(string) literal.Extractor {
		return razor.New(csharp.New())
	},
	tsql.Language: func(string) literal.Extractor {
		return tsql.New()
	},
	typescript.Language: func(path string) literal.Extractor {
		if strings.HasSuffix(strings.ToLower(path), ".tsx") {
			return typescript.NewTSX()
		}
		return typescript.New()
	},
}

// Lookup returns the factory of the built-in extractor called name.
func Lookup(name string) (Factory, bool) {
	f, ok := builtins[name]
	return f, ok
}

// Names returns the names of all built-in extractors in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
