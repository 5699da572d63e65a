// Package razor extracts literal text from Razor views: runs of markup
// text, attribute values and the string literals of embedded C#.
package razor

import (
	"context"

	"github.com/mvp-joe/project-strings/internal/literal"
)

// Language is tag1 of every literal reported for a Razor document.
const Language = "razor"

// Extractor finds literals in Razor documents. Code fragments are delegated
// to a C# extractor and reported with their classification shifted under
// Language.
type Extractor struct {
	code literal.Extractor
}

// New returns a Razor extractor that delegates embedded code to code.
func New(code literal.Extractor) *Extractor {
	return &Extractor{code: code}
}

// Search implements literal.Extractor. Results are in document order.
func (e *Extractor) Search(ctx context.Context, source string) ([]literal.Literal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fragments := segment(source)
	m := newMachine(e.code, excludedLines(source))
	return m.run(ctx, fragments)
}
