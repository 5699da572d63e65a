// Package literal defines the extraction contract shared by every language
// extractor: the Literal record, source positions and the Extractor interface.
package literal

import "context"

// Literal is one piece of literal text found in a source file.
//
// StartIndex and EndIndex are byte offsets into the source the extractor was
// given, and Text is always source[StartIndex:EndIndex]. Line and Character
// are zero-based and locate StartIndex.
type Literal struct {
	Path       string `json:"path"`
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
	Line       int    `json:"line"`
	Character  int    `json:"character"`
	Text       string `json:"text"`
	Tag1       string `json:"tag1"`
	Tag2       string `json:"tag2"`
	Tag3       string `json:"tag3"`
}

// Extractor finds literals in one complete source text.
//
// Results are returned in non-decreasing StartIndex order. Tolerant
// extractors never fail on malformed trailing input; strict ones return an
// error wrapping ErrParseFailure.
type Extractor interface {
	Search(ctx context.Context, source string) ([]Literal, error)
}

// ExtractorFunc adapts a plain function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, source string) ([]Literal, error)

// Search calls f(ctx, source).
func (f ExtractorFunc) Search(ctx context.Context, source string) ([]Literal, error) {
	return f(ctx, source)
}

// WithPath sets Path on every literal and returns the same slice.
func WithPath(lits []Literal, path string) []Literal {
	for i := range lits {
		lits[i].Path = path
	}
	return lits
}

// Shift moves the classification one level down and sets tag1 to outer.
// It is used when a nested extractor reports into a host language.
func (l Literal) Shift(outer string) Literal {
	l.Tag3 = l.Tag2
	l.Tag2 = l.Tag1
	l.Tag1 = outer
	return l
}
