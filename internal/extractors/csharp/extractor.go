// Package csharp finds string literal tokens in C# source.
//
// It is a tolerant token scanner, not a parser: comments, character
// literals and preprocessor lines are skipped, and a string that is still
// open at the end of its line (or of the input, for verbatim and raw
// strings) produces no result.
package csharp

import (
	"context"

	"github.com/mvp-joe/project-strings/internal/literal"
)

const (
	// Language is tag1 of every literal this package reports.
	Language = "csharp"

	// KindString is tag2 for regular, verbatim and raw string literals.
	KindString = "StringLiteralToken"

	// KindInterpolated is tag2 for interpolated string literals.
	KindInterpolated = "InterpolatedStringToken"
)

// Extractor implements literal.Extractor for C#.
type Extractor struct{}

// New returns a C# extractor.
func New() *Extractor {
	return &Extractor{}
}

// Search returns every string literal token of source in order.
func (e *Extractor) Search(ctx context.Context, source string) ([]literal.Literal, error) {
	lines := literal.NewLines(source)
	var out []literal.Literal

	s := scanner{src: source, atLineStart: true}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tok, ok := s.next()
		if !ok {
			break
		}

		pos := lines.Position(tok.start)
		out = append(out, literal.Literal{
			StartIndex: tok.start,
			EndIndex:   tok.end,
			Line:       pos.Line,
			Character:  pos.Column,
			Text:       source[tok.start:tok.end],
			Tag1:       Language,
			Tag2:       tok.kind,
		})
	}
	return out, nil
}
