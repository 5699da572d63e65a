// Package typescript finds user facing string literals in TypeScript and
// TSX sources using the tree-sitter grammars.
package typescript

import (
	"context"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/mvp-joe/project-strings/internal/literal"
)

// Language is tag1 of every literal this package reports.
const Language = "typescript"

// Tag2 values, named after the TypeScript compiler's syntax kinds.
const (
	KindStringLiteral        = "StringLiteral"
	KindTemplateExpression   = "TemplateExpression"
	KindNoSubstitutionString = "NoSubstitutionTemplateLiteral"
)

// excludedAncestors suppress every literal below them: property access,
// element access and object property assignment keys and values.
var excludedAncestors = map[string]bool{
	"member_expression":    true,
	"subscript_expression": true,
	"pair":                 true,
}

// excludedParents suppress literals that are a direct child of them.
var excludedParents = map[string]bool{
	"literal_type":            true,
	"property_signature":      true,
	"public_field_definition": true,
	"method_definition":       true,
	"method_signature":        true,
	"module":                  true,
	"internal_module":         true,
	"import_statement":        true,
	"export_statement":        true,
	"expression_statement":    true,
}

// Extractor implements literal.Extractor for one TypeScript dialect.
type Extractor struct {
	language *sitter.Language
}

// New returns an extractor for .ts sources.
func New() *Extractor {
	return &Extractor{language: sitter.NewLanguage(typescript.LanguageTypescript())}
}

// NewTSX returns an extractor for .tsx sources.
func NewTSX() *Extractor {
	return &Extractor{language: sitter.NewLanguage(typescript.LanguageTSX())}
}

// Search parses source and returns the reportable string and template
// literals in document order. It fails with a *literal.ParseError when
// tree-sitter cannot produce a tree.
func (e *Extractor) Search(ctx context.Context, source string) ([]literal.Literal, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(e.language); err != nil {
		return nil, &literal.ParseError{Language: Language, Reason: err.Error()}
	}

	src := []byte(source)
	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, &literal.ParseError{Language: Language, Reason: "parser returned no tree"}
	}
	defer tree.Close()

	var out []literal.Literal
	var walkErr error
	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		if walkErr = ctx.Err(); walkErr != nil {
			return false
		}
		kind, ok := literalKind(n)
		if ok && reportable(n) {
			start, end := int(n.StartByte()), int(n.EndByte())
			pos := n.StartPosition()
			out = append(out, literal.Literal{
				StartIndex: start,
				EndIndex:   end,
				Line:       int(pos.Row),
				Character:  int(pos.Column),
				Text:       source[start:end],
				Tag1:       Language,
				Tag2:       kind,
			})
		}
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return out, nil
}

// literalKind classifies n when it is a string or template literal.
// The anonymous "string" keyword of predefined_type is not a literal.
func literalKind(n *sitter.Node) (string, bool) {
	if !n.IsNamed() {
		return "", false
	}
	switch n.Kind() {
	case "string":
		return KindStringLiteral, true
	case "template_string":
		if findChildByKind(n, "template_substitution") != nil {
			return KindTemplateExpression, true
		}
		return KindNoSubstitutionString, true
	}
	return "", false
}

// reportable applies the parent and ancestor filters.
func reportable(n *sitter.Node) bool {
	parent := n.Parent()
	if parent != nil && excludedParents[parent.Kind()] {
		return false
	}
	for a := parent; a != nil; a = a.Parent() {
		if excludedAncestors[a.Kind()] {
			return false
		}
	}
	return true
}

// walkTree visits node and its descendants in document order. Returning
// false from visitor skips the node's children.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visitor(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		walkTree(node.Child(i), visitor)
	}
}

func findChildByKind(node *sitter.Node, kind string) *sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}
