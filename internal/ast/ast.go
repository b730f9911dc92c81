// Package ast defines the Covenant AST / snippet-IR data model: the
// declarations, expressions, statements, types, and snippet steps that a
// parser (an external collaborator) produces and that C2-C7 consume.
//
// Nodes never mutate after construction; every pass in internal/pipeline
// produces a new artifact rather than editing the AST in place.
package ast

import "github.com/cyrusattoun/covenant/internal/span"

// Node is the base interface every AST node implements.
type Node interface {
	Span() span.Span
}

// Statement is a Node that appears in a Block.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that evaluates to a value.
type Expression interface {
	Node
	expressionNode()
}

// Type is a type expression as written in source (pre type-resolution).
type Type interface {
	Node
	typeNode()
}

// Declaration is a top-level legacy-mode item.
type Declaration interface {
	Node
	declarationNode()
}

// Program is the root node produced by the parser. It is either legacy
// declarations (classical source-file syntax) or a flat list of snippets
// (machine-IR syntax); the two modes are mutually exclusive and C2 walks
// either uniformly.
type Program struct {
	Kind         ProgramKind
	Declarations []Declaration // populated when Kind == ProgramLegacy
	Snippets     []*Snippet    // populated when Kind == ProgramSnippets
	SpanValue    span.Span
}

// ProgramKind discriminates Program's two source syntaxes.
type ProgramKind int

const (
	ProgramLegacy ProgramKind = iota
	ProgramSnippets
)

func (p *Program) Span() span.Span { return p.SpanValue }

// IsSnippets reports whether this program uses the machine-IR snippet
// syntax rather than legacy declarations.
func (p *Program) IsSnippets() bool { return p.Kind == ProgramSnippets }
