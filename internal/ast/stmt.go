package ast

import "github.com/cyrusattoun/covenant/internal/span"

// Block is an ordered sequence of statements, usable as a function body or
// nested inside `if`/`for`.
type Block struct {
	Statements []Statement
	SpanValue  span.Span
}

func (b *Block) Span() span.Span { return b.SpanValue }

// LetStmt is `let x = 5` or `let mut x: Int = 5`.
type LetStmt struct {
	Name      string
	Mutable   bool
	TypeAnnot Type // optional
	Value     Expression
	SpanValue span.Span
}

func (s *LetStmt) Span() span.Span { return s.SpanValue }
func (s *LetStmt) statementNode()  {}

// ReturnStmt is `return x` or a bare `return`.
type ReturnStmt struct {
	Value     Expression // optional
	SpanValue span.Span
}

func (s *ReturnStmt) Span() span.Span { return s.SpanValue }
func (s *ReturnStmt) statementNode()  {}

// ExprStmt is an expression used as a statement: `foo()`.
type ExprStmt struct {
	Expr      Expression
	SpanValue span.Span
}

func (s *ExprStmt) Span() span.Span { return s.SpanValue }
func (s *ExprStmt) statementNode()  {}

// ForStmt is `for x in items { ... }`.
type ForStmt struct {
	Binding   string
	Iterable  Expression
	Body      *Block
	SpanValue span.Span
}

func (s *ForStmt) Span() span.Span { return s.SpanValue }
func (s *ForStmt) statementNode()  {}

// Pattern is a match-arm or destructuring pattern.
type Pattern interface {
	Node
	patternNode()
}

// WildcardPattern is `_`.
type WildcardPattern struct {
	SpanValue span.Span
}

func (p *WildcardPattern) Span() span.Span { return p.SpanValue }
func (p *WildcardPattern) patternNode()     {}

// BindingPattern is a plain name binding: `x`.
type BindingPattern struct {
	Name      string
	SpanValue span.Span
}

func (p *BindingPattern) Span() span.Span { return p.SpanValue }
func (p *BindingPattern) patternNode()     {}

// LiteralPattern matches an exact literal value.
type LiteralPattern struct {
	Value     *Literal
	SpanValue span.Span
}

func (p *LiteralPattern) Span() span.Span { return p.SpanValue }
func (p *LiteralPattern) patternNode()     {}

// VariantPatternFields discriminates positional, named, or unit variant
// pattern shapes: `Some(x)`, `Error { code }`, `None`.
type VariantPatternFields struct {
	Positional []Pattern
	Named      []NamedPatternField
	IsUnit     bool
}

// NamedPatternField is one `name: pattern` entry of a record-shaped variant
// pattern.
type NamedPatternField struct {
	Name    string
	Pattern Pattern
}

// VariantPattern matches an enum variant, e.g. `Some(x)` or `Error { code }`.
type VariantPattern struct {
	Path      *TypePath
	Fields    VariantPatternFields
	SpanValue span.Span
}

func (p *VariantPattern) Span() span.Span { return p.SpanValue }
func (p *VariantPattern) patternNode()     {}
