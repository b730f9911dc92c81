package ast

import "github.com/cyrusattoun/covenant/internal/span"

// TypePath is a (possibly dotted) path to a named type, with optional
// generic arguments: `User`, `shapes.Circle`, `List<Int>`.
type TypePath struct {
	Segments  []string
	Generics  []Type
	SpanValue span.Span
}

func (tp *TypePath) Span() span.Span { return tp.SpanValue }

// Name returns the final path segment, e.g. "Circle" for "shapes.Circle".
func (tp *TypePath) Name() string {
	if len(tp.Segments) == 0 {
		return ""
	}
	return tp.Segments[len(tp.Segments)-1]
}

// NamedType is a simple or generic named type: `Int`, `User`, `List<T>`.
type NamedType struct {
	Path      *TypePath
	SpanValue span.Span
}

func (t *NamedType) Span() span.Span { return t.SpanValue }
func (t *NamedType) typeNode()       {}

// OptionalType is `T?`.
type OptionalType struct {
	Inner     Type
	SpanValue span.Span
}

func (t *OptionalType) Span() span.Span { return t.SpanValue }
func (t *OptionalType) typeNode()       {}

// ListType is `T[]`.
type ListType struct {
	Element   Type
	SpanValue span.Span
}

func (t *ListType) Span() span.Span { return t.SpanValue }
func (t *ListType) typeNode()       {}

// UnionType is `A | B | C` (at least two members).
type UnionType struct {
	Members   []Type
	SpanValue span.Span
}

func (t *UnionType) Span() span.Span { return t.SpanValue }
func (t *UnionType) typeNode()       {}

// TupleType is `(A, B)`.
type TupleType struct {
	Elements  []Type
	SpanValue span.Span
}

func (t *TupleType) Span() span.Span { return t.SpanValue }
func (t *TupleType) typeNode()       {}

// FunctionType is `(A, B) -> C`.
type FunctionType struct {
	Params    []Type
	Return    Type
	SpanValue span.Span
}

func (t *FunctionType) Span() span.Span { return t.SpanValue }
func (t *FunctionType) typeNode()       {}

// FieldType is one field of an anonymous struct type.
type FieldType struct {
	Name      string
	Type      Type
	SpanValue span.Span
}

func (f *FieldType) Span() span.Span { return f.SpanValue }

// StructType is an anonymous struct type: `{ name: String, age: Int }`.
type StructType struct {
	Fields    []*FieldType
	SpanValue span.Span
}

func (t *StructType) Span() span.Span { return t.SpanValue }
func (t *StructType) typeNode()       {}
