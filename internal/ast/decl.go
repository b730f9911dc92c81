package ast

import "github.com/cyrusattoun/covenant/internal/span"

// ImportDecl is `import { foo, bar } from baz`.
type ImportDecl struct {
	Names     []string
	Source    string
	SpanValue span.Span
}

func (d *ImportDecl) Span() span.Span { return d.SpanValue }
func (d *ImportDecl) declarationNode() {}

// ModuleDecl is `module foo { ... }`; nested declarations get dotted names
// (`foo.bar`) when C2 extracts symbols.
type ModuleDecl struct {
	Name         string
	Declarations []Declaration
	SpanValue    span.Span
}

func (d *ModuleDecl) Span() span.Span { return d.SpanValue }
func (d *ModuleDecl) declarationNode() {}

// FieldDecl is one field of a struct, with an optional default value.
type FieldDecl struct {
	Name      string
	Type      Type
	Default   Expression // optional
	SpanValue span.Span
}

func (f *FieldDecl) Span() span.Span { return f.SpanValue }

// StructDecl is `struct User { ... }`, with optional generics.
type StructDecl struct {
	Name      string
	Generics  []string
	Fields    []*FieldDecl
	SpanValue span.Span
}

func (d *StructDecl) Span() span.Span { return d.SpanValue }
func (d *StructDecl) declarationNode() {}

// VariantFieldsKind discriminates unit / tuple / record-shaped enum
// variants.
type VariantFieldsKind int

const (
	VariantUnit VariantFieldsKind = iota
	VariantTuple
	VariantStruct
)

// VariantFields is the payload shape of one enum variant.
type VariantFields struct {
	Kind        VariantFieldsKind
	TupleTypes  []Type      // Kind == VariantTuple
	StructField []*FieldDecl // Kind == VariantStruct
}

// VariantDecl is one enum variant: `None`, `Some(T)`, or
// `Error { code: Int, message: String }`.
type VariantDecl struct {
	Name      string
	Fields    VariantFields
	SpanValue span.Span
}

func (v *VariantDecl) Span() span.Span { return v.SpanValue }

// EnumDecl is `enum Status { ... }`, with optional generics.
type EnumDecl struct {
	Name      string
	Generics  []string
	Variants  []*VariantDecl
	SpanValue span.Span
}

func (d *EnumDecl) Span() span.Span { return d.SpanValue }
func (d *EnumDecl) declarationNode() {}

// TypeAliasDecl is `type UserId = Int`.
type TypeAliasDecl struct {
	Name      string
	Generics  []string
	Type      Type
	SpanValue span.Span
}

func (d *TypeAliasDecl) Span() span.Span { return d.SpanValue }
func (d *TypeAliasDecl) declarationNode() {}

// Parameter is one function or extern parameter.
type Parameter struct {
	Name      string
	Type      Type
	SpanValue span.Span
}

// ImportClause is a function-level import clause that declares effects:
// the names imported from `source` become the function's forward-declared
// effect capabilities.
type ImportClause struct {
	Names     []string
	Source    string
	SpanValue span.Span
}

// FunctionDecl is `foo(x: Int) -> Int { ... }`, with optional generics,
// import clauses (declared effects), and an `ensures` predicate that is
// parsed but never enforced by the core (spec.md Open Question (c)).
type FunctionDecl struct {
	Name       string
	Generics   []string
	Params     []*Parameter
	ReturnType Type // optional
	Imports    []*ImportClause
	Ensures    Expression // optional, documentation-only
	Body       *Block
	SpanValue  span.Span
}

func (d *FunctionDecl) Span() span.Span { return d.SpanValue }
func (d *FunctionDecl) declarationNode() {}

// ExternDecl is `extern foo(...) -> T from "lib" effect [...]`.
type ExternDecl struct {
	Name       string
	Params     []*Parameter
	ReturnType Type
	Source     string
	Effects    []string
	SpanValue  span.Span
}

func (d *ExternDecl) Span() span.Span { return d.SpanValue }
func (d *ExternDecl) declarationNode() {}

// ColumnTypeKind enumerates the database-specific column types.
type ColumnTypeKind int

const (
	ColumnInt ColumnTypeKind = iota
	ColumnString
	ColumnBool
	ColumnFloat
	ColumnDateTime
	ColumnBytes
	ColumnReference
)

// ColumnType is a column's storage type; Kind == ColumnReference carries a
// foreign-key target in RefTarget.
type ColumnType struct {
	Kind      ColumnTypeKind
	RefTarget string
}

// ColumnAttrs are the flags on a column declaration.
type ColumnAttrs struct {
	Primary  bool
	Unique   bool
	Nullable bool
	Auto     bool
}

// ColumnDecl is one column of a table.
type ColumnDecl struct {
	Name      string
	Type      ColumnType
	Attrs     ColumnAttrs
	SpanValue span.Span
}

func (c *ColumnDecl) Span() span.Span { return c.SpanValue }

// TableConstraintKind enumerates table-level constraints.
type TableConstraintKind int

const (
	ConstraintUnique TableConstraintKind = iota
	ConstraintIndex
	ConstraintForeign
)

// TableConstraint is a table-level constraint: Unique/Index name column
// lists, or a Foreign key naming its local Column and TypePath Target.
type TableConstraint struct {
	Kind    TableConstraintKind
	Columns []string // Unique, Index
	Column  string   // Foreign
	Target  *TypePath
}

// TableDecl is one table inside a database declaration.
type TableDecl struct {
	Name        string
	Columns     []*ColumnDecl
	Constraints []TableConstraint
	SpanValue   span.Span
}

func (t *TableDecl) Span() span.Span { return t.SpanValue }

// DatabaseDecl is `database app_db { ... }`.
type DatabaseDecl struct {
	Name       string
	Connection string // optional
	Tables     []*TableDecl
	SpanValue  span.Span
}

func (d *DatabaseDecl) Span() span.Span { return d.SpanValue }
func (d *DatabaseDecl) declarationNode() {}
