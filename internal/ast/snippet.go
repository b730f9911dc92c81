package ast

import "github.com/cyrusattoun/covenant/internal/span"

// SnippetKind enumerates the kinds of top-level snippet IR unit.
type SnippetKind int

const (
	SnippetFunction SnippetKind = iota
	SnippetStruct
	SnippetEnum
	SnippetModule
	SnippetDatabase
	SnippetExtern
	SnippetExternAbstract
	SnippetExternImpl
	SnippetTest
	SnippetData
)

func (k SnippetKind) String() string {
	switch k {
	case SnippetFunction:
		return "fn"
	case SnippetStruct:
		return "struct"
	case SnippetEnum:
		return "enum"
	case SnippetModule:
		return "module"
	case SnippetDatabase:
		return "database"
	case SnippetExtern:
		return "extern"
	case SnippetExternAbstract:
		return "extern-abstract"
	case SnippetExternImpl:
		return "extern-impl"
	case SnippetTest:
		return "test"
	case SnippetData:
		return "data"
	default:
		return "unknown"
	}
}

// RelationRef is a declared or inverse relation edge to another snippet by
// its dotted ID.
type RelationRef struct {
	Target       string
	RelationType string
}

// Signature captures a snippet's externally-visible shape: parameter and
// return types (as written, pre-resolution) and generics.
type Signature struct {
	Generics   []string
	Params     []*Parameter
	ReturnType Type // optional
}

// StepKind enumerates the SSA-like step forms a snippet body is made of.
type StepKind int

const (
	StepBind StepKind = iota
	StepCompute
	StepCall
	StepIf
	StepFor
	StepMatch
	StepQuery
	StepInsert
	StepUpdate
	StepDelete
	StepReturn
)

// HandleArm is one `Err(e) => ...` arm attached to a StepCall's optional
// error handler.
type HandleArm struct {
	Pattern Pattern
	Body    []*Step
}

// KeyedArg is one `name: value` call argument in snippet-IR form, where
// "value" is a binding name (an output_binding from a prior step) rather
// than a nested expression.
type KeyedArg struct {
	Name    string
	Binding string
}

// Step is one SSA-style assignment inside a snippet body. OutputBinding is
// either a fresh name or "_" to discard the result.
type Step struct {
	ID            string
	Kind          StepKind
	OutputBinding string
	SpanValue     span.Span

	// StepBind
	BindLiteral *Literal // mutually exclusive with BindFrom
	BindFrom    string   // existing variable name

	// StepCompute
	ComputeOp     BinaryOp
	ComputeUnary  *UnaryOp // non-nil for unary compute steps
	ComputeInputs []string // variable names feeding the op, left-to-right

	// StepCall
	CallTarget string // callee snippet ID
	CallArgs   []KeyedArg
	HandleArm  *HandleArm // optional

	// StepIf
	IfCond string
	IfThen []*Step
	IfElse []*Step // optional

	// StepFor
	ForBinding string
	ForOver    string
	ForBody    []*Step

	// StepMatch
	MatchOn   string
	MatchArms []StepMatchArm

	// StepQuery / StepInsert / StepUpdate / StepDelete
	DBTarget    *TypePath
	DBBody      *QueryBody
	DBValue     string // binding holding the value for insert
	DBAssigns   []KeyedArg
	DBCondition string // binding holding a boolean condition

	// StepReturn
	ReturnValue string // binding name, empty means bare return
}

func (s *Step) Span() span.Span { return s.SpanValue }

// StepMatchArm is one arm of a StepMatch.
type StepMatchArm struct {
	Pattern Pattern
	Body    []*Step
}

// Snippet is a top-level IR unit: the unit of identity in the symbol graph.
type Snippet struct {
	ID             string
	Kind           SnippetKind
	DeclaredEffect []string
	Requires       []string
	Tests          []string
	Covers         []string // for test snippets: requirements covered
	Relations      []RelationRef
	Signature      Signature
	Body           []*Step

	// Set only for SnippetExternImpl.
	Implements     string
	TargetPlatform string

	// Set only for SnippetStruct / SnippetEnum, to let C2/C4 extract field
	// and variant type references without re-parsing Declarations.
	StructFields []*FieldDecl
	EnumVariants []*VariantDecl

	// Set only for SnippetExtern / SnippetExternAbstract.
	ExternSource string

	// Set only for SnippetDatabase.
	Tables []*TableDecl

	SpanValue span.Span
}

func (s *Snippet) Span() span.Span { return s.SpanValue }
