// Package symbols implements C2 (forward extraction) and C3 (backward
// resolution): the two-pass builder for the Covenant symbol graph.
package symbols

import (
	"github.com/cyrusattoun/covenant/internal/ast"
	"github.com/cyrusattoun/covenant/internal/span"
	"github.com/cyrusattoun/covenant/internal/symbolid"
)

// SymbolID aliases the shared dense-index type.
type SymbolID = symbolid.SymbolID

// Kind classifies a symbol, unifying legacy Declaration kinds and
// snippet-IR SnippetKinds into one closed set.
type Kind int

const (
	KindFunction Kind = iota
	KindStruct
	KindEnum
	KindModule
	KindDatabase
	KindExtern
	KindExternAbstract
	KindExternImpl
	KindTest
	KindData
	KindTypeAlias
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindModule:
		return "module"
	case KindDatabase:
		return "database"
	case KindExtern:
		return "extern"
	case KindExternAbstract:
		return "extern-abstract"
	case KindExternImpl:
		return "extern-impl"
	case KindTest:
		return "test"
	case KindData:
		return "data"
	case KindTypeAlias:
		return "type-alias"
	default:
		return "unknown"
	}
}

// FromSnippetKind maps ast.SnippetKind to the unified Kind enum.
func FromSnippetKind(k ast.SnippetKind) Kind {
	switch k {
	case ast.SnippetFunction:
		return KindFunction
	case ast.SnippetStruct:
		return KindStruct
	case ast.SnippetEnum:
		return KindEnum
	case ast.SnippetModule:
		return KindModule
	case ast.SnippetDatabase:
		return KindDatabase
	case ast.SnippetExtern:
		return KindExtern
	case ast.SnippetExternAbstract:
		return KindExternAbstract
	case ast.SnippetExternImpl:
		return KindExternImpl
	case ast.SnippetTest:
		return KindTest
	case ast.SnippetData:
		return KindData
	default:
		return KindFunction
	}
}

// RelationRef mirrors ast.RelationRef for storage on a resolved symbol.
type RelationRef struct {
	Target       string
	RelationType string
}

// Info is one node of the symbol graph: a SymbolID plus forward/backward
// reference sets, matching spec.md §3's SymbolInfo exactly.
type Info struct {
	ID   SymbolID
	Name string
	Kind Kind
	Span span.Span

	// === Forward references (Pass 1 / C2) ===
	Calls           map[string]struct{}
	References      map[string]struct{}
	DeclaredEffects []string
	RelationsTo     []RelationRef

	// === Backward references (Pass 2 / C3) ===
	CalledBy      map[SymbolID]struct{}
	ReferencedBy  map[SymbolID]struct{}
	RelationsFrom []RelationRef

	// === Resolution state ===
	UnresolvedCalls      map[string]struct{}
	UnresolvedReferences map[string]struct{}

	// === Platform abstraction (extern-impl only) ===
	Implements     string
	TargetPlatform string

	// Requirements/tests/covers, carried through from the snippet so C8
	// can project them without re-walking the AST.
	Requirements []string
	Tests        []string
	Covers       []string

	// ResolutionState tracks the per-symbol lifecycle from spec.md §4.8.
	ResolutionState ResolutionState
}

// ResolutionState is the per-symbol state machine from spec.md §4.8.
type ResolutionState int

const (
	StateFresh ResolutionState = iota
	StateForwardPopulated
	StateBackwardResolved
	StateUnresolved
)

// NewInfo creates a fresh symbol with empty reference sets. ID is assigned
// by Graph.Insert, not here.
func NewInfo(name string, kind Kind, sp span.Span) *Info {
	return &Info{
		ID:                   symbolid.Invalid,
		Name:                 name,
		Kind:                 kind,
		Span:                 sp,
		Calls:                map[string]struct{}{},
		References:           map[string]struct{}{},
		CalledBy:             map[SymbolID]struct{}{},
		ReferencedBy:         map[SymbolID]struct{}{},
		UnresolvedCalls:      map[string]struct{}{},
		UnresolvedReferences: map[string]struct{}{},
		ResolutionState:      StateFresh,
	}
}

// IsCallable reports whether this symbol can appear in call position.
func (s *Info) IsCallable() bool {
	return s.Kind == KindFunction || s.Kind == KindExtern || s.Kind == KindExternAbstract
}

// IsType reports whether this symbol defines a type.
func (s *Info) IsType() bool {
	return s.Kind == KindStruct || s.Kind == KindEnum
}

// HasUnresolved reports whether any forward reference from this symbol
// failed to resolve in Pass 2.
func (s *Info) HasUnresolved() bool {
	return len(s.UnresolvedCalls) > 0 || len(s.UnresolvedReferences) > 0
}

// AddCall records a forward call-reference by callee name.
func (s *Info) AddCall(name string) { s.Calls[name] = struct{}{} }

// AddReference records a forward type-reference by name.
func (s *Info) AddReference(name string) { s.References[name] = struct{}{} }
