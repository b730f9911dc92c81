// Package pipeline composes C2-C7 into a single ordered run over a
// Program, the way funxy's internal/pipeline composes its own lexer,
// parser, and semantic-analyzer processors into one Pipeline.
package pipeline

import (
	"github.com/cyrusattoun/covenant/internal/ast"
	"github.com/cyrusattoun/covenant/internal/checker"
	"github.com/cyrusattoun/covenant/internal/diagnostics"
	"github.com/cyrusattoun/covenant/internal/effects"
	"github.com/cyrusattoun/covenant/internal/ir"
	"github.com/cyrusattoun/covenant/internal/symbols"
	"github.com/cyrusattoun/covenant/internal/typesystem"
)

// Stage tracks the pipeline state machine from spec.md §4.8.
type Stage int

const (
	StageParsed Stage = iota
	StageExtracted
	StageResolved
	StageTyped
	StageEffectChecked
	StageInvariantValidated
	StageLowered
)

func (s Stage) String() string {
	switch s {
	case StageParsed:
		return "parsed"
	case StageExtracted:
		return "extracted"
	case StageResolved:
		return "resolved"
	case StageTyped:
		return "typed"
	case StageEffectChecked:
		return "effect-checked"
	case StageInvariantValidated:
		return "invariant-validated"
	case StageLowered:
		return "lowered"
	default:
		return "unknown"
	}
}

// Context threads every pass's output through the pipeline, the way
// funxy's PipelineContext carries TokenStream/AstRoot/SymbolTable/TypeMap
// across its own processors.
type Context struct {
	Program *ast.Program
	Stage   Stage

	Graph     *symbols.Graph
	Index     *checker.Index
	ExprTypes map[ast.Expression]typesystem.ResolvedType
	Bindings  map[string]typesystem.ResolvedType
	Closures  effects.Closures
	Lowered   map[string]*ir.Function

	Errors []*diagnostics.DiagnosticError
}

// NewContext seeds a fresh Context from an already-parsed Program; parsing
// itself is the external parser collaborator's job (spec.md §6), so this
// pipeline starts one stage in.
func NewContext(program *ast.Program) *Context {
	return &Context{Program: program, Stage: StageParsed}
}

// HasHardError reports whether any accumulated diagnostic blocks further
// advancement.
func (c *Context) HasHardError() bool {
	return diagnostics.HasHardError(c.Errors)
}

// SortedErrors returns the accumulated diagnostics in the deterministic
// (span, subject, code) order spec.md §5 requires before emission.
func (c *Context) SortedErrors() []*diagnostics.DiagnosticError {
	return diagnostics.SortBySpan(c.Errors)
}
