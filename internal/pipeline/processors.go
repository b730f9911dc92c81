package pipeline

import (
	"github.com/cyrusattoun/covenant/internal/checker"
	"github.com/cyrusattoun/covenant/internal/effects"
	"github.com/cyrusattoun/covenant/internal/invariants"
	"github.com/cyrusattoun/covenant/internal/ir"
	"github.com/cyrusattoun/covenant/internal/symbols"
)

// ExtractProcessor runs C2: building the forward-populated symbol graph.
type ExtractProcessor struct{}

func (p *ExtractProcessor) Process(ctx *Context) *Context {
	graph, errs := symbols.Extract(ctx.Program)
	ctx.Graph = graph
	ctx.Errors = append(ctx.Errors, errs...)
	ctx.Stage = StageExtracted
	return ctx
}

// ResolveProcessor runs C3: backfilling called_by/referenced_by/
// relations_from onto the graph C2 produced.
type ResolveProcessor struct{}

func (p *ResolveProcessor) Process(ctx *Context) *Context {
	errs := symbols.Resolve(ctx.Graph)
	ctx.Errors = append(ctx.Errors, errs...)
	ctx.Stage = StageResolved
	return ctx
}

// CheckProcessor runs C4: type resolution and checking.
type CheckProcessor struct{}

func (p *CheckProcessor) Process(ctx *Context) *Context {
	ctx.Index = checker.BuildIndex(ctx.Program, ctx.Graph)
	exprTypes, bindings, errs := checker.Check(ctx.Program, ctx.Graph)
	ctx.ExprTypes = exprTypes
	ctx.Bindings = bindings
	ctx.Errors = append(ctx.Errors, errs...)
	ctx.Stage = StageTyped
	return ctx
}

// EffectProcessor runs C5: computing and validating effect closures.
type EffectProcessor struct{}

func (p *EffectProcessor) Process(ctx *Context) *Context {
	ctx.Closures = effects.ComputeClosures(ctx.Graph)
	errs := effects.Validate(ctx.Graph, ctx.Closures)
	ctx.Errors = append(ctx.Errors, errs...)
	ctx.Stage = StageEffectChecked
	return ctx
}

// InvariantProcessor runs C6: confirming I1-I5 over the resolved graph.
type InvariantProcessor struct{}

func (p *InvariantProcessor) Process(ctx *Context) *Context {
	errs := invariants.Validate(ctx.Graph, ctx.Program, ctx.Closures)
	ctx.Errors = append(ctx.Errors, errs...)
	ctx.Stage = StageInvariantValidated
	return ctx
}

// LowerProcessor runs C7: lowering every pure fn/test snippet it can.
// Snippets that aren't pure, aren't fn/test, or use a construct this IR
// layer doesn't cover are silently omitted from the result rather than
// reported as diagnostics — spec.md defines no diagnostic code for a
// skipped lowering, only for the upstream passes.
type LowerProcessor struct{}

func (p *LowerProcessor) Process(ctx *Context) *Context {
	ctx.Lowered = map[string]*ir.Function{}
	if !ctx.Program.IsSnippets() {
		ctx.Stage = StageLowered
		return ctx
	}
	for _, sn := range ctx.Program.Snippets {
		sym := ctx.Graph.GetByName(sn.ID)
		if sym == nil {
			continue
		}
		if fn, err := ir.Lower(ctx.Graph, ctx.Index, ctx.Closures, ctx.Bindings, sym, sn); err == nil {
			ctx.Lowered[sn.ID] = fn
		}
	}
	ctx.Stage = StageLowered
	return ctx
}
