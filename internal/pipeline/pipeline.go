package pipeline

// Processor is one stage of the pipeline, matching funxy's
// internal/pipeline.Processor (LexerProcessor/ParserProcessor/
// SemanticAnalyzerProcessor all implement the same one-method shape).
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline runs an ordered sequence of Processors over one Context.
type Pipeline struct {
	processors []Processor
}

// New builds a Pipeline from an ordered processor list.
func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Default builds the standard C2-C7 pipeline in spec.md §2's order.
func Default() *Pipeline {
	return New(
		&ExtractProcessor{},
		&ResolveProcessor{},
		&CheckProcessor{},
		&EffectProcessor{},
		&InvariantProcessor{},
		&LowerProcessor{},
	)
}

// Run executes every processor in order, stopping before any stage that
// would run over a graph a prior stage already flagged with a hard error
// (DuplicateId, CircularImport, RelationTargetNotFound, an I3/I4
// violation), per spec.md §4.8 and §7. The partial Context is always
// returned so callers still get every diagnostic collected so far.
func (p *Pipeline) Run(ctx *Context) *Context {
	for _, processor := range p.processors {
		if ctx.HasHardError() {
			break
		}
		ctx = processor.Process(ctx)
	}
	return ctx
}
