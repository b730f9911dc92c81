package pipeline

import (
	"testing"

	"github.com/cyrusattoun/covenant/internal/ast"
	"github.com/cyrusattoun/covenant/internal/span"
)

func namedType(name string) ast.Type {
	return &ast.NamedType{Path: &ast.TypePath{Segments: []string{name}}}
}

func TestDefault_PureSnippetRunsAllStagesAndLowers(t *testing.T) {
	sn := &ast.Snippet{
		ID:        "add",
		Kind:      ast.SnippetFunction,
		SpanValue: span.New(0, 1),
		Signature: ast.Signature{
			Params: []*ast.Parameter{
				{Name: "a", Type: namedType("Int")},
				{Name: "b", Type: namedType("Int")},
			},
			ReturnType: namedType("Int"),
		},
		Body: []*ast.Step{
			{Kind: ast.StepCompute, OutputBinding: "sum", ComputeOp: ast.OpAdd, ComputeInputs: []string{"a", "b"}},
			{Kind: ast.StepReturn, ReturnValue: "sum"},
		},
	}
	prog := &ast.Program{Kind: ast.ProgramSnippets, Snippets: []*ast.Snippet{sn}}

	ctx := Default().Run(NewContext(prog))

	if ctx.Stage != StageLowered {
		t.Fatalf("expected final stage Lowered, got %s", ctx.Stage)
	}
	if len(ctx.Errors) != 0 {
		t.Fatalf("expected no diagnostics, got %v", ctx.Errors)
	}
	if _, ok := ctx.Lowered["add"]; !ok {
		t.Error("expected add to be lowered")
	}
}

func TestDefault_DuplicateSymbolStopsBeforeTyping(t *testing.T) {
	prog := &ast.Program{
		Kind: ast.ProgramSnippets,
		Snippets: []*ast.Snippet{
			{ID: "dup", Kind: ast.SnippetFunction, SpanValue: span.New(0, 1)},
			{ID: "dup", Kind: ast.SnippetFunction, SpanValue: span.New(1, 2)},
		},
	}

	ctx := Default().Run(NewContext(prog))

	if ctx.Stage != StageExtracted {
		t.Fatalf("expected pipeline to stop at Extracted, got %s", ctx.Stage)
	}
	if !ctx.HasHardError() {
		t.Fatal("expected a hard error from the duplicate symbol")
	}
	if ctx.Index != nil {
		t.Error("expected CheckProcessor to never have run")
	}
}

func TestDefault_UndeclaredEffectIsReportedButInvariantsStillRun(t *testing.T) {
	prog := &ast.Program{
		Kind: ast.ProgramSnippets,
		Snippets: []*ast.Snippet{
			{
				ID:             "leaky",
				Kind:           ast.SnippetFunction,
				SpanValue:      span.New(0, 1),
				DeclaredEffect: nil,
				Signature:      ast.Signature{},
				Body: []*ast.Step{
					{Kind: ast.StepCall, OutputBinding: "_", CallTarget: "os.readFile"},
					{Kind: ast.StepReturn},
				},
			},
			{
				ID:             "os.readFile",
				Kind:           ast.SnippetExtern,
				SpanValue:      span.New(1, 2),
				DeclaredEffect: []string{"filesystem.read"},
				Signature:      ast.Signature{},
			},
		},
	}

	ctx := Default().Run(NewContext(prog))

	if ctx.Stage != StageLowered {
		t.Fatalf("expected the pipeline to reach Lowered despite the soft error, got %s", ctx.Stage)
	}
	found := false
	for _, e := range ctx.Errors {
		if e.Code == "E-EFFECT-001" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a missing-effect diagnostic, got %v", ctx.Errors)
	}
}
