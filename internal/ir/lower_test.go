package ir

import (
	"errors"
	"testing"

	"github.com/cyrusattoun/covenant/internal/ast"
	"github.com/cyrusattoun/covenant/internal/checker"
	"github.com/cyrusattoun/covenant/internal/effects"
	"github.com/cyrusattoun/covenant/internal/span"
	"github.com/cyrusattoun/covenant/internal/symbols"
)

func namedType(name string) ast.Type {
	return &ast.NamedType{Path: &ast.TypePath{Segments: []string{name}}}
}

func TestLower_PureArithmeticFunctionProducesExpectedLocalsAndBody(t *testing.T) {
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

	graph, extractErrs := symbols.Extract(prog)
	if len(extractErrs) != 0 {
		t.Fatalf("unexpected extract errors: %v", extractErrs)
	}
	if errs := symbols.Resolve(graph); len(errs) != 0 {
		t.Fatalf("unexpected resolve errors: %v", errs)
	}
	idx := checker.BuildIndex(prog, graph)
	_, bindings, checkErrs := checker.Check(prog, graph)
	if len(checkErrs) != 0 {
		t.Fatalf("unexpected check errors: %v", checkErrs)
	}
	closures := effects.ComputeClosures(graph)

	sym := graph.GetByName("add")
	if sym == nil {
		t.Fatal("symbol add not found in graph")
	}
	if !closures.IsPure(sym.ID) {
		t.Fatal("expected add's closure to be pure")
	}

	fn, err := Lower(graph, idx, closures, bindings, sym, sn)
	if err != nil {
		t.Fatalf("unexpected lowering error: %v", err)
	}

	if len(fn.Params) != 2 || fn.Params[0] != I64 || fn.Params[1] != I64 {
		t.Errorf("expected two I64 params, got %v", fn.Params)
	}
	if len(fn.Results) != 1 || fn.Results[0] != I64 {
		t.Errorf("expected one I64 result, got %v", fn.Results)
	}
	if len(fn.Locals) != 1 || fn.Locals[0] != I64 {
		t.Errorf("expected one I64 local for sum, got %v", fn.Locals)
	}
	if !fn.Export {
		t.Error("expected a non-test snippet to be exported")
	}

	// LocalGet a, LocalGet b, BinOp Add, LocalSet sum, LocalGet sum, Return.
	if len(fn.Body) != 6 {
		t.Fatalf("expected 6 instructions, got %d: %#v", len(fn.Body), fn.Body)
	}
	if _, ok := fn.Body[2].(BinOpInst); !ok {
		t.Errorf("expected instruction 2 to be BinOpInst, got %T", fn.Body[2])
	}
	if _, ok := fn.Body[5].(Return); !ok {
		t.Errorf("expected final instruction to be Return, got %T", fn.Body[5])
	}
}

func TestLower_RecursiveCallEmitsCallInstructionByCalleeIndex(t *testing.T) {
	sn := &ast.Snippet{
		ID:        "math.fact",
		Kind:      ast.SnippetFunction,
		SpanValue: span.New(0, 1),
		Signature: ast.Signature{
			Params:     []*ast.Parameter{{Name: "n", Type: namedType("Int")}},
			ReturnType: namedType("Int"),
		},
		Body: []*ast.Step{
			{Kind: ast.StepCall, OutputBinding: "rec", CallTarget: "math.fact",
				CallArgs: []ast.KeyedArg{{Name: "n", Binding: "n"}}},
			{Kind: ast.StepReturn, ReturnValue: "rec"},
		},
	}
	prog := &ast.Program{Kind: ast.ProgramSnippets, Snippets: []*ast.Snippet{sn}}

	graph, _ := symbols.Extract(prog)
	symbols.Resolve(graph)
	idx := checker.BuildIndex(prog, graph)
	_, bindings, _ := checker.Check(prog, graph)
	closures := effects.ComputeClosures(graph)
	sym := graph.GetByName("math.fact")

	fn, err := Lower(graph, idx, closures, bindings, sym, sn)
	if err != nil {
		t.Fatalf("unexpected lowering error: %v", err)
	}

	var call *Call
	for _, inst := range fn.Body {
		if c, ok := inst.(Call); ok {
			call = &c
		}
	}
	if call == nil {
		t.Fatal("expected a Call instruction")
	}
	if call.Index != int(sym.ID) {
		t.Errorf("expected call index %d (self), got %d", sym.ID, call.Index)
	}
}

func TestLower_ImpureFunctionRefusesToLower(t *testing.T) {
	sn := &ast.Snippet{
		ID:             "readFile",
		Kind:           ast.SnippetFunction,
		SpanValue:      span.New(0, 1),
		DeclaredEffect: []string{"filesystem.read"},
		Signature:      ast.Signature{ReturnType: namedType("String")},
		Body: []*ast.Step{
			{Kind: ast.StepReturn},
		},
	}
	prog := &ast.Program{Kind: ast.ProgramSnippets, Snippets: []*ast.Snippet{sn}}
	graph, _ := symbols.Extract(prog)
	symbols.Resolve(graph)
	idx := checker.BuildIndex(prog, graph)
	_, bindings, _ := checker.Check(prog, graph)
	closures := effects.ComputeClosures(graph)
	sym := graph.GetByName("readFile")

	if _, err := Lower(graph, idx, closures, bindings, sym, sn); err == nil {
		t.Error("expected an error lowering an impure function")
	}
}

func TestLower_ForStepIsUnsupported(t *testing.T) {
	sn := &ast.Snippet{
		ID:        "loopy",
		Kind:      ast.SnippetFunction,
		SpanValue: span.New(0, 1),
		Signature: ast.Signature{Params: []*ast.Parameter{{Name: "xs", Type: &ast.ListType{Element: namedType("Int")}}}},
		Body: []*ast.Step{
			{Kind: ast.StepFor, ForBinding: "x", ForOver: "xs", ForBody: []*ast.Step{
				{Kind: ast.StepReturn, ReturnValue: "x"},
			}},
		},
	}
	prog := &ast.Program{Kind: ast.ProgramSnippets, Snippets: []*ast.Snippet{sn}}
	graph, _ := symbols.Extract(prog)
	symbols.Resolve(graph)
	idx := checker.BuildIndex(prog, graph)
	_, bindings, _ := checker.Check(prog, graph)
	closures := effects.ComputeClosures(graph)
	sym := graph.GetByName("loopy")

	_, err := Lower(graph, idx, closures, bindings, sym, sn)
	var unsupported *UnsupportedExpression
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedExpression, got %v", err)
	}
}
