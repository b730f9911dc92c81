package checker

import (
	"testing"

	"github.com/cyrusattoun/covenant/internal/ast"
	"github.com/cyrusattoun/covenant/internal/span"
	"github.com/cyrusattoun/covenant/internal/symbols"
	"github.com/cyrusattoun/covenant/internal/typesystem"
)

func namedType(name string) ast.Type {
	return &ast.NamedType{Path: &ast.TypePath{Segments: []string{name}}}
}

func intLit(n int64) *ast.Literal {
	return &ast.Literal{Kind: ast.LitInt, IntValue: n}
}

func TestCheck_LegacyFunctionReturningWrongTypeReportsMismatch(t *testing.T) {
	prog := &ast.Program{
		Kind: ast.ProgramLegacy,
		Declarations: []ast.Declaration{
			&ast.FunctionDecl{
				Name:       "f",
				ReturnType: namedType("Int"),
				Body: &ast.Block{
					Statements: []ast.Statement{
						&ast.ReturnStmt{Value: &ast.Literal{Kind: ast.LitString, StrValue: "oops"}},
					},
				},
			},
		},
	}
	graph, extractErrs := symbols.Extract(prog)
	if len(extractErrs) != 0 {
		t.Fatalf("unexpected extract errors: %v", extractErrs)
	}

	_, _, errs := Check(prog, graph)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one type error, got %d: %v", len(errs), errs)
	}
	if errs[0].Code != "E-TYPE-001" {
		t.Errorf("expected E-TYPE-001, got %s", errs[0].Code)
	}
}

func TestCheck_LegacyFunctionCorrectReturnTypeChecksClean(t *testing.T) {
	prog := &ast.Program{
		Kind: ast.ProgramLegacy,
		Declarations: []ast.Declaration{
			&ast.FunctionDecl{
				Name:       "identity",
				Params:     []*ast.Parameter{{Name: "x", Type: namedType("Int")}},
				ReturnType: namedType("Int"),
				Body: &ast.Block{
					Statements: []ast.Statement{
						&ast.ReturnStmt{Value: &ast.Ident{Name: "x"}},
					},
				},
			},
		},
	}
	graph, _ := symbols.Extract(prog)
	_, _, errs := Check(prog, graph)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestCheck_SnippetFactorialTypeChecksAsIntWithCorrectReturn(t *testing.T) {
	sn := &ast.Snippet{
		ID:        "math.factorial",
		Kind:      ast.SnippetFunction,
		SpanValue: span.New(0, 1),
		Signature: ast.Signature{
			Params:     []*ast.Parameter{{Name: "n", Type: namedType("Int")}},
			ReturnType: namedType("Int"),
		},
		Body: []*ast.Step{
			{Kind: ast.StepBind, OutputBinding: "one", BindLiteral: intLit(1)},
			{Kind: ast.StepCompute, OutputBinding: "cond", ComputeOp: ast.OpLe, ComputeInputs: []string{"n", "one"}},
			{
				Kind:          ast.StepIf,
				OutputBinding: "_",
				IfCond:        "cond",
				IfThen: []*ast.Step{
					{Kind: ast.StepReturn, ReturnValue: "one"},
				},
				IfElse: []*ast.Step{
					{Kind: ast.StepCompute, OutputBinding: "nm1", ComputeOp: ast.OpSub, ComputeInputs: []string{"n", "one"}},
					{Kind: ast.StepCall, OutputBinding: "rec", CallTarget: "math.factorial",
						CallArgs: []ast.KeyedArg{{Name: "n", Binding: "nm1"}}},
					{Kind: ast.StepCompute, OutputBinding: "result", ComputeOp: ast.OpMul, ComputeInputs: []string{"n", "rec"}},
					{Kind: ast.StepReturn, ReturnValue: "result"},
				},
			},
		},
	}
	prog := &ast.Program{Kind: ast.ProgramSnippets, Snippets: []*ast.Snippet{sn}}
	graph, _ := symbols.Extract(prog)

	_, bindings, errs := Check(prog, graph)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if bindings["math.factorial#result"].Kind != typesystem.KInt {
		t.Errorf("expected result binding to be Int, got %v", bindings["math.factorial#result"])
	}
}

func TestCheck_UndefinedCalleeInStepCallIsTypeError(t *testing.T) {
	sn := &ast.Snippet{
		ID:        "caller",
		Kind:      ast.SnippetFunction,
		SpanValue: span.New(0, 1),
		Signature: ast.Signature{ReturnType: namedType("Int")},
		Body: []*ast.Step{
			{Kind: ast.StepCall, OutputBinding: "r", CallTarget: "nonexistent"},
			{Kind: ast.StepReturn, ReturnValue: "r"},
		},
	}
	prog := &ast.Program{Kind: ast.ProgramSnippets, Snippets: []*ast.Snippet{sn}}
	graph, _ := symbols.Extract(prog)

	_, _, errs := Check(prog, graph)
	found := false
	for _, e := range errs {
		if e.Code == "E-TYPE-002" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an E-TYPE-002 undefined-symbol error, got %v", errs)
	}
}
