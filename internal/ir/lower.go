package ir

import (
	"fmt"

	"github.com/cyrusattoun/covenant/internal/ast"
	"github.com/cyrusattoun/covenant/internal/checker"
	"github.com/cyrusattoun/covenant/internal/effects"
	"github.com/cyrusattoun/covenant/internal/symbols"
	"github.com/cyrusattoun/covenant/internal/typesystem"
)

// Lower translates one fn/test snippet's SSA body into a Function, given
// the symbol graph (for resolving call targets to indices), the type
// index (for callee signatures and the return type), the effect closures
// (purity is a precondition: spec.md §4.6 "only pure functions and
// snippets are lowered"), and the binding types C4 already computed.
func Lower(graph *symbols.Graph, idx *checker.Index, closures effects.Closures, bindings map[string]typesystem.ResolvedType, sym *symbols.Info, sn *ast.Snippet) (*Function, error) {
	if sn.Kind != ast.SnippetFunction && sn.Kind != ast.SnippetTest {
		return nil, fmt.Errorf("ir: %s is not a function or test snippet", sym.Name)
	}
	if !closures.IsPure(sym.ID) {
		return nil, fmt.Errorf("ir: %s is not pure, cannot lower", sym.Name)
	}

	l := &lowerer{
		graph:      graph,
		idx:        idx,
		bindings:   bindings,
		prefix:     sn.ID,
		paramTypes: map[string]typesystem.ResolvedType{},
		localIdx:   map[string]int{},
	}

	params := make([]Type, len(sn.Signature.Params))
	for i, p := range sn.Signature.Params {
		rt := idx.ResolveType(p.Type)
		l.paramTypes[p.Name] = rt
		l.localIdx[p.Name] = i
		params[i] = toIrType(rt)
	}
	l.nextLocal = len(params)

	body, err := l.lowerSteps(sn.Body)
	if err != nil {
		return nil, err
	}

	var results []Type
	if sn.Signature.ReturnType != nil {
		results = []Type{toIrType(idx.ResolveType(sn.Signature.ReturnType))}
	}

	return &Function{
		Name:    sym.Name,
		Params:  params,
		Results: results,
		Locals:  l.localTypes,
		Body:    body,
		Export:  sym.Kind != symbols.KindTest,
	}, nil
}

// toIrType picks the narrowest IrType a ResolvedType can be represented
// as in this scalar-only layer. Anything not Bool/Float defaults to I64,
// matching Int's native width; Unknown/Error never reach here in a
// successfully type-checked pure function.
func toIrType(rt typesystem.ResolvedType) Type {
	switch rt.Kind {
	case typesystem.KBool:
		return I32
	case typesystem.KFloat:
		return F64
	default:
		return I64
	}
}

type lowerer struct {
	graph *symbols.Graph
	idx   *checker.Index

	bindings   map[string]typesystem.ResolvedType // checker's "id#name" map
	prefix     string
	paramTypes map[string]typesystem.ResolvedType

	localIdx   map[string]int // name -> local index (params + allocated locals)
	localTypes []Type         // allocated-locals-only, per spec.md's Locals field
	nextLocal  int
}

func (l *lowerer) typeOf(name string) typesystem.ResolvedType {
	if t, ok := l.paramTypes[name]; ok {
		return t
	}
	if t, ok := l.bindings[l.prefix+"#"+name]; ok {
		return t
	}
	return typesystem.Unknown
}

// localFor returns name's local index, allocating a fresh one (with its
// IrType inferred from the checker's binding types) the first time it is
// assigned.
func (l *lowerer) localFor(name string) int {
	if idx, ok := l.localIdx[name]; ok {
		return idx
	}
	idx := l.nextLocal
	l.nextLocal++
	l.localTypes = append(l.localTypes, toIrType(l.typeOf(name)))
	l.localIdx[name] = idx
	return idx
}

func (l *lowerer) lowerSteps(steps []*ast.Step) ([]Inst, error) {
	var out []Inst
	for _, st := range steps {
		insts, err := l.lowerStep(st)
		if err != nil {
			return nil, err
		}
		out = append(out, insts...)
	}
	return out, nil
}

func (l *lowerer) lowerStep(st *ast.Step) ([]Inst, error) {
	switch st.Kind {
	case ast.StepBind:
		return l.lowerBind(st)
	case ast.StepCompute:
		return l.lowerCompute(st)
	case ast.StepCall:
		return l.lowerCall(st)
	case ast.StepIf:
		return l.lowerIf(st)
	case ast.StepReturn:
		return l.lowerReturn(st)
	case ast.StepFor:
		return nil, &UnsupportedExpression{Op: "for (requires list aggregate traversal)"}
	case ast.StepMatch:
		return nil, &UnsupportedExpression{Op: "match (requires variant tag decomposition)"}
	case ast.StepQuery, ast.StepInsert, ast.StepUpdate, ast.StepDelete:
		return nil, &UnsupportedExpression{Op: "database step"}
	default:
		return nil, &UnsupportedExpression{Op: "unknown step kind"}
	}
}

func (l *lowerer) lowerBind(st *ast.Step) ([]Inst, error) {
	var producing []Inst
	if st.BindLiteral != nil {
		c, err := lowerLiteral(st.BindLiteral)
		if err != nil {
			return nil, err
		}
		producing = []Inst{c}
	} else {
		producing = []Inst{LocalGet{Index: l.localFor(st.BindFrom)}}
	}
	return l.finish(st.OutputBinding, producing)
}

func lowerLiteral(lit *ast.Literal) (Inst, error) {
	switch lit.Kind {
	case ast.LitInt:
		return Const{Type: I64, IntValue: lit.IntValue}, nil
	case ast.LitFloat:
		return Const{Type: F64, FloatVal: lit.FloatVal}, nil
	case ast.LitBool:
		v := int64(0)
		if lit.BoolValue {
			v = 1
		}
		return Const{Type: I32, IntValue: v}, nil
	default:
		return nil, &UnsupportedExpression{Op: "non-scalar literal"}
	}
}

func (l *lowerer) lowerCompute(st *ast.Step) ([]Inst, error) {
	if st.ComputeUnary != nil {
		return l.lowerUnary(st)
	}
	if len(st.ComputeInputs) < 2 {
		return nil, &UnsupportedExpression{Op: "compute with fewer than two inputs"}
	}
	left, right := st.ComputeInputs[0], st.ComputeInputs[1]
	operandType := toIrType(l.typeOf(left))

	var insts []Inst
	insts = append(insts, LocalGet{Index: l.localFor(left)})
	insts = append(insts, LocalGet{Index: l.localFor(right)})

	if bin, ok := binMap(st.ComputeOp); ok {
		insts = append(insts, BinOpInst{Op: bin, Type: operandType})
	} else if cmp, ok := cmpMap(st.ComputeOp); ok {
		insts = append(insts, CmpOpInst{Op: cmp, Type: operandType})
	} else {
		return nil, &UnsupportedExpression{Op: st.ComputeOp.String()}
	}
	return l.finish(st.OutputBinding, insts)
}

func (l *lowerer) lowerUnary(st *ast.Step) ([]Inst, error) {
	if len(st.ComputeInputs) < 1 {
		return nil, &UnsupportedExpression{Op: "unary compute with no input"}
	}
	operand := st.ComputeInputs[0]
	operandType := toIrType(l.typeOf(operand))

	var insts []Inst
	switch *st.ComputeUnary {
	case ast.OpNeg:
		// No dedicated Neg instruction: synthesize 0 - x from the
		// existing arithmetic op set.
		insts = []Inst{
			Const{Type: operandType},
			LocalGet{Index: l.localFor(operand)},
			BinOpInst{Op: BinSub, Type: operandType},
		}
	case ast.OpNot:
		// No dedicated Not instruction: synthesize x == 0.
		insts = []Inst{
			LocalGet{Index: l.localFor(operand)},
			Const{Type: I32},
			CmpOpInst{Op: CmpEq, Type: I32},
		}
	default:
		return nil, &UnsupportedExpression{Op: "unary op"}
	}
	return l.finish(st.OutputBinding, insts)
}

// binMap gives BinaryOp's total map onto IrBinOp, per spec.md §4.6.
func binMap(op ast.BinaryOp) (BinOp, bool) {
	switch op {
	case ast.OpAdd:
		return BinAdd, true
	case ast.OpSub:
		return BinSub, true
	case ast.OpMul:
		return BinMul, true
	case ast.OpDiv:
		return BinDiv, true
	case ast.OpMod:
		return BinRem, true
	default:
		return 0, false
	}
}

// cmpMap gives BinaryOp's total map onto IrCmpOp, per spec.md §4.6.
func cmpMap(op ast.BinaryOp) (CmpOp, bool) {
	switch op {
	case ast.OpEq:
		return CmpEq, true
	case ast.OpNe:
		return CmpNe, true
	case ast.OpLt:
		return CmpLt, true
	case ast.OpLe:
		return CmpLe, true
	case ast.OpGt:
		return CmpGt, true
	case ast.OpGe:
		return CmpGe, true
	default:
		return 0, false
	}
}

func (l *lowerer) lowerCall(st *ast.Step) ([]Inst, error) {
	if st.HandleArm != nil {
		return nil, &UnsupportedExpression{Op: "call with error-handling arm"}
	}
	calleeID, ok := l.graph.IDOf(st.CallTarget)
	if !ok {
		return nil, &UnsupportedExpression{Op: "call to unresolved callee " + st.CallTarget}
	}
	sig, ok := l.idx.Funcs[st.CallTarget]
	if !ok {
		return nil, &UnsupportedExpression{Op: "call to callee with no signature " + st.CallTarget}
	}

	argByName := make(map[string]string, len(st.CallArgs))
	for _, a := range st.CallArgs {
		argByName[a.Name] = a.Binding
	}

	var insts []Inst
	for _, pname := range sig.ParamNames {
		binding, ok := argByName[pname]
		if !ok {
			return nil, &UnsupportedExpression{Op: "call missing argument " + pname}
		}
		insts = append(insts, LocalGet{Index: l.localFor(binding)})
	}
	insts = append(insts, Call{Index: int(calleeID)})
	return l.finish(st.OutputBinding, insts)
}

func (l *lowerer) lowerIf(st *ast.Step) ([]Inst, error) {
	thenInsts, err := l.lowerSteps(st.IfThen)
	if err != nil {
		return nil, err
	}
	elseInsts, err := l.lowerSteps(st.IfElse)
	if err != nil {
		return nil, err
	}
	return []Inst{
		LocalGet{Index: l.localFor(st.IfCond)},
		If{Then: thenInsts, Else: elseInsts},
	}, nil
}

func (l *lowerer) lowerReturn(st *ast.Step) ([]Inst, error) {
	if st.ReturnValue == "" {
		return []Inst{Return{}}, nil
	}
	return []Inst{LocalGet{Index: l.localFor(st.ReturnValue)}, Return{}}, nil
}

// finish appends the local-materializing tail to producing: a LocalSet
// into a freshly allocated local when the step's result is bound, or a
// Drop when it's discarded.
func (l *lowerer) finish(outputBinding string, producing []Inst) ([]Inst, error) {
	if outputBinding == "" || outputBinding == "_" {
		return append(producing, Drop{}), nil
	}
	return append(producing, LocalSet{Index: l.localFor(outputBinding)}), nil
}
