package checker

import (
	"github.com/cyrusattoun/covenant/internal/ast"
	"github.com/cyrusattoun/covenant/internal/diagnostics"
	"github.com/cyrusattoun/covenant/internal/typesystem"
)

// checkSnippet runs C4 over one snippet-IR body. Only fn/test snippets
// have a body to check; struct/enum/module/database/extern snippets carry
// no steps.
func (c *Checker) checkSnippet(sn *ast.Snippet) {
	c.subject = sn.ID
	if sn.Kind != ast.SnippetFunction && sn.Kind != ast.SnippetTest {
		return
	}

	locals := map[string]typesystem.ResolvedType{}
	for _, p := range sn.Signature.Params {
		locals[p.Name] = c.idx.ResolveType(p.Type)
	}
	expectedReturn := c.idx.ResolveType(sn.Signature.ReturnType)
	c.checkSteps(sn, sn.Body, locals, expectedReturn)
}

func (c *Checker) bindingType(locals map[string]typesystem.ResolvedType, name string) typesystem.ResolvedType {
	if t, ok := locals[name]; ok {
		return t
	}
	return typesystem.Unknown
}

// setBinding records a step's output type both in the local scope (so
// later steps in the same snippet can look it up) and in c.Bindings,
// keyed "snippetId#binding" so identically-named bindings in different
// snippets never collide.
func (c *Checker) setBinding(sn *ast.Snippet, locals map[string]typesystem.ResolvedType, name string, t typesystem.ResolvedType) {
	if name == "" || name == "_" {
		return
	}
	locals[name] = t
	c.Bindings[sn.ID+"#"+name] = t
}

func (c *Checker) checkSteps(sn *ast.Snippet, steps []*ast.Step, locals map[string]typesystem.ResolvedType, expectedReturn typesystem.ResolvedType) {
	for _, st := range steps {
		c.checkStep(sn, st, locals, expectedReturn)
	}
}

func (c *Checker) checkStep(sn *ast.Snippet, st *ast.Step, locals map[string]typesystem.ResolvedType, expectedReturn typesystem.ResolvedType) {
	switch st.Kind {
	case ast.StepBind:
		var t typesystem.ResolvedType
		if st.BindLiteral != nil {
			t = literalType(st.BindLiteral)
		} else {
			t = c.bindingType(locals, st.BindFrom)
		}
		c.setBinding(sn, locals, st.OutputBinding, t)

	case ast.StepCompute:
		c.setBinding(sn, locals, st.OutputBinding, c.checkCompute(st, locals))

	case ast.StepCall:
		t := c.checkStepCall(st, locals)
		c.setBinding(sn, locals, st.OutputBinding, t)
		if st.HandleArm != nil {
			if bp, ok := st.HandleArm.Pattern.(*ast.BindingPattern); ok {
				locals[bp.Name] = typesystem.Unknown
			}
			c.checkSteps(sn, st.HandleArm.Body, locals, expectedReturn)
		}

	case ast.StepIf:
		condType := c.bindingType(locals, st.IfCond)
		if condType.Kind != typesystem.KBool && !condType.IsUnknown() && !condType.IsError() {
			c.errorf(diagnostics.ErrTypeMismatch, st.SpanValue,
				"if condition %q must be Bool, found %s", st.IfCond, condType.Display())
		}
		c.checkSteps(sn, st.IfThen, locals, expectedReturn)
		c.checkSteps(sn, st.IfElse, locals, expectedReturn)

	case ast.StepFor:
		overType := c.bindingType(locals, st.ForOver)
		elemType := typesystem.Unknown
		if overType.Kind == typesystem.KList {
			elemType = *overType.Elem
		}
		locals[st.ForBinding] = elemType
		c.checkSteps(sn, st.ForBody, locals, expectedReturn)

	case ast.StepMatch:
		scrutType := c.bindingType(locals, st.MatchOn)
		for _, arm := range st.MatchArms {
			armLocals := cloneLocals(locals)
			c.declarePatternInto(arm.Pattern, scrutType, armLocals)
			c.checkSteps(sn, arm.Body, armLocals, expectedReturn)
		}

	case ast.StepQuery, ast.StepInsert, ast.StepUpdate, ast.StepDelete:
		c.checkDBStep(st)
		t := typesystem.None
		if st.Kind == ast.StepQuery {
			t = typesystem.List(typesystem.Unknown)
		}
		c.setBinding(sn, locals, st.OutputBinding, t)

	case ast.StepReturn:
		got := typesystem.None
		if st.ReturnValue != "" {
			got = c.bindingType(locals, st.ReturnValue)
		}
		if !typesystem.IsSubtype(got, expectedReturn) {
			c.errorf(diagnostics.ErrTypeMismatch, st.SpanValue,
				"expected %s, found %s", expectedReturn.Display(), got.Display())
		}
	}
}

func (c *Checker) checkCompute(st *ast.Step, locals map[string]typesystem.ResolvedType) typesystem.ResolvedType {
	inputs := make([]typesystem.ResolvedType, len(st.ComputeInputs))
	for i, name := range st.ComputeInputs {
		inputs[i] = c.bindingType(locals, name)
	}

	if st.ComputeUnary != nil {
		if len(inputs) == 0 {
			return typesystem.Unknown
		}
		operand := inputs[0]
		switch *st.ComputeUnary {
		case ast.OpNeg:
			if !operand.IsNumeric() && !operand.IsUnknown() && !operand.IsError() {
				c.errorf(diagnostics.ErrTypeMismatch, st.SpanValue, "negation requires a numeric operand")
				return typesystem.Error
			}
			return operand
		case ast.OpNot:
			return typesystem.Bool
		}
	}

	if len(inputs) < 2 {
		return typesystem.Unknown
	}
	left, right := inputs[0], inputs[1]
	switch st.ComputeOp {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		if !left.IsNumeric() || !right.IsNumeric() {
			if !left.IsUnknown() && !right.IsUnknown() && !left.IsError() && !right.IsError() {
				c.errorf(diagnostics.ErrTypeMismatch, st.SpanValue, "arithmetic requires numeric operands")
			}
			return typesystem.Error
		}
		if left.Kind == typesystem.KFloat || right.Kind == typesystem.KFloat {
			return typesystem.Float
		}
		return typesystem.Int
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpAnd, ast.OpOr, ast.OpContains:
		return typesystem.Bool
	default:
		return typesystem.Unknown
	}
}

func (c *Checker) checkStepCall(st *ast.Step, locals map[string]typesystem.ResolvedType) typesystem.ResolvedType {
	sig, ok := c.idx.Funcs[st.CallTarget]
	if !ok {
		c.errorf(diagnostics.ErrUndefinedSymbol, st.SpanValue, "undefined callee: %s", st.CallTarget)
		return typesystem.Error
	}
	for _, arg := range st.CallArgs {
		argType := c.bindingType(locals, arg.Binding)
		wantType := sig.ParamType(arg.Name)
		if wantType == nil {
			continue
		}
		want := c.idx.ResolveType(wantType)
		if !typesystem.IsSubtype(argType, want) {
			c.errorf(diagnostics.ErrTypeMismatch, st.SpanValue,
				"argument %q of %s: expected %s, found %s", arg.Name, st.CallTarget, want.Display(), argType.Display())
		}
	}
	return c.idx.ResolveType(sig.Return)
}

// checkDBStep validates only schema existence, per spec.md Open
// Question (d).
func (c *Checker) checkDBStep(st *ast.Step) {
	if st.DBTarget == nil {
		return
	}
	name := typePathName(st.DBTarget)
	if !c.idx.Graph.Contains(name) {
		c.errorf(diagnostics.ErrUndefinedSymbol, st.SpanValue, "undefined table: %s", name)
	}
}

func (c *Checker) declarePatternInto(p ast.Pattern, scrutType typesystem.ResolvedType, locals map[string]typesystem.ResolvedType) {
	switch pp := p.(type) {
	case *ast.BindingPattern:
		locals[pp.Name] = scrutType

	case *ast.VariantPattern:
		enumName, variantName := splitVariant(typePathName(pp.Path))
		fields, ok := c.variantFields(enumName, variantName)
		if !ok {
			for _, sub := range pp.Fields.Positional {
				c.declarePatternInto(sub, typesystem.Unknown, locals)
			}
			for _, nf := range pp.Fields.Named {
				c.declarePatternInto(nf.Pattern, typesystem.Unknown, locals)
			}
			return
		}
		switch fields.Kind {
		case ast.VariantTuple:
			for i, sub := range pp.Fields.Positional {
				t := typesystem.Unknown
				if i < len(fields.TupleTypes) {
					t = c.idx.ResolveType(fields.TupleTypes[i])
				}
				c.declarePatternInto(sub, t, locals)
			}
		case ast.VariantStruct:
			for _, nf := range pp.Fields.Named {
				t := typesystem.Unknown
				for _, fd := range fields.StructField {
					if fd.Name == nf.Name {
						t = c.idx.ResolveType(fd.Type)
					}
				}
				c.declarePatternInto(nf.Pattern, t, locals)
			}
		}
	}
}

func cloneLocals(m map[string]typesystem.ResolvedType) map[string]typesystem.ResolvedType {
	out := make(map[string]typesystem.ResolvedType, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
