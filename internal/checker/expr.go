package checker

import (
	"github.com/cyrusattoun/covenant/internal/ast"
	"github.com/cyrusattoun/covenant/internal/diagnostics"
	"github.com/cyrusattoun/covenant/internal/span"
	"github.com/cyrusattoun/covenant/internal/typesystem"
)

// checkExpr type-checks a legacy-mode expression tree and returns its
// ResolvedType, recording it in c.ExprTypes. Per spec.md §7, a type error
// inserts typesystem.Error into the map rather than aborting, so sibling
// and parent expressions still get a best-effort type.
func (c *Checker) checkExpr(e ast.Expression) typesystem.ResolvedType {
	if e == nil {
		return c.record(e, typesystem.None)
	}

	switch ex := e.(type) {
	case *ast.Literal:
		return c.record(ex, literalType(ex))

	case *ast.Ident:
		if t, ok := c.env.Lookup(ex.Name); ok {
			return c.record(ex, t)
		}
		c.errorf(diagnostics.ErrUndefinedSymbol, ex.SpanValue, "undefined symbol: %s", ex.Name)
		return c.record(ex, typesystem.Error)

	case *ast.BinaryExpr:
		return c.record(ex, c.checkBinary(ex))

	case *ast.UnaryExpr:
		return c.record(ex, c.checkUnary(ex))

	case *ast.AssignExpr:
		valType := c.checkExpr(ex.Value)
		if target, ok := c.env.Lookup(ex.Target); ok {
			if !typesystem.IsSubtype(valType, target) {
				c.errorf(diagnostics.ErrTypeMismatch, ex.SpanValue,
					"expected %s, found %s", target.Display(), valType.Display())
			}
		} else {
			c.errorf(diagnostics.ErrUndefinedSymbol, ex.SpanValue, "undefined symbol: %s", ex.Target)
		}
		return c.record(ex, typesystem.None)

	case *ast.CallExpr:
		return c.record(ex, c.checkCall(ex))

	case *ast.FieldExpr:
		return c.record(ex, c.checkField(ex))

	case *ast.IndexExpr:
		objType := c.checkExpr(ex.Object)
		c.checkExpr(ex.Index)
		if objType.Kind == typesystem.KList {
			return c.record(ex, *objType.Elem)
		}
		if objType.IsError() {
			return c.record(ex, typesystem.Error)
		}
		c.errorf(diagnostics.ErrTypeMismatch, ex.SpanValue, "cannot index non-list type %s", objType.Display())
		return c.record(ex, typesystem.Error)

	case *ast.ArrayExpr:
		if len(ex.Elements) == 0 {
			return c.record(ex, typesystem.List(typesystem.Unknown))
		}
		elem := c.checkExpr(ex.Elements[0])
		for _, rest := range ex.Elements[1:] {
			t := c.checkExpr(rest)
			joined, ok := typesystem.Unify(elem, t)
			if !ok {
				c.errorf(diagnostics.ErrTypeMismatch, ex.SpanValue, "array elements have incompatible types")
			}
			elem = joined
		}
		return c.record(ex, typesystem.List(elem))

	case *ast.StructExpr:
		return c.record(ex, c.checkStructLit(ex))

	case *ast.BlockExpr:
		return c.record(ex, c.checkBlockExpr(ex))

	case *ast.ClosureExpr:
		return c.record(ex, c.checkClosure(ex))

	case *ast.HandleExpr:
		return c.record(ex, c.checkHandle(ex))

	case *ast.QueryExpr, *ast.InsertExpr, *ast.UpdateExpr, *ast.DeleteExpr:
		return c.record(e, c.checkDBExpr(e))

	case *ast.IfExpr:
		return c.record(ex, c.checkIf(ex))

	case *ast.MatchExpr:
		return c.record(ex, c.checkMatch(ex))

	default:
		return c.record(e, typesystem.Unknown)
	}
}

func literalType(l *ast.Literal) typesystem.ResolvedType {
	switch l.Kind {
	case ast.LitInt:
		return typesystem.Int
	case ast.LitFloat:
		return typesystem.Float
	case ast.LitString:
		return typesystem.String
	case ast.LitBool:
		return typesystem.Bool
	default:
		return typesystem.None
	}
}

func (c *Checker) checkBinary(ex *ast.BinaryExpr) typesystem.ResolvedType {
	left := c.checkExpr(ex.Left)
	right := c.checkExpr(ex.Right)
	if left.IsError() || right.IsError() {
		return typesystem.Error
	}

	switch ex.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		if !left.IsNumeric() || !right.IsNumeric() {
			c.errorf(diagnostics.ErrTypeMismatch, ex.SpanValue,
				"arithmetic requires numeric operands, found %s and %s", left.Display(), right.Display())
			return typesystem.Error
		}
		if left.Kind == typesystem.KFloat || right.Kind == typesystem.KFloat {
			return typesystem.Float
		}
		return typesystem.Int
	case ast.OpEq, ast.OpNe:
		return typesystem.Bool
	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		if !left.IsNumeric() || !right.IsNumeric() {
			c.errorf(diagnostics.ErrTypeMismatch, ex.SpanValue,
				"comparison requires numeric operands, found %s and %s", left.Display(), right.Display())
		}
		return typesystem.Bool
	case ast.OpAnd, ast.OpOr:
		if left.Kind != typesystem.KBool || right.Kind != typesystem.KBool {
			c.errorf(diagnostics.ErrTypeMismatch, ex.SpanValue, "logical operator requires Bool operands")
		}
		return typesystem.Bool
	case ast.OpContains:
		if left.Kind == typesystem.KList && !typesystem.IsSubtype(right, *left.Elem) {
			c.errorf(diagnostics.ErrTypeMismatch, ex.SpanValue, "contains: element type mismatch")
		}
		return typesystem.Bool
	default:
		return typesystem.Unknown
	}
}

func (c *Checker) checkUnary(ex *ast.UnaryExpr) typesystem.ResolvedType {
	operand := c.checkExpr(ex.Operand)
	if operand.IsError() {
		return typesystem.Error
	}
	switch ex.Op {
	case ast.OpNeg:
		if !operand.IsNumeric() {
			c.errorf(diagnostics.ErrTypeMismatch, ex.SpanValue, "negation requires a numeric operand, found %s", operand.Display())
			return typesystem.Error
		}
		return operand
	case ast.OpNot:
		if operand.Kind != typesystem.KBool {
			c.errorf(diagnostics.ErrTypeMismatch, ex.SpanValue, "! requires a Bool operand, found %s", operand.Display())
			return typesystem.Error
		}
		return typesystem.Bool
	default:
		return typesystem.Unknown
	}
}

func (c *Checker) checkCall(ex *ast.CallExpr) typesystem.ResolvedType {
	argTypes := make([]typesystem.ResolvedType, len(ex.Args))
	for i, a := range ex.Args {
		argTypes[i] = c.checkExpr(a)
	}

	id, ok := ex.Callee.(*ast.Ident)
	if !ok {
		c.checkExpr(ex.Callee)
		return typesystem.Unknown
	}

	sig, ok := c.idx.Funcs[id.Name]
	if !ok {
		c.errorf(diagnostics.ErrUndefinedSymbol, ex.SpanValue, "undefined function: %s", id.Name)
		return typesystem.Error
	}
	if len(sig.Params) != len(argTypes) {
		c.errorf(diagnostics.ErrTypeMismatch, ex.SpanValue,
			"%s expects %d argument(s), got %d", id.Name, len(sig.Params), len(argTypes))
	} else {
		for i, pt := range sig.Params {
			want := c.idx.ResolveType(pt)
			if !typesystem.IsSubtype(argTypes[i], want) {
				c.errorf(diagnostics.ErrTypeMismatch, ex.SpanValue,
					"argument %d of %s: expected %s, found %s", i+1, id.Name, want.Display(), argTypes[i].Display())
			}
		}
	}
	return c.idx.ResolveType(sig.Return)
}

func (c *Checker) checkField(ex *ast.FieldExpr) typesystem.ResolvedType {
	objType := c.checkExpr(ex.Object)
	if objType.IsError() {
		return typesystem.Error
	}
	if objType.Kind == typesystem.KStruct {
		for _, f := range objType.Fields {
			if f.Name == ex.Field {
				return f.Type
			}
		}
	}
	if objType.Kind == typesystem.KNamed {
		if fields := c.idx.StructFieldsOf(objType.NamedName); fields != nil {
			for _, f := range fields {
				if f.Name == ex.Field {
					return c.idx.ResolveType(f.Type)
				}
			}
		}
	}
	c.errorf(diagnostics.ErrTypeMismatch, ex.SpanValue, "%s has no field %q", objType.Display(), ex.Field)
	return typesystem.Error
}

func (c *Checker) checkStructLit(ex *ast.StructExpr) typesystem.ResolvedType {
	if ex.Path == nil {
		fields := make([]typesystem.StructField, len(ex.Fields))
		for i, f := range ex.Fields {
			fields[i] = typesystem.StructField{Name: f.Name, Type: c.checkExpr(f.Value)}
		}
		return typesystem.Struct(fields...)
	}

	name := typePathName(ex.Path)
	decl := c.idx.StructFieldsOf(name)
	for _, f := range ex.Fields {
		gotType := c.checkExpr(f.Value)
		for _, fd := range decl {
			if fd.Name == f.Name {
				want := c.idx.ResolveType(fd.Type)
				if !typesystem.IsSubtype(gotType, want) {
					c.errorf(diagnostics.ErrTypeMismatch, f.SpanValue,
						"field %s: expected %s, found %s", f.Name, want.Display(), gotType.Display())
				}
			}
		}
	}
	id, ok := c.idx.Graph.IDOf(name)
	if !ok {
		c.errorf(diagnostics.ErrUndefinedSymbol, ex.SpanValue, "undefined type: %s", name)
		return typesystem.Error
	}
	return typesystem.Named(name, id)
}

func (c *Checker) checkBlockExpr(ex *ast.BlockExpr) typesystem.ResolvedType {
	if ex.Block == nil || len(ex.Block.Statements) == 0 {
		return typesystem.None
	}
	c.env.Push()
	defer c.env.Pop()

	var last typesystem.ResolvedType = typesystem.None
	for _, stmt := range ex.Block.Statements {
		if es, ok := stmt.(*ast.ExprStmt); ok {
			last = c.checkExpr(es.Expr)
			continue
		}
		c.checkStmt(stmt, typesystem.Unknown)
		last = typesystem.None
	}
	return last
}

func (c *Checker) checkClosure(ex *ast.ClosureExpr) typesystem.ResolvedType {
	c.env.Push()
	defer c.env.Pop()

	params := make([]typesystem.ResolvedType, len(ex.Params))
	for i, p := range ex.Params {
		t := typesystem.Unknown
		if p.Type != nil {
			t = c.idx.ResolveType(p.Type)
		}
		params[i] = t
		c.env.Declare(p.Name, t)
	}
	ret := c.checkExpr(ex.Body)
	return typesystem.Function(params, ret)
}

func (c *Checker) checkHandle(ex *ast.HandleExpr) typesystem.ResolvedType {
	base := c.checkExpr(ex.Expr)
	result := base
	for _, arm := range ex.Arms {
		c.env.Push()
		c.declarePattern(arm.Pattern, typesystem.Unknown)
		armType := c.checkExpr(arm.Body)
		c.env.Pop()
		joined, ok := typesystem.Unify(result, armType)
		if ok {
			result = joined
		}
	}
	return result
}

func (c *Checker) checkDBExpr(e ast.Expression) typesystem.ResolvedType {
	switch ex := e.(type) {
	case *ast.QueryExpr:
		c.checkDBTarget(typePathName(ex.Target), ex.SpanValue)
		if ex.Body != nil && ex.Body.Where != nil {
			c.checkExpr(ex.Body.Where)
		}
		return typesystem.List(typesystem.Unknown)
	case *ast.InsertExpr:
		c.checkDBTarget(typePathName(ex.Target), ex.SpanValue)
		c.checkExpr(ex.Value)
		return typesystem.None
	case *ast.UpdateExpr:
		c.checkDBTarget(typePathName(ex.Target), ex.SpanValue)
		for _, f := range ex.Assignments {
			c.checkExpr(f.Value)
		}
		if ex.Condition != nil {
			c.checkExpr(ex.Condition)
		}
		return typesystem.None
	case *ast.DeleteExpr:
		c.checkDBTarget(typePathName(ex.Target), ex.SpanValue)
		if ex.Condition != nil {
			c.checkExpr(ex.Condition)
		}
		return typesystem.None
	default:
		return typesystem.Unknown
	}
}

// checkDBTarget validates only schema existence, per spec.md Open
// Question (d): query/insert/update/delete typing is otherwise
// unspecified.
func (c *Checker) checkDBTarget(name string, sp span.Span) {
	if !c.idx.Graph.Contains(name) {
		c.errorf(diagnostics.ErrUndefinedSymbol, sp, "undefined table: %s", name)
	}
}

func (c *Checker) checkIf(ex *ast.IfExpr) typesystem.ResolvedType {
	condType := c.checkExpr(ex.Condition)
	if condType.Kind != typesystem.KBool && !condType.IsError() && !condType.IsUnknown() {
		c.errorf(diagnostics.ErrTypeMismatch, ex.SpanValue, "if condition must be Bool, found %s", condType.Display())
	}

	c.env.Push()
	thenType := c.checkBlockAsExpr(ex.ThenBranch)
	c.env.Pop()

	if ex.ElseBranch == nil {
		return typesystem.Optional(thenType)
	}
	elseType := c.checkExpr(ex.ElseBranch)
	joined, ok := typesystem.Unify(thenType, elseType)
	if !ok {
		c.errorf(diagnostics.ErrTypeMismatch, ex.SpanValue,
			"if branches have incompatible types: %s vs %s", thenType.Display(), elseType.Display())
		return typesystem.Error
	}
	return joined
}

// checkBlockAsExpr type-checks a block whose trailing ExprStmt is its
// value, mirroring checkBlockExpr but over a plain *ast.Block.
func (c *Checker) checkBlockAsExpr(b *ast.Block) typesystem.ResolvedType {
	if b == nil || len(b.Statements) == 0 {
		return typesystem.None
	}
	var last typesystem.ResolvedType = typesystem.None
	for _, stmt := range b.Statements {
		if es, ok := stmt.(*ast.ExprStmt); ok {
			last = c.checkExpr(es.Expr)
			continue
		}
		c.checkStmt(stmt, typesystem.Unknown)
		last = typesystem.None
	}
	return last
}

func (c *Checker) checkMatch(ex *ast.MatchExpr) typesystem.ResolvedType {
	scrut := c.checkExpr(ex.Scrutinee)
	var result typesystem.ResolvedType
	for i, arm := range ex.Arms {
		c.env.Push()
		c.declarePattern(arm.Pattern, scrut)
		armType := c.checkExpr(arm.Body)
		c.env.Pop()
		if i == 0 {
			result = armType
			continue
		}
		joined, ok := typesystem.Unify(result, armType)
		if !ok {
			c.errorf(diagnostics.ErrTypeMismatch, arm.SpanValue, "match arms have incompatible types")
			result = typesystem.Error
			continue
		}
		result = joined
	}
	if len(ex.Arms) == 0 {
		return typesystem.None
	}
	return result
}
