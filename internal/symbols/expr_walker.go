package symbols

import "github.com/cyrusattoun/covenant/internal/ast"

// exprWalker scans a function body for call/reference forward edges while
// tracking a scope stack so locals, parameters, and shadowed names are
// excluded from the "calls" set (spec.md §4.1).
type exprWalker struct {
	sym    *Info
	scopes []map[string]struct{}
}

func newExprWalker(sym *Info) *exprWalker {
	return &exprWalker{sym: sym}
}

func (w *exprWalker) pushScope() {
	w.scopes = append(w.scopes, map[string]struct{}{})
}

func (w *exprWalker) popScope() {
	w.scopes = w.scopes[:len(w.scopes)-1]
}

func (w *exprWalker) declareLocal(name string) {
	if len(w.scopes) == 0 {
		w.pushScope()
	}
	w.scopes[len(w.scopes)-1][name] = struct{}{}
}

func (w *exprWalker) isShadowed(name string) bool {
	for i := len(w.scopes) - 1; i >= 0; i-- {
		if _, ok := w.scopes[i][name]; ok {
			return true
		}
	}
	return false
}

func (w *exprWalker) walkBlock(b *ast.Block) {
	if b == nil {
		return
	}
	w.pushScope()
	for _, stmt := range b.Statements {
		w.walkStmt(stmt)
	}
	w.popScope()
}

func (w *exprWalker) walkStmt(s ast.Statement) {
	switch st := s.(type) {
	case *ast.LetStmt:
		if st.TypeAnnot != nil {
			collectTypeRefs(w.sym, st.TypeAnnot)
		}
		w.walkExpr(st.Value)
		w.declareLocal(st.Name)
	case *ast.ReturnStmt:
		w.walkExpr(st.Value)
	case *ast.ExprStmt:
		w.walkExpr(st.Expr)
	case *ast.ForStmt:
		w.walkExpr(st.Iterable)
		w.pushScope()
		w.declareLocal(st.Binding)
		w.walkBlock(st.Body)
		w.popScope()
	}
}

func (w *exprWalker) walkExpr(e ast.Expression) {
	if e == nil {
		return
	}
	switch ex := e.(type) {
	case *ast.Literal, *ast.Ident:
		// Bare identifiers in value position are not calls; they become
		// a reference only when used as a callee or type name elsewhere.
	case *ast.BinaryExpr:
		w.walkExpr(ex.Left)
		w.walkExpr(ex.Right)
	case *ast.UnaryExpr:
		w.walkExpr(ex.Operand)
	case *ast.AssignExpr:
		w.walkExpr(ex.Value)
	case *ast.CallExpr:
		if id, ok := ex.Callee.(*ast.Ident); ok {
			if !w.isShadowed(id.Name) {
				w.sym.AddCall(id.Name)
			}
		} else {
			w.walkExpr(ex.Callee)
		}
		for _, a := range ex.Args {
			w.walkExpr(a)
		}
	case *ast.FieldExpr:
		w.walkExpr(ex.Object)
	case *ast.IndexExpr:
		w.walkExpr(ex.Object)
		w.walkExpr(ex.Index)
	case *ast.ArrayExpr:
		for _, el := range ex.Elements {
			w.walkExpr(el)
		}
	case *ast.StructExpr:
		if ex.Path != nil {
			w.sym.AddReference(typePathName(ex.Path))
		}
		for _, f := range ex.Fields {
			w.walkExpr(f.Value)
		}
	case *ast.BlockExpr:
		w.walkBlock(ex.Block)
	case *ast.ClosureExpr:
		w.pushScope()
		for _, p := range ex.Params {
			if p.Type != nil {
				collectTypeRefs(w.sym, p.Type)
			}
			w.declareLocal(p.Name)
		}
		w.walkExpr(ex.Body)
		w.popScope()
	case *ast.HandleExpr:
		w.walkExpr(ex.Expr)
		for _, arm := range ex.Arms {
			w.walkArm(arm)
		}
	case *ast.QueryExpr:
		w.sym.AddReference(typePathName(ex.Target))
		if ex.Body != nil {
			w.walkExpr(ex.Body.Where)
		}
	case *ast.InsertExpr:
		w.sym.AddReference(typePathName(ex.Target))
		w.walkExpr(ex.Value)
	case *ast.UpdateExpr:
		w.sym.AddReference(typePathName(ex.Target))
		for _, f := range ex.Assignments {
			w.walkExpr(f.Value)
		}
		w.walkExpr(ex.Condition)
	case *ast.DeleteExpr:
		w.sym.AddReference(typePathName(ex.Target))
		w.walkExpr(ex.Condition)
	case *ast.IfExpr:
		w.walkExpr(ex.Condition)
		w.walkBlock(ex.ThenBranch)
		w.walkExpr(ex.ElseBranch)
	case *ast.MatchExpr:
		w.walkExpr(ex.Scrutinee)
		for _, arm := range ex.Arms {
			w.walkArm(arm)
		}
	}
}

func (w *exprWalker) walkArm(arm *ast.MatchArm) {
	w.pushScope()
	w.declarePattern(arm.Pattern)
	w.walkExpr(arm.Body)
	w.popScope()
}

func (w *exprWalker) declarePattern(p ast.Pattern) {
	switch pp := p.(type) {
	case *ast.BindingPattern:
		w.declareLocal(pp.Name)
	case *ast.VariantPattern:
		w.sym.AddReference(typePathName(pp.Path))
		for _, sub := range pp.Fields.Positional {
			w.declarePattern(sub)
		}
		for _, nf := range pp.Fields.Named {
			w.declarePattern(nf.Pattern)
		}
	}
}
