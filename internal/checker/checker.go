package checker

import (
	"fmt"

	"github.com/cyrusattoun/covenant/internal/ast"
	"github.com/cyrusattoun/covenant/internal/diagnostics"
	"github.com/cyrusattoun/covenant/internal/span"
	"github.com/cyrusattoun/covenant/internal/symbols"
	"github.com/cyrusattoun/covenant/internal/typesystem"
)

// Env is a lexical scope stack of local-variable types.
type Env struct {
	scopes []map[string]typesystem.ResolvedType
}

func newEnv() *Env {
	e := &Env{}
	e.Push()
	return e
}

func (e *Env) Push() { e.scopes = append(e.scopes, map[string]typesystem.ResolvedType{}) }
func (e *Env) Pop()  { e.scopes = e.scopes[:len(e.scopes)-1] }

func (e *Env) Declare(name string, t typesystem.ResolvedType) {
	e.scopes[len(e.scopes)-1][name] = t
}

func (e *Env) Lookup(name string) (typesystem.ResolvedType, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if t, ok := e.scopes[i][name]; ok {
			return t, true
		}
	}
	return typesystem.Unknown, false
}

// Checker runs C4 over one program: per-expression ResolvedTypes plus a
// flat diagnostic list. ExprTypes is keyed by AST node identity, matching
// spec.md §3's "produces a ResolvedType per expression and step binding".
type Checker struct {
	idx       *Index
	env       *Env
	ExprTypes map[ast.Expression]typesystem.ResolvedType
	Bindings  map[string]typesystem.ResolvedType
	Errs      []*diagnostics.DiagnosticError
	subject   string
}

func newChecker(idx *Index) *Checker {
	return &Checker{
		idx:       idx,
		env:       newEnv(),
		ExprTypes: map[ast.Expression]typesystem.ResolvedType{},
		Bindings:  map[string]typesystem.ResolvedType{},
	}
}

// Check runs C4 over program, returning the per-expression type map, the
// per-binding type map (snippet-IR step outputs, keyed "snippetId#binding"
// to avoid cross-snippet name collisions), and every diagnostic raised.
func Check(program *ast.Program, graph *symbols.Graph) (map[ast.Expression]typesystem.ResolvedType, map[string]typesystem.ResolvedType, []*diagnostics.DiagnosticError) {
	idx := BuildIndex(program, graph)
	c := newChecker(idx)

	if program.IsSnippets() {
		for _, sn := range program.Snippets {
			c.checkSnippet(sn)
		}
	} else {
		for _, decl := range program.Declarations {
			c.checkDeclaration(decl, "")
		}
	}

	return c.ExprTypes, c.Bindings, c.Errs
}

func (c *Checker) record(e ast.Expression, t typesystem.ResolvedType) typesystem.ResolvedType {
	c.ExprTypes[e] = t
	return t
}

func (c *Checker) errorf(code diagnostics.ErrorCode, sp span.Span, format string, args ...any) {
	c.Errs = append(c.Errs, diagnostics.New(code, sp, fmt.Sprintf(format, args...)).WithSubject(c.subject))
}

func (c *Checker) checkDeclaration(decl ast.Declaration, prefix string) {
	switch d := decl.(type) {
	case *ast.ModuleDecl:
		childPrefix := dotted(prefix, d.Name)
		for _, child := range d.Declarations {
			c.checkDeclaration(child, childPrefix)
		}
	case *ast.FunctionDecl:
		c.checkFunction(dotted(prefix, d.Name), d)
	}
}

func (c *Checker) checkFunction(name string, d *ast.FunctionDecl) {
	c.subject = name
	ret := c.idx.ResolveType(d.ReturnType)

	c.env.Push()
	for _, p := range d.Params {
		c.env.Declare(p.Name, c.idx.ResolveType(p.Type))
	}
	c.checkBlockReturns(d.Body, ret)
	c.env.Pop()
}

// checkBlockReturns walks a function body's statements in a fresh scope,
// type-checking every return against expected. A trailing expression
// statement is type-checked like any other statement; it is not treated as
// an implicit return and is not compared against expected.
func (c *Checker) checkBlockReturns(b *ast.Block, expected typesystem.ResolvedType) {
	if b == nil {
		return
	}
	c.env.Push()
	defer c.env.Pop()

	for _, stmt := range b.Statements {
		c.checkStmt(stmt, expected)
	}
}

func (c *Checker) checkStmt(s ast.Statement, expectedReturn typesystem.ResolvedType) {
	switch st := s.(type) {
	case *ast.LetStmt:
		valType := c.checkExpr(st.Value)
		if st.TypeAnnot != nil {
			annot := c.idx.ResolveType(st.TypeAnnot)
			if !typesystem.IsSubtype(valType, annot) {
				c.errorf(diagnostics.ErrTypeMismatch, st.SpanValue,
					"expected %s, found %s", annot.Display(), valType.Display())
			}
			c.env.Declare(st.Name, annot)
		} else {
			c.env.Declare(st.Name, valType)
		}
	case *ast.ReturnStmt:
		var got typesystem.ResolvedType
		if st.Value != nil {
			got = c.checkExpr(st.Value)
		} else {
			got = typesystem.None
		}
		if !typesystem.IsSubtype(got, expectedReturn) {
			c.errorf(diagnostics.ErrTypeMismatch, st.SpanValue,
				"expected %s, found %s", expectedReturn.Display(), got.Display())
		}
	case *ast.ExprStmt:
		c.checkExpr(st.Expr)
	case *ast.ForStmt:
		iterType := c.checkExpr(st.Iterable)
		c.env.Push()
		if iterType.Kind == typesystem.KList {
			c.env.Declare(st.Binding, *iterType.Elem)
		} else {
			c.env.Declare(st.Binding, typesystem.Unknown)
		}
		c.checkBlockReturns(st.Body, expectedReturn)
		c.env.Pop()
	}
}
