package symbols

import (
	"strings"

	"github.com/cyrusattoun/covenant/internal/ast"
	"github.com/cyrusattoun/covenant/internal/diagnostics"
)

// Extract runs C2 (Pass 1) over program: a pre-order walk that emits one
// Info per top-level declaration or snippet, with forward references
// (calls, references, declared effects, relations) populated but backward
// references still empty. Matches spec.md §4.1.
func Extract(program *ast.Program) (*Graph, []*diagnostics.DiagnosticError) {
	graph := NewGraph()
	var errs []*diagnostics.DiagnosticError

	if program.IsSnippets() {
		for _, sn := range program.Snippets {
			sym := extractSnippet(sn)
			if _, err := graph.Insert(sym); err != nil {
				errs = append(errs, err)
			}
		}
		return graph, errs
	}

	for _, decl := range program.Declarations {
		errs = append(errs, extractDeclaration(graph, decl, "")...)
	}
	return graph, errs
}

// --- Snippet-IR extraction -------------------------------------------------

func extractSnippet(sn *ast.Snippet) *Info {
	sym := NewInfo(sn.ID, FromSnippetKind(sn.Kind), sn.Span())
	sym.DeclaredEffects = append([]string{}, sn.DeclaredEffect...)
	sym.Requirements = append([]string{}, sn.Requires...)
	sym.Tests = append([]string{}, sn.Tests...)
	sym.Covers = append([]string{}, sn.Covers...)
	sym.Implements = sn.Implements
	sym.TargetPlatform = sn.TargetPlatform
	for _, r := range sn.Relations {
		sym.RelationsTo = append(sym.RelationsTo, RelationRef{Target: r.Target, RelationType: r.RelationType})
	}

	for _, p := range sn.Signature.Params {
		collectTypeRefs(sym, p.Type)
	}
	if sn.Signature.ReturnType != nil {
		collectTypeRefs(sym, sn.Signature.ReturnType)
	}
	for _, f := range sn.StructFields {
		collectTypeRefs(sym, f.Type)
	}
	for _, v := range sn.EnumVariants {
		switch v.Fields.Kind {
		case ast.VariantTuple:
			for _, t := range v.Fields.TupleTypes {
				collectTypeRefs(sym, t)
			}
		case ast.VariantStruct:
			for _, f := range v.Fields.StructField {
				collectTypeRefs(sym, f.Type)
			}
		}
	}
	for _, tbl := range sn.Tables {
		for _, col := range tbl.Columns {
			if col.Type.Kind == ast.ColumnReference {
				sym.AddReference(col.Type.RefTarget)
			}
		}
		for _, c := range tbl.Constraints {
			if c.Kind == ast.ConstraintForeign && c.Target != nil {
				sym.AddReference(typePathName(c.Target))
			}
		}
	}

	collectStepCalls(sym, sn.Body)
	return sym
}

func collectStepCalls(sym *Info, steps []*ast.Step) {
	for _, st := range steps {
		switch st.Kind {
		case ast.StepCall:
			sym.AddCall(st.CallTarget)
			if st.HandleArm != nil {
				collectStepCalls(sym, st.HandleArm.Body)
			}
		case ast.StepIf:
			collectStepCalls(sym, st.IfThen)
			collectStepCalls(sym, st.IfElse)
		case ast.StepFor:
			collectStepCalls(sym, st.ForBody)
		case ast.StepMatch:
			for _, arm := range st.MatchArms {
				collectStepCalls(sym, arm.Body)
			}
		case ast.StepQuery, ast.StepInsert, ast.StepUpdate, ast.StepDelete:
			if st.DBTarget != nil {
				sym.AddReference(typePathName(st.DBTarget))
			}
		}
	}
}

// --- Legacy-mode extraction -------------------------------------------------

func extractDeclaration(graph *Graph, decl ast.Declaration, prefix string) []*diagnostics.DiagnosticError {
	var errs []*diagnostics.DiagnosticError

	switch d := decl.(type) {
	case *ast.ModuleDecl:
		childPrefix := dotted(prefix, d.Name)
		sym := NewInfo(childPrefix, KindModule, d.Span())
		if _, err := graph.Insert(sym); err != nil {
			errs = append(errs, err)
		}
		for _, child := range d.Declarations {
			errs = append(errs, extractDeclaration(graph, child, childPrefix)...)
		}

	case *ast.FunctionDecl:
		name := dotted(prefix, d.Name)
		sym := NewInfo(name, KindFunction, d.Span())
		for _, imp := range d.Imports {
			sym.DeclaredEffects = append(sym.DeclaredEffects, imp.Names...)
		}
		for _, p := range d.Params {
			collectTypeRefs(sym, p.Type)
		}
		if d.ReturnType != nil {
			collectTypeRefs(sym, d.ReturnType)
		}
		w := newExprWalker(sym)
		w.pushScope()
		for _, p := range d.Params {
			w.declareLocal(p.Name)
		}
		w.walkBlock(d.Body)
		w.popScope()
		if _, err := graph.Insert(sym); err != nil {
			errs = append(errs, err)
		}

	case *ast.StructDecl:
		name := dotted(prefix, d.Name)
		sym := NewInfo(name, KindStruct, d.Span())
		for _, f := range d.Fields {
			collectTypeRefs(sym, f.Type)
		}
		if _, err := graph.Insert(sym); err != nil {
			errs = append(errs, err)
		}

	case *ast.EnumDecl:
		name := dotted(prefix, d.Name)
		sym := NewInfo(name, KindEnum, d.Span())
		for _, v := range d.Variants {
			switch v.Fields.Kind {
			case ast.VariantTuple:
				for _, t := range v.Fields.TupleTypes {
					collectTypeRefs(sym, t)
				}
			case ast.VariantStruct:
				for _, f := range v.Fields.StructField {
					collectTypeRefs(sym, f.Type)
				}
			}
		}
		if _, err := graph.Insert(sym); err != nil {
			errs = append(errs, err)
		}

	case *ast.TypeAliasDecl:
		name := dotted(prefix, d.Name)
		sym := NewInfo(name, KindTypeAlias, d.Span())
		collectTypeRefs(sym, d.Type)
		if _, err := graph.Insert(sym); err != nil {
			errs = append(errs, err)
		}

	case *ast.ExternDecl:
		name := dotted(prefix, d.Name)
		sym := NewInfo(name, KindExtern, d.Span())
		sym.DeclaredEffects = append([]string{}, d.Effects...)
		for _, p := range d.Params {
			collectTypeRefs(sym, p.Type)
		}
		collectTypeRefs(sym, d.ReturnType)
		if _, err := graph.Insert(sym); err != nil {
			errs = append(errs, err)
		}

	case *ast.DatabaseDecl:
		name := dotted(prefix, d.Name)
		sym := NewInfo(name, KindDatabase, d.Span())
		for _, tbl := range d.Tables {
			for _, col := range tbl.Columns {
				if col.Type.Kind == ast.ColumnReference {
					sym.AddReference(col.Type.RefTarget)
				}
			}
			for _, c := range tbl.Constraints {
				if c.Kind == ast.ConstraintForeign && c.Target != nil {
					sym.AddReference(typePathName(c.Target))
				}
			}
		}
		if _, err := graph.Insert(sym); err != nil {
			errs = append(errs, err)
		}

	case *ast.ImportDecl:
		// Imports declare effects and module-DAG edges, not a symbol of
		// their own; I4 acyclicity is checked directly from these edges
		// by the invariant validator.
	}

	return errs
}

func dotted(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func typePathName(tp *ast.TypePath) string {
	return strings.Join(tp.Segments, ".")
}

// collectTypeRefs walks a type expression and adds every named type's
// dotted path to sym's references set.
func collectTypeRefs(sym *Info, t ast.Type) {
	if t == nil {
		return
	}
	switch tt := t.(type) {
	case *ast.NamedType:
		sym.AddReference(typePathName(tt.Path))
		for _, g := range tt.Path.Generics {
			collectTypeRefs(sym, g)
		}
	case *ast.OptionalType:
		collectTypeRefs(sym, tt.Inner)
	case *ast.ListType:
		collectTypeRefs(sym, tt.Element)
	case *ast.UnionType:
		for _, m := range tt.Members {
			collectTypeRefs(sym, m)
		}
	case *ast.TupleType:
		for _, e := range tt.Elements {
			collectTypeRefs(sym, e)
		}
	case *ast.FunctionType:
		for _, p := range tt.Params {
			collectTypeRefs(sym, p)
		}
		collectTypeRefs(sym, tt.Return)
	case *ast.StructType:
		for _, f := range tt.Fields {
			collectTypeRefs(sym, f.Type)
		}
	}
}
