package checker

import (
	"github.com/cyrusattoun/covenant/internal/ast"
	"github.com/cyrusattoun/covenant/internal/typesystem"
)

var primitives = map[string]typesystem.ResolvedType{
	"Int":    typesystem.Int,
	"Float":  typesystem.Float,
	"Bool":   typesystem.Bool,
	"String": typesystem.String,
	"None":   typesystem.None,
}

// ResolveType turns an as-written type expression into its ResolvedType,
// per spec.md §4.3. An unresolvable named type yields typesystem.Error
// without a diagnostic here; C3 reports the undefined name as
// E-SYMBOL-001 from the type references C2 collected.
func (idx *Index) ResolveType(t ast.Type) typesystem.ResolvedType {
	if t == nil {
		return typesystem.None
	}
	switch tt := t.(type) {
	case *ast.NamedType:
		return idx.resolveNamed(tt)
	case *ast.OptionalType:
		return typesystem.Optional(idx.ResolveType(tt.Inner))
	case *ast.ListType:
		return typesystem.List(idx.ResolveType(tt.Element))
	case *ast.UnionType:
		members := make([]typesystem.ResolvedType, len(tt.Members))
		for i, m := range tt.Members {
			members[i] = idx.ResolveType(m)
		}
		return typesystem.Union(members...)
	case *ast.TupleType:
		members := make([]typesystem.ResolvedType, len(tt.Elements))
		for i, e := range tt.Elements {
			members[i] = idx.ResolveType(e)
		}
		return typesystem.Tuple(members...)
	case *ast.FunctionType:
		params := make([]typesystem.ResolvedType, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = idx.ResolveType(p)
		}
		return typesystem.Function(params, idx.ResolveType(tt.Return))
	case *ast.StructType:
		fields := make([]typesystem.StructField, len(tt.Fields))
		for i, f := range tt.Fields {
			fields[i] = typesystem.StructField{Name: f.Name, Type: idx.ResolveType(f.Type)}
		}
		return typesystem.Struct(fields...)
	default:
		return typesystem.Unknown
	}
}

func (idx *Index) resolveNamed(tt *ast.NamedType) typesystem.ResolvedType {
	name := typePathName(tt.Path)
	if prim, ok := primitives[name]; ok {
		return prim
	}
	if alias, ok := idx.Aliases[name]; ok {
		return idx.ResolveType(alias)
	}

	args := make([]typesystem.ResolvedType, len(tt.Path.Generics))
	for i, g := range tt.Path.Generics {
		args[i] = idx.ResolveType(g)
	}

	id, ok := idx.Graph.IDOf(name)
	if !ok {
		return typesystem.Error
	}
	return typesystem.Named(name, id, args...)
}

// StructFieldsOf returns the field declarations for a named struct, or nil
// if name is not a struct (used for field-expression and struct-literal
// checking, which need field types beyond what ResolvedType.KNamed holds).
func (idx *Index) StructFieldsOf(name string) []*ast.FieldDecl {
	return idx.Structs[name]
}
