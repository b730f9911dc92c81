// Package checker implements C4: resolving AST type expressions into the
// typesystem.ResolvedType lattice and type-checking expressions and
// snippet steps against it.
package checker

import (
	"strings"

	"github.com/cyrusattoun/covenant/internal/ast"
	"github.com/cyrusattoun/covenant/internal/symbols"
)

// FuncSig is a callable's as-written signature, kept in AST form until
// ResolveType is applied lazily (so forward references between sibling
// declarations work without a separate ordering pass).
type FuncSig struct {
	ParamNames []string
	Params     []ast.Type
	Return     ast.Type // nil means None
}

// ParamType returns the as-written type of the parameter named name, or
// nil if no such parameter exists.
func (f FuncSig) ParamType(name string) ast.Type {
	for i, n := range f.ParamNames {
		if n == name {
			return f.Params[i]
		}
	}
	return nil
}

// Index is C4's declaration table: the same dotted names C2 assigned in
// the symbol graph, but mapped to their full type-bearing declarations
// instead of just forward/backward reference sets.
type Index struct {
	Graph   *symbols.Graph
	Funcs   map[string]FuncSig
	Structs map[string][]*ast.FieldDecl
	Enums   map[string][]*ast.VariantDecl
	Aliases map[string]ast.Type
}

// BuildIndex walks program the same way C2's extractor does, but records
// type-bearing declarations rather than call/reference sets.
func BuildIndex(program *ast.Program, graph *symbols.Graph) *Index {
	idx := &Index{
		Graph:   graph,
		Funcs:   map[string]FuncSig{},
		Structs: map[string][]*ast.FieldDecl{},
		Enums:   map[string][]*ast.VariantDecl{},
		Aliases: map[string]ast.Type{},
	}

	if program.IsSnippets() {
		for _, sn := range program.Snippets {
			idx.indexSnippet(sn)
		}
		return idx
	}

	for _, decl := range program.Declarations {
		idx.indexDeclaration(decl, "")
	}
	return idx
}

func (idx *Index) indexSnippet(sn *ast.Snippet) {
	switch sn.Kind {
	case ast.SnippetFunction, ast.SnippetExtern, ast.SnippetExternAbstract, ast.SnippetExternImpl:
		names := make([]string, len(sn.Signature.Params))
		params := make([]ast.Type, len(sn.Signature.Params))
		for i, p := range sn.Signature.Params {
			names[i] = p.Name
			params[i] = p.Type
		}
		idx.Funcs[sn.ID] = FuncSig{ParamNames: names, Params: params, Return: sn.Signature.ReturnType}
	case ast.SnippetStruct:
		idx.Structs[sn.ID] = sn.StructFields
	case ast.SnippetEnum:
		idx.Enums[sn.ID] = sn.EnumVariants
	}
}

func (idx *Index) indexDeclaration(decl ast.Declaration, prefix string) {
	switch d := decl.(type) {
	case *ast.ModuleDecl:
		childPrefix := dotted(prefix, d.Name)
		for _, child := range d.Declarations {
			idx.indexDeclaration(child, childPrefix)
		}
	case *ast.FunctionDecl:
		name := dotted(prefix, d.Name)
		names := make([]string, len(d.Params))
		params := make([]ast.Type, len(d.Params))
		for i, p := range d.Params {
			names[i] = p.Name
			params[i] = p.Type
		}
		idx.Funcs[name] = FuncSig{ParamNames: names, Params: params, Return: d.ReturnType}
	case *ast.ExternDecl:
		name := dotted(prefix, d.Name)
		names := make([]string, len(d.Params))
		params := make([]ast.Type, len(d.Params))
		for i, p := range d.Params {
			names[i] = p.Name
			params[i] = p.Type
		}
		idx.Funcs[name] = FuncSig{ParamNames: names, Params: params, Return: d.ReturnType}
	case *ast.StructDecl:
		idx.Structs[dotted(prefix, d.Name)] = d.Fields
	case *ast.EnumDecl:
		idx.Enums[dotted(prefix, d.Name)] = d.Variants
	case *ast.TypeAliasDecl:
		idx.Aliases[dotted(prefix, d.Name)] = d.Type
	}
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
