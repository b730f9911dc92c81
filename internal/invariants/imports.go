package invariants

import (
	"strings"

	"github.com/cyrusattoun/covenant/internal/ast"
	"github.com/cyrusattoun/covenant/internal/diagnostics"
)

// checkI4 confirms the module import graph is acyclic, via a DFS over
// Import edges detecting back-edges, per spec.md's "I4 is checked with a
// DFS over Import edges" directive. Snippet-IR programs have no nested
// modules and so no import graph to check.
func checkI4(program *ast.Program) []*diagnostics.DiagnosticError {
	if program.IsSnippets() {
		return nil
	}

	edges := map[string][]string{}
	var collect func(decls []ast.Declaration, prefix string)
	collect = func(decls []ast.Declaration, prefix string) {
		for _, d := range decls {
			switch dd := d.(type) {
			case *ast.ModuleDecl:
				child := importDotted(prefix, dd.Name)
				collect(dd.Declarations, child)
			case *ast.ImportDecl:
				if prefix != "" {
					edges[prefix] = append(edges[prefix], dd.Source)
				}
			}
		}
	}
	collect(program.Declarations, "")

	const (
		white = iota
		gray
		black
	)
	color := map[string]int{}
	var path []string
	var errs []*diagnostics.DiagnosticError

	var visit func(node string) bool
	visit = func(node string) bool {
		color[node] = gray
		path = append(path, node)
		cyclic := false
		for _, next := range edges[node] {
			switch color[next] {
			case gray:
				errs = append(errs, diagnostics.New(diagnostics.ErrCircularImport, program.Span(),
					"I4 violation: circular import "+cycleDescription(path, next)).WithSubject(node))
				cyclic = true
			case white:
				if visit(next) {
					cyclic = true
				}
			}
		}
		path = path[:len(path)-1]
		color[node] = black
		return cyclic
	}

	for node := range edges {
		if color[node] == white {
			visit(node)
		}
	}
	return errs
}

// cycleDescription renders the portion of path from closingNode's first
// occurrence back to closingNode itself, as a "a -> b -> a" trail.
func cycleDescription(path []string, closingNode string) string {
	start := 0
	for i, n := range path {
		if n == closingNode {
			start = i
			break
		}
	}
	cycle := append(append([]string{}, path[start:]...), closingNode)
	return strings.Join(cycle, " -> ")
}

func importDotted(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
