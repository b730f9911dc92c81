// Package invariants implements C6, the bidirectional-invariant validator
// that runs after C3-C5: for each of spec.md §4.5's invariants I1-I5, it
// walks the resolved symbol graph and emits an InvariantViolation for any
// inconsistency found. Unlike C2/C3's hard errors, most violations here are
// reported rather than thrown — the pipeline proceeds regardless, so that
// downstream tooling (and the storage layer's own verify_invariants pass)
// gets the fullest possible diagnostic picture. I3 and I4 remain hard,
// since a duplicate ID or an import cycle makes the graph itself unsound
// rather than merely inconsistent.
package invariants

import (
	"github.com/cyrusattoun/covenant/internal/ast"
	"github.com/cyrusattoun/covenant/internal/diagnostics"
	"github.com/cyrusattoun/covenant/internal/effects"
	"github.com/cyrusattoun/covenant/internal/symbols"
)

// Validate runs I1-I5 over graph and program, given the effect closures C5
// already computed. It never panics and never mutates graph; every pass
// here is a read-only confirmation of invariants the earlier passes are
// expected to already uphold by construction.
func Validate(graph *symbols.Graph, program *ast.Program, closures effects.Closures) []*diagnostics.DiagnosticError {
	var errs []*diagnostics.DiagnosticError
	errs = append(errs, checkI1(graph)...)
	errs = append(errs, checkI2(graph, closures)...)
	errs = append(errs, checkI3(graph)...)
	errs = append(errs, checkI4(program)...)
	errs = append(errs, checkI5(graph)...)
	return errs
}

// checkI1 confirms every forward call/reference edge has a matching
// backward edge on its target, per spec.md's "calls and called_by (and
// references/referenced_by) must always agree" invariant.
func checkI1(graph *symbols.Graph) []*diagnostics.DiagnosticError {
	var errs []*diagnostics.DiagnosticError
	for _, sym := range graph.All() {
		for calleeName := range sym.Calls {
			calleeID, ok := graph.IDOf(calleeName)
			if !ok {
				continue // already reported as E-SYMBOL-001 by the resolver
			}
			callee := graph.Get(calleeID)
			if _, ok := callee.CalledBy[sym.ID]; !ok {
				errs = append(errs, diagnostics.New(diagnostics.ErrInvariantViolation, sym.Span,
					"I1 violation: "+callee.Name+" is missing "+sym.Name+" in called_by").WithSubject(sym.Name))
			}
		}
		for refName := range sym.References {
			refID, ok := graph.IDOf(refName)
			if !ok {
				continue
			}
			ref := graph.Get(refID)
			if _, ok := ref.ReferencedBy[sym.ID]; !ok {
				errs = append(errs, diagnostics.New(diagnostics.ErrInvariantViolation, sym.Span,
					"I1 violation: "+ref.Name+" is missing "+sym.Name+" in referenced_by").WithSubject(sym.Name))
			}
		}
	}
	return errs
}

// checkI2 confirms every effect a symbol's closure exercises is covered by
// its own declared effects (accounting for dotted subsumption). The rich
// per-violation call chain is effects.Validate's job; this pass is the
// cheaper bookkeeping confirmation spec.md's C6 description asks for.
func checkI2(graph *symbols.Graph, closures effects.Closures) []*diagnostics.DiagnosticError {
	var errs []*diagnostics.DiagnosticError
	for _, sym := range graph.All() {
		if !sym.IsCallable() {
			continue
		}
		for effect := range closures[sym.ID] {
			if !effects.IsDeclared(sym.DeclaredEffects, effect) {
				errs = append(errs, diagnostics.New(diagnostics.ErrInvariantViolation, sym.Span,
					"I2 violation: "+sym.Name+" exercises undeclared effect "+effect).WithSubject(sym.Name))
			}
		}
	}
	return errs
}

// checkI3 confirms every symbol name in the graph is unique. Graph.Insert
// already rejects a duplicate at build time (E-SYMBOL-002), so this only
// fires if a graph was assembled some other way.
func checkI3(graph *symbols.Graph) []*diagnostics.DiagnosticError {
	seen := make(map[string]bool, graph.Len())
	var errs []*diagnostics.DiagnosticError
	for _, sym := range graph.All() {
		if seen[sym.Name] {
			errs = append(errs, diagnostics.New(diagnostics.ErrDuplicateID, sym.Span,
				"I3 violation: duplicate symbol id "+sym.Name).WithSubject(sym.Name))
			continue
		}
		seen[sym.Name] = true
	}
	return errs
}

// checkI5 confirms every RelationsTo edge has a matching inverse on its
// target's RelationsFrom, per spec.md's closed relation-inverse table.
func checkI5(graph *symbols.Graph) []*diagnostics.DiagnosticError {
	var errs []*diagnostics.DiagnosticError
	for _, sym := range graph.All() {
		for _, rel := range sym.RelationsTo {
			targetID, ok := graph.IDOf(rel.Target)
			if !ok {
				continue // already reported as E-REL-001 by the resolver
			}
			target := graph.Get(targetID)
			wantInverse := symbols.InverseRelation(rel.RelationType)
			found := false
			for _, back := range target.RelationsFrom {
				if back.Target == sym.Name && back.RelationType == wantInverse {
					found = true
					break
				}
			}
			if !found {
				errs = append(errs, diagnostics.New(diagnostics.ErrInvariantViolation, sym.Span,
					"I5 violation: missing inverse relation "+wantInverse+" from "+target.Name+" back to "+sym.Name).
					WithSubject(sym.Name))
			}
		}
	}
	return errs
}
