package effects

import (
	"fmt"
	"sort"

	"github.com/cyrusattoun/covenant/internal/diagnostics"
	"github.com/cyrusattoun/covenant/internal/symbolid"
	"github.com/cyrusattoun/covenant/internal/symbols"
)

// Validate runs I2 over every callable symbol in graph: for each one,
// needed = closure(f) effects not covered by f's own declared effects
// (after subsumption); anything left over is a MissingEffect diagnostic
// carrying the call chain that introduced it, per spec.md §4.4.
func Validate(graph *symbols.Graph, closures Closures) []*diagnostics.DiagnosticError {
	var errs []*diagnostics.DiagnosticError

	for _, sym := range graph.All() {
		if !sym.IsCallable() {
			continue
		}
		var missing []string
		for effect := range closures[sym.ID] {
			if !IsDeclared(sym.DeclaredEffects, effect) {
				missing = append(missing, effect)
			}
		}
		sort.Strings(missing)

		for _, effect := range missing {
			chain := callChainFor(graph, sym.ID, effect)
			errs = append(errs, diagnostics.New(
				diagnostics.ErrMissingEffect,
				sym.Span,
				fmt.Sprintf("missing effect declaration: %s", effect),
			).WithSubject(sym.Name).WithCallChain(chain).WithFix(
				fmt.Sprintf("declare effect %q on %s", effect, sym.Name),
			))
		}
	}

	return errs
}

// callChainFor breadth-first searches the call graph from startID for the
// nearest symbol whose own declared effects introduce effect, and returns
// the path from startID to it inclusive. If none is found (effect arrived
// purely through relation/data edges rather than a traceable call), the
// chain is just the starting symbol.
func callChainFor(graph *symbols.Graph, startID SymbolID, effect string) []diagnostics.CallChainEntry {
	visited := map[SymbolID]bool{startID: true}
	prev := map[SymbolID]SymbolID{}
	queue := []SymbolID{startID}
	target := symbolid.Invalid

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		sym := graph.Get(cur)
		if cur != startID && IsDeclared(sym.DeclaredEffects, effect) {
			target = cur
			break
		}
		for calleeName := range sym.Calls {
			calleeID, ok := graph.IDOf(calleeName)
			if !ok || visited[calleeID] {
				continue
			}
			visited[calleeID] = true
			prev[calleeID] = cur
			queue = append(queue, calleeID)
		}
	}

	start := graph.Get(startID)
	if target == symbolid.Invalid {
		return []diagnostics.CallChainEntry{{SymbolName: start.Name, Span: start.Span}}
	}

	var path []SymbolID
	for id := target; ; id = prev[id] {
		path = append([]SymbolID{id}, path...)
		if id == startID {
			break
		}
	}
	entries := make([]diagnostics.CallChainEntry, 0, len(path))
	for _, id := range path {
		sym := graph.Get(id)
		entries = append(entries, diagnostics.CallChainEntry{SymbolName: sym.Name, Span: sym.Span})
	}
	return entries
}
