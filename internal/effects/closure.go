package effects

import "github.com/cyrusattoun/covenant/internal/symbols"

// SymbolID aliases the symbol graph's dense-index type.
type SymbolID = symbols.SymbolID

// Closures maps each symbol to its transitive effect closure: the union of
// its own declared effects and every (possibly indirect) callee's closure.
type Closures map[SymbolID]map[string]struct{}

// Has reports whether f's closure contains effect.
func (c Closures) Has(f SymbolID, effect string) bool {
	_, ok := c[f][effect]
	return ok
}

// IsPure reports whether f's closure is empty, the precondition for C7
// lowering (spec.md §8: "purity is required for C7 compilation").
func (c Closures) IsPure(f SymbolID) bool { return len(c[f]) == 0 }

// ComputeClosures runs C5's closure computation over graph's call edges.
// Cycles are handled by first partitioning the call graph into strongly
// connected components (Tarjan's algorithm): every member of a cycle
// receives the union of the whole cycle's declared effects plus whatever
// its external callees contribute, matching spec.md §4.4's "cycles
// contribute the union of effects of the cycle's members".
func ComputeClosures(graph *symbols.Graph) Closures {
	sccs := stronglyConnectedComponents(graph)

	sccOf := make(map[SymbolID]int, graph.Len())
	for i, scc := range sccs {
		for _, id := range scc {
			sccOf[id] = i
		}
	}

	closures := make(Closures, graph.Len())
	for i, scc := range sccs {
		union := map[string]struct{}{}
		for _, id := range scc {
			sym := graph.Get(id)
			for _, e := range sym.DeclaredEffects {
				union[e] = struct{}{}
			}
		}
		for _, id := range scc {
			sym := graph.Get(id)
			for calleeName := range sym.Calls {
				calleeID, ok := graph.IDOf(calleeName)
				if !ok || sccOf[calleeID] == i {
					continue
				}
				for e := range closures[calleeID] {
					union[e] = struct{}{}
				}
			}
		}
		for _, id := range scc {
			closures[id] = union
		}
	}
	return closures
}

// stronglyConnectedComponents returns graph's call-edge SCCs in an order
// where every component appears only after all components it calls into.
func stronglyConnectedComponents(graph *symbols.Graph) [][]SymbolID {
	st := &tarjan{
		graph:   graph,
		indices: map[SymbolID]int{},
		lowlink: map[SymbolID]int{},
		onStack: map[SymbolID]bool{},
	}
	for _, sym := range graph.All() {
		if _, visited := st.indices[sym.ID]; !visited {
			st.strongConnect(sym.ID)
		}
	}
	return st.sccs
}

type tarjan struct {
	graph   *symbols.Graph
	index   int
	indices map[SymbolID]int
	lowlink map[SymbolID]int
	onStack map[SymbolID]bool
	stack   []SymbolID
	sccs    [][]SymbolID
}

func (t *tarjan) strongConnect(v SymbolID) {
	t.indices[v] = t.index
	t.lowlink[v] = t.index
	t.index++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	sym := t.graph.Get(v)
	for calleeName := range sym.Calls {
		w, ok := t.graph.IDOf(calleeName)
		if !ok {
			continue
		}
		if _, visited := t.indices[w]; !visited {
			t.strongConnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.indices[w] < t.lowlink[v] {
				t.lowlink[v] = t.indices[w]
			}
		}
	}

	if t.lowlink[v] == t.indices[v] {
		var scc []SymbolID
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		t.sccs = append(t.sccs, scc)
	}
}
