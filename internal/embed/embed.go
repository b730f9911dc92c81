// Package embed implements C8: projecting the resolved symbol graph plus
// C5's effect closures into a flat, JSON-serializable view suitable for
// embedding into a downstream backend's build artifact.
package embed

import (
	"encoding/json"
	"sort"

	"github.com/cyrusattoun/covenant/internal/effects"
	"github.com/cyrusattoun/covenant/internal/symbols"
)

// Record is one symbol's embeddable projection, matching spec.md §6's
// outbound JSON shape exactly.
type Record struct {
	ID            int      `json:"id"`
	Kind          string   `json:"kind"`
	Line          int      `json:"line"`
	Calls         []string `json:"calls"`
	References    []string `json:"references"`
	CalledBy      []string `json:"called_by"`
	ReferencedBy  []string `json:"referenced_by"`
	Effects       []string `json:"effects"`
	EffectClosure []string `json:"effect_closure"`
	Requirements  []string `json:"requirements"`
	Tests         []string `json:"tests"`
	Covers        []string `json:"covers"`
}

// Build projects graph and closures into one Record per symbol, in
// SymbolId order, the way spec.md §4.7 requires for byte-stable output.
func Build(graph *symbols.Graph, closures effects.Closures) []Record {
	all := graph.All()
	out := make([]Record, 0, len(all))
	for _, sym := range all {
		out = append(out, Record{
			ID:            int(sym.ID),
			Kind:          sym.Kind.String(),
			Line:          sym.Span.Start,
			Calls:         sortedKeys(sym.Calls),
			References:    sortedKeys(sym.References),
			CalledBy:      resolveNames(graph, sym.CalledBy),
			ReferencedBy:  resolveNames(graph, sym.ReferencedBy),
			Effects:       append([]string{}, sym.DeclaredEffects...),
			EffectClosure: sortedKeys(closures[sym.ID]),
			Requirements:  append([]string{}, sym.Requirements...),
			Tests:         append([]string{}, sym.Tests...),
			Covers:        append([]string{}, sym.Covers...),
		})
	}
	return out
}

// Marshal renders records as indent-free, byte-stable JSON.
func Marshal(records []Record) ([]byte, error) {
	return json.Marshal(records)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func resolveNames(graph *symbols.Graph, ids map[symbols.SymbolID]struct{}) []string {
	out := make([]string, 0, len(ids))
	for id := range ids {
		if sym := graph.Get(id); sym != nil {
			out = append(out, sym.Name)
		}
	}
	sort.Strings(out)
	return out
}
