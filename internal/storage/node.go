// Package storage implements C8's "embeddable" symbol graph as a durable,
// queryable on-disk form, grounded on covenant-storage's provider/node
// schema: a pluggable StorageProvider interface plus one concrete,
// swappable backend (SQLiteProvider, using modernc.org/sqlite) to exercise
// it end to end. Concrete backends are collaborators, not core — the
// pipeline itself never imports this package.
package storage

import "github.com/cyrusattoun/covenant/internal/symbols"

// Node is the persisted form of one symbol graph entry: a denormalized
// projection of symbols.Info plus a version counter for optimistic
// locking and a content hash for change detection, mirroring
// covenant-storage's Node (id, kind, version, source_file, line range,
// content_hash, ast, calls/called_by, references/referenced_by, effects,
// effect_closure, requirements, tests, relations).
type Node struct {
	ID      string
	Kind    string
	Version int64

	SourceFile string
	LineStart  int
	LineEnd    int

	ContentHash string
	AST         string // JSON-encoded snippet-IR, opaque to storage

	Calls        []string
	CalledBy     []string
	References   []string
	ReferencedBy []string

	Effects       []string
	EffectClosure []string

	Requirements []string
	Tests        []string

	Relations []Relation
}

// Relation is a bidirectional edge between two nodes, matching
// covenant-storage's Relation{target, rel_type}.
type Relation struct {
	Target string
	Type   string
}

// HasEffect reports whether n's transitive effect closure contains effect.
func (n *Node) HasEffect(effect string) bool {
	for _, e := range n.EffectClosure {
		if e == effect {
			return true
		}
	}
	return false
}

// RelationsOf returns the targets of every relation of the given type.
func (n *Node) RelationsOf(relType string) []string {
	var out []string
	for _, r := range n.Relations {
		if r.Type == relType {
			out = append(out, r.Target)
		}
	}
	return out
}

// FromSymbol projects a resolved symbols.Info plus its effect closure into
// a storable Node. graph resolves sym's backward SymbolID references to
// names; sourceFile/contentHash are supplied by the caller since neither
// is tracked on symbols.Info itself.
func FromSymbol(graph *symbols.Graph, sym *symbols.Info, closure map[string]struct{}, sourceFile, contentHash string) *Node {
	n := &Node{
		ID:          sym.Name,
		Kind:        sym.Kind.String(),
		SourceFile:  sourceFile,
		LineStart:   sym.Span.Start,
		LineEnd:     sym.Span.End,
		ContentHash: contentHash,
		Requirements: append([]string{}, sym.Requirements...),
		Tests:        append([]string{}, sym.Tests...),
		Effects:      append([]string{}, sym.DeclaredEffects...),
	}
	for name := range sym.Calls {
		n.Calls = append(n.Calls, name)
	}
	for name := range sym.References {
		n.References = append(n.References, name)
	}
	for id := range sym.CalledBy {
		if caller := graph.Get(id); caller != nil {
			n.CalledBy = append(n.CalledBy, caller.Name)
		}
	}
	for id := range sym.ReferencedBy {
		if referrer := graph.Get(id); referrer != nil {
			n.ReferencedBy = append(n.ReferencedBy, referrer.Name)
		}
	}
	for e := range closure {
		n.EffectClosure = append(n.EffectClosure, e)
	}
	for _, rel := range sym.RelationsTo {
		n.Relations = append(n.Relations, Relation{Target: rel.Target, Type: rel.RelationType})
	}
	return n
}
