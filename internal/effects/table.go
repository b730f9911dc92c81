// Package effects implements C5: effect registration, transitive closure
// over the call graph, and I2 (declared-vs-computed) validation.
package effects

import "github.com/cyrusattoun/covenant/internal/symbolid"

// EffectID aliases the shared dense-index type.
type EffectID = symbolid.EffectID

// Effect is one entry in a Table: a possibly-dotted name plus the module or
// extern that introduced it, per spec.md §3's EffectId/Effect.
type Effect struct {
	ID     EffectID
	Name   string
	Source string
}

// Table is the dense arena of effects for a program. Registration is
// insertion-ordered; re-registering an existing name collapses to the
// first ID rather than creating a duplicate.
type Table struct {
	effects []Effect
	byName  map[string]EffectID
}

// NewTable creates an empty effect table.
func NewTable() *Table {
	return &Table{byName: map[string]EffectID{}}
}

// Register adds name to the table if not already present, returning its
// (possibly pre-existing) ID.
func (t *Table) Register(name, source string) EffectID {
	if id, ok := t.byName[name]; ok {
		return id
	}
	id := EffectID(len(t.effects))
	t.effects = append(t.effects, Effect{ID: id, Name: name, Source: source})
	t.byName[name] = id
	return id
}

// Get returns the effect with the given ID, or nil if out of range.
func (t *Table) Get(id EffectID) *Effect {
	if id < 0 || int(id) >= len(t.effects) {
		return nil
	}
	return &t.effects[id]
}

// All returns every registered effect in insertion order.
func (t *Table) All() []Effect { return t.effects }
