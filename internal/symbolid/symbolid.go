// Package symbolid defines the dense numeric ID types shared by the symbol
// graph and the type system, kept in their own package so neither needs to
// import the other just to talk about identity (spec.md §3: "every other
// reference holds an id, never a pointer").
package symbolid

// SymbolID is a dense index into the SymbolGraph's owning arena.
type SymbolID int

// Invalid is the sentinel for "no symbol"; it is -1 because 0 is a valid
// index.
const Invalid SymbolID = -1

// EffectID is a dense index into an EffectTable.
type EffectID int

// InvalidEffect is the sentinel for "no effect"; it is -1 because 0 is a
// valid index.
const InvalidEffect EffectID = -1
