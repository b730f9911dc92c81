// Package typesystem implements the post-resolution ResolvedType lattice:
// primitives, named/optional/list/union/tuple/function/struct shapes, and
// the Unknown/Error sentinels that keep the checker total (spec.md §3, §9).
package typesystem

import (
	"fmt"
	"strings"

	"github.com/cyrusattoun/covenant/internal/symbolid"
)

// Kind discriminates the ResolvedType variants.
type Kind int

const (
	KInt Kind = iota
	KFloat
	KBool
	KString
	KNone
	KNamed
	KOptional
	KList
	KUnion
	KTuple
	KFunction
	KStruct
	KUnknown
	KError
)

// StructField is one named field of a KStruct type.
type StructField struct {
	Name string
	Type ResolvedType
}

// ResolvedType is the post-resolution form of a type expression. Error is
// infectious: any operation touching it succeeds silently so cascading
// diagnostics are suppressed (spec.md §3, P4).
type ResolvedType struct {
	Kind Kind

	// KNamed
	NamedName string
	NamedID   symbolid.SymbolID
	NamedArgs []ResolvedType

	// KOptional, KList
	Elem *ResolvedType

	// KUnion, KTuple
	Members []ResolvedType

	// KFunction
	Params []ResolvedType
	Return *ResolvedType

	// KStruct
	Fields []StructField
}

var (
	Int     = ResolvedType{Kind: KInt}
	Float   = ResolvedType{Kind: KFloat}
	Bool    = ResolvedType{Kind: KBool}
	String  = ResolvedType{Kind: KString}
	None    = ResolvedType{Kind: KNone}
	Unknown = ResolvedType{Kind: KUnknown}
	Error   = ResolvedType{Kind: KError}
)

// Named constructs a resolved named type with any type arguments.
func Named(name string, id symbolid.SymbolID, args ...ResolvedType) ResolvedType {
	return ResolvedType{Kind: KNamed, NamedName: name, NamedID: id, NamedArgs: args}
}

// Optional constructs T?, normalizing Optional(Optional(T)) to Optional(T)
// per spec.md §9 ("avoid nesting Optional(Optional(T))").
func Optional(inner ResolvedType) ResolvedType {
	if inner.Kind == KOptional {
		return inner
	}
	return ResolvedType{Kind: KOptional, Elem: &inner}
}

// List constructs T[].
func List(elem ResolvedType) ResolvedType {
	return ResolvedType{Kind: KList, Elem: &elem}
}

// Union constructs a flattened union of members, deduplicating exact
// repeats and collapsing a single-member union to that member.
func Union(members ...ResolvedType) ResolvedType {
	flat := make([]ResolvedType, 0, len(members))
	for _, m := range members {
		if m.Kind == KUnion {
			flat = append(flat, m.Members...)
		} else {
			flat = append(flat, m)
		}
	}
	deduped := make([]ResolvedType, 0, len(flat))
	for _, m := range flat {
		dup := false
		for _, existing := range deduped {
			if Equal(existing, m) {
				dup = true
				break
			}
		}
		if !dup {
			deduped = append(deduped, m)
		}
	}
	if len(deduped) == 1 {
		return deduped[0]
	}
	return ResolvedType{Kind: KUnion, Members: deduped}
}

// Tuple constructs (A, B, ...).
func Tuple(members ...ResolvedType) ResolvedType {
	return ResolvedType{Kind: KTuple, Members: members}
}

// Function constructs (params...) -> ret.
func Function(params []ResolvedType, ret ResolvedType) ResolvedType {
	return ResolvedType{Kind: KFunction, Params: params, Return: &ret}
}

// Struct constructs an anonymous struct type from ordered fields.
func Struct(fields ...StructField) ResolvedType {
	return ResolvedType{Kind: KStruct, Fields: fields}
}

func (t ResolvedType) IsError() bool   { return t.Kind == KError }
func (t ResolvedType) IsUnknown() bool { return t.Kind == KUnknown }

func (t ResolvedType) IsOptional() bool { return t.Kind == KOptional }

// IsNumeric reports whether t is Int or Float.
func (t ResolvedType) IsNumeric() bool {
	return t.Kind == KInt || t.Kind == KFloat
}

// Equal reports structural equality between two resolved types (used for
// union deduplication and exact-match checks, not subtyping).
func Equal(a, b ResolvedType) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KNamed:
		if a.NamedName != b.NamedName || len(a.NamedArgs) != len(b.NamedArgs) {
			return false
		}
		for i := range a.NamedArgs {
			if !Equal(a.NamedArgs[i], b.NamedArgs[i]) {
				return false
			}
		}
		return true
	case KOptional, KList:
		return Equal(*a.Elem, *b.Elem)
	case KUnion, KTuple:
		if len(a.Members) != len(b.Members) {
			return false
		}
		for i := range a.Members {
			if !Equal(a.Members[i], b.Members[i]) {
				return false
			}
		}
		return true
	case KFunction:
		if len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !Equal(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return Equal(*a.Return, *b.Return)
	case KStruct:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name || !Equal(a.Fields[i].Type, b.Fields[i].Type) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Display renders t the way diagnostics show it to users.
func (t ResolvedType) Display() string {
	switch t.Kind {
	case KInt:
		return "Int"
	case KFloat:
		return "Float"
	case KBool:
		return "Bool"
	case KString:
		return "String"
	case KNone:
		return "none"
	case KNamed:
		if len(t.NamedArgs) == 0 {
			return t.NamedName
		}
		parts := make([]string, len(t.NamedArgs))
		for i, a := range t.NamedArgs {
			parts[i] = a.Display()
		}
		return fmt.Sprintf("%s<%s>", t.NamedName, strings.Join(parts, ", "))
	case KOptional:
		return t.Elem.Display() + "?"
	case KList:
		return t.Elem.Display() + "[]"
	case KUnion:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = m.Display()
		}
		return strings.Join(parts, " | ")
	case KTuple:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = m.Display()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KFunction:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.Display()
		}
		return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), t.Return.Display())
	case KStruct:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Type.Display())
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	case KUnknown:
		return "?"
	case KError:
		return "<error>"
	default:
		return "<invalid>"
	}
}
