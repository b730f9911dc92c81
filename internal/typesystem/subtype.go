package typesystem

// IsSubtype reports whether sub is assignable where sup is expected, per
// the rules in spec.md §4.3:
//
//	T <= T
//	T <= T?
//	T <= U if T is a member of union U
//	Error <= T and T <= Error (suppress cascades)
//	Unknown unifies with anything and becomes the other side
func IsSubtype(sub, sup ResolvedType) bool {
	if sub.IsError() || sup.IsError() {
		return true
	}
	if sub.IsUnknown() || sup.IsUnknown() {
		return true
	}
	if Equal(sub, sup) {
		return true
	}
	if sup.Kind == KOptional {
		if sub.Kind == KNone {
			return true
		}
		return IsSubtype(sub, *sup.Elem)
	}
	if sup.Kind == KUnion {
		for _, member := range sup.Members {
			if IsSubtype(sub, member) {
				return true
			}
		}
		return false
	}
	if sub.Kind == KList && sup.Kind == KList {
		return IsSubtype(*sub.Elem, *sup.Elem)
	}
	if sub.Kind == KTuple && sup.Kind == KTuple && len(sub.Members) == len(sup.Members) {
		for i := range sub.Members {
			if !IsSubtype(sub.Members[i], sup.Members[i]) {
				return false
			}
		}
		return true
	}
	if sub.Kind == KFunction && sup.Kind == KFunction && len(sub.Params) == len(sup.Params) {
		// Function subtyping is invariant here: Covenant snippet
		// signatures are not used as first-class contravariant call
		// targets in the core, only matched structurally.
		for i := range sub.Params {
			if !Equal(sub.Params[i], sup.Params[i]) {
				return false
			}
		}
		return Equal(*sub.Return, *sup.Return)
	}
	return false
}

// Unify resolves T against U for contexts like if/match arm unification:
// returns the join type, which is the supertype when one operand is a
// subtype of the other and otherwise the union of both. Unknown always
// unifies to the other operand and Error absorbs both. ok is true for
// every pair of operands.
func Unify(a, b ResolvedType) (ResolvedType, bool) {
	if a.IsUnknown() {
		return b, true
	}
	if b.IsUnknown() {
		return a, true
	}
	if a.IsError() || b.IsError() {
		return Error, true
	}
	if Equal(a, b) {
		return a, true
	}
	if IsSubtype(a, b) {
		return b, true
	}
	if IsSubtype(b, a) {
		return a, true
	}
	return Union(a, b), true
}
