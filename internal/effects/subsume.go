package effects

import "strings"

// Subsumes reports whether declaring effect declared covers needed, per
// spec.md §8's dotted subsumption rule: a parent effect ("filesystem")
// satisfies its children ("filesystem.read", "filesystem.write"), but the
// reverse does not hold.
func Subsumes(declared, needed string) bool {
	if declared == needed {
		return true
	}
	return strings.HasPrefix(needed, declared+".")
}

// IsDeclared reports whether some entry in declaredEffects subsumes effect.
func IsDeclared(declaredEffects []string, effect string) bool {
	for _, d := range declaredEffects {
		if Subsumes(d, effect) {
			return true
		}
	}
	return false
}
