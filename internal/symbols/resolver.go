package symbols

import "github.com/cyrusattoun/covenant/internal/diagnostics"

// relationInverses is the fixed, closed inverse-relation table from
// spec.md §6. Symmetric relations map a type to itself; anything not
// listed here falls back to "related_to" (also symmetric).
var relationInverses = map[string]string{
	"to":             "from",
	"from":           "to",
	"contains":       "contained_by",
	"contained_by":   "contains",
	"describes":      "described_by",
	"described_by":   "describes",
	"next":           "previous",
	"previous":       "next",
	"supersedes":     "precedes",
	"precedes":       "supersedes",
	"causes":         "caused_by",
	"caused_by":      "causes",
	"motivates":      "enables",
	"enables":        "motivates",
	"implements":     "implemented_by",
	"implemented_by": "implements",
	"depends_on":     "depended_by",
	"depended_by":    "depends_on",
	"example_of":     "has_example",
	"has_example":    "example_of",
	"elaborates_on":  "elaborates_on",
	"contrasts_with": "contrasts_with",
	"related_to":     "related_to",
	"version_of":     "version_of",
}

// InverseRelation returns the inverse of relType per the fixed table,
// defaulting to "related_to" for anything unlisted so unknown data still
// satisfies I5.
func InverseRelation(relType string) string {
	if inv, ok := relationInverses[relType]; ok {
		return inv
	}
	return "related_to"
}

// forwardSnapshot captures one symbol's forward edges before C3 starts
// mutating the graph, avoiding aliasing between the edge being walked and
// the backward-reference sets being written.
type forwardSnapshot struct {
	id        SymbolID
	name      string
	calls     []string
	refs      []string
	relations []RelationRef
}

// Resolve runs C3 (Pass 2) over graph: snapshotting forward edges first to
// avoid aliasing, then filling called_by/referenced_by/relations_from.
// Unresolved calls/references are soft errors (E-SYMBOL-001); unresolved
// relation targets are hard errors (E-REL-001), per spec.md §4.2.
func Resolve(graph *Graph) []*diagnostics.DiagnosticError {
	var errs []*diagnostics.DiagnosticError

	snapshots := make([]forwardSnapshot, 0, graph.Len())
	for _, sym := range graph.All() {
		snap := forwardSnapshot{id: sym.ID, name: sym.Name}
		for callee := range sym.Calls {
			snap.calls = append(snap.calls, callee)
		}
		for ref := range sym.References {
			snap.refs = append(snap.refs, ref)
		}
		snap.relations = append(snap.relations, sym.RelationsTo...)
		snapshots = append(snapshots, snap)
	}

	for _, snap := range snapshots {
		caller := graph.Get(snap.id)

		for _, calleeName := range snap.calls {
			if calleeID, ok := graph.IDOf(calleeName); ok {
				graph.Get(calleeID).CalledBy[snap.id] = struct{}{}
			} else {
				caller.UnresolvedCalls[calleeName] = struct{}{}
				caller.ResolutionState = StateUnresolved
				errs = append(errs, diagnostics.New(
					diagnostics.ErrUndefinedReference,
					caller.Span,
					"undefined reference: "+calleeName,
				).WithSubject(snap.name))
			}
		}

		for _, refName := range snap.refs {
			switch refName {
			case "Int", "Float", "Bool", "String", "None":
				continue // primitive type names have no declaring symbol
			}
			if refID, ok := graph.IDOf(refName); ok {
				graph.Get(refID).ReferencedBy[snap.id] = struct{}{}
			} else {
				caller.UnresolvedReferences[refName] = struct{}{}
				caller.ResolutionState = StateUnresolved
				errs = append(errs, diagnostics.New(
					diagnostics.ErrUndefinedReference,
					caller.Span,
					"undefined reference: "+refName,
				).WithSubject(snap.name))
			}
		}

		for _, rel := range snap.relations {
			targetID, ok := graph.IDOf(rel.Target)
			if !ok {
				errs = append(errs, diagnostics.New(
					diagnostics.ErrRelationTargetNotFnd,
					caller.Span,
					"relation target not found: "+rel.Target,
				).WithSubject(snap.name))
				continue
			}
			inverse := InverseRelation(rel.RelationType)
			target := graph.Get(targetID)
			target.RelationsFrom = append(target.RelationsFrom, RelationRef{
				Target:       snap.name,
				RelationType: inverse,
			})
		}

		if caller.ResolutionState != StateUnresolved {
			caller.ResolutionState = StateBackwardResolved
		}
	}

	return errs
}
