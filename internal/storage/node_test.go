package storage

import (
	"testing"

	"github.com/cyrusattoun/covenant/internal/effects"
	"github.com/cyrusattoun/covenant/internal/span"
	"github.com/cyrusattoun/covenant/internal/symbols"
)

func TestFromSymbol_ProjectsCallsAndResolvedBackReferences(t *testing.T) {
	g := symbols.NewGraph()
	caller := symbols.NewInfo("caller", symbols.KindFunction, span.New(0, 10))
	caller.AddCall("callee")
	caller.DeclaredEffects = []string{"filesystem"}
	if _, err := g.Insert(caller); err != nil {
		t.Fatal(err)
	}
	callee := symbols.NewInfo("callee", symbols.KindFunction, span.New(10, 20))
	if _, err := g.Insert(callee); err != nil {
		t.Fatal(err)
	}

	if errs := symbols.Resolve(g); len(errs) != 0 {
		t.Fatalf("unexpected resolve errors: %v", errs)
	}
	closures := effects.ComputeClosures(g)

	n := FromSymbol(g, g.GetByName("callee"), closures[g.GetByName("callee").ID], "auth.covenant", "hash1")
	if n.ID != "callee" || n.Kind != "function" {
		t.Errorf("unexpected node: %+v", n)
	}
	if len(n.CalledBy) != 1 || n.CalledBy[0] != "caller" {
		t.Errorf("called_by = %v, want [caller]", n.CalledBy)
	}
	if n.SourceFile != "auth.covenant" || n.ContentHash != "hash1" {
		t.Errorf("unexpected source metadata: %+v", n)
	}
}

func TestNode_HasEffectAndRelationsOf(t *testing.T) {
	n := &Node{
		EffectClosure: []string{"database.read", "filesystem.read"},
		Relations:     []Relation{{Target: "b", Type: "depends_on"}, {Target: "c", Type: "depends_on"}, {Target: "d", Type: "describes"}},
	}
	if !n.HasEffect("database.read") {
		t.Error("expected HasEffect(database.read)")
	}
	if n.HasEffect("network") {
		t.Error("expected HasEffect(network) to be false")
	}
	deps := n.RelationsOf("depends_on")
	if len(deps) != 2 {
		t.Errorf("expected 2 depends_on relations, got %v", deps)
	}
}
