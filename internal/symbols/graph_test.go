package symbols

import (
	"testing"

	"github.com/cyrusattoun/covenant/internal/span"
)

func TestGraph_InsertAssignsDenseIDs(t *testing.T) {
	g := NewGraph()
	a := NewInfo("a", KindFunction, span.New(0, 1))
	b := NewInfo("b", KindFunction, span.New(1, 2))

	idA, err := g.Insert(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	idB, err := g.Insert(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idA != 0 || idB != 1 {
		t.Errorf("expected dense IDs 0, 1; got %d, %d", idA, idB)
	}
}

func TestGraph_InsertDuplicateNameIsHardError(t *testing.T) {
	g := NewGraph()
	if _, err := g.Insert(NewInfo("dup", KindFunction, span.New(0, 1))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := g.Insert(NewInfo("dup", KindFunction, span.New(1, 2)))
	if err == nil {
		t.Fatalf("expected duplicate insert to fail")
	}
	if !err.IsHard() {
		t.Errorf("expected duplicate ID to be a hard error")
	}
	if g.Len() != 1 {
		t.Errorf("expected original graph untouched, len=%d", g.Len())
	}
}

func TestGraph_CallGraphResolvesNamesToIDs(t *testing.T) {
	g := NewGraph()
	a := NewInfo("a", KindFunction, span.New(0, 1))
	a.AddCall("b")
	if _, err := g.Insert(a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := NewInfo("b", KindFunction, span.New(1, 2))
	if _, err := g.Insert(b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cg := g.CallGraph()
	if _, ok := cg[a.ID][b.ID]; !ok {
		t.Errorf("expected call edge a->b in call graph snapshot")
	}
}
