package effects

import (
	"testing"

	"github.com/cyrusattoun/covenant/internal/span"
	"github.com/cyrusattoun/covenant/internal/symbols"
)

func mustInsert(t *testing.T, g *symbols.Graph, sym *symbols.Info) {
	t.Helper()
	if _, err := g.Insert(sym); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}
}

func TestComputeClosures_PureFunctionHasEmptyClosure(t *testing.T) {
	g := symbols.NewGraph()
	factorial := symbols.NewInfo("math.factorial", symbols.KindFunction, span.New(0, 1))
	factorial.AddCall("math.factorial")
	mustInsert(t, g, factorial)

	closures := ComputeClosures(g)
	if !closures.IsPure(factorial.ID) {
		t.Errorf("expected pure recursive function to have an empty closure, got %v", closures[factorial.ID])
	}
}

func TestComputeClosures_PropagatesThroughCallChain(t *testing.T) {
	g := symbols.NewGraph()
	write := symbols.NewInfo("fs.write", symbols.KindExtern, span.New(0, 1))
	write.DeclaredEffects = []string{"filesystem"}
	mustInsert(t, g, write)

	save := symbols.NewInfo("save", symbols.KindFunction, span.New(1, 2))
	save.AddCall("fs.write")
	mustInsert(t, g, save)

	closures := ComputeClosures(g)
	if !closures.Has(save.ID, "filesystem") {
		t.Errorf("expected save's closure to include filesystem, got %v", closures[save.ID])
	}
}

func TestComputeClosures_CycleContributesUnionOfMembers(t *testing.T) {
	g := symbols.NewGraph()
	a := symbols.NewInfo("a", symbols.KindFunction, span.New(0, 1))
	a.AddCall("b")
	a.DeclaredEffects = []string{"net"}
	mustInsert(t, g, a)

	b := symbols.NewInfo("b", symbols.KindFunction, span.New(1, 2))
	b.AddCall("a")
	b.DeclaredEffects = []string{"disk"}
	mustInsert(t, g, b)

	closures := ComputeClosures(g)
	if !closures.Has(a.ID, "disk") {
		t.Errorf("expected a's closure to absorb cycle-partner b's effect, got %v", closures[a.ID])
	}
	if !closures.Has(b.ID, "net") {
		t.Errorf("expected b's closure to absorb cycle-partner a's effect, got %v", closures[b.ID])
	}
}

func TestValidate_MissingEffectReportsCallChain(t *testing.T) {
	g := symbols.NewGraph()
	write := symbols.NewInfo("fs.write", symbols.KindExtern, span.New(0, 1))
	write.DeclaredEffects = []string{"filesystem"}
	mustInsert(t, g, write)

	save := symbols.NewInfo("save", symbols.KindFunction, span.New(1, 2))
	save.AddCall("fs.write")
	mustInsert(t, g, save)

	closures := ComputeClosures(g)
	errs := Validate(g, closures)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one missing-effect error, got %d: %v", len(errs), errs)
	}
	e := errs[0]
	if e.Subject != "save" {
		t.Errorf("expected diagnostic attributed to save, got %q", e.Subject)
	}
	if len(e.CallChain) != 2 || e.CallChain[0].SymbolName != "save" || e.CallChain[1].SymbolName != "fs.write" {
		t.Errorf("expected call chain save -> fs.write, got %v", e.CallChain)
	}
}

func TestValidate_DottedSubsumptionSatisfiesChildEffect(t *testing.T) {
	g := symbols.NewGraph()
	write := symbols.NewInfo("fs.write", symbols.KindExtern, span.New(0, 1))
	write.DeclaredEffects = []string{"filesystem.write"}
	mustInsert(t, g, write)

	save := symbols.NewInfo("save", symbols.KindFunction, span.New(1, 2))
	save.AddCall("fs.write")
	save.DeclaredEffects = []string{"filesystem"}
	mustInsert(t, g, save)

	closures := ComputeClosures(g)
	errs := Validate(g, closures)
	if len(errs) != 0 {
		t.Fatalf("expected parent effect declaration to subsume the child, got %v", errs)
	}
}

func TestSubsumes(t *testing.T) {
	cases := []struct {
		declared, needed string
		want             bool
	}{
		{"filesystem", "filesystem.read", true},
		{"filesystem", "filesystem", true},
		{"filesystem.read", "filesystem", false},
		{"network", "filesystem.read", false},
	}
	for _, c := range cases {
		if got := Subsumes(c.declared, c.needed); got != c.want {
			t.Errorf("Subsumes(%q, %q) = %v, want %v", c.declared, c.needed, got, c.want)
		}
	}
}
