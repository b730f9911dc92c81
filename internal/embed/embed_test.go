package embed

import (
	"strings"
	"testing"

	"github.com/cyrusattoun/covenant/internal/effects"
	"github.com/cyrusattoun/covenant/internal/span"
	"github.com/cyrusattoun/covenant/internal/symbols"
)

func mustInsert(t *testing.T, g *symbols.Graph, sym *symbols.Info) {
	t.Helper()
	if _, err := g.Insert(sym); err != nil {
		t.Fatalf("insert %s: %v", sym.Name, err)
	}
}

func TestBuild_ProjectsSymbolsInIDOrderWithResolvedNames(t *testing.T) {
	g := symbols.NewGraph()
	caller := symbols.NewInfo("caller", symbols.KindFunction, span.New(10, 20))
	caller.AddCall("callee")
	caller.DeclaredEffects = []string{"filesystem"}
	mustInsert(t, g, caller)
	callee := symbols.NewInfo("callee", symbols.KindFunction, span.New(30, 40))
	mustInsert(t, g, callee)

	if errs := symbols.Resolve(g); len(errs) != 0 {
		t.Fatalf("unexpected resolve errors: %v", errs)
	}
	closures := effects.ComputeClosures(g)

	records := Build(g, closures)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != 0 || records[1].ID != 1 {
		t.Errorf("expected records in ID order, got %d, %d", records[0].ID, records[1].ID)
	}
	if records[0].Kind != "function" {
		t.Errorf("expected lowercase kind, got %q", records[0].Kind)
	}
	if records[0].Line != 10 {
		t.Errorf("expected line 10, got %d", records[0].Line)
	}
	if len(records[0].Calls) != 1 || records[0].Calls[0] != "callee" {
		t.Errorf("expected calls=[callee], got %v", records[0].Calls)
	}
	if len(records[1].CalledBy) != 1 || records[1].CalledBy[0] != "caller" {
		t.Errorf("expected called_by=[caller] on callee, got %v", records[1].CalledBy)
	}
	if len(records[0].EffectClosure) != 1 || records[0].EffectClosure[0] != "filesystem" {
		t.Errorf("expected effect_closure=[filesystem] on caller, got %v", records[0].EffectClosure)
	}
}

func TestMarshal_ProducesStableFieldOrder(t *testing.T) {
	g := symbols.NewGraph()
	mustInsert(t, g, symbols.NewInfo("f", symbols.KindFunction, span.New(0, 1)))
	closures := effects.ComputeClosures(g)

	out, err := Marshal(Build(g, closures))
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}
	s := string(out)
	if !strings.HasPrefix(s, `[{"id":0,"kind":"function","line":0,`) {
		t.Errorf("unexpected JSON prefix: %s", s)
	}
}
