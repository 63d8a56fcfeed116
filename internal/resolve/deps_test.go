package resolve

import (
	"reflect"
	"testing"

	"github.com/flexigpt/skillrouter-go/spec"
)

func ruleWithDeps(name string, priority int, deps ...string) spec.SkillRule {
	r := rule(name)
	r.Priority = priority
	r.Dependencies = deps
	return r
}

func TestResolveDependencyPrecedence(t *testing.T) {
	cat := testCatalog(t,
		ruleWithDeps("app", 60, "base"),
		ruleWithDeps("base", 10),
	)

	cl := ResolveDependencies([]string{"app"}, spec.LedgerState{}, cat)

	if want := []string{"base", "app"}; !reflect.DeepEqual(cl.Order, want) {
		t.Fatalf("Order = %v, want %v", cl.Order, want)
	}
	if len(cl.Diagnostics) != 0 {
		t.Fatalf("Diagnostics = %v, want none", cl.Diagnostics)
	}
}

func TestResolveTransitiveClosure(t *testing.T) {
	cat := testCatalog(t,
		ruleWithDeps("top", 50, "mid"),
		ruleWithDeps("mid", 40, "bottom"),
		ruleWithDeps("bottom", 30),
	)

	cl := ResolveDependencies([]string{"top"}, spec.LedgerState{}, cat)
	if want := []string{"bottom", "mid", "top"}; !reflect.DeepEqual(cl.Order, want) {
		t.Fatalf("Order = %v, want %v", cl.Order, want)
	}
}

func TestResolveCycleDegrades(t *testing.T) {
	cat := testCatalog(t,
		ruleWithDeps("a", 50, "b"),
		ruleWithDeps("b", 50, "a"),
		ruleWithDeps("solo", 50),
	)

	cl := ResolveDependencies([]string{"a", "solo"}, spec.LedgerState{}, cat)

	// The cycle member set still resolves once each, plus the bystander.
	want := map[string]bool{"a": true, "b": true, "solo": true}
	if len(cl.Order) != len(want) {
		t.Fatalf("Order = %v, want the three members once each", cl.Order)
	}
	for _, n := range cl.Order {
		if !want[n] {
			t.Fatalf("unexpected name %q in %v", n, cl.Order)
		}
		delete(want, n)
	}

	foundCycle := false
	for _, d := range cl.Diagnostics {
		if d.Kind == spec.DiagnosticDependencyCycle {
			foundCycle = true
		}
	}
	if !foundCycle {
		t.Fatalf("Diagnostics = %v, want a dependency_cycle entry", cl.Diagnostics)
	}
}

func TestResolveMissingDependencySkipsEdge(t *testing.T) {
	cat := testCatalog(t, ruleWithDeps("app", 50, "ghost"))

	cl := ResolveDependencies([]string{"app"}, spec.LedgerState{}, cat)

	if want := []string{"app"}; !reflect.DeepEqual(cl.Order, want) {
		t.Fatalf("Order = %v, want %v", cl.Order, want)
	}
	if len(cl.Diagnostics) != 1 || cl.Diagnostics[0].Kind != spec.DiagnosticMissingDependency {
		t.Fatalf("Diagnostics = %v, want one missing_dependency", cl.Diagnostics)
	}
	if cl.Diagnostics[0].Ref != "ghost" {
		t.Fatalf("Ref = %q, want ghost", cl.Diagnostics[0].Ref)
	}
}

func TestResolveActivatedDependencySatisfiedNotEmitted(t *testing.T) {
	cat := testCatalog(t,
		ruleWithDeps("c", 50, "b"),
		ruleWithDeps("b", 40),
	)

	st := spec.LedgerState{Activated: []string{"b"}}
	cl := ResolveDependencies([]string{"c"}, st, cat)

	if want := []string{"c"}; !reflect.DeepEqual(cl.Order, want) {
		t.Fatalf("Order = %v, want %v", cl.Order, want)
	}
	if len(cl.Diagnostics) != 0 {
		t.Fatalf("Diagnostics = %v, want none", cl.Diagnostics)
	}
}

func TestResolvePrioritySortIsStable(t *testing.T) {
	cat := testCatalog(t,
		ruleWithDeps("late", 90),
		ruleWithDeps("early", 10),
		ruleWithDeps("mid1", 50),
		ruleWithDeps("mid2", 50),
	)

	cl := ResolveDependencies([]string{"mid1", "late", "mid2", "early"}, spec.LedgerState{}, cat)
	// Equal priorities keep DFS completion order: mid1 before mid2.
	if want := []string{"early", "mid1", "mid2", "late"}; !reflect.DeepEqual(cl.Order, want) {
		t.Fatalf("Order = %v, want %v", cl.Order, want)
	}
}

func TestResolveDeduplicatesSharedDependency(t *testing.T) {
	cat := testCatalog(t,
		ruleWithDeps("a", 50, "shared"),
		ruleWithDeps("b", 50, "shared"),
		ruleWithDeps("shared", 10),
	)

	cl := ResolveDependencies([]string{"a", "b"}, spec.LedgerState{}, cat)
	if want := []string{"shared", "a", "b"}; !reflect.DeepEqual(cl.Order, want) {
		t.Fatalf("Order = %v, want %v", cl.Order, want)
	}
}
