package resolve

import (
	"fmt"
	"sort"

	"github.com/flexigpt/skillrouter-go/internal/catalog"
	"github.com/flexigpt/skillrouter-go/spec"
)

// Closure is the dependency-closed emission set for one turn.
type Closure struct {
	// Order is the final sequence to emit: dependency-closed, duplicate
	// free, and stably sorted by priority. Names already activated in
	// this conversation are excluded (their edges count as satisfied).
	Order []string

	Diagnostics []spec.Diagnostic
}

// ResolveDependencies expands roots to include every transitive hard
// prerequisite, depth first. Graph problems degrade instead of failing:
// a missing target drops that edge with a diagnostic, a cycle abandons
// the repeated edge with a diagnostic, and everything else resolves.
//
// The final ordering is a stable sort of the DFS result by priority
// ascending. DFS adds a name only after its dependencies, so the sort
// preserves dependency precedence whenever catalog priorities are
// consistent with dependency direction; the catalog loader warns about
// inversions at load time.
func ResolveDependencies(roots []string, st spec.LedgerState, cat *catalog.Catalog) Closure {
	var cl Closure

	resolved := map[string]struct{}{}
	visiting := map[string]struct{}{}

	var visit func(name, parent string)
	visit = func(name, parent string) {
		if _, done := resolved[name]; done {
			return
		}
		if st.Has(name) {
			// Activated in a prior turn: the edge is trivially
			// satisfied and the name is never re-emitted.
			resolved[name] = struct{}{}
			return
		}
		if _, busy := visiting[name]; busy {
			cl.Diagnostics = append(cl.Diagnostics, spec.Diagnostic{
				Kind:   spec.DiagnosticDependencyCycle,
				Skill:  parent,
				Ref:    name,
				Detail: fmt.Sprintf("dependency cycle: %s is reachable from itself via %s", name, parent),
			})
			return
		}

		rule, ok := cat.Rule(name)
		if !ok {
			cl.Diagnostics = append(cl.Diagnostics, spec.Diagnostic{
				Kind:   spec.DiagnosticMissingDependency,
				Skill:  parent,
				Ref:    name,
				Detail: fmt.Sprintf("%s requires unknown skill %s", parent, name),
			})
			return
		}

		visiting[name] = struct{}{}
		for _, dep := range rule.Dependencies {
			visit(dep, name)
		}
		delete(visiting, name)

		resolved[name] = struct{}{}
		cl.Order = append(cl.Order, name)
	}

	for _, root := range roots {
		visit(root, root)
	}

	sort.SliceStable(cl.Order, func(i, j int) bool {
		return priorityOf(cat, cl.Order[i]) < priorityOf(cat, cl.Order[j])
	})

	return cl
}

func priorityOf(cat *catalog.Catalog, name string) int {
	if rule, ok := cat.Rule(name); ok {
		return rule.Priority
	}
	return spec.DefaultPriority
}
