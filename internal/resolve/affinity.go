package resolve

import (
	"github.com/flexigpt/skillrouter-go/internal/catalog"
	"github.com/flexigpt/skillrouter-go/spec"
)

// ExpandAffinity returns the complementary skills to activate alongside
// toInject. Affinity is symmetric at resolution time even though the
// catalog stores it directionally: for each admitted skill s, both the
// names s declares and the names declaring s are candidates.
//
// Affinity additions never consume turn capacity. They still respect the
// ledger and the per-skill AutoActivate opt-out, and are deduplicated
// across all sources. Mutual affinity (A and B listing each other) is
// safe: each addition is checked against the result set before insertion.
func ExpandAffinity(toInject []string, st spec.LedgerState, cat *catalog.Catalog) []string {
	inject := make(map[string]struct{}, len(toInject))
	for _, n := range toInject {
		inject[n] = struct{}{}
	}

	added := map[string]struct{}{}
	var out []string

	eligible := func(name string) bool {
		if st.Has(name) {
			return false
		}
		if _, ok := inject[name]; ok {
			return false
		}
		if _, ok := added[name]; ok {
			return false
		}
		rule, ok := cat.Rule(name)
		return ok && rule.AutoActivate
	}

	for _, s := range toInject {
		rule, ok := cat.Rule(s)
		if !ok {
			continue
		}

		// Direction A: names s declares.
		for _, a := range rule.Affinities {
			if eligible(a) {
				added[a] = struct{}{}
				out = append(out, a)
			}
		}

		// Direction B: names declaring s. AffinityDeclarers is built in
		// sorted name order, keeping the expansion deterministic.
		for _, o := range cat.AffinityDeclarers(s) {
			if eligible(o) {
				added[o] = struct{}{}
				out = append(out, o)
			}
		}
	}

	return out
}
