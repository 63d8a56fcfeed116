// Package resolve holds the per-turn decision logic: admission and
// promotion against the conversation capacity budget, bidirectional
// affinity expansion, and dependency closure with a deterministic final
// ordering. Everything here is pure computation over the catalog, the
// tiers, and the ledger state.
package resolve

import (
	"github.com/flexigpt/skillrouter-go/internal/catalog"
	"github.com/flexigpt/skillrouter-go/internal/tier"
	"github.com/flexigpt/skillrouter-go/spec"
)

// Admission is the outcome of applying the ledger and the capacity
// budget to the tiers.
type Admission struct {
	// ToInject is the admitted set for this turn, in order: admit-tier
	// names first, then promoted consider-tier names.
	ToInject []string

	// Promoted is the subset of ToInject that filled unused capacity
	// from the consider tier.
	Promoted []string

	// RemainingSuggested holds consider-tier names that survived
	// filtering but found no capacity. Surfaced for manual activation,
	// never activated here.
	RemainingSuggested []string
}

// Admit applies the session ledger and the per-conversation capacity C.
//
// Capacity is a conversation-scoped budget: admit-tier names that are
// already in the ledger still count against C, so a conversation never
// accumulates more than C directly-admitted skills even though
// re-emission is suppressed.
func Admit(tiers tier.Tiers, st spec.LedgerState, cat *catalog.Catalog, capacity int) Admission {
	alreadyAdmitted := 0
	for _, c := range tiers.Admit {
		if st.Has(c.Name) {
			alreadyAdmitted++
		}
	}

	capacityThisTurn := capacity - alreadyAdmitted
	if capacityThisTurn < 0 {
		capacityThisTurn = 0
	}

	admit := filterEligible(tiers.Admit, st, cat)
	consider := filterEligible(tiers.Consider, st, cat)

	var out Admission
	for _, name := range admit {
		if len(out.ToInject) >= capacityThisTurn {
			break
		}
		out.ToInject = append(out.ToInject, name)
	}

	// Fill leftover capacity from the consider tier, best score first.
	for _, name := range consider {
		if len(out.ToInject) >= capacityThisTurn {
			out.RemainingSuggested = append(out.RemainingSuggested, name)
			continue
		}
		out.ToInject = append(out.ToInject, name)
		out.Promoted = append(out.Promoted, name)
	}

	return out
}

// filterEligible drops names already activated in this conversation and
// names whose rule opts out of automatic activation.
func filterEligible(cands []spec.ScoredCandidate, st spec.LedgerState, cat *catalog.Catalog) []string {
	var out []string
	for _, c := range cands {
		if st.Has(c.Name) {
			continue
		}
		rule, ok := cat.Rule(c.Name)
		if !ok || !rule.AutoActivate {
			continue
		}
		out = append(out, c.Name)
	}
	return out
}
