package spec

import "time"

// ConversationID identifies one host conversation. The router keeps one
// ledger per conversation; turns within a conversation are sequential.
type ConversationID string

// SkillKind classifies a rule's intent. It does not change router
// mechanics; hosts may render enforced skills differently.
type SkillKind string

const (
	SkillKindAdvisory SkillKind = "advisory"
	SkillKindEnforced SkillKind = "enforced"
)

// DefaultPriority is used when a rule does not set injectionOrder.
const DefaultPriority = 50

// SkillRule is one validated catalog entry. Rules are immutable after
// catalog load; the router never mutates them.
type SkillRule struct {
	// Name is the unique identifier for the skill within a catalog.
	Name string `json:"name"`

	Kind SkillKind `json:"kind"`

	// AutoActivate gates router-driven activation. When false the skill
	// is manual-only: it is never admitted, promoted, or pulled in by
	// affinity, though dependency expansion may still reference it.
	AutoActivate bool `json:"auto_activate"`

	// Dependencies are hard prerequisites, activated (or already active)
	// before this skill.
	Dependencies []string `json:"dependencies,omitempty"`

	// Affinities lists up to two complementary skills. Storage is
	// directional; resolution treats the relation as symmetric.
	Affinities []string `json:"affinities,omitempty"`

	// Priority in [0,100] orders the final activation list only.
	Priority int `json:"priority"`

	Description string `json:"description,omitempty"`

	// Keywords feed the keyword fallback scorer. The decision engine
	// itself never reads them.
	Keywords []string `json:"keywords,omitempty"`
}

// ScoredCandidate is one scorer opinion for one turn. The router treats
// these as untrusted: unknown names are dropped and confidence is
// clamped to [0,1].
type ScoredCandidate struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
}

// LedgerState is the persisted per-conversation activation record.
// Activated preserves insertion order for diagnostics; membership is
// what the router acts on.
type LedgerState struct {
	Activated []string  `json:"activated"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// Has reports whether name was activated in a prior turn.
func (st LedgerState) Has(name string) bool {
	for _, n := range st.Activated {
		if n == name {
			return true
		}
	}
	return false
}

// DiagnosticKind enumerates the non-fatal problems a turn can record.
type DiagnosticKind string

const (
	DiagnosticUnknownName       DiagnosticKind = "unknown_name"
	DiagnosticMissingDependency DiagnosticKind = "missing_dependency"
	DiagnosticDependencyCycle   DiagnosticKind = "dependency_cycle"
	DiagnosticInvalidRule       DiagnosticKind = "invalid_rule"
	DiagnosticPriorityInversion DiagnosticKind = "priority_inversion"
	DiagnosticLedgerRead        DiagnosticKind = "ledger_read"
)

// Diagnostic records one dropped edge, corrected input, or quarantined
// rule. Diagnostics are a side channel: they never appear in activation
// output and never fail a turn.
type Diagnostic struct {
	Kind   DiagnosticKind `json:"kind"`
	Skill  string         `json:"skill,omitempty"`
	Ref    string         `json:"ref,omitempty"`
	Detail string         `json:"detail"`
}

// TurnResult is the full outcome of one decision turn.
type TurnResult struct {
	// TurnID is a UUIDv7 correlating logs and diagnostics for this turn.
	TurnID string `json:"turn_id"`

	// Admitted holds names chosen by direct score, pre-affinity and
	// pre-dependency. Promoted is the subset of Admitted that came from
	// the consider tier via capacity filling.
	Admitted []string `json:"admitted"`
	Promoted []string `json:"promoted,omitempty"`

	// AffinityAdded holds names pulled in purely by affinity expansion.
	AffinityAdded []string `json:"affinity_added,omitempty"`

	// FinalOrder is the dependency-closed, cycle-safe, priority-sorted
	// sequence to emit. Names already in the ledger never appear here.
	FinalOrder []string `json:"final_order"`

	// RemainingSuggested lists consider-tier names that were not
	// promoted, surfaced for optional manual activation.
	RemainingSuggested []string `json:"remaining_suggested,omitempty"`

	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// ActivateArgs / ActivateResult are the manual-activation tool contract.
type ActivateArgs struct {
	Names []string `json:"names"`
}

type ActivateResult struct {
	// Activated is the dependency-closed ordered set actually activated.
	Activated []string `json:"activated"`

	// Skipped lists requested names that were not activated (unknown,
	// or already active in this conversation).
	Skipped []string `json:"skipped,omitempty"`
}

// SuggestArgs / SuggestResult preview a decision without committing it.
type SuggestArgs struct {
	Prompt string `json:"prompt"`
}

type SuggestResult struct {
	WouldActivate []string `json:"would_activate"`
	Suggested     []string `json:"suggested,omitempty"`
}
