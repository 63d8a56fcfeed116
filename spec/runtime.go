package spec

import "context"

// Router is the interface that tools bind to.
// Implementations (like package skillrouter Runtime) own catalog and
// ledger access.
type Router interface {
	Activate(ctx context.Context, conversationID ConversationID, args ActivateArgs) (ActivateResult, error)
	Suggest(ctx context.Context, conversationID ConversationID, args SuggestArgs) (SuggestResult, error)
}

// Scorer produces per-candidate confidence for one request. The router
// treats scorer output as untrusted input regardless of source (LLM
// classifier, keyword fallback, cache replay).
type Scorer interface {
	Score(ctx context.Context, request string, rules []SkillRule) ([]ScoredCandidate, error)
}

// Ledger persists per-conversation activation state between turns.
//
// Read returns a zero state (not an error) for a missing or corrupt
// record so a turn proceeds with full capacity. Write must replace the
// whole record atomically; overlapping writers resolve last-writer-wins.
type Ledger interface {
	Read(conversationID ConversationID) (LedgerState, error)
	Write(conversationID ConversationID, st LedgerState) error
}
