// Package skillrouter decides, per user request, which skills from a
// fixed catalog become active for that turn. The decision pipeline is
// categorize -> admit/promote -> affinity -> dependency closure -> emit,
// bounded by a conversation-scoped capacity budget and deduplicated
// across turns by a session ledger.
//
// The package does not score requests itself: callers either supply
// ScoredCandidate values from their own classifier or configure a Scorer
// (such as scorer/keyword) for RunTurn. No failure inside a turn is
// fatal; the worst case is an empty activation list with diagnostics.
package skillrouter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flexigpt/skillrouter-go/internal/catalog"
	"github.com/flexigpt/skillrouter-go/internal/ledger"
	"github.com/flexigpt/skillrouter-go/internal/resolve"
	"github.com/flexigpt/skillrouter-go/internal/scorecache"
	"github.com/flexigpt/skillrouter-go/internal/tier"
	"github.com/flexigpt/skillrouter-go/spec"
)

const defaultCapacity = 2

// Runtime owns catalog access, the ledger binding, and the per-turn
// decision pipeline. Safe for sequential turns; the host guarantees
// turns for one conversation do not overlap.
type Runtime struct {
	logger *slog.Logger

	catalogPath string
	rules       []spec.SkillRule
	contentDir  string

	ledger spec.Ledger
	scorer spec.Scorer
	cache  *scorecache.Cache

	tierCfg  tier.Config
	capacity int
}

func New(opts ...Option) (*Runtime, error) {
	o := &runtimeOptions{
		highThreshold: tier.DefaultConfig().HighThreshold,
		lowThreshold:  tier.DefaultConfig().LowThreshold,
		maxAdmit:      tier.DefaultConfig().MaxAdmit,
		maxConsider:   tier.DefaultConfig().MaxConsider,
		capacity:      defaultCapacity,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	if o.highThreshold <= o.lowThreshold {
		return nil, fmt.Errorf("%w: high threshold %v must exceed low threshold %v",
			spec.ErrInvalidArgument, o.highThreshold, o.lowThreshold)
	}
	if o.capacity < 0 {
		return nil, fmt.Errorf("%w: negative capacity", spec.ErrInvalidArgument)
	}
	if o.catalogPath == "" && len(o.rules) == 0 {
		return nil, fmt.Errorf("%w: a catalog file or rules are required", spec.ErrInvalidArgument)
	}

	rt := &Runtime{
		logger:      o.logger,
		catalogPath: o.catalogPath,
		rules:       o.rules,
		contentDir:  o.contentDir,
		ledger:      o.ledger,
		scorer:      o.scorer,
		tierCfg: tier.Config{
			HighThreshold: o.highThreshold,
			LowThreshold:  o.lowThreshold,
			MaxAdmit:      o.maxAdmit,
			MaxConsider:   o.maxConsider,
		},
		capacity: o.capacity,
	}
	if rt.logger == nil {
		rt.logger = slog.Default()
	}
	if rt.ledger == nil {
		if o.ledgerDir != "" {
			rt.ledger = ledger.NewFile(o.ledgerDir)
		} else {
			rt.ledger = ledger.NewMem()
		}
	}

	cache, err := scorecache.New(scorecache.Config{MaxSize: o.cacheSize, TTL: o.cacheTTL})
	if err != nil {
		return nil, err
	}
	rt.cache = cache

	return rt, nil
}

// DecideTurn runs the decision pipeline for one turn without touching
// the ledger file. Callers commit the result with Commit once output has
// actually been emitted, so a failed turn leaves the ledger untouched.
func (r *Runtime) DecideTurn(
	ctx context.Context,
	conversationID spec.ConversationID,
	candidates []spec.ScoredCandidate,
) (spec.TurnResult, error) {
	if err := ctx.Err(); err != nil {
		return spec.TurnResult{}, err
	}
	if strings.TrimSpace(string(conversationID)) == "" {
		return spec.TurnResult{}, spec.ErrConversationRequired
	}

	cat, err := r.loadCatalog()
	if err != nil {
		return spec.TurnResult{}, err
	}
	return r.decide(conversationID, cat, candidates), nil
}

// RunTurn scores the prompt through the configured scorer (memoized),
// decides, and commits in one call. This is the hook transport path.
func (r *Runtime) RunTurn(
	ctx context.Context,
	conversationID spec.ConversationID,
	prompt string,
) (spec.TurnResult, error) {
	if err := ctx.Err(); err != nil {
		return spec.TurnResult{}, err
	}
	if strings.TrimSpace(string(conversationID)) == "" {
		return spec.TurnResult{}, spec.ErrConversationRequired
	}

	cat, err := r.loadCatalog()
	if err != nil {
		return spec.TurnResult{}, err
	}

	cands, err := r.score(ctx, prompt, cat)
	if err != nil {
		return spec.TurnResult{}, err
	}

	res := r.decide(conversationID, cat, cands)
	if err := r.Commit(conversationID, res); err != nil {
		return spec.TurnResult{}, err
	}
	return res, nil
}

// Commit appends the turn's emitted names to the conversation ledger.
// Committing an empty FinalOrder is a no-op.
func (r *Runtime) Commit(conversationID spec.ConversationID, res spec.TurnResult) error {
	if len(res.FinalOrder) == 0 {
		return nil
	}
	st, err := r.ledger.Read(conversationID)
	if err != nil {
		st = spec.LedgerState{}
	}
	st.Activated = append(st.Activated, res.FinalOrder...)
	st.UpdatedAt = time.Time{} // ledger stamps the write
	return r.ledger.Write(conversationID, st)
}

// Activate is the manual path behind the skills.activate tool. Capacity
// is bypassed; the ledger, affinity expansion, and dependency closure
// still apply, and the result is committed immediately.
func (r *Runtime) Activate(
	ctx context.Context,
	conversationID spec.ConversationID,
	args spec.ActivateArgs,
) (spec.ActivateResult, error) {
	if err := ctx.Err(); err != nil {
		return spec.ActivateResult{}, err
	}
	if strings.TrimSpace(string(conversationID)) == "" {
		return spec.ActivateResult{}, spec.ErrConversationRequired
	}

	cat, err := r.loadCatalog()
	if err != nil {
		return spec.ActivateResult{}, err
	}

	st := r.readLedger(conversationID, nil)

	var roots []string
	var out spec.ActivateResult
	seen := map[string]struct{}{}
	for _, name := range args.Names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		// Manual activation reaches manual-only skills too; only
		// unknown or already-active names are skipped.
		if !cat.Has(name) || st.Has(name) {
			out.Skipped = append(out.Skipped, name)
			continue
		}
		roots = append(roots, name)
	}

	if len(roots) == 0 {
		return out, nil
	}

	roots = append(resolve.ExpandAffinity(roots, st, cat), roots...)
	cl := resolve.ResolveDependencies(roots, st, cat)
	out.Activated = cl.Order

	if len(cl.Order) > 0 {
		st.Activated = append(st.Activated, cl.Order...)
		if err := r.ledger.Write(conversationID, st); err != nil {
			return spec.ActivateResult{}, err
		}
	}
	return out, nil
}

// Suggest previews the decision for a prompt without committing it.
func (r *Runtime) Suggest(
	ctx context.Context,
	conversationID spec.ConversationID,
	args spec.SuggestArgs,
) (spec.SuggestResult, error) {
	if err := ctx.Err(); err != nil {
		return spec.SuggestResult{}, err
	}
	if strings.TrimSpace(string(conversationID)) == "" {
		return spec.SuggestResult{}, spec.ErrConversationRequired
	}

	cat, err := r.loadCatalog()
	if err != nil {
		return spec.SuggestResult{}, err
	}
	cands, err := r.score(ctx, args.Prompt, cat)
	if err != nil {
		return spec.SuggestResult{}, err
	}

	res := r.decide(conversationID, cat, cands)
	return spec.SuggestResult{
		WouldActivate: res.FinalOrder,
		Suggested:     res.RemainingSuggested,
	}, nil
}

// ScoreCandidates scores a prompt through the configured scorer with
// cache memoization, without deciding anything. Hosts that must control
// commit ordering pair this with DecideTurn and Commit.
func (r *Runtime) ScoreCandidates(ctx context.Context, prompt string) ([]spec.ScoredCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cat, err := r.loadCatalog()
	if err != nil {
		return nil, err
	}
	return r.score(ctx, prompt, cat)
}

// decide is the pure pipeline: categorize, admit/promote, expand
// affinity, close dependencies, order.
func (r *Runtime) decide(
	conversationID spec.ConversationID,
	cat *catalog.Catalog,
	candidates []spec.ScoredCandidate,
) spec.TurnResult {
	res := spec.TurnResult{
		TurnID:      uuid.Must(uuid.NewV7()).String(),
		Diagnostics: cat.Diagnostics(),
	}

	st := r.readLedger(conversationID, &res)

	tiers, diags := tier.Categorize(candidates, cat, r.tierCfg)
	res.Diagnostics = append(res.Diagnostics, diags...)

	adm := resolve.Admit(tiers, st, cat, r.capacity)
	res.Admitted = adm.ToInject
	res.Promoted = adm.Promoted
	res.RemainingSuggested = adm.RemainingSuggested

	res.AffinityAdded = resolve.ExpandAffinity(adm.ToInject, st, cat)

	// Affinity additions go first among equal priorities: the DFS emits
	// them ahead of the skills that pulled them in, and the final sort
	// is stable.
	roots := append(append([]string(nil), res.AffinityAdded...), adm.ToInject...)
	cl := resolve.ResolveDependencies(roots, st, cat)
	res.FinalOrder = cl.Order
	res.Diagnostics = append(res.Diagnostics, cl.Diagnostics...)

	for _, d := range res.Diagnostics {
		r.logger.Warn("turn diagnostic",
			"turn", res.TurnID,
			"conversation", string(conversationID),
			"kind", string(d.Kind),
			"detail", d.Detail)
	}
	r.logger.Debug("turn decided",
		"turn", res.TurnID,
		"conversation", string(conversationID),
		"admitted", res.Admitted,
		"promoted", res.Promoted,
		"affinity", res.AffinityAdded,
		"final", res.FinalOrder)

	return res
}

func (r *Runtime) score(ctx context.Context, prompt string, cat *catalog.Catalog) ([]spec.ScoredCandidate, error) {
	if r.scorer == nil {
		return nil, spec.ErrScorerUnavailable
	}

	key := scorecache.Key(prompt, cat.Digest())
	if cands, ok := r.cache.Get(key); ok {
		return cands, nil
	}

	cands, err := r.scorer.Score(ctx, prompt, cat.Rules())
	if err != nil {
		return nil, err
	}
	r.cache.Put(key, cands)
	return cands, nil
}

func (r *Runtime) loadCatalog() (*catalog.Catalog, error) {
	if r.catalogPath != "" {
		return catalog.Load(r.catalogPath)
	}
	return catalog.New(r.rules), nil
}

// readLedger degrades ledger errors to a zero state per the error
// taxonomy: an unreadable ledger means full capacity, not a failed turn.
func (r *Runtime) readLedger(conversationID spec.ConversationID, res *spec.TurnResult) spec.LedgerState {
	st, err := r.ledger.Read(conversationID)
	if err != nil {
		if res != nil {
			res.Diagnostics = append(res.Diagnostics, spec.Diagnostic{
				Kind:   spec.DiagnosticLedgerRead,
				Detail: fmt.Sprintf("ledger read failed, assuming no prior activations: %v", err),
			})
		}
		return spec.LedgerState{}
	}
	return st
}
