package skillrouter

import (
	"log/slog"
	"time"

	"github.com/flexigpt/skillrouter-go/spec"
)

type runtimeOptions struct {
	logger *slog.Logger

	catalogPath string
	rules       []spec.SkillRule
	contentDir  string

	ledger    spec.Ledger
	ledgerDir string

	scorer spec.Scorer

	highThreshold float64
	lowThreshold  float64
	maxAdmit      int
	maxConsider   int
	capacity      int

	cacheTTL  time.Duration
	cacheSize int
}

type Option func(*runtimeOptions) error

func WithLogger(l *slog.Logger) Option {
	return func(o *runtimeOptions) error {
		o.logger = l
		return nil
	}
}

// WithCatalogFile sets the rules file path. The catalog is re-read at the
// start of every turn.
func WithCatalogFile(path string) Option {
	return func(o *runtimeOptions) error {
		o.catalogPath = path
		return nil
	}
}

// WithRules supplies a static rule set instead of a rules file. Mostly
// useful for embedded callers and tests.
func WithRules(rules []spec.SkillRule) Option {
	return func(o *runtimeOptions) error {
		o.rules = append([]spec.SkillRule(nil), rules...)
		return nil
	}
}

// WithContentDir sets the directory holding <name>/SKILL.md bodies for
// rendering. Without it, RenderActivation emits names only.
func WithContentDir(dir string) Option {
	return func(o *runtimeOptions) error {
		o.contentDir = dir
		return nil
	}
}

// WithLedger injects a ledger implementation. Defaults to an in-memory
// ledger, which does not survive the process.
func WithLedger(l spec.Ledger) Option {
	return func(o *runtimeOptions) error {
		o.ledger = l
		return nil
	}
}

// WithLedgerDir uses the file-backed ledger rooted at dir.
func WithLedgerDir(dir string) Option {
	return func(o *runtimeOptions) error {
		o.ledgerDir = dir
		return nil
	}
}

// WithScorer sets the scorer used by RunTurn and Suggest. DecideTurn
// works without one when the host supplies candidates directly.
func WithScorer(s spec.Scorer) Option {
	return func(o *runtimeOptions) error {
		o.scorer = s
		return nil
	}
}

// WithThresholds overrides the admit/consider confidence thresholds.
// high must be greater than low.
func WithThresholds(high, low float64) Option {
	return func(o *runtimeOptions) error {
		o.highThreshold = high
		o.lowThreshold = low
		return nil
	}
}

// WithTierCaps overrides the per-tier size caps.
func WithTierCaps(maxAdmit, maxConsider int) Option {
	return func(o *runtimeOptions) error {
		o.maxAdmit = maxAdmit
		o.maxConsider = maxConsider
		return nil
	}
}

// WithCapacity sets the conversation-scoped admission budget C.
func WithCapacity(c int) Option {
	return func(o *runtimeOptions) error {
		o.capacity = c
		return nil
	}
}

// WithScoreCacheTTL overrides how long a scorer result is replayed.
func WithScoreCacheTTL(ttl time.Duration) Option {
	return func(o *runtimeOptions) error {
		o.cacheTTL = ttl
		return nil
	}
}

// WithScoreCacheSize overrides the score cache entry bound.
func WithScoreCacheSize(n int) Option {
	return func(o *runtimeOptions) error {
		o.cacheSize = n
		return nil
	}
}
