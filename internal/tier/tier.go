// Package tier turns raw scorer output into the admit and consider
// tiers. Pure computation: clamped, filtered, stably sorted, capped.
package tier

import (
	"fmt"
	"sort"

	"github.com/flexigpt/skillrouter-go/internal/catalog"
	"github.com/flexigpt/skillrouter-go/spec"
)

// Config holds the fixed thresholds and per-tier caps.
type Config struct {
	// HighThreshold admits; LowThreshold..HighThreshold considers.
	// HighThreshold must be greater than LowThreshold.
	HighThreshold float64
	LowThreshold  float64

	MaxAdmit    int
	MaxConsider int
}

// DefaultConfig returns the stock thresholds and caps.
func DefaultConfig() Config {
	return Config{
		HighThreshold: 0.65,
		LowThreshold:  0.50,
		MaxAdmit:      2,
		MaxConsider:   2,
	}
}

// Tiers is the categorizer output. Both slices are sorted by confidence
// descending; equal confidence keeps input order.
type Tiers struct {
	Admit    []spec.ScoredCandidate
	Consider []spec.ScoredCandidate
}

// Categorize filters candidates against the catalog and splits them into
// tiers. Scorer output is untrusted: names outside the catalog are
// dropped with a diagnostic and confidence is clamped to [0,1] so a bad
// scorer never fails the turn.
func Categorize(cands []spec.ScoredCandidate, cat *catalog.Catalog, cfg Config) (Tiers, []spec.Diagnostic) {
	var diags []spec.Diagnostic

	known := make([]spec.ScoredCandidate, 0, len(cands))
	for _, c := range cands {
		if !cat.Has(c.Name) {
			diags = append(diags, spec.Diagnostic{
				Kind:   spec.DiagnosticUnknownName,
				Skill:  c.Name,
				Detail: fmt.Sprintf("scorer proposed %q, not in catalog", c.Name),
			})
			continue
		}
		known = append(known, spec.ScoredCandidate{
			Name:       c.Name,
			Confidence: clamp01(c.Confidence),
			Reason:     c.Reason,
		})
	}

	// Stable: ties keep scorer order.
	sort.SliceStable(known, func(i, j int) bool {
		return known[i].Confidence > known[j].Confidence
	})

	var out Tiers
	for _, c := range known {
		switch {
		case c.Confidence > cfg.HighThreshold:
			out.Admit = append(out.Admit, c)
		case c.Confidence >= cfg.LowThreshold:
			out.Consider = append(out.Consider, c)
		}
	}

	out.Admit = truncate(out.Admit, cfg.MaxAdmit)
	out.Consider = truncate(out.Consider, cfg.MaxConsider)
	return out, diags
}

func truncate(cands []spec.ScoredCandidate, n int) []spec.ScoredCandidate {
	if n >= 0 && len(cands) > n {
		return cands[:n]
	}
	return cands
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
