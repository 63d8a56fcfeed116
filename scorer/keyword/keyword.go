// Package keyword implements the fallback scorer. It matches catalog
// prompt triggers against the request text, producing the same
// ScoredCandidate contract as the external classifier so the router
// cannot tell the sources apart.
package keyword

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/flexigpt/skillrouter-go/spec"
)

// Scorer scores candidates by trigger keyword overlap.
type Scorer struct {
	// BaseConfidence is the score for a rule whose first keyword
	// matches; full trigger coverage scores 1.0.
	BaseConfidence float64
}

func New() *Scorer {
	return &Scorer{BaseConfidence: 0.5}
}

// Score returns one candidate per rule with at least one trigger match.
// Rules without prompt triggers are never proposed by this scorer.
func (s *Scorer) Score(ctx context.Context, request string, rules []spec.SkillRule) ([]spec.ScoredCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := normalize(request)
	tokens := tokenSet(text)

	var out []spec.ScoredCandidate
	for _, rule := range rules {
		if len(rule.Keywords) == 0 {
			continue
		}

		var matched []string
		for _, kw := range rule.Keywords {
			if matches(kw, text, tokens) {
				matched = append(matched, kw)
			}
		}
		if len(matched) == 0 {
			continue
		}

		conf := s.BaseConfidence + (1-s.BaseConfidence)*float64(len(matched))/float64(len(rule.Keywords))
		if conf > 1 {
			conf = 1
		}
		out = append(out, spec.ScoredCandidate{
			Name:       rule.Name,
			Confidence: conf,
			Reason:     fmt.Sprintf("matched triggers: %s", strings.Join(matched, ", ")),
		})
	}

	// Best match first; ties keep rule order.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out, nil
}

// matches tests a single keyword: whole-token match for single words,
// substring match on the normalized text for phrases.
func matches(keyword, text string, tokens map[string]struct{}) bool {
	kw := normalize(keyword)
	if kw == "" {
		return false
	}
	if !strings.ContainsRune(kw, ' ') {
		_, ok := tokens[kw]
		return ok
	}
	return strings.Contains(text, kw)
}

func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

func tokenSet(normalized string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, tok := range strings.Fields(normalized) {
		out[tok] = struct{}{}
	}
	return out
}
