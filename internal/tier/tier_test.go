package tier

import (
	"reflect"
	"testing"

	"github.com/flexigpt/skillrouter-go/internal/catalog"
	"github.com/flexigpt/skillrouter-go/spec"
)

func testCatalog(t *testing.T, names ...string) *catalog.Catalog {
	t.Helper()
	rules := make([]spec.SkillRule, 0, len(names))
	for _, n := range names {
		rules = append(rules, spec.SkillRule{Name: n, AutoActivate: true, Priority: spec.DefaultPriority})
	}
	return catalog.New(rules)
}

func names(cands []spec.ScoredCandidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.Name)
	}
	return out
}

func TestCategorizeSplitsTiers(t *testing.T) {
	cat := testCatalog(t, "a", "b", "c", "d")
	cands := []spec.ScoredCandidate{
		{Name: "a", Confidence: 0.9},
		{Name: "b", Confidence: 0.6},
		{Name: "c", Confidence: 0.3},
		{Name: "d", Confidence: 0.7},
	}

	tiers, diags := Categorize(cands, cat, DefaultConfig())
	if len(diags) != 0 {
		t.Fatalf("diags = %v, want none", diags)
	}
	if got, want := names(tiers.Admit), []string{"a", "d"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Admit = %v, want %v", got, want)
	}
	if got, want := names(tiers.Consider), []string{"b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Consider = %v, want %v", got, want)
	}
}

func TestCategorizeBoundaryConfidences(t *testing.T) {
	cat := testCatalog(t, "hi", "lo")
	cfg := DefaultConfig()

	// Exactly Thigh is consider, exactly Tlow is consider.
	cands := []spec.ScoredCandidate{
		{Name: "hi", Confidence: cfg.HighThreshold},
		{Name: "lo", Confidence: cfg.LowThreshold},
	}
	tiers, _ := Categorize(cands, cat, cfg)
	if len(tiers.Admit) != 0 {
		t.Fatalf("Admit = %v, want empty", names(tiers.Admit))
	}
	if got, want := names(tiers.Consider), []string{"hi", "lo"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Consider = %v, want %v", got, want)
	}
}

func TestCategorizeCapsAndStableTies(t *testing.T) {
	cat := testCatalog(t, "a", "b", "c", "d")
	cands := []spec.ScoredCandidate{
		{Name: "a", Confidence: 0.8},
		{Name: "b", Confidence: 0.8},
		{Name: "c", Confidence: 0.8},
		{Name: "d", Confidence: 0.9},
	}

	tiers, _ := Categorize(cands, cat, DefaultConfig())
	// d wins on score; a and b tie at 0.8 and keep input order; cap 2.
	if got, want := names(tiers.Admit), []string{"d", "a"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Admit = %v, want %v", got, want)
	}
}

func TestCategorizeDropsUnknownNames(t *testing.T) {
	cat := testCatalog(t, "known")
	cands := []spec.ScoredCandidate{
		{Name: "known", Confidence: 0.9},
		{Name: "phantom", Confidence: 0.95},
	}

	tiers, diags := Categorize(cands, cat, DefaultConfig())
	if got, want := names(tiers.Admit), []string{"known"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Admit = %v, want %v", got, want)
	}
	if len(diags) != 1 || diags[0].Kind != spec.DiagnosticUnknownName {
		t.Fatalf("diags = %v, want one unknown_name", diags)
	}
}

func TestCategorizeClampsConfidence(t *testing.T) {
	cat := testCatalog(t, "over", "under")
	cands := []spec.ScoredCandidate{
		{Name: "over", Confidence: 1.7},
		{Name: "under", Confidence: -0.2},
	}

	tiers, _ := Categorize(cands, cat, DefaultConfig())
	if got, want := names(tiers.Admit), []string{"over"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Admit = %v, want %v", got, want)
	}
	if tiers.Admit[0].Confidence != 1 {
		t.Fatalf("clamped confidence = %v, want 1", tiers.Admit[0].Confidence)
	}
	if len(tiers.Consider) != 0 {
		t.Fatalf("Consider = %v, want empty", names(tiers.Consider))
	}
}

func TestCategorizeEmptyInput(t *testing.T) {
	cat := testCatalog(t, "a")
	tiers, diags := Categorize(nil, cat, DefaultConfig())
	if len(tiers.Admit) != 0 || len(tiers.Consider) != 0 || len(diags) != 0 {
		t.Fatalf("expected empty result, got %+v %v", tiers, diags)
	}
}
