// Package catalog loads and validates the skill rules file.
//
// The rules file is the single source of truth for skill metadata. It is
// re-read every turn; the rest of the router operates only on the typed,
// invariant-checked form produced here. Malformed entries are quarantined
// with diagnostics rather than failing the load.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/flexigpt/skillrouter-go/spec"
)

const maxAffinities = 2

// rawRule mirrors the on-disk record shape.
type rawRule struct {
	Type           string   `yaml:"type"`
	AutoInject     *bool    `yaml:"autoInject"`
	RequiredSkills []string `yaml:"requiredSkills"`
	Affinity       []string `yaml:"affinity"`
	InjectionOrder *int     `yaml:"injectionOrder"`
	Description    string   `yaml:"description"`
	PromptTriggers struct {
		Keywords []string `yaml:"keywords"`
	} `yaml:"promptTriggers"`
}

type rawFile struct {
	Skills map[string]rawRule `yaml:"skills"`
}

// Catalog is the validated, read-only rule set for one turn.
type Catalog struct {
	rules map[string]spec.SkillRule

	// declaredBy is the reverse affinity index: declaredBy[s] lists the
	// rules whose Affinities contain s. Built once so the resolver's
	// direction-B check is a lookup, not a scan.
	declaredBy map[string][]string

	digest string
	diags  []spec.Diagnostic
}

// Load reads and validates the rules file at path.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", spec.ErrCatalogUnavailable, path, err)
	}
	return Parse(b)
}

// Parse validates raw rules file bytes.
func Parse(data []byte) (*Catalog, error) {
	var raw rawFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid rules YAML: %v", spec.ErrCatalogUnavailable, err)
	}

	sum := sha256.Sum256(data)

	c := &Catalog{
		rules:      map[string]spec.SkillRule{},
		declaredBy: map[string][]string{},
		digest:     "sha256:" + hex.EncodeToString(sum[:]),
	}

	// Deterministic quarantine/diagnostic order.
	names := make([]string, 0, len(raw.Skills))
	for name := range raw.Skills {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rule, diags, ok := validateRule(name, raw.Skills[name])
		c.diags = append(c.diags, diags...)
		if !ok {
			continue
		}
		c.rules[rule.Name] = rule
	}

	c.checkReferences()
	c.buildDeclaredBy()
	return c, nil
}

// New builds a catalog directly from typed rules. Rules go through the
// same validation and reference checks as the file path.
func New(rules []spec.SkillRule) *Catalog {
	c := &Catalog{
		rules:      map[string]spec.SkillRule{},
		declaredBy: map[string][]string{},
	}
	for _, r := range rules {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			c.diags = append(c.diags, spec.Diagnostic{
				Kind:   spec.DiagnosticInvalidRule,
				Detail: "rule with empty name dropped",
			})
			continue
		}
		if _, exists := c.rules[name]; exists {
			c.diags = append(c.diags, spec.Diagnostic{
				Kind:   spec.DiagnosticInvalidRule,
				Skill:  name,
				Detail: "duplicate rule name dropped",
			})
			continue
		}
		r.Name = name
		if ds, ok := normalizeRule(&r); !ok {
			c.diags = append(c.diags, ds...)
			continue
		} else {
			c.diags = append(c.diags, ds...)
		}
		c.rules[name] = r
	}
	c.checkReferences()
	c.buildDeclaredBy()
	return c
}

// Rule returns the rule for name.
func (c *Catalog) Rule(name string) (spec.SkillRule, bool) {
	r, ok := c.rules[name]
	return r, ok
}

// Has reports whether name is a catalog entry.
func (c *Catalog) Has(name string) bool {
	_, ok := c.rules[name]
	return ok
}

// Rules returns all rules sorted by name.
func (c *Catalog) Rules() []spec.SkillRule {
	out := make([]spec.SkillRule, 0, len(c.rules))
	for _, r := range c.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (c *Catalog) Len() int { return len(c.rules) }

// Digest identifies the loaded rules file content ("" for New catalogs).
// Used as part of the score cache key.
func (c *Catalog) Digest() string { return c.digest }

// AffinityDeclarers returns the names whose affinity list contains name.
func (c *Catalog) AffinityDeclarers(name string) []string {
	return c.declaredBy[name]
}

// Diagnostics returns load-time diagnostics (quarantined entries, dangling
// references, priority inversions).
func (c *Catalog) Diagnostics() []spec.Diagnostic {
	return append([]spec.Diagnostic(nil), c.diags...)
}

func validateRule(name string, rr rawRule) (spec.SkillRule, []spec.Diagnostic, bool) {
	rule := spec.SkillRule{
		Name:         strings.TrimSpace(name),
		Kind:         spec.SkillKindAdvisory,
		AutoActivate: true,
		Dependencies: cleanNames(rr.RequiredSkills),
		Affinities:   cleanNames(rr.Affinity),
		Priority:     spec.DefaultPriority,
		Description:  strings.TrimSpace(rr.Description),
		Keywords:     cleanNames(rr.PromptTriggers.Keywords),
	}

	if rule.Name == "" {
		return spec.SkillRule{}, []spec.Diagnostic{{
			Kind:   spec.DiagnosticInvalidRule,
			Detail: "rule with empty name dropped",
		}}, false
	}

	switch strings.TrimSpace(rr.Type) {
	case "", string(spec.SkillKindAdvisory):
		rule.Kind = spec.SkillKindAdvisory
	case string(spec.SkillKindEnforced):
		rule.Kind = spec.SkillKindEnforced
	default:
		return spec.SkillRule{}, []spec.Diagnostic{{
			Kind:   spec.DiagnosticInvalidRule,
			Skill:  rule.Name,
			Detail: fmt.Sprintf("unknown type %q", rr.Type),
		}}, false
	}

	if rr.AutoInject != nil {
		rule.AutoActivate = *rr.AutoInject
	}
	if rr.InjectionOrder != nil {
		rule.Priority = *rr.InjectionOrder
	}

	diags, ok := normalizeRule(&rule)
	return rule, diags, ok
}

// normalizeRule clamps priority and enforces affinity invariants. It
// returns ok=false when the rule must be quarantined.
func normalizeRule(rule *spec.SkillRule) ([]spec.Diagnostic, bool) {
	var diags []spec.Diagnostic

	if rule.Priority < 0 {
		rule.Priority = 0
	}
	if rule.Priority > 100 {
		rule.Priority = 100
	}

	if len(rule.Affinities) > maxAffinities {
		return []spec.Diagnostic{{
			Kind:   spec.DiagnosticInvalidRule,
			Skill:  rule.Name,
			Detail: fmt.Sprintf("affinity lists at most %d skills, got %d", maxAffinities, len(rule.Affinities)),
		}}, false
	}
	for _, a := range rule.Affinities {
		if a == rule.Name {
			return []spec.Diagnostic{{
				Kind:   spec.DiagnosticInvalidRule,
				Skill:  rule.Name,
				Detail: "rule declares affinity to itself",
			}}, false
		}
	}
	return diags, true
}

// checkReferences records dangling dependency/affinity targets and
// priority inversions along dependency edges. Entries are kept; the
// resolver drops the dangling edges at run time.
func (c *Catalog) checkReferences() {
	names := make([]string, 0, len(c.rules))
	for name := range c.rules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		r := c.rules[name]
		for _, dep := range r.Dependencies {
			target, ok := c.rules[dep]
			if !ok {
				c.diags = append(c.diags, spec.Diagnostic{
					Kind:   spec.DiagnosticMissingDependency,
					Skill:  name,
					Ref:    dep,
					Detail: fmt.Sprintf("%s requires unknown skill %s", name, dep),
				})
				continue
			}
			// Priority sort is the final ordering step; a dependency
			// with a higher injectionOrder than its dependent would
			// sort after it. Authors get a warning, not a reorder.
			if target.Priority > r.Priority {
				c.diags = append(c.diags, spec.Diagnostic{
					Kind:   spec.DiagnosticPriorityInversion,
					Skill:  name,
					Ref:    dep,
					Detail: fmt.Sprintf("dependency %s (priority %d) sorts after %s (priority %d)", dep, target.Priority, name, r.Priority),
				})
			}
		}
		for _, a := range r.Affinities {
			if _, ok := c.rules[a]; !ok {
				c.diags = append(c.diags, spec.Diagnostic{
					Kind:   spec.DiagnosticUnknownName,
					Skill:  name,
					Ref:    a,
					Detail: fmt.Sprintf("%s declares affinity to unknown skill %s", name, a),
				})
			}
		}
	}
}

func (c *Catalog) buildDeclaredBy() {
	c.declaredBy = map[string][]string{}
	names := make([]string, 0, len(c.rules))
	for name := range c.rules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, a := range c.rules[name].Affinities {
			c.declaredBy[a] = append(c.declaredBy[a], name)
		}
	}
}

func cleanNames(in []string) []string {
	var out []string
	for _, n := range in {
		n = strings.TrimSpace(n)
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
