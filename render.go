package skillrouter

import (
	"context"

	"github.com/flexigpt/skillrouter-go/internal/catalog"
	"github.com/flexigpt/skillrouter-go/internal/promptxml"
	"github.com/flexigpt/skillrouter-go/spec"
)

// RenderActivation renders a committed turn for stdout emission:
// an <activated_skills> block with each skill's SKILL.md body in final
// order, followed by a <suggested_skills> block when consider-tier names
// were left unpromoted. Returns "" when the turn activated and suggested
// nothing.
//
// A skill whose body cannot be loaded is still emitted by name; content
// problems reduce output, they never fail the turn.
func (r *Runtime) RenderActivation(ctx context.Context, res spec.TurnResult) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	cat, err := r.loadCatalog()
	if err != nil {
		return "", err
	}

	var out string

	if len(res.FinalOrder) > 0 {
		skills := make([]promptxml.Skill, 0, len(res.FinalOrder))
		for _, name := range res.FinalOrder {
			body := ""
			if r.contentDir != "" {
				b, err := catalog.LoadBody(ctx, r.contentDir, name)
				if err != nil {
					r.logger.Warn("skill body unavailable", "skill", name, "err", err)
				} else {
					body = b
				}
			}
			skills = append(skills, promptxml.Skill{Name: name, Body: body})
		}
		block, err := promptxml.ActivatedSkillsXML(skills)
		if err != nil {
			return "", err
		}
		out = block
	}

	if len(res.RemainingSuggested) > 0 {
		skills := make([]promptxml.Skill, 0, len(res.RemainingSuggested))
		for _, name := range res.RemainingSuggested {
			desc := ""
			if rule, ok := cat.Rule(name); ok {
				desc = rule.Description
			}
			skills = append(skills, promptxml.Skill{Name: name, Description: desc})
		}
		block, err := promptxml.SuggestedSkillsXML(skills)
		if err != nil {
			return "", err
		}
		if out != "" {
			out += "\n"
		}
		out += block
	}

	return out, nil
}
