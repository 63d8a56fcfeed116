// Package routertool exposes the router's manual escape hatches as
// llmtools-go tools: skills.activate commits still-suggested (or
// manual-only) skills, skills.suggest previews a decision without
// committing it.
package routertool

import (
	"context"
	"errors"

	"github.com/flexigpt/llmtools-go"
	llmtoolsgoSpec "github.com/flexigpt/llmtools-go/spec"

	"github.com/flexigpt/skillrouter-go/spec"
)

const (
	FuncIDSkillsActivate llmtoolsgoSpec.FuncID = "github.com/flexigpt/skillrouter-go/routertool.Activate"
	FuncIDSkillsSuggest  llmtoolsgoSpec.FuncID = "github.com/flexigpt/skillrouter-go/routertool.Suggest"
)

// Register registers the router tools into an existing llmtools-go
// Registry. Conversation binding is done by closure via conversationID.
func Register(r *llmtools.Registry, rt spec.Router, conversationID spec.ConversationID) error {
	if r == nil {
		return errors.New("nil registry")
	}
	if rt == nil {
		return errors.New("nil router")
	}

	// "skills.activate" -> typed -> text output (JSON).
	if err := llmtools.RegisterTypedAsTextTool[spec.ActivateArgs, spec.ActivateResult](
		r,
		SkillsActivateTool(),
		func(ctx context.Context, args spec.ActivateArgs) (spec.ActivateResult, error) {
			return rt.Activate(ctx, conversationID, args)
		},
	); err != nil {
		return err
	}

	// "skills.suggest" -> typed -> text output (JSON).
	if err := llmtools.RegisterTypedAsTextTool[spec.SuggestArgs, spec.SuggestResult](
		r,
		SkillsSuggestTool(),
		func(ctx context.Context, args spec.SuggestArgs) (spec.SuggestResult, error) {
			return rt.Suggest(ctx, conversationID, args)
		},
	); err != nil {
		return err
	}

	return nil
}

func Tools() []llmtoolsgoSpec.Tool {
	return []llmtoolsgoSpec.Tool{
		SkillsActivateTool(),
		SkillsSuggestTool(),
	}
}

func SkillsActivateTool() llmtoolsgoSpec.Tool {
	return llmtoolsgoSpec.Tool{
		SchemaVersion: llmtoolsgoSpec.SchemaVersion,
		ID:            "019c1d40-8a55-7f01-b42e-1d3c55aa9a01",
		Slug:          "skills.activate",
		Version:       "v1.0.0",
		DisplayName:   "Skills Activate",
		Description:   "Manually activate suggested skills for this conversation. Dependencies and affinities are pulled in; already-active skills are skipped.",
		Tags:          []string{"skills"},
		ArgSchema: llmtoolsgoSpec.JSONSchema(`{
		  "$schema":"http://json-schema.org/draft-07/schema#",
		  "type":"object",
		  "properties":{
		    "names":{"type":"array","items":{"type":"string"}}
		  },
		  "required":["names"],
		  "additionalProperties":false
		}`),
		GoImpl:     llmtoolsgoSpec.GoToolImpl{FuncID: FuncIDSkillsActivate},
		CreatedAt:  llmtoolsgoSpec.SchemaStartTime,
		ModifiedAt: llmtoolsgoSpec.SchemaStartTime,
	}
}

func SkillsSuggestTool() llmtoolsgoSpec.Tool {
	return llmtoolsgoSpec.Tool{
		SchemaVersion: llmtoolsgoSpec.SchemaVersion,
		ID:            "019c1d40-8a55-7f01-b42e-1d3c55aa9a02",
		Slug:          "skills.suggest",
		Version:       "v1.0.0",
		DisplayName:   "Skills Suggest",
		Description:   "Preview which skills the router would activate for a prompt, without activating them.",
		Tags:          []string{"skills"},
		ArgSchema: llmtoolsgoSpec.JSONSchema(`{
		  "$schema":"http://json-schema.org/draft-07/schema#",
		  "type":"object",
		  "properties":{
		    "prompt":{"type":"string"}
		  },
		  "required":["prompt"],
		  "additionalProperties":false
		}`),
		GoImpl:     llmtoolsgoSpec.GoToolImpl{FuncID: FuncIDSkillsSuggest},
		CreatedAt:  llmtoolsgoSpec.SchemaStartTime,
		ModifiedAt: llmtoolsgoSpec.SchemaStartTime,
	}
}
