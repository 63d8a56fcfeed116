// Package promptxml renders activation output for the host transport.
package promptxml

import (
	"encoding/xml"
	"fmt"
)

// Skill is one renderable skill: name plus its SKILL.md body.
type Skill struct {
	Name        string
	Description string
	Body        string
}

type activatedSkills struct {
	XMLName xml.Name        `xml:"activated_skills"`
	Skills  []activatedSkill `xml:"skill"`
}

// Shape: <skill name="..."><![CDATA[SKILL.md body]]></skill>.
type activatedSkill struct {
	Name string `xml:"name,attr"`
	Body string `xml:",cdata"`
}

type suggestedSkills struct {
	XMLName xml.Name         `xml:"suggested_skills"`
	Skills  []suggestedSkill `xml:"skill"`
}

type suggestedSkill struct {
	Name        string `xml:"name"`
	Description string `xml:"description,omitempty"`
}

// ActivatedSkillsXML renders the emitted skills in activation order.
func ActivatedSkillsXML(skills []Skill) (string, error) {
	out := activatedSkills{Skills: make([]activatedSkill, 0, len(skills))}
	for _, sk := range skills {
		out.Skills = append(out.Skills, activatedSkill{
			Name: sk.Name,
			Body: sk.Body,
		})
	}
	b, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("xml encode: %w", err)
	}
	return string(b), nil
}

// SuggestedSkillsXML renders still-suggested names for optional manual
// activation.
func SuggestedSkillsXML(skills []Skill) (string, error) {
	out := suggestedSkills{Skills: make([]suggestedSkill, 0, len(skills))}
	for _, sk := range skills {
		out.Skills = append(out.Skills, suggestedSkill{
			Name:        sk.Name,
			Description: sk.Description,
		})
	}
	b, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("xml encode: %w", err)
	}
	return string(b), nil
}
