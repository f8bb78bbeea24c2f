package model

// ScreeningMode selects how the screening collaborator talks to a candidate.
type ScreeningMode string

const (
	ModeChat  ScreeningMode = "chat"
	ModeVoice ScreeningMode = "voice"
)

// ParseScreeningMode falls back to chat for unknown values.
func ParseScreeningMode(s string) ScreeningMode {
	if ScreeningMode(s) == ModeVoice {
		return ModeVoice
	}
	return ModeChat
}

type ScreeningOutcome struct {
	CandidateID      string          `json:"candidate_id" mapstructure:"candidate_id"`
	CurrentOrg       string          `json:"current_org" mapstructure:"current_org"`
	CurrentRole      string          `json:"current_role" mapstructure:"current_role"`
	ValidatedSkills  map[string]bool `json:"validated_skills" mapstructure:"validated_skills"`
	Availability     string          `json:"availability" mapstructure:"availability"`
	RelocationIntent bool            `json:"relocation_intent" mapstructure:"relocation_intent"`
	EnthusiasmScore  float64         `json:"enthusiasm_score" mapstructure:"enthusiasm_score"`
	RedFlags         []string        `json:"red_flags" mapstructure:"red_flags"`
	Notes            string          `json:"notes" mapstructure:"notes"`
}
