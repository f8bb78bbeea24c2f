package model

import (
	"encoding/json"
	"fmt"
)

// Tier is the discrete outcome of matching. The zero value is not a valid tier.
type Tier int

const (
	TierTop Tier = iota + 1
	TierReview
	TierReject
)

var tierNames = map[Tier]string{
	TierTop:    "top",
	TierReview: "review",
	TierReject: "reject",
}

// tierLabels maps tiers to the labels shown to recruiters. Comparisons never use them.
var tierLabels = map[Tier]string{
	TierTop:    "auto-schedule",
	TierReview: "optional",
	TierReject: "reject",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Label returns the display label for the tier.
func (t Tier) Label() string {
	return tierLabels[t]
}

func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Tier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTier(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func ParseTier(s string) (Tier, error) {
	for tier, name := range tierNames {
		if name == s {
			return tier, nil
		}
	}
	return 0, fmt.Errorf("unknown tier %q", s)
}

type MatchScore struct {
	CandidateID          string   `json:"candidate_id" mapstructure:"candidate_id"`
	RelevanceScore       float64  `json:"relevance_score" mapstructure:"relevance_score"`
	Tier                 Tier     `json:"tier" mapstructure:"tier"`
	Reasoning            string   `json:"reasoning" mapstructure:"reasoning"`
	RedFlags             []string `json:"red_flags" mapstructure:"red_flags"`
	SkillMatchPercentage float64  `json:"skill_match_percentage" mapstructure:"skill_match_percentage"`
	ExperienceMatch      float64  `json:"experience_match" mapstructure:"experience_match"`
	ScreeningFactor      float64  `json:"screening_factor" mapstructure:"screening_factor"`
}
