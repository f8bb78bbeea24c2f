package model

import (
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// candidateNamespace scopes candidate ids derived from identity fields.
var candidateNamespace = uuid.MustParse("6f1c9e52-3b0a-4d55-9a8e-2a9b7d1c4e10")

type Candidate struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone,omitempty"`
	Location       string         `json:"location,omitempty"`
	Skills         []string       `json:"skills"`
	Experience     map[string]int `json:"experience"`
	Education      string         `json:"education,omitempty"`
	Certifications []string       `json:"certifications,omitempty"`
	Languages      []string       `json:"languages,omitempty"`
	NoticePeriod   string         `json:"notice_period,omitempty"`
	ResumeText     string         `json:"resume_text"`
	ResumeHash     string         `json:"resume_hash"`
	JDSimilarity   float64        `json:"jd_similarity"`
}

// CandidateID derives the stable candidate id from an email address.
// Case and surrounding whitespace are ignored.
func CandidateID(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	return uuid.NewSHA1(candidateNamespace, []byte(normalized)).String()
}

// TotalExperience sums the per-skill years.
func (c *Candidate) TotalExperience() int {
	total := 0
	for _, years := range c.Experience {
		if years > 0 {
			total += years
		}
	}
	return total
}

func (c *Candidate) Clone() *Candidate {
	if c == nil {
		return nil
	}
	out := *c
	out.Skills = slices.Clone(c.Skills)
	out.Experience = maps.Clone(c.Experience)
	out.Certifications = slices.Clone(c.Certifications)
	out.Languages = slices.Clone(c.Languages)
	return &out
}
