package model

import "slices"

type JobDescription struct {
	ID                 string   `json:"id" mapstructure:"id"`
	Title              string   `json:"title" mapstructure:"title"`
	Company            string   `json:"company" mapstructure:"company"`
	RequiredSkills     []string `json:"required_skills" mapstructure:"required_skills"`
	PreferredSkills    []string `json:"preferred_skills,omitempty" mapstructure:"preferred_skills"`
	ExperienceRequired int      `json:"experience_required" mapstructure:"experience_required"`
	Location           string   `json:"location" mapstructure:"location"`
	Description        string   `json:"description" mapstructure:"description"`
	SalaryRange        string   `json:"salary_range,omitempty" mapstructure:"salary_range"`
}

func (j *JobDescription) Clone() *JobDescription {
	if j == nil {
		return nil
	}
	out := *j
	out.RequiredSkills = slices.Clone(j.RequiredSkills)
	out.PreferredSkills = slices.Clone(j.PreferredSkills)
	return &out
}
