package matching

import (
	"fmt"
	"slices"

	"github.com/spigell/hh-screener/internal/model"
)

const learningEstimate = "4-6 weeks"

// SkillGaps lists the required skills the candidate lacks, lowercased and sorted.
func SkillGaps(candidate *model.Candidate, job *model.JobDescription) []string {
	if candidate == nil || job == nil {
		return nil
	}
	have := lowerSet(candidate.Skills)

	var gaps []string
	for s := range lowerSet(job.RequiredSkills) {
		if _, ok := have[s]; !ok {
			gaps = append(gaps, s)
		}
	}
	slices.Sort(gaps)
	return gaps
}

// LearningPlan suggests resources for each gap.
func LearningPlan(gaps []string) []model.LearningItem {
	items := make([]model.LearningItem, 0, len(gaps))
	for _, gap := range gaps {
		items = append(items, model.LearningItem{
			Skill: gap,
			Resources: []string{
				fmt.Sprintf("Online course: %s Fundamentals", gap),
				fmt.Sprintf("Practice project: Build a %s application", gap),
				fmt.Sprintf("Certification: %s Professional", gap),
			},
			EstimatedTime: learningEstimate,
		})
	}
	return items
}
