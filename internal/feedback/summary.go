package feedback

import (
	"math"

	"github.com/spigell/hh-screener/internal/model"
)

const maxHighlights = 5

type Summary struct {
	JobID        string                       `json:"job_id"`
	Count        int                          `json:"count"`
	AverageScore float64                      `json:"average_score"`
	Breakdown    map[model.Recommendation]int `json:"decision_breakdown"`
	Highlights   []string                     `json:"highlights"`
}

// Summarize aggregates feedback results of one job.
func Summarize(jobID string, results []*model.FeedbackResult) Summary {
	out := Summary{
		JobID: jobID,
		Breakdown: map[model.Recommendation]int{
			model.RecommendHire: 0,
			model.RecommendHold: 0,
			model.RecommendDrop: 0,
		},
		Highlights: []string{},
	}

	var total float64
	for _, r := range results {
		if r == nil {
			continue
		}
		out.Count++
		total += r.FinalScore
		out.Breakdown[r.Recommendation]++

		if len(out.Highlights) < maxHighlights {
			if r.Notes != "" {
				out.Highlights = append(out.Highlights, r.Notes)
			} else if r.FeedbackSummary != "" {
				out.Highlights = append(out.Highlights, r.FeedbackSummary)
			}
		}
	}

	if out.Count > 0 {
		out.AverageScore = math.Round(total/float64(out.Count)*100) / 100
	}
	return out
}
