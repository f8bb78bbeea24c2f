package feedback

import (
	"context"
	"testing"

	"github.com/spigell/hh-screener/internal/model"
)

func TestEvaluatorProcess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		bag           Bag
		expectScore   float64
		expectRec     model.Recommendation
		expectNext    string
		expectSummary string
	}{
		{
			name:          "hire",
			bag:           Bag{"technical_score": 8.5, "communication_score": 9.0, "culture_fit_score": 8.0},
			expectScore:   8.55,
			expectRec:     model.RecommendHire,
			expectNext:    "generate_offer",
			expectSummary: "Technical: 8.5/10, Communication: 9/10",
		},
		{
			name:          "defaults",
			bag:           Bag{},
			expectScore:   7.4,
			expectRec:     model.RecommendHold,
			expectNext:    "schedule_final_round",
			expectSummary: "Technical: N/A/10, Communication: N/A/10",
		},
		{
			name:          "weak typed strings",
			bag:           Bag{"technical_score": "4", "communication_score": "5", "culture_fit_score": 6},
			expectScore:   4.7,
			expectRec:     model.RecommendDrop,
			expectNext:    "send_rejection",
			expectSummary: "Technical: 4/10, Communication: 5/10",
		},
		{
			name:          "just below hire",
			bag:           Bag{"technical_score": 8, "communication_score": 8, "culture_fit_score": 7.98},
			expectScore:   8,
			expectRec:     model.RecommendHold,
			expectNext:    "schedule_final_round",
			expectSummary: "Technical: 8/10, Communication: 8/10",
		},
		{
			name:          "short culture fit key",
			bag:           Bag{"technical_score": 8.5, "communication_score": 9.0, "culture_fit": 2.0},
			expectScore:   7.35,
			expectRec:     model.RecommendHold,
			expectNext:    "schedule_final_round",
			expectSummary: "Technical: 8.5/10, Communication: 9/10",
		},
		{
			name:          "long culture fit key wins",
			bag:           Bag{"technical_score": 8.5, "communication_score": 9.0, "culture_fit_score": 8.0, "culture_fit": 2.0},
			expectScore:   8.55,
			expectRec:     model.RecommendHire,
			expectNext:    "generate_offer",
			expectSummary: "Technical: 8.5/10, Communication: 9/10",
		},
		{
			name:          "hold boundary",
			bag:           Bag{"technical_score": 6.5, "communication_score": 6.5, "culture_fit_score": 6.5},
			expectScore:   6.5,
			expectRec:     model.RecommendHold,
			expectNext:    "schedule_final_round",
			expectSummary: "Technical: 6.5/10, Communication: 6.5/10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := NewEvaluator(nil).Process(context.Background(), Input{CandidateID: "c-1", JobID: "job-1", Bag: tt.bag})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.FinalScore != tt.expectScore {
				t.Fatalf("expected score %v, got %v", tt.expectScore, res.FinalScore)
			}
			if res.Recommendation != tt.expectRec {
				t.Fatalf("expected %s, got %s", tt.expectRec, res.Recommendation)
			}
			if res.NextAction != tt.expectNext {
				t.Fatalf("expected next action %q, got %q", tt.expectNext, res.NextAction)
			}
			if res.FeedbackSummary != tt.expectSummary {
				t.Fatalf("expected summary %q, got %q", tt.expectSummary, res.FeedbackSummary)
			}
			if res.Status != model.RunProcessed || res.CandidateID != "c-1" {
				t.Fatalf("unexpected result %+v", res)
			}
		})
	}
}

func TestEvaluatorRejectsBadScores(t *testing.T) {
	t.Parallel()

	bad := []Bag{
		{"technical_score": 11},
		{"communication_score": -1},
		{"culture_fit_score": "great"},
		{"culture_fit": 12},
	}
	for i, bag := range bad {
		if _, err := NewEvaluator(nil).Process(context.Background(), Input{Bag: bag}); err == nil {
			t.Fatalf("bag %d: expected error", i)
		}
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	results := []*model.FeedbackResult{
		{FinalScore: 8.55, Recommendation: model.RecommendHire, Notes: "great"},
		{FinalScore: 7.0, Recommendation: model.RecommendHold, FeedbackSummary: "Technical: 7/10, Communication: 7/10"},
		{FinalScore: 5.0, Recommendation: model.RecommendDrop},
		nil,
	}

	s := Summarize("job-1", results)
	if s.Count != 3 {
		t.Fatalf("expected 3 results, got %d", s.Count)
	}
	if s.AverageScore != 6.85 {
		t.Fatalf("expected average 6.85, got %v", s.AverageScore)
	}
	for _, rec := range []model.Recommendation{model.RecommendHire, model.RecommendHold, model.RecommendDrop} {
		if s.Breakdown[rec] != 1 {
			t.Fatalf("expected one %s, got %v", rec, s.Breakdown)
		}
	}
	if len(s.Highlights) != 2 || s.Highlights[0] != "great" {
		t.Fatalf("unexpected highlights %v", s.Highlights)
	}

	empty := Summarize("job-2", nil)
	if empty.Count != 0 || empty.AverageScore != 0 || len(empty.Highlights) != 0 {
		t.Fatalf("unexpected empty summary %+v", empty)
	}
}
