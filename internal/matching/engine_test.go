package matching

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/spigell/hh-screener/internal/model"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func TestSkillMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		candidate []string
		required  []string
		expect    float64
	}{
		{name: "empty requirement", candidate: []string{"go"}, required: nil, expect: 100},
		{name: "empty requirement and no skills", candidate: nil, required: []string{}, expect: 100},
		{name: "case insensitive partial", candidate: []string{"python", "aws"}, required: []string{"Python", "SQL", "AWS"}, expect: 66.67},
		{name: "none", candidate: []string{"rust"}, required: []string{"Go"}, expect: 0},
		{name: "duplicates in requirement collapse", candidate: []string{"Go"}, required: []string{"go", "GO"}, expect: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := round2(SkillMatch(tt.candidate, tt.required)); got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestExperienceMatch(t *testing.T) {
	t.Parallel()

	c := &model.Candidate{Experience: map[string]int{"Python": 3, "SQL": 2}}
	if got := ExperienceMatch(c.TotalExperience(), 4); got != 100 {
		t.Fatalf("expected cap at 100, got %v", got)
	}
	if got := ExperienceMatch(3, 4); got != 75 {
		t.Fatalf("expected 75, got %v", got)
	}
	if got := ExperienceMatch(0, 0); got != 100 {
		t.Fatalf("expected 100 when nothing is required, got %v", got)
	}
}

func TestScreeningFactor(t *testing.T) {
	t.Parallel()

	if got := ScreeningFactor(7.0, 0); got != 70 {
		t.Fatalf("expected 70, got %v", got)
	}
	if got := ScreeningFactor(7.0, 3); got != 40 {
		t.Fatalf("expected 40, got %v", got)
	}
	if got := ScreeningFactor(1.0, 5); got != 0 {
		t.Fatalf("expected floor at 0, got %v", got)
	}
}

func TestTier(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	tests := []struct {
		score    float64
		redFlags int
		expect   model.Tier
	}{
		{score: 95, redFlags: 3, expect: model.TierReject},
		{score: 95, redFlags: 2, expect: model.TierTop},
		{score: 80, redFlags: 0, expect: model.TierTop},
		{score: 79.99, redFlags: 0, expect: model.TierReview},
		{score: 60, redFlags: 0, expect: model.TierReview},
		{score: 59.99, redFlags: 0, expect: model.TierReject},
	}

	for _, tt := range tests {
		if got := e.Tier(tt.score, tt.redFlags); got != tt.expect {
			t.Fatalf("score %v flags %d: expected %s, got %s", tt.score, tt.redFlags, tt.expect, got)
		}
	}
}

func TestEngineProcess(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	candidate := &model.Candidate{
		ID:         "c-1",
		Skills:     []string{"python", "sql"},
		Experience: map[string]int{"Python": 3, "SQL": 2},
	}
	job := &model.JobDescription{ID: "job-1", Title: "Data Engineer", RequiredSkills: []string{"Python", "SQL"}, ExperienceRequired: 4}

	t.Run("top", func(t *testing.T) {
		t.Parallel()
		score, err := e.Process(context.Background(), Input{
			Candidate: candidate,
			Job:       job,
			Screening: &model.ScreeningOutcome{EnthusiasmScore: 7.0},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if score.RelevanceScore != 91 {
			t.Fatalf("expected 91, got %v", score.RelevanceScore)
		}
		if score.Tier != model.TierTop {
			t.Fatalf("expected top tier, got %s", score.Tier)
		}
		if !strings.Contains(score.Reasoning, "Data Engineer") {
			t.Fatalf("unexpected reasoning %q", score.Reasoning)
		}
		if score.RedFlags == nil {
			t.Fatal("red flags must be an empty list, not nil")
		}
	})

	t.Run("red flags force reject", func(t *testing.T) {
		t.Parallel()
		flags := []string{"a", "b", "c"}
		score, err := e.Process(context.Background(), Input{
			Candidate: candidate,
			Job:       job,
			Screening: &model.ScreeningOutcome{EnthusiasmScore: 10, RedFlags: flags},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if score.RelevanceScore < 80 {
			t.Fatalf("expected a high score, got %v", score.RelevanceScore)
		}
		if score.Tier != model.TierReject {
			t.Fatalf("expected reject tier, got %s", score.Tier)
		}
		if !strings.HasPrefix(score.Reasoning, "Not a strong fit") {
			t.Fatalf("reasoning must follow the tier, got %q", score.Reasoning)
		}
		if !slices.Equal(score.RedFlags, flags) {
			t.Fatalf("red flags must be copied, got %v", score.RedFlags)
		}
	})

	t.Run("missing inputs", func(t *testing.T) {
		t.Parallel()
		if _, err := e.Process(context.Background(), Input{Candidate: candidate}); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestEngineRoundsOnlyComposite(t *testing.T) {
	t.Parallel()

	// 0.3*45.4545... + 0.3*6 = 15.436 rounds up; with 45.45 it would be 15.435 and round down.
	score, err := newTestEngine(t).Process(context.Background(), Input{
		Candidate: &model.Candidate{ID: "c-1", Experience: map[string]int{"Go": 5}},
		Job:       &model.JobDescription{ID: "job-1", RequiredSkills: []string{"Rust"}, ExperienceRequired: 11},
		Screening: &model.ScreeningOutcome{EnthusiasmScore: 0.6},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score.RelevanceScore != 15.44 {
		t.Fatalf("expected 15.44, got %v", score.RelevanceScore)
	}
	if score.ExperienceMatch != 45.45 {
		t.Fatalf("expected displayed experience match 45.45, got %v", score.ExperienceMatch)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	bad := []Config{
		{Weights: Weights{Skill: -1, Experience: 1}, TopThreshold: 80, ReviewThreshold: 60},
		{TopThreshold: 80, ReviewThreshold: 60},
		{Weights: Weights{Skill: 1}, TopThreshold: 50, ReviewThreshold: 60},
		{Weights: Weights{Skill: 1}, TopThreshold: 80, ReviewThreshold: 60, RedFlagLimit: -1},
	}
	for i, cfg := range bad {
		if _, err := NewEngine(cfg, nil); err == nil {
			t.Fatalf("config %d: expected validation error", i)
		}
	}
}

func TestSkillGapsAndLearningPlan(t *testing.T) {
	t.Parallel()

	gaps := SkillGaps(
		&model.Candidate{Skills: []string{"Python"}},
		&model.JobDescription{RequiredSkills: []string{"SQL", "python", "AWS"}},
	)
	if !slices.Equal(gaps, []string{"aws", "sql"}) {
		t.Fatalf("unexpected gaps %v", gaps)
	}

	plan := LearningPlan(gaps)
	if len(plan) != 2 {
		t.Fatalf("expected 2 items, got %d", len(plan))
	}
	if plan[0].Skill != "aws" || plan[0].EstimatedTime != "4-6 weeks" || len(plan[0].Resources) != 3 {
		t.Fatalf("unexpected item %+v", plan[0])
	}
	if plan[1].Resources[0] != "Online course: sql Fundamentals" {
		t.Fatalf("unexpected resource %q", plan[1].Resources[0])
	}
}
