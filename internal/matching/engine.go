// Package matching scores a screened candidate against a job and assigns the
// tier that drives scheduling.
package matching

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/spigell/hh-screener/internal/model"
	"go.uber.org/zap"
)

const redFlagPenalty = 10

type Weights struct {
	Skill      float64 `mapstructure:"skill"`
	Experience float64 `mapstructure:"experience"`
	Screening  float64 `mapstructure:"screening"`
}

type Config struct {
	Weights         Weights `mapstructure:"weights"`
	TopThreshold    float64 `mapstructure:"top-threshold"`
	ReviewThreshold float64 `mapstructure:"review-threshold"`
	// RedFlagLimit is the largest red flag count that still allows a non
	// reject tier.
	RedFlagLimit int `mapstructure:"red-flag-limit"`
}

func DefaultConfig() Config {
	return Config{
		Weights:         Weights{Skill: 0.4, Experience: 0.3, Screening: 0.3},
		TopThreshold:    80,
		ReviewThreshold: 60,
		RedFlagLimit:    2,
	}
}

func (c Config) Validate() error {
	w := c.Weights
	if w.Skill < 0 || w.Experience < 0 || w.Screening < 0 {
		return errors.New("matching weights must not be negative")
	}
	if w.Skill+w.Experience+w.Screening == 0 {
		return errors.New("at least one matching weight must be positive")
	}
	if c.ReviewThreshold > c.TopThreshold {
		return fmt.Errorf("review threshold %.2f is above top threshold %.2f", c.ReviewThreshold, c.TopThreshold)
	}
	if c.RedFlagLimit < 0 {
		return errors.New("red flag limit must not be negative")
	}
	return nil
}

type Input struct {
	Candidate *model.Candidate
	Job       *model.JobDescription
	Screening *model.ScreeningOutcome
}

type Engine struct {
	cfg    Config
	logger *zap.Logger
}

func NewEngine(cfg Config, logger *zap.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, logger: logger}, nil
}

func (e *Engine) Name() string {
	return "matching"
}

func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) Process(_ context.Context, in Input) (*model.MatchScore, error) {
	if in.Candidate == nil || in.Job == nil || in.Screening == nil {
		return nil, model.Permanent(errors.New("candidate, job and screening outcome are required"))
	}

	skill := SkillMatch(in.Candidate.Skills, in.Job.RequiredSkills)
	experience := ExperienceMatch(in.Candidate.TotalExperience(), in.Job.ExperienceRequired)
	screening := ScreeningFactor(in.Screening.EnthusiasmScore, len(in.Screening.RedFlags))

	w := e.cfg.Weights
	// Only the composite is rounded; sub-scores are rounded for display.
	score := round2(skill*w.Skill + experience*w.Experience + screening*w.Screening)
	tier := e.Tier(score, len(in.Screening.RedFlags))

	result := &model.MatchScore{
		CandidateID:          in.Candidate.ID,
		RelevanceScore:       score,
		Tier:                 tier,
		Reasoning:            reasoning(tier, in.Job),
		RedFlags:             slices.Clone(in.Screening.RedFlags),
		SkillMatchPercentage: round2(skill),
		ExperienceMatch:      round2(experience),
		ScreeningFactor:      round2(screening),
	}
	if result.RedFlags == nil {
		result.RedFlags = []string{}
	}

	e.logger.Info("match score calculated",
		zap.String("candidate_id", in.Candidate.ID),
		zap.String("job_id", in.Job.ID),
		zap.Float64("score", score),
		zap.Stringer("tier", tier),
		zap.String("label", tier.Label()),
	)
	return result, nil
}

// Tier applies the red flag limit first, then the score thresholds.
func (e *Engine) Tier(score float64, redFlags int) model.Tier {
	switch {
	case redFlags > e.cfg.RedFlagLimit:
		return model.TierReject
	case score >= e.cfg.TopThreshold:
		return model.TierTop
	case score >= e.cfg.ReviewThreshold:
		return model.TierReview
	default:
		return model.TierReject
	}
}

// SkillMatch is the case-insensitive share of required skills the candidate
// has, 0-100. An empty requirement is a full match.
func SkillMatch(candidate, required []string) float64 {
	req := lowerSet(required)
	if len(req) == 0 {
		return 100
	}
	have := lowerSet(candidate)

	matched := 0
	for s := range req {
		if _, ok := have[s]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(req)) * 100
}

// ExperienceMatch compares total years with the requirement, capped at 100.
func ExperienceMatch(totalYears, requiredYears int) float64 {
	if totalYears >= requiredYears {
		return 100
	}
	return float64(totalYears) / float64(requiredYears) * 100
}

// ScreeningFactor scales enthusiasm to 0-100 and subtracts a fixed penalty
// per red flag, never going below zero.
func ScreeningFactor(enthusiasm float64, redFlags int) float64 {
	return math.Max(0, enthusiasm*10-float64(redFlagPenalty*redFlags))
}

func reasoning(tier model.Tier, job *model.JobDescription) string {
	switch tier {
	case model.TierTop:
		return fmt.Sprintf("Excellent fit for %s: highly motivated and skilled.", job.Title)
	case model.TierReview:
		return "Good potential, some gaps in skills or enthusiasm."
	default:
		return "Not a strong fit: concerns in alignment or red flags."
	}
}

func lowerSet(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, s := range items {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out[s] = struct{}{}
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (e *Engine) Details() map[string]string {
	w := e.cfg.Weights
	return map[string]string{
		"weights":          fmt.Sprintf("skill=%g experience=%g screening=%g", w.Skill, w.Experience, w.Screening),
		"top_threshold":    fmt.Sprintf("%g", e.cfg.TopThreshold),
		"review_threshold": fmt.Sprintf("%g", e.cfg.ReviewThreshold),
		"red_flag_limit":   fmt.Sprintf("%d", e.cfg.RedFlagLimit),
	}
}
