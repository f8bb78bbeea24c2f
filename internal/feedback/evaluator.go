// Package feedback scores interviewer feedback and recommends the next step.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"github.com/spigell/hh-screener/internal/model"
	"go.uber.org/zap"
)

const (
	DefaultTechnical     = 7.0
	DefaultCommunication = 8.0
	DefaultCultureFit    = 7.5

	hireThreshold = 8.0
	holdThreshold = 6.5

	maxScore = 10
)

// Bag is the raw interviewer feedback as received from the caller.
type Bag map[string]any

type scores struct {
	Technical     *float64 `mapstructure:"technical_score"`
	Communication *float64 `mapstructure:"communication_score"`
	CultureFit    *float64 `mapstructure:"culture_fit_score"`
	CultureFitAlt *float64 `mapstructure:"culture_fit"`
	Interviewer   string   `mapstructure:"interviewer"`
	Notes         string   `mapstructure:"notes"`
}

type Input struct {
	CandidateID string
	JobID       string
	Bag         Bag
}

type Evaluator struct {
	logger *zap.Logger
}

func NewEvaluator(logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{logger: logger}
}

func (e *Evaluator) Name() string {
	return "feedback"
}

// Process computes the weighted final score. Missing sub-scores fall back to
// neutral defaults; the summary shows them as N/A.
func (e *Evaluator) Process(_ context.Context, in Input) (*model.FeedbackResult, error) {
	var s scores
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &s,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(map[string]any(in.Bag)); err != nil {
		return nil, model.Permanent(fmt.Errorf("decode feedback: %w", err))
	}

	technical, err := scoreOr(s.Technical, DefaultTechnical, "technical_score")
	if err != nil {
		return nil, err
	}
	communication, err := scoreOr(s.Communication, DefaultCommunication, "communication_score")
	if err != nil {
		return nil, err
	}
	cultureKey, cultureFit := "culture_fit_score", s.CultureFit
	if cultureFit == nil && s.CultureFitAlt != nil {
		cultureKey, cultureFit = "culture_fit", s.CultureFitAlt
	}
	culture, err := scoreOr(cultureFit, DefaultCultureFit, cultureKey)
	if err != nil {
		return nil, err
	}

	// Cut-offs apply to the exact score; only the reported value is rounded.
	exact := 0.5*technical + 0.3*communication + 0.2*culture
	rec := Recommend(exact)
	final := math.Round(exact*100) / 100

	result := &model.FeedbackResult{
		CandidateID:     in.CandidateID,
		JobID:           in.JobID,
		Status:          model.RunProcessed,
		FinalScore:      final,
		Recommendation:  rec,
		FeedbackSummary: summary(s.Technical, s.Communication),
		NextAction:      rec.NextAction(),
		Interviewer:     s.Interviewer,
		Notes:           s.Notes,
	}

	e.logger.Info("feedback evaluated",
		zap.String("candidate_id", in.CandidateID),
		zap.String("job_id", in.JobID),
		zap.Float64("final_score", final),
		zap.String("recommendation", string(rec)),
	)
	return result, nil
}

// Recommend maps a final score to a recommendation.
func Recommend(final float64) model.Recommendation {
	switch {
	case final >= hireThreshold:
		return model.RecommendHire
	case final >= holdThreshold:
		return model.RecommendHold
	default:
		return model.RecommendDrop
	}
}

func scoreOr(v *float64, fallback float64, name string) (float64, error) {
	if v == nil {
		return fallback, nil
	}
	if math.IsNaN(*v) || *v < 0 || *v > maxScore {
		return 0, model.Permanent(errors.New(name + " must be between 0 and 10"))
	}
	return *v, nil
}

func summary(technical, communication *float64) string {
	return fmt.Sprintf("Technical: %s/10, Communication: %s/10", formatScore(technical), formatScore(communication))
}

func formatScore(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
