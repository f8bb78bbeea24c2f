// Package screening holds the screening collaborators that interview a
// candidate and report a structured outcome.
package screening

import (
	"context"
	"errors"
	"time"

	"github.com/spigell/hh-screener/internal/model"
	"github.com/spigell/hh-screener/internal/utils"
	"go.uber.org/zap"
)

// Input is what every screener receives.
type Input struct {
	Candidate *model.Candidate
	Job       *model.JobDescription
	Mode      model.ScreeningMode
}

func (in Input) validate() error {
	if in.Candidate == nil {
		return model.Permanent(errors.New("candidate is required"))
	}
	if in.Job == nil {
		return model.Permanent(errors.New("job description is required"))
	}
	return nil
}

// Simulated returns canned chat or voice outcomes after an optional delay.
type Simulated struct {
	logger *zap.Logger
	delay  time.Duration
}

func NewSimulated(logger *zap.Logger, delay time.Duration) *Simulated {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulated{logger: logger, delay: delay}
}

func (s *Simulated) Name() string {
	return "screening"
}

func (s *Simulated) Process(ctx context.Context, in Input) (*model.ScreeningOutcome, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	mode := in.Mode
	if mode == "" {
		mode = model.ModeChat
	}

	fields := []zap.Field{
		zap.String("candidate_id", in.Candidate.ID),
		zap.String("mode", string(mode)),
	}
	s.logger.Info("starting screening", fields...)

	wait := s.delay
	if mode == model.ModeVoice {
		wait *= 2
	}
	if err := utils.WaitFor(ctx, wait); err != nil {
		return nil, err
	}

	var out *model.ScreeningOutcome
	if mode == model.ModeVoice {
		out = voiceOutcome(in.Candidate)
	} else {
		out = chatOutcome(in.Candidate)
	}

	s.logger.Info("screening completed", append(fields,
		zap.Float64("enthusiasm", out.EnthusiasmScore),
		zap.Int("red_flags", len(out.RedFlags)),
	)...)
	return out, nil
}

func chatOutcome(c *model.Candidate) *model.ScreeningOutcome {
	return &model.ScreeningOutcome{
		CandidateID:      c.ID,
		CurrentOrg:       "TechCorp Inc",
		CurrentRole:      "ML Engineer",
		ValidatedSkills:  validate(c.Skills),
		Availability:     "Immediate",
		RelocationIntent: false,
		EnthusiasmScore:  7.5,
		RedFlags:         []string{"Expected salary higher than budget"},
		Notes:            "Strong technical skills, motivated but cost might be a blocker.",
	}
}

func voiceOutcome(c *model.Candidate) *model.ScreeningOutcome {
	skills := c.Skills
	if len(skills) > 2 {
		skills = skills[:2]
	}
	return &model.ScreeningOutcome{
		CandidateID:      c.ID,
		CurrentOrg:       "Initech Ltd",
		CurrentRole:      "Senior Developer",
		ValidatedSkills:  validate(skills),
		Availability:     "2 weeks",
		RelocationIntent: true,
		EnthusiasmScore:  8.2,
		RedFlags:         []string{},
		Notes:            "Highly confident and clearly experienced in required stack.",
	}
}

func validate(skills []string) map[string]bool {
	out := make(map[string]bool, len(skills))
	for _, s := range skills {
		out[s] = true
	}
	return out
}

func (s *Simulated) Details() map[string]string {
	return map[string]string{
		"provider": "simulated",
		"delay":    s.delay.String(),
	}
}
