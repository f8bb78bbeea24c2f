// Package pipeline drives a candidate through parsing, uniqueness, screening,
// matching and scheduling, and later through interview feedback.
package pipeline

import (
	"context"

	"github.com/spigell/hh-screener/internal/feedback"
	"github.com/spigell/hh-screener/internal/matching"
	"github.com/spigell/hh-screener/internal/model"
	"github.com/spigell/hh-screener/internal/parsing"
	"github.com/spigell/hh-screener/internal/scheduling"
	"github.com/spigell/hh-screener/internal/screening"
	"github.com/spigell/hh-screener/internal/uniqueness"
)

// Stage is one processing step of a pipeline run.
type Stage[In, Out any] interface {
	Name() string
	Process(ctx context.Context, in In) (Out, error)
}

// Stages holds the collaborators of a pipeline. All fields are required.
type Stages struct {
	Parsing    Stage[parsing.Input, *model.Candidate]
	Uniqueness Stage[uniqueness.Input, model.Verdict]
	Screening  Stage[screening.Input, *model.ScreeningOutcome]
	Matching   Stage[matching.Input, *model.MatchScore]
	Scheduling Stage[scheduling.Input, *model.SchedulingOutcome]
	Feedback   Stage[feedback.Input, *model.FeedbackResult]
}

type namedStage interface {
	Name() string
}

var stageNames = []string{"parsing", "uniqueness", "screening", "matching", "scheduling", "feedback"}

func (s Stages) all() []namedStage {
	return []namedStage{s.Parsing, s.Uniqueness, s.Screening, s.Matching, s.Scheduling, s.Feedback}
}

func (s Stages) missing() []string {
	var out []string
	for i, stage := range s.all() {
		if stage == nil {
			out = append(out, stageNames[i])
		}
	}
	return out
}

// Status represents runtime information about a stage.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// detailsProvider is implemented by stages that can describe their configuration.
type detailsProvider interface {
	Details() map[string]string
}

// Describe returns status entries for the stages in run order. Missing stages
// are reported as disabled.
func Describe(stages Stages) []Status {
	all := stages.all()
	statuses := make([]Status, 0, len(all))
	for i, stage := range all {
		if stage == nil {
			statuses = append(statuses, Status{Name: stageNames[i], Reason: "not configured"})
			continue
		}
		status := Status{Name: stage.Name(), Enabled: true}
		if reporter, ok := stage.(detailsProvider); ok {
			status.Details = reporter.Details()
		}
		statuses = append(statuses, status)
	}
	return statuses
}
