package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spigell/hh-screener/internal/feedback"
	"github.com/spigell/hh-screener/internal/logger"
	"github.com/spigell/hh-screener/internal/model"
	"github.com/spigell/hh-screener/internal/store"
	"go.uber.org/zap"
)

// Feedback records interviewer feedback for a scheduled pipeline and moves it
// through interviewed to completed. Like Run it reports faults in the result.
func (o *Orchestrator) Feedback(ctx context.Context, candidateID, jobID string, bag feedback.Bag) (result *model.FeedbackResult) {
	log := logger.ForPipeline(o.logger, candidateID, jobID)
	failed := func(err error) *model.FeedbackResult {
		log.Error("feedback failed", zap.Error(err))
		return &model.FeedbackResult{
			CandidateID: candidateID,
			JobID:       jobID,
			Status:      model.RunError,
			Message:     err.Error(),
		}
	}

	defer func() {
		if p := recover(); p != nil {
			log.Error("feedback panicked", zap.Any("panic", p), zap.Stack("stack"))
			result = failed(fmt.Errorf("panic: %v", p))
		}
	}()

	o.feedbackMu.Lock()
	defer o.feedbackMu.Unlock()

	st, err := o.Status(ctx, candidateID, jobID)
	if err != nil {
		return failed(err)
	}
	if _, err := o.store.GetCandidate(ctx, candidateID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return failed(fmt.Errorf("%w: %q", ErrCandidateNotFound, candidateID))
		}
		return failed(fmt.Errorf("get candidate: %w", err))
	}
	if st.Status != model.StatusScheduled {
		return failed(fmt.Errorf("%w: feedback needs a %s pipeline, got %s", model.ErrInvalidTransition, model.StatusScheduled, st.Status))
	}

	res, err := runStage(ctx, o, st, o.stages.Feedback, feedback.Input{CandidateID: candidateID, JobID: jobID, Bag: bag})
	if err != nil {
		// Keep the failed attempts in the audit trail without moving the pipeline.
		if putErr := o.store.PutPipeline(context.WithoutCancel(ctx), st); putErr != nil {
			log.Error("failed to persist feedback errors", zap.Error(putErr))
		}
		return failed(err)
	}

	r := &run{state: st, log: log}
	if err := o.advance(ctx, r, model.StatusInterviewed); err != nil {
		return failed(err)
	}
	st.Set(DataFeedback, res)
	if err := o.advance(ctx, r, model.StatusCompleted); err != nil {
		return failed(err)
	}

	return res
}

// Status returns the stored state of one pipeline.
func (o *Orchestrator) Status(ctx context.Context, candidateID, jobID string) (*model.PipelineState, error) {
	st, err := o.store.GetPipeline(ctx, model.PipelineKey{CandidateID: candidateID, JobID: jobID})
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", ErrPipelineNotFound, candidateID, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("get pipeline: %w", err)
	}
	return st, nil
}

// Pipelines lists the stored states of one job, or of every job when jobID
// is empty, ordered by candidate id.
func (o *Orchestrator) Pipelines(ctx context.Context, jobID string) ([]*model.PipelineState, error) {
	var out []*model.PipelineState
	for st, err := range o.store.ScanPipelines(ctx) {
		if err != nil {
			return nil, err
		}
		if jobID == "" || st.JobID == jobID {
			out = append(out, st)
		}
	}
	slices.SortFunc(out, func(a, b *model.PipelineState) int {
		if c := strings.Compare(a.JobID, b.JobID); c != 0 {
			return c
		}
		return strings.Compare(a.CandidateID, b.CandidateID)
	})
	return out, nil
}

// FeedbackResults collects the feedback stored on completed pipelines of a job.
func (o *Orchestrator) FeedbackResults(ctx context.Context, jobID string) ([]*model.FeedbackResult, error) {
	states, err := o.Pipelines(ctx, jobID)
	if err != nil {
		return nil, err
	}

	var out []*model.FeedbackResult
	for _, st := range states {
		raw, ok := st.Data[DataFeedback]
		if !ok {
			continue
		}
		var res model.FeedbackResult
		if err := model.Decode(raw, &res); err != nil {
			return nil, fmt.Errorf("decode feedback of %s: %w", st.Key(), err)
		}
		out = append(out, &res)
	}
	return out, nil
}
