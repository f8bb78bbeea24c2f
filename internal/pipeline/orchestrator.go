package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spigell/hh-screener/internal/logger"
	"github.com/spigell/hh-screener/internal/matching"
	"github.com/spigell/hh-screener/internal/model"
	"github.com/spigell/hh-screener/internal/parsing"
	"github.com/spigell/hh-screener/internal/scheduling"
	"github.com/spigell/hh-screener/internal/screening"
	"github.com/spigell/hh-screener/internal/store"
	"github.com/spigell/hh-screener/internal/uniqueness"
	"go.uber.org/zap"
)

var (
	ErrJobNotFound       = errors.New("job not found")
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrPipelineNotFound  = errors.New("pipeline not found")
)

// Keys of PipelineState.Data.
const (
	DataMode       = "mode"
	DataVerdict    = "verdict"
	DataScreening  = "screening_result"
	DataMatch      = "match_score"
	DataScheduling = "scheduling"
	DataSkillGaps  = "skill_gaps"
	DataLearning   = "learning_recommendations"
	DataFeedback   = "feedback"
)

const DefaultStageTimeout = 30 * time.Second

type Options struct {
	Retry RetryPolicy
	// StageTimeout bounds each stage attempt. Zero disables it.
	StageTimeout time.Duration
	Now          func() time.Time
}

// Request is one submission to screen.
type Request struct {
	RawText string
	JobID   string
	Mode    model.ScreeningMode
}

// Orchestrator runs pipelines against a store. It is safe for concurrent use;
// runs for different candidates proceed in parallel except for the short
// admission step that checks uniqueness and inserts the candidate.
type Orchestrator struct {
	store        store.Store
	stages       Stages
	retry        RetryPolicy
	stageTimeout time.Duration
	now          func() time.Time
	logger       *zap.Logger

	admission  sync.Mutex
	feedbackMu sync.Mutex
}

func New(st store.Store, stages Stages, opts Options, log *zap.Logger) (*Orchestrator, error) {
	if st == nil {
		return nil, errors.New("store is required")
	}
	if missing := stages.missing(); len(missing) > 0 {
		return nil, fmt.Errorf("missing stages: %s", strings.Join(missing, ", "))
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Orchestrator{
		store:        st,
		stages:       stages,
		retry:        opts.Retry,
		stageTimeout: opts.StageTimeout,
		now:          opts.Now,
		logger:       log,
	}, nil
}

func (o *Orchestrator) Describe() []Status {
	return Describe(o.stages)
}

// run carries the state of one pipeline run so the failure boundary can
// reach it after a fault.
type run struct {
	req   Request
	state *model.PipelineState
	log   *zap.Logger
}

// Run screens one submission. It never returns an error or panics: faults end
// the run with status error and force a known pipeline to rejected.
func (o *Orchestrator) Run(ctx context.Context, req Request) (result *model.RunResult) {
	r := &run{req: req, log: logger.ForPipeline(o.logger, "", req.JobID)}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("pipeline panicked", zap.Any("panic", p), zap.Stack("stack"))
			result = o.fail(ctx, r, fmt.Errorf("panic: %v", p))
		}
	}()

	res, err := o.run(ctx, r)
	if err != nil {
		return o.fail(ctx, r, err)
	}
	return res
}

func (o *Orchestrator) run(ctx context.Context, r *run) (*model.RunResult, error) {
	req := r.req
	if req.Mode == "" {
		req.Mode = model.ModeChat
	}

	job, err := o.store.GetJob(ctx, req.JobID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// Parsing still runs so the failure is recorded against the candidate.
		job = nil
	case err != nil:
		return nil, fmt.Errorf("get job: %w", err)
	}

	// Parsing happens before the state key is known, so attempts are
	// recorded on a provisional state and carried over.
	provisional := model.NewPipelineState(model.PipelineKey{JobID: req.JobID}, o.now())
	candidate, err := runStage(ctx, o, provisional, o.stages.Parsing, parsing.Input{RawText: req.RawText, Job: job})
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, errors.New("parsing: no candidate produced")
	}
	r.log = logger.ForPipeline(o.logger, candidate.ID, req.JobID)

	verdict, proceed, err := o.admit(ctx, r, candidate, provisional)
	if err != nil {
		return nil, err
	}
	if !proceed {
		return &model.RunResult{
			Status:      model.RunRejected,
			Reason:      model.ReasonDuplicate,
			CandidateID: candidate.ID,
			JobID:       req.JobID,
			Duplicates:  verdict.Duplicates,
		}, nil
	}

	st := r.state
	if job == nil {
		return nil, fmt.Errorf("%w: %q", ErrJobNotFound, req.JobID)
	}

	outcome, err := runStage(ctx, o, st, o.stages.Screening, screening.Input{Candidate: candidate, Job: job, Mode: req.Mode})
	if err != nil {
		return nil, err
	}
	st.Set(DataScreening, outcome)
	if err := o.advance(ctx, r, model.StatusScreened); err != nil {
		return nil, err
	}

	match, err := runStage(ctx, o, st, o.stages.Matching, matching.Input{Candidate: candidate, Job: job, Screening: outcome})
	if err != nil {
		return nil, err
	}
	st.Set(DataMatch, match)
	if err := o.advance(ctx, r, model.StatusScored); err != nil {
		return nil, err
	}

	if match.Tier == model.TierReject {
		gaps := matching.SkillGaps(candidate, job)
		learning := matching.LearningPlan(gaps)
		st.Set(DataSkillGaps, gaps)
		st.Set(DataLearning, learning)
		if err := o.advance(ctx, r, model.StatusRejected); err != nil {
			return nil, err
		}
		return &model.RunResult{
			Status:      model.RunRejected,
			Reason:      model.ReasonLowMatchScore,
			CandidateID: candidate.ID,
			JobID:       req.JobID,
			Score:       match.RelevanceScore,
			Screening:   outcome,
			Match:       match,
			SkillGaps:   gaps,
			Learning:    learning,
		}, nil
	}

	sched, err := runStage(ctx, o, st, o.stages.Scheduling, scheduling.Input{Candidate: candidate, Match: match})
	if err != nil {
		return nil, err
	}
	st.Set(DataScheduling, sched)
	if err := o.advance(ctx, r, model.StatusScheduled); err != nil {
		return nil, err
	}

	return &model.RunResult{
		Status:      model.RunProcessed,
		CandidateID: candidate.ID,
		JobID:       req.JobID,
		Score:       match.RelevanceScore,
		Screening:   outcome,
		Match:       match,
		Scheduling:  sched,
	}, nil
}

// admit checks uniqueness against the stored candidates and, in the same
// critical section, stores the candidate and its pipeline state. An existing
// candidate record is never overwritten. proceed is false for duplicates.
func (o *Orchestrator) admit(ctx context.Context, r *run, candidate *model.Candidate, provisional *model.PipelineState) (model.Verdict, bool, error) {
	o.admission.Lock()
	defer o.admission.Unlock()

	key := model.PipelineKey{CandidateID: candidate.ID, JobID: r.req.JobID}
	verdict, err := runStage(ctx, o, provisional, o.stages.Uniqueness, uniqueness.Input{
		Candidate: candidate,
		Existing:  o.store.ScanCandidates(ctx),
	})
	if err != nil {
		return model.Verdict{}, false, err
	}

	if verdict.IsDuplicate {
		existing, err := o.store.GetPipeline(ctx, key)
		switch {
		case err == nil:
			r.log.Info("duplicate submission, keeping existing pipeline",
				zap.String(logger.FieldStatus, string(existing.Status)),
				zap.Strings("duplicates", verdict.Duplicates),
			)
			return verdict, false, nil
		case !errors.Is(err, store.ErrNotFound):
			return model.Verdict{}, false, fmt.Errorf("get pipeline: %w", err)
		}
	}

	if _, err := o.store.GetCandidate(ctx, candidate.ID); errors.Is(err, store.ErrNotFound) {
		if err := o.store.PutCandidate(ctx, candidate); err != nil {
			return model.Verdict{}, false, fmt.Errorf("put candidate: %w", err)
		}
	} else if err != nil {
		return model.Verdict{}, false, fmt.Errorf("get candidate: %w", err)
	}

	st := model.NewPipelineState(key, provisional.CreatedAt)
	st.Retries = provisional.Retries
	st.Errors = append(st.Errors, provisional.Errors...)
	st.Set(DataMode, string(r.req.Mode))
	r.state = st

	if err := o.advance(ctx, r, model.StatusParsed); err != nil {
		return model.Verdict{}, false, err
	}

	st.Set(DataVerdict, verdict)
	if verdict.IsDuplicate {
		r.log.Info("duplicate candidate detected", zap.Strings("duplicates", verdict.Duplicates))
		if err := o.advance(ctx, r, model.StatusRejected); err != nil {
			return model.Verdict{}, false, err
		}
		return verdict, false, nil
	}

	if err := o.advance(ctx, r, model.StatusVerified); err != nil {
		return model.Verdict{}, false, err
	}
	return verdict, true, nil
}

// advance moves the run's state and persists it before the caller continues.
func (o *Orchestrator) advance(ctx context.Context, r *run, next model.PipelineStatus) error {
	if err := r.state.Advance(next, o.now()); err != nil {
		return err
	}
	if err := o.store.PutPipeline(ctx, r.state); err != nil {
		return fmt.Errorf("put pipeline: %w", err)
	}
	r.log.Info("pipeline advanced", zap.String(logger.FieldStatus, string(next)))
	return nil
}

// fail is the failure boundary of Run.
func (o *Orchestrator) fail(ctx context.Context, r *run, err error) *model.RunResult {
	res := &model.RunResult{
		Status:  model.RunError,
		Message: err.Error(),
		JobID:   r.req.JobID,
	}

	st := r.state
	if st == nil {
		r.log.Error("pipeline failed before admission", zap.Error(err))
		return res
	}
	res.CandidateID = st.CandidateID

	st.RecordError(err.Error())
	if !st.Status.Terminal() {
		if advErr := st.Advance(model.StatusRejected, o.now()); advErr != nil {
			r.log.Error("failed to reject pipeline", zap.Error(advErr))
		}
	}

	// Persist even when ctx is already cancelled.
	if putErr := o.store.PutPipeline(context.WithoutCancel(ctx), st); putErr != nil {
		r.log.Error("failed to persist failed pipeline", zap.Error(putErr))
	}

	r.log.Error("pipeline failed", zap.Error(err), zap.String(logger.FieldStatus, string(st.Status)))
	return res
}
