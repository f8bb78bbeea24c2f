package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spigell/hh-screener/internal/logger"
	"github.com/spigell/hh-screener/internal/model"
	"github.com/spigell/hh-screener/internal/utils"
	"go.uber.org/zap"
)

// RetryPolicy bounds how often a failing stage is attempted.
type RetryPolicy struct {
	MaxAttempts int           `mapstructure:"max-attempts"`
	Backoff     time.Duration `mapstructure:"backoff"`
	MaxBackoff  time.Duration `mapstructure:"max-backoff"`
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     200 * time.Millisecond,
		MaxBackoff:  2 * time.Second,
	}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// runStage calls stage until it succeeds or the policy is exhausted. Every
// failed attempt lands in st.Errors and every re-attempt bumps st.Retries.
// Cancellation of ctx and errors marked model.ErrPermanent stop retrying
// immediately.
func runStage[In, Out any](ctx context.Context, o *Orchestrator, st *model.PipelineState, stage Stage[In, Out], in In) (Out, error) {
	var zero Out
	name := stage.Name()
	log := o.logger.With(
		zap.String(logger.FieldCandidateID, st.CandidateID),
		zap.String(logger.FieldJobID, st.JobID),
		zap.String(logger.FieldStage, name),
	)

	attempts := o.retry.attempts()
	for attempt := 1; ; attempt++ {
		out, err := attemptStage(ctx, o.stageTimeout, stage, in)
		if err == nil {
			log.Debug("stage finished", zap.Int(logger.FieldAttempt, attempt))
			return out, nil
		}

		st.RecordError(fmt.Sprintf("%s: attempt %d: %v", name, attempt, err))

		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, fmt.Errorf("%s: %w", name, ctxErr)
		}
		if attempt >= attempts || errors.Is(err, model.ErrPermanent) {
			return zero, fmt.Errorf("%s: %w", name, err)
		}

		delay := utils.Backoff(attempt, o.retry.Backoff, o.retry.MaxBackoff)
		log.Warn("stage failed, retrying",
			zap.Int(logger.FieldAttempt, attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		st.Retries++

		if err := utils.WaitFor(ctx, delay); err != nil {
			return zero, fmt.Errorf("%s: %w", name, err)
		}
	}
}

type attemptResult[Out any] struct {
	out      Out
	err      error
	panicked any
}

// attemptStage runs a single attempt. With a positive timeout the attempt is
// abandoned once the deadline passes, even if the stage ignores ctx. Panics
// are re-raised on the calling goroutine.
func attemptStage[In, Out any](ctx context.Context, timeout time.Duration, stage Stage[In, Out], in In) (Out, error) {
	if timeout <= 0 {
		return stage.Process(ctx, in)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan attemptResult[Out], 1)
	go func() {
		var res attemptResult[Out]
		defer func() {
			if r := recover(); r != nil {
				res.panicked = r
			}
			done <- res
		}()
		res.out, res.err = stage.Process(attemptCtx, in)
	}()

	select {
	case res := <-done:
		if res.panicked != nil {
			panic(res.panicked)
		}
		return res.out, res.err
	case <-attemptCtx.Done():
		var zero Out
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, fmt.Errorf("timed out after %s", timeout)
	}
}
