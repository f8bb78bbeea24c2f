// Package scheduling books an interview slot for candidates that passed matching.
package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/hh-screener/internal/calendar"
	"github.com/spigell/hh-screener/internal/model"
	"go.uber.org/zap"
)

type Input struct {
	Candidate *model.Candidate
	Match     *model.MatchScore
}

type Scheduler struct {
	calendar calendar.Calendar
	notifier calendar.Notifier
	logger   *zap.Logger
}

func NewScheduler(cal calendar.Calendar, notifier calendar.Notifier, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = calendar.NewLogNotifier(logger)
	}
	return &Scheduler{calendar: cal, notifier: notifier, logger: logger}
}

func (s *Scheduler) Name() string {
	return "scheduling"
}

// Process books the earliest slot. Rejected tiers and an empty calendar are
// reported as outcomes, not errors. Notification failures are logged only.
func (s *Scheduler) Process(ctx context.Context, in Input) (*model.SchedulingOutcome, error) {
	if in.Candidate == nil || in.Match == nil {
		return nil, model.Permanent(errors.New("candidate and match score are required"))
	}

	log := s.logger.With(zap.String("candidate_id", in.Candidate.ID))

	if in.Match.Tier == model.TierReject {
		log.Info("reject tier, skipping scheduling")
		return &model.SchedulingOutcome{
			Action:  model.ScheduleActionReject,
			Message: "Low match score or red flags",
		}, nil
	}

	if s.calendar == nil {
		return nil, errors.New("calendar is not configured")
	}

	slots, err := s.calendar.ListSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	if len(slots) == 0 {
		log.Warn("no interview slots available")
		return &model.SchedulingOutcome{
			Action:  model.ScheduleActionNoSlots,
			Message: "No interview slots available",
		}, nil
	}

	// An attempt abandoned by its deadline must not notify the candidate.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slot := slots[0]
	out := &model.SchedulingOutcome{
		Action:        model.ScheduleActionBooked,
		Scheduled:     true,
		InterviewTime: slot,
	}

	if err := s.notifier.SendInvite(ctx, in.Candidate, slot); err != nil {
		log.Warn("failed to send calendar invite", zap.Error(err))
	} else {
		out.CalendarInviteSent = true
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.notifier.SendConfirmation(ctx, in.Candidate, slot); err != nil {
		log.Warn("failed to send confirmation", zap.Error(err))
	} else {
		out.ConfirmationSent = true
	}

	log.Info("interview scheduled", zap.Time("slot", slot), zap.Stringer("tier", in.Match.Tier))
	return out, nil
}

func (s *Scheduler) Details() map[string]string {
	return map[string]string{
		"calendar": fmt.Sprintf("%T", s.calendar),
		"notifier": fmt.Sprintf("%T", s.notifier),
	}
}
