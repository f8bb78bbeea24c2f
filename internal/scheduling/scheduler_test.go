package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spigell/hh-screener/internal/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubCalendar struct {
	slots []time.Time
	err   error
	calls int
}

func (s *stubCalendar) ListSlots(context.Context) ([]time.Time, error) {
	s.calls++
	return s.slots, s.err
}

type stubNotifier struct {
	inviteErr  error
	confirmErr error
	invites    []time.Time
	confirms   []time.Time
}

func (s *stubNotifier) SendInvite(_ context.Context, _ *model.Candidate, slot time.Time) error {
	s.invites = append(s.invites, slot)
	return s.inviteErr
}

func (s *stubNotifier) SendConfirmation(_ context.Context, _ *model.Candidate, slot time.Time) error {
	s.confirms = append(s.confirms, slot)
	return s.confirmErr
}

var (
	first  = time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)
	second = time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC)
	cand   = &model.Candidate{ID: "c-1"}
)

func TestSchedulerBooksFirstSlot(t *testing.T) {
	t.Parallel()

	cal := &stubCalendar{slots: []time.Time{first, second}}
	notifier := &stubNotifier{}

	out, err := NewScheduler(cal, notifier, nil).Process(context.Background(), Input{
		Candidate: cand,
		Match:     &model.MatchScore{Tier: model.TierReview},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Action != model.ScheduleActionBooked || !out.Scheduled {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if !out.InterviewTime.Equal(first) {
		t.Fatalf("expected first slot, got %s", out.InterviewTime)
	}
	if !out.CalendarInviteSent || !out.ConfirmationSent {
		t.Fatalf("expected both notifications, got %+v", out)
	}
	if len(notifier.invites) != 1 || len(notifier.confirms) != 1 {
		t.Fatalf("expected one call each, got %d/%d", len(notifier.invites), len(notifier.confirms))
	}
}

func TestSchedulerRejectTierHasNoSideEffects(t *testing.T) {
	t.Parallel()

	cal := &stubCalendar{slots: []time.Time{first}}
	notifier := &stubNotifier{}

	out, err := NewScheduler(cal, notifier, nil).Process(context.Background(), Input{
		Candidate: cand,
		Match:     &model.MatchScore{Tier: model.TierReject},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Action != model.ScheduleActionReject || out.Scheduled {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if cal.calls != 0 || len(notifier.invites) != 0 {
		t.Fatal("reject tier must not touch the calendar")
	}
}

func TestSchedulerNoSlots(t *testing.T) {
	t.Parallel()

	notifier := &stubNotifier{}
	out, err := NewScheduler(&stubCalendar{}, notifier, nil).Process(context.Background(), Input{
		Candidate: cand,
		Match:     &model.MatchScore{Tier: model.TierTop},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Action != model.ScheduleActionNoSlots || out.Scheduled {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if len(notifier.invites)+len(notifier.confirms) != 0 {
		t.Fatal("no notifications expected without a slot")
	}
}

func TestSchedulerNotificationFailureIsBestEffort(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	notifier := &stubNotifier{inviteErr: errors.New("smtp down")}

	out, err := NewScheduler(&stubCalendar{slots: []time.Time{first}}, notifier, zap.New(core)).Process(context.Background(), Input{
		Candidate: cand,
		Match:     &model.MatchScore{Tier: model.TierTop},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Scheduled || out.CalendarInviteSent || !out.ConfirmationSent {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if logs.FilterMessage("failed to send calendar invite").Len() != 1 {
		t.Fatal("expected invite failure to be logged")
	}
}

func TestSchedulerCalendarError(t *testing.T) {
	t.Parallel()

	boom := errors.New("calendar down")
	_, err := NewScheduler(&stubCalendar{err: boom}, &stubNotifier{}, nil).Process(context.Background(), Input{
		Candidate: cand,
		Match:     &model.MatchScore{Tier: model.TierTop},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected calendar error, got %v", err)
	}
}

type cancellingCalendar struct {
	cancel context.CancelFunc
}

func (c cancellingCalendar) ListSlots(context.Context) ([]time.Time, error) {
	c.cancel()
	return []time.Time{first}, nil
}

func TestSchedulerSkipsNotificationsAfterCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := &stubNotifier{}
	_, err := NewScheduler(cancellingCalendar{cancel: cancel}, notifier, nil).Process(ctx, Input{
		Candidate: cand,
		Match:     &model.MatchScore{Tier: model.TierTop},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(notifier.invites) != 0 || len(notifier.confirms) != 0 {
		t.Fatalf("expected no notifications, got %d invites and %d confirmations", len(notifier.invites), len(notifier.confirms))
	}
}

func TestSchedulerInputErrorsArePermanent(t *testing.T) {
	t.Parallel()

	_, err := NewScheduler(&stubCalendar{}, &stubNotifier{}, nil).Process(context.Background(), Input{})
	if !errors.Is(err, model.ErrPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
}
