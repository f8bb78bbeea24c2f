// Package calendar provides interview slot sources and candidate notifiers
// used by the scheduling stage.
package calendar

import (
	"context"
	"time"

	"github.com/spigell/hh-screener/internal/model"
)

// Calendar lists free interview slots, earliest first.
type Calendar interface {
	ListSlots(ctx context.Context) ([]time.Time, error)
}

// Notifier delivers the calendar invite and the confirmation for a booked slot.
type Notifier interface {
	SendInvite(ctx context.Context, c *model.Candidate, slot time.Time) error
	SendConfirmation(ctx context.Context, c *model.Candidate, slot time.Time) error
}
