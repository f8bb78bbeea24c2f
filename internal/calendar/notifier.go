package calendar

import (
	"context"
	"time"

	"github.com/spigell/hh-screener/internal/model"
	"go.uber.org/zap"
)

// LogNotifier records notifications in the log instead of sending them.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendInvite(_ context.Context, c *model.Candidate, slot time.Time) error {
	n.logger.Info("calendar invite sent", notificationFields(c, slot)...)
	return nil
}

func (n *LogNotifier) SendConfirmation(_ context.Context, c *model.Candidate, slot time.Time) error {
	n.logger.Info("confirmation sent", notificationFields(c, slot)...)
	return nil
}

func notificationFields(c *model.Candidate, slot time.Time) []zap.Field {
	return []zap.Field{
		zap.String("candidate_id", c.ID),
		zap.String("email", c.Email),
		zap.Time("slot", slot),
	}
}
