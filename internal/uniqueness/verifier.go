// Package uniqueness flags submissions whose identity signals collide with
// already stored candidates.
package uniqueness

import (
	"context"
	"errors"
	"iter"
	"strings"

	"github.com/spigell/hh-screener/internal/model"
	"go.uber.org/zap"
)

// Input pairs a freshly parsed candidate with a snapshot of stored ones.
type Input struct {
	Candidate *model.Candidate
	Existing  iter.Seq2[*model.Candidate, error]
}

// Verifier compares email, phone and content fingerprint independently; any
// single match marks the submission as a duplicate.
type Verifier struct {
	logger *zap.Logger
}

func NewVerifier(logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{logger: logger}
}

func (v *Verifier) Name() string {
	return "uniqueness"
}

func (v *Verifier) Process(ctx context.Context, in Input) (model.Verdict, error) {
	if in.Candidate == nil {
		return model.Verdict{}, model.Permanent(errors.New("candidate is required"))
	}

	duplicates := []string{}
	if in.Existing != nil {
		for existing, err := range in.Existing {
			if err != nil {
				return model.Verdict{}, err
			}
			if Conflicts(in.Candidate, existing) {
				duplicates = append(duplicates, existing.ID)
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return model.Verdict{}, err
	}

	if len(duplicates) > 0 {
		v.logger.Info("found potential duplicates",
			zap.String("candidate_id", in.Candidate.ID),
			zap.Strings("duplicates", duplicates),
		)
		return model.Verdict{IsDuplicate: true, Duplicates: duplicates, Action: model.ActionSkipOrMerge}, nil
	}

	v.logger.Debug("candidate is unique", zap.String("candidate_id", in.Candidate.ID))
	return model.Verdict{Duplicates: duplicates, Action: model.ActionProceed}, nil
}

// Conflicts reports whether a and b share an email, a non-empty phone or a
// non-empty content fingerprint.
func Conflicts(a, b *model.Candidate) bool {
	if a == nil || b == nil {
		return false
	}
	if equalNonEmpty(strings.ToLower(a.Email), strings.ToLower(b.Email)) {
		return true
	}
	if equalNonEmpty(a.Phone, b.Phone) {
		return true
	}
	return equalNonEmpty(a.ResumeHash, b.ResumeHash)
}

func equalNonEmpty(a, b string) bool {
	a = strings.TrimSpace(a)
	return a != "" && a == strings.TrimSpace(b)
}
