package uniqueness

import (
	"context"
	"errors"
	"iter"
	"slices"
	"testing"

	"github.com/spigell/hh-screener/internal/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func seq(candidates ...*model.Candidate) iter.Seq2[*model.Candidate, error] {
	return func(yield func(*model.Candidate, error) bool) {
		for _, c := range candidates {
			if !yield(c, nil) {
				return
			}
		}
	}
}

func TestVerifierProcess(t *testing.T) {
	t.Parallel()

	stored := &model.Candidate{ID: "c-1", Email: "a@example.com", Phone: "555-123-4567", ResumeHash: "hash-1"}
	other := &model.Candidate{ID: "c-2", Email: "b@example.com", ResumeHash: "hash-2"}

	tests := []struct {
		name       string
		candidate  *model.Candidate
		expectDups []string
	}{
		{
			name:       "unique",
			candidate:  &model.Candidate{ID: "n", Email: "new@example.com", Phone: "555-000-0000", ResumeHash: "hash-n"},
			expectDups: []string{},
		},
		{
			name:       "email match ignores case",
			candidate:  &model.Candidate{ID: "n", Email: "A@Example.com", ResumeHash: "hash-n"},
			expectDups: []string{"c-1"},
		},
		{
			name:       "phone only",
			candidate:  &model.Candidate{ID: "n", Email: "new@example.com", Phone: "555-123-4567", ResumeHash: "hash-n"},
			expectDups: []string{"c-1"},
		},
		{
			name:       "fingerprint only",
			candidate:  &model.Candidate{ID: "n", Email: "new@example.com", ResumeHash: "hash-2"},
			expectDups: []string{"c-2"},
		},
		{
			name:       "empty phones never match",
			candidate:  &model.Candidate{ID: "n", Email: "new@example.com", ResumeHash: "hash-n"},
			expectDups: []string{},
		},
		{
			name:       "several conflicts",
			candidate:  &model.Candidate{ID: "n", Email: "b@example.com", Phone: "555-123-4567"},
			expectDups: []string{"c-1", "c-2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			verdict, err := NewVerifier(nil).Process(context.Background(), Input{Candidate: tt.candidate, Existing: seq(stored, other)})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if verdict.IsDuplicate != (len(tt.expectDups) > 0) {
				t.Fatalf("unexpected duplicate flag %v", verdict.IsDuplicate)
			}
			if !slices.Equal(verdict.Duplicates, tt.expectDups) {
				t.Fatalf("expected duplicates %v, got %v", tt.expectDups, verdict.Duplicates)
			}
			wantAction := model.ActionProceed
			if verdict.IsDuplicate {
				wantAction = model.ActionSkipOrMerge
			}
			if verdict.Action != wantAction {
				t.Fatalf("expected action %q, got %q", wantAction, verdict.Action)
			}
		})
	}
}

func TestVerifierPropagatesScanError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	failing := func(yield func(*model.Candidate, error) bool) {
		yield(nil, boom)
	}

	_, err := NewVerifier(nil).Process(context.Background(), Input{Candidate: &model.Candidate{ID: "n"}, Existing: failing})
	if !errors.Is(err, boom) {
		t.Fatalf("expected scan error, got %v", err)
	}
}

func TestVerifierLogsDuplicates(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	stored := &model.Candidate{ID: "c-1", Email: "a@example.com"}

	if _, err := NewVerifier(zap.New(core)).Process(context.Background(), Input{
		Candidate: &model.Candidate{ID: "n", Email: "a@example.com"},
		Existing:  seq(stored),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := logs.FilterMessage("found potential duplicates").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["candidate_id"]; got != "n" {
		t.Fatalf("unexpected candidate_id field %v", got)
	}
}

func TestVerifierRequiresCandidate(t *testing.T) {
	t.Parallel()

	if _, err := NewVerifier(nil).Process(context.Background(), Input{}); err == nil {
		t.Fatal("expected error for missing candidate")
	}
}
