package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/hh-screener/internal/model"
	"github.com/spigell/hh-screener/internal/screening"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubGenerator struct {
	response    string
	err         error
	lastSystem  string
	lastMessage string
}

func (s *stubGenerator) GenerateContent(_ context.Context, system, message string) (string, error) {
	s.lastSystem = system
	s.lastMessage = message
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func testInput(mode model.ScreeningMode) screening.Input {
	return screening.Input{
		Candidate: &model.Candidate{ID: "c-1", Name: "Jane", Skills: []string{"Python", "SQL"}},
		Job:       &model.JobDescription{ID: "job-1", Title: "Data Engineer", RequiredSkills: []string{"Python"}},
		Mode:      mode,
	}
}

func TestScreenerProcess(t *testing.T) {
	stub := &stubGenerator{response: "```json\n" + `{
		"current_org": "Acme",
		"current_role": "Engineer",
		"validated_skills": {"Python": true, "SQL": "no"},
		"availability": "1 month",
		"relocation_intent": "yes",
		"enthusiasm_score": "12",
		"red_flags": ["notice period", ""],
		"notes": "solid"
	}` + "\n```"}

	core, logs := observer.New(zap.DebugLevel)
	out, err := NewScreener(stub, zap.New(core), 0).Process(context.Background(), testInput(model.ModeVoice))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.CandidateID != "c-1" {
		t.Fatalf("unexpected candidate id %q", out.CandidateID)
	}
	if out.CurrentOrg != "Acme" || out.CurrentRole != "Engineer" {
		t.Fatalf("unexpected org/role %q/%q", out.CurrentOrg, out.CurrentRole)
	}
	if !out.ValidatedSkills["Python"] || out.ValidatedSkills["SQL"] {
		t.Fatalf("unexpected validated skills %v", out.ValidatedSkills)
	}
	if !out.RelocationIntent {
		t.Fatal("expected relocation intent")
	}
	if out.EnthusiasmScore != 10 {
		t.Fatalf("expected enthusiasm clamped to 10, got %v", out.EnthusiasmScore)
	}
	if len(out.RedFlags) != 1 || out.RedFlags[0] != "notice period" {
		t.Fatalf("unexpected red flags %v", out.RedFlags)
	}

	if !strings.Contains(stub.lastSystem, "voice screening") {
		t.Fatalf("expected mode in system prompt, got %q", stub.lastSystem)
	}
	if !strings.Contains(stub.lastMessage, `"title": "Data Engineer"`) {
		t.Fatalf("expected job json in message, got %q", stub.lastMessage)
	}
	if logs.FilterMessage("gemini screening request").Len() != 1 {
		t.Fatal("expected request to be logged")
	}
}

func TestScreenerErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name  string
		stub  *stubGenerator
		input screening.Input
	}{
		{name: "generator error", stub: &stubGenerator{err: boom}, input: testInput(model.ModeChat)},
		{name: "not json", stub: &stubGenerator{response: "sorry, I cannot help"}, input: testInput(model.ModeChat)},
		{name: "missing job", stub: &stubGenerator{response: "{}"}, input: screening.Input{Candidate: &model.Candidate{ID: "c"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewScreener(tt.stub, nil, 0).Process(context.Background(), tt.input); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseResponseDefaults(t *testing.T) {
	out, err := parseResponse(`{"validated_skills": ["Go"], "enthusiasm_score": "n/a", "red_flags": "late"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.ValidatedSkills["Go"] {
		t.Fatalf("expected list form to validate skill, got %v", out.ValidatedSkills)
	}
	if out.EnthusiasmScore != 0 {
		t.Fatalf("expected 0 for unparsable enthusiasm, got %v", out.EnthusiasmScore)
	}
	if len(out.RedFlags) != 1 || out.RedFlags[0] != "late" {
		t.Fatalf("unexpected red flags %v", out.RedFlags)
	}
}
