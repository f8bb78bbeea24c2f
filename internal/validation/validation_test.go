package validation

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		schema  Schema
		doc     any
		wantErr bool
	}{
		{
			name:   "valid job",
			schema: SchemaJob,
			doc: map[string]any{
				"title":               "Data Engineer",
				"required_skills":     []any{"Python", "SQL"},
				"experience_required": 3,
			},
		},
		{
			name:    "job without title",
			schema:  SchemaJob,
			doc:     map[string]any{"required_skills": []any{}},
			wantErr: true,
		},
		{
			name:    "job with unknown field",
			schema:  SchemaJob,
			doc:     map[string]any{"title": "x", "required_skills": []any{}, "salary": 10},
			wantErr: true,
		},
		{
			name:    "negative experience",
			schema:  SchemaJob,
			doc:     map[string]any{"title": "x", "required_skills": []any{}, "experience_required": -1},
			wantErr: true,
		},
		{
			name:   "partial feedback",
			schema: SchemaFeedback,
			doc:    map[string]any{"technical_score": 8.5},
		},
		{
			name:   "feedback with short culture fit key",
			schema: SchemaFeedback,
			doc:    map[string]any{"technical_score": 8.5, "culture_fit": 8.0},
		},
		{
			name:    "feedback out of range",
			schema:  SchemaFeedback,
			doc:     map[string]any{"communication_score": 12},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(tt.schema, tt.doc)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDocument) {
					t.Fatalf("expected ErrInvalidDocument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateJSON(t *testing.T) {
	t.Parallel()

	if err := ValidateJSON(SchemaJob, []byte(`{"title":"Go Developer","required_skills":["Go"]}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateJSON(SchemaJob, []byte(`{"title":`)); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument for malformed json, got %v", err)
	}
	if err := Validate(Schema("missing"), map[string]any{}); err == nil || errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("expected schema load error, got %v", err)
	}
}
