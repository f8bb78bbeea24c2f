package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/hh-screener/internal/model"
	"github.com/spigell/hh-screener/internal/screening"
	"github.com/spigell/hh-screener/internal/utils"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

// Screener asks Gemini to play the screening interview and turns the answer
// into a screening outcome.
type Screener struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	maxEnthusiasm       = 10
)

func NewScreener(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Screener {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Screener{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (s *Screener) Name() string {
	return "screening"
}

func (s *Screener) Process(ctx context.Context, in screening.Input) (*model.ScreeningOutcome, error) {
	if in.Candidate == nil {
		return nil, fmt.Errorf("candidate is required")
	}
	if in.Job == nil {
		return nil, fmt.Errorf("job description is required")
	}

	mode := in.Mode
	if mode == "" {
		mode = model.ModeChat
	}

	message, err := buildMessage(in.Candidate, in.Job)
	if err != nil {
		return nil, err
	}
	system := buildSystem(mode)

	s.logger.Debug("gemini screening request",
		zap.String("candidate_id", in.Candidate.ID),
		zap.String("job_id", in.Job.ID),
		zap.Int("message_length", utf8.RuneCountInString(message)),
		zap.String("message_preview", utils.TruncateForLog(message, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, system, message)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("gemini screening response",
		zap.String("candidate_id", in.Candidate.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	out, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}
	out.CandidateID = in.Candidate.ID
	return out, nil
}

func buildSystem(mode model.ScreeningMode) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Run a {{MODE}} screening and answer with a JSON screening outcome."
	}
	return strings.ReplaceAll(template, "{{MODE}}", string(mode))
}

func buildMessage(c *model.Candidate, job *model.JobDescription) (string, error) {
	profile := map[string]any{
		"name":           c.Name,
		"location":       c.Location,
		"skills":         c.Skills,
		"experience":     c.Experience,
		"education":      c.Education,
		"certifications": c.Certifications,
		"languages":      c.Languages,
		"notice_period":  c.NoticePeriod,
		"resume":         c.ResumeText,
	}

	candidateJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal candidate payload: %w", err)
	}

	jobJSON, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal job payload: %w", err)
	}

	return "Candidate:\n" + string(candidateJSON) + "\n\nJob:\n" + string(jobJSON) + "\n\nJSON Response:", nil
}

func parseResponse(raw string) (*model.ScreeningOutcome, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	enthusiasm := coerceFloat(data["enthusiasm_score"])
	if math.IsNaN(enthusiasm) {
		enthusiasm = 0
	}
	enthusiasm = math.Max(0, math.Min(maxEnthusiasm, enthusiasm))

	return &model.ScreeningOutcome{
		CurrentOrg:       coerceString(data["current_org"]),
		CurrentRole:      coerceString(data["current_role"]),
		ValidatedSkills:  coerceBoolMap(data["validated_skills"]),
		Availability:     coerceString(data["availability"]),
		RelocationIntent: coerceBool(data["relocation_intent"]),
		EnthusiasmScore:  enthusiasm,
		RedFlags:         coerceStrings(data["red_flags"]),
		Notes:            coerceString(data["notes"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	default:
		return false
	}
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStrings(v any) []string {
	out := []string{}
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		if s := strings.TrimSpace(val); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// coerceBoolMap accepts either {"skill": true} or ["skill", ...].
func coerceBoolMap(v any) map[string]bool {
	out := make(map[string]bool)
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			if k = strings.TrimSpace(k); k != "" {
				out[k] = coerceBool(item)
			}
		}
	case []any:
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out[s] = true
			}
		}
	}
	return out
}

type modelNamer interface {
	Model() string
}

func (s *Screener) Details() map[string]string {
	details := map[string]string{"provider": "gemini"}
	if m, ok := s.generator.(modelNamer); ok {
		details["model"] = m.Model()
	}
	return details
}
