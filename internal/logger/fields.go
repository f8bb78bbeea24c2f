package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldCandidateID correlates every log line of a pipeline run.
	FieldCandidateID = "candidate_id"
	FieldJobID       = "job_id"
	FieldStage       = "stage"
	FieldStatus      = "status"
	FieldAttempt     = "attempt"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to logger, falling back to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// PipelineFields identifies a pipeline run. Unknown ids are left out.
func PipelineFields(candidateID, jobID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldCandidateID, Value: candidateID},
		StringField{Key: FieldJobID, Value: jobID},
	)
}

func ForPipeline(logger *zap.Logger, candidateID, jobID string) *zap.Logger {
	return WithFields(logger, PipelineFields(candidateID, jobID)...)
}
