package model

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"
)

var (
	ErrInvalidTransition = errors.New("invalid pipeline transition")
	ErrTerminalState     = errors.New("pipeline is in a terminal state")
)

type PipelineStatus string

const (
	StatusUploaded    PipelineStatus = "uploaded"
	StatusParsed      PipelineStatus = "parsed"
	StatusVerified    PipelineStatus = "verified"
	StatusScreened    PipelineStatus = "screened"
	StatusScored      PipelineStatus = "scored"
	StatusScheduled   PipelineStatus = "scheduled"
	StatusInterviewed PipelineStatus = "interviewed"
	StatusCompleted   PipelineStatus = "completed"
	StatusRejected    PipelineStatus = "rejected"
)

// statusOrder is the forward sequence. Rejected sits outside it.
var statusOrder = map[PipelineStatus]int{
	StatusUploaded:    0,
	StatusParsed:      1,
	StatusVerified:    2,
	StatusScreened:    3,
	StatusScored:      4,
	StatusScheduled:   5,
	StatusInterviewed: 6,
	StatusCompleted:   7,
}

// Terminal reports whether no further transition is allowed.
func (s PipelineStatus) Terminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

// CanAdvance reports whether moving from s to next keeps the status monotonic.
func (s PipelineStatus) CanAdvance(next PipelineStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusRejected {
		return true
	}
	from, ok := statusOrder[s]
	if !ok {
		return false
	}
	to, ok := statusOrder[next]
	if !ok {
		return false
	}
	return to > from
}

// PipelineKey identifies one pipeline run.
type PipelineKey struct {
	CandidateID string `json:"candidate_id"`
	JobID       string `json:"job_id"`
}

func (k PipelineKey) String() string {
	return k.CandidateID + "/" + k.JobID
}

type PipelineState struct {
	CandidateID string         `json:"candidate_id" mapstructure:"candidate_id"`
	JobID       string         `json:"job_id" mapstructure:"job_id"`
	Status      PipelineStatus `json:"status" mapstructure:"status"`
	CreatedAt   time.Time      `json:"created_at" mapstructure:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" mapstructure:"updated_at"`
	Data        map[string]any `json:"data" mapstructure:"data"`
	Retries     int            `json:"retries" mapstructure:"retries"`
	Errors      []string       `json:"errors" mapstructure:"errors"`
}

func NewPipelineState(key PipelineKey, now time.Time) *PipelineState {
	return &PipelineState{
		CandidateID: key.CandidateID,
		JobID:       key.JobID,
		Status:      StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
		Data:        map[string]any{},
		Errors:      []string{},
	}
}

func (p *PipelineState) Key() PipelineKey {
	return PipelineKey{CandidateID: p.CandidateID, JobID: p.JobID}
}

// Advance moves the state to next and stamps UpdatedAt.
func (p *PipelineState) Advance(next PipelineStatus, now time.Time) error {
	if p.Status.Terminal() {
		return fmt.Errorf("%w: %s -> %s", ErrTerminalState, p.Status, next)
	}
	if !p.Status.CanAdvance(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, next)
	}
	p.Status = next
	p.UpdatedAt = now
	return nil
}

// RecordError appends a stage error to the audit trail.
func (p *PipelineState) RecordError(msg string) {
	p.Errors = append(p.Errors, msg)
}

func (p *PipelineState) Set(key string, value any) {
	if p.Data == nil {
		p.Data = map[string]any{}
	}
	p.Data[key] = value
}

// Clone copies the state. Values inside Data are shared.
func (p *PipelineState) Clone() *PipelineState {
	if p == nil {
		return nil
	}
	out := *p
	out.Data = maps.Clone(p.Data)
	out.Errors = slices.Clone(p.Errors)
	return &out
}
