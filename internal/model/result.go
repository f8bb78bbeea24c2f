package model

import "time"

// Verdict is the outcome of the uniqueness check.
type Verdict struct {
	IsDuplicate bool     `json:"is_duplicate"`
	Duplicates  []string `json:"duplicates"`
	Action      string   `json:"action"`
}

const (
	ActionProceed     = "proceed"
	ActionSkipOrMerge = "skip_or_merge"
)

const (
	ScheduleActionReject  = "reject"
	ScheduleActionBooked  = "scheduled"
	ScheduleActionNoSlots = "no_slots_available"
)

type SchedulingOutcome struct {
	Action             string    `json:"action"`
	Scheduled          bool      `json:"scheduled"`
	InterviewTime      time.Time `json:"interview_time,omitzero"`
	CalendarInviteSent bool      `json:"calendar_invite_sent"`
	ConfirmationSent   bool      `json:"confirmation_sent"`
	Message            string    `json:"message,omitempty"`
}

// LearningItem suggests how a rejected candidate could close one skill gap.
type LearningItem struct {
	Skill         string   `json:"skill"`
	Resources     []string `json:"resources"`
	EstimatedTime string   `json:"estimated_time"`
}

type RunStatus string

const (
	RunProcessed RunStatus = "processed"
	RunRejected  RunStatus = "rejected"
	RunError     RunStatus = "error"
)

const (
	ReasonDuplicate     = "duplicate"
	ReasonLowMatchScore = "low_match_score"
)

// RunResult is what callers of a pipeline run receive. Status is always set.
type RunResult struct {
	Status      RunStatus          `json:"status"`
	Reason      string             `json:"reason,omitempty"`
	Message     string             `json:"message,omitempty"`
	CandidateID string             `json:"candidate_id,omitempty"`
	JobID       string             `json:"job_id,omitempty"`
	Score       float64            `json:"score,omitempty"`
	Duplicates  []string           `json:"duplicates,omitempty"`
	Screening   *ScreeningOutcome  `json:"screening_result,omitempty"`
	Match       *MatchScore        `json:"match_score,omitempty"`
	Scheduling  *SchedulingOutcome `json:"scheduling,omitempty"`
	SkillGaps   []string           `json:"skill_gaps,omitempty"`
	Learning    []LearningItem     `json:"learning_recommendations,omitempty"`
}
