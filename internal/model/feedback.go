package model

type Recommendation string

const (
	RecommendHire Recommendation = "Hire"
	RecommendHold Recommendation = "Hold"
	RecommendDrop Recommendation = "Drop"
)

const (
	NextGenerateOffer      = "generate_offer"
	NextScheduleFinalRound = "schedule_final_round"
	NextSendRejection      = "send_rejection"
)

// nextActions is the fixed mapping from recommendation to follow-up.
var nextActions = map[Recommendation]string{
	RecommendHire: NextGenerateOffer,
	RecommendHold: NextScheduleFinalRound,
	RecommendDrop: NextSendRejection,
}

func (r Recommendation) NextAction() string {
	if action, ok := nextActions[r]; ok {
		return action
	}
	return NextSendRejection
}

type FeedbackResult struct {
	CandidateID     string         `json:"candidate_id"`
	JobID           string         `json:"job_id,omitempty"`
	Status          RunStatus      `json:"status"`
	Message         string         `json:"message,omitempty"`
	FinalScore      float64        `json:"final_score"`
	Recommendation  Recommendation `json:"recommendation"`
	FeedbackSummary string         `json:"feedback_summary"`
	NextAction      string         `json:"next_action"`
	Interviewer     string         `json:"interviewer,omitempty"`
	Notes           string         `json:"notes,omitempty"`
}
