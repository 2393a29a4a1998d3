package entity

type RecommendationReason struct {
	Text     string   `json:"text"`
	Evidence []string `json:"evidence,omitempty"`
}

type AIRecommendation struct {
	RecommendedOptions []string               `json:"recommended_options"`
	Summary            string                 `json:"summary"`
	Reasons            []RecommendationReason `json:"reasons,omitempty"`
	Confidence         string                 `json:"confidence,omitempty"`
}

// QuestionPayload is a generated (or fallback) next question
type QuestionPayload struct {
	Question            string            `json:"question"`
	Options             []string          `json:"options"`
	MultiSelect         bool              `json:"multi_select"`
	IsFollowUp          bool              `json:"is_follow_up"`
	FollowUpReason      *string           `json:"follow_up_reason"`
	ConflictDetected    bool              `json:"conflict_detected"`
	ConflictDescription *string           `json:"conflict_description"`
	AIRecommendation    *AIRecommendation `json:"ai_recommendation"`
	Dimension           string            `json:"dimension"`
	AIGenerated         bool              `json:"ai_generated"`
	Prefetched          bool              `json:"prefetched,omitempty"`
}

// Demote turns a follow-up payload into a formal question
func (p *QuestionPayload) Demote() {
	p.IsFollowUp = false
	p.FollowUpReason = nil
}

type DimensionStats struct {
	FormalQuestions int     `json:"formal_questions"`
	FollowUps       int     `json:"follow_ups"`
	Saturation      float64 `json:"saturation"`
}

// NextQuestionResult is either a question or a dimension-completed marker
type NextQuestionResult struct {
	*QuestionPayload
	Dimension string          `json:"dimension"`
	Completed bool            `json:"completed"`
	Stats     *DimensionStats `json:"stats,omitempty"`
}
