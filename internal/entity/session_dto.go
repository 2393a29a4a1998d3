package entity

import "time"

type CreateSessionRequest struct {
	Topic         string `json:"topic"`
	Description   string `json:"description,omitempty"`
	InterviewMode string `json:"interview_mode,omitempty"`
	ScenarioID    string `json:"scenario_id,omitempty"`
}

type UpdateSessionRequest struct {
	Topic       *string        `json:"topic,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *SessionStatus `json:"status,omitempty"`
}

type SubmitAnswerRequest struct {
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Dimension  string   `json:"dimension"`
	Options    []string `json:"options,omitempty"`
	IsFollowUp bool     `json:"is_follow_up"`
}

type DimensionRequest struct {
	Dimension string `json:"dimension"`
}

type GenerateReportRequest struct {
	CallbackURL string `json:"callback_url,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

type SessionListItem struct {
	ID            string        `json:"session_id"`
	Topic         string        `json:"topic"`
	Status        SessionStatus `json:"status"`
	ScenarioID    string        `json:"scenario_id"`
	InterviewMode InterviewMode `json:"interview_mode"`
	AnswerCount   int           `json:"answer_count"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type SessionDTO struct {
	*Session
	ModeConfig ModeConfig `json:"mode_config"`
}

type CompleteDimensionResult struct {
	Dimension string `json:"dimension"`
	Message   string `json:"message"`
	Coverage  int    `json:"coverage"`
}

type ReportSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	AIGenerated bool      `json:"ai_generated"`
	CreatedAt   time.Time `json:"created_at"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
