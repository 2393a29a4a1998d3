package entity

import (
	"fmt"
	"time"
)

type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
)

func (s SessionStatus) Validate() error {
	switch s {
	case SessionStatusInProgress, SessionStatusCompleted:
		return nil
	default:
		return fmt.Errorf("%w: unknown session status %q", ErrInvalidSessionStatus, s)
	}
}

type InterviewMode string

const (
	InterviewModeQuick    InterviewMode = "quick"
	InterviewModeStandard InterviewMode = "standard"
	InterviewModeDeep     InterviewMode = "deep"
)

// ModeConfig holds the question budgets of an interview mode
type ModeConfig struct {
	Name                  string `json:"name"`
	FormalQuestionsPerDim int    `json:"formal_questions_per_dim"`
	FollowUpBudgetPerDim  int    `json:"follow_up_budget_per_dim"`
	TotalFollowUpBudget   int    `json:"total_follow_up_budget"`
	MaxFollowUpsPerFormal int    `json:"max_follow_ups_per_question"`
	EstimatedQuestions    string `json:"estimated_questions"`
}

var modeConfigs = map[InterviewMode]ModeConfig{
	InterviewModeQuick: {
		Name:                  "快速模式",
		FormalQuestionsPerDim: 2,
		FollowUpBudgetPerDim:  2,
		TotalFollowUpBudget:   8,
		MaxFollowUpsPerFormal: 1,
		EstimatedQuestions:    "12-16",
	},
	InterviewModeStandard: {
		Name:                  "标准模式",
		FormalQuestionsPerDim: 3,
		FollowUpBudgetPerDim:  4,
		TotalFollowUpBudget:   16,
		MaxFollowUpsPerFormal: 2,
		EstimatedQuestions:    "20-28",
	},
	InterviewModeDeep: {
		Name:                  "深度模式",
		FormalQuestionsPerDim: 4,
		FollowUpBudgetPerDim:  6,
		TotalFollowUpBudget:   24,
		MaxFollowUpsPerFormal: 3,
		EstimatedQuestions:    "28-40",
	},
}

// ParseInterviewMode falls back to standard for unknown values
func ParseInterviewMode(s string) InterviewMode {
	mode := InterviewMode(s)
	if _, ok := modeConfigs[mode]; ok {
		return mode
	}
	return InterviewModeStandard
}

// Config returns the budgets of the mode, standard for unknown modes
func (m InterviewMode) Config() ModeConfig {
	if cfg, ok := modeConfigs[m]; ok {
		return cfg
	}
	return modeConfigs[InterviewModeStandard]
}

// LogEntry is a single answered question
type LogEntry struct {
	Timestamp        time.Time `json:"timestamp"`
	Question         string    `json:"question"`
	Answer           string    `json:"answer"`
	Dimension        string    `json:"dimension"`
	Options          []string  `json:"options"`
	IsFollowUp       bool      `json:"is_follow_up"`
	NeedsFollowUp    bool      `json:"needs_follow_up"`
	FollowUpSignals  []string  `json:"follow_up_signals"`
	Score            *float64  `json:"score,omitempty"`
	UserSkipFollowUp bool      `json:"user_skip_follow_up,omitempty"`
}

type DimensionItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

type DimensionState struct {
	Coverage      int             `json:"coverage"`
	Items         []DimensionItem `json:"items"`
	Score         *float64        `json:"score"`
	UserCompleted bool            `json:"user_completed,omitempty"`
}

type DocumentSource string

const (
	DocumentSourceUpload DocumentSource = "upload"
	DocumentSourceAuto   DocumentSource = "auto"
)

type ReferenceMaterial struct {
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Content    string         `json:"content"`
	Source     DocumentSource `json:"source"`
	UploadedAt time.Time      `json:"uploaded_at"`
}

// ContextSummary is the cached digest of older log entries
type ContextSummary struct {
	Text      string    `json:"text"`
	LogCount  int       `json:"log_count"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Session struct {
	ID                 string                     `json:"session_id"`
	Topic              string                     `json:"topic"`
	Description        string                     `json:"description,omitempty"`
	InterviewMode      InterviewMode              `json:"interview_mode"`
	ScenarioID         string                     `json:"scenario_id"`
	Scenario           Scenario                   `json:"scenario_config"`
	Dimensions         map[string]*DimensionState `json:"dimensions"`
	InterviewLog       []LogEntry                 `json:"interview_log"`
	ReferenceMaterials []ReferenceMaterial        `json:"reference_materials"`
	ContextSummary     *ContextSummary            `json:"context_summary,omitempty"`
	Status             SessionStatus              `json:"status"`
	CreatedAt          time.Time                  `json:"created_at"`
	UpdatedAt          time.Time                  `json:"updated_at"`
}

// HasDimension reports whether the dimension belongs to the session's scenario
func (s *Session) HasDimension(dim string) bool {
	_, ok := s.Dimensions[dim]
	return ok
}

// DimensionLogs returns log entries of one dimension in order
func (s *Session) DimensionLogs(dim string) []LogEntry {
	var logs []LogEntry
	for _, entry := range s.InterviewLog {
		if entry.Dimension == dim {
			logs = append(logs, entry)
		}
	}
	return logs
}

// FormalCount counts non-follow-up answers in a dimension
func (s *Session) FormalCount(dim string) int {
	n := 0
	for _, entry := range s.InterviewLog {
		if entry.Dimension == dim && !entry.IsFollowUp {
			n++
		}
	}
	return n
}

// FollowUpCount counts follow-up answers in a dimension, or in the whole session when dim is empty
func (s *Session) FollowUpCount(dim string) int {
	n := 0
	for _, entry := range s.InterviewLog {
		if entry.IsFollowUp && (dim == "" || entry.Dimension == dim) {
			n++
		}
	}
	return n
}

// LastFormalIndex returns the index in InterviewLog of the last formal answer of the dimension, or -1
func (s *Session) LastFormalIndex(dim string) int {
	for i := len(s.InterviewLog) - 1; i >= 0; i-- {
		if s.InterviewLog[i].Dimension == dim && !s.InterviewLog[i].IsFollowUp {
			return i
		}
	}
	return -1
}

// Dimension returns the mutable state of a dimension, creating it if missing
func (s *Session) Dimension(dim string) *DimensionState {
	if s.Dimensions == nil {
		s.Dimensions = make(map[string]*DimensionState)
	}
	state, ok := s.Dimensions[dim]
	if !ok {
		state = &DimensionState{Items: []DimensionItem{}}
		s.Dimensions[dim] = state
	}
	return state
}

// ResetDimensions sets every scenario dimension back to an empty state
func (s *Session) ResetDimensions() {
	s.Dimensions = make(map[string]*DimensionState, len(s.Scenario.Dimensions))
	for _, d := range s.Scenario.Dimensions {
		s.Dimensions[d.ID] = &DimensionState{Items: []DimensionItem{}}
	}
}

// Clone returns a deep copy so callers can mutate without sharing state
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s

	c.Dimensions = make(map[string]*DimensionState, len(s.Dimensions))
	for k, v := range s.Dimensions {
		state := *v
		state.Items = append([]DimensionItem(nil), v.Items...)
		if v.Score != nil {
			score := *v.Score
			state.Score = &score
		}
		c.Dimensions[k] = &state
	}

	c.InterviewLog = make([]LogEntry, len(s.InterviewLog))
	for i, entry := range s.InterviewLog {
		entry.Options = append([]string(nil), entry.Options...)
		entry.FollowUpSignals = append([]string(nil), entry.FollowUpSignals...)
		if entry.Score != nil {
			score := *entry.Score
			entry.Score = &score
		}
		c.InterviewLog[i] = entry
	}

	c.ReferenceMaterials = append([]ReferenceMaterial(nil), s.ReferenceMaterials...)
	if s.ContextSummary != nil {
		summary := *s.ContextSummary
		c.ContextSummary = &summary
	}
	c.Scenario.Dimensions = append([]Dimension(nil), s.Scenario.Dimensions...)
	c.Scenario.Keywords = append([]string(nil), s.Scenario.Keywords...)
	return &c
}
