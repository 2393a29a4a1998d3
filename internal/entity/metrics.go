package entity

import "time"

// ModelCallRecord describes one model call
type ModelCallRecord struct {
	Timestamp      time.Time `json:"timestamp"`
	CallType       CallType  `json:"type"`
	PromptLength   int       `json:"prompt_length"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	MaxTokens      int       `json:"max_tokens"`
	Success        bool      `json:"success"`
	Timeout        bool      `json:"timeout"`
	Error          string    `json:"error,omitempty"`
	TruncatedDocs  []string  `json:"truncated_docs,omitempty"`
}

type MetricsSummary struct {
	TotalCalls        int     `json:"total_calls"`
	SuccessfulCalls   int     `json:"successful_calls"`
	FailedCalls       int     `json:"failed_calls"`
	TimeoutCalls      int     `json:"timeout_calls"`
	TimeoutRate       float64 `json:"timeout_rate"`
	TruncationEvents  int     `json:"truncation_events"`
	TruncationRate    float64 `json:"truncation_rate"`
	AvgResponseTimeMs float64 `json:"avg_response_time_ms"`
	MaxResponseTimeMs int64   `json:"max_response_time_ms"`
	MinResponseTimeMs int64   `json:"min_response_time_ms"`
	AvgPromptLength   float64 `json:"avg_prompt_length"`
	MaxPromptLength   int     `json:"max_prompt_length"`
	AnalyzedCalls     int     `json:"analyzed_calls"`
}

type Recommendation struct {
	Level      string `json:"level"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

type MetricsReport struct {
	Summary         MetricsSummary   `json:"summary"`
	Recommendations []Recommendation `json:"recommendations"`
}

// SummaryCacheInfo describes the persisted document summary cache
type SummaryCacheInfo struct {
	Enabled   bool   `json:"enabled"`
	Count     int    `json:"count"`
	SizeBytes int64  `json:"size_bytes"`
	Size      string `json:"size"`
}
