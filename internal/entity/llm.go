package entity

import (
	"fmt"
	"time"
)

// CallType labels a model call for metrics and logging
type CallType string

const (
	CallTypeQuestion        CallType = "question"
	CallTypePrefetch        CallType = "prefetch"
	CallTypeReport          CallType = "report"
	CallTypeSummary         CallType = "summary"
	CallTypeHistorySummary  CallType = "history_summary"
	CallTypeSearchDecision  CallType = "search_decision"
	CallTypeAssessmentScore CallType = "assessment_score"
)

type CompletionRequest struct {
	Prompt    string
	MaxTokens int
	Timeout   time.Duration
	CallType  CallType
	// TruncatedDocs is recorded in call metrics when the prompt context dropped document content.
	TruncatedDocs []string
	// DisableShrinkRetry turns off the single shortened-prompt retry after a timeout.
	DisableShrinkRetry bool
}

// ModelErrorKind classifies a failed model call
type ModelErrorKind string

const (
	ModelErrorTimeout     ModelErrorKind = "timeout"
	ModelErrorRateLimited ModelErrorKind = "rate_limited"
	ModelErrorAuth        ModelErrorKind = "auth_failed"
	ModelErrorNetwork     ModelErrorKind = "network"
	ModelErrorOther       ModelErrorKind = "other"
)

// ModelError wraps a failed model call. It unwraps to ErrServiceUnavailable.
type ModelError struct {
	Kind ModelErrorKind
	Err  error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model call failed (%s): %v", e.Kind, e.Err)
}

func (e *ModelError) Unwrap() []error {
	return []error{ErrServiceUnavailable, e.Err}
}

// Detail returns a user-facing description of the failure
func (e *ModelError) Detail() string {
	switch e.Kind {
	case ModelErrorNetwork:
		return "网络连接失败，请检查网络设置"
	case ModelErrorTimeout:
		return "请求超时，AI 响应时间过长"
	case ModelErrorAuth:
		return "API 认证失败，请检查 API Key 配置"
	case ModelErrorRateLimited:
		return "请求频率超限，请稍后再试"
	default:
		return "生成问题失败"
	}
}

// SearchResult is one entry returned by the search capability
type SearchResult struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
}
