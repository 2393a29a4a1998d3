package llm

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector answers every call type with canned text
type MockConnector struct {
	logger *zap.Logger
	calls  atomic.Int64
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

var mockQuestions = []string{
	"您目前在这个领域遇到的最大挑战是什么？",
	"这个问题通常在什么场景下出现？",
	"目前是如何应对这个问题的？",
	"您希望新方案带来哪些可以衡量的改进？",
	"哪些角色会参与到这个流程中？",
}

func (m *MockConnector) Complete(ctx context.Context, req entity.CompletionRequest) (string, error) {
	n := m.calls.Add(1)
	ctxzap.Info(ctx, "[MOCK] completing prompt",
		zap.String("call_type", string(req.CallType)),
		zap.Int("prompt_length", utf8.RuneCountInString(req.Prompt)),
	)

	switch req.CallType {
	case entity.CallTypeQuestion, entity.CallTypePrefetch:
		q := mockQuestions[int(n)%len(mockQuestions)]
		return fmt.Sprintf(`{"question": "%s（#%d）", "options": ["选项一", "选项二", "选项三", "其他"], `+
			`"multi_select": false, "is_follow_up": false, "follow_up_reason": null, `+
			`"conflict_detected": false, "conflict_description": null}`, q, n), nil
	case entity.CallTypeSearchDecision:
		return `{"need_search": false, "reason": "模拟模式不搜索", "search_query": ""}`, nil
	case entity.CallTypeAssessmentScore:
		return "3", nil
	case entity.CallTypeSummary, entity.CallTypeHistorySummary:
		runes := []rune(req.Prompt)
		if len(runes) > 200 {
			runes = runes[len(runes)-200:]
		}
		return "[MOCK 摘要] " + strings.TrimSpace(string(runes)), nil
	case entity.CallTypeReport:
		return "# 访谈报告（MOCK）\n\n## 1. 访谈概述\n\n本报告由模拟模式生成。\n", nil
	default:
		return "[MOCK] ok", nil
	}
}
