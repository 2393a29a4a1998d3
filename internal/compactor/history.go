package compactor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/futig/interview-backend/internal/pkg/textutil"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	historyQuestionLen    = 80
	historyAnswerLen      = 100
	simpleAnswerLen       = 50
	simpleAnswersPerDim   = 3
	historySummaryTokens  = 300
	historySummaryTimeout = 60 * time.Second
)

// SummarizeHistory digests every log entry except the last excludeRecent ones.
// A cached digest is reused when it covers exactly those entries. A fresh model
// digest is stored on the session; the caller decides whether to persist it.
func (c *Compactor) SummarizeHistory(ctx context.Context, session *entity.Session, excludeRecent int) (string, bool) {
	count := len(session.InterviewLog) - excludeRecent
	if count <= 0 {
		return "", false
	}
	history := session.InterviewLog[:count]

	if cached := session.ContextSummary; cached != nil && cached.Text != "" && cached.LogCount == count {
		return cached.Text, true
	}

	if c.llm == nil {
		return simpleSummary(session, history), true
	}

	summary, err := c.llm.Complete(ctx, entity.CompletionRequest{
		Prompt:             historySummaryPrompt(session, history),
		MaxTokens:          historySummaryTokens,
		Timeout:            historySummaryTimeout,
		CallType:           entity.CallTypeHistorySummary,
		DisableShrinkRetry: true,
	})
	if err != nil {
		ctxzap.Warn(ctx, "history summary failed, using simple summary", zap.Error(err))
		return simpleSummary(session, history), true
	}

	session.ContextSummary = &entity.ContextSummary{
		Text:      summary,
		LogCount:  count,
		UpdatedAt: time.Now(),
	}
	return summary, true
}

// RefreshSummary regenerates the cached digest once the log has outgrown it.
// It reports whether session.ContextSummary changed.
func (c *Compactor) RefreshSummary(ctx context.Context, session *entity.Session) bool {
	n := len(session.InterviewLog)
	if n < c.cfg.SummaryThreshold {
		return false
	}

	count := n - c.cfg.ContextWindowSize
	if count <= 0 {
		return false
	}
	if cached := session.ContextSummary; cached != nil && cached.LogCount >= count {
		return false
	}

	history := session.InterviewLog[:count]
	summary := simpleSummary(session, history)
	if c.llm != nil {
		text, err := c.llm.Complete(ctx, entity.CompletionRequest{
			Prompt:             historySummaryPrompt(session, history),
			MaxTokens:          historySummaryTokens,
			Timeout:            historySummaryTimeout,
			CallType:           entity.CallTypeHistorySummary,
			DisableShrinkRetry: true,
		})
		if err != nil {
			ctxzap.Warn(ctx, "context summary refresh failed", zap.Error(err))
			return false
		}
		summary = text
	}

	session.ContextSummary = &entity.ContextSummary{
		Text:      summary,
		LogCount:  count,
		UpdatedAt: time.Now(),
	}
	ctxzap.Info(ctx, "context summary refreshed", zap.Int("log_count", count))
	return true
}

type dimensionGroup struct {
	name    string
	entries []entity.LogEntry
}

// groupByDimension keeps dimensions in order of first appearance
func groupByDimension(session *entity.Session, logs []entity.LogEntry) []dimensionGroup {
	index := make(map[string]int)
	var groups []dimensionGroup
	for _, entry := range logs {
		i, ok := index[entry.Dimension]
		if !ok {
			i = len(groups)
			index[entry.Dimension] = i
			groups = append(groups, dimensionGroup{name: session.Scenario.DimensionName(entry.Dimension)})
		}
		groups[i].entries = append(groups[i].entries, entry)
	}
	return groups
}

func historySummaryPrompt(session *entity.Session, logs []entity.LogEntry) string {
	var sb strings.Builder
	for _, g := range groupByDimension(session, logs) {
		fmt.Fprintf(&sb, "\n【%s】\n", g.name)
		for _, entry := range g.entries {
			fmt.Fprintf(&sb, "Q: %s\nA: %s\n",
				textutil.Truncate(entry.Question, historyQuestionLen),
				textutil.Truncate(entry.Answer, historyAnswerLen))
		}
	}

	return fmt.Sprintf(`请将以下访谈记录压缩为简洁的摘要，保留关键信息点。

访谈主题：%s

访谈记录：
%s

要求：
1. 按维度整理关键信息
2. 每个维度用1-2句话概括核心要点
3. 保留具体的数据、指标、选择
4. 总长度控制在200字以内
5. 直接输出摘要内容，不要添加其他说明

摘要：`, session.Topic, sb.String())
}

func simpleSummary(session *entity.Session, logs []entity.LogEntry) string {
	groups := groupByDimension(session, logs)
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		answers := make([]string, 0, simpleAnswersPerDim)
		for i, entry := range g.entries {
			if i == simpleAnswersPerDim {
				break
			}
			answers = append(answers, textutil.Truncate(entry.Answer, simpleAnswerLen))
		}
		parts = append(parts, fmt.Sprintf("【%s】: %s", g.name, strings.Join(answers, "; ")))
	}
	return strings.Join(parts, " | ")
}
