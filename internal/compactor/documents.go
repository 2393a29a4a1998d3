package compactor

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/futig/interview-backend/internal/pkg/textutil"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	summaryInputLen = 8000
	summaryTimeout  = 60 * time.Second
	summarizedRatio = 0.6
)

// ProcessedDocument is a document after fitting it into the remaining budget
type ProcessedDocument struct {
	Content   string
	Original  int
	Used      int
	Shortened bool
	// Summarized is set when a long document was condensed below summarizedRatio of its length
	Summarized bool
}

// ProcessDocument fits one document into min(MaxDocLength, remaining) characters
func (c *Compactor) ProcessDocument(ctx context.Context, doc entity.ReferenceMaterial, remaining int, topic string) ProcessedDocument {
	original := textutil.Len(doc.Content)
	out := ProcessedDocument{Original: original}
	if original == 0 || remaining <= 0 {
		return out
	}

	limit := min(c.cfg.MaxDocLength, remaining)
	content := doc.Content

	switch {
	case original <= c.cfg.SmartSummaryThreshold:
		if original > limit {
			content = textutil.Truncate(content, limit)
			out.Shortened = true
		}
	case c.cfg.SmartSummary:
		content = textutil.Truncate(c.summarize(ctx, doc.Content, doc.Name, topic), limit)
		out.Shortened = true
	default:
		content = textutil.Truncate(content, limit)
		out.Shortened = true
	}

	out.Content = content
	out.Used = textutil.Len(content)
	// labelled by the size reached, whether the model or the fallback cut produced it
	if c.cfg.SmartSummary && original > c.cfg.SmartSummaryThreshold {
		out.Summarized = float64(out.Used) < summarizedRatio*float64(original)
	}
	return out
}

// summarize returns a model summary of a long document, cached by content hash.
// Any failure degrades to a plain cut at MaxDocLength.
func (c *Compactor) summarize(ctx context.Context, content, name, topic string) string {
	cut := textutil.Truncate(content, c.cfg.MaxDocLength)
	if c.llm == nil {
		return cut
	}

	hash := DocumentHash(content)
	useCache := c.cfg.SummaryCacheEnabled && c.summaries != nil
	if useCache {
		cached, err := c.summaries.GetSummary(ctx, hash)
		if err != nil {
			ctxzap.Warn(ctx, "failed to read summary cache", zap.String("hash", hash), zap.Error(err))
		} else if cached != "" {
			ctxzap.Debug(ctx, "summary cache hit", zap.String("document", name), zap.String("hash", hash))
			return cached
		}
	}

	summary, err := c.llm.Complete(ctx, entity.CompletionRequest{
		Prompt:    documentSummaryPrompt(content, name, topic, c.cfg.SmartSummaryTarget),
		MaxTokens: c.maxTokensSummary,
		Timeout:   summaryTimeout,
		CallType:  entity.CallTypeSummary,
	})
	if err != nil {
		ctxzap.Warn(ctx, "document summary failed, truncating instead",
			zap.String("document", name),
			zap.Error(err),
		)
		return cut
	}

	ctxzap.Info(ctx, "document summarized",
		zap.String("document", name),
		zap.Int("original_length", textutil.Len(content)),
		zap.Int("summary_length", textutil.Len(summary)),
	)

	if useCache {
		if err := c.summaries.SaveSummary(ctx, hash, summary); err != nil {
			ctxzap.Warn(ctx, "failed to save summary cache", zap.String("hash", hash), zap.Error(err))
		}
	}
	return summary
}

// DocumentHash is the summary cache key of a document body
func DocumentHash(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])[:16]
}

func documentSummaryPrompt(content, name, topic string, target int) string {
	return fmt.Sprintf(`请为以下文档生成一个精炼的摘要。

## 要求
1. 摘要长度控制在 %d 字符以内
2. 保留文档中的关键信息、核心观点和重要数据
3. 如果文档与"%s"主题相关，优先保留与主题相关的内容
4. 使用简洁清晰的语言，避免冗余
5. 保持信息的准确性，不要添加文档中没有的内容

## 文档名称
%s

## 文档内容
%s

## 输出格式
直接输出摘要内容，不要添加"摘要："等前缀。`, target, topic, name, textutil.Truncate(content, summaryInputLen))
}
