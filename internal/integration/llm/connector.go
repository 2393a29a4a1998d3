package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/futig/interview-backend/internal/config"
	"github.com/futig/interview-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const shrinkNote = "\n\n[注意：由于内容过长，部分上下文已被截断，请基于已有信息进行回答]"

// MetricsRecorder receives one record per model call, retries included
type MetricsRecorder interface {
	Record(rec entity.ModelCallRecord)
}

type Connector struct {
	config  config.LLMConnectorConfig
	client  *anthropic.Client
	limiter *rate.Limiter
	metrics MetricsRecorder
	logger  *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	metrics MetricsRecorder,
	logger *zap.Logger,
) *Connector {
	var opts []anthropic.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(1, cfg.Burst))
	}

	return &Connector{
		config:  cfg,
		client:  anthropic.NewClient(cfg.APIKey, opts...),
		limiter: limiter,
		metrics: metrics,
		logger:  logger,
	}
}

// Complete sends the prompt as a single user message and returns the text of the reply.
// A timed out call with a long prompt is retried once with a shortened prompt.
func (c *Connector) Complete(ctx context.Context, req entity.CompletionRequest) (string, error) {
	if req.MaxTokens <= 0 {
		req.MaxTokens = c.config.MaxTokensDefault
	}
	if req.Timeout <= 0 {
		req.Timeout = c.config.Timeout
	}

	text, err := c.call(ctx, req)
	if err == nil {
		return text, nil
	}

	var modelErr *entity.ModelError
	if !errors.As(err, &modelErr) || modelErr.Kind != entity.ModelErrorTimeout || req.DisableShrinkRetry {
		return "", err
	}
	promptLen := utf8.RuneCountInString(req.Prompt)
	if promptLen <= c.config.ShrinkRetryMinLen || ctx.Err() != nil {
		return "", err
	}

	retryReq := req
	retryReq.Prompt = ShrinkPrompt(req.Prompt, c.config.ShrinkRatio)
	retryReq.CallType = req.CallType + "_retry"
	retryReq.DisableShrinkRetry = true

	ctxzap.Warn(ctx, "model call timed out, retrying with shortened prompt",
		zap.String("call_type", string(req.CallType)),
		zap.Int("prompt_length", promptLen),
		zap.Int("retry_prompt_length", utf8.RuneCountInString(retryReq.Prompt)),
	)

	return c.call(ctx, retryReq)
}

func (c *Connector) call(ctx context.Context, req entity.CompletionRequest) (text string, err error) {
	start := time.Now()
	defer func() {
		c.record(req, start, err)
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", &entity.ModelError{Kind: classify(err), Err: err}
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	ctxzap.Debug(ctx, "calling model",
		zap.String("call_type", string(req.CallType)),
		zap.String("model", c.config.Model),
		zap.Int("prompt_length", utf8.RuneCountInString(req.Prompt)),
		zap.Int("max_tokens", req.MaxTokens),
	)

	resp, err := c.client.CreateMessages(callCtx, anthropic.MessagesRequest{
		Model: anthropic.Model(c.config.Model),
		Messages: []anthropic.Message{{
			Role:    anthropic.RoleUser,
			Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(req.Prompt)},
		}},
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		kind := classify(err)
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			kind = entity.ModelErrorTimeout
		}
		return "", &entity.ModelError{Kind: kind, Err: err}
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			sb.WriteString(*block.Text)
		}
	}
	text = strings.TrimSpace(sb.String())
	if text == "" {
		return "", &entity.ModelError{Kind: entity.ModelErrorOther, Err: errors.New("empty response")}
	}

	ctxzap.Debug(ctx, "model call finished",
		zap.String("call_type", string(req.CallType)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("response_length", utf8.RuneCountInString(text)),
	)
	return text, nil
}

func (c *Connector) record(req entity.CompletionRequest, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	rec := entity.ModelCallRecord{
		Timestamp:      start,
		CallType:       req.CallType,
		PromptLength:   utf8.RuneCountInString(req.Prompt),
		ResponseTimeMs: time.Since(start).Milliseconds(),
		MaxTokens:      req.MaxTokens,
		Success:        err == nil,
		TruncatedDocs:  req.TruncatedDocs,
	}
	if err != nil {
		rec.Error = err.Error()
		var modelErr *entity.ModelError
		rec.Timeout = errors.As(err, &modelErr) && modelErr.Kind == entity.ModelErrorTimeout
	}
	c.metrics.Record(rec)
}

// ShrinkPrompt keeps the leading ratio of the prompt and appends a truncation note
func ShrinkPrompt(prompt string, ratio float64) string {
	runes := []rune(prompt)
	keep := int(float64(len(runes)) * ratio)
	return string(runes[:keep]) + shrinkNote
}

func classify(err error) entity.ModelErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return entity.ModelErrorTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return entity.ModelErrorTimeout
		}
		return entity.ModelErrorNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out"):
		return entity.ModelErrorTimeout
	case strings.Contains(msg, "rate_limit") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"):
		return entity.ModelErrorRateLimited
	case strings.Contains(msg, "authentication") || strings.Contains(msg, "api key") ||
		strings.Contains(msg, "api_key") || strings.Contains(msg, "401"):
		return entity.ModelErrorAuth
	case strings.Contains(msg, "connection") || strings.Contains(msg, "network") || strings.Contains(msg, "no such host"):
		return entity.ModelErrorNetwork
	default:
		return entity.ModelErrorOther
	}
}
