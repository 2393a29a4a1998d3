package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/futig/interview-backend/internal/config"
	"github.com/futig/interview-backend/internal/integration/common"
	"github.com/futig/interview-backend/internal/pkg/textutil"
	pkghttp "github.com/futig/interview-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const describePrompt = `请详细描述这张图片的内容，包括：
1. 图片的主要内容和主题
2. 图片中的关键元素（人物、物体、文字等）
3. 如果是流程图/架构图/图表，请解读其含义
4. 如果有文字，请提取主要文字内容

请用中文回答，内容尽量完整准确。`

var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// IsImage reports whether the filename has a supported image extension
func IsImage(filename string) bool {
	_, ok := mimeTypes[strings.ToLower(filepath.Ext(filename))]
	return ok
}

func mimeType(filename string) string {
	if m, ok := mimeTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return m
	}
	return "image/jpeg"
}

type Connector struct {
	config    config.VisionConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.VisionConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

type imageURL struct {
	URL string `json:"url"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Describe returns a markdown description of the image.
// Every failure is reported inside the returned text.
func (c *Connector) Describe(ctx context.Context, image []byte, filename string) string {
	label := fmt.Sprintf("[图片: %s]", filename)

	if !c.config.Enabled {
		return label + " (视觉功能已禁用)"
	}
	if c.config.Url == "" || c.config.Token == "" || strings.HasPrefix(c.config.Token, "your-") {
		return label + " (视觉 API 未配置)"
	}

	sizeMB := float64(len(image)) / (1024 * 1024)
	if sizeMB > c.config.MaxImageSizeMB {
		return fmt.Sprintf("%s (文件过大: %.1fMB > %gMB)", label, sizeMB, c.config.MaxImageSizeMB)
	}

	req := chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: describePrompt},
				{Type: "image_url", ImageURL: &imageURL{
					URL: fmt.Sprintf("data:%s;base64,%s", mimeType(filename), base64.StdEncoding.EncodeToString(image)),
				}},
			},
		}},
		MaxTokens: c.config.MaxTokens,
	}

	ctxzap.Info(ctx, "describing image", zap.String("filename", filename), zap.Float64("size_mb", sizeMB))

	var resp chatResponse
	err := c.config.Retry.Do(ctx, func() error {
		resp = chatResponse{}
		return c.connector.DoRequest(ctx, http.MethodPost, c.config.Endpoint, req, &resp)
	}, pkghttp.IsRetryable)
	if err != nil {
		ctxzap.Warn(ctx, "image description failed", zap.String("filename", filename), zap.Error(err))
		return label + " " + failureNote(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return label + " (描述生成失败: 空响应)"
	}

	description := resp.Choices[0].Message.Content
	ctxzap.Info(ctx, "image described", zap.String("filename", filename), zap.Int("length", textutil.Len(description)))
	return fmt.Sprintf("%s\n\n**AI 图片描述:**\n%s", label, description)
}

func failureNote(err error) string {
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		msg := httpErr.Message
		var body apiErrorBody
		if json.Unmarshal([]byte(msg), &body) == nil && body.Error.Message != "" {
			msg = body.Error.Message
		}
		return fmt.Sprintf("(API 错误: %s)", textutil.Truncate(msg, 100))
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "(API 超时)"
	}

	return fmt.Sprintf("(处理失败: %s)", textutil.Truncate(err.Error(), 100))
}
