package vision

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Describe(ctx context.Context, image []byte, filename string) string {
	ctxzap.Info(ctx, "[MOCK] describing image", zap.String("filename", filename), zap.Int("size", len(image)))
	return fmt.Sprintf("[图片: %s]\n\n**AI 图片描述:**\n[MOCK] 一张与访谈主题相关的示意图。", filename)
}
