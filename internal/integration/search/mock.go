package search

import (
	"context"

	"github.com/futig/interview-backend/internal/entity"
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

func (m *MockConnector) Enabled() bool {
	return true
}

func (m *MockConnector) Search(ctx context.Context, query string) []entity.SearchResult {
	ctxzap.Info(ctx, "[MOCK] searching", zap.String("query", query))

	return []entity.SearchResult{
		{
			Type:    "result",
			Title:   "行业实践综述：" + query,
			Content: "模拟搜索结果，汇总了同类项目常见的实施路径与注意事项。",
			URL:     "https://example.com/mock/1",
		},
		{
			Type:    "result",
			Title:   "常见问题与选型建议",
			Content: "模拟搜索结果，列举了主流方案的优缺点对比。",
			URL:     "https://example.com/mock/2",
		},
	}
}
