package search

import (
	"context"
	"net/http"
	"strings"

	"github.com/futig/interview-backend/internal/config"
	"github.com/futig/interview-backend/internal/entity"
	"github.com/futig/interview-backend/internal/integration/common"
	"github.com/futig/interview-backend/internal/pkg/textutil"
	pkghttp "github.com/futig/interview-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	maxTitleLen   = 100
	maxContentLen = 300
	defaultTitle  = "搜索结果"
)

type Connector struct {
	config    config.SearchConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.SearchConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

type searchRequest struct {
	Query         string `json:"search_query"`
	RecencyFilter string `json:"search_recency_filter"`
	ContentSize   string `json:"content_size"`
	MaxResults    int    `json:"max_results"`
}

type searchHit struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Link    string `json:"link"`
	URL     string `json:"url"`
}

type searchResponse struct {
	Results []searchHit `json:"results"`
}

// Enabled reports whether lookups reach the search service
func (c *Connector) Enabled() bool {
	return c.config.Enabled
}

// Search looks the query up. Failures and a disabled service yield no results.
func (c *Connector) Search(ctx context.Context, query string) []entity.SearchResult {
	query = strings.TrimSpace(query)
	if !c.config.Enabled || query == "" {
		return []entity.SearchResult{}
	}

	ctxzap.Info(ctx, "searching", zap.String("query", query))

	req := searchRequest{
		Query:         query,
		RecencyFilter: "noLimit",
		ContentSize:   "medium",
		MaxResults:    c.config.MaxResults,
	}

	var resp searchResponse
	err := c.config.Retry.Do(ctx, func() error {
		resp = searchResponse{}
		return c.connector.DoRequest(ctx, http.MethodPost, c.config.Endpoint, req, &resp)
	}, pkghttp.IsRetryable)
	if err != nil {
		ctxzap.Warn(ctx, "search failed", zap.String("query", query), zap.Error(err))
		return []entity.SearchResult{}
	}

	results := normalize(resp.Results, c.config.MaxResults)
	ctxzap.Info(ctx, "search finished", zap.Int("result_count", len(results)))
	return results
}

func normalize(hits []searchHit, limit int) []entity.SearchResult {
	results := make([]entity.SearchResult, 0, len(hits))
	for _, hit := range hits {
		if limit > 0 && len(results) == limit {
			break
		}
		if hit.Title == "" && hit.Content == "" {
			continue
		}

		title := textutil.Truncate(hit.Title, maxTitleLen)
		if title == "" {
			title = defaultTitle
		}
		url := hit.Link
		if url == "" {
			url = hit.URL
		}
		results = append(results, entity.SearchResult{
			Type:    "result",
			Title:   title,
			Content: textutil.Truncate(hit.Content, maxContentLen),
			URL:     url,
		})
	}
	return results
}
