package compactor

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/interview-backend/internal/config"
	"github.com/futig/interview-backend/internal/entity"
	"github.com/futig/interview-backend/internal/interview"
	"github.com/futig/interview-backend/internal/pkg/textutil"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	maxDescriptionLen   = 500
	recentQAForSearch   = 3
	searchResultsShown  = 2
	searchTitleLen      = 40
	searchContentLen    = 150
	autoSourceMarker    = "🔄 "
	followUpMarker      = " [追问]"
	searchVerdictTokens = 200
)

// Completer is the model-call capability
type Completer interface {
	Complete(ctx context.Context, req entity.CompletionRequest) (string, error)
}

// Searcher is the external lookup capability
type Searcher interface {
	Enabled() bool
	Search(ctx context.Context, query string) []entity.SearchResult
}

// SummaryStore caches document summaries by content hash
type SummaryStore interface {
	GetSummary(ctx context.Context, hash string) (string, error)
	SaveSummary(ctx context.Context, hash, summary string) error
}

// Compactor builds the bounded context handed to the model
type Compactor struct {
	cfg              config.InterviewConfig
	maxTokensSummary int
	llm              Completer
	search           Searcher
	summaries        SummaryStore
	engine           *interview.Engine
}

// New creates a compactor. llm, search and summaries may be nil.
func New(
	cfg config.InterviewConfig,
	maxTokensSummary int,
	llm Completer,
	search Searcher,
	summaries SummaryStore,
	engine *interview.Engine,
) *Compactor {
	return &Compactor{
		cfg:              cfg,
		maxTokensSummary: maxTokensSummary,
		llm:              llm,
		search:           search,
		summaries:        summaries,
		engine:           engine,
	}
}

// Context is the rendered context and what happened to the documents on the way
type Context struct {
	Text          string
	Summarized    []string
	Truncated     []string
	SearchQuery   string
	SearchResults []entity.SearchResult
}

type buildOptions struct {
	onSearch func()
}

type BuildOption func(*buildOptions)

// WithSearchHook is called right before the external lookup runs
func WithSearchHook(fn func()) BuildOption {
	return func(o *buildOptions) {
		o.onSearch = fn
	}
}

// Build renders topic, documents, optional search results and the conversation history
func (c *Compactor) Build(ctx context.Context, session *entity.Session, dim string, opts ...BuildOption) *Context {
	o := &buildOptions{}
	for _, opt := range opts {
		opt(o)
	}

	out := &Context{}
	parts := []string{"当前访谈主题：" + session.Topic}
	if session.Description != "" {
		parts = append(parts, "\n主题描述："+textutil.Truncate(session.Description, maxDescriptionLen))
	}

	parts = append(parts, c.renderDocuments(ctx, session, out)...)
	parts = append(parts, c.renderSearch(ctx, session, dim, o, out)...)
	parts = append(parts, c.renderHistory(ctx, session)...)

	out.Text = strings.Join(parts, "\n")
	return out
}

func (c *Compactor) renderDocuments(ctx context.Context, session *entity.Session, out *Context) []string {
	if len(session.ReferenceMaterials) == 0 {
		return nil
	}

	parts := []string{"\n## 参考资料："}
	total := 0
	for _, doc := range session.ReferenceMaterials {
		if doc.Content == "" || total >= c.cfg.MaxTotalDocs {
			continue
		}

		processed := c.ProcessDocument(ctx, doc, c.cfg.MaxTotalDocs-total, session.Topic)
		if processed.Content == "" {
			continue
		}

		marker := ""
		if doc.Source == entity.DocumentSourceAuto {
			marker = autoSourceMarker
		}
		parts = append(parts, "### "+marker+doc.Name, processed.Content)
		total += processed.Used

		if !processed.Shortened {
			continue
		}
		if processed.Summarized {
			out.Summarized = append(out.Summarized,
				fmt.Sprintf("%s（原%d字符，摘要至%d字符）", doc.Name, processed.Original, processed.Used))
		} else {
			out.Truncated = append(out.Truncated,
				fmt.Sprintf("%s（原%d字符，截取%d字符）", doc.Name, processed.Original, processed.Used))
		}
	}

	if len(out.Summarized) > 0 {
		parts = append(parts, "\n📝 注意：以下文档已通过AI生成摘要以保留关键信息："+strings.Join(out.Summarized, ", "))
	}
	if len(out.Truncated) > 0 {
		parts = append(parts, "\n⚠️ 注意：以下文档因长度限制已被截断，请基于已有信息进行提问："+strings.Join(out.Truncated, ", "))
	}
	return parts
}

func (c *Compactor) renderSearch(ctx context.Context, session *entity.Session, dim string, o *buildOptions, out *Context) []string {
	decision := c.DecideSearch(ctx, session, dim)
	if !decision.Search || decision.Query == "" {
		return nil
	}

	ctxzap.Info(ctx, "searching for context",
		zap.String("query", decision.Query),
		zap.String("reason", decision.Reason),
	)
	if o.onSearch != nil {
		o.onSearch()
	}

	results := c.search.Search(ctx, decision.Query)
	out.SearchQuery = decision.Query
	out.SearchResults = results
	if len(results) == 0 {
		return nil
	}

	parts := []string{"\n## 行业知识参考（联网搜索）："}
	for i, r := range results {
		if i == searchResultsShown {
			break
		}
		if r.Type == "intent" {
			parts = append(parts, fmt.Sprintf("**%s**", textutil.Truncate(r.Content, searchContentLen)))
			continue
		}
		title := r.Title
		if title == "" {
			title = "参考信息"
		}
		parts = append(parts,
			fmt.Sprintf("%d. **%s**", i+1, textutil.Truncate(title, searchTitleLen)),
			"   "+textutil.Truncate(r.Content, searchContentLen),
		)
	}
	return parts
}

// SearchEnabled reports whether the external lookup is available at all
func (c *Compactor) SearchEnabled() bool {
	return c.search != nil && c.search.Enabled()
}

// WouldSearch is the keyword prefilter alone, used to announce the search stage
func (c *Compactor) WouldSearch(session *entity.Session, dim string) bool {
	if !c.SearchEnabled() {
		return false
	}
	rules := c.engine.Rules()
	return rules.RuleSuggestsSearch(session.Topic, dim)
}

// DecideSearch combines the keyword prefilter with the model verdict
func (c *Compactor) DecideSearch(ctx context.Context, session *entity.Session, dim string) interview.SearchDecision {
	if !c.SearchEnabled() {
		return interview.SearchDecision{Reason: "搜索功能未启用"}
	}

	rules := c.engine.Rules()
	rulePositive := rules.RuleSuggestsSearch(session.Topic, dim)
	dimName := session.Scenario.DimensionName(dim)
	verdict, ok := c.searchVerdict(ctx, session, dimName)

	decision := interview.DecideSearch(rulePositive, verdict, ok,
		interview.TemplateSearchQuery(session.Topic, dim, dimName))
	ctxzap.Debug(ctx, "search decision",
		zap.Bool("rule_positive", rulePositive),
		zap.Bool("search", decision.Search),
		zap.String("reason", decision.Reason),
	)
	return decision
}

func (c *Compactor) searchVerdict(ctx context.Context, session *entity.Session, dimName string) (interview.SearchVerdict, bool) {
	if c.llm == nil {
		return interview.SearchVerdict{}, false
	}

	recent := session.InterviewLog
	if len(recent) > recentQAForSearch {
		recent = recent[len(recent)-recentQAForSearch:]
	}

	raw, err := c.llm.Complete(ctx, entity.CompletionRequest{
		Prompt:             interview.SearchVerdictPrompt(session.Topic, dimName, recent),
		MaxTokens:          searchVerdictTokens,
		CallType:           entity.CallTypeSearchDecision,
		DisableShrinkRetry: true,
	})
	if err != nil {
		ctxzap.Warn(ctx, "search verdict failed", zap.Error(err))
		return interview.SearchVerdict{}, false
	}

	verdict, err := interview.ParseSearchVerdict(raw)
	if err != nil {
		ctxzap.Warn(ctx, "search verdict unparseable", zap.Error(err))
		return interview.SearchVerdict{}, false
	}
	return verdict, true
}

func (c *Compactor) renderHistory(ctx context.Context, session *entity.Session) []string {
	log := session.InterviewLog
	if len(log) == 0 {
		return nil
	}

	parts := []string{"\n## 已收集的信息："}
	recent := log
	window := c.cfg.ContextWindowSize
	if len(log) > window {
		if summary, ok := c.SummarizeHistory(ctx, session, window); ok {
			parts = append(parts,
				fmt.Sprintf("\n### 历史访谈摘要（共%d条）：", len(log)-window),
				summary,
				"\n### 最近问答记录：",
			)
		}
		recent = log[len(log)-window:]
	}

	base := len(log) - len(recent)
	for i, entry := range recent {
		mark := ""
		if entry.IsFollowUp {
			mark = followUpMarker
		}
		parts = append(parts,
			fmt.Sprintf("- Q%d: %s%s", base+i+1, entry.Question, mark),
			"  A: "+entry.Answer,
		)
		if d, ok := session.Scenario.Dimension(entry.Dimension); ok && d.Name != "" {
			parts = append(parts, fmt.Sprintf("  (维度: %s)", d.Name))
		}
	}
	return parts
}
