package status

import (
	"time"

	"github.com/futig/interview-backend/internal/entity"
	gocache "github.com/patrickmn/go-cache"
)

const (
	thinkingStages = 3
	reportStages   = 6
)

type thinkingStage struct {
	index   int
	message string
}

var thinkingStageInfo = map[entity.ThinkingStage]thinkingStage{
	entity.ThinkingStageAnalyzing:  {0, "正在分析您的回答..."},
	entity.ThinkingStageSearching:  {1, "正在检索相关资料..."},
	entity.ThinkingStageGenerating: {2, "正在生成下一个问题..."},
}

type reportStage struct {
	index    int
	progress int
	message  string
}

var reportStageInfo = map[entity.ReportStage]reportStage{
	entity.ReportStageQueued:         {0, 5, "已提交请求，准备生成报告..."},
	entity.ReportStageBuildingPrompt: {1, 20, "正在整理访谈与资料上下文..."},
	entity.ReportStageGenerating:     {2, 65, "正在调用 AI 生成报告正文..."},
	entity.ReportStageFallback:       {3, 78, "AI 响应较慢，正在切换模板生成..."},
	entity.ReportStageSaving:         {4, 90, "正在保存报告并更新会话状态..."},
	entity.ReportStageCompleted:      {5, 100, "报告生成完成"},
	entity.ReportStageFailed:         {5, 100, "报告生成失败"},
}

// Tracker keeps per-session progress of question and report generation.
// Entries expire after the configured TTL so abandoned sessions do not accumulate.
type Tracker struct {
	thinking *gocache.Cache
	reports  *gocache.Cache
	ttl      time.Duration
}

func NewTracker(ttl time.Duration) *Tracker {
	return &Tracker{
		thinking: gocache.New(ttl, 0),
		reports:  gocache.New(ttl, 0),
		ttl:      ttl,
	}
}

// SetThinking moves the session to a question-generation stage. The stage index is fixed per stage.
func (t *Tracker) SetThinking(sessionID string, stage entity.ThinkingStage, hasSearch bool) {
	info, ok := thinkingStageInfo[stage]
	if !ok {
		return
	}

	startedAt := time.Now()
	if prev, ok := t.thinking.Get(sessionID); ok {
		startedAt = prev.(entity.ThinkingStatus).StartedAt
	}

	t.thinking.Set(sessionID, entity.ThinkingStatus{
		Active:      true,
		Stage:       stage,
		StageIndex:  info.index,
		TotalStages: thinkingStages,
		Message:     info.message,
		HasSearch:   hasSearch,
		StartedAt:   startedAt,
	}, t.ttl)
}

func (t *Tracker) ClearThinking(sessionID string) {
	t.thinking.Delete(sessionID)
}

// Thinking returns the current stage, or an inactive status
func (t *Tracker) Thinking(sessionID string) entity.ThinkingStatus {
	if v, ok := t.thinking.Get(sessionID); ok {
		return v.(entity.ThinkingStatus)
	}
	return entity.ThinkingStatus{}
}

type ReportOption func(*entity.ReportStatus)

// WithMessage overrides the default stage message
func WithMessage(msg string) ReportOption {
	return func(s *entity.ReportStatus) {
		if msg != "" {
			s.Message = msg
		}
	}
}

func WithReportID(id string) ReportOption {
	return func(s *entity.ReportStatus) {
		s.ReportID = id
	}
}

func WithError(err error) ReportOption {
	return func(s *entity.ReportStatus) {
		if err != nil {
			s.Error = err.Error()
		}
	}
}

// SetReport moves the session to a report-generation stage. Terminal stages are inactive.
func (t *Tracker) SetReport(sessionID string, stage entity.ReportStage, opts ...ReportOption) {
	info, ok := reportStageInfo[stage]
	if !ok {
		return
	}

	s := entity.ReportStatus{
		Active:      stage != entity.ReportStageCompleted && stage != entity.ReportStageFailed,
		Stage:       stage,
		StageIndex:  info.index,
		TotalStages: reportStages,
		Progress:    info.progress,
		Message:     info.message,
		UpdatedAt:   time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	t.reports.Set(sessionID, s, t.ttl)
}

// Report returns the latest report stage, or an inactive status
func (t *Tracker) Report(sessionID string) entity.ReportStatus {
	if v, ok := t.reports.Get(sessionID); ok {
		return v.(entity.ReportStatus)
	}
	return entity.ReportStatus{}
}

// Clear drops everything known about a session
func (t *Tracker) Clear(sessionID string) {
	t.thinking.Delete(sessionID)
	t.reports.Delete(sessionID)
}
