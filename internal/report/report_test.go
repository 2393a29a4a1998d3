package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/futig/interview-backend/internal/compactor"
	"github.com/futig/interview-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func standardSession() *entity.Session {
	s := &entity.Session{
		ID:    "s1",
		Topic: "内部 审批系统",
		Scenario: entity.Scenario{
			ID: entity.DefaultScenarioID,
			Dimensions: []entity.Dimension{
				{ID: "customer_needs", Name: "客户需求"},
				{ID: "business_process", Name: "业务流程"},
			},
			Report: entity.ReportConfig{Type: entity.ReportTypeStandard},
		},
	}
	s.ResetDimensions()
	s.InterviewLog = []entity.LogEntry{
		{Question: "最大的痛点？", Answer: "审批慢", Dimension: "customer_needs",
			Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{Question: "谁来审批？", Answer: "部门经理", Dimension: "business_process"},
		{Question: "孤立的问题", Answer: "x", Dimension: "gone"},
	}
	return s
}

func assessmentSession() *entity.Session {
	s := &entity.Session{
		ID:    "s2",
		Topic: "后端工程师面试",
		Scenario: entity.Scenario{
			Dimensions: []entity.Dimension{
				{ID: "skills", Name: "专业技能", Weight: ptr(0.6)},
				{ID: "communication", Name: "沟通能力", Weight: ptr(0.4)},
				{ID: "culture", Name: "文化匹配"},
			},
			Report: entity.ReportConfig{Type: entity.ReportTypeAssessment},
			Assessment: &entity.AssessmentConfig{RecommendationLevels: []entity.RecommendationLevel{
				{Level: "B", Name: "推荐", Threshold: 3.5},
				{Level: "A", Name: "强烈推荐", Threshold: 4.5, Description: "优秀"},
				{Level: "C", Name: "待定", Threshold: 2.5},
			}},
		},
	}
	s.ResetDimensions()
	s.Dimensions["skills"].Score = ptr(4)
	s.Dimensions["communication"].Score = ptr(3)
	s.InterviewLog = []entity.LogEntry{
		{Question: "讲讲项目", Answer: "做过支付系统", Dimension: "skills", Score: ptr(4)},
	}
	return s
}

func TestAssess(t *testing.T) {
	a := Assess(assessmentSession())

	// (4*0.6 + 3*0.4) / 1.0
	assert.InDelta(t, 3.6, a.TotalScore, 1e-9)
	assert.Equal(t, "B", a.Recommendation.Level)
	require.Len(t, a.Scores, 2)
	assert.Equal(t, "专业技能", a.Scores[0].Name)
}

func TestAssess_DefaultsAndRecommendation(t *testing.T) {
	s := assessmentSession()
	s.Dimensions["skills"].Score = nil
	s.Dimensions["communication"].Score = nil
	s.Dimensions["culture"].Score = ptr(4.8)

	a := Assess(s)
	require.Len(t, a.Scores, 1)
	assert.Equal(t, defaultWeight, a.Scores[0].Weight)
	assert.InDelta(t, 4.8, a.TotalScore, 1e-9)
	assert.Equal(t, "A", a.Recommendation.Level)

	s.Dimensions["culture"].Score = ptr(1)
	assert.Equal(t, "D", Assess(s).Recommendation.Level)

	s.Scenario.Assessment = nil
	assert.Equal(t, "不推荐", Assess(s).Recommendation.Name)
}

func TestBuild(t *testing.T) {
	in := Build(standardSession())

	require.Len(t, in.Sections, 2)
	assert.Equal(t, "客户需求", in.Sections[0].Name)
	assert.Len(t, in.Sections[0].Entries, 1)
	assert.Nil(t, in.Assessment)
	assert.Contains(t, in.Transcript, "本次访谈共收集了 3 个问题的回答")

	assert.NotNil(t, Build(assessmentSession()).Assessment)
}

func TestAppendix(t *testing.T) {
	got := Appendix(standardSession())

	assert.True(t, strings.HasPrefix(got, "\n\n---\n\n## 附录：完整访谈记录\n\n<details>\n"))
	assert.Contains(t, got, "<summary>Q1: 最大的痛点？</summary>\n\n**回答**: 审批慢\n\n**维度**: 客户需求\n\n*记录时间: 2026-01-02T03:04:05Z*")
	assert.Contains(t, got, "<summary>Q3: 孤立的问题</summary>\n\n**回答**: x\n\n**维度**: 未分类")
	assert.Equal(t, 4, strings.Count(got, "</details>"))

	empty := standardSession()
	empty.InterviewLog = nil
	assert.Empty(t, Appendix(empty))
}

func TestFilename(t *testing.T) {
	now := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "interview-report-20260309-内部-审批系统.md", Filename("内部 审批系统", now))
	assert.Equal(t, "interview-report-20260309-a-b.md", Filename("a/b", now))
	assert.Equal(t, "interview-report-20260309-report.md", Filename("", now))
	assert.Equal(t, "interview-report-20260309-"+strings.Repeat("长", 30)+".md", Filename(strings.Repeat("长", 40), now))
}

func TestSimple(t *testing.T) {
	now := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	got := Simple(standardSession(), now)

	assert.True(t, strings.HasPrefix(got, "# 内部 审批系统 访谈报告\n\n**访谈日期**: 2026-03-09\n"))
	assert.Contains(t, got, "共收集了 3 个问题的回答。")
	assert.Contains(t, got, "### 客户需求\n\n- **审批慢** - 最大的痛点？\n")
	assert.Contains(t, got, "## 附录：完整访谈记录")

	s := standardSession()
	s.InterviewLog = s.InterviewLog[:1]
	assert.Contains(t, Simple(s, now), "### 业务流程\n\n*暂无数据*\n")
}

func TestSimple_Assessment(t *testing.T) {
	got := Simple(assessmentSession(), time.Now())

	assert.Contains(t, got, "## 2. 评估结果")
	assert.Contains(t, got, "| 专业技能 | 4.0 | 60% | 2.40 |")
	assert.Contains(t, got, "| **综合得分** | **3.60** | 100% | **3.60** |")
	assert.Contains(t, got, "推荐等级：**推荐** (B)")
}

type fakeDocs struct{}

func (fakeDocs) ProcessDocument(_ context.Context, doc entity.ReferenceMaterial, _ int, _ string) compactor.ProcessedDocument {
	switch doc.Name {
	case "long":
		return compactor.ProcessedDocument{Content: "摘要", Original: 3000, Used: 2, Shortened: true, Summarized: true}
	case "cut":
		return compactor.ProcessedDocument{Content: "截取", Original: 2500, Used: 2000, Shortened: true}
	default:
		return compactor.ProcessedDocument{Content: doc.Content, Original: len(doc.Content), Used: len(doc.Content)}
	}
}

func TestPrompt_Standard(t *testing.T) {
	s := standardSession()
	s.Description = "审批改造"
	s.ReferenceMaterials = []entity.ReferenceMaterial{
		{Name: "long", Content: "x"},
		{Name: "cut", Content: "x"},
		{Name: "plain", Content: "正文", Source: entity.DocumentSourceAuto},
		{Name: "blank"},
	}

	got := Prompt(context.Background(), s, fakeDocs{})

	assert.Contains(t, got, "## 访谈主题\n内部 审批系统\n\n## 主题描述\n审批改造\n")
	assert.Contains(t, got, "### long\n摘要\n*[原文档 3000 字符，已通过AI生成摘要保留关键信息]*")
	assert.Contains(t, got, "### cut\n截取\n*[文档内容过长，已截取前 2000 字符]*")
	assert.Contains(t, got, "### 🔄 plain\n正文\n\n")
	assert.Contains(t, got, "### blank\n*[文档内容为空]*")
	assert.Contains(t, got, "### 客户需求\n**Q**: 最大的痛点？\n**A**: 审批慢")
	assert.Contains(t, got, "## 报告要求")
	assert.NotContains(t, got, "孤立的问题")
}

func TestPrompt_NoDocuments(t *testing.T) {
	s := standardSession()
	s.InterviewLog = nil

	got := Prompt(context.Background(), s, fakeDocs{})
	assert.Contains(t, got, "## 参考资料\n无参考资料\n")
	assert.Contains(t, got, "### 客户需求\n*该维度暂无收集数据*")
}

func TestPrompt_Assessment(t *testing.T) {
	got := Prompt(context.Background(), assessmentSession(), fakeDocs{})

	assert.Contains(t, got, "面试评估报告")
	assert.Contains(t, got, "### 专业技能（得分: 4.0/5.0）\n**Q**: 讲讲项目\n**A**: 做过支付系统\n*单题评分: 4.0*")
	assert.Contains(t, got, `x-axis ["专业技能", "沟通能力"]`)
	assert.Contains(t, got, "bar [4, 3]")
	assert.Contains(t, got, "综合得分：**3.60/5.0**")
	assert.Contains(t, got, "推荐等级：**推荐** (B)")
}
