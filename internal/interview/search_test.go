package interview

import (
	"testing"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRules_RuleSuggestsSearch(t *testing.T) {
	rules := DefaultRules()

	assert.True(t, rules.RuleSuggestsSearch("医院HIS系统升级", "customer_needs"))
	assert.True(t, rules.RuleSuggestsSearch("ai 助手", "customer_needs"))
	assert.True(t, rules.RuleSuggestsSearch("团建活动", "tech_constraints"))
	assert.False(t, rules.RuleSuggestsSearch("团建活动", "customer_needs"))
}

func TestDecideSearch(t *testing.T) {
	const template = "内部审批系统 技术选型 最佳实践 2026"

	tests := []struct {
		name    string
		rule    bool
		verdict SearchVerdict
		ok      bool
		want    SearchDecision
	}{
		{
			name:    "model overrides negative rule",
			verdict: SearchVerdict{NeedSearch: true, Reason: "涉及新政策", SearchQuery: "审批 新规"},
			ok:      true,
			want:    SearchDecision{Search: true, Query: "审批 新规", Reason: "AI建议: 涉及新政策"},
		},
		{
			name: "both negative",
			ok:   true,
			want: SearchDecision{Reason: "规则和AI均判断不需要搜索"},
		},
		{
			name:    "both positive with query",
			rule:    true,
			verdict: SearchVerdict{NeedSearch: true, Reason: "需要行业数据", SearchQuery: "审批系统 市场"},
			ok:      true,
			want:    SearchDecision{Search: true, Query: "审批系统 市场", Reason: "需要行业数据"},
		},
		{
			name:    "model confirms without query",
			rule:    true,
			verdict: SearchVerdict{NeedSearch: true},
			ok:      true,
			want:    SearchDecision{Search: true, Query: template, Reason: "AI确认需要，使用模板搜索词"},
		},
		{
			name:    "model declines positive rule",
			rule:    true,
			verdict: SearchVerdict{Reason: "常识问题"},
			ok:      true,
			want:    SearchDecision{Reason: "AI判断不需要: 常识问题"},
		},
		{
			name: "failed verdict",
			rule: true,
			want: SearchDecision{Reason: "AI判断不需要: 决策失败"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecideSearch(tt.rule, tt.verdict, tt.ok, template))
		})
	}
}

func TestTemplateSearchQuery(t *testing.T) {
	assert.Equal(t, "内部审批系统 技术选型 最佳实践 2026", TemplateSearchQuery("内部审批系统", "tech_constraints", "技术约束"))
	assert.Equal(t, "内部审批系统 团队协作", TemplateSearchQuery("内部审批系统", "teamwork", "团队协作"))
}

func TestParseSearchVerdict(t *testing.T) {
	got, err := ParseSearchVerdict("```json\n{\"need_search\": true, \"reason\": \"政策更新\", \"search_query\": \"等保 2.0\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, SearchVerdict{NeedSearch: true, Reason: "政策更新", SearchQuery: "等保 2.0"}, got)

	_, err = ParseSearchVerdict("不需要")
	assert.Error(t, err)
}

func TestFallbackQuestion(t *testing.T) {
	s := newTestSession(entity.InterviewModeStandard)

	got := FallbackQuestion(s, "customer_needs")
	require.NotNil(t, got.QuestionPayload)
	assert.False(t, got.Completed)
	assert.Equal(t, "您希望通过这个项目解决哪些核心问题？", got.Question)
	assert.False(t, got.AIGenerated)

	for i := 0; i < 3; i++ {
		appendLog(s, "customer_needs", "Q", "A", false)
	}
	got = FallbackQuestion(s, "customer_needs")
	assert.True(t, got.Completed)
	assert.Nil(t, got.QuestionPayload)
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"4", 4, true},
		{"评分：3.5分", 3.5, true},
		{"7", 5, true},
		{"0", 1, true},
		{"无法评分", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseScore(tt.raw)
		assert.Equal(t, tt.wantOK, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestDimensionScore(t *testing.T) {
	s := newTestSession(entity.InterviewModeStandard)
	assert.Nil(t, DimensionScore(s, "customer_needs"))

	four, three := 4.0, 3.0
	s.InterviewLog = append(s.InterviewLog,
		entity.LogEntry{Dimension: "customer_needs", Score: &four},
		entity.LogEntry{Dimension: "customer_needs"},
		entity.LogEntry{Dimension: "customer_needs", Score: &three},
		entity.LogEntry{Dimension: "business_process", Score: &four},
	)
	got := DimensionScore(s, "customer_needs")
	require.NotNil(t, got)
	assert.Equal(t, 3.5, *got)
}
