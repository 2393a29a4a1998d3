package interview

import (
	"testing"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuestion(t *testing.T) {
	want := &entity.QuestionPayload{
		Question:    "您目前最大的痛点是什么？",
		Options:     []string{"效率低", "成本高"},
		MultiSelect: true,
	}

	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "direct",
			raw:  `{"question": "您目前最大的痛点是什么？", "options": ["效率低", "成本高"], "multi_select": true}`,
		},
		{
			name: "code block",
			raw:  "好的，下面是问题：\n```json\n{\"question\": \"您目前最大的痛点是什么？\", \"options\": [\"效率低\", \"成本高\"], \"multi_select\": true}\n```\n希望有帮助。",
		},
		{
			name: "brace match",
			raw:  `问题如下 {"question": "您目前最大的痛点是什么？", "options": ["效率低", "成本高"], "multi_select": true} 以上。`,
		},
		{
			name: "pattern",
			raw:  `草稿 {not json} 正式 {"question": "您目前最大的痛点是什么？", "options": ["效率低", "成本高"], "multi_select": true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuestion(tt.raw)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("ParseQuestion() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseQuestion_RepairsTruncatedOutput(t *testing.T) {
	got, err := ParseQuestion(`{"question": "期望的上线时间是？", "options": ["1个月内", "3个月内"`)
	require.NoError(t, err)
	assert.Equal(t, "期望的上线时间是？", got.Question)
	assert.Equal(t, []string{"1个月内", "3个月内"}, got.Options)
	assert.False(t, got.MultiSelect)
	assert.False(t, got.IsFollowUp)
}

func TestParseQuestion_CoercesBooleans(t *testing.T) {
	got, err := ParseQuestion(`{"question": "Q?", "options": [], "multi_select": "yes", "is_follow_up": 1, "follow_up_reason": "回答过于简短"}`)
	require.NoError(t, err)
	assert.False(t, got.MultiSelect)
	assert.False(t, got.IsFollowUp)
	require.NotNil(t, got.FollowUpReason)
	assert.Equal(t, "回答过于简短", *got.FollowUpReason)
}

func TestParseQuestion_AIRecommendation(t *testing.T) {
	raw := `{"question": "部署方式？", "options": ["私有云", "公有云"], "ai_recommendation": {"recommended_options": ["私有云"], "summary": "数据敏感", "reasons": [{"text": "涉及财务数据", "evidence": ["Q1"]}], "confidence": "high"}}`
	got, err := ParseQuestion(raw)
	require.NoError(t, err)
	want := &entity.AIRecommendation{
		RecommendedOptions: []string{"私有云"},
		Summary:            "数据敏感",
		Reasons:            []entity.RecommendationReason{{Text: "涉及财务数据", Evidence: []string{"Q1"}}},
		Confidence:         "high",
	}
	if diff := cmp.Diff(want, got.AIRecommendation); diff != "" {
		t.Errorf("AIRecommendation mismatch (-want +got):\n%s", diff)
	}
}

func TestParseQuestion_Errors(t *testing.T) {
	for name, raw := range map[string]string{
		"no object":       "抱歉，我无法生成问题",
		"empty question":  `{"question": "", "options": []}`,
		"missing options": `{"question": "Q?"}`,
	} {
		t.Run(name, func(t *testing.T) {
			got, err := ParseQuestion(raw)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, entity.ErrParse)
		})
	}
}
