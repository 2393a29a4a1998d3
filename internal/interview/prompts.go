package interview

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/futig/interview-backend/internal/entity"
)

const defaultScoringCriteria = `  5分: 回答非常优秀，展现深厚专业能力
  4分: 回答良好，有清晰的思路和见解
  3分: 回答基本合格，但缺乏深度
  2分: 回答有明显不足或偏差
  1分: 回答很差，无法展现相关能力`

// ScorePrompt asks the model for a 1-5 score of an answer in an assessment dimension
func ScorePrompt(dim entity.Dimension, question, answer string) string {
	levels := make([]string, 0, len(dim.ScoringCriteria))
	for level := range dim.ScoringCriteria {
		levels = append(levels, level)
	}
	sort.Slice(levels, func(i, j int) bool {
		a, _ := strconv.Atoi(levels[i])
		b, _ := strconv.Atoi(levels[j])
		return a > b
	})

	var criteria []string
	for _, level := range levels {
		criteria = append(criteria, fmt.Sprintf("  %s分: %s", level, dim.ScoringCriteria[level]))
	}
	criteriaText := strings.Join(criteria, "\n")
	if criteriaText == "" {
		criteriaText = defaultScoringCriteria
	}

	name := dim.Name
	if name == "" {
		name = dim.ID
	}

	return fmt.Sprintf(`你是一位专业面试官。请根据以下评分标准，对候选人的回答进行评分。

【评估维度】%s
【维度说明】%s

【评分标准】
%s

【面试问题】
%s

【候选人回答】
%s

请严格按照评分标准打分，只返回一个数字（1-5之间的整数或小数，如 3.5），不要有任何其他文字：`,
		name, dim.Description, criteriaText, question, answer)
}

var scorePattern = regexp.MustCompile(`\d+\.?\d*`)

// ParseScore extracts the first number and clamps it to 1..5
func ParseScore(raw string) (float64, bool) {
	match := scorePattern.FindString(raw)
	if match == "" {
		return 0, false
	}
	score, err := strconv.ParseFloat(strings.TrimSuffix(match, "."), 64)
	if err != nil {
		return 0, false
	}
	return min(5, max(1, score)), true
}

// DimensionScore is the mean of the scored answers of a dimension, rounded to 2 places
func DimensionScore(session *entity.Session, dim string) *float64 {
	sum, n := 0.0, 0
	for _, entry := range session.InterviewLog {
		if entry.Dimension == dim && entry.Score != nil {
			sum += *entry.Score
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := round2(sum / float64(n))
	return &avg
}

// SearchVerdictPrompt asks the model whether external knowledge is needed
func SearchVerdictPrompt(topic, dimName string, recent []entity.LogEntry) string {
	recentText := "（尚未开始问答）"
	if len(recent) > 0 {
		parts := make([]string, 0, len(recent))
		for _, qa := range recent {
			parts = append(parts, fmt.Sprintf("Q: %s\nA: %s", qa.Question, qa.Answer))
		}
		recentText = strings.Join(parts, "\n")
	}

	return fmt.Sprintf(`你是一个智能搜索决策助手。请判断在当前访谈场景下，是否需要联网搜索来获取更准确、更专业的信息。

## 当前访谈信息
- 访谈主题：%s
- 当前维度：%s
- 最近问答：
%s

## 判断标准
1. **知识时效性**：是否涉及近1-2年的政策、市场、技术变化？
2. **专业领域深度**：是否涉及可能不够熟悉的垂直行业细节？
3. **竞品/市场信息**：是否需要了解市场现状、竞争对手、行业头部产品？
4. **最佳实践参考**：是否需要了解业界的最新做法、成功案例？
5. **数据/指标参考**：是否需要了解行业基准数据、常见参数范围？

## 输出格式
请严格按以下JSON格式输出，不要有其他内容：
{
    "need_search": true或false,
    "reason": "简要说明判断理由（20字以内）",
    "search_query": "如果需要搜索，给出最佳搜索词（15字以内）；不需要搜索则留空"
}`, topic, dimName, recentText)
}
