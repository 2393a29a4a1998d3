package interview

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// SearchVerdict is the model's opinion on whether external knowledge would help
type SearchVerdict struct {
	NeedSearch  bool   `json:"need_search"`
	Reason      string `json:"reason"`
	SearchQuery string `json:"search_query"`
}

type SearchDecision struct {
	Search bool
	Query  string
	Reason string
}

// RuleSuggestsSearch is the keyword prefilter over the topic and the dimension
func (r *Rules) RuleSuggestsSearch(topic, dim string) bool {
	lowered := strings.ToLower(topic)
	for _, list := range [][]string{
		r.SearchTechKeywords,
		r.SearchIndustryKeywords,
		r.SearchComplianceKeywords,
		r.SearchTimeKeywords,
		r.SearchUncertaintyKeywords,
	} {
		for _, kw := range list {
			if strings.Contains(lowered, strings.ToLower(kw)) {
				return true
			}
		}
	}
	return slices.Contains(r.SearchDimensions, dim)
}

// DecideSearch combines the prefilter with the model verdict.
// A failed verdict (ok == false) counts as a negative one.
func DecideSearch(rulePositive bool, verdict SearchVerdict, ok bool, templateQuery string) SearchDecision {
	if !ok {
		verdict = SearchVerdict{Reason: "决策失败"}
	}

	if !rulePositive {
		if verdict.NeedSearch {
			return SearchDecision{Search: true, Query: verdict.SearchQuery, Reason: "AI建议: " + verdict.Reason}
		}
		return SearchDecision{Reason: "规则和AI均判断不需要搜索"}
	}

	switch {
	case verdict.NeedSearch && verdict.SearchQuery != "":
		return SearchDecision{Search: true, Query: verdict.SearchQuery, Reason: verdict.Reason}
	case verdict.NeedSearch:
		return SearchDecision{Search: true, Query: templateQuery, Reason: "AI确认需要，使用模板搜索词"}
	default:
		return SearchDecision{Reason: "AI判断不需要: " + verdict.Reason}
	}
}

// TemplateSearchQuery builds the fallback query for a dimension
func TemplateSearchQuery(topic, dim, dimName string) string {
	switch dim {
	case "tech_constraints":
		return topic + " 技术选型 最佳实践 2026"
	case "customer_needs":
		return topic + " 用户需求 行业痛点 2026"
	case "business_process":
		return topic + " 业务流程 最佳实践"
	case "project_constraints":
		return topic + " 项目实施 成本预算 周期"
	default:
		return topic + " " + dimName
	}
}

// ParseSearchVerdict reads the model's JSON verdict, tolerating markdown fences
func ParseSearchVerdict(raw string) (SearchVerdict, error) {
	text := StripCodeFence(raw)
	var v SearchVerdict
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return SearchVerdict{}, fmt.Errorf("decode search verdict: %w", err)
	}
	return v, nil
}

// StripCodeFence returns the body of the first fenced block, or the trimmed text
func StripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	for _, fence := range []string{"```json", "```"} {
		if _, after, found := strings.Cut(text, fence); found {
			body, _, _ := strings.Cut(after, "```")
			return strings.TrimSpace(body)
		}
	}
	return text
}
