package report

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/futig/interview-backend/internal/pkg/textutil"
)

const (
	defaultWeight = 0.25
	slugLen       = 30
	untitledDim   = "未分类"
)

var defaultRecommendation = entity.RecommendationLevel{Level: "D", Name: "不推荐", Color: "#ef4444"}

// Section groups the answers of one dimension
type Section struct {
	Dimension string
	Name      string
	Entries   []entity.LogEntry
}

// Input is everything a report is rendered from
type Input struct {
	Topic       string
	Description string
	Sections    []Section
	Assessment  *entity.Assessment
	Transcript  string
}

// Build groups the log by dimension in scenario order and computes the assessment when applicable
func Build(session *entity.Session) Input {
	in := Input{
		Topic:       session.Topic,
		Description: session.Description,
		Transcript:  Appendix(session),
	}

	for _, d := range session.Scenario.Dimensions {
		in.Sections = append(in.Sections, Section{
			Dimension: d.ID,
			Name:      session.Scenario.DimensionName(d.ID),
			Entries:   session.DimensionLogs(d.ID),
		})
	}

	if session.Scenario.IsAssessment() {
		in.Assessment = Assess(session)
	}
	return in
}

// Assess computes the weighted composite of scored dimensions and picks the recommendation level
func Assess(session *entity.Session) *entity.Assessment {
	a := &entity.Assessment{Scores: []entity.DimensionScore{}}

	var total, weights float64
	for _, d := range session.Scenario.Dimensions {
		state, ok := session.Dimensions[d.ID]
		if !ok || state.Score == nil {
			continue
		}
		weight := defaultWeight
		if d.Weight != nil {
			weight = *d.Weight
		}
		score := *state.Score
		total += score * weight
		weights += weight
		a.Scores = append(a.Scores, entity.DimensionScore{
			Dimension: d.ID,
			Name:      session.Scenario.DimensionName(d.ID),
			Score:     &score,
			Weight:    weight,
		})
	}

	if weights > 0 {
		a.TotalScore = math.Round(total/weights*100) / 100
	}
	a.Recommendation = recommend(session.Scenario.Assessment, a.TotalScore)
	return a
}

func recommend(cfg *entity.AssessmentConfig, score float64) entity.RecommendationLevel {
	if cfg == nil {
		return defaultRecommendation
	}

	levels := slices.Clone(cfg.RecommendationLevels)
	slices.SortStableFunc(levels, func(a, b entity.RecommendationLevel) int {
		switch {
		case a.Threshold > b.Threshold:
			return -1
		case a.Threshold < b.Threshold:
			return 1
		default:
			return 0
		}
	})

	for _, level := range levels {
		if score >= level.Threshold {
			return level
		}
	}
	return defaultRecommendation
}

// Appendix renders the complete transcript as collapsible markdown. Empty logs render nothing.
func Appendix(session *entity.Session) string {
	log := session.InterviewLog
	if len(log) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n\n---\n\n## 附录：完整访谈记录\n\n")
	sb.WriteString("<details>\n")
	fmt.Fprintf(&sb, "<summary>本次访谈共收集了 %d 个问题的回答（点击展开/收起）</summary>\n\n", len(log))

	for i, entry := range log {
		name := untitledDim
		if d, ok := session.Scenario.Dimension(entry.Dimension); ok && d.Name != "" {
			name = d.Name
		}
		sb.WriteString("<details>\n")
		fmt.Fprintf(&sb, "<summary>Q%d: %s</summary>\n\n", i+1, entry.Question)
		fmt.Fprintf(&sb, "**回答**: %s\n\n", entry.Answer)
		fmt.Fprintf(&sb, "**维度**: %s\n\n", name)
		if !entry.Timestamp.IsZero() {
			fmt.Fprintf(&sb, "*记录时间: %s*\n\n", entry.Timestamp.Format(time.RFC3339))
		}
		sb.WriteString("</details>\n\n")
	}
	sb.WriteString("</details>\n\n")
	return sb.String()
}

// Filename is the display name of a report generated at now
func Filename(topic string, now time.Time) string {
	slug := strings.NewReplacer(" ", "-", "/", "-", "\\", "-").Replace(topic)
	if slug == "" {
		slug = "report"
	}
	return fmt.Sprintf("interview-report-%s-%s.md", now.Format("20060102"), textutil.Truncate(slug, slugLen))
}
