package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/futig/interview-backend/internal/entity"
)

// Simple renders a report without the model: answers grouped by dimension plus the transcript
func Simple(session *entity.Session, now time.Time) string {
	in := Build(session)

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s 访谈报告\n\n", in.Topic)
	fmt.Fprintf(&sb, "**访谈日期**: %s\n", now.Format("2006-01-02"))
	fmt.Fprintf(&sb, "**报告编号**: interview-%s\n\n", now.Format("20060102"))
	sb.WriteString("---\n\n## 1. 访谈概述\n\n")
	fmt.Fprintf(&sb, "本次访谈主题为「%s」，共收集了 %d 个问题的回答。\n\n", in.Topic, len(session.InterviewLog))

	if in.Assessment != nil {
		sb.WriteString("## 2. 评估结果\n\n")
		sb.WriteString(scoreTable(in.Assessment))
		fmt.Fprintf(&sb, "\n\n推荐等级：**%s** (%s)\n\n", in.Assessment.Recommendation.Name, in.Assessment.Recommendation.Level)
		sb.WriteString("## 3. 需求摘要\n\n")
	} else {
		sb.WriteString("## 2. 需求摘要\n\n")
	}

	for _, s := range in.Sections {
		fmt.Fprintf(&sb, "### %s\n\n", s.Name)
		if len(s.Entries) == 0 {
			sb.WriteString("*暂无数据*\n")
		}
		for _, entry := range s.Entries {
			fmt.Fprintf(&sb, "- **%s** - %s\n", entry.Answer, entry.Question)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(in.Transcript)
	return sb.String()
}

func scoreTable(a *entity.Assessment) string {
	var sb strings.Builder
	sb.WriteString("| 维度 | 得分 | 权重 | 加权得分 |\n|:---|:---:|:---:|:---:|\n")
	for _, s := range a.Scores {
		fmt.Fprintf(&sb, "| %s | %.1f | %.0f%% | %.2f |\n", s.Name, *s.Score, s.Weight*100, *s.Score*s.Weight)
	}
	fmt.Fprintf(&sb, "| **综合得分** | **%.2f** | 100%% | **%.2f** |", a.TotalScore, a.TotalScore)
	return sb.String()
}

// WithAppendix appends the verbatim transcript to a model-written body
func WithAppendix(body string, session *entity.Session) string {
	return body + Appendix(session)
}
