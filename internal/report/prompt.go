package report

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/futig/interview-backend/internal/compactor"
	"github.com/futig/interview-backend/internal/entity"
)

// DocumentProcessor shortens reference materials for the report prompt
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, doc entity.ReferenceMaterial, remaining int, topic string) compactor.ProcessedDocument
}

// Prompt renders the report prompt for the session's report type
func Prompt(ctx context.Context, session *entity.Session, docs DocumentProcessor) string {
	in := Build(session)
	if in.Assessment != nil {
		return assessmentPrompt(session, in)
	}
	return standardPrompt(ctx, session, in, docs)
}

func standardPrompt(ctx context.Context, session *entity.Session, in Input, docs DocumentProcessor) string {
	var sb strings.Builder
	sb.WriteString("你是一个专业的需求分析师，需要基于以下访谈记录生成一份专业的访谈报告。\n\n")
	fmt.Fprintf(&sb, "## 访谈主题\n%s\n", in.Topic)
	if in.Description != "" {
		fmt.Fprintf(&sb, "\n## 主题描述\n%s\n", in.Description)
	}

	sb.WriteString("\n## 参考资料\n")
	if len(session.ReferenceMaterials) == 0 {
		sb.WriteString("无参考资料\n")
	} else {
		sb.WriteString("以下是用户提供的参考资料，请在生成报告时参考这些内容：\n\n")
		for _, doc := range session.ReferenceMaterials {
			writeDocument(ctx, &sb, doc, in.Topic, docs)
		}
	}

	sb.WriteString("\n## 访谈记录\n")
	for _, s := range in.Sections {
		fmt.Fprintf(&sb, "\n### %s\n", s.Name)
		if len(s.Entries) == 0 {
			sb.WriteString("*该维度暂无收集数据*\n")
			continue
		}
		for _, entry := range s.Entries {
			fmt.Fprintf(&sb, "**Q**: %s\n**A**: %s\n\n", entry.Question, entry.Answer)
		}
	}

	sb.WriteString(standardRequirements)
	return sb.String()
}

func writeDocument(ctx context.Context, sb *strings.Builder, doc entity.ReferenceMaterial, topic string, docs DocumentProcessor) {
	marker := ""
	if doc.Source == entity.DocumentSourceAuto {
		marker = "🔄 "
	}
	fmt.Fprintf(sb, "### %s%s\n", marker, doc.Name)

	if doc.Content == "" {
		sb.WriteString("*[文档内容为空]*\n\n")
		return
	}

	processed := docs.ProcessDocument(ctx, doc, math.MaxInt, topic)
	sb.WriteString(processed.Content)
	sb.WriteString("\n")
	switch {
	case processed.Summarized:
		fmt.Fprintf(sb, "*[原文档 %d 字符，已通过AI生成摘要保留关键信息]*\n\n", processed.Original)
	case processed.Shortened:
		fmt.Fprintf(sb, "*[文档内容过长，已截取前 %d 字符]*\n\n", processed.Used)
	default:
		sb.WriteString("\n")
	}
}

const standardRequirements = `
## 报告要求

请生成一份专业的访谈报告，包含以下章节：

1. **访谈概述** - 基本信息、访谈背景
2. **需求摘要** - 核心需求列表、优先级矩阵
3. **详细需求分析** - 按访谈维度逐一分析（痛点、期望、场景、角色、流程、约束）
4. **可视化分析** - 使用 Mermaid 图表展示关键信息（优先级象限图、业务流程图、需求分布饼图）
5. **方案建议** - 基于需求的可行建议
6. **风险评估** - 潜在风险和应对策略
7. **下一步行动** - 具体的行动项

**注意**：不需要包含"附录"章节，完整的访谈记录会在报告生成后自动追加。

## Mermaid 图表规范
- quadrantChart 的 title、坐标轴和象限标签使用英文，并在图表下方添加中文图例说明
- flowchart、pie 等图表使用中文标签，节点ID使用英文字母
- 带标签的连接线格式为 ` + "`A -->|标签| B`" + `
- 每个 subgraph 必须有对应的 end 关闭，最多嵌套2层
- 节点标签中不要使用半角冒号、半角引号、半角括号和 HTML 标签

## 重要提醒
- 所有内容必须严格基于访谈记录，不得编造
- 使用 Markdown 格式，Mermaid 代码块使用 ` + "```mermaid" + ` 标记
- 优先级矩阵同时包含象限图和 Markdown 表格
- 报告要专业、结构清晰、可操作

请生成完整的报告：`

func assessmentPrompt(session *entity.Session, in Input) string {
	a := in.Assessment
	rec := a.Recommendation

	var qa strings.Builder
	for _, s := range a.Scores {
		fmt.Fprintf(&qa, "\n### %s（得分: %.1f/5.0）\n", s.Name, *s.Score)
		for _, entry := range session.DimensionLogs(s.Dimension) {
			fmt.Fprintf(&qa, "**Q**: %s\n**A**: %s\n", entry.Question, entry.Answer)
			if entry.Score != nil {
				fmt.Fprintf(&qa, "*单题评分: %.1f*\n", *entry.Score)
			}
			qa.WriteString("\n")
		}
	}

	names := make([]string, len(a.Scores))
	scores := make([]string, len(a.Scores))
	for i, s := range a.Scores {
		names[i] = fmt.Sprintf("%q", s.Name)
		scores[i] = fmt.Sprintf("%g", *s.Score)
	}

	var sb strings.Builder
	sb.WriteString("你是一位资深的面试官和人才评估专家，需要基于以下访谈记录生成一份专业的面试评估报告。\n\n")
	fmt.Fprintf(&sb, "## 评估主题\n%s\n", in.Topic)
	if in.Description != "" {
		fmt.Fprintf(&sb, "\n## 背景说明\n%s\n", in.Description)
	}
	fmt.Fprintf(&sb, "\n## 各维度得分\n\n%s\n\n## 访谈记录与评分\n%s", scoreTable(a), qa.String())

	fmt.Fprintf(&sb, `
## 报告要求

请生成一份专业的面试评估报告，包含以下章节：

### 1. 候选人概览
- 评估主题
- 评估时间
- 综合得分：**%.2f/5.0**
- 推荐等级：**%s** (%s)

### 2. 能力评估图
使用 Mermaid 柱状图展示各维度得分：

`+"```mermaid"+`
xychart-beta
    title "能力评估"
    x-axis [%s]
    y-axis "得分" 0 --> 5
    bar [%s]
`+"```"+`

### 3. 各维度详细分析
对每个评估维度说明得分和表现、具体优势、不足或待提升点，并引用访谈内容作为关键证据

### 4. 核心优势
总结候选人的 2-3 个核心优势，用具体事例支撑

### 5. 待提升领域
指出 1-2 个需要提升的方面，给出具体建议

### 6. 推荐意见
基于综合评分 **%.2f** 给出：
- 推荐等级：**%s**
- 等级说明：%s
- 录用建议（详细说明录用/不录用的理由，以及如果录用的注意事项）

### 7. 后续建议
- 如需进一步评估的问题
- 入职后的培养建议（如果推荐录用）

## 重要提醒
- 所有分析必须严格基于访谈记录中的实际内容
- 评分已由 AI 在访谈过程中逐题打分，请基于这些评分进行分析
- 客观公正，既要指出优势也要指出不足
- 使用 Markdown 格式

请生成完整的评估报告：`,
		a.TotalScore, rec.Name, rec.Level,
		strings.Join(names, ", "), strings.Join(scores, ", "),
		a.TotalScore, rec.Name, rec.Description,
	)
	return sb.String()
}
