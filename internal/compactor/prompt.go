package compactor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/futig/interview-backend/internal/interview"
	"github.com/futig/interview-backend/internal/pkg/textutil"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const lastQuestionLen = 100

// QuestionPrompt is a rendered question prompt plus the inputs that shaped it
type QuestionPrompt struct {
	Prompt        string
	TruncatedDocs []string
	// Decision is nil until the dimension has an answer
	Decision    *interview.Decision
	Evaluation  *interview.Evaluation
	ModelJudges bool
}

// RenderQuestionPrompt renders the prompt for the next question of dim
func (c *Compactor) RenderQuestionPrompt(ctx context.Context, session *entity.Session, dim string, opts ...BuildOption) *QuestionPrompt {
	built := c.Build(ctx, session, dim, opts...)
	out := &QuestionPrompt{TruncatedDocs: built.Truncated}

	dimLogs := session.DimensionLogs(dim)
	var last *entity.LogEntry
	if len(dimLogs) > 0 {
		last = &dimLogs[len(dimLogs)-1]
		eval, decision, _ := c.engine.ReevaluateLast(session, dim)
		out.Evaluation = &eval
		out.Decision = &decision
		out.ModelJudges = decision.DefersToModel(eval)

		ctxzap.Debug(ctx, "follow-up decision",
			zap.String("dimension", dim),
			zap.Bool("should_follow_up", decision.ShouldFollowUp),
			zap.Bool("model_judges", out.ModelJudges),
			zap.String("reason", decision.Reason),
			zap.Strings("factors", decision.Factors),
			zap.Int("total_used", decision.Budget.TotalUsed),
			zap.Int("dimension_used", decision.Budget.DimensionUsed),
		)
	}

	followUp := out.Decision != nil && out.Decision.ShouldFollowUp
	reason := ""
	if followUp {
		reason = out.Decision.Reason
	}

	d, _ := session.Scenario.Dimension(dim)
	name := d.Name
	if name == "" {
		name = dim
	}

	var sb strings.Builder
	sb.WriteString("**严格输出要求：你的回复必须是纯 JSON 对象，不要添加任何解释、markdown 代码块或其他文本。第一个字符必须是 {，最后一个字符必须是 }**\n\n")
	fmt.Fprintf(&sb, "你是一个专业的访谈师，正在进行\"%s\"的访谈。\n", session.Topic)
	sb.WriteString("你的核心职责是**深度挖掘用户的真实需求**，不满足于表面回答。\n\n")
	sb.WriteString(built.Text)
	sb.WriteString("\n\n## 当前任务\n\n")
	fmt.Fprintf(&sb, "你现在需要针对「%s」维度收集信息。\n", name)
	fmt.Fprintf(&sb, "这个维度关注：%s\n\n", d.Description)
	fmt.Fprintf(&sb, "该维度已收集了 %d 个正式问题的回答，关键方面包括：%s\n",
		session.FormalCount(dim), strings.Join(d.KeyAspects, ", "))

	if out.ModelJudges && last != nil {
		sb.WriteString(deeperEvalGuidance(last, out.Evaluation.Signals))
	}
	sb.WriteString("\n")
	if followUp && last != nil {
		sb.WriteString(followUpSection(last, reason))
	} else {
		sb.WriteString(newQuestionSection)
	}

	sb.WriteString("\n如果信息足够，请基于已收集的回答给出对当前选项的 AI 推荐，用于辅助用户决策。若无法推荐，请将 ai_recommendation 设为 null。\n\n")
	sb.WriteString(outputFormat(followUp, reason))
	if !out.ModelJudges {
		sb.WriteString("\n- **重要**：is_follow_up 的值已由系统根据预算和饱和度预先决定，请严格按照上述模板设置")
	}

	out.Prompt = sb.String()
	return out
}

func deeperEvalGuidance(last *entity.LogEntry, signals []interview.Signal) string {
	detected := "无明显问题"
	if len(signals) > 0 {
		names := make([]string, len(signals))
		for i, s := range signals {
			names[i] = string(s)
		}
		detected = strings.Join(names, ", ")
	}

	return fmt.Sprintf(`
## 回答深度评估

请先评估用户的上一个回答是否需要追问：

**上一个问题**: %s
**用户回答**: %s
**检测信号**: %s

判断标准（满足任一条即应追问）：
1. 回答只是选择了选项，没有说明具体场景或原因
2. 缺少量化指标（如时间、数量、频率等）
3. 回答比较笼统，没有针对性细节
4. 可能隐藏了更深层的需求或顾虑

如果判断需要追问，请：
- 设置 is_follow_up: true
- 针对上一个回答进行深入提问
- 问题要更具体，引导用户给出明确答案

如果判断不需要追问，请生成新问题继续访谈。
`, textutil.Truncate(last.Question, lastQuestionLen), last.Answer, detected)
}

func followUpSection(last *entity.LogEntry, reason string) string {
	return fmt.Sprintf(`## 追问模式（必须执行）

上一个用户回答需要追问。原因：%s

**上一个问题**: %s
**用户回答**: %s

追问要求：
1. 必须设置 is_follow_up: true
2. 针对上一个回答进行深入提问，不要跳到新话题
3. 追问问题要更具体、更有针对性
4. 引导用户给出具体的场景、数据、或明确的选择
5. 可以使用"您提到的XXX，能否具体说明..."这样的句式
`, reason, textutil.Truncate(last.Question, lastQuestionLen), last.Answer)
}

const newQuestionSection = `## 问题生成要求

1. 生成 1 个针对性的问题，用于收集该维度的关键信息
2. 为这个问题提供 3-4 个具体的选项
3. 选项要基于：
   - 访谈主题的行业特点
   - 参考文档中的信息（如有）
   - 联网搜索的行业知识（如有）
   - 已收集的上下文信息
4. 根据问题性质判断是单选还是多选：
   - 单选场景：互斥选项（是/否）、优先级选择、唯一选择
   - 多选场景：可并存的功能需求、多个痛点、多种用户角色
5. 如果用户的回答与参考文档内容有冲突，要在问题中指出并请求澄清
`

func outputFormat(followUp bool, reason string) string {
	isFollowUp, followUpReason := "false", "null"
	if followUp {
		isFollowUp = "true"
		encoded, _ := json.Marshal(reason)
		followUpReason = string(encoded)
	}

	return fmt.Sprintf(`## 输出格式（必须严格遵守）

你的回复必须是一个纯 JSON 对象，格式如下：

    {
        "question": "你的问题",
        "options": ["选项1", "选项2", "选项3", "选项4"],
        "multi_select": false,
        "is_follow_up": %s,
        "follow_up_reason": %s,
        "conflict_detected": false,
        "conflict_description": null,
        "ai_recommendation": {
            "recommended_options": ["选项1"],
            "summary": "一句话推荐理由",
            "reasons": [
                {"text": "理由1", "evidence": ["Q1", "Q3"]},
                {"text": "理由2", "evidence": ["Q2"]}
            ],
            "confidence": "high"
        }
    }

字段说明：
- question: 字符串，你要问的问题
- options: 字符串数组，3-4 个选项
- multi_select: 布尔值，true=可多选，false=单选
- is_follow_up: 布尔值，true=追问（针对上一回答深入），false=新问题
- follow_up_reason: 字符串或 null，追问时说明原因
- conflict_detected: 布尔值
- conflict_description: 字符串或 null
- ai_recommendation: 推荐对象或 null
  - recommended_options: 数组（单选时只放 1 个，多选时可放多个）
  - summary: 一句话推荐理由（不超过 25 字）
  - reasons: 2-3 条理由，需附证据编号（如 Q1、Q3）
  - confidence: "high" | "medium" | "low"

如果当前信息不足以做推荐，请将 ai_recommendation 设为 null。

**关键提醒：**
- 不要使用 `+"```json"+` 代码块标记
- 不要在 JSON 前后添加任何说明文字
- 确保 JSON 语法完全正确（所有字符串用双引号，布尔值用 true/false，空值用 null）
- 你的整个回复就是这个 JSON 对象，没有其他内容`, isFollowUp, followUpReason)
}
