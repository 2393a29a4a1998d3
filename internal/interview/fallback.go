package interview

import "github.com/futig/interview-backend/internal/entity"

type fallbackQuestion struct {
	question    string
	options     []string
	multiSelect bool
}

var fallbackQuestions = map[string][]fallbackQuestion{
	"customer_needs": {
		{"您希望通过这个项目解决哪些核心问题？", []string{"提升工作效率", "降低运营成本", "改善用户体验", "增强数据分析能力"}, true},
		{"主要的用户群体有哪些？", []string{"内部员工", "外部客户", "合作伙伴", "管理层"}, true},
		{"用户最期望获得的核心价值是什么？", []string{"节省时间", "减少错误", "获取洞察", "提升协作"}, false},
	},
	"business_process": {
		{"当前业务流程中需要优化的环节有哪些？", []string{"数据录入", "审批流程", "报表生成", "跨部门协作"}, true},
		{"关键业务流程涉及哪些部门？", []string{"销售部门", "技术部门", "财务部门", "运营部门"}, true},
		{"流程中最关键的决策节点是什么？", []string{"审批节点", "分配节点", "验收节点", "结算节点"}, false},
	},
	"tech_constraints": {
		{"期望的系统部署方式是？", []string{"公有云部署", "私有云部署", "混合云部署", "本地部署"}, false},
		{"需要与哪些现有系统集成？", []string{"ERP系统", "CRM系统", "OA办公系统", "财务系统"}, true},
		{"对系统安全性的要求是？", []string{"等保二级", "等保三级", "基础安全即可", "需要详细评估"}, false},
	},
	"project_constraints": {
		{"项目的预期预算范围是？", []string{"10万以内", "10-50万", "50-100万", "100万以上"}, false},
		{"期望的上线时间是？", []string{"1个月内", "1-3个月", "3-6个月", "6个月以上"}, false},
		{"项目团队的资源情况如何？", []string{"有专职团队", "兼职参与", "完全外包", "需要评估"}, false},
	},
}

// FallbackQuestion returns the next static question of a dimension.
// The dimension is reported completed once its static list is used up.
func FallbackQuestion(session *entity.Session, dim string) *entity.NextQuestionResult {
	answered := len(session.DimensionLogs(dim))
	questions := fallbackQuestions[dim]
	if answered >= len(questions) {
		return &entity.NextQuestionResult{Dimension: dim, Completed: true}
	}

	q := questions[answered]
	return &entity.NextQuestionResult{
		Dimension: dim,
		QuestionPayload: &entity.QuestionPayload{
			Question:    q.question,
			Options:     append([]string(nil), q.options...),
			MultiSelect: q.multiSelect,
			Dimension:   dim,
		},
	}
}
