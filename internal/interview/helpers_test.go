package interview

import (
	"github.com/futig/interview-backend/internal/entity"
)

func testScenario() entity.Scenario {
	return entity.Scenario{
		ID:   entity.DefaultScenarioID,
		Name: "产品需求调研",
		Dimensions: []entity.Dimension{
			{ID: "customer_needs", Name: "客户需求", KeyAspects: []string{"核心痛点", "期望价值", "使用场景", "用户角色"}},
			{ID: "business_process", Name: "业务流程", KeyAspects: []string{"关键流程", "角色分工", "触发事件", "异常处理"}},
			{ID: "tech_constraints", Name: "技术约束", KeyAspects: []string{"部署方式", "系统集成", "性能要求", "安全合规"}},
			{ID: "project_constraints", Name: "项目约束", KeyAspects: []string{"预算范围", "时间节点", "资源限制", "优先级"}},
		},
		Report: entity.ReportConfig{Type: entity.ReportTypeStandard},
	}
}

func newTestSession(mode entity.InterviewMode) *entity.Session {
	s := &entity.Session{
		ID:            "test-session",
		Topic:         "内部审批系统",
		InterviewMode: mode,
		ScenarioID:    entity.DefaultScenarioID,
		Scenario:      testScenario(),
		Status:        entity.SessionStatusInProgress,
	}
	s.ResetDimensions()
	return s
}

func appendLog(s *entity.Session, dim, question, answer string, followUp bool, options ...string) {
	s.InterviewLog = append(s.InterviewLog, entity.LogEntry{
		Question:   question,
		Answer:     answer,
		Dimension:  dim,
		Options:    options,
		IsFollowUp: followUp,
	})
}
