package admin

import (
	"context"

	"github.com/futig/interview-backend/internal/entity"
)

type AdminUsecase interface {
	ThinkingStatus(sessionID string) entity.ThinkingStatus
	Metrics(lastN int) entity.MetricsReport
	ResetMetrics(ctx context.Context)

	ListScenarios() []entity.ScenarioSummary
	GetScenario(id string) (*entity.Scenario, error)
	MatchScenario(topic string) (*entity.ScenarioMatch, error)
	SaveScenario(ctx context.Context, sc *entity.Scenario) (*entity.Scenario, error)
	DeleteScenario(ctx context.Context, id string) error
	ReloadScenarios(ctx context.Context) ([]entity.ScenarioSummary, error)

	SummaryInfo(ctx context.Context) (*entity.SummaryCacheInfo, error)
	ClearSummaries(ctx context.Context) (int, error)
}
