package interview

import (
	"context"
	"fmt"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

func (uc *InterviewUsecase) ThinkingStatus(sessionID string) entity.ThinkingStatus {
	return uc.status.Thinking(sessionID)
}

func (uc *InterviewUsecase) ReportStatus(sessionID string) entity.ReportStatus {
	return uc.status.Report(sessionID)
}

// Metrics summarises the last lastN model calls, all of them when lastN <= 0
func (uc *InterviewUsecase) Metrics(lastN int) entity.MetricsReport {
	return uc.metrics.Report(lastN)
}

func (uc *InterviewUsecase) ResetMetrics(ctx context.Context) {
	uc.metrics.Reset()
	ctxzap.Info(ctx, "model call metrics reset")
}

func (uc *InterviewUsecase) ListScenarios() []entity.ScenarioSummary {
	return uc.scenarios.List()
}

func (uc *InterviewUsecase) GetScenario(id string) (*entity.Scenario, error) {
	sc, err := uc.scenarios.Get(id)
	if err != nil {
		return nil, fmt.Errorf("get scenario: %w", err)
	}
	return &sc, nil
}

// MatchScenario suggests a scenario for a topic by keyword hits
func (uc *InterviewUsecase) MatchScenario(topic string) (*entity.ScenarioMatch, error) {
	if topic == "" {
		return nil, fmt.Errorf("%w: topic", entity.ErrMissingField)
	}
	match := uc.scenarios.Match(topic)
	return &match, nil
}

func (uc *InterviewUsecase) SaveScenario(ctx context.Context, sc *entity.Scenario) (*entity.Scenario, error) {
	saved, err := uc.scenarios.SaveCustom(ctx, *sc, uc.now())
	if err != nil {
		return nil, fmt.Errorf("save scenario: %w", err)
	}
	return &saved, nil
}

func (uc *InterviewUsecase) DeleteScenario(ctx context.Context, id string) error {
	if err := uc.scenarios.DeleteCustom(ctx, id); err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}
	return nil
}

func (uc *InterviewUsecase) ReloadScenarios(ctx context.Context) ([]entity.ScenarioSummary, error) {
	if err := uc.scenarios.Reload(ctx); err != nil {
		return nil, fmt.Errorf("reload scenarios: %w", err)
	}
	return uc.scenarios.List(), nil
}

func (uc *InterviewUsecase) SummaryInfo(ctx context.Context) (*entity.SummaryCacheInfo, error) {
	info, err := uc.summaryRepo.SummaryInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("summary info: %w", err)
	}
	info.Enabled = uc.cfg.Interview.SummaryCacheEnabled
	return &info, nil
}

func (uc *InterviewUsecase) ClearSummaries(ctx context.Context) (int, error) {
	n, err := uc.summaryRepo.ClearSummaries(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear summaries: %w", err)
	}
	ctxzap.Info(ctx, "document summaries cleared", zap.Int("count", n))
	return n, nil
}
