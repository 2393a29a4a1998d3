package interview

import (
	"context"
	"time"

	"github.com/futig/interview-backend/internal/compactor"
	"github.com/futig/interview-backend/internal/entity"
)

type LLMConnector interface {
	Complete(ctx context.Context, req entity.CompletionRequest) (string, error)
}

type VisionConnector interface {
	Describe(ctx context.Context, image []byte, filename string) string
}

// ContextBuilder renders model prompts from session state
type ContextBuilder interface {
	RenderQuestionPrompt(ctx context.Context, session *entity.Session, dim string, opts ...compactor.BuildOption) *compactor.QuestionPrompt
	WouldSearch(session *entity.Session, dim string) bool
	RefreshSummary(ctx context.Context, session *entity.Session) bool
	ProcessDocument(ctx context.Context, doc entity.ReferenceMaterial, remaining int, topic string) compactor.ProcessedDocument
}

type ScenarioProvider interface {
	Get(id string) (entity.Scenario, error)
	Resolve(id string) entity.Scenario
	List() []entity.ScenarioSummary
	Match(topic string) entity.ScenarioMatch
	Reload(ctx context.Context) error
	SaveCustom(ctx context.Context, sc entity.Scenario, now time.Time) (entity.Scenario, error)
	DeleteCustom(ctx context.Context, id string) error
}

type MetricsCollector interface {
	Report(lastN int) entity.MetricsReport
	Reset()
}
