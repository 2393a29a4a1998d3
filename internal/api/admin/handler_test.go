package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsecase struct {
	lastN   int
	reset   bool
	saved   *entity.Scenario
	deleted string
}

func (s *stubUsecase) ThinkingStatus(sessionID string) entity.ThinkingStatus {
	return entity.ThinkingStatus{Active: true, Stage: entity.ThinkingStageSearching, StageIndex: 1, TotalStages: 3}
}

func (s *stubUsecase) Metrics(lastN int) entity.MetricsReport {
	s.lastN = lastN
	return entity.MetricsReport{}
}

func (s *stubUsecase) ResetMetrics(context.Context) { s.reset = true }

func (s *stubUsecase) ListScenarios() []entity.ScenarioSummary {
	return []entity.ScenarioSummary{{ID: "product-requirement"}}
}

func (s *stubUsecase) GetScenario(id string) (*entity.Scenario, error) {
	if id != "product-requirement" {
		return nil, fmt.Errorf("get scenario: %w", entity.ErrScenarioNotFound)
	}
	return &entity.Scenario{ID: id, Name: "产品需求访谈"}, nil
}

func (s *stubUsecase) MatchScenario(topic string) (*entity.ScenarioMatch, error) {
	if topic == "" {
		return nil, fmt.Errorf("%w: topic", entity.ErrMissingField)
	}
	return &entity.ScenarioMatch{ScenarioID: "tech-interview", Confidence: 0.5}, nil
}

func (s *stubUsecase) SaveScenario(_ context.Context, sc *entity.Scenario) (*entity.Scenario, error) {
	if len(sc.Dimensions) == 0 {
		return nil, fmt.Errorf("save scenario: %w: no dimensions", entity.ErrInvalidScenario)
	}
	s.saved = sc
	return sc, nil
}

func (s *stubUsecase) DeleteScenario(_ context.Context, id string) error {
	s.deleted = id
	return nil
}

func (s *stubUsecase) ReloadScenarios(context.Context) ([]entity.ScenarioSummary, error) {
	return s.ListScenarios(), nil
}

func (s *stubUsecase) SummaryInfo(context.Context) (*entity.SummaryCacheInfo, error) {
	return &entity.SummaryCacheInfo{Enabled: true, Count: 2}, nil
}

func (s *stubUsecase) ClearSummaries(context.Context) (int, error) {
	return 2, nil
}

func request(t *testing.T, uc AdminUsecase, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(uc))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestThinkingStatus(t *testing.T) {
	rec := request(t, &stubUsecase{}, http.MethodGet, "/status/thinking/s-1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got entity.ThinkingStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, entity.ThinkingStageSearching, got.Stage)
	assert.Equal(t, time.Time{}, got.StartedAt)
}

func TestModelCallMetrics(t *testing.T) {
	uc := &stubUsecase{}

	rec := request(t, uc, http.MethodGet, "/metrics/model-calls?last_n=20", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, uc.lastN)

	rec = request(t, uc, http.MethodGet, "/metrics/model-calls?last_n=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = request(t, uc, http.MethodPost, "/metrics/model-calls/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, uc.reset)
}

func TestScenarioRoutes(t *testing.T) {
	uc := &stubUsecase{}

	rec := request(t, uc, http.MethodGet, "/scenarios/product-requirement", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = request(t, uc, http.MethodGet, "/scenarios/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = request(t, uc, http.MethodGet, "/scenarios/match?topic=Go%E5%90%8E%E7%AB%AF%E9%9D%A2%E8%AF%95", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tech-interview"`)

	rec = request(t, uc, http.MethodGet, "/scenarios/match", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = request(t, uc, http.MethodPost, "/scenarios", `{"id":"custom-a","name":"A","dimensions":[{"id":"d1","name":"D1"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, uc.saved)
	assert.Equal(t, "custom-a", uc.saved.ID)

	rec = request(t, uc, http.MethodPost, "/scenarios", `{"id":"custom-b"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = request(t, uc, http.MethodDelete, "/scenarios/custom-a", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "custom-a", uc.deleted)

	rec = request(t, uc, http.MethodPost, "/scenarios/reload", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSummaries(t *testing.T) {
	rec := request(t, &stubUsecase{}, http.MethodGet, "/summaries", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":2`)

	rec = request(t, &stubUsecase{}, http.MethodPost, "/summaries/clear", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "已清除 2 条摘要缓存")
}
