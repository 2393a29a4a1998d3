package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/futig/interview-backend/internal/pkg/logger"
	"github.com/futig/interview-backend/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase AdminUsecase
}

func NewHandler(usecase AdminUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// ThinkingStatus handles GET /status/thinking/{id}
func (h *Handler) ThinkingStatus(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.usecase.ThinkingStatus(chi.URLParam(r, "id")))
}

// ModelCallMetrics handles GET /metrics/model-calls?last_n=
func (h *Handler) ModelCallMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ModelCallMetrics")

	lastN := 0
	if raw := r.URL.Query().Get("last_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.respondError(ctx, w, http.StatusBadRequest, "invalid last_n",
				fmt.Errorf("%w: last_n %q", entity.ErrInvalidParameter, raw))
			return
		}
		lastN = n
	}

	response.JSON(w, http.StatusOK, h.usecase.Metrics(lastN))
}

// ResetMetrics handles POST /metrics/model-calls/reset
func (h *Handler) ResetMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ResetMetrics")

	h.usecase.ResetMetrics(ctx)
	response.JSON(w, http.StatusOK, entity.MessageResponse{Success: true, Message: "指标已重置"})
}

// ListScenarios handles GET /scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.usecase.ListScenarios())
}

// GetScenario handles GET /scenarios/{id}
func (h *Handler) GetScenario(w http.ResponseWriter, r *http.Request) {
	ctx := h.scenarioContext(r, "GetScenario")

	sc, err := h.usecase.GetScenario(chi.URLParam(r, "id"))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.JSON(w, http.StatusOK, sc)
}

// MatchScenario handles GET /scenarios/match?topic=
func (h *Handler) MatchScenario(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "MatchScenario")

	match, err := h.usecase.MatchScenario(r.URL.Query().Get("topic"))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Debug(ctx, "scenario matched",
		zap.String("scenario_id", match.ScenarioID),
		zap.Float64("confidence", match.Confidence),
	)
	response.JSON(w, http.StatusOK, match)
}

// SaveScenario handles POST /scenarios (custom scenarios only)
func (h *Handler) SaveScenario(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SaveScenario")

	var sc entity.Scenario
	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	saved, err := h.usecase.SaveScenario(ctx, &sc)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "scenario saved", zap.String("scenario_id", saved.ID))
	response.JSON(w, http.StatusCreated, saved)
}

// DeleteScenario handles DELETE /scenarios/{id}
func (h *Handler) DeleteScenario(w http.ResponseWriter, r *http.Request) {
	ctx := h.scenarioContext(r, "DeleteScenario")

	if err := h.usecase.DeleteScenario(ctx, chi.URLParam(r, "id")); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "scenario deleted")
	response.JSON(w, http.StatusOK, entity.MessageResponse{Success: true, Message: "场景已删除"})
}

// ReloadScenarios handles POST /scenarios/reload
func (h *Handler) ReloadScenarios(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ReloadScenarios")

	scenarios, err := h.usecase.ReloadScenarios(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "scenarios reloaded", zap.Int("count", len(scenarios)))
	response.JSON(w, http.StatusOK, scenarios)
}

// SummaryInfo handles GET /summaries
func (h *Handler) SummaryInfo(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SummaryInfo")

	info, err := h.usecase.SummaryInfo(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.JSON(w, http.StatusOK, info)
}

// ClearSummaries handles POST /summaries/clear
func (h *Handler) ClearSummaries(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ClearSummaries")

	n, err := h.usecase.ClearSummaries(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.JSON(w, http.StatusOK, entity.MessageResponse{
		Success: true,
		Message: fmt.Sprintf("已清除 %d 条摘要缓存", n),
	})
}

func (h *Handler) scenarioContext(r *http.Request, action string) context.Context {
	return logger.AddFields(r.Context(),
		zap.String("scenario_id", chi.URLParam(r, "id")),
		zap.String("action", action),
	)
}

// Helper methods
func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	detail := ""
	if err != nil {
		ctxzap.Warn(ctx, message, zap.Error(err))
		detail = err.Error()
	}
	response.Error(w, status, message, detail)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	status, message := response.Classify(err)
	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, zap.Error(err))
		response.Error(w, status, message, "")
		return
	}
	h.respondError(ctx, w, status, message, err)
}
