package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/futig/interview-backend/internal/config"
	"github.com/futig/interview-backend/internal/entity"
	"github.com/futig/interview-backend/internal/pkg/logger"
	"github.com/futig/interview-backend/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase SessionUsecase
	cfg     config.DocumentConfig
}

func NewHandler(usecase SessionUsecase, cfg config.DocumentConfig) *Handler {
	return &Handler{
		usecase: usecase,
		cfg:     cfg,
	}
}

// CreateSession handles POST /sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateSession")

	var req entity.CreateSessionRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ctxzap.Info(ctx, "creating session",
		zap.String("topic", req.Topic),
		zap.String("interview_mode", req.InterviewMode),
		zap.String("scenario_id", req.ScenarioID),
	)

	session, err := h.usecase.CreateSession(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "session created", zap.String("session_id", session.ID))
	response.JSON(w, http.StatusCreated, session)
}

// ListSessions handles GET /sessions
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListSessions")

	sessions, err := h.usecase.ListSessions(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Debug(ctx, "sessions listed", zap.Int("count", len(sessions)))
	response.JSON(w, http.StatusOK, sessions)
}

// GetSession handles GET /sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx := h.sessionContext(r, "GetSession")

	session, err := h.usecase.GetSession(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.JSON(w, http.StatusOK, session)
}

// UpdateSession handles PUT /sessions/{id}
func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	ctx := h.sessionContext(r, "UpdateSession")

	var req entity.UpdateSessionRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	session, err := h.usecase.UpdateSession(ctx, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "session updated")
	response.JSON(w, http.StatusOK, session)
}

// DeleteSession handles DELETE /sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := h.sessionContext(r, "DeleteSession")

	if err := h.usecase.DeleteSession(ctx, chi.URLParam(r, "id")); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "session deleted")
	response.JSON(w, http.StatusOK, entity.MessageResponse{Success: true, Message: "会话已删除"})
}

// SubmitAnswer handles POST /sessions/{id}/answers
func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := h.sessionContext(r, "SubmitAnswer")

	var req entity.SubmitAnswerRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	session, err := h.usecase.SubmitAnswer(ctx, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.JSON(w, http.StatusOK, session)
}

// NextQuestion handles POST /sessions/{id}/next-question. An empty body asks for the first dimension.
func (h *Handler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := h.sessionContext(r, "NextQuestion")

	var req entity.DimensionRequest
	if err := decodeJSON(r, &req, true); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.usecase.NextQuestion(ctx, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "next question served",
		zap.String("dimension", result.Dimension),
		zap.Bool("completed", result.Completed),
	)
	response.JSON(w, http.StatusOK, result)
}

// UndoAnswer handles POST /sessions/{id}/undo-answer
func (h *Handler) UndoAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := h.sessionContext(r, "UndoAnswer")

	session, err := h.usecase.UndoLastAnswer(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.JSON(w, http.StatusOK, session)
}

// SkipFollowUp handles POST /sessions/{id}/skip-follow-up
func (h *Handler) SkipFollowUp(w http.ResponseWriter, r *http.Request) {
	ctx := h.sessionContext(r, "SkipFollowUp")

	var req entity.DimensionRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.usecase.SkipFollowUp(ctx, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// CompleteDimension handles POST /sessions/{id}/complete-dimension
func (h *Handler) CompleteDimension(w http.ResponseWriter, r *http.Request) {
	ctx := h.sessionContext(r, "CompleteDimension")

	var req entity.DimensionRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.usecase.ForceCompleteDimension(ctx, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// RestartInterview handles POST /sessions/{id}/restart-interview
func (h *Handler) RestartInterview(w http.ResponseWriter, r *http.Request) {
	ctx := h.sessionContext(r, "RestartInterview")

	result, err := h.usecase.RestartInterview(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}

func (h *Handler) sessionContext(r *http.Request, action string) context.Context {
	return logger.AddFields(r.Context(),
		zap.String("session_id", chi.URLParam(r, "id")),
		zap.String("action", action),
	)
}

// decodeJSON reads the request body into v. With optional set an empty body is accepted.
func decodeJSON(r *http.Request, v any, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Helper methods
func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	detail := ""
	if err != nil {
		ctxzap.Warn(ctx, message, zap.Error(err))
		if status < http.StatusInternalServerError {
			detail = err.Error()
		}
	} else {
		ctxzap.Warn(ctx, message)
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
