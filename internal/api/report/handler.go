package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/futig/interview-backend/internal/pkg/logger"
	"github.com/futig/interview-backend/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase      ReportUsecase
	callbackConn CallbackConnector
	formatters   FormatterFactory
}

func NewHandler(usecase ReportUsecase, callbackConn CallbackConnector, formatters FormatterFactory) *Handler {
	return &Handler{
		usecase:      usecase,
		callbackConn: callbackConn,
		formatters:   formatters,
	}
}

// GenerateReport handles POST /sessions/{id}/generate-report.
// With a callback_url the report is written in the background and the result is delivered by callback.
func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "GenerateReport"),
	)

	requestID := r.Header.Get("X-Request-ID")

	var req entity.GenerateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.CallbackURL == "" {
		ctxzap.Info(ctx, "generating report")

		result, err := h.usecase.GenerateReport(ctx, sessionID)
		if err != nil {
			h.handleUsecaseError(ctx, w, err)
			return
		}

		ctxzap.Info(ctx, "report generated",
			zap.String("report_id", result.ID),
			zap.Bool("ai_generated", result.AIGenerated),
		)
		response.JSON(w, http.StatusOK, result)
		return
	}

	if err := h.usecase.QueueReport(ctx, sessionID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "report generation queued", zap.String("callback_url", req.CallbackURL))
	response.Accepted(w, "report generation is being processed")

	go func() {
		bgCtx := logger.AddFields(ctxzap.ToContext(context.Background(), ctxzap.Extract(ctx)),
			zap.String("request_id", requestID),
			zap.String("action", "GenerateReport-async"),
		)

		result, err := h.usecase.GenerateReport(bgCtx, sessionID)
		if err != nil {
			ctxzap.Error(bgCtx, "failed to generate report", zap.Error(err))
			h.callbackConn.SendError(bgCtx, req.CallbackURL, requestID, "failed to generate report", map[string]any{
				"session_id": sessionID,
				"error":      err.Error(),
			})
			return
		}

		ctxzap.Info(bgCtx, "report generated", zap.String("report_id", result.ID))

		h.callbackConn.SendReportReady(bgCtx, req.CallbackURL, requestID, &entity.CallbackReportData{
			SessionID:   sessionID,
			ReportID:    result.ID,
			Name:        result.Name,
			AIGenerated: result.AIGenerated,
		})
	}()
}

// ListReports handles GET /sessions/{id}/reports
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "ListReports"),
	)

	reports, err := h.usecase.ListReports(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.JSON(w, http.StatusOK, reports)
}

// GetReport handles GET /reports/{report_id}. Without a format the report is returned as JSON,
// otherwise it is rendered and sent as an attachment.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "report_id")
	ctx := logger.AddFields(r.Context(),
		zap.String("report_id", reportID),
		zap.String("action", "GetReport"),
	)

	format := entity.ResultFormat(strings.ToLower(r.URL.Query().Get("format")))
	if format != "" && !format.IsValid() {
		h.respondError(ctx, w, http.StatusBadRequest, "unsupported format",
			fmt.Errorf("%w: format %q", entity.ErrInvalidParameter, format))
		return
	}

	result, err := h.usecase.GetReport(ctx, reportID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	if format == "" {
		response.JSON(w, http.StatusOK, result)
		return
	}

	fmtr, err := h.formatters.Create(format)
	if err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "unsupported format", err)
		return
	}

	title := strings.TrimSuffix(result.Name, filepath.Ext(result.Name))
	data, err := fmtr.Format(title, result.Content)
	if err != nil {
		ctxzap.Error(ctx, "failed to render report", zap.String("format", string(format)), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to render report", "")
		return
	}

	ctxzap.Debug(ctx, "report rendered",
		zap.String("format", string(format)),
		zap.Int("bytes", len(data)),
	)

	w.Header().Set("Content-Type", fmtr.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": title + fmtr.FileExtension(),
	}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		ctxzap.Warn(ctx, "failed to write report", zap.Error(err))
	}
}

// ReportStatus handles GET /status/report-generation/{id}
func (h *Handler) ReportStatus(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.usecase.ReportStatus(chi.URLParam(r, "id")))
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
