package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/futig/interview-backend/internal/entity"
)

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Can't change response at this point
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// Error writes an entity.ErrorResponse with the status text as error code
func Error(w http.ResponseWriter, status int, message, detail string) {
	JSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Detail:  detail,
	})
}

// Accepted writes the 202 body used by asynchronous operations
func Accepted(w http.ResponseWriter, message string) {
	JSON(w, http.StatusAccepted, map[string]string{
		"status":  "accepted",
		"message": message,
	})
}

// Classify maps a usecase error to an HTTP status and a client-facing message
func Classify(err error) (int, string) {
	var modelErr *entity.ModelError
	switch {
	case errors.Is(err, entity.ErrSessionNotFound),
		errors.Is(err, entity.ErrReportNotFound),
		errors.Is(err, entity.ErrScenarioNotFound),
		errors.Is(err, entity.ErrDocumentNotFound):
		return http.StatusNotFound, "resource not found"
	case errors.Is(err, entity.ErrPreconditionFailed):
		return http.StatusPreconditionFailed, "precondition failed"
	case errors.Is(err, entity.ErrNothingToUndo):
		return http.StatusConflict, "nothing to undo"
	case errors.Is(err, entity.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "file too large"
	case errors.Is(err, entity.ErrValidation),
		errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrInvalidParameter),
		errors.Is(err, entity.ErrInvalidFormat),
		errors.Is(err, entity.ErrInvalidExtension),
		errors.Is(err, entity.ErrEmptyFile),
		errors.Is(err, entity.ErrInvalidSessionStatus),
		errors.Is(err, entity.ErrInvalidScenario),
		errors.Is(err, entity.ErrNoAnswers),
		errors.Is(err, entity.ErrDimensionNotFound):
		return http.StatusBadRequest, "invalid request"
	case errors.As(err, &modelErr):
		return http.StatusServiceUnavailable, modelErr.Detail()
	case errors.Is(err, entity.ErrParse):
		return http.StatusServiceUnavailable, "AI 响应解析失败，请重试"
	case errors.Is(err, entity.ErrDuplicateQuestion):
		return http.StatusServiceUnavailable, "AI 生成了重复的问题，请重试"
	case errors.Is(err, entity.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, "AI 服务未启用，请检查 API Key 配置"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
