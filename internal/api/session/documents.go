package session

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/futig/interview-backend/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// UploadDocument handles POST /sessions/{id}/documents (multipart field "file")
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := h.sessionContext(r, "UploadDocument")

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(ctx, w, http.StatusRequestEntityTooLarge, "file too large", err)
			return
		}
		h.respondError(ctx, w, http.StatusBadRequest, "invalid form data", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "file is required", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.cfg.MaxFileSize+1))
	if err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "failed to read file", err)
		return
	}

	ctxzap.Info(ctx, "uploading document",
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size),
	)

	result, err := h.usecase.AddDocument(ctx, chi.URLParam(r, "id"), header.Filename, data)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "document uploaded",
		zap.String("filename", result.Filename),
		zap.Int("content_length", result.ContentLength),
	)
	response.JSON(w, http.StatusOK, result)
}

// DeleteDocument handles DELETE /sessions/{id}/documents/{name}
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	ctx := h.sessionContext(r, "DeleteDocument")

	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid document name",
			fmt.Errorf("%w: %v", entity.ErrInvalidParameter, err))
		return
	}

	result, err := h.usecase.DeleteDocument(ctx, chi.URLParam(r, "id"), name)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "document deleted", zap.String("filename", name))
	response.JSON(w, http.StatusOK, result)
}
