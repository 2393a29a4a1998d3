package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/futig/interview-backend/internal/config"
	"github.com/futig/interview-backend/internal/entity"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsecase struct {
	err error

	sessionID string
	dimension string
	filename  string
	data      []byte
	docName   string
}

func (s *stubUsecase) dto(id string) *entity.SessionDTO {
	return &entity.SessionDTO{Session: &entity.Session{ID: id, Topic: "审批系统"}}
}

func (s *stubUsecase) CreateSession(_ context.Context, req *entity.CreateSessionRequest) (*entity.SessionDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.dto("s-1"), nil
}

func (s *stubUsecase) ListSessions(context.Context) ([]entity.SessionListItem, error) {
	return []entity.SessionListItem{{ID: "s-1"}}, s.err
}

func (s *stubUsecase) GetSession(_ context.Context, id string) (*entity.SessionDTO, error) {
	s.sessionID = id
	if s.err != nil {
		return nil, s.err
	}
	return s.dto(id), nil
}

func (s *stubUsecase) UpdateSession(_ context.Context, id string, _ *entity.UpdateSessionRequest) (*entity.SessionDTO, error) {
	s.sessionID = id
	return s.dto(id), s.err
}

func (s *stubUsecase) DeleteSession(_ context.Context, id string) error {
	s.sessionID = id
	return s.err
}

func (s *stubUsecase) SubmitAnswer(_ context.Context, id string, req *entity.SubmitAnswerRequest) (*entity.SessionDTO, error) {
	s.sessionID, s.dimension = id, req.Dimension
	if s.err != nil {
		return nil, s.err
	}
	return s.dto(id), nil
}

func (s *stubUsecase) NextQuestion(_ context.Context, id string, req *entity.DimensionRequest) (*entity.NextQuestionResult, error) {
	s.sessionID, s.dimension = id, req.Dimension
	if s.err != nil {
		return nil, s.err
	}
	return &entity.NextQuestionResult{
		QuestionPayload: &entity.QuestionPayload{Question: "最想解决的问题？"},
		Dimension:       "customer_needs",
	}, nil
}

func (s *stubUsecase) UndoLastAnswer(_ context.Context, id string) (*entity.SessionDTO, error) {
	s.sessionID = id
	if s.err != nil {
		return nil, s.err
	}
	return s.dto(id), nil
}

func (s *stubUsecase) SkipFollowUp(_ context.Context, id string, req *entity.DimensionRequest) (*entity.MessageResponse, error) {
	s.sessionID, s.dimension = id, req.Dimension
	return &entity.MessageResponse{Success: true}, s.err
}

func (s *stubUsecase) ForceCompleteDimension(_ context.Context, id string, req *entity.DimensionRequest) (*entity.CompleteDimensionResult, error) {
	s.sessionID, s.dimension = id, req.Dimension
	if s.err != nil {
		return nil, s.err
	}
	return &entity.CompleteDimensionResult{Dimension: req.Dimension, Coverage: 100}, nil
}

func (s *stubUsecase) AddDocument(_ context.Context, id, filename string, data []byte) (*entity.DocumentUploadResult, error) {
	s.sessionID, s.filename, s.data = id, filename, data
	if s.err != nil {
		return nil, s.err
	}
	return &entity.DocumentUploadResult{Success: true, Filename: filename, ContentLength: len([]rune(string(data)))}, nil
}

func (s *stubUsecase) DeleteDocument(_ context.Context, id, name string) (*entity.DocumentDeleteResult, error) {
	s.sessionID, s.docName = id, name
	if s.err != nil {
		return nil, s.err
	}
	return &entity.DocumentDeleteResult{Success: true, Deleted: name}, nil
}

func (s *stubUsecase) RestartInterview(_ context.Context, id string) (*entity.RestartResult, error) {
	s.sessionID = id
	if s.err != nil {
		return nil, s.err
	}
	return &entity.RestartResult{Success: true}, nil
}

var testDocumentConfig = config.DocumentConfig{
	MaxFileSize:      1024,
	MaxContentLength: 10000,
	MaxUploadSize:    4096,
}

func newTestRouter(uc SessionUsecase) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(uc, testDocumentConfig))
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) entity.ErrorResponse {
	t.Helper()
	var body entity.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateSession(t *testing.T) {
	uc := &stubUsecase{}
	h := newTestRouter(uc)

	rec := doJSON(t, h, http.MethodPost, "/sessions", `{"topic":"审批系统"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "s-1", got["session_id"])

	rec = doJSON(t, h, http.MethodPost, "/sessions", `{"topic":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", decodeError(t, rec).Message)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail bool
	}{
		{"not found", fmt.Errorf("get session: %w", entity.ErrSessionNotFound), http.StatusNotFound, true},
		{"validation", fmt.Errorf("%w: answer is empty", entity.ErrValidation), http.StatusBadRequest, true},
		{"model", &entity.ModelError{Kind: entity.ModelErrorNetwork, Err: fmt.Errorf("dial tcp")}, http.StatusServiceUnavailable, false},
		{"internal", fmt.Errorf("update session: connection reset"), http.StatusInternalServerError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(&stubUsecase{err: tt.err})

			rec := doJSON(t, h, http.MethodPost, "/sessions/s-1/answers", `{"question":"q","answer":"a","dimension":"d"}`)
			assert.Equal(t, tt.status, rec.Code)

			body := decodeError(t, rec)
			if tt.detail {
				assert.Equal(t, tt.err.Error(), body.Detail)
			} else {
				assert.Empty(t, body.Detail)
			}
		})
	}
}

func TestSessionRoutes(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		path      string
		body      string
		status    int
		dimension string
	}{
		{"get", http.MethodGet, "/sessions/s-7", "", http.StatusOK, ""},
		{"update", http.MethodPut, "/sessions/s-7", `{"topic":"新主题"}`, http.StatusOK, ""},
		{"delete", http.MethodDelete, "/sessions/s-7", "", http.StatusOK, ""},
		{"submit", http.MethodPost, "/sessions/s-7/answers", `{"dimension":"customer_needs"}`, http.StatusOK, "customer_needs"},
		{"next question with body", http.MethodPost, "/sessions/s-7/next-question", `{"dimension":"business_process"}`, http.StatusOK, "business_process"},
		{"next question without body", http.MethodPost, "/sessions/s-7/next-question", "", http.StatusOK, ""},
		{"undo", http.MethodPost, "/sessions/s-7/undo-answer", "", http.StatusOK, ""},
		{"skip", http.MethodPost, "/sessions/s-7/skip-follow-up", `{"dimension":"tech_constraints"}`, http.StatusOK, "tech_constraints"},
		{"complete", http.MethodPost, "/sessions/s-7/complete-dimension", `{"dimension":"project_constraints"}`, http.StatusOK, "project_constraints"},
		{"restart", http.MethodPost, "/sessions/s-7/restart-interview", "", http.StatusOK, ""},
		{"skip without body", http.MethodPost, "/sessions/s-7/skip-follow-up", "", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &stubUsecase{}
			rec := doJSON(t, newTestRouter(uc), tt.method, tt.path, tt.body)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "s-7", uc.sessionID)
				assert.Equal(t, tt.dimension, uc.dimension)
			}
		})
	}
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadDocument(t *testing.T) {
	uc := &stubUsecase{}
	h := newTestRouter(uc)

	body, contentType := multipartBody(t, "file", "需求.md", []byte("# 需求\n审批流程"))
	req := httptest.NewRequest(http.MethodPost, "/sessions/s-1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s-1", uc.sessionID)
	assert.Equal(t, "需求.md", uc.filename)
	assert.Equal(t, "# 需求\n审批流程", string(uc.data))
}

func TestUploadDocument_MissingFile(t *testing.T) {
	h := newTestRouter(&stubUsecase{})

	body, contentType := multipartBody(t, "attachment", "a.md", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/sessions/s-1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "file is required", decodeError(t, rec).Message)
}

func TestUploadDocument_TooLarge(t *testing.T) {
	h := newTestRouter(&stubUsecase{})

	body, contentType := multipartBody(t, "file", "big.md", bytes.Repeat([]byte("a"), int(testDocumentConfig.MaxUploadSize)+1))
	req := httptest.NewRequest(http.MethodPost, "/sessions/s-1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUploadDocument_ReadsOneByteOverLimit(t *testing.T) {
	uc := &stubUsecase{}
	h := newTestRouter(uc)

	content := bytes.Repeat([]byte("a"), int(testDocumentConfig.MaxFileSize)+100)
	body, contentType := multipartBody(t, "file", "big.md", content)
	req := httptest.NewRequest(http.MethodPost, "/sessions/s-1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, uc.data, int(testDocumentConfig.MaxFileSize)+1)
}

func TestDeleteDocument(t *testing.T) {
	uc := &stubUsecase{}
	h := newTestRouter(uc)

	rec := doJSON(t, h, http.MethodDelete, "/sessions/s-1/documents/%E9%9C%80%E6%B1%82.md", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "需求.md", uc.docName)

	h = newTestRouter(&stubUsecase{err: fmt.Errorf("delete document: %w", entity.ErrDocumentNotFound)})
	rec = doJSON(t, h, http.MethodDelete, "/sessions/s-1/documents/missing.md", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
