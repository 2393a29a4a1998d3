package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/futig/interview-backend/internal/config"
	"github.com/futig/interview-backend/internal/entity"
	"github.com/futig/interview-backend/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const okMessage = `{"id":"msg_1","type":"message","role":"assistant","model":"test",` +
	`"content":[{"type":"text","text":"  你好  "}],"stop_reason":"end_turn",` +
	`"usage":{"input_tokens":3,"output_tokens":2}}`

func testConfig(url string) config.LLMConnectorConfig {
	return config.LLMConnectorConfig{
		APIKey:            "test-key",
		BaseURL:           url,
		Model:             "test-model",
		Timeout:           time.Second,
		MaxTokensDefault:  100,
		ShrinkRetryMinLen: 5000,
		ShrinkRatio:       0.7,
	}
}

func TestConnector_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, okMessage)
	}))
	defer srv.Close()

	collector := metrics.NewCollector(10)
	c := NewConnector(testConfig(srv.URL), collector, zap.NewNop())

	text, err := c.Complete(context.Background(), entity.CompletionRequest{
		Prompt:   "打个招呼",
		CallType: entity.CallTypeQuestion,
	})
	require.NoError(t, err)
	assert.Equal(t, "你好", text)

	report := collector.Report(0)
	assert.Equal(t, 1, report.Summary.TotalCalls)
	assert.Equal(t, 1, report.Summary.SuccessfulCalls)
}

func TestConnector_ErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   entity.ModelErrorKind
	}{
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`,
			kind:   entity.ModelErrorRateLimited,
		},
		{
			name:   "auth failed",
			status: http.StatusUnauthorized,
			body:   `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`,
			kind:   entity.ModelErrorAuth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := NewConnector(testConfig(srv.URL), nil, zap.NewNop())
			_, err := c.Complete(context.Background(), entity.CompletionRequest{Prompt: "hi", CallType: entity.CallTypeQuestion})

			var modelErr *entity.ModelError
			require.ErrorAs(t, err, &modelErr)
			assert.Equal(t, tt.kind, modelErr.Kind)
			assert.ErrorIs(t, err, entity.ErrServiceUnavailable)
		})
	}
}

func TestConnector_TimeoutWithShortPromptDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewConnector(testConfig(srv.URL), nil, zap.NewNop())
	_, err := c.Complete(context.Background(), entity.CompletionRequest{
		Prompt:   "短",
		Timeout:  50 * time.Millisecond,
		CallType: entity.CallTypeQuestion,
	})

	var modelErr *entity.ModelError
	require.ErrorAs(t, err, &modelErr)
	assert.Equal(t, entity.ModelErrorTimeout, modelErr.Kind)
	assert.Equal(t, int32(1), calls.Load())
}

func TestConnector_TimeoutShrinksPromptOnce(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "部分上下文已被截断") {
			<-r.Context().Done()
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, okMessage)
	}))
	defer srv.Close()

	collector := metrics.NewCollector(10)
	c := NewConnector(testConfig(srv.URL), collector, zap.NewNop())

	text, err := c.Complete(context.Background(), entity.CompletionRequest{
		Prompt:   strings.Repeat("访", 6000),
		Timeout:  100 * time.Millisecond,
		CallType: entity.CallTypeReport,
	})
	require.NoError(t, err)
	assert.Equal(t, "你好", text)
	assert.Equal(t, int32(2), calls.Load())

	report := collector.Report(0)
	assert.Equal(t, 2, report.Summary.TotalCalls)
	assert.Equal(t, 1, report.Summary.TimeoutCalls)
	assert.Equal(t, 1, report.Summary.SuccessfulCalls)
}

func TestConnector_DisableShrinkRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewConnector(testConfig(srv.URL), nil, zap.NewNop())
	_, err := c.Complete(context.Background(), entity.CompletionRequest{
		Prompt:             strings.Repeat("访", 6000),
		Timeout:            50 * time.Millisecond,
		CallType:           entity.CallTypeReport,
		DisableShrinkRetry: true,
	})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestShrinkPrompt(t *testing.T) {
	got := ShrinkPrompt(strings.Repeat("字", 100), 0.7)

	assert.True(t, strings.HasPrefix(got, strings.Repeat("字", 70)+"\n\n"))
	assert.False(t, strings.HasPrefix(got, strings.Repeat("字", 71)))
	assert.True(t, strings.HasSuffix(got, shrinkNote))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want entity.ModelErrorKind
	}{
		{context.DeadlineExceeded, entity.ModelErrorTimeout},
		{errors.New("request timed out"), entity.ModelErrorTimeout},
		{errors.New("status 429"), entity.ModelErrorRateLimited},
		{errors.New("invalid API key"), entity.ModelErrorAuth},
		{errors.New("dial tcp: connection refused"), entity.ModelErrorNetwork},
		{errors.New("overloaded"), entity.ModelErrorOther},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}

func TestMockConnector_QuestionsParseAsJSON(t *testing.T) {
	m := NewMockConnector(zap.NewNop())

	first, err := m.Complete(context.Background(), entity.CompletionRequest{CallType: entity.CallTypeQuestion})
	require.NoError(t, err)
	second, err := m.Complete(context.Background(), entity.CompletionRequest{CallType: entity.CallTypeQuestion})
	require.NoError(t, err)

	assert.Contains(t, first, `"question"`)
	assert.NotEqual(t, first, second)
}
