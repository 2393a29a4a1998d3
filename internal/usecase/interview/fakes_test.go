package interview

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/futig/interview-backend/internal/compactor"
	"github.com/futig/interview-backend/internal/config"
	"github.com/futig/interview-backend/internal/entity"
	domain "github.com/futig/interview-backend/internal/interview"
	"github.com/futig/interview-backend/internal/metrics"
	"github.com/futig/interview-backend/internal/pkg/validator"
	"github.com/futig/interview-backend/internal/prefetch"
	"github.com/futig/interview-backend/internal/repository"
	"github.com/futig/interview-backend/internal/scenario"
	"github.com/futig/interview-backend/internal/status"
	"github.com/stretchr/testify/require"
)

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*entity.Session
}

var _ repository.SessionRepository = &fakeSessionRepo{}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*entity.Session)}
}

func (r *fakeSessionRepo) CreateSession(_ context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session.Clone()
	return nil
}

func (r *fakeSessionRepo) GetSession(_ context.Context, id string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, entity.ErrSessionNotFound)
	}
	return s.Clone(), nil
}

func (r *fakeSessionRepo) ListSessions(_ context.Context) ([]entity.SessionListItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := []entity.SessionListItem{}
	for _, s := range r.sessions {
		items = append(items, entity.SessionListItem{
			ID:          s.ID,
			Topic:       s.Topic,
			Status:      s.Status,
			ScenarioID:  s.ScenarioID,
			AnswerCount: len(s.InterviewLog),
			CreatedAt:   s.CreatedAt,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (r *fakeSessionRepo) UpdateSession(_ context.Context, id string, fn func(*entity.Session) error) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, entity.ErrSessionNotFound)
	}
	next := s.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	r.sessions[id] = next.Clone()
	return next, nil
}

func (r *fakeSessionRepo) DeleteSession(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return fmt.Errorf("session %s: %w", id, entity.ErrSessionNotFound)
	}
	delete(r.sessions, id)
	return nil
}

// put stores a session as is, for tests that need a specific state
func (r *fakeSessionRepo) put(s *entity.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s.Clone()
}

func (r *fakeSessionRepo) get(t *testing.T, id string) *entity.Session {
	t.Helper()
	s, err := r.GetSession(context.Background(), id)
	require.NoError(t, err)
	return s
}

type fakeReportRepo struct {
	mu      sync.Mutex
	reports []*entity.Report
}

var _ repository.ReportRepository = &fakeReportRepo{}

func (r *fakeReportRepo) CreateReport(_ context.Context, report *entity.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *report
	r.reports = append(r.reports, &c)
	return nil
}

func (r *fakeReportRepo) GetReport(_ context.Context, id string) (*entity.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, report := range r.reports {
		if report.ID == id {
			c := *report
			return &c, nil
		}
	}
	return nil, fmt.Errorf("report %s: %w", id, entity.ErrReportNotFound)
}

func (r *fakeReportRepo) ListReports(_ context.Context, sessionID string) ([]entity.ReportSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.ReportSummary{}
	for i := len(r.reports) - 1; i >= 0; i-- {
		report := r.reports[i]
		if report.SessionID == sessionID {
			out = append(out, entity.ReportSummary{ID: report.ID, Name: report.Name, AIGenerated: report.AIGenerated, CreatedAt: report.CreatedAt})
		}
	}
	return out, nil
}

type fakeSummaryRepo struct {
	mu        sync.Mutex
	summaries map[string]string
}

var _ repository.SummaryRepository = &fakeSummaryRepo{}

func (r *fakeSummaryRepo) GetSummary(_ context.Context, hash string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summaries[hash], nil
}

func (r *fakeSummaryRepo) SaveSummary(_ context.Context, hash, summary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.summaries == nil {
		r.summaries = make(map[string]string)
	}
	r.summaries[hash] = summary
	return nil
}

func (r *fakeSummaryRepo) SummaryInfo(_ context.Context) (entity.SummaryCacheInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var size int64
	for _, s := range r.summaries {
		size += int64(len(s))
	}
	return entity.SummaryCacheInfo{Count: len(r.summaries), SizeBytes: size}, nil
}

func (r *fakeSummaryRepo) ClearSummaries(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.summaries)
	r.summaries = nil
	return n, nil
}

// fakeLLM answers by call type; unknown call types fail
type fakeLLM struct {
	mu        sync.Mutex
	responses map[entity.CallType][]string
	errs      map[entity.CallType]error
	calls     []entity.CompletionRequest
}

func newFakeLLM() *fakeLLM {
	return &fakeLLM{
		responses: make(map[entity.CallType][]string),
		errs:      make(map[entity.CallType]error),
	}
}

// on queues responses for a call type; the last one repeats
func (f *fakeLLM) on(callType entity.CallType, responses ...string) *fakeLLM {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[callType] = append(f.responses[callType], responses...)
	return f
}

func (f *fakeLLM) fail(callType entity.CallType, err error) *fakeLLM {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[callType] = err
	return f
}

func (f *fakeLLM) Complete(_ context.Context, req entity.CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)

	if err := f.errs[req.CallType]; err != nil {
		return "", err
	}
	queue := f.responses[req.CallType]
	if len(queue) == 0 {
		return "", &entity.ModelError{Kind: entity.ModelErrorOther, Err: fmt.Errorf("no response for %s", req.CallType)}
	}
	resp := queue[0]
	if len(queue) > 1 {
		f.responses[req.CallType] = queue[1:]
	}
	return resp, nil
}

func (f *fakeLLM) count(callType entity.CallType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.CallType == callType {
			n++
		}
	}
	return n
}

type fakeVision struct{}

func (fakeVision) Describe(_ context.Context, _ []byte, filename string) string {
	return "[图片: " + filename + "] 一张流程图"
}

func questionJSON(question string, followUp bool) string {
	return fmt.Sprintf(`{"question": %q, "options": ["选项A", "选项B"], "multi_select": false, "is_follow_up": %t, "follow_up_reason": null}`,
		question, followUp)
}

func testInterviewConfig() config.InterviewConfig {
	return config.InterviewConfig{
		ContextWindowSize:     5,
		SummaryThreshold:      8,
		MaxDocLength:          2000,
		MaxTotalDocs:          5000,
		SmartSummary:          true,
		SmartSummaryThreshold: 1500,
		SmartSummaryTarget:    800,
		SummaryCacheEnabled:   true,
		PrefetchEnabled:       false,
		PrefetchTTL:           time.Minute,
		StatusTTL:             time.Minute,
		MaxAnswerLength:       5000,
		MinCompletionCoverage: 50,
	}
}

type testEnv struct {
	uc       *InterviewUsecase
	sessions *fakeSessionRepo
	reports  *fakeReportRepo
	prefetch *prefetch.Cache
	status   *status.Tracker
	metrics  *metrics.Collector
}

// newTestEnv wires the usecase with in-memory repositories. llm and vision may be nil.
func newTestEnv(t *testing.T, llm LLMConnector, vision VisionConnector, mutate ...func(*Config)) *testEnv {
	t.Helper()

	cfg := Config{
		Interview: testInterviewConfig(),
		Documents: config.DocumentConfig{
			MaxFileSize:      10 << 20,
			MaxContentLength: 10000,
		},
		MaxTokensQuestion: 800,
		MaxTokensReport:   4000,
		ReportTimeout:     time.Minute,
	}
	for _, m := range mutate {
		m(&cfg)
	}

	loader, err := scenario.NewLoader(context.Background(), "")
	require.NoError(t, err)

	engine := domain.NewEngine(domain.DefaultRules())
	summaries := &fakeSummaryRepo{}
	var completer compactor.Completer
	if llm != nil {
		completer = llm
	}
	contexts := compactor.New(cfg.Interview, 500, completer, nil, summaries, engine)

	env := &testEnv{
		sessions: newFakeSessionRepo(),
		reports:  &fakeReportRepo{},
		prefetch: prefetch.NewCache(cfg.Interview.PrefetchTTL),
		status:   status.NewTracker(cfg.Interview.StatusTTL),
		metrics:  metrics.NewCollector(100),
	}
	env.uc = NewUsecase(
		cfg,
		env.sessions,
		env.reports,
		summaries,
		loader,
		engine,
		contexts,
		env.prefetch,
		env.status,
		env.metrics,
		validator.NewValidator(cfg.Interview, cfg.Documents),
		llm,
		vision,
	)
	t.Cleanup(env.uc.Wait)
	return env
}

// createSession creates a session through the usecase and returns its id
func (e *testEnv) createSession(t *testing.T, mode entity.InterviewMode, scenarioID string) string {
	t.Helper()
	dto, err := e.uc.CreateSession(context.Background(), &entity.CreateSessionRequest{
		Topic:         "内部审批系统",
		InterviewMode: string(mode),
		ScenarioID:    scenarioID,
	})
	require.NoError(t, err)
	return dto.ID
}

func (e *testEnv) answer(t *testing.T, sessionID, dim, question, answer string, followUp bool) *entity.SessionDTO {
	t.Helper()
	dto, err := e.uc.SubmitAnswer(context.Background(), sessionID, &entity.SubmitAnswerRequest{
		Question:   question,
		Answer:     answer,
		Dimension:  dim,
		IsFollowUp: followUp,
	})
	require.NoError(t, err)
	return dto
}
