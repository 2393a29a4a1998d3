package interview

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/futig/interview-backend/internal/config"
	"github.com/futig/interview-backend/internal/entity"
	domain "github.com/futig/interview-backend/internal/interview"
	"github.com/futig/interview-backend/internal/pkg/logger"
	"github.com/futig/interview-backend/internal/pkg/validator"
	"github.com/futig/interview-backend/internal/prefetch"
	"github.com/futig/interview-backend/internal/repository"
	"github.com/futig/interview-backend/internal/status"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Config holds the knobs the usecase reads directly
type Config struct {
	Interview         config.InterviewConfig
	Documents         config.DocumentConfig
	MaxTokensQuestion int
	MaxTokensReport   int
	ReportTimeout     time.Duration
}

// InterviewUsecase implements the interview flow: sessions, questions, answers, documents and reports
type InterviewUsecase struct {
	cfg         Config
	sessionRepo repository.SessionRepository
	reportRepo  repository.ReportRepository
	summaryRepo repository.SummaryRepository
	scenarios   ScenarioProvider
	engine      *domain.Engine
	contexts    ContextBuilder
	prefetch    *prefetch.Cache
	status      *status.Tracker
	metrics     MetricsCollector
	validator   *validator.Validator
	// llm and vision are nil when the capability is not configured
	llm    LLMConnector
	vision VisionConnector

	refreshes singleflight.Group
	wg        sync.WaitGroup
	now       func() time.Time
}

// NewUsecase creates a new interview use case
func NewUsecase(
	cfg Config,
	sessionRepo repository.SessionRepository,
	reportRepo repository.ReportRepository,
	summaryRepo repository.SummaryRepository,
	scenarios ScenarioProvider,
	engine *domain.Engine,
	contexts ContextBuilder,
	prefetchCache *prefetch.Cache,
	statusTracker *status.Tracker,
	metrics MetricsCollector,
	validator *validator.Validator,
	llm LLMConnector,
	vision VisionConnector,
) *InterviewUsecase {
	return &InterviewUsecase{
		cfg:         cfg,
		sessionRepo: sessionRepo,
		reportRepo:  reportRepo,
		summaryRepo: summaryRepo,
		scenarios:   scenarios,
		engine:      engine,
		contexts:    contexts,
		prefetch:    prefetchCache,
		status:      statusTracker,
		metrics:     metrics,
		validator:   validator,
		llm:         llm,
		vision:      vision,
		now:         time.Now,
	}
}

// Wait blocks until every background prefetch and summary refresh has finished
func (uc *InterviewUsecase) Wait() {
	uc.wg.Wait()
}

// goBackground runs fn detached from the request. The request logger is carried over, cancellation is not.
// Failures inside fn are logged by fn itself and never reach the caller.
func (uc *InterviewUsecase) goBackground(ctx context.Context, action string, fn func(ctx context.Context)) {
	bgCtx := logger.WithAction(ctxzap.ToContext(context.Background(), ctxzap.Extract(ctx)), action)

	uc.wg.Add(1)
	go func() {
		defer uc.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				ctxzap.Error(bgCtx, "background task panicked", zap.Any("panic", r))
			}
		}()
		fn(bgCtx)
	}()
}

func toDTO(session *entity.Session) *entity.SessionDTO {
	return &entity.SessionDTO{
		Session:    session,
		ModeConfig: session.InterviewMode.Config(),
	}
}

// CreateSession starts a new interview and prefetches the opening question of the first dimension.
// Unknown modes fall back to standard and unknown scenarios to the default scenario.
func (uc *InterviewUsecase) CreateSession(ctx context.Context, req *entity.CreateSessionRequest) (*entity.SessionDTO, error) {
	if err := uc.validator.ValidateCreateSession(req); err != nil {
		return nil, err
	}

	sc := uc.scenarios.Resolve(req.ScenarioID)
	if req.ScenarioID != "" && sc.ID != req.ScenarioID {
		ctxzap.Warn(ctx, "unknown scenario, using default",
			zap.String("requested", req.ScenarioID),
			zap.String("scenario_id", sc.ID),
		)
	}

	now := uc.now().UTC()
	session := &entity.Session{
		ID:                 uuid.NewString(),
		Topic:              strings.TrimSpace(req.Topic),
		Description:        strings.TrimSpace(req.Description),
		InterviewMode:      entity.ParseInterviewMode(req.InterviewMode),
		ScenarioID:         sc.ID,
		Scenario:           sc,
		InterviewLog:       []entity.LogEntry{},
		ReferenceMaterials: []entity.ReferenceMaterial{},
		Status:             entity.SessionStatusInProgress,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	session.ResetDimensions()

	if err := uc.sessionRepo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	ctxzap.Info(ctx, "session created",
		zap.String("session_id", session.ID),
		zap.String("scenario_id", session.ScenarioID),
		zap.String("interview_mode", string(session.InterviewMode)),
	)

	if dim, ok := prefetch.FirstDimension(session); ok {
		uc.schedulePrefetch(ctx, session.ID, dim)
	}

	return toDTO(session), nil
}

func (uc *InterviewUsecase) ListSessions(ctx context.Context) ([]entity.SessionListItem, error) {
	sessions, err := uc.sessionRepo.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (uc *InterviewUsecase) GetSession(ctx context.Context, sessionID string) (*entity.SessionDTO, error) {
	session, err := uc.sessionRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return toDTO(session), nil
}

// UpdateSession changes topic, description and status only
func (uc *InterviewUsecase) UpdateSession(ctx context.Context, sessionID string, req *entity.UpdateSessionRequest) (*entity.SessionDTO, error) {
	if err := uc.validator.ValidateUpdateSession(req); err != nil {
		return nil, err
	}

	session, err := uc.sessionRepo.UpdateSession(ctx, sessionID, func(s *entity.Session) error {
		if req.Topic != nil {
			s.Topic = strings.TrimSpace(*req.Topic)
		}
		if req.Description != nil {
			s.Description = strings.TrimSpace(*req.Description)
		}
		if req.Status != nil {
			s.Status = *req.Status
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	return toDTO(session), nil
}

// DeleteSession removes the session and forgets its prefetched questions and progress
func (uc *InterviewUsecase) DeleteSession(ctx context.Context, sessionID string) error {
	if err := uc.sessionRepo.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	uc.prefetch.Invalidate(sessionID, "")
	uc.status.Clear(sessionID)

	ctxzap.Info(ctx, "session deleted", zap.String("session_id", sessionID))
	return nil
}

// requireDimension fails with a validation error when the dimension is not part of the session's scenario
func requireDimension(session *entity.Session, dim string) error {
	if !session.HasDimension(dim) {
		return fmt.Errorf("%w: %w: %q", entity.ErrValidation, entity.ErrDimensionNotFound, dim)
	}
	return nil
}
