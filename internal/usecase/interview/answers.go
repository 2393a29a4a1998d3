package interview

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/interview-backend/internal/entity"
	domain "github.com/futig/interview-backend/internal/interview"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	scoreMaxTokens = 10
	scoreTimeout   = 15 * time.Second
	// formal answers are recorded as dimension items with this priority
	defaultItemPriority = "中"
)

// SubmitAnswer records an answer, updates coverage and, for assessment scenarios, the dimension score
func (uc *InterviewUsecase) SubmitAnswer(ctx context.Context, sessionID string, req *entity.SubmitAnswerRequest) (*entity.SessionDTO, error) {
	if err := uc.validator.ValidateSubmitAnswer(req); err != nil {
		return nil, err
	}

	current, err := uc.sessionRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if err := requireDimension(current, req.Dimension); err != nil {
		return nil, err
	}

	eval := uc.engine.Evaluator().Evaluate(domain.AnswerInput{
		Question:   req.Question,
		Answer:     req.Answer,
		Dimension:  req.Dimension,
		Options:    req.Options,
		IsFollowUp: req.IsFollowUp,
	})

	// scoring calls the model, so it runs before the row is locked
	var score *float64
	if current.Scenario.IsAssessment() {
		score = uc.scoreAnswer(ctx, current, req.Dimension, req.Question, req.Answer)
	}

	session, err := uc.sessionRepo.UpdateSession(ctx, sessionID, func(s *entity.Session) error {
		if err := requireDimension(s, req.Dimension); err != nil {
			return err
		}
		if req.IsFollowUp {
			if budget := uc.engine.Tracker().Budget(s, req.Dimension); !budget.CanFollowUp {
				return fmt.Errorf("%w: %s (%s)", entity.ErrPreconditionFailed,
					budget.ExhaustedReason.Text(), budget.ExhaustedReason)
			}
		}
		recordAnswer(s, req, eval, score, uc.now().UTC())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("submit answer: %w", err)
	}

	ctxzap.Info(ctx, "answer recorded",
		zap.String("dimension", req.Dimension),
		zap.Bool("is_follow_up", req.IsFollowUp),
		zap.Bool("needs_follow_up", eval.NeedsFollowUp),
		zap.Int("coverage", session.Dimension(req.Dimension).Coverage),
	)

	// a cached question for this dimension was computed before the answer
	uc.prefetch.Invalidate(sessionID, req.Dimension)
	if !req.IsFollowUp {
		uc.triggerPrefetch(ctx, session, req.Dimension)
	}
	uc.scheduleSummaryRefresh(ctx, sessionID)

	return toDTO(session), nil
}

func recordAnswer(s *entity.Session, req *entity.SubmitAnswerRequest, eval domain.Evaluation, score *float64, now time.Time) {
	options := req.Options
	if options == nil {
		options = []string{}
	}
	signals := make([]string, 0, len(eval.Signals))
	for _, sig := range eval.Signals {
		signals = append(signals, string(sig))
	}

	s.InterviewLog = append(s.InterviewLog, entity.LogEntry{
		Timestamp:       now,
		Question:        req.Question,
		Answer:          req.Answer,
		Dimension:       req.Dimension,
		Options:         options,
		IsFollowUp:      req.IsFollowUp,
		NeedsFollowUp:   eval.NeedsFollowUp,
		FollowUpSignals: signals,
		Score:           score,
	})

	state := s.Dimension(req.Dimension)
	if !req.IsFollowUp {
		state.Items = append(state.Items, entity.DimensionItem{
			Name:        req.Answer,
			Description: req.Question,
			Priority:    defaultItemPriority,
		})
	}

	// coverage never drops on a new answer, even after a manual completion
	required := s.InterviewMode.Config().FormalQuestionsPerDim
	state.Coverage = max(state.Coverage, domain.Coverage(s.FormalCount(req.Dimension), required))

	if score != nil {
		state.Score = domain.DimensionScore(s, req.Dimension)
	}
}

// scoreAnswer asks the model for a 1-5 score. Failures leave the answer unscored.
func (uc *InterviewUsecase) scoreAnswer(ctx context.Context, session *entity.Session, dimID, question, answer string) *float64 {
	if uc.llm == nil {
		return nil
	}
	dim, ok := session.Scenario.Dimension(dimID)
	if !ok {
		return nil
	}

	raw, err := uc.llm.Complete(ctx, entity.CompletionRequest{
		Prompt:             domain.ScorePrompt(dim, question, answer),
		MaxTokens:          scoreMaxTokens,
		Timeout:            scoreTimeout,
		CallType:           entity.CallTypeAssessmentScore,
		DisableShrinkRetry: true,
	})
	if err != nil {
		ctxzap.Warn(ctx, "answer scoring failed", zap.String("dimension", dimID), zap.Error(err))
		return nil
	}

	score, ok := domain.ParseScore(raw)
	if !ok {
		ctxzap.Warn(ctx, "unparseable answer score", zap.String("dimension", dimID), zap.String("response", raw))
		return nil
	}
	return &score
}

// UndoLastAnswer removes the most recent log entry and rolls back what it contributed
func (uc *InterviewUsecase) UndoLastAnswer(ctx context.Context, sessionID string) (*entity.SessionDTO, error) {
	var undone entity.LogEntry
	session, err := uc.sessionRepo.UpdateSession(ctx, sessionID, func(s *entity.Session) error {
		n := len(s.InterviewLog)
		if n == 0 {
			return entity.ErrNothingToUndo
		}
		undone = s.InterviewLog[n-1]
		s.InterviewLog = s.InterviewLog[:n-1]

		if s.HasDimension(undone.Dimension) {
			state := s.Dimension(undone.Dimension)
			if !undone.IsFollowUp && len(state.Items) > 0 {
				state.Items = state.Items[:len(state.Items)-1]
			}
			required := s.InterviewMode.Config().FormalQuestionsPerDim
			state.Coverage = min(state.Coverage, domain.Coverage(s.FormalCount(undone.Dimension), required))
			if s.Scenario.IsAssessment() {
				state.Score = domain.DimensionScore(s, undone.Dimension)
			}
		}

		if s.ContextSummary != nil && s.ContextSummary.LogCount > len(s.InterviewLog) {
			s.ContextSummary = nil
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("undo answer: %w", err)
	}

	uc.prefetch.Invalidate(sessionID, undone.Dimension)

	ctxzap.Info(ctx, "answer undone",
		zap.String("dimension", undone.Dimension),
		zap.Bool("was_follow_up", undone.IsFollowUp),
	)
	return toDTO(session), nil
}

// SkipFollowUp marks the last formal answer of the dimension as not needing a follow-up
func (uc *InterviewUsecase) SkipFollowUp(ctx context.Context, sessionID string, req *entity.DimensionRequest) (*entity.MessageResponse, error) {
	if err := uc.validator.ValidateDimension(req); err != nil {
		return nil, err
	}

	_, err := uc.sessionRepo.UpdateSession(ctx, sessionID, func(s *entity.Session) error {
		if err := requireDimension(s, req.Dimension); err != nil {
			return err
		}
		idx := s.LastFormalIndex(req.Dimension)
		if idx < 0 {
			return fmt.Errorf("%w: no formal answer to skip in %s", entity.ErrPreconditionFailed, req.Dimension)
		}
		s.InterviewLog[idx].NeedsFollowUp = false
		s.InterviewLog[idx].UserSkipFollowUp = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("skip follow-up: %w", err)
	}

	uc.prefetch.Invalidate(sessionID, req.Dimension)

	ctxzap.Info(ctx, "follow-up skipped", zap.String("dimension", req.Dimension))
	return &entity.MessageResponse{Success: true, Message: "已跳过追问"}, nil
}

// ForceCompleteDimension closes a dimension early once it is at least half covered
func (uc *InterviewUsecase) ForceCompleteDimension(
	ctx context.Context, sessionID string, req *entity.DimensionRequest,
) (*entity.CompleteDimensionResult, error) {
	if err := uc.validator.ValidateDimension(req); err != nil {
		return nil, err
	}

	minCoverage := uc.cfg.Interview.MinCompletionCoverage
	session, err := uc.sessionRepo.UpdateSession(ctx, sessionID, func(s *entity.Session) error {
		if err := requireDimension(s, req.Dimension); err != nil {
			return err
		}
		state := s.Dimension(req.Dimension)
		if state.Coverage < minCoverage {
			return fmt.Errorf("%w: 当前维度覆盖度不足%d%%，建议至少回答一半问题后再跳过", entity.ErrPreconditionFailed, minCoverage)
		}

		for i := range s.InterviewLog {
			entry := &s.InterviewLog[i]
			if entry.Dimension == req.Dimension && !entry.IsFollowUp {
				entry.NeedsFollowUp = false
			}
		}
		state.Coverage = 100
		state.UserCompleted = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("complete dimension: %w", err)
	}

	uc.prefetch.Invalidate(sessionID, req.Dimension)

	ctxzap.Info(ctx, "dimension completed by user", zap.String("dimension", req.Dimension))
	return &entity.CompleteDimensionResult{
		Dimension: req.Dimension,
		Message:   session.Scenario.DimensionName(req.Dimension) + "维度已完成",
		Coverage:  100,
	}, nil
}

// scheduleSummaryRefresh regenerates the history digest in the background.
// Concurrent refreshes of one session collapse into a single model call.
func (uc *InterviewUsecase) scheduleSummaryRefresh(ctx context.Context, sessionID string) {
	uc.goBackground(ctx, "refresh_summary", func(ctx context.Context) {
		ctx = ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(zap.String("session_id", sessionID)))

		_, err, _ := uc.refreshes.Do(sessionID, func() (any, error) {
			return nil, uc.refreshSummary(ctx, sessionID)
		})
		if err != nil {
			ctxzap.Warn(ctx, "context summary refresh failed", zap.Error(err))
		}
	})
}

func (uc *InterviewUsecase) refreshSummary(ctx context.Context, sessionID string) error {
	session, err := uc.sessionRepo.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	if !uc.contexts.RefreshSummary(ctx, session) {
		return nil
	}

	summary := session.ContextSummary
	_, err = uc.sessionRepo.UpdateSession(ctx, sessionID, func(s *entity.Session) error {
		// an undo may have shortened the log while the summary was written
		if len(s.InterviewLog) < summary.LogCount {
			return nil
		}
		if s.ContextSummary != nil && s.ContextSummary.LogCount >= summary.LogCount {
			return nil
		}
		s.ContextSummary = summary
		return nil
	})
	if err != nil {
		return fmt.Errorf("save context summary: %w", err)
	}
	return nil
}
