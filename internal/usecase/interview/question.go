package interview

import (
	"context"
	"errors"
	"fmt"

	"github.com/futig/interview-backend/internal/compactor"
	"github.com/futig/interview-backend/internal/entity"
	domain "github.com/futig/interview-backend/internal/interview"
	"github.com/futig/interview-backend/internal/prefetch"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// NextQuestion returns the next question of a dimension, or a completion marker once the dimension is done.
// A prefetched question is served when available; otherwise the model is called synchronously.
func (uc *InterviewUsecase) NextQuestion(ctx context.Context, sessionID string, req *entity.DimensionRequest) (*entity.NextQuestionResult, error) {
	session, err := uc.sessionRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	dim := req.Dimension
	if dim == "" {
		order := session.Scenario.DimensionOrder()
		if len(order) == 0 {
			return nil, fmt.Errorf("%w: scenario has no dimensions", entity.ErrInvalidScenario)
		}
		dim = order[0]
	}
	if err := requireDimension(session, dim); err != nil {
		return nil, err
	}

	if payload, ok := uc.prefetch.Get(sessionID, dim); ok {
		return uc.servePrefetched(ctx, session, dim, payload), nil
	}

	fallback := uc.cfg.Interview.FallbackQuestions
	if uc.llm == nil && !fallback {
		return nil, fmt.Errorf("next question: %w: no model configured", entity.ErrServiceUnavailable)
	}

	if done := uc.dimensionCompletion(session, dim); done != nil {
		ctxzap.Info(ctx, "dimension completed",
			zap.String("dimension", dim),
			zap.Int("formal_questions", done.Stats.FormalQuestions),
			zap.Int("follow_ups", done.Stats.FollowUps),
		)
		return done, nil
	}

	if uc.llm == nil {
		return uc.fallbackQuestion(session, dim), nil
	}

	payload, err := uc.generateQuestion(ctx, session, dim, entity.CallTypeQuestion, true)
	if err != nil {
		if fallback && !errors.Is(err, entity.ErrDuplicateQuestion) {
			ctxzap.Warn(ctx, "question generation failed, serving fallback question",
				zap.String("dimension", dim), zap.Error(err))
			return uc.fallbackQuestion(session, dim), nil
		}
		return nil, fmt.Errorf("generate question: %w", err)
	}

	uc.triggerPrefetch(ctx, session, dim)

	return &entity.NextQuestionResult{QuestionPayload: payload, Dimension: dim}, nil
}

// servePrefetched re-checks a cached question against the current state before handing it out
func (uc *InterviewUsecase) servePrefetched(
	ctx context.Context, session *entity.Session, dim string, payload *entity.QuestionPayload,
) *entity.NextQuestionResult {
	ctxzap.Info(ctx, "prefetch hit", zap.String("dimension", dim))

	state := session.Dimension(dim)
	if state.Coverage >= 100 || state.UserCompleted {
		return &entity.NextQuestionResult{
			Dimension: dim,
			Completed: true,
			Stats: &entity.DimensionStats{
				FormalQuestions: session.FormalCount(dim),
				FollowUps:       session.FollowUpCount(dim),
				Saturation:      1.0,
			},
		}
	}

	if payload.IsFollowUp && !uc.engine.PermitsFollowUp(session, dim) {
		ctxzap.Info(ctx, "prefetched follow-up no longer allowed, serving as formal question", zap.String("dimension", dim))
		payload.Demote()
	}
	payload.Dimension = dim
	payload.Prefetched = true

	return &entity.NextQuestionResult{QuestionPayload: payload, Dimension: dim}
}

// dimensionCompletion returns a completion marker when the dimension needs no further questions
func (uc *InterviewUsecase) dimensionCompletion(session *entity.Session, dim string) *entity.NextQuestionResult {
	formal := session.FormalCount(dim)
	required := session.InterviewMode.Config().FormalQuestionsPerDim
	state := session.Dimension(dim)

	if formal < required && state.Coverage < 100 && !state.UserCompleted {
		return nil
	}

	tracker := uc.engine.Tracker()
	budget := tracker.Budget(session, dim)
	saturation := tracker.Saturation(session, dim)
	if budget.CanFollowUp && saturation.Level != domain.SaturationHigh && formal < required {
		return nil
	}

	return &entity.NextQuestionResult{
		Dimension: dim,
		Completed: true,
		Stats: &entity.DimensionStats{
			FormalQuestions: formal,
			FollowUps:       session.FollowUpCount(dim),
			Saturation:      saturation.Score,
		},
	}
}

// fallbackQuestion serves a static question, always flagged as not generated by the model
func (uc *InterviewUsecase) fallbackQuestion(session *entity.Session, dim string) *entity.NextQuestionResult {
	result := domain.FallbackQuestion(session, dim)
	if result.Completed {
		result.Stats = &entity.DimensionStats{
			FormalQuestions: session.FormalCount(dim),
			FollowUps:       session.FollowUpCount(dim),
			Saturation:      uc.engine.Tracker().Saturation(session, dim).Score,
		}
		return result
	}
	result.AIGenerated = false
	return result
}

// generateQuestion renders the prompt, calls the model and validates the payload.
// When track is set the thinking status of the session follows the stages.
func (uc *InterviewUsecase) generateQuestion(
	ctx context.Context, session *entity.Session, dim string, callType entity.CallType, track bool,
) (*entity.QuestionPayload, error) {
	var opts []compactor.BuildOption
	if track {
		uc.status.SetThinking(session.ID, entity.ThinkingStageAnalyzing, uc.contexts.WouldSearch(session, dim))
		defer uc.status.ClearThinking(session.ID)
		opts = append(opts, compactor.WithSearchHook(func() {
			uc.status.SetThinking(session.ID, entity.ThinkingStageSearching, true)
		}))
	}

	qp := uc.contexts.RenderQuestionPrompt(ctx, session, dim, opts...)
	if len(qp.TruncatedDocs) > 0 {
		ctxzap.Info(ctx, "documents shortened for prompt", zap.Strings("documents", qp.TruncatedDocs))
	}

	if track {
		uc.status.SetThinking(session.ID, entity.ThinkingStageGenerating, uc.contexts.WouldSearch(session, dim))
	}

	req := entity.CompletionRequest{
		Prompt:        qp.Prompt,
		MaxTokens:     uc.cfg.MaxTokensQuestion,
		CallType:      callType,
		TruncatedDocs: qp.TruncatedDocs,
	}
	payload, err := uc.completeQuestion(ctx, req)
	if err != nil {
		return nil, err
	}

	dimLogs := session.DimensionLogs(dim)
	if n := len(dimLogs); n > 0 && dimLogs[n-1].Question == payload.Question {
		ctxzap.Warn(ctx, "model repeated the previous question, retrying once", zap.String("dimension", dim))
		payload, err = uc.completeQuestion(ctx, req)
		if err != nil || payload.Question == dimLogs[n-1].Question {
			return nil, fmt.Errorf("%w: dimension %s", entity.ErrDuplicateQuestion, dim)
		}
	}

	payload.Dimension = dim
	payload.AIGenerated = true

	// the model must not grant itself follow-ups the budget does not allow
	if payload.IsFollowUp && !uc.engine.PermitsFollowUp(session, dim) {
		ctxzap.Info(ctx, "model marked a follow-up the rules do not allow, overriding", zap.String("dimension", dim))
		payload.Demote()
	}

	return payload, nil
}

func (uc *InterviewUsecase) completeQuestion(ctx context.Context, req entity.CompletionRequest) (*entity.QuestionPayload, error) {
	raw, err := uc.llm.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	payload, err := domain.ParseQuestion(raw)
	if err != nil {
		ctxzap.Warn(ctx, "unparseable question response", zap.Error(err), zap.Int("response_length", len(raw)))
		return nil, err
	}
	return payload, nil
}

// triggerPrefetch prefetches the opening question of the next open dimension
// once the current one has enough formal answers
func (uc *InterviewUsecase) triggerPrefetch(ctx context.Context, session *entity.Session, dim string) {
	if !prefetch.ShouldTrigger(session, dim) {
		return
	}
	next, ok := prefetch.NextDimension(session, dim)
	if !ok {
		return
	}
	uc.schedulePrefetch(ctx, session.ID, next)
}

// schedulePrefetch computes the question for (session, dim) in the background unless a valid entry exists
func (uc *InterviewUsecase) schedulePrefetch(ctx context.Context, sessionID, dim string) {
	if !uc.cfg.Interview.PrefetchEnabled || uc.llm == nil {
		return
	}
	if uc.prefetch.HasValid(sessionID, dim) {
		return
	}
	gen := uc.prefetch.Begin(sessionID, dim)

	uc.goBackground(ctx, "prefetch", func(ctx context.Context) {
		ctx = ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(
			zap.String("session_id", sessionID),
			zap.String("dimension", dim),
		))

		session, err := uc.sessionRepo.GetSession(ctx, sessionID)
		if err != nil {
			ctxzap.Warn(ctx, "prefetch skipped, session unavailable", zap.Error(err))
			return
		}
		if !session.HasDimension(dim) {
			return
		}

		payload, err := uc.generateQuestion(ctx, session, dim, entity.CallTypePrefetch, false)
		if err != nil {
			ctxzap.Warn(ctx, "prefetch failed", zap.Error(err))
			return
		}

		if !uc.prefetch.PutIfCurrent(sessionID, dim, gen, payload) {
			ctxzap.Info(ctx, "prefetched question discarded, state changed while it was computed")
			return
		}
		ctxzap.Info(ctx, "question prefetched")
	})
}
