package interview

import (
	"context"
	"fmt"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/futig/interview-backend/internal/pkg/textutil"
	"github.com/futig/interview-backend/internal/report"
	"github.com/futig/interview-backend/internal/status"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const failureDetailLen = 200

// GenerateReport writes a report for the session and marks the session completed.
// The model writes the body when available; otherwise a template report is produced.
// Both variants end with the verbatim transcript.
func (uc *InterviewUsecase) GenerateReport(ctx context.Context, sessionID string) (*entity.Report, error) {
	result, err := uc.generateReport(ctx, sessionID)
	if err != nil {
		uc.status.SetReport(sessionID, entity.ReportStageFailed,
			status.WithError(err),
			status.WithMessage("报告生成失败："+textutil.Truncate(err.Error(), failureDetailLen)),
		)
		return nil, err
	}
	uc.status.SetReport(sessionID, entity.ReportStageCompleted, status.WithReportID(result.ID))
	return result, nil
}

func (uc *InterviewUsecase) generateReport(ctx context.Context, sessionID string) (*entity.Report, error) {
	session, err := uc.sessionRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	uc.status.SetReport(sessionID, entity.ReportStageQueued)

	content, aiGenerated := uc.writeReportBody(ctx, session)
	if !aiGenerated {
		uc.status.SetReport(sessionID, entity.ReportStageFallback)
		content = report.Simple(session, uc.now())
	}

	uc.status.SetReport(sessionID, entity.ReportStageSaving)
	now := uc.now().UTC()
	result := &entity.Report{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		Name:        report.Filename(session.Topic, now),
		Content:     content,
		AIGenerated: aiGenerated,
		CreatedAt:   now,
	}
	if err := uc.reportRepo.CreateReport(ctx, result); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}

	_, err = uc.sessionRepo.UpdateSession(ctx, sessionID, func(s *entity.Session) error {
		s.Status = entity.SessionStatusCompleted
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("complete session: %w", err)
	}

	ctxzap.Info(ctx, "report generated",
		zap.String("report_id", result.ID),
		zap.Bool("ai_generated", aiGenerated),
		zap.Int("answers", len(session.InterviewLog)),
	)
	return result, nil
}

// writeReportBody asks the model for the report. It reports false when the template must be used instead.
func (uc *InterviewUsecase) writeReportBody(ctx context.Context, session *entity.Session) (string, bool) {
	if uc.llm == nil {
		return "", false
	}

	uc.status.SetReport(session.ID, entity.ReportStageBuildingPrompt)
	prompt := report.Prompt(ctx, session, uc.contexts)
	ctxzap.Debug(ctx, "report prompt built",
		zap.Int("prompt_length", textutil.Len(prompt)),
		zap.Int("documents", len(session.ReferenceMaterials)),
	)

	uc.status.SetReport(session.ID, entity.ReportStageGenerating)
	body, err := uc.llm.Complete(ctx, entity.CompletionRequest{
		Prompt:    prompt,
		MaxTokens: uc.cfg.MaxTokensReport,
		Timeout:   uc.cfg.ReportTimeout,
		CallType:  entity.CallTypeReport,
	})
	if err != nil {
		ctxzap.Warn(ctx, "model report failed, using template", zap.Error(err))
		return "", false
	}

	return report.WithAppendix(body, session), true
}

func (uc *InterviewUsecase) ListReports(ctx context.Context, sessionID string) ([]entity.ReportSummary, error) {
	if _, err := uc.sessionRepo.GetSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	reports, err := uc.reportRepo.ListReports(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

func (uc *InterviewUsecase) GetReport(ctx context.Context, reportID string) (*entity.Report, error) {
	result, err := uc.reportRepo.GetReport(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	return result, nil
}

// QueueReport marks the report as queued before an asynchronous generation starts
func (uc *InterviewUsecase) QueueReport(ctx context.Context, sessionID string) error {
	if _, err := uc.sessionRepo.GetSession(ctx, sessionID); err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	uc.status.SetReport(sessionID, entity.ReportStageQueued)
	return nil
}
