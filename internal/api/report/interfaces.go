package report

import (
	"context"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/futig/interview-backend/internal/pkg/formatter"
)

type ReportUsecase interface {
	GenerateReport(ctx context.Context, sessionID string) (*entity.Report, error)
	QueueReport(ctx context.Context, sessionID string) error
	ListReports(ctx context.Context, sessionID string) ([]entity.ReportSummary, error)
	GetReport(ctx context.Context, reportID string) (*entity.Report, error)
	ReportStatus(sessionID string) entity.ReportStatus
}

type CallbackConnector interface {
	SendError(ctx context.Context, callbackURL string, requestID string, message string, details map[string]any)
	SendReportReady(ctx context.Context, callbackURL string, requestID string, data *entity.CallbackReportData)
}

type FormatterFactory interface {
	Create(format entity.ResultFormat) (formatter.Formatter, error)
}
