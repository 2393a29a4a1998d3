package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportRepository persists generated reports. Reports are never updated.
type ReportRepository interface {
	CreateReport(ctx context.Context, report *entity.Report) error
	GetReport(ctx context.Context, id string) (*entity.Report, error)
	ListReports(ctx context.Context, sessionID string) ([]entity.ReportSummary, error)
}

var _ ReportRepository = &ReportPostgres{}

type ReportPostgres struct {
	db *pgxpool.Pool
}

func NewReportPostgres(db *pgxpool.Pool) *ReportPostgres {
	return &ReportPostgres{db: db}
}

func (r *ReportPostgres) CreateReport(ctx context.Context, report *entity.Report) error {
	id, err := toPgUUID(report.ID, entity.ErrInvalidParameter)
	if err != nil {
		return err
	}
	sessionID, err := toPgUUID(report.SessionID, entity.ErrSessionNotFound)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO reports (id, session_id, name, content, ai_generated, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, sessionID, report.Name, report.Content, report.AIGenerated, report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	return nil
}

func (r *ReportPostgres) GetReport(ctx context.Context, id string) (*entity.Report, error) {
	reportID, err := toPgUUID(id, entity.ErrReportNotFound)
	if err != nil {
		return nil, err
	}

	var (
		report    entity.Report
		sessionID pgtype.UUID
	)
	err = r.db.QueryRow(ctx, `
		SELECT session_id, name, content, ai_generated, created_at
		FROM reports WHERE id = $1`, reportID,
	).Scan(&sessionID, &report.Name, &report.Content, &report.AIGenerated, &report.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("report %s: %w", id, entity.ErrReportNotFound)
		}
		return nil, fmt.Errorf("get report: %w", err)
	}
	report.ID = fromPgUUID(reportID)
	report.SessionID = fromPgUUID(sessionID)

	return &report, nil
}

// ListReports returns the session's reports newest first, without content
func (r *ReportPostgres) ListReports(ctx context.Context, sessionID string) ([]entity.ReportSummary, error) {
	sid, err := toPgUUID(sessionID, entity.ErrSessionNotFound)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, name, ai_generated, created_at
		FROM reports WHERE session_id = $1
		ORDER BY created_at DESC`, sid)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	reports := []entity.ReportSummary{}
	for rows.Next() {
		var (
			item entity.ReportSummary
			id   pgtype.UUID
		)
		if err := rows.Scan(&id, &item.Name, &item.AIGenerated, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		item.ID = fromPgUUID(id)
		reports = append(reports, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}

	return reports, nil
}
