package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/futig/interview-backend/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SummaryRepository caches model-written document summaries by content hash
type SummaryRepository interface {
	GetSummary(ctx context.Context, hash string) (string, error)
	SaveSummary(ctx context.Context, hash, summary string) error
	SummaryInfo(ctx context.Context) (entity.SummaryCacheInfo, error)
	ClearSummaries(ctx context.Context) (int, error)
}

var _ SummaryRepository = &SummaryPostgres{}

type SummaryPostgres struct {
	db *pgxpool.Pool
}

func NewSummaryPostgres(db *pgxpool.Pool) *SummaryPostgres {
	return &SummaryPostgres{db: db}
}

// GetSummary returns an empty string on a cache miss
func (r *SummaryPostgres) GetSummary(ctx context.Context, hash string) (string, error) {
	var summary string
	err := r.db.QueryRow(ctx, `SELECT summary FROM document_summaries WHERE hash = $1`, hash).Scan(&summary)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get summary: %w", err)
	}
	return summary, nil
}

// SaveSummary keeps the first summary written for a hash
func (r *SummaryPostgres) SaveSummary(ctx context.Context, hash, summary string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO document_summaries (hash, summary)
		VALUES ($1, $2)
		ON CONFLICT (hash) DO NOTHING`, hash, summary)
	if err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	return nil
}

func (r *SummaryPostgres) SummaryInfo(ctx context.Context) (entity.SummaryCacheInfo, error) {
	var info entity.SummaryCacheInfo
	err := r.db.QueryRow(ctx, `
		SELECT count(*), COALESCE(sum(octet_length(summary)), 0)
		FROM document_summaries`,
	).Scan(&info.Count, &info.SizeBytes)
	if err != nil {
		return entity.SummaryCacheInfo{}, fmt.Errorf("summary cache info: %w", err)
	}
	info.Size = humanize.IBytes(uint64(info.SizeBytes))
	return info, nil
}

// ClearSummaries removes every cached summary and returns how many were removed
func (r *SummaryPostgres) ClearSummaries(ctx context.Context) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM document_summaries`)
	if err != nil {
		return 0, fmt.Errorf("clear summaries: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
