package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository defines the interface for session persistence.
// A session is stored as one JSONB document that is replaced whole on every mutation.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *entity.Session) error
	GetSession(ctx context.Context, id string) (*entity.Session, error)
	ListSessions(ctx context.Context) ([]entity.SessionListItem, error)
	UpdateSession(ctx context.Context, id string, fn func(*entity.Session) error) (*entity.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

var _ SessionRepository = &SessionPostgres{}

// SessionPostgres implements SessionRepository using PostgreSQL
type SessionPostgres struct {
	db *pgxpool.Pool
}

func NewSessionPostgres(db *pgxpool.Pool) *SessionPostgres {
	return &SessionPostgres{db: db}
}

func (r *SessionPostgres) CreateSession(ctx context.Context, session *entity.Session) error {
	id, err := toPgUUID(session.ID, entity.ErrInvalidParameter)
	if err != nil {
		return err
	}
	doc, err := encodeSession(session)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO sessions (id, topic, status, scenario_id, interview_mode, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, session.Topic, string(session.Status), session.ScenarioID, string(session.InterviewMode),
		doc, session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (r *SessionPostgres) GetSession(ctx context.Context, id string) (*entity.Session, error) {
	sessionID, err := toPgUUID(id, entity.ErrSessionNotFound)
	if err != nil {
		return nil, err
	}

	var doc []byte
	err = r.db.QueryRow(ctx, `SELECT document FROM sessions WHERE id = $1`, sessionID).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session %s: %w", id, entity.ErrSessionNotFound)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	return decodeSession(doc)
}

// ListSessions returns sessions newest first without decoding whole documents
func (r *SessionPostgres) ListSessions(ctx context.Context) ([]entity.SessionListItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, topic, status, scenario_id, interview_mode,
		       CASE WHEN jsonb_typeof(document->'interview_log') = 'array'
		            THEN jsonb_array_length(document->'interview_log') ELSE 0 END,
		       created_at, updated_at
		FROM sessions
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	items := []entity.SessionListItem{}
	for rows.Next() {
		var (
			item         entity.SessionListItem
			id           pgtype.UUID
			status, mode string
			answers      int32
		)
		err := rows.Scan(&id, &item.Topic, &status, &item.ScenarioID, &mode, &answers, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		item.ID = fromPgUUID(id)
		item.Status = entity.SessionStatus(status)
		item.InterviewMode = entity.InterviewMode(mode)
		item.AnswerCount = int(answers)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return items, nil
}

// UpdateSession locks the row, applies fn to the decoded document and writes it back in one transaction.
// When fn fails nothing is written.
func (r *SessionPostgres) UpdateSession(
	ctx context.Context, id string, fn func(*entity.Session) error,
) (*entity.Session, error) {
	sessionID, err := toPgUUID(id, entity.ErrSessionNotFound)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var doc []byte
	err = tx.QueryRow(ctx, `SELECT document FROM sessions WHERE id = $1 FOR UPDATE`, sessionID).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session %s: %w", id, entity.ErrSessionNotFound)
		}
		return nil, fmt.Errorf("lock session: %w", err)
	}

	session, err := decodeSession(doc)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	session.UpdatedAt = time.Now().UTC()

	doc, err = encodeSession(session)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE sessions
		SET topic = $2, status = $3, document = $4, updated_at = $5
		WHERE id = $1`,
		sessionID, session.Topic, string(session.Status), doc, session.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit session update: %w", err)
	}

	return session, nil
}

func (r *SessionPostgres) DeleteSession(ctx context.Context, id string) error {
	sessionID, err := toPgUUID(id, entity.ErrSessionNotFound)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session %s: %w", id, entity.ErrSessionNotFound)
	}

	return nil
}
