package repository

import (
	"encoding/json"
	"fmt"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

func toPgUUID(id string, notFound error) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: invalid id %q", notFound, id)
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

func fromPgUUID(id pgtype.UUID) string {
	return uuid.UUID(id.Bytes).String()
}

// encodeSession normalises nil collections so the stored document always has arrays and objects
func encodeSession(session *entity.Session) ([]byte, error) {
	s := *session
	if s.InterviewLog == nil {
		s.InterviewLog = []entity.LogEntry{}
	}
	if s.ReferenceMaterials == nil {
		s.ReferenceMaterials = []entity.ReferenceMaterial{}
	}
	if s.Dimensions == nil {
		s.Dimensions = map[string]*entity.DimensionState{}
	}

	doc, err := json.Marshal(&s)
	if err != nil {
		return nil, fmt.Errorf("encode session document: %w", err)
	}
	return doc, nil
}

func decodeSession(doc []byte) (*entity.Session, error) {
	var session entity.Session
	if err := json.Unmarshal(doc, &session); err != nil {
		return nil, fmt.Errorf("decode session document: %w", err)
	}
	if session.Dimensions == nil {
		session.Dimensions = map[string]*entity.DimensionState{}
	}
	for id, state := range session.Dimensions {
		if state == nil {
			session.Dimensions[id] = &entity.DimensionState{Items: []entity.DimensionItem{}}
		}
	}
	return &session, nil
}
