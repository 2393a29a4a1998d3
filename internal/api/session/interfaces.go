package session

import (
	"context"

	"github.com/futig/interview-backend/internal/entity"
)

type SessionUsecase interface {
	CreateSession(ctx context.Context, req *entity.CreateSessionRequest) (*entity.SessionDTO, error)
	ListSessions(ctx context.Context) ([]entity.SessionListItem, error)
	GetSession(ctx context.Context, sessionID string) (*entity.SessionDTO, error)
	UpdateSession(ctx context.Context, sessionID string, req *entity.UpdateSessionRequest) (*entity.SessionDTO, error)
	DeleteSession(ctx context.Context, sessionID string) error

	SubmitAnswer(ctx context.Context, sessionID string, req *entity.SubmitAnswerRequest) (*entity.SessionDTO, error)
	NextQuestion(ctx context.Context, sessionID string, req *entity.DimensionRequest) (*entity.NextQuestionResult, error)
	UndoLastAnswer(ctx context.Context, sessionID string) (*entity.SessionDTO, error)
	SkipFollowUp(ctx context.Context, sessionID string, req *entity.DimensionRequest) (*entity.MessageResponse, error)
	ForceCompleteDimension(ctx context.Context, sessionID string, req *entity.DimensionRequest) (*entity.CompleteDimensionResult, error)

	AddDocument(ctx context.Context, sessionID, filename string, data []byte) (*entity.DocumentUploadResult, error)
	DeleteDocument(ctx context.Context, sessionID, name string) (*entity.DocumentDeleteResult, error)
	RestartInterview(ctx context.Context, sessionID string) (*entity.RestartResult, error)
}
