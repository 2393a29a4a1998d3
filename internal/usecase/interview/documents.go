package interview

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/futig/interview-backend/internal/pkg/textutil"
	"github.com/futig/interview-backend/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	archiveMaxLength = 2000
	archiveCutNote   = "\n\n...(内容过长已截断)"
)

// AddDocument reads an uploaded reference material into the session.
// Text files must be UTF-8; images are described by the vision capability.
func (uc *InterviewUsecase) AddDocument(
	ctx context.Context, sessionID, filename string, data []byte,
) (*entity.DocumentUploadResult, error) {
	filename = validator.SanitizeFilename(filename)
	if err := uc.validator.ValidateDocument(filename, int64(len(data))); err != nil {
		return nil, err
	}

	// fail fast on unknown sessions before any vision call
	if _, err := uc.sessionRepo.GetSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	content, err := uc.readDocument(ctx, filename, data)
	if err != nil {
		return nil, err
	}

	doc := entity.ReferenceMaterial{
		Name:       filename,
		Type:       strings.ToLower(filepath.Ext(filename)),
		Content:    textutil.Truncate(content, uc.cfg.Documents.MaxContentLength),
		Source:     entity.DocumentSourceUpload,
		UploadedAt: uc.now().UTC(),
	}

	_, err = uc.sessionRepo.UpdateSession(ctx, sessionID, func(s *entity.Session) error {
		s.ReferenceMaterials = append(s.ReferenceMaterials, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add document: %w", err)
	}

	// cached questions were generated without this document
	uc.prefetch.Invalidate(sessionID, "")

	ctxzap.Info(ctx, "document added",
		zap.String("filename", filename),
		zap.Int("content_length", textutil.Len(content)),
	)
	return &entity.DocumentUploadResult{
		Success:       true,
		Filename:      filename,
		ContentLength: textutil.Len(content),
	}, nil
}

func (uc *InterviewUsecase) readDocument(ctx context.Context, filename string, data []byte) (string, error) {
	var content string
	if validator.IsImage(filename) {
		if uc.vision == nil {
			content = fmt.Sprintf("[图片: %s]\n\n(图片识别未启用)", filename)
		} else {
			content = uc.vision.Describe(ctx, data, filename)
		}
	} else {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: %s is not valid UTF-8", entity.ErrInvalidFormat, filename)
		}
		content = string(data)
	}

	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: %s", entity.ErrEmptyFile, filename)
	}
	return content, nil
}

// DeleteDocument removes every reference material with the given name
func (uc *InterviewUsecase) DeleteDocument(ctx context.Context, sessionID, name string) (*entity.DocumentDeleteResult, error) {
	if err := uc.validator.ValidateDocumentName(name); err != nil {
		return nil, err
	}

	_, err := uc.sessionRepo.UpdateSession(ctx, sessionID, func(s *entity.Session) error {
		kept := make([]entity.ReferenceMaterial, 0, len(s.ReferenceMaterials))
		for _, doc := range s.ReferenceMaterials {
			if doc.Name != name {
				kept = append(kept, doc)
			}
		}
		if len(kept) == len(s.ReferenceMaterials) {
			return fmt.Errorf("document %q: %w", name, entity.ErrDocumentNotFound)
		}
		s.ReferenceMaterials = kept
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("delete document: %w", err)
	}

	uc.prefetch.Invalidate(sessionID, "")

	ctxzap.Info(ctx, "document deleted", zap.String("filename", name))
	return &entity.DocumentDeleteResult{
		Success: true,
		Deleted: name,
		Message: "文档已从列表中移除",
	}, nil
}

// RestartInterview archives the current transcript as a reference material and resets the interview
func (uc *InterviewUsecase) RestartInterview(ctx context.Context, sessionID string) (*entity.RestartResult, error) {
	now := uc.now().UTC()
	docName := fmt.Sprintf("访谈记录-%s.md", now.Format("2006-01-02T15-04-05Z"))

	_, err := uc.sessionRepo.UpdateSession(ctx, sessionID, func(s *entity.Session) error {
		if len(s.InterviewLog) == 0 {
			return fmt.Errorf("restart interview: %w", entity.ErrNoAnswers)
		}

		content := archiveTranscript(s, now.Format("2006-01-02 15:04:05"))
		if textutil.Len(content) > archiveMaxLength {
			content = textutil.Truncate(content, archiveMaxLength) + archiveCutNote
		}

		s.ReferenceMaterials = append(s.ReferenceMaterials, entity.ReferenceMaterial{
			Name:       docName,
			Type:       ".md",
			Content:    content,
			Source:     entity.DocumentSourceAuto,
			UploadedAt: now,
		})
		s.InterviewLog = []entity.LogEntry{}
		s.ResetDimensions()
		s.ContextSummary = nil
		s.Status = entity.SessionStatusInProgress
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("restart interview: %w", err)
	}

	uc.prefetch.Invalidate(sessionID, "")
	uc.status.Clear(sessionID)

	ctxzap.Info(ctx, "interview restarted", zap.String("archive", docName))
	return &entity.RestartResult{
		Success:         true,
		Message:         "已保存当前访谈内容并重置访谈",
		ResearchDocName: docName,
	}, nil
}

var markupStripper = strings.NewReplacer("**", "", "`", "")

// archiveTranscript renders the log grouped by dimension in scenario order
func archiveTranscript(s *entity.Session, generatedAt string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# 访谈记录 - %s\n\n生成时间: %s\n\n", s.Topic, generatedAt)
	if s.Description != "" {
		desc := strings.NewReplacer("\n", " ", "\r", "").Replace(s.Description)
		fmt.Fprintf(&sb, "主题描述: %s\n\n", desc)
	}
	sb.WriteString("## 访谈记录\n\n")

	for _, d := range s.Scenario.Dimensions {
		logs := s.DimensionLogs(d.ID)
		if len(logs) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "### %s\n\n", s.Scenario.DimensionName(d.ID))
		for _, entry := range logs {
			label := "Q"
			if entry.IsFollowUp {
				label = "追问"
			}
			fmt.Fprintf(&sb, "%s: %s\n\nA: %s\n\n---\n\n",
				label, markupStripper.Replace(entry.Question), markupStripper.Replace(entry.Answer))
		}
	}
	return sb.String()
}
