package validator

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/futig/interview-backend/internal/config"
	"github.com/futig/interview-backend/internal/entity"
)

const (
	maxTopicLength       = 200
	maxDescriptionLength = 2000
)

// TextExtensions are read as UTF-8 text
var TextExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// ImageExtensions are described by the vision capability
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Validator checks request payloads against the configured limits
type Validator struct {
	interview config.InterviewConfig
	documents config.DocumentConfig
}

func NewValidator(interview config.InterviewConfig, documents config.DocumentConfig) *Validator {
	return &Validator{interview: interview, documents: documents}
}

func (v *Validator) ValidateCreateSession(req *entity.CreateSessionRequest) error {
	if strings.TrimSpace(req.Topic) == "" {
		return fmt.Errorf("%w: topic", entity.ErrMissingField)
	}
	return v.validateTopic(req.Topic, req.Description)
}

func (v *Validator) ValidateUpdateSession(req *entity.UpdateSessionRequest) error {
	if req.Topic != nil && strings.TrimSpace(*req.Topic) == "" {
		return fmt.Errorf("%w: topic", entity.ErrMissingField)
	}
	var topic, description string
	if req.Topic != nil {
		topic = *req.Topic
	}
	if req.Description != nil {
		description = *req.Description
	}
	if err := v.validateTopic(topic, description); err != nil {
		return err
	}
	if req.Status != nil {
		return req.Status.Validate()
	}
	return nil
}

func (v *Validator) validateTopic(topic, description string) error {
	if n := utf8.RuneCountInString(topic); n > maxTopicLength {
		return fmt.Errorf("%w: topic is %d characters (max %d)", entity.ErrValidation, n, maxTopicLength)
	}
	if n := utf8.RuneCountInString(description); n > maxDescriptionLength {
		return fmt.Errorf("%w: description is %d characters (max %d)", entity.ErrValidation, n, maxDescriptionLength)
	}
	return nil
}

// ValidateSubmitAnswer checks the payload only; the dimension is checked against the session
func (v *Validator) ValidateSubmitAnswer(req *entity.SubmitAnswerRequest) error {
	if strings.TrimSpace(req.Question) == "" {
		return fmt.Errorf("%w: %w: question", entity.ErrValidation, entity.ErrMissingField)
	}
	if strings.TrimSpace(req.Answer) == "" {
		return fmt.Errorf("%w: %w: answer", entity.ErrValidation, entity.ErrMissingField)
	}
	if req.Dimension == "" {
		return fmt.Errorf("%w: %w: dimension", entity.ErrValidation, entity.ErrMissingField)
	}
	if n := utf8.RuneCountInString(req.Answer); n > v.interview.MaxAnswerLength {
		return fmt.Errorf("%w: answer is %d characters (max %d)", entity.ErrValidation, n, v.interview.MaxAnswerLength)
	}
	return nil
}

func (v *Validator) ValidateDimension(req *entity.DimensionRequest) error {
	if req.Dimension == "" {
		return fmt.Errorf("%w: %w: dimension", entity.ErrValidation, entity.ErrMissingField)
	}
	return nil
}

// ValidateDocument checks an uploaded reference material before it is read
func (v *Validator) ValidateDocument(filename string, size int64) error {
	if filename == "" {
		return fmt.Errorf("%w: filename", entity.ErrMissingField)
	}
	if size == 0 {
		return fmt.Errorf("%w: %s", entity.ErrEmptyFile, filename)
	}
	if size > v.documents.MaxFileSize {
		return fmt.Errorf("%w: file '%s' is %d bytes (max %d)", entity.ErrFileTooLarge, filename, size, v.documents.MaxFileSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !TextExtensions[ext] && !ImageExtensions[ext] {
		return fmt.Errorf("%w: %s (allowed: md, txt, jpg, jpeg, png, gif, webp)", entity.ErrInvalidExtension, ext)
	}
	return nil
}

// ValidateDocumentName rejects names that could escape the session's document list
func (v *Validator) ValidateDocumentName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: document name", entity.ErrMissingField)
	}
	if strings.Contains(name, "..") || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return fmt.Errorf("%w: document name %q", entity.ErrInvalidParameter, name)
	}
	return nil
}

// IsImage reports whether the filename is handled by the vision capability
func IsImage(filename string) bool {
	return ImageExtensions[strings.ToLower(filepath.Ext(filename))]
}

// SanitizeFilename strips directories and characters that break display
func SanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if filename == "." || filename == "/" {
		return ""
	}
	replacer := strings.NewReplacer(
		"\x00", "",
		"\n", "",
		"\r", "",
	)
	return replacer.Replace(filename)
}
