package entity

import "errors"

// Domain errors
var (
	// Session errors
	ErrSessionNotFound      = errors.New("session not found")
	ErrInvalidSessionStatus = errors.New("invalid session status")
	ErrNothingToUndo        = errors.New("nothing to undo")
	ErrPreconditionFailed   = errors.New("precondition failed")
	ErrDimensionNotFound    = errors.New("dimension not found")

	// Scenario errors
	ErrScenarioNotFound = errors.New("scenario not found")
	ErrInvalidScenario  = errors.New("invalid scenario")

	// Report errors
	ErrReportNotFound = errors.New("report not found")
	ErrNoAnswers      = errors.New("interview has no answers")

	// Document errors
	ErrDocumentNotFound = errors.New("document not found")
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidExtension = errors.New("invalid file extension")
	ErrEmptyFile        = errors.New("file is empty")

	// Model errors
	ErrServiceUnavailable = errors.New("ai service unavailable")
	ErrParse              = errors.New("unparseable model response")
	ErrDuplicateQuestion  = errors.New("model produced a duplicate question")

	// Validation errors
	ErrValidation       = errors.New("validation failed")
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
)
