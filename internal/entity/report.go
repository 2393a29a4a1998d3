package entity

import "time"

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
	FormatHTML     ResultFormat = "html"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatDOCX, FormatPDF, FormatHTML:
		return true
	default:
		return false
	}
}

// Report is a generated interview report. Reports are append-only.
type Report struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	Name        string    `json:"name"`
	Content     string    `json:"content"`
	AIGenerated bool      `json:"ai_generated"`
	CreatedAt   time.Time `json:"created_at"`
}

// DimensionScore is one dimension's contribution to an assessment
type DimensionScore struct {
	Dimension string   `json:"dimension"`
	Name      string   `json:"name"`
	Score     *float64 `json:"score"`
	Weight    float64  `json:"weight"`
}

type Assessment struct {
	Scores         []DimensionScore    `json:"scores"`
	TotalScore     float64             `json:"total_score"`
	Recommendation RecommendationLevel `json:"recommendation"`
}
