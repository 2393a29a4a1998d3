package entity

import "time"

type ThinkingStage string

const (
	ThinkingStageAnalyzing  ThinkingStage = "analyzing"
	ThinkingStageSearching  ThinkingStage = "searching"
	ThinkingStageGenerating ThinkingStage = "generating"
)

type ThinkingStatus struct {
	Active      bool          `json:"active"`
	Stage       ThinkingStage `json:"stage,omitempty"`
	StageIndex  int           `json:"stage_index"`
	TotalStages int           `json:"total_stages"`
	Message     string        `json:"message,omitempty"`
	HasSearch   bool          `json:"has_search"`
	StartedAt   time.Time     `json:"started_at,omitempty"`
}

type ReportStage string

const (
	ReportStageQueued         ReportStage = "queued"
	ReportStageBuildingPrompt ReportStage = "building_prompt"
	ReportStageGenerating     ReportStage = "generating"
	ReportStageFallback       ReportStage = "fallback"
	ReportStageSaving         ReportStage = "saving"
	ReportStageCompleted      ReportStage = "completed"
	ReportStageFailed         ReportStage = "failed"
)

type ReportStatus struct {
	Active      bool        `json:"active"`
	Stage       ReportStage `json:"state,omitempty"`
	StageIndex  int         `json:"stage_index"`
	TotalStages int         `json:"total_stages"`
	Progress    int         `json:"progress"`
	Message     string      `json:"message,omitempty"`
	ReportID    string      `json:"report_id,omitempty"`
	Error       string      `json:"error,omitempty"`
	UpdatedAt   time.Time   `json:"updated_at,omitempty"`
}
