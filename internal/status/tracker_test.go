package status

import (
	"errors"
	"testing"
	"time"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestTracker_Thinking(t *testing.T) {
	tr := NewTracker(time.Minute)

	assert.False(t, tr.Thinking("s1").Active)

	tr.SetThinking("s1", entity.ThinkingStageAnalyzing, false)
	first := tr.Thinking("s1")
	assert.True(t, first.Active)
	assert.Equal(t, 0, first.StageIndex)
	assert.Equal(t, 3, first.TotalStages)
	assert.Equal(t, "正在分析您的回答...", first.Message)

	// searching may be skipped, the generating index stays 2
	tr.SetThinking("s1", entity.ThinkingStageGenerating, false)
	got := tr.Thinking("s1")
	assert.Equal(t, entity.ThinkingStageGenerating, got.Stage)
	assert.Equal(t, 2, got.StageIndex)
	assert.Equal(t, first.StartedAt, got.StartedAt)

	tr.SetThinking("s1", "unknown", true)
	assert.Equal(t, entity.ThinkingStageGenerating, tr.Thinking("s1").Stage)

	tr.ClearThinking("s1")
	assert.False(t, tr.Thinking("s1").Active)
}

func TestTracker_Report(t *testing.T) {
	tr := NewTracker(time.Minute)

	tr.SetReport("s1", entity.ReportStageQueued)
	got := tr.Report("s1")
	assert.True(t, got.Active)
	assert.Equal(t, 5, got.Progress)
	assert.Equal(t, 6, got.TotalStages)

	tr.SetReport("s1", entity.ReportStageGenerating, WithMessage("正在生成"))
	got = tr.Report("s1")
	assert.Equal(t, 65, got.Progress)
	assert.Equal(t, "正在生成", got.Message)

	tr.SetReport("s1", entity.ReportStageCompleted, WithReportID("r1"))
	got = tr.Report("s1")
	assert.False(t, got.Active)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, "r1", got.ReportID)

	tr.SetReport("s2", entity.ReportStageFailed, WithError(errors.New("boom")))
	got = tr.Report("s2")
	assert.False(t, got.Active)
	assert.Equal(t, 5, got.StageIndex)
	assert.Equal(t, "boom", got.Error)
	assert.Equal(t, "报告生成失败", got.Message)
}

func TestTracker_ClearAndExpiry(t *testing.T) {
	tr := NewTracker(30 * time.Millisecond)
	tr.SetThinking("s1", entity.ThinkingStageAnalyzing, false)
	tr.SetReport("s1", entity.ReportStageQueued)

	tr.Clear("s1")
	assert.False(t, tr.Thinking("s1").Active)
	assert.False(t, tr.Report("s1").Active)

	tr.SetThinking("s2", entity.ThinkingStageAnalyzing, false)
	time.Sleep(60 * time.Millisecond)
	assert.False(t, tr.Thinking("s2").Active)
}
