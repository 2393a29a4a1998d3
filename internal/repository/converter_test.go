package repository

import (
	"testing"
	"time"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSession_NormalisesCollections(t *testing.T) {
	doc, err := encodeSession(&entity.Session{ID: "s1", Topic: "t"})
	require.NoError(t, err)

	assert.Contains(t, string(doc), `"interview_log":[]`)
	assert.Contains(t, string(doc), `"reference_materials":[]`)
	assert.Contains(t, string(doc), `"dimensions":{}`)
}

func TestSessionDocumentRoundTrip(t *testing.T) {
	score := 4.0
	in := &entity.Session{
		ID:            "0b7c2f5e-8a8e-4b57-9a50-1d1f5b0c9e11",
		Topic:         "审批系统",
		InterviewMode: entity.InterviewModeQuick,
		ScenarioID:    entity.DefaultScenarioID,
		Scenario: entity.Scenario{
			ID:         entity.DefaultScenarioID,
			Dimensions: []entity.Dimension{{ID: "customer_needs", Name: "客户需求"}},
		},
		Dimensions: map[string]*entity.DimensionState{
			"customer_needs": {Coverage: 50, Items: []entity.DimensionItem{}, Score: &score},
		},
		InterviewLog: []entity.LogEntry{{
			Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			Question:  "q", Answer: "a", Dimension: "customer_needs",
			Options: []string{"x"}, FollowUpSignals: []string{},
		}},
		ReferenceMaterials: []entity.ReferenceMaterial{},
		ContextSummary:     &entity.ContextSummary{Text: "摘要", LogCount: 3},
		Status:             entity.SessionStatusInProgress,
	}

	doc, err := encodeSession(in)
	require.NoError(t, err)
	out, err := decodeSession(doc)
	require.NoError(t, err)

	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSession_FillsMissingState(t *testing.T) {
	out, err := decodeSession([]byte(`{"session_id":"s1","dimensions":{"a":null}}`))
	require.NoError(t, err)
	require.NotNil(t, out.Dimensions["a"])
	assert.Empty(t, out.Dimensions["a"].Items)

	_, err = decodeSession([]byte(`{`))
	assert.Error(t, err)
}

func TestToPgUUID(t *testing.T) {
	_, err := toPgUUID("not-a-uuid", entity.ErrSessionNotFound)
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)

	id, err := toPgUUID("0b7c2f5e-8a8e-4b57-9a50-1d1f5b0c9e11", entity.ErrSessionNotFound)
	require.NoError(t, err)
	assert.Equal(t, "0b7c2f5e-8a8e-4b57-9a50-1d1f5b0c9e11", fromPgUUID(id))
}
