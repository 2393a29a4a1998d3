package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customJSON = `{
  "id": "custom-sales",
  "name": "销售复盘",
  "description": "复盘一次销售过程",
  "keywords": ["销售", "复盘", "客户"],
  "dimensions": [
    {"id": "deal", "name": "成单过程", "key_aspects": ["关键节点"]},
    {"id": "lessons", "name": "经验教训"}
  ]
}`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestNewLoader_Embedded(t *testing.T) {
	l, err := NewLoader(context.Background(), "")
	require.NoError(t, err)

	def := l.Default()
	assert.Equal(t, entity.DefaultScenarioID, def.ID)
	assert.True(t, def.Builtin)
	assert.Equal(t, []string{"customer_needs", "business_process", "tech_constraints", "project_constraints"}, def.DimensionOrder())
	assert.Equal(t, entity.ReportTypeStandard, def.Report.Type)

	tech, err := l.Get("tech-interview")
	require.NoError(t, err)
	assert.True(t, tech.IsAssessment())
	require.NotNil(t, tech.Dimensions[0].Weight)
	assert.InDelta(t, 0.4, *tech.Dimensions[0].Weight, 1e-9)
	assert.Len(t, tech.Assessment.RecommendationLevels, 3)

	_, err = l.Get("nope")
	assert.ErrorIs(t, err, entity.ErrScenarioNotFound)
}

func TestNewLoader_Directories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "custom"), "sales.json", customJSON)
	writeFile(t, filepath.Join(dir, "custom"), "broken.yaml", "id: [unclosed")
	writeFile(t, filepath.Join(dir, "custom"), "notes.txt", "ignored")
	writeFile(t, filepath.Join(dir, "builtin"), "override.yml", `
id: product-requirement
name: 产品需求（定制）
dimensions:
  - id: customer_needs
    name: 客户需求
`)

	l, err := NewLoader(context.Background(), dir)
	require.NoError(t, err)

	def := l.Default()
	assert.Equal(t, "产品需求（定制）", def.Name)
	assert.Len(t, def.Dimensions, 1)

	custom, err := l.Get("custom-sales")
	require.NoError(t, err)
	assert.False(t, custom.Builtin)
	assert.Equal(t, entity.ReportTypeStandard, custom.Report.Type)
}

func TestLoader_List(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "custom"), "sales.json", customJSON)

	l, err := NewLoader(context.Background(), dir)
	require.NoError(t, err)

	list := l.List()
	require.Len(t, list, 3)
	assert.True(t, list[0].Builtin)
	assert.True(t, list[1].Builtin)
	assert.Equal(t, "custom-sales", list[2].ID)
	assert.LessOrEqual(t, list[0].Name, list[1].Name)
}

func TestLoader_Resolve(t *testing.T) {
	l, err := NewLoader(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, entity.DefaultScenarioID, l.Resolve("").ID)
	assert.Equal(t, entity.DefaultScenarioID, l.Resolve("missing").ID)
	assert.Equal(t, "tech-interview", l.Resolve("tech-interview").ID)
}

func TestLoader_GetReturnsCopy(t *testing.T) {
	l, err := NewLoader(context.Background(), "")
	require.NoError(t, err)

	sc := l.Default()
	sc.Dimensions[0].Name = "changed"
	sc.Dimensions[0].KeyAspects[0] = "changed"

	again := l.Default()
	assert.Equal(t, "客户需求", again.Dimensions[0].Name)
	assert.Equal(t, "核心痛点", again.Dimensions[0].KeyAspects[0])
}

func TestLoader_Match(t *testing.T) {
	l, err := NewLoader(context.Background(), "")
	require.NoError(t, err)

	got := l.Match("招聘一名后端工程师的面试")
	assert.Equal(t, "tech-interview", got.ScenarioID)
	assert.ElementsMatch(t, []string{"面试", "招聘", "工程师"}, got.MatchedKeywords)
	// 0.4 + 3/5*0.5
	assert.InDelta(t, 0.7, got.Confidence, 1e-9)

	none := l.Match("周末去哪玩")
	assert.Equal(t, entity.DefaultScenarioID, none.ScenarioID)
	assert.InDelta(t, 0.3, none.Confidence, 1e-9)
	assert.Empty(t, none.Alternatives)
}

func TestLoader_SaveAndDeleteCustom(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	l, err := NewLoader(ctx, dir)
	require.NoError(t, err)

	now := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)
	saved, err := l.SaveCustom(ctx, entity.Scenario{
		Name:       "售后回访",
		Keywords:   []string{"售后"},
		Dimensions: []entity.Dimension{{ID: "service", Name: "服务体验"}},
	}, now)
	require.NoError(t, err)
	assert.Equal(t, "custom-20260501083000", saved.ID)
	assert.FileExists(t, filepath.Join(dir, "custom", saved.ID+".yaml"))
	assert.Equal(t, saved.ID, l.Match("售后问题").ScenarioID)

	// survives a reload from disk
	require.NoError(t, l.Reload(ctx))
	reloaded, err := l.Get(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "服务体验", reloaded.Dimensions[0].Name)

	require.NoError(t, l.DeleteCustom(ctx, saved.ID))
	_, err = l.Get(saved.ID)
	assert.ErrorIs(t, err, entity.ErrScenarioNotFound)
	assert.NoFileExists(t, filepath.Join(dir, "custom", saved.ID+".yaml"))
	assert.Equal(t, entity.DefaultScenarioID, l.Match("售后问题").ScenarioID)

	assert.ErrorIs(t, l.DeleteCustom(ctx, entity.DefaultScenarioID), entity.ErrPreconditionFailed)
	assert.ErrorIs(t, l.DeleteCustom(ctx, "custom-missing"), entity.ErrScenarioNotFound)
}

func TestLoader_SaveCustomRejects(t *testing.T) {
	ctx := context.Background()
	l, err := NewLoader(ctx, t.TempDir())
	require.NoError(t, err)

	_, err = l.SaveCustom(ctx, entity.Scenario{ID: "product-requirement", Name: "x",
		Dimensions: []entity.Dimension{{ID: "a", Name: "A"}}}, time.Now())
	assert.ErrorIs(t, err, entity.ErrInvalidScenario)

	_, err = l.SaveCustom(ctx, entity.Scenario{Name: "x"}, time.Now())
	assert.ErrorIs(t, err, entity.ErrInvalidScenario)

	noDir, err := NewLoader(ctx, "")
	require.NoError(t, err)
	_, err = noDir.SaveCustom(ctx, entity.Scenario{Name: "x"}, time.Now())
	assert.ErrorIs(t, err, entity.ErrPreconditionFailed)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		data     string
		wantErr  bool
		wantDims int
	}{
		{"json", "a.json", customJSON, false, 2},
		{"yaml", "a.yaml", "id: a\nname: A\ndimensions:\n  - {id: d, name: D}\n", false, 1},
		{"missing dimensions", "a.yaml", "id: a\nname: A\n", true, 0},
		{"bad id", "a.yaml", "id: Bad Id\nname: A\ndimensions:\n  - {id: d, name: D}\n", true, 0},
		{"duplicate dimension", "a.yaml", "id: a\nname: A\ndimensions:\n  - {id: d, name: D}\n  - {id: d, name: E}\n", true, 0},
		{"bad report type", "a.yaml", "id: a\nname: A\nreport: {type: fancy}\ndimensions:\n  - {id: d, name: D}\n", true, 0},
		{"threshold out of range", "a.yaml", "id: a\nname: A\ndimensions:\n  - {id: d, name: D}\nassessment:\n  recommendation_levels:\n    - {level: A, name: x, threshold: 7}\n", true, 0},
		{"unsupported extension", "a.toml", "id = 'a'", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := Parse([]byte(tt.data), tt.file)
			if tt.wantErr {
				assert.ErrorIs(t, err, entity.ErrInvalidScenario)
				return
			}
			require.NoError(t, err)
			assert.Len(t, sc.Dimensions, tt.wantDims)
		})
	}
}
