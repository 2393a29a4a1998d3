package scenario

import (
	"cmp"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed builtin
var embedded embed.FS

const (
	builtinDir   = "builtin"
	customDir    = "custom"
	customPrefix = "custom-"
)

// Loader keeps every known scenario in memory. Files under <dir>/builtin override the embedded
// defaults; <dir>/custom holds user scenarios.
type Loader struct {
	mu        sync.RWMutex
	dir       string
	scenarios map[string]entity.Scenario
	keywords  map[string][]string
}

// NewLoader loads the embedded scenarios and then the files under dir. Broken files are logged and skipped.
func NewLoader(ctx context.Context, dir string) (*Loader, error) {
	l := &Loader{dir: dir}
	if err := l.Reload(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload rebuilds the scenario cache from scratch
func (l *Loader) Reload(ctx context.Context) error {
	scenarios := make(map[string]entity.Scenario)

	var skipped error
	err := fs.WalkDir(embedded, builtinDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := embedded.ReadFile(p)
		if err != nil {
			return err
		}
		sc, err := Parse(data, path.Base(p))
		if err != nil {
			return fmt.Errorf("embedded scenario %s: %w", p, err)
		}
		sc.Builtin = true
		scenarios[sc.ID] = sc
		return nil
	})
	if err != nil {
		return fmt.Errorf("load embedded scenarios: %w", err)
	}

	if l.dir != "" {
		for _, sub := range []string{builtinDir, customDir} {
			loaded, errs := loadDir(filepath.Join(l.dir, sub))
			skipped = multierr.Append(skipped, errs)
			for _, sc := range loaded {
				sc.Builtin = sub == builtinDir
				scenarios[sc.ID] = sc
			}
		}
	}

	for _, e := range multierr.Errors(skipped) {
		ctxzap.Warn(ctx, "skipped scenario file", zap.Error(e))
	}

	if _, ok := scenarios[entity.DefaultScenarioID]; !ok {
		return fmt.Errorf("default scenario %q: %w", entity.DefaultScenarioID, entity.ErrScenarioNotFound)
	}

	keywords := make(map[string][]string)
	for _, sc := range scenarios {
		indexKeywords(keywords, sc)
	}

	l.mu.Lock()
	l.scenarios = scenarios
	l.keywords = keywords
	l.mu.Unlock()

	ctxzap.Info(ctx, "scenarios loaded", zap.Int("count", len(scenarios)), zap.String("dir", l.dir))
	return nil
}

func loadDir(dir string) ([]entity.Scenario, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read scenario dir %s: %w", dir, err)
	}

	var (
		loaded []entity.Scenario
		errs   error
	)
	for _, e := range entries {
		if e.IsDir() || !supportedFile(e.Name()) {
			continue
		}
		p := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(p)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read %s: %w", p, err))
			continue
		}
		sc, err := Parse(data, e.Name())
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("parse %s: %w", p, err))
			continue
		}
		loaded = append(loaded, sc)
	}
	return loaded, errs
}

func supportedFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func indexKeywords(index map[string][]string, sc entity.Scenario) {
	for _, kw := range sc.Keywords {
		key := strings.ToLower(kw)
		if !slices.Contains(index[key], sc.ID) {
			index[key] = append(index[key], sc.ID)
		}
	}
}

// Get returns a copy of the scenario
func (l *Loader) Get(id string) (entity.Scenario, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	sc, ok := l.scenarios[id]
	if !ok {
		return entity.Scenario{}, fmt.Errorf("scenario %q: %w", id, entity.ErrScenarioNotFound)
	}
	return clone(sc), nil
}

// Default returns the product-requirement scenario
func (l *Loader) Default() entity.Scenario {
	sc, _ := l.Get(entity.DefaultScenarioID)
	return sc
}

// Resolve returns the scenario for id, or the default one when id is empty or unknown
func (l *Loader) Resolve(id string) entity.Scenario {
	if id == "" {
		return l.Default()
	}
	sc, err := l.Get(id)
	if err != nil {
		return l.Default()
	}
	return sc
}

// List returns builtin scenarios first, each group ordered by name
func (l *Loader) List() []entity.ScenarioSummary {
	l.mu.RLock()
	list := make([]entity.ScenarioSummary, 0, len(l.scenarios))
	for _, sc := range l.scenarios {
		list = append(list, entity.ScenarioSummary{
			ID:             sc.ID,
			Name:           sc.Name,
			Description:    sc.Description,
			DimensionCount: len(sc.Dimensions),
			Builtin:        sc.Builtin,
			Assessment:     sc.IsAssessment(),
		})
	}
	l.mu.RUnlock()

	slices.SortFunc(list, func(a, b entity.ScenarioSummary) int {
		if a.Builtin != b.Builtin {
			if a.Builtin {
				return -1
			}
			return 1
		}
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return list
}

// Match suggests a scenario for topic by counting keyword hits
func (l *Loader) Match(topic string) entity.ScenarioMatch {
	lower := strings.ToLower(topic)

	l.mu.RLock()
	defer l.mu.RUnlock()

	scores := make(map[string]int)
	for kw, ids := range l.keywords {
		if !strings.Contains(lower, kw) {
			continue
		}
		for _, id := range ids {
			scores[id]++
		}
	}

	if len(scores) == 0 {
		return entity.ScenarioMatch{
			ScenarioID:      entity.DefaultScenarioID,
			Confidence:      0.3,
			MatchedKeywords: []string{},
			Alternatives:    []entity.ScenarioAlternative{},
		}
	}

	ranked := make([]entity.ScenarioAlternative, 0, len(scores))
	for id, score := range scores {
		ranked = append(ranked, entity.ScenarioAlternative{ScenarioID: id, Score: score})
	}
	slices.SortFunc(ranked, func(a, b entity.ScenarioAlternative) int {
		return cmp.Or(cmp.Compare(b.Score, a.Score), cmp.Compare(a.ScenarioID, b.ScenarioID))
	})

	best := l.scenarios[ranked[0].ScenarioID]
	matched := []string{}
	for _, kw := range best.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}

	confidence := math.Min(0.9, 0.4+float64(ranked[0].Score)/float64(max(len(best.Keywords), 1))*0.5)
	alternatives := ranked[1:min(len(ranked), 4)]

	return entity.ScenarioMatch{
		ScenarioID:      best.ID,
		Confidence:      math.Round(confidence*100) / 100,
		MatchedKeywords: matched,
		Alternatives:    slices.Clone(alternatives),
	}
}

// SaveCustom validates and persists a user scenario under <dir>/custom.
// An empty id is generated from the current time.
func (l *Loader) SaveCustom(ctx context.Context, sc entity.Scenario, now time.Time) (entity.Scenario, error) {
	if l.dir == "" {
		return entity.Scenario{}, fmt.Errorf("save custom scenario: %w: scenarios dir is not configured", entity.ErrPreconditionFailed)
	}
	if sc.ID == "" {
		sc.ID = customPrefix + now.Format("20060102150405")
	}
	if !strings.HasPrefix(sc.ID, customPrefix) {
		return entity.Scenario{}, fmt.Errorf("%w: custom scenario id must start with %q", entity.ErrInvalidScenario, customPrefix)
	}
	if sc.Report.Type == "" {
		sc.Report.Type = entity.ReportTypeStandard
	}
	sc.Builtin = false

	data, err := yaml.Marshal(sc)
	if err != nil {
		return entity.Scenario{}, fmt.Errorf("marshal scenario: %w", err)
	}
	// the file must load back exactly like any other scenario file
	if _, err := Parse(data, sc.ID+".yaml"); err != nil {
		return entity.Scenario{}, err
	}

	dir := filepath.Join(l.dir, customDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return entity.Scenario{}, fmt.Errorf("create custom dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, sc.ID+".yaml"), data, 0o644); err != nil {
		return entity.Scenario{}, fmt.Errorf("write scenario: %w", err)
	}

	l.mu.Lock()
	l.scenarios[sc.ID] = sc
	indexKeywords(l.keywords, sc)
	l.mu.Unlock()

	ctxzap.Info(ctx, "custom scenario saved", zap.String("scenario_id", sc.ID))
	return clone(sc), nil
}

// DeleteCustom removes a user scenario. Builtin scenarios cannot be deleted.
func (l *Loader) DeleteCustom(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	sc, ok := l.scenarios[id]
	if !ok {
		return fmt.Errorf("scenario %q: %w", id, entity.ErrScenarioNotFound)
	}
	if sc.Builtin || !strings.HasPrefix(id, customPrefix) {
		return fmt.Errorf("delete scenario %q: %w: builtin scenarios are read-only", id, entity.ErrPreconditionFailed)
	}

	for _, ext := range []string{".yaml", ".yml", ".json"} {
		err := os.Remove(filepath.Join(l.dir, customDir, id+ext))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove scenario file: %w", err)
		}
	}

	delete(l.scenarios, id)
	for kw, ids := range l.keywords {
		ids = slices.DeleteFunc(ids, func(s string) bool { return s == id })
		if len(ids) == 0 {
			delete(l.keywords, kw)
			continue
		}
		l.keywords[kw] = ids
	}

	ctxzap.Info(ctx, "custom scenario deleted", zap.String("scenario_id", id))
	return nil
}

func clone(sc entity.Scenario) entity.Scenario {
	sc.Keywords = slices.Clone(sc.Keywords)
	sc.Dimensions = slices.Clone(sc.Dimensions)
	for i := range sc.Dimensions {
		sc.Dimensions[i].KeyAspects = slices.Clone(sc.Dimensions[i].KeyAspects)
	}
	if sc.Assessment != nil {
		a := *sc.Assessment
		a.RecommendationLevels = slices.Clone(a.RecommendationLevels)
		sc.Assessment = &a
	}
	return sc
}
