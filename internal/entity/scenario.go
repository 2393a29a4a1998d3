package entity

// DefaultScenarioID is used when a session is created without a known scenario
const DefaultScenarioID = "product-requirement"

// ReportType selects how a scenario's report is assembled
type ReportType string

const (
	ReportTypeStandard   ReportType = "standard"
	ReportTypeAssessment ReportType = "assessment"
)

type Dimension struct {
	ID              string            `json:"id" yaml:"id"`
	Name            string            `json:"name" yaml:"name"`
	Description     string            `json:"description" yaml:"description"`
	KeyAspects      []string          `json:"key_aspects" yaml:"key_aspects"`
	Weight          *float64          `json:"weight,omitempty" yaml:"weight,omitempty"`
	ScoringCriteria map[string]string `json:"scoring_criteria,omitempty" yaml:"scoring_criteria,omitempty"`
}

type RecommendationLevel struct {
	Level       string  `json:"level" yaml:"level"`
	Name        string  `json:"name" yaml:"name"`
	Threshold   float64 `json:"threshold" yaml:"threshold"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Color       string  `json:"color,omitempty" yaml:"color,omitempty"`
}

type ReportConfig struct {
	Type     ReportType `json:"type" yaml:"type"`
	Template string     `json:"template,omitempty" yaml:"template,omitempty"`
}

type AssessmentConfig struct {
	RecommendationLevels []RecommendationLevel `json:"recommendation_levels" yaml:"recommendation_levels"`
}

// Scenario is a named set of dimensions. Sessions keep an immutable snapshot.
type Scenario struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Keywords    []string          `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Dimensions  []Dimension       `json:"dimensions" yaml:"dimensions"`
	Report      ReportConfig      `json:"report" yaml:"report"`
	Assessment  *AssessmentConfig `json:"assessment,omitempty" yaml:"assessment,omitempty"`
	Builtin     bool              `json:"builtin" yaml:"-"`
}

// IsAssessment reports whether answers in this scenario are scored
func (s *Scenario) IsAssessment() bool {
	return s.Report.Type == ReportTypeAssessment
}

// DimensionOrder returns dimension ids in declaration order
func (s *Scenario) DimensionOrder() []string {
	order := make([]string, 0, len(s.Dimensions))
	for _, d := range s.Dimensions {
		order = append(order, d.ID)
	}
	return order
}

// Dimension looks up a dimension by id
func (s *Scenario) Dimension(id string) (Dimension, bool) {
	for _, d := range s.Dimensions {
		if d.ID == id {
			return d, true
		}
	}
	return Dimension{}, false
}

// DimensionName returns the display name, falling back to the id
func (s *Scenario) DimensionName(id string) string {
	if d, ok := s.Dimension(id); ok && d.Name != "" {
		return d.Name
	}
	return id
}

// ScenarioSummary is the list view of a scenario
type ScenarioSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	DimensionCount int    `json:"dimension_count"`
	Builtin        bool   `json:"builtin"`
	Assessment     bool   `json:"assessment"`
}

// ScenarioMatch is the keyword-based suggestion for a topic
type ScenarioMatch struct {
	ScenarioID      string                `json:"scenario_id"`
	Confidence      float64               `json:"confidence"`
	MatchedKeywords []string              `json:"matched_keywords"`
	Alternatives    []ScenarioAlternative `json:"alternatives"`
}

type ScenarioAlternative struct {
	ScenarioID string `json:"scenario_id"`
	Score      int    `json:"score"`
}
