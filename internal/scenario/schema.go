package scenario

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

const scenarioSchema = `{
  "type": "object",
  "required": ["id", "name", "dimensions"],
  "properties": {
    "id": {"type": "string", "pattern": "^[a-z0-9][a-z0-9_-]{0,63}$"},
    "name": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "keywords": {"type": "array", "items": {"type": "string"}},
    "dimensions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "name"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "key_aspects": {"type": "array", "items": {"type": "string"}},
          "weight": {"type": "number", "minimum": 0},
          "scoring_criteria": {"type": "object", "additionalProperties": {"type": "string"}}
        }
      }
    },
    "report": {
      "type": "object",
      "properties": {
        "type": {"enum": ["standard", "assessment"]},
        "template": {"type": "string"}
      }
    },
    "assessment": {
      "type": "object",
      "properties": {
        "recommendation_levels": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["level", "name", "threshold"],
            "properties": {
              "level": {"type": "string"},
              "name": {"type": "string"},
              "threshold": {"type": "number", "minimum": 0, "maximum": 5}
            }
          }
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(scenarioSchema)

// Parse decodes a scenario file (JSON or YAML, chosen by extension) and validates it
func Parse(data []byte, filename string) (entity.Scenario, error) {
	var doc any
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return entity.Scenario{}, fmt.Errorf("%w: decode json: %v", entity.ErrInvalidScenario, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return entity.Scenario{}, fmt.Errorf("%w: decode yaml: %v", entity.ErrInvalidScenario, err)
		}
	default:
		return entity.Scenario{}, fmt.Errorf("%w: unsupported file %s", entity.ErrInvalidScenario, filename)
	}

	if err := validateDocument(doc); err != nil {
		return entity.Scenario{}, err
	}

	// round-trip through json so yaml and json files share the struct tags
	raw, err := json.Marshal(doc)
	if err != nil {
		return entity.Scenario{}, fmt.Errorf("%w: %v", entity.ErrInvalidScenario, err)
	}
	var sc entity.Scenario
	if err := json.Unmarshal(raw, &sc); err != nil {
		return entity.Scenario{}, fmt.Errorf("%w: %v", entity.ErrInvalidScenario, err)
	}
	if sc.Report.Type == "" {
		sc.Report.Type = entity.ReportTypeStandard
	}

	if err := Validate(sc); err != nil {
		return entity.Scenario{}, err
	}
	return sc, nil
}

func validateDocument(doc any) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: schema validation: %v", entity.ErrInvalidScenario, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", entity.ErrInvalidScenario, strings.Join(msgs, "; "))
	}
	return nil
}

// Validate checks the rules the schema cannot express
func Validate(sc entity.Scenario) error {
	if len(sc.Dimensions) == 0 {
		return fmt.Errorf("%w: scenario %q has no dimensions", entity.ErrInvalidScenario, sc.ID)
	}
	seen := make(map[string]struct{}, len(sc.Dimensions))
	for _, d := range sc.Dimensions {
		if d.ID == "" {
			return fmt.Errorf("%w: dimension without id", entity.ErrInvalidScenario)
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("%w: duplicate dimension %q", entity.ErrInvalidScenario, d.ID)
		}
		seen[d.ID] = struct{}{}
	}
	if sc.Report.Type == "" {
		return nil
	}
	if sc.Report.Type != entity.ReportTypeStandard && sc.Report.Type != entity.ReportTypeAssessment {
		return fmt.Errorf("%w: unknown report type %q", entity.ErrInvalidScenario, sc.Report.Type)
	}
	return nil
}
