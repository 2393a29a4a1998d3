package interview

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/xeipuuv/gojsonschema"
)

const questionSchema = `{
	"type": "object",
	"required": ["question", "options"],
	"properties": {
		"question": {"type": "string", "minLength": 1},
		"options": {"type": "array", "items": {"type": "string"}},
		"follow_up_reason": {"type": ["string", "null"]},
		"conflict_description": {"type": ["string", "null"]}
	}
}`

var questionSchemaLoader = gojsonschema.NewStringLoader(questionSchema)

// parseStrategy extracts a JSON object from raw model output
type parseStrategy struct {
	name    string
	extract func(string) (map[string]any, bool)
}

var parseStrategies = []parseStrategy{
	{name: "direct", extract: parseDirect},
	{name: "code_block", extract: parseCodeBlock},
	{name: "brace_match", extract: parseBraceMatch},
	{name: "pattern", extract: parsePattern},
	{name: "repair", extract: parseRepair},
}

// ParseQuestion turns raw model output into a question payload.
// Strategies run in order and the first one yielding an object wins.
func ParseQuestion(raw string) (*entity.QuestionPayload, error) {
	var obj map[string]any
	for _, s := range parseStrategies {
		if m, ok := s.extract(raw); ok {
			obj = m
			break
		}
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: no json object found", entity.ErrParse)
	}

	result, err := gojsonschema.Validate(questionSchemaLoader, gojsonschema.NewGoLoader(obj))
	if err != nil {
		return nil, fmt.Errorf("%w: validate schema: %v", entity.ErrParse, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", entity.ErrParse, strings.Join(msgs, "; "))
	}

	return toPayload(obj)
}

type rawPayload struct {
	Question            string          `json:"question"`
	Options             []string        `json:"options"`
	MultiSelect         bool            `json:"multi_select"`
	IsFollowUp          bool            `json:"is_follow_up"`
	FollowUpReason      *string         `json:"follow_up_reason"`
	ConflictDetected    bool            `json:"conflict_detected"`
	ConflictDescription *string         `json:"conflict_description"`
	AIRecommendation    json.RawMessage `json:"ai_recommendation"`
}

func toPayload(obj map[string]any) (*entity.QuestionPayload, error) {
	// Booleans that came back as anything else are treated as false.
	for _, key := range []string{"multi_select", "is_follow_up", "conflict_detected"} {
		if _, ok := obj[key].(bool); !ok {
			obj[key] = false
		}
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrParse, err)
	}
	var raw rawPayload
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrParse, err)
	}

	payload := &entity.QuestionPayload{
		Question:            raw.Question,
		Options:             raw.Options,
		MultiSelect:         raw.MultiSelect,
		IsFollowUp:          raw.IsFollowUp,
		FollowUpReason:      raw.FollowUpReason,
		ConflictDetected:    raw.ConflictDetected,
		ConflictDescription: raw.ConflictDescription,
	}
	if payload.Options == nil {
		payload.Options = []string{}
	}
	if len(raw.AIRecommendation) > 0 && string(raw.AIRecommendation) != "null" {
		var rec entity.AIRecommendation
		if err := json.Unmarshal(raw.AIRecommendation, &rec); err == nil {
			payload.AIRecommendation = &rec
		}
	}
	return payload, nil
}

func decodeObject(s string) (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

func parseDirect(raw string) (map[string]any, bool) {
	cleaned := strings.TrimSpace(raw)
	if !strings.HasPrefix(cleaned, "{") || !strings.HasSuffix(cleaned, "}") {
		return nil, false
	}
	return decodeObject(cleaned)
}

func parseCodeBlock(raw string) (map[string]any, bool) {
	const fence = "```json"
	start := strings.Index(raw, fence)
	if start < 0 {
		return nil, false
	}
	start += len(fence)
	end := strings.Index(raw[start:], "```")
	if end <= 0 {
		return nil, false
	}
	return decodeObject(strings.TrimSpace(raw[start : start+end]))
}

func parseBraceMatch(raw string) (map[string]any, bool) {
	start := strings.Index(raw, "{")
	if start < 0 {
		return nil, false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return decodeObject(raw[start : i+1])
			}
		}
	}
	return nil, false
}

var objectPattern = regexp.MustCompile(`(?s)\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)

func parsePattern(raw string) (map[string]any, bool) {
	for _, match := range objectPattern.FindAllString(raw, -1) {
		m, ok := decodeObject(match)
		if !ok {
			continue
		}
		if _, has := m["question"]; has {
			return m, true
		}
	}
	return nil, false
}

// parseRepair closes a truncated object that already carries question and options
func parseRepair(raw string) (map[string]any, bool) {
	start := strings.Index(raw, "{")
	if start < 0 || !strings.Contains(raw, `"question"`) {
		return nil, false
	}
	content := raw[start:]
	if !strings.Contains(content, `"options"`) || !strings.Contains(content, `"question"`) {
		return nil, false
	}

	if strings.Count(content, "[") > strings.Count(content, "]") {
		content += "]"
	}
	if strings.Count(content, "{") > strings.Count(content, "}") {
		if !strings.Contains(content, `"multi_select"`) {
			content += `, "multi_select": false`
		}
		if !strings.Contains(content, `"is_follow_up"`) {
			content += `, "is_follow_up": false`
		}
		content += "}"
	}

	m, ok := decodeObject(content)
	if !ok {
		return nil, false
	}
	if _, has := m["question"]; !has {
		return nil, false
	}
	return m, true
}
