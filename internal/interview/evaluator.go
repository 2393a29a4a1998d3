package interview

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Evaluation is the rule-based verdict on a single answer
type Evaluation struct {
	NeedsFollowUp     bool     `json:"needs_follow_up"`
	SuggestDeeperEval bool     `json:"suggest_ai_eval"`
	Reason            string   `json:"reason,omitempty"`
	Signals           []Signal `json:"signals"`
}

type AnswerInput struct {
	Question   string
	Answer     string
	Dimension  string
	Options    []string
	IsFollowUp bool
}

// Evaluator scores answers against a rule set. It is stateless.
type Evaluator struct {
	rules Rules
}

func NewEvaluator(rules Rules) *Evaluator {
	return &Evaluator{rules: rules}
}

// Evaluate decides whether an answer is weak enough to warrant a follow-up
func (e *Evaluator) Evaluate(in AnswerInput) Evaluation {
	if in.IsFollowUp {
		return Evaluation{Signals: []Signal{}}
	}

	r := &e.rules
	answer := strings.TrimSpace(in.Answer)
	length := utf8.RuneCountInString(answer)
	sensitivity := r.SensitivityFor(in.Dimension)
	hasDigits := containsDigit(answer)

	signals := []Signal{}

	shortThreshold := int(float64(r.ShortBase) + sensitivity*r.ShortScale)
	if length < shortThreshold {
		signals = append(signals, SignalTooShort)
	}

	if containsAny(answer, r.VagueExpressions) {
		signals = append(signals, SignalVagueExpression)
	}

	if slices.Contains(r.GenericAnswers, answer) {
		signals = append(signals, SignalGenericAnswer)
	}

	if len(in.Options) > 0 && slices.Contains(in.Options, answer) && length < r.OptionOnlyMaxLen {
		signals = append(signals, SignalOptionOnly)
	}

	if slices.Contains(r.QuantitativeDimensions, in.Dimension) && !hasDigits && length < r.NoQuantMaxLen {
		signals = append(signals, SignalNoQuantification)
	}

	if len(in.Options) >= r.SingleSelectionMinOpts && !strings.Contains(answer, r.MultiPointSeparator) {
		selected := 0
		for _, opt := range in.Options {
			if strings.Contains(answer, opt) {
				selected++
			}
		}
		if selected <= 1 && length < r.SingleSelectionMaxLen {
			signals = append(signals, SignalSingleSelection)
		}
	}

	var sufficient []Signal
	if length > r.DetailedMinLen {
		sufficient = append(sufficient, SignalDetailedAnswer)
	}
	if strings.Contains(answer, r.MultiPointSeparator) && length > r.MultiPointMinLen {
		sufficient = append(sufficient, SignalMultiPointAnswer)
	}
	if hasDigits && length > r.QuantifiedMinLen {
		sufficient = append(sufficient, SignalQuantifiedAnswer)
	}

	score := 0.0
	for _, s := range signals {
		w, ok := r.SignalWeights[s]
		if !ok {
			w = r.UnknownSignalWeight
		}
		score += w
	}
	score *= sensitivity
	for _, s := range sufficient {
		score -= r.SufficiencyWeights[s]
	}

	switch {
	case score >= r.FollowUpThreshold:
		return Evaluation{NeedsFollowUp: true, Reason: r.ReasonFor(signals), Signals: signals}
	case score >= r.DeeperEvalThreshold && len(sufficient) == 0:
		return Evaluation{SuggestDeeperEval: true, Reason: r.ReasonFor(signals), Signals: signals}
	default:
		return Evaluation{Signals: signals}
	}
}

func containsDigit(s string) bool {
	for _, c := range s {
		if unicode.IsDigit(c) {
			return true
		}
	}
	return false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
