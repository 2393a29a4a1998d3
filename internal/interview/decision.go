package interview

import (
	"fmt"

	"github.com/futig/interview-backend/internal/entity"
)

// Decision factors
const (
	FactorBudgetExhausted   = "budget_exhausted"
	FactorHighSaturation    = "high_saturation"
	FactorUserFatigue       = "user_fatigue"
	FactorSufficientAnswer  = "sufficient_answer"
	FactorMediumSaturation  = "medium_saturation_limit"
	FactorElevatedThreshold = "elevated_threshold"
	FactorRuleBased         = "rule_based_follow_up"
	FactorUserSkipped       = "user_skipped"
)

type Decision struct {
	ShouldFollowUp bool         `json:"should_follow_up"`
	Reason         string       `json:"reason"`
	Factors        []string     `json:"decision_factors"`
	Budget         BudgetStatus `json:"budget_status"`
	Saturation     *Saturation  `json:"saturation,omitempty"`
	Fatigue        *Fatigue     `json:"fatigue,omitempty"`
}

// Engine combines the evaluator verdict with budget, saturation and fatigue
type Engine struct {
	rules     Rules
	tracker   *Tracker
	evaluator *Evaluator
}

func NewEngine(rules Rules) *Engine {
	return &Engine{
		rules:     rules,
		tracker:   NewTracker(rules),
		evaluator: NewEvaluator(rules),
	}
}

func (e *Engine) Evaluator() *Evaluator { return e.evaluator }

func (e *Engine) Tracker() *Tracker { return e.tracker }

func (e *Engine) Rules() Rules { return e.rules }

// Decide applies the ordered rules; the first matching rule wins
func (e *Engine) Decide(session *entity.Session, dim string, eval Evaluation) Decision {
	budget := e.tracker.Budget(session, dim)
	if !budget.CanFollowUp {
		return Decision{
			Reason:  budget.ExhaustedReason.Text(),
			Factors: []string{FactorBudgetExhausted},
			Budget:  budget,
		}
	}

	saturation := e.tracker.Saturation(session, dim)
	if saturation.Level == SaturationHigh {
		return Decision{
			Reason:     fmt.Sprintf("信息已充分（饱和度 %.0f%%）", saturation.Score*100),
			Factors:    []string{FactorHighSaturation},
			Budget:     budget,
			Saturation: &saturation,
		}
	}

	fatigue := e.tracker.Fatigue(session, dim)
	decision := Decision{
		Budget:     budget,
		Saturation: &saturation,
		Fatigue:    &fatigue,
	}

	if fatigue.ForceProgress {
		decision.Reason = "检测到用户疲劳，暂停追问"
		decision.Factors = []string{FactorUserFatigue}
		return decision
	}

	if !eval.NeedsFollowUp {
		decision.Reason = "回答已充分"
		decision.Factors = []string{FactorSufficientAnswer}
		return decision
	}

	if saturation.Level == SaturationMedium && budget.CurrentQuestionUsed >= 1 {
		decision.Reason = "信息接近充分，不再追问"
		decision.Factors = []string{FactorMediumSaturation}
		return decision
	}

	var factors []string
	if fatigue.Score >= e.rules.FatigueElevated {
		factors = append(factors, FactorElevatedThreshold)
		if len(eval.Signals) < e.rules.ElevatedMinSignals {
			decision.Reason = "用户可能疲劳，跳过非关键追问"
			decision.Factors = factors
			return decision
		}
	}

	decision.ShouldFollowUp = true
	decision.Reason = eval.Reason
	if decision.Reason == "" {
		decision.Reason = "需要进一步了解"
	}
	decision.Factors = append(factors, FactorRuleBased)
	return decision
}

// ReevaluateLast runs the evaluator and the decision rules against the last entry of a dimension.
// It is used to confirm a follow-up question that was generated earlier.
func (e *Engine) ReevaluateLast(session *entity.Session, dim string) (Evaluation, Decision, bool) {
	logs := session.DimensionLogs(dim)
	if len(logs) == 0 {
		return Evaluation{}, Decision{}, false
	}
	last := logs[len(logs)-1]
	eval := e.evaluator.Evaluate(AnswerInput{
		Question:   last.Question,
		Answer:     last.Answer,
		Dimension:  dim,
		Options:    last.Options,
		IsFollowUp: last.IsFollowUp,
	})
	if userSkipped(session, dim) {
		return eval, Decision{
			Reason:  "用户已跳过追问",
			Factors: []string{FactorUserSkipped},
			Budget:  e.tracker.Budget(session, dim),
		}, true
	}
	return eval, e.Decide(session, dim, eval), true
}

// userSkipped reports whether the user waived follow-ups on the current formal question
// or closed the dimension by hand
func userSkipped(session *entity.Session, dim string) bool {
	if state, ok := session.Dimensions[dim]; ok && state.UserCompleted {
		return true
	}
	idx := session.LastFormalIndex(dim)
	return idx >= 0 && session.InterviewLog[idx].UserSkipFollowUp
}

// DefersToModel reports whether the rules left the follow-up call to the model:
// the evaluator asked for a deeper look and only its own verdict blocked a follow-up.
func (d Decision) DefersToModel(eval Evaluation) bool {
	return !d.ShouldFollowUp && eval.SuggestDeeperEval &&
		len(d.Factors) == 1 && d.Factors[0] == FactorSufficientAnswer
}

// PermitsFollowUp reports whether a generated follow-up for the dimension may stand
func (e *Engine) PermitsFollowUp(session *entity.Session, dim string) bool {
	eval, decision, ok := e.ReevaluateLast(session, dim)
	if !ok {
		return false
	}
	return decision.ShouldFollowUp || decision.DefersToModel(eval)
}
