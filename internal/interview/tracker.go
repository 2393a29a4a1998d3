package interview

import (
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/futig/interview-backend/internal/entity"
)

// BudgetExhaustedReason names the follow-up cap that was hit first
type BudgetExhaustedReason string

const (
	BudgetTotalExhausted     BudgetExhaustedReason = "total_budget_exhausted"
	BudgetDimensionExhausted BudgetExhaustedReason = "dimension_budget_exhausted"
	BudgetQuestionExhausted  BudgetExhaustedReason = "question_budget_exhausted"
)

var budgetReasonText = map[BudgetExhaustedReason]string{
	BudgetTotalExhausted:     "会话追问预算已用完",
	BudgetDimensionExhausted: "当前维度追问预算已用完",
	BudgetQuestionExhausted:  "当前问题追问次数已达上限",
}

// Text returns the user-facing description of the reason
func (r BudgetExhaustedReason) Text() string {
	if t, ok := budgetReasonText[r]; ok {
		return t
	}
	return "追问预算已用完"
}

type BudgetStatus struct {
	TotalUsed             int                   `json:"total_used"`
	TotalBudget           int                   `json:"total_budget"`
	DimensionUsed         int                   `json:"dimension_used"`
	DimensionBudget       int                   `json:"dimension_budget"`
	CurrentQuestionUsed   int                   `json:"current_question_used"`
	CurrentQuestionBudget int                   `json:"current_question_budget"`
	CanFollowUp           bool                  `json:"can_follow_up"`
	ExhaustedReason       BudgetExhaustedReason `json:"budget_exhausted_reason,omitempty"`
}

type SaturationLevel string

const (
	SaturationLow    SaturationLevel = "low"
	SaturationMedium SaturationLevel = "medium"
	SaturationHigh   SaturationLevel = "high"
)

type Saturation struct {
	Score          float64         `json:"saturation_score"`
	CoverageScore  float64         `json:"coverage_score"`
	DepthScore     float64         `json:"depth_score"`
	VolumeScore    float64         `json:"volume_score"`
	CoveredAspects []string        `json:"covered_aspects"`
	Level          SaturationLevel `json:"level"`
}

type Fatigue struct {
	Score               float64  `json:"fatigue_score"`
	Signals             []Signal `json:"detected_signals"`
	SensitivityModifier float64  `json:"sensitivity_modifier"`
	ForceProgress       bool     `json:"should_force_progress"`
}

// Tracker computes budget, saturation and fatigue from session state
type Tracker struct {
	rules Rules
}

func NewTracker(rules Rules) *Tracker {
	return &Tracker{rules: rules}
}

// Budget reports follow-up usage against the mode caps. Caps are checked total, dimension, question.
func (t *Tracker) Budget(session *entity.Session, dim string) BudgetStatus {
	mode := session.InterviewMode.Config()
	dimLogs := session.DimensionLogs(dim)

	status := BudgetStatus{
		TotalUsed:             session.FollowUpCount(""),
		TotalBudget:           mode.TotalFollowUpBudget,
		DimensionUsed:         session.FollowUpCount(dim),
		DimensionBudget:       mode.FollowUpBudgetPerDim,
		CurrentQuestionUsed:   followUpsSinceLastFormal(dimLogs),
		CurrentQuestionBudget: mode.MaxFollowUpsPerFormal,
		CanFollowUp:           true,
	}

	switch {
	case status.TotalUsed >= status.TotalBudget:
		status.CanFollowUp = false
		status.ExhaustedReason = BudgetTotalExhausted
	case status.DimensionUsed >= status.DimensionBudget:
		status.CanFollowUp = false
		status.ExhaustedReason = BudgetDimensionExhausted
	case status.CurrentQuestionUsed >= status.CurrentQuestionBudget:
		status.CanFollowUp = false
		status.ExhaustedReason = BudgetQuestionExhausted
	}

	return status
}

func followUpsSinceLastFormal(dimLogs []entity.LogEntry) int {
	last := -1
	for i, entry := range dimLogs {
		if !entry.IsFollowUp {
			last = i
		}
	}
	if last < 0 {
		return 0
	}
	n := 0
	for _, entry := range dimLogs[last+1:] {
		if entry.IsFollowUp {
			n++
		}
	}
	return n
}

// Saturation estimates how much of a dimension has been covered
func (t *Tracker) Saturation(session *entity.Session, dim string) Saturation {
	r := &t.rules
	dimLogs := session.DimensionLogs(dim)
	if len(dimLogs) == 0 {
		return Saturation{CoveredAspects: []string{}, Level: SaturationLow}
	}

	answers := make([]string, 0, len(dimLogs))
	questions := make([]string, 0, len(dimLogs))
	volume := 0
	for _, entry := range dimLogs {
		answers = append(answers, entry.Answer)
		questions = append(questions, entry.Question)
		volume += utf8.RuneCountInString(entry.Answer)
	}
	allAnswers := strings.Join(answers, " ")
	combined := allAnswers + strings.Join(questions, " ")

	var aspects []string
	if d, ok := session.Scenario.Dimension(dim); ok {
		aspects = d.KeyAspects
	}

	covered := []string{}
	for _, aspect := range aspects {
		if strings.Contains(combined, aspect) || containsAny(combined, r.AspectSynonyms[aspect]) {
			covered = append(covered, aspect)
		}
	}

	coverage := 0.0
	if len(aspects) > 0 {
		coverage = float64(len(covered)) / float64(len(aspects))
	}

	depthSignals := 0
	if containsDigit(allAnswers) {
		depthSignals++
	}
	for _, words := range [][]string{r.ExampleWords, r.ContrastWords, r.CausalWords, r.ListSeparators} {
		if containsAny(allAnswers, words) {
			depthSignals++
		}
	}
	depth := math.Min(1, float64(depthSignals)/float64(r.DepthSignals))
	vol := math.Min(1, float64(volume)/float64(r.VolumeTarget))

	score := coverage*0.4 + depth*0.3 + vol*0.3

	level := SaturationLow
	switch {
	case score >= r.SaturationHigh:
		level = SaturationHigh
	case score >= r.SaturationMedium:
		level = SaturationMedium
	}

	return Saturation{
		Score:          round2(score),
		CoverageScore:  round2(coverage),
		DepthScore:     round2(depth),
		VolumeScore:    round2(vol),
		CoveredAspects: covered,
		Level:          level,
	}
}

// Fatigue looks at the most recent answers of the whole session for disengagement
func (t *Tracker) Fatigue(session *entity.Session, dim string) Fatigue {
	r := &t.rules
	log := session.InterviewLog
	recent := log[max(0, len(log)-r.FatigueWindow):]

	signals := []Signal{}
	score := 0.0

	short, optionOnly := 0, 0
	for _, entry := range recent {
		if utf8.RuneCountInString(strings.TrimSpace(entry.Answer)) < r.FatigueShortLen {
			short++
		}
		if len(entry.Options) > 0 && slices.Contains(entry.Options, entry.Answer) &&
			utf8.RuneCountInString(entry.Answer) < r.OptionOnlyMaxLen {
			optionOnly++
		}
	}

	add := func(s Signal) {
		signals = append(signals, s)
		score += r.FatigueWeights[s]
	}
	if short >= r.FatigueStreak {
		add(SignalConsecutiveShort)
	}
	if optionOnly >= r.FatigueStreak {
		add(SignalOptionOnlyStreak)
	}
	if len(session.DimensionLogs(dim)) >= r.FatigueDimensionLogs {
		add(SignalSameDimensionTooLong)
	}
	if len(log) >= r.FatigueTotalLogs {
		add(SignalTotalQuestionsHigh)
	}

	score = math.Min(1, score)

	return Fatigue{
		Score:               round2(score),
		Signals:             signals,
		SensitivityModifier: round2(1 - score*0.5),
		ForceProgress:       score >= r.FatigueForce,
	}
}

// Coverage is floor(100*formal/required) capped at 100. A non-positive requirement counts as covered.
func Coverage(formal, required int) int {
	if required <= 0 {
		return 100
	}
	return min(100, formal*100/required)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
