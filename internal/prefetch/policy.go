package prefetch

import "github.com/futig/interview-backend/internal/entity"

const (
	// triggerFormalCount formal answers in the current dimension start a prefetch of the next one
	triggerFormalCount = 2
	// dimensions with this many formal answers are not worth prefetching
	saturatedFormalCount = 3
)

// ShouldTrigger reports whether answering in dim warrants prefetching another dimension
func ShouldTrigger(session *entity.Session, dim string) bool {
	return session.FormalCount(dim) >= triggerFormalCount
}

// NextDimension walks the scenario order round-robin from current and returns
// the first other dimension that still needs formal questions
func NextDimension(session *entity.Session, current string) (string, bool) {
	order := session.Scenario.DimensionOrder()
	idx := -1
	for i, d := range order {
		if d == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", false
	}

	for i := 1; i < len(order); i++ {
		candidate := order[(idx+i)%len(order)]
		if state, ok := session.Dimensions[candidate]; ok && state.UserCompleted {
			continue
		}
		if session.FormalCount(candidate) < saturatedFormalCount {
			return candidate, true
		}
	}
	return "", false
}

// FirstDimension returns the first dimension without any answers
func FirstDimension(session *entity.Session) (string, bool) {
	for _, d := range session.Scenario.DimensionOrder() {
		if len(session.DimensionLogs(d)) == 0 {
			return d, true
		}
	}
	return "", false
}
