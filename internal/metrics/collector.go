package metrics

import (
	"fmt"
	"sync"

	"github.com/futig/interview-backend/internal/entity"
	"github.com/montanaflynn/stats"
)

const DefaultCapacity = 1000

// Recommendation thresholds
const (
	timeoutCritical    = 10.0
	timeoutWarning     = 5.0
	truncationWarning  = 50.0
	truncationHealthy  = 30.0
	promptLengthWarn   = 8000.0
	responseTimeWarnMs = 60000.0
)

// Collector keeps the most recent model call records in memory
type Collector struct {
	mu       sync.Mutex
	capacity int
	calls    []entity.ModelCallRecord
}

func NewCollector(capacity int) *Collector {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Collector{
		capacity: capacity,
		calls:    make([]entity.ModelCallRecord, 0, capacity),
	}
}

// Record appends a call, dropping the oldest one when full
func (c *Collector) Record(rec entity.ModelCallRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.calls) == c.capacity {
		copy(c.calls, c.calls[1:])
		c.calls = c.calls[:len(c.calls)-1]
	}
	c.calls = append(c.calls, rec)
}

func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = c.calls[:0]
}

// Report summarises the last lastN calls, or all of them when lastN <= 0
func (c *Collector) Report(lastN int) entity.MetricsReport {
	c.mu.Lock()
	calls := c.calls
	if lastN > 0 && lastN < len(calls) {
		calls = calls[len(calls)-lastN:]
	}
	calls = append([]entity.ModelCallRecord(nil), calls...)
	c.mu.Unlock()

	summary := summarize(calls)
	return entity.MetricsReport{
		Summary:         summary,
		Recommendations: recommend(summary),
	}
}

func summarize(calls []entity.ModelCallRecord) entity.MetricsSummary {
	s := entity.MetricsSummary{TotalCalls: len(calls), AnalyzedCalls: len(calls)}
	if len(calls) == 0 {
		return s
	}

	var responseTimes, promptLengths stats.Float64Data
	for _, call := range calls {
		if call.Success {
			s.SuccessfulCalls++
			responseTimes = append(responseTimes, float64(call.ResponseTimeMs))
		}
		if call.Timeout {
			s.TimeoutCalls++
		}
		s.TruncationEvents += len(call.TruncatedDocs)
		promptLengths = append(promptLengths, float64(call.PromptLength))
	}
	s.FailedCalls = s.TotalCalls - s.SuccessfulCalls
	s.TimeoutRate = percent(s.TimeoutCalls, s.TotalCalls)
	s.TruncationRate = percent(s.TruncationEvents, s.TotalCalls)

	if len(responseTimes) > 0 {
		avg, _ := responseTimes.Mean()
		maxRT, _ := responseTimes.Max()
		minRT, _ := responseTimes.Min()
		s.AvgResponseTimeMs = round2(avg)
		s.MaxResponseTimeMs = int64(maxRT)
		s.MinResponseTimeMs = int64(minRT)
	}

	avgPrompt, _ := promptLengths.Mean()
	maxPrompt, _ := promptLengths.Max()
	s.AvgPromptLength = round2(avgPrompt)
	s.MaxPromptLength = int(maxPrompt)

	return s
}

func recommend(s entity.MetricsSummary) []entity.Recommendation {
	recs := []entity.Recommendation{}
	if s.TotalCalls == 0 {
		return recs
	}

	switch {
	case s.TimeoutRate > timeoutCritical:
		recs = append(recs, entity.Recommendation{
			Level:      "critical",
			Message:    fmt.Sprintf("超时率过高 (%.2f%%)", s.TimeoutRate),
			Suggestion: "减少文档长度限制或启用智能摘要",
		})
	case s.TimeoutRate > timeoutWarning:
		recs = append(recs, entity.Recommendation{
			Level:   "warning",
			Message: fmt.Sprintf("超时率偏高 (%.2f%%)，需要关注", s.TimeoutRate),
		})
	}

	if s.TruncationRate > truncationWarning {
		recs = append(recs, entity.Recommendation{
			Level:      "warning",
			Message:    fmt.Sprintf("文档截断频繁 (%.2f%%)", s.TruncationRate),
			Suggestion: "启用智能摘要功能",
		})
	}

	if s.AvgPromptLength > promptLengthWarn {
		recs = append(recs, entity.Recommendation{
			Level:   "warning",
			Message: fmt.Sprintf("平均 Prompt 长度较大 (%.0f 字符)，可能影响响应速度", s.AvgPromptLength),
		})
	}

	if s.AvgResponseTimeMs > responseTimeWarnMs {
		recs = append(recs, entity.Recommendation{
			Level:      "warning",
			Message:    fmt.Sprintf("平均响应时间较长 (%.1f 秒)", s.AvgResponseTimeMs/1000),
			Suggestion: "缩短 Prompt 长度",
		})
	}

	if len(recs) == 0 && s.TimeoutRate < timeoutWarning && s.TruncationRate < truncationHealthy {
		recs = append(recs, entity.Recommendation{
			Level:      "info",
			Message:    "系统运行正常",
			Suggestion: "可适度增加文档长度限制以提升质量",
		})
	}

	return recs
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(n) / float64(total) * 100)
}

func round2(v float64) float64 {
	r, err := stats.Round(v, 2)
	if err != nil {
		return v
	}
	return r
}
