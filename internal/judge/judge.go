// Package judge defines the port for the scoring model and its
// OpenAI-compatible adapter.
package judge

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Metric names the three fixed quality dimensions every response is scored
// on. The set is closed; the validator rejects judge output that adds,
// drops, or renames a metric.
type Metric string

const (
	MetricFactualAdherence Metric = "factual_adherence"
	MetricCompleteness     Metric = "completeness"
	MetricHelpfulness      Metric = "helpfulness_and_clarity"
)

// Metrics lists all metrics in canonical (reporting) order.
var Metrics = []Metric{MetricFactualAdherence, MetricCompleteness, MetricHelpfulness}

const (
	// MinScore and MaxScore bound every metric's integer score.
	MinScore = 1
	MaxScore = 5
)

// ScoreRequest carries everything one judge invocation needs.
type ScoreRequest struct {
	Question     string
	GoldenAnswer string
	Response     string
}

type MetricScore struct {
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
}

// Result is the structured output of one judge call.
type Result struct {
	Scores           map[Metric]MetricScore `json:"scores"`
	UnverifiedClaims []string               `json:"unverified_claims"`
}

type Judge interface {
	Score(ctx context.Context, req ScoreRequest) (*Result, error)
}

// Error is a failed or structurally invalid judge invocation. Validation
// failures are transient: the same query may produce well-formed output on
// re-invocation.
type Error struct {
	Reason    string
	Transient bool
}

func (e *Error) Error() string { return "judge: " + e.Reason }

// TransientError reports retryability to the retry decorator.
func (e *Error) TransientError() bool { return e.Transient }

// Validate enforces the structural contract on a judge result: exactly the
// expected metrics, each with an in-range integer score and non-empty
// reasoning. Violations are never coerced to defaults; they surface as a
// transient error so the judge call is retried.
func (r *Result) Validate() error {
	var problems []string
	for _, m := range Metrics {
		ms, ok := r.Scores[m]
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: missing", m))
			continue
		}
		if ms.Score < MinScore || ms.Score > MaxScore {
			problems = append(problems, fmt.Sprintf("%s: score %d outside [%d,%d]", m, ms.Score, MinScore, MaxScore))
		}
		if strings.TrimSpace(ms.Reasoning) == "" {
			problems = append(problems, fmt.Sprintf("%s: reasoning is empty", m))
		}
	}
	for _, m := range sortedMetricKeys(r.Scores) {
		if !isKnownMetric(m) {
			problems = append(problems, fmt.Sprintf("%s: unexpected metric", m))
		}
	}
	if len(problems) > 0 {
		return &Error{Reason: "invalid judge output: " + strings.Join(problems, "; "), Transient: true}
	}
	return nil
}

func isKnownMetric(m Metric) bool {
	for _, known := range Metrics {
		if m == known {
			return true
		}
	}
	return false
}

// sortedMetricKeys keeps validation error text deterministic regardless of
// map iteration order.
func sortedMetricKeys(scores map[Metric]MetricScore) []Metric {
	keys := make([]Metric, 0, len(scores))
	for m := range scores {
		keys = append(keys, m)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
