package report

import (
	"github.com/keval-dev/keval/internal/agent"
	"github.com/keval-dev/keval/internal/dataset"
	"github.com/keval-dev/keval/internal/judge"
	"github.com/keval-dev/keval/internal/result"
)

// RepetitionDetail is one unit's outcome inside a detail line.
type RepetitionDetail struct {
	Repetition    int                                `json:"repetition"`
	Status        result.Status                      `json:"status"`
	FailureStage  result.Stage                       `json:"failure_stage,omitempty"`
	FailureReason string                             `json:"failure_reason,omitempty"`
	Response      string                             `json:"response,omitempty"`
	Usage         *agent.Usage                       `json:"usage,omitempty"`
	CostUSD       float64                            `json:"cost_usd,omitempty"`
	DurationMS    int64                              `json:"duration_ms,omitempty"`
	Scores        map[judge.Metric]judge.MetricScore `json:"scores,omitempty"`
}

// DetailLine is one (sample, condition) pair with all its repetitions,
// written as a single JSONL line in the detailed output.
type DetailLine struct {
	SampleID         string                           `json:"sample_id"`
	Condition        string                           `json:"condition"`
	Question         string                           `json:"question"`
	GoldenAnswer     string                           `json:"golden_answer"`
	Repetitions      []RepetitionDetail               `json:"repetitions"`
	Metrics          map[judge.Metric]MetricAggregate `json:"metrics"`
	UnverifiedClaims []string                         `json:"unverified_claims,omitempty"`
	TotalUsage       agent.Usage                      `json:"total_usage"`
}

// Detail groups sorted records into per-(sample, condition) lines. Records
// must already be in collector order: condition, then sample, then
// repetition.
func Detail(records []result.Record, samples map[string]dataset.Sample, numRepetitions int) []DetailLine {
	var lines []DetailLine
	var current *DetailLine

	flush := func() {
		if current != nil {
			lines = append(lines, *current)
			current = nil
		}
	}

	for _, r := range records {
		if current == nil || current.Condition != r.Condition || current.SampleID != r.SampleID {
			flush()
			sample := samples[r.SampleID]
			current = &DetailLine{
				SampleID:     r.SampleID,
				Condition:    r.Condition,
				Question:     sample.Question,
				GoldenAnswer: sample.Answer,
			}
		}

		rep := RepetitionDetail{
			Repetition:    r.Repetition,
			Status:        r.Status,
			FailureStage:  r.Stage,
			FailureReason: r.Reason,
		}
		if r.Agent != nil {
			rep.Response = r.Agent.Response
			usage := r.Agent.Usage
			rep.Usage = &usage
			rep.CostUSD = r.Agent.CostUSD
			rep.DurationMS = r.Agent.DurationMS
			current.TotalUsage.InputTokens += usage.InputTokens
			current.TotalUsage.OutputTokens += usage.OutputTokens
		}
		if r.Judge != nil {
			rep.Scores = r.Judge.Scores
			current.UnverifiedClaims = appendUnique(current.UnverifiedClaims, r.Judge.UnverifiedClaims)
		}
		current.Repetitions = append(current.Repetitions, rep)
	}
	flush()

	for i := range lines {
		lines[i].Metrics = lineMetrics(lines[i].Repetitions, numRepetitions)
	}
	return lines
}

func lineMetrics(reps []RepetitionDetail, numRepetitions int) map[judge.Metric]MetricAggregate {
	scores := make(map[judge.Metric][]float64, len(judge.Metrics))
	for _, rep := range reps {
		if rep.Status != result.StatusSucceeded {
			continue
		}
		for m, ms := range rep.Scores {
			scores[m] = append(scores[m], float64(ms.Score))
		}
	}
	metrics := make(map[judge.Metric]MetricAggregate, len(judge.Metrics))
	for _, m := range judge.Metrics {
		metrics[m] = aggregateMetric(scores[m], numRepetitions)
	}
	return metrics
}

func appendUnique(dst, src []string) []string {
	for _, claim := range src {
		found := false
		for _, existing := range dst {
			if existing == claim {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, claim)
		}
	}
	return dst
}
