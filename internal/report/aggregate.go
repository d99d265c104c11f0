// Package report aggregates unit records into per-condition statistics and
// writes the run's output files.
package report

import (
	"math"
	"sort"

	"github.com/keval-dev/keval/internal/judge"
	"github.com/keval-dev/keval/internal/result"
)

// MetricAggregate summarizes one metric across a set of succeeded units.
// StdDev is nil when the run was configured with fewer than three
// repetitions; too few repeats make the spread statistically meaningless.
type MetricAggregate struct {
	Mean        float64  `json:"mean"`
	StdDev      *float64 `json:"stddev,omitempty"`
	SampleCount int      `json:"sample_count"`
}

// ConditionAggregate is the rollup for one condition. Failed units are
// excluded from metric statistics but counted.
type ConditionAggregate struct {
	Condition string                           `json:"condition"`
	Metrics   map[judge.Metric]MetricAggregate `json:"metrics"`
	Succeeded int                              `json:"succeeded"`
	Failed    int                              `json:"failed"`
}

// Aggregate rolls records up per condition, sorted by condition name. The
// result depends only on the record set, never on its order.
func Aggregate(records []result.Record, numRepetitions int) []ConditionAggregate {
	byCondition := make(map[string][]result.Record)
	for _, r := range records {
		byCondition[r.Condition] = append(byCondition[r.Condition], r)
	}

	names := make([]string, 0, len(byCondition))
	for name := range byCondition {
		names = append(names, name)
	}
	sort.Strings(names)

	aggregates := make([]ConditionAggregate, 0, len(names))
	for _, name := range names {
		agg := ConditionAggregate{
			Condition: name,
			Metrics:   make(map[judge.Metric]MetricAggregate, len(judge.Metrics)),
		}
		scores := make(map[judge.Metric][]float64, len(judge.Metrics))
		for _, r := range byCondition[name] {
			if r.Status != result.StatusSucceeded {
				agg.Failed++
				continue
			}
			agg.Succeeded++
			for m, ms := range r.Judge.Scores {
				scores[m] = append(scores[m], float64(ms.Score))
			}
		}
		for _, m := range judge.Metrics {
			agg.Metrics[m] = aggregateMetric(scores[m], numRepetitions)
		}
		aggregates = append(aggregates, agg)
	}
	return aggregates
}

func aggregateMetric(values []float64, numRepetitions int) MetricAggregate {
	agg := MetricAggregate{SampleCount: len(values)}
	if len(values) == 0 {
		return agg
	}
	agg.Mean = mean(values)
	if numRepetitions >= 3 {
		sd := sampleStdDev(values, agg.Mean)
		agg.StdDev = &sd
	}
	return agg
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev is the N-1 (Bessel-corrected) standard deviation. Fewer than
// two values yield zero.
func sampleStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
