// Package result holds the per-unit outcome records and the thread-safe
// collector the worker pool writes into.
package result

import (
	"sort"
	"sync"

	"github.com/keval-dev/keval/internal/agent"
	"github.com/keval-dev/keval/internal/judge"
)

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Stage names the pipeline step a failed unit died in.
type Stage string

const (
	StageAgent Stage = "agent"
	StageJudge Stage = "judge"
)

// Record is the outcome of one evaluation unit. Failed records keep whatever
// was produced before the failure: a judge-stage failure still carries the
// agent's response.
type Record struct {
	SampleID   string        `json:"sample_id"`
	Condition  string        `json:"condition"`
	Repetition int           `json:"repetition"`
	Status     Status        `json:"status"`
	Stage      Stage         `json:"failure_stage,omitempty"`
	Reason     string        `json:"failure_reason,omitempty"`
	Agent      *agent.Result `json:"agent,omitempty"`
	Judge      *judge.Result `json:"judge,omitempty"`
}

// Collector accumulates records from concurrent workers. The zero value is
// ready to use.
type Collector struct {
	mu      sync.Mutex
	records []Record
}

func (c *Collector) Add(r Record) {
	c.mu.Lock()
	c.records = append(c.records, r)
	c.mu.Unlock()
}

func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Counts returns the number of succeeded and failed records so far.
func (c *Collector) Counts() (succeeded, failed int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.records {
		if r.Status == StatusSucceeded {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// Records returns a copy sorted by (condition, sample ID, repetition) so
// downstream output is deterministic regardless of completion order.
func (c *Collector) Records() []Record {
	c.mu.Lock()
	out := make([]Record, len(c.records))
	copy(out, c.records)
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Condition != out[j].Condition {
			return out[i].Condition < out[j].Condition
		}
		if out[i].SampleID != out[j].SampleID {
			return out[i].SampleID < out[j].SampleID
		}
		return out[i].Repetition < out[j].Repetition
	})
	return out
}
