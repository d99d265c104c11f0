package report_test

import (
	"testing"

	"github.com/keval-dev/keval/internal/agent"
	"github.com/keval-dev/keval/internal/dataset"
	"github.com/keval-dev/keval/internal/judge"
	"github.com/keval-dev/keval/internal/report"
	"github.com/keval-dev/keval/internal/result"
)

func TestDetail(t *testing.T) {
	samples := map[string]dataset.Sample{
		"0": {ID: "0", Question: "q0", Answer: "a0"},
	}

	r1 := scoredRecord("baseline", "0", 0, 4, 5, 3)
	r1.Agent = &agent.Result{Response: "resp1", Usage: agent.Usage{InputTokens: 10, OutputTokens: 5}}
	r1.Judge.UnverifiedClaims = []string{"claim A", "claim B"}

	r2 := scoredRecord("baseline", "0", 1, 5, 5, 3)
	r2.Agent = &agent.Result{Response: "resp2", Usage: agent.Usage{InputTokens: 12, OutputTokens: 6}}
	r2.Judge.UnverifiedClaims = []string{"claim A"}

	r3 := result.Record{
		SampleID: "0", Condition: "baseline", Repetition: 2,
		Status: result.StatusFailed, Stage: result.StageJudge, Reason: "judge: malformed",
		Agent: &agent.Result{Response: "resp3", Usage: agent.Usage{InputTokens: 11, OutputTokens: 4}},
	}

	lines := report.Detail([]result.Record{r1, r2, r3}, samples, 3)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	line := lines[0]
	if line.Question != "q0" || line.GoldenAnswer != "a0" {
		t.Errorf("golden data missing: %+v", line)
	}
	if len(line.Repetitions) != 3 {
		t.Fatalf("got %d repetitions, want 3", len(line.Repetitions))
	}
	if line.Repetitions[2].Status != result.StatusFailed || line.Repetitions[2].FailureStage != result.StageJudge {
		t.Errorf("failed repetition not recorded: %+v", line.Repetitions[2])
	}

	// Claims deduped, usage summed across all repetitions including failed.
	if len(line.UnverifiedClaims) != 2 {
		t.Errorf("got claims %v, want deduped pair", line.UnverifiedClaims)
	}
	if line.TotalUsage.InputTokens != 33 || line.TotalUsage.OutputTokens != 15 {
		t.Errorf("unexpected total usage: %+v", line.TotalUsage)
	}

	// Metrics cover only succeeded repetitions: factual scores 4 and 5.
	factual := line.Metrics[judge.MetricFactualAdherence]
	if factual.SampleCount != 2 || factual.Mean != 4.5 {
		t.Errorf("unexpected factual aggregate: %+v", factual)
	}
}

func TestDetailSplitsPairs(t *testing.T) {
	samples := map[string]dataset.Sample{
		"0": {ID: "0", Question: "q0", Answer: "a0"},
		"1": {ID: "1", Question: "q1", Answer: "a1"},
	}
	records := []result.Record{
		scoredRecord("a", "0", 0, 4, 4, 4),
		scoredRecord("a", "1", 0, 4, 4, 4),
		scoredRecord("b", "0", 0, 4, 4, 4),
	}

	lines := report.Detail(records, samples, 1)
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if lines[0].Condition != "a" || lines[0].SampleID != "0" {
		t.Errorf("unexpected first line: %s/%s", lines[0].Condition, lines[0].SampleID)
	}
	if lines[2].Condition != "b" {
		t.Errorf("unexpected last line: %s/%s", lines[2].Condition, lines[2].SampleID)
	}
}
