package report_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/keval-dev/keval/internal/judge"
	"github.com/keval-dev/keval/internal/report"
)

func renderSummary() *report.Summary {
	sd := 1.0
	return &report.Summary{
		RunID:        "0a1b2c3d-4e5f-6789-abcd-ef0123456789",
		Name:         "kb-eval",
		PlannedUnits: 6,
		Succeeded:    5,
		Failed:       1,
		Conditions: []report.ConditionAggregate{
			{
				Condition: "baseline",
				Metrics: map[judge.Metric]report.MetricAggregate{
					judge.MetricFactualAdherence: {Mean: 4.0, StdDev: &sd, SampleCount: 3},
					judge.MetricCompleteness:     {Mean: 4.33, StdDev: &sd, SampleCount: 3},
					judge.MetricHelpfulness:      {Mean: 3.67, StdDev: &sd, SampleCount: 3},
				},
				Succeeded: 3,
			},
			{
				Condition: "with_docs",
				Metrics: map[judge.Metric]report.MetricAggregate{
					judge.MetricFactualAdherence: {Mean: 4.5, SampleCount: 2},
					judge.MetricCompleteness:     {Mean: 5.0, SampleCount: 2},
					judge.MetricHelpfulness:      {SampleCount: 0},
				},
				Succeeded: 2,
				Failed:    1,
			},
		},
	}
}

func TestRenderTable(t *testing.T) {
	var buf strings.Builder
	if err := report.Render(renderSummary(), "table", &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"CONDITION", "baseline", "with_docs", "4.00 ±1.00", "4.50", "6 planned, 5 succeeded, 1 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "-") {
		t.Errorf("empty metric should render as dash:\n%s", out)
	}
}

func TestRenderMarkdown(t *testing.T) {
	var buf strings.Builder
	if err := report.Render(renderSummary(), "markdown", &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "| Condition | Units | Factual | Complete | Helpful |") {
		t.Errorf("missing markdown header:\n%s", out)
	}
	if !strings.Contains(out, "| baseline | 3/3 | 4.00 ±1.00 |") {
		t.Errorf("missing baseline row:\n%s", out)
	}
}

func TestRenderJSON(t *testing.T) {
	var buf strings.Builder
	if err := report.Render(renderSummary(), "json", &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	var decoded report.Summary
	if err := json.Unmarshal([]byte(buf.String()), &decoded); err != nil {
		t.Fatalf("json output does not parse: %v", err)
	}
	if decoded.Name != "kb-eval" || len(decoded.Conditions) != 2 {
		t.Errorf("unexpected decoded summary: %+v", decoded)
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	var buf strings.Builder
	if err := report.Render(renderSummary(), "xml", &buf); err == nil {
		t.Error("expected error for unknown format")
	}
}
