package runner_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/keval-dev/keval/internal/config"
	"github.com/keval-dev/keval/internal/dataset"
	"github.com/keval-dev/keval/internal/runner"
)

func TestPlan(t *testing.T) {
	samples := []dataset.Sample{
		{ID: "0", Question: "q0", Answer: "a0"},
		{ID: "1", Question: "q1", Answer: "a1"},
	}
	conditions := map[string]config.Condition{
		"with_docs": {SystemPrompt: "p", MCPServers: []string{"docs"}},
		"baseline":  {SystemPrompt: "p"},
	}
	servers := map[string]config.Server{
		"docs": {Type: config.ServerStdio, Command: "docs-mcp"},
	}

	units, err := runner.Plan(samples, conditions, servers, 3)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(units) != 12 {
		t.Fatalf("got %d units, want 12", len(units))
	}

	seen := map[runner.Unit]bool{}
	for _, u := range units {
		if seen[u] {
			t.Errorf("duplicate unit %+v", u)
		}
		seen[u] = true
		if u.Repetition < 0 || u.Repetition >= 3 {
			t.Errorf("unit %+v: repetition index outside [0,3)", u)
		}
	}

	// Samples outer, conditions sorted, repetitions inner and zero-based.
	want := []runner.Unit{
		{SampleID: "0", Condition: "baseline", Repetition: 0},
		{SampleID: "0", Condition: "baseline", Repetition: 1},
		{SampleID: "0", Condition: "baseline", Repetition: 2},
		{SampleID: "0", Condition: "with_docs", Repetition: 0},
	}
	for i, w := range want {
		if units[i] != w {
			t.Errorf("unit %d: got %+v, want %+v", i, units[i], w)
		}
	}
	if last := units[len(units)-1]; last != (runner.Unit{SampleID: "1", Condition: "with_docs", Repetition: 2}) {
		t.Errorf("unexpected last unit: %+v", last)
	}
}

func TestPlanDuplicateSampleIDs(t *testing.T) {
	samples := []dataset.Sample{{ID: "0"}, {ID: "0"}}
	conditions := map[string]config.Condition{"c": {SystemPrompt: "p"}}

	_, err := runner.Plan(samples, conditions, nil, 1)
	if err == nil {
		t.Fatal("expected error")
	}
	var planErr *runner.PlanError
	if !errors.As(err, &planErr) {
		t.Fatalf("expected *runner.PlanError, got %T", err)
	}
	if !strings.Contains(err.Error(), `duplicate sample id "0"`) {
		t.Errorf("error %q does not name the duplicate", err)
	}
}

func TestPlanUnknownServer(t *testing.T) {
	samples := []dataset.Sample{{ID: "0"}}
	conditions := map[string]config.Condition{
		"a": {SystemPrompt: "p", MCPServers: []string{"ghost"}},
		"b": {SystemPrompt: "p", MCPServers: []string{"phantom"}},
	}

	_, err := runner.Plan(samples, conditions, map[string]config.Server{}, 1)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, name := range []string{"ghost", "phantom"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not name server %q", err, name)
		}
	}
}
