package runner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/keval-dev/keval/internal/config"
	"github.com/keval-dev/keval/internal/dataset"
)

// Unit is one planned evaluation: a sample queried under a condition, one
// repetition of possibly several.
type Unit struct {
	SampleID   string
	Condition  string
	Repetition int
}

// PlanError is a fatal planning defect. Unlike per-unit failures it aborts
// the run before any unit executes; no output files are written.
type PlanError struct {
	Problems []string
}

func (e *PlanError) Error() string {
	return "invalid evaluation plan: " + strings.Join(e.Problems, "; ")
}

// Plan expands samples x conditions x repetitions into the full unit list in
// deterministic order: samples in dataset order, condition names sorted,
// repetitions innermost. Repetition indices are zero-based. All planning
// problems are collected before failing.
func Plan(samples []dataset.Sample, conditions map[string]config.Condition, servers map[string]config.Server, numRepetitions int) ([]Unit, error) {
	var problems []string

	seen := make(map[string]bool, len(samples))
	for _, s := range samples {
		if seen[s.ID] {
			problems = append(problems, fmt.Sprintf("duplicate sample id %q", s.ID))
		}
		seen[s.ID] = true
	}

	conditionNames := make([]string, 0, len(conditions))
	for name := range conditions {
		conditionNames = append(conditionNames, name)
	}
	sort.Strings(conditionNames)

	for _, name := range conditionNames {
		for _, ref := range conditions[name].MCPServers {
			if _, ok := servers[ref]; !ok {
				problems = append(problems, fmt.Sprintf("condition %q references unknown MCP server %q", name, ref))
			}
		}
	}

	if len(problems) > 0 {
		return nil, &PlanError{Problems: problems}
	}

	units := make([]Unit, 0, len(samples)*len(conditionNames)*numRepetitions)
	for _, s := range samples {
		for _, name := range conditionNames {
			for rep := 0; rep < numRepetitions; rep++ {
				units = append(units, Unit{SampleID: s.ID, Condition: name, Repetition: rep})
			}
		}
	}
	return units, nil
}
