package cmd

import (
	"testing"

	"github.com/keval-dev/keval/internal/config"
)

func TestFilterConditions(t *testing.T) {
	conditions := map[string]config.Condition{
		"baseline":  {SystemPrompt: "a"},
		"with_docs": {SystemPrompt: "b"},
	}

	all, err := filterConditions(conditions, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("empty filter should keep all conditions, got %d", len(all))
	}

	one, err := filterConditions(conditions, "baseline")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(one) != 1 || one["baseline"].SystemPrompt != "a" {
		t.Errorf("unexpected filtered set: %v", one)
	}

	if _, err := filterConditions(conditions, "missing"); err == nil {
		t.Error("expected error for unknown condition")
	}
}
