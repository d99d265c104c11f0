package report

import "time"

// Summary is the top-level run report persisted as JSON and rendered by the
// report command.
type Summary struct {
	RunID          string               `json:"run_id"`
	Name           string               `json:"name"`
	Version        string               `json:"version,omitempty"`
	DatasetSHA256  string               `json:"dataset_sha256"`
	AgentModel     string               `json:"agent_model"`
	JudgeModel     string               `json:"judge_model"`
	NumRepetitions int                  `json:"num_repetitions"`
	PlannedUnits   int                  `json:"planned_units"`
	Succeeded      int                  `json:"succeeded"`
	Failed         int                  `json:"failed"`
	Conditions     []ConditionAggregate `json:"conditions"`
	ElapsedSeconds float64              `json:"elapsed_seconds"`
	GeneratedAt    time.Time            `json:"generated_at"`
}
