package judge

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseResponse turns the judge model's raw text into a validated Result.
// Every failure here is transient: the model is re-queried, never patched
// over with default scores.
func ParseResponse(content string) (*Result, error) {
	content = stripFences(content)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, &Error{Reason: fmt.Sprintf("judge output is not a JSON object: %v", err), Transient: true}
	}

	var problems []string
	result := &Result{Scores: make(map[Metric]MetricScore, len(Metrics))}

	for _, m := range Metrics {
		raw, ok := fields[string(m)]
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: missing", m))
			continue
		}
		var score int
		if err := json.Unmarshal(raw, &score); err != nil {
			problems = append(problems, fmt.Sprintf("%s: score is not an integer", m))
			continue
		}
		var reasoning string
		if raw, ok := fields[string(m)+"_reasoning"]; ok {
			if err := json.Unmarshal(raw, &reasoning); err != nil {
				problems = append(problems, fmt.Sprintf("%s_reasoning: not a string", m))
				continue
			}
		}
		result.Scores[m] = MetricScore{Score: score, Reasoning: reasoning}
	}

	if raw, ok := fields["unverified_claims"]; ok {
		if err := json.Unmarshal(raw, &result.UnverifiedClaims); err != nil {
			problems = append(problems, "unverified_claims: not a list of strings")
		}
	}

	if len(problems) > 0 {
		return nil, &Error{Reason: "invalid judge output: " + strings.Join(problems, "; "), Transient: true}
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

// stripFences tolerates models that wrap the JSON object in a markdown code
// block despite being told not to.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
