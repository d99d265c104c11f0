// Package dataset loads golden question/answer records from a JSONL file.
package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Sample is one golden record. The ID is derived from the sample's position
// among non-blank lines, so it is stable for a given dataset file.
type Sample struct {
	ID       string
	Question string
	Answer   string
}

// LoadResult carries the parsed samples plus the SHA-256 hex digest of the
// raw file bytes, recorded in run outputs so operators know exactly which
// dataset version produced a result.
type LoadResult struct {
	Samples []Sample
	SHA256  string
}

// Load reads every sample from a JSONL file. Blank lines are skipped.
// All per-line problems (invalid JSON, missing keys) are collected before
// failing so a broken dataset is reported in one pass.
func Load(path, questionKey, answerKey string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset %s: %w", path, err)
	}
	digest := sha256.Sum256(data)

	var samples []Sample
	var problems []string
	index := 0
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		sample, err := parseLine(line, index, questionKey, answerKey)
		if err != nil {
			problems = append(problems, err.Error())
		} else {
			samples = append(samples, sample)
		}
		index++
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid dataset %s: %s", path, strings.Join(problems, "; "))
	}
	return &LoadResult{
		Samples: samples,
		SHA256:  hex.EncodeToString(digest[:]),
	}, nil
}

func parseLine(line string, index int, questionKey, answerKey string) (Sample, error) {
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return Sample{}, fmt.Errorf("line %d: invalid JSON: %v", index, err)
	}

	var missing []string
	for _, key := range []string{questionKey, answerKey} {
		if _, ok := record[key]; !ok {
			missing = append(missing, fmt.Sprintf("%q", key))
		}
	}
	if len(missing) > 0 {
		return Sample{}, fmt.Errorf("line %d: missing key(s) %s", index, strings.Join(missing, ", "))
	}

	return Sample{
		ID:       strconv.Itoa(index),
		Question: fmt.Sprintf("%v", record[questionKey]),
		Answer:   fmt.Sprintf("%v", record[answerKey]),
	}, nil
}
