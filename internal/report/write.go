package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// OutputStem names a run's output files: {name}_{YYYYMMDD}_{first 8 of run
// ID}. The summary gets a .json suffix, the per-unit detail .detailed.jsonl.
func OutputStem(name, runID string, now time.Time) string {
	short := runID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s_%s_%s", name, now.Format("20060102"), short)
}

// WriteSummary writes the summary as indented JSON and returns the file path.
func WriteSummary(dir, stem string, summary *Summary) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding summary: %w", err)
	}
	path := filepath.Join(dir, stem+".json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("writing summary: %w", err)
	}
	return path, nil
}

// WriteDetailed writes one JSON line per (sample, condition) pair and
// returns the file path.
func WriteDetailed(dir, stem string, lines []DetailLine) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	path := filepath.Join(dir, stem+".detailed.jsonl")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("writing detailed results: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, line := range lines {
		if err := enc.Encode(line); err != nil {
			return "", fmt.Errorf("encoding detail line: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("writing detailed results: %w", err)
	}
	return path, nil
}

// ReadSummary loads a previously written summary file.
func ReadSummary(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading summary: %w", err)
	}
	var summary Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("decoding summary %s: %w", path, err)
	}
	return &summary, nil
}
