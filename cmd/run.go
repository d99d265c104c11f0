package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/keval-dev/keval/internal/agent"
	"github.com/keval-dev/keval/internal/config"
	"github.com/keval-dev/keval/internal/dataset"
	"github.com/keval-dev/keval/internal/judge"
	"github.com/keval-dev/keval/internal/observer"
	"github.com/keval-dev/keval/internal/report"
	"github.com/keval-dev/keval/internal/result"
	"github.com/keval-dev/keval/internal/retry"
	"github.com/keval-dev/keval/internal/runner"
)

var (
	flagCondition     string
	flagSamples       int
	flagRepetitions   int
	flagMaxConcurrent int
	flagOutputDir     string
	flagFormat        string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute an evaluation run",
		RunE:  runEvaluation,
	}
	cmd.Flags().StringVar(&flagCondition, "condition", "", "run a single condition")
	cmd.Flags().IntVar(&flagSamples, "samples", 0, "cap the number of dataset samples")
	cmd.Flags().IntVar(&flagRepetitions, "repetitions", 0, "override repetitions per unit")
	cmd.Flags().IntVar(&flagMaxConcurrent, "max-concurrent", 0, "override max concurrent units")
	cmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "override output directory")
	cmd.Flags().StringVar(&flagFormat, "format", "table", "summary format: table, markdown, json")
	return cmd
}

func runEvaluation(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if flagSamples > 0 {
		cfg.Execution.NumSamples = flagSamples
	}
	if flagRepetitions > 0 {
		cfg.Execution.NumRepetitions = flagRepetitions
	}
	if flagMaxConcurrent > 0 {
		cfg.Execution.MaxConcurrent = flagMaxConcurrent
	}
	if flagOutputDir != "" {
		cfg.Output.Dir = flagOutputDir
	}

	conditions, err := filterConditions(cfg.Conditions, flagCondition)
	if err != nil {
		return err
	}

	loaded, err := dataset.Load(cfg.Dataset.Path, cfg.Dataset.QuestionKey, cfg.Dataset.AnswerKey)
	if err != nil {
		return err
	}
	samples := loaded.Samples
	if cfg.Execution.NumSamples > 0 && cfg.Execution.NumSamples < len(samples) {
		samples = samples[:cfg.Execution.NumSamples]
	}

	units, err := runner.Plan(samples, conditions, cfg.MCPServers, cfg.Execution.NumRepetitions)
	if err != nil {
		return err
	}

	ag, err := agent.New(cfg.Agent)
	if err != nil {
		return err
	}

	sampleIndex := make(map[string]dataset.Sample, len(samples))
	for _, s := range samples {
		sampleIndex[s.ID] = s
	}

	obs := observer.NewLog(log)
	r := &runner.Runner{
		Agent:      ag,
		Judge:      judge.NewOpenAI(cfg.Judge),
		Samples:    sampleIndex,
		Conditions: conditions,
		Servers:    cfg.MCPServers,
		Retry: retry.Policy{
			MaxAttempts:    cfg.Execution.Retry.MaxAttempts,
			InitialBackoff: time.Duration(cfg.Execution.Retry.InitialBackoffSeconds * float64(time.Second)),
			Multiplier:     cfg.Execution.Retry.BackoffMultiplier,
		},
		MaxConcurrent: cfg.Execution.MaxConcurrent,
		Observer:      obs,
	}

	runID := uuid.NewString()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs.RunStarted(runID, len(samples), len(conditions),
		cfg.Execution.NumRepetitions, cfg.Execution.MaxConcurrent)

	started := time.Now()
	records := r.Run(ctx, units)
	elapsed := time.Since(started)

	succeeded, failed := countStatuses(records)
	obs.RunCompleted(runID, succeeded, failed, elapsed)

	summary := &report.Summary{
		RunID:          runID,
		Name:           cfg.Name,
		Version:        cfg.Version,
		DatasetSHA256:  loaded.SHA256,
		AgentModel:     cfg.Agent.Model,
		JudgeModel:     cfg.Judge.Model,
		NumRepetitions: cfg.Execution.NumRepetitions,
		PlannedUnits:   len(units),
		Succeeded:      succeeded,
		Failed:         failed,
		Conditions:     report.Aggregate(records, cfg.Execution.NumRepetitions),
		ElapsedSeconds: elapsed.Seconds(),
		GeneratedAt:    time.Now().UTC(),
	}

	stem := report.OutputStem(cfg.Name, runID, time.Now())
	summaryPath, err := report.WriteSummary(cfg.Output.Dir, stem, summary)
	if err != nil {
		return err
	}
	detailPath, err := report.WriteDetailed(cfg.Output.Dir, stem,
		report.Detail(records, sampleIndex, cfg.Execution.NumRepetitions))
	if err != nil {
		return err
	}

	if err := report.Render(summary, flagFormat, cmd.OutOrStdout()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nSummary: %s\nDetails: %s\n", summaryPath, detailPath)
	return nil
}

// filterConditions restricts the run to one condition when --condition is
// set.
func filterConditions(conditions map[string]config.Condition, name string) (map[string]config.Condition, error) {
	if name == "" {
		return conditions, nil
	}
	c, ok := conditions[name]
	if !ok {
		return nil, fmt.Errorf("unknown condition %q", name)
	}
	return map[string]config.Condition{name: c}, nil
}

func countStatuses(records []result.Record) (succeeded, failed int) {
	for _, r := range records {
		if r.Status == result.StatusSucceeded {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}
