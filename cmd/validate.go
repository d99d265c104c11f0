package cmd

import (
	"fmt"

	"github.com/keval-dev/keval/internal/config"
	"github.com/keval-dev/keval/internal/dataset"
	"github.com/keval-dev/keval/internal/runner"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check config and dataset without running anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
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

			units, err := runner.Plan(samples, cfg.Conditions, cfg.MCPServers, cfg.Execution.NumRepetitions)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config OK: %s\n", cfgFile)
			fmt.Fprintf(out, "Dataset: %d samples (sha256 %s)\n", len(samples), loaded.SHA256)
			fmt.Fprintf(out, "Plan: %d units (%d samples x %d conditions x %d repetitions)\n",
				len(units), len(samples), len(cfg.Conditions), cfg.Execution.NumRepetitions)
			return nil
		},
	}
}
