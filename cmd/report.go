package cmd

import (
	"github.com/keval-dev/keval/internal/report"
	"github.com/spf13/cobra"
)

var flagReportFormat string

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <summary.json>",
		Short: "Render a stored run summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := report.ReadSummary(args[0])
			if err != nil {
				return err
			}
			return report.Render(summary, flagReportFormat, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&flagReportFormat, "format", "table", "output format (table, markdown, json)")
	return cmd
}
