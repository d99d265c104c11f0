package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/keval-dev/keval/internal/judge"
)

// Render writes the summary to w in the requested format: table (default),
// markdown, or json.
func Render(summary *Summary, format string, w io.Writer) error {
	switch format {
	case "markdown":
		return writeMarkdown(summary, w)
	case "json":
		return writeJSON(summary, w)
	case "", "table":
		return writeTable(summary, w)
	}
	return fmt.Errorf("unknown report format %q", format)
}

func writeTable(summary *Summary, w io.Writer) error {
	fmt.Fprintf(w, "Run %s (%s)\n", summary.RunID, summary.Name)
	fmt.Fprintf(w, "Units: %d planned, %d succeeded, %d failed\n\n",
		summary.PlannedUnits, summary.Succeeded, summary.Failed)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CONDITION\tUNITS\tFACTUAL\tCOMPLETE\tHELPFUL")
	fmt.Fprintln(tw, strings.Repeat("-", 70))
	for _, c := range summary.Conditions {
		fmt.Fprintf(tw, "%s\t%d/%d\t%s\t%s\t%s\n",
			c.Condition, c.Succeeded, c.Succeeded+c.Failed,
			formatMetric(c.Metrics[judge.MetricFactualAdherence]),
			formatMetric(c.Metrics[judge.MetricCompleteness]),
			formatMetric(c.Metrics[judge.MetricHelpfulness]))
	}
	return tw.Flush()
}

// formatMetric renders "mean" or "mean ±stddev" when the spread was computed.
func formatMetric(m MetricAggregate) string {
	if m.SampleCount == 0 {
		return "-"
	}
	if m.StdDev == nil {
		return fmt.Sprintf("%.2f", m.Mean)
	}
	return fmt.Sprintf("%.2f ±%.2f", m.Mean, *m.StdDev)
}

func writeMarkdown(summary *Summary, w io.Writer) error {
	fmt.Fprintf(w, "# %s\n\n", summary.Name)
	fmt.Fprintf(w, "Run `%s`: %d planned, %d succeeded, %d failed\n\n",
		summary.RunID, summary.PlannedUnits, summary.Succeeded, summary.Failed)
	fmt.Fprintln(w, "| Condition | Units | Factual | Complete | Helpful |")
	fmt.Fprintln(w, "|---|---|---|---|---|")
	for _, c := range summary.Conditions {
		fmt.Fprintf(w, "| %s | %d/%d | %s | %s | %s |\n",
			c.Condition, c.Succeeded, c.Succeeded+c.Failed,
			formatMetric(c.Metrics[judge.MetricFactualAdherence]),
			formatMetric(c.Metrics[judge.MetricCompleteness]),
			formatMetric(c.Metrics[judge.MetricHelpfulness]))
	}
	return nil
}

func writeJSON(summary *Summary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
