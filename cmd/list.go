package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/keval-dev/keval/internal/config"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured conditions and MCP servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Conditions:")
			for _, name := range sortedKeys(cfg.Conditions) {
				c := cfg.Conditions[name]
				if len(c.MCPServers) > 0 {
					fmt.Fprintf(out, "  - %s (servers: %s)\n", name, strings.Join(c.MCPServers, ", "))
				} else {
					fmt.Fprintf(out, "  - %s\n", name)
				}
			}

			fmt.Fprintln(out, "\nMCP servers:")
			for _, name := range sortedKeys(cfg.MCPServers) {
				fmt.Fprintf(out, "  - %s (%s)\n", name, cfg.MCPServers[name].Type)
			}

			fmt.Fprintf(out, "\nMatrix: %d conditions x %d repetitions per sample\n",
				len(cfg.Conditions), cfg.Execution.NumRepetitions)
			return nil
		},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
