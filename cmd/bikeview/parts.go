package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newPartsCommand(a *app) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "parts",
		Short: "List the part catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if asYAML {
				return a.catalog.WriteYAML(out)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PART\tOBJECT\tFIND\tCOLOR\tOFFSET\tDESCRIPTION")
			for _, p := range a.catalog.Parts() {
				find := "-"
				if p.SubstringMatch != "" {
					find = p.SubstringMatch
				}
				color := p.Color(a.cfg.Colors.Highlight).String()
				if p.IsMatte {
					color += " (matte)"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f,%.2f,%.2f\t%s\n",
					p.Name, p.PrimaryMatchName, find, color,
					p.Offset[0], p.Offset[1], p.Offset[2],
					truncate(p.Description, 48),
				)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the catalog as YAML")
	return cmd
}

// truncate shortens s to at most n runes, ending with "...".
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
