package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (a *App) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the clock list in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clocks, err := a.clocks.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(clocks) == 0 {
				fmt.Fprintln(a.out, "No clocks yet.")
				return nil
			}

			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			for i, c := range clocks {
				label := c.Label
				if label == "" {
					label = c.Timezone
				}
				pending := ""
				if c.Stale {
					pending = " *"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s%s\n", i, a.wallTime(c.Timezone), label, c.Timezone, c.ID, pending)
			}
			return w.Flush()
		},
	}
}
