package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <timezone> [label]",
		Short: "Append a clock to the list",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			label := ""
			if len(args) > 1 {
				label = args[1]
			}

			c, err := a.clocks.Add(cmd.Context(), args[0], label)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "added %s\n", c.ID)

			a.bestEffortSync(cmd)
			return nil
		},
	}
}
