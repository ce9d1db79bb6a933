package cli

import (
	"github.com/spf13/cobra"
)

func (a *App) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a clock from every device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.clocks.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.bestEffortSync(cmd)
			return nil
		},
	}
}
