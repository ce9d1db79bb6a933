package cli

import (
	"github.com/spf13/cobra"
)

func (a *App) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <label>",
		Short: "Change a clock's label",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.clocks.Rename(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			a.bestEffortSync(cmd)
			return nil
		},
	}
}
