package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func (a *App) moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <index>",
		Short: "Move a clock to a new slot (0-based)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("index must be a number: %q", args[1])
			}
			if err := a.clocks.Move(cmd.Context(), args[0], index); err != nil {
				return err
			}
			a.bestEffortSync(cmd)
			return nil
		},
	}
}
