package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Wipe the local replica and replay the server's change log",
		Long:  "reset discards the local replica, cursor included, and rebuilds it from the server. Unpushed local edits are lost.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.sync.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "replica rebuilt")
			return nil
		},
	}
}
