package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"quantsim/strategies"
)

func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the available signal generators",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range strategies.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
