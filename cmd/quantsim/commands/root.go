// Package commands wires the quantsim CLI: loading run configuration,
// fetching candles and handing them to the simulation engine.
package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "quantsim",
		Short:         "Event-driven backtesting and performance analytics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "quantsim.yaml", "path to the run configuration file")

	root.AddCommand(newRunCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newStrategiesCmd())
	return root
}

func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}
