package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "navsim",
		Short: "Replay guarded navigation scenarios",
		Long: `navsim drives navmesh slots through the steps of a YAML scenario and
prints each step's outcome together with the final history of every slot.`,
		SilenceUsage: true,
	}

	root.AddCommand(newRunCmd(), newValidateCmd())
	return root
}
