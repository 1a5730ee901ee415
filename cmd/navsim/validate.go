package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/navmesh/internal/scenario"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario-file>",
		Short: "Check a scenario without running it",
		Long: `Validate parses a scenario file and checks that slots, units, steps and
expected outcomes are consistent. Every problem found is reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d units, %d slots, %d steps\n",
				sc.Name, len(sc.Units), len(sc.Slots), len(sc.Steps))
			return nil
		},
	}
}
