package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newPlanCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <workflow.yaml>",
		Short: "Generate and print the execution plan without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			eng, ids, shutdown, err := buildEngine(ctx, opts, args[0])
			if err != nil {
				return err
			}
			defer shutdown()

			plan, err := eng.GeneratePlan(ctx, nil, ids)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Plan %s (%d phases, estimated %s)\n",
				plan.ID, len(plan.Phases), plan.EstimatedDuration)
			for _, phase := range plan.Phases {
				fmt.Fprintf(out, "  %d. %s [%s] ~%s\n",
					phase.Sequence, phase.Name, phase.Strategy, phase.EstimatedDuration.Round(time.Millisecond))
				for _, id := range phase.UnitIDs {
					fmt.Fprintf(out, "     - %s\n", id)
				}
			}
			for _, dep := range plan.Dependencies {
				fmt.Fprintf(out, "  %s -> %s (%s)\n", dep.DependentID, dep.DependencyID, dep.Kind)
			}
			return nil
		},
	}
}
