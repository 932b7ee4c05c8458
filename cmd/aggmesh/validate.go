package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <workflow.yaml>",
		Short: "Check the workflow's dependency graph without executing it",
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

			validation, err := eng.ValidateDependencies(ctx, plan)
			if err != nil {
				return err
			}

			if !validation.Valid {
				return fmt.Errorf("validation failed: %s", validation.Message)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", validation.Message)
			return nil
		},
	}
}
