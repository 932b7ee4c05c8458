package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var (
		selectIDs []string
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run <workflow.yaml>",
		Short: "Execute the aggregators declared in a workflow file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			eng, ids, shutdown, err := buildEngine(ctx, opts, args[0])
			if err != nil {
				return err
			}
			defer shutdown()

			if len(selectIDs) > 0 {
				ids = selectIDs
			}

			result, err := eng.Execute(ctx, nil, ids)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Execution %s: %s\n", result.ExecutionID, result.Status)
			if result.Error != "" {
				fmt.Fprintf(out, "Error: %s\n", result.Error)
			}
			fmt.Fprintf(out, "Elapsed: %s\n", result.Elapsed.Round(time.Millisecond))
			for _, ur := range result.UnitResults {
				mark := "ok"
				if !ur.Success {
					mark = "failed: " + ur.Error
				}
				fmt.Fprintf(out, "  %-24s %-10s %s\n", ur.UnitID, ur.Duration.Round(time.Millisecond), mark)
			}

			if !result.Success {
				return fmt.Errorf("execution %s finished with status %s", result.ExecutionID, result.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&selectIDs, "select", nil, "run only these aggregator ids (default: all)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "cancel the execution after this duration")

	return cmd
}
