package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Populated with -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "aggmesh %s (commit %s, built %s, %s)\n",
				version, commit, date, runtime.Version())
		},
	}
}
