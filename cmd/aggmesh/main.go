// Command aggmesh is the command line front end for the AggMesh execution
// engine: it loads a workflow file, builds the declared aggregators and
// runs, plans or validates them.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
