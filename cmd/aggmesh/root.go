package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/aggmesh/config"
	"github.com/hupe1980/aggmesh/engine"
	"github.com/hupe1980/aggmesh/telemetry"
	"github.com/hupe1980/aggmesh/workflow"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "aggmesh",
		Short:         "Run aggregator workflows with the AggMesh execution engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newRunCmd(opts),
		newPlanCmd(opts),
		newValidateCmd(opts),
		newVersionCmd(),
	)

	return cmd
}

// buildEngine assembles an engine from the config file and registers every
// aggregator declared in the workflow file. The returned shutdown func
// flushes telemetry and must be called when the command finishes.
func buildEngine(ctx context.Context, opts *rootOptions, workflowPath string) (*engine.Engine, []string, func(), error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}

	provider, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init telemetry: %w", err)
	}
	tel, err := telemetry.FromProvider(provider)
	if err != nil {
		return nil, nil, nil, err
	}

	spec, err := workflow.Load(workflowPath)
	if err != nil {
		return nil, nil, nil, err
	}
	aggs, err := spec.Build()
	if err != nil {
		return nil, nil, nil, err
	}

	eng := engine.New(func(o *engine.Options) {
		o.Config = cfg.EngineConfig()
		o.Logger = cfg.BuildLogger()
		o.Telemetry = tel
	})

	ids := make([]string, 0, len(aggs))
	for _, a := range aggs {
		eng.RegisterAggregator(a)
		ids = append(ids, a.ID())
	}

	shutdown := func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			fmt.Fprintln(os.Stderr, "telemetry shutdown:", err)
		}
	}

	return eng, ids, shutdown, nil
}
