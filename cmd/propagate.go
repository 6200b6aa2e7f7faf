package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adalundhe/synet/core/graph"
	"github.com/adalundhe/synet/core/propagation"
	"github.com/adalundhe/synet/core/scorerr"
)

var propagateFlags struct {
	network string
	modules string
	module  string
	topK    int
}

var propagateCmd = &cobra.Command{
	Use:   "propagate",
	Short: "Run PRINCE propagation from a seed module",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		g, err := graph.LoadEdgeList(propagateFlags.network)
		if err != nil {
			return err
		}
		modules, err := loadModules(propagateFlags.modules)
		if err != nil {
			return err
		}
		seeds, ok := modules[propagateFlags.module]
		if !ok {
			return fmt.Errorf("module %q not found in %s", propagateFlags.module, propagateFlags.modules)
		}

		norm, err := propagation.ParseNormalization(cfg.Propagation.Normalization)
		if err != nil {
			return err
		}
		prop := propagation.New(g, norm,
			propagation.WithAlpha(cfg.Propagation.Alpha),
			propagation.WithTolerance(cfg.Propagation.Tolerance),
			propagation.WithMaxIterations(cfg.Propagation.MaxIterations),
		)
		result, err := prop.Propagate(cmd.Context(), seeds, nil)
		if err != nil {
			return err
		}
		if result.Flags.Has(scorerr.FlagDidNotConverge) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: propagation did not converge within %d iterations\n",
				cfg.Propagation.MaxIterations)
		}
		for _, ns := range result.TopK(propagateFlags.topK) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%g\n", ns.Node, ns.Score)
		}
		return nil
	},
}

func init() {
	f := propagateCmd.Flags()
	f.StringVar(&propagateFlags.network, "network", "", "edge-list file of the interaction network")
	f.StringVar(&propagateFlags.modules, "modules", "", "YAML file of seed modules")
	f.StringVar(&propagateFlags.module, "module", "", "name of the seed module")
	f.IntVar(&propagateFlags.topK, "top", 100, "number of top-scoring nodes to print")
	for _, required := range []string{"network", "modules", "module"} {
		_ = propagateCmd.MarkFlagRequired(required)
	}
	rootCmd.AddCommand(propagateCmd)
}
