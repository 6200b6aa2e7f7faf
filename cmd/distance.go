package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adalundhe/synet/core/distance"
	"github.com/adalundhe/synet/core/graph"
	"github.com/adalundhe/synet/core/nullmodel"
	"github.com/adalundhe/synet/core/scorerr"
)

var distanceFlags struct {
	network   string
	modules   string
	source    string
	target    string
	normalize bool
}

var distanceCmd = &cobra.Command{
	Use:   "distance",
	Short: "Compute the module distance d(S,T), optionally z-normalized",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		g, err := graph.LoadEdgeList(distanceFlags.network)
		if err != nil {
			return err
		}
		modules, err := loadModules(distanceFlags.modules)
		if err != nil {
			return err
		}
		source, ok := modules[distanceFlags.source]
		if !ok {
			return fmt.Errorf("module %q not found in %s", distanceFlags.source, distanceFlags.modules)
		}
		target, ok := modules[distanceFlags.target]
		if !ok {
			return fmt.Errorf("module %q not found in %s", distanceFlags.target, distanceFlags.modules)
		}

		engine := distance.New(g, distance.WithSentinel(cfg.Scoring.SentinelDistance))
		if !distanceFlags.normalize {
			d, err := engine.ModuleDistance(cmd.Context(), source, target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "d(%s,%s) = %g\n", source.Name(), target.Name(), d)
			return nil
		}

		gen, err := nullmodel.NewGenerator(g, engine, cfg.Scoring.DegreeBins,
			nullmodel.WithTrials(cfg.Scoring.NRandomizations),
			nullmodel.WithSeed(cfg.RandomSeed),
		)
		if err != nil {
			return err
		}
		prox, err := gen.NormalizedProximity(cmd.Context(), source, target)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "d(%s,%s) = %g\tz = %g\tp = %g\n",
			source.Name(), target.Name(), prox.Observed, prox.Z, prox.P)
		if prox.Flags.Has(scorerr.FlagDegenerateNullModel) {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning: degenerate null distribution, z-score undefined")
		}
		return nil
	},
}

func init() {
	f := distanceCmd.Flags()
	f.StringVar(&distanceFlags.network, "network", "", "edge-list file of the interaction network")
	f.StringVar(&distanceFlags.modules, "modules", "", "YAML file of modules")
	f.StringVar(&distanceFlags.source, "source", "", "source module name")
	f.StringVar(&distanceFlags.target, "target", "", "target module name")
	f.BoolVar(&distanceFlags.normalize, "normalize", false, "z-normalize against the degree-preserving null")
	for _, required := range []string{"network", "modules", "source", "target"} {
		_ = distanceCmd.MarkFlagRequired(required)
	}
	rootCmd.AddCommand(distanceCmd)
}
