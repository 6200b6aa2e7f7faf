package cmd

import (
	"github.com/spf13/cobra"

	"github.com/adalundhe/synet/core/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "synet",
	Short: "synet - network-based drug-pair synergy prediction",
	Long: `Synet scores drug pairs against a disease by combining topological
class (TQAB), network proximity (PQAB) and transcriptional reversal
(CQAB) signals over a molecular interaction network.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file")
}

func loadConfig() (*config.Config, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}
	return config.Load(cfgPath)
}
