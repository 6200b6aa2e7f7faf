package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adalundhe/synet/core/graph"
	"github.com/adalundhe/synet/core/scoring"
	"github.com/adalundhe/synet/core/transcription"
)

var predictFlags struct {
	network           string
	diseaseModules    string
	drugModules       string
	disease           string
	diseaseSignatures string
	drugSignatures    string
	output            string
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score all drug pairs against a disease",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		g, err := graph.LoadEdgeList(predictFlags.network)
		if err != nil {
			return err
		}

		predictor, err := scoring.NewPredictor(g, cfg)
		if err != nil {
			return err
		}

		diseases, err := loadModules(predictFlags.diseaseModules)
		if err != nil {
			return err
		}
		drugs, err := loadModules(predictFlags.drugModules)
		if err != nil {
			return err
		}
		predictor.SetDiseaseModules(diseases)
		predictor.SetDrugModules(drugs)

		if predictFlags.diseaseSignatures != "" {
			sig, err := loadSignature(predictFlags.diseaseSignatures)
			if err != nil {
				return err
			}
			predictor.SetDiseaseSignatures(map[string]transcription.Signature{
				predictFlags.disease: sig,
			})
		}
		if predictFlags.drugSignatures != "" {
			sigs, err := loadDrugSignatures(predictFlags.drugSignatures)
			if err != nil {
				return err
			}
			predictor.SetDrugSignatures(sigs)
		}

		records, err := predictor.PredictAll(cmd.Context(), predictFlags.disease)
		if err != nil {
			return err
		}

		out := os.Stdout
		if predictFlags.output != "" {
			f, err := os.Create(predictFlags.output)
			if err != nil {
				return fmt.Errorf("creating output: %w", err)
			}
			defer f.Close()
			out = f
		}
		return scoring.WriteCSV(out, records)
	},
}

func init() {
	f := predictCmd.Flags()
	f.StringVar(&predictFlags.network, "network", "", "edge-list file of the interaction network")
	f.StringVar(&predictFlags.diseaseModules, "disease-modules", "", "YAML file of disease modules")
	f.StringVar(&predictFlags.drugModules, "drug-modules", "", "YAML file of drug modules")
	f.StringVar(&predictFlags.disease, "disease", "", "disease to score pairs against")
	f.StringVar(&predictFlags.diseaseSignatures, "disease-signature", "", "TSV expression signature for the disease")
	f.StringVar(&predictFlags.drugSignatures, "drug-signatures", "", "YAML file of drug up/down signatures")
	f.StringVar(&predictFlags.output, "output", "", "CSV output path (default stdout)")
	for _, required := range []string{"network", "disease-modules", "drug-modules", "disease"} {
		_ = predictCmd.MarkFlagRequired(required)
	}
	rootCmd.AddCommand(predictCmd)
}
