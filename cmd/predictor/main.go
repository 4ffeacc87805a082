// Command predictor serves the diabetes risk form and scores single records
// from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	datasetPath string
	modelPath   string
)

var rootCmd = &cobra.Command{
	Use:           "predictor",
	Short:         "Diabetes risk predictor",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&datasetPath, "dataset", "", "CSV the scaler is fitted on (default $DATASET_PATH)")
	rootCmd.PersistentFlags().StringVar(&modelPath, "model", "", "network weights document (default $MODEL_PATH)")
	rootCmd.AddCommand(serveCmd, predictCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// resolvePaths lets flags override the environment.
func resolvePaths(cfg *Config) {
	if datasetPath != "" {
		cfg.DatasetPath = datasetPath
	}
	if modelPath != "" {
		cfg.ModelPath = modelPath
	}
}
