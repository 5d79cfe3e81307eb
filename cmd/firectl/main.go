// Command firectl inspects the forest fire dataset and runs fire-risk
// predictions from the command line.
//
// Usage:
//
//	firectl summary
//	firectl describe --dataset data/fires.xlsx
//	firectl predict --feature temperature=33 --feature rh=54 --feature ffmc=88.2
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var datasetPath string

	root := &cobra.Command{
		Use:           "firectl",
		Short:         "Forest fire dataset and prediction tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&datasetPath, "dataset", "", "dataset file (overrides DATASET_PATH)")

	root.AddCommand(
		newSummaryCmd(&datasetPath),
		newDescribeCmd(&datasetPath),
		newPredictCmd(&datasetPath),
	)
	return root
}
