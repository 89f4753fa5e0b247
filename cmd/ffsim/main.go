package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ffsim",
	Short: "Forward flux sampling rate calculator",
	Long: `ffsim drives a forward flux sampling rate calculation from a YAML
configuration describing the interface ladder, trial counts, and the
initial-flux estimator, using one of the direct, branched, Rosenbluth
or brute-force drivers.`,
}

func main() {
	rootCmd.AddCommand(runCmd(), checkCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
