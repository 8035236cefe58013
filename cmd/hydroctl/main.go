package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hydroctl",
		Short: "hydroctl - tools for the hydrology forecast dashboard",
		Long: `hydroctl inspects cache buckets, loads forecast CSVs the way the
dashboard does, and warms the series cache for every configured station.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "./config.yaml", "path to the dashboard config file")

	root.AddCommand(
		newBucketCmd(),
		newDecorateCmd(),
		newSeriesCmd(),
		newStationsCmd(),
		newWarmCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
