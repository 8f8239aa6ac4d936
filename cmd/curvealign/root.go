package main

import (
	"github.com/spf13/cobra"

	"github.com/WellcomeIdeathon2023/The-York-Vectors/logging"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "curvealign",
	Short: "Penalized curve fitting and elastic timeseries alignment",
	Long: `curvealign fits smooth curves to noisy timeseries via penalized basis
regression, manufactures sparse distorted observations from a fitted curve,
and scores sequence similarity with open-ended dynamic time warping.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logging.SetLevel(logging.DebugLevel)
		} else {
			logging.SetLevel(logging.WarnLevel)
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(alignCmd)
}
