package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/WellcomeIdeathon2023/The-York-Vectors/algorithms/warping"
	"github.com/WellcomeIdeathon2023/The-York-Vectors/dataio"
	"github.com/WellcomeIdeathon2023/The-York-Vectors/similarity"
)

var alignFlags struct {
	pattern   string
	openBegin bool
	openEnd   bool
	normalize bool
	out       string
}

var alignCmd = &cobra.Command{
	Use:   "align <query.csv> <reference.csv>",
	Short: "Align two CSV timeseries and print the similarity result",
	Args:  cobra.ExactArgs(2),
	RunE:  alignExec,
}

func init() {
	alignCmd.Flags().StringVar(&alignFlags.pattern, "pattern", "symmetric", "step pattern: symmetric|asymmetric|asymmetricP05")
	alignCmd.Flags().BoolVar(&alignFlags.openBegin, "open-begin", false, "allow skipping a reference prefix at no cost")
	alignCmd.Flags().BoolVar(&alignFlags.openEnd, "open-end", false, "allow an unmatched reference suffix at no cost")
	alignCmd.Flags().BoolVar(&alignFlags.normalize, "normalize", true, "z-normalize sequences before alignment")
	alignCmd.Flags().StringVar(&alignFlags.out, "out", "", "write the JSON result to this file instead of stdout")
}

func alignExec(_ *cobra.Command, args []string) error {
	pattern, err := warping.ParseStepPattern(alignFlags.pattern)
	if err != nil {
		return err
	}

	query, err := dataio.LoadSeriesCSV(args[0])
	if err != nil {
		return err
	}
	reference, err := dataio.LoadSeriesCSV(args[1])
	if err != nil {
		return err
	}

	cfg := similarity.DefaultComparisonConfig()
	cfg.StepPattern = pattern
	cfg.OpenBegin = alignFlags.openBegin
	cfg.OpenEnd = alignFlags.openEnd
	cfg.Normalize = alignFlags.normalize

	result, err := similarity.NewCurveComparatorWithConfig(cfg).CompareSeries(query, reference)
	if err != nil {
		return err
	}

	if alignFlags.out != "" {
		return dataio.WriteReportJSON(alignFlags.out, result)
	}

	fmt.Fprintf(os.Stdout, "pattern=%s distance=%.6f similarity=%.6f grade=%s path=%d\n",
		pattern, result.NormalizedDistance, result.Similarity, result.MatchGrade, result.PathLength)
	return nil
}
