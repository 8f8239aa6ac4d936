// Command curvealign demonstrates the full pipeline: synthesize or load
// timeseries, fit penalized basis curves, derive distorted sparse samples,
// and score elastic alignments.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
