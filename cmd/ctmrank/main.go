// Command ctmrank queries a saved D(n,2) distribution for complexity
// estimates.
//
// Usage:
//
//	ctmrank [-top N] <distribution.json> [string...]
//
// With no strings, prints the top N outputs ranked by increasing
// estimated complexity. With strings, prints K(s) for each.
//
// Example:
//
//	ctmrank -top 20 distribution.json
//	ctmrank distribution.json 0101 1111
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/sarchlab/ctmsim/estimator"
)

var topN = flag.Int("top", 10, "Number of ranked strings to print (0 = all)")

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "CTM Complexity Ranking\n\n")
		fmt.Fprintf(os.Stderr, "Usage: ctmrank [-top N] <distribution.json> [string...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	est, err := estimator.FromFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if flag.NArg() > 1 {
		for _, s := range flag.Args()[1:] {
			printEstimate(s, est.Estimate(s))
		}
		return
	}

	for _, r := range est.Ranked(*topN) {
		printEstimate(r.Output, r.K)
	}
}

func printEstimate(s string, k float64) {
	label := s
	if label == "" {
		label = `""`
	}
	if math.IsInf(k, 1) {
		fmt.Printf("%-20s K = inf\n", label)
		return
	}
	fmt.Printf("%-20s K = %.6f\n", label, k)
}
