package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"q47-expsums/pkg/expsum"
	"q47-expsums/pkg/field"
	"q47-expsums/pkg/primes"
)

var (
	sumDegree uint32
	sumDirect bool
)

// sumCmd computes a single prime
var sumCmd = &cobra.Command{
	Use:   "sum <p>",
	Short: "Compute S_p/sqrt(p) for a single prime",
	Example: `  expsum sum 283
  expsum sum 659 --degree 5`,
	Args: cobra.ExactArgs(1),
	RunE: runSum,
}

func init() {
	sumCmd.Flags().Uint32Var(&sumDegree, "degree", 0, "Exponent d in n^d - (n-1)^d (overrides config)")
	sumCmd.Flags().BoolVar(&sumDirect, "direct", false, "Use the per-term loop instead of the histogram")
}

func runSum(cmd *cobra.Command, args []string) error {
	p64, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid prime %q: %w", args[0], err)
	}
	if !primes.IsPrime(p64) {
		return fmt.Errorf("%d is not prime", p64)
	}
	p := uint32(p64)

	d := cfg.Survey.Degree
	if sumDegree != 0 {
		d = sumDegree
	}

	var r expsum.Result
	if sumDirect {
		f, err := field.New(p)
		if err != nil {
			return err
		}
		r = expsum.Normalize(p, expsum.SumDirect(f, d))
	} else {
		r, err = expsum.Compute(p, d)
		if err != nil {
			return err
		}
	}
	logger.Debug("Computed", zap.Uint32("p", r.P), zap.Float64("magnitude", r.Mag))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "p = %d, d = %d\n", p, d)
	fmt.Fprintf(out, "  Re S_p/sqrt(p) = %.6f\n", r.Re)
	fmt.Fprintf(out, "  Im S_p/sqrt(p) = %.6f\n", r.Im)
	fmt.Fprintf(out, "  |S_p|/sqrt(p)  = %.6f\n", r.Mag)
	if p%cfg.Survey.Modulus != cfg.Survey.Residue%cfg.Survey.Modulus {
		fmt.Fprintf(out, "  note: p is not %d mod %d\n", cfg.Survey.Residue, cfg.Survey.Modulus)
	}
	if d >= 2 && r.Mag > expsum.WeilBound(d) {
		logger.Warn("Magnitude exceeds Weil bound", zap.Uint32("p", p), zap.Float64("bound", expsum.WeilBound(d)))
	}
	return nil
}
