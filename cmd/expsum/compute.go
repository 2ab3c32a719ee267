package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"q47-expsums/pkg/encoding"
	"q47-expsums/pkg/figure"
	"q47-expsums/pkg/report"
	"q47-expsums/pkg/sampling"
	"q47-expsums/pkg/stats"
	"q47-expsums/pkg/survey"
)

var (
	computeMaxPrime uint32
	computeWorkers  int
	computeCSV      string
	computeFigure   string
	computeNoFigure bool
)

// computeCmd runs the full pipeline
var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute the normalized sums for every prime and report them",
	Long: `Runs the survey:
  1. Select primes p < max_prime with p = residue (mod modulus)
  2. Compute S_p/sqrt(p) for each prime
  3. Print the statistics block and reference predictions
  4. Save the CSV and render the figure

A failure to render the figure is reported but does not fail the command.`,
	Args: cobra.NoArgs,
	RunE: runCompute,
}

func init() {
	computeCmd.Flags().Uint32Var(&computeMaxPrime, "max-prime", 0, "Exclusive upper bound on p (overrides config)")
	computeCmd.Flags().IntVar(&computeWorkers, "workers", -1, "Concurrent primes, 0 = one per CPU (overrides config)")
	computeCmd.Flags().StringVar(&computeCSV, "csv", "", "CSV output path (overrides config)")
	computeCmd.Flags().StringVar(&computeFigure, "figure", "", "Figure output path (overrides config)")
	computeCmd.Flags().BoolVar(&computeNoFigure, "no-figure", false, "Skip rendering the figure")
}

func applyComputeFlags() {
	if computeMaxPrime != 0 {
		cfg.Survey.MaxPrime = computeMaxPrime
	}
	if computeWorkers >= 0 {
		cfg.Survey.Workers = computeWorkers
	}
	if computeCSV != "" {
		cfg.Output.CSV = computeCSV
	}
	if computeFigure != "" {
		cfg.Output.Figure = computeFigure
	}
}

func runCompute(cmd *cobra.Command, args []string) error {
	applyComputeFlags()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	out := cmd.OutOrStdout()
	s := cfg.Survey
	report.Banner(out,
		fmt.Sprintf("Exponential Sums for Q(n) = n^%d - (n-1)^%d", s.Degree, s.Degree),
		fmt.Sprintf("Primes p = %d (mod %d), p < %d", s.Residue, s.Modulus, s.MaxPrime))

	start := time.Now()
	ds, err := survey.Run(ctx, cfg.SurveyConfig(), logger)
	if err != nil {
		return fmt.Errorf("survey failed: %w", err)
	}
	logger.Info("Survey complete",
		zap.Int("primes", ds.Len()),
		zap.Duration("elapsed", time.Since(start)))

	fmt.Fprintln(out)
	printStatistics(cmd, ds)

	if err := encoding.Save(cfg.Output.CSV, ds.Results()); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n  Saved to %s\n", cfg.Output.CSV)

	if !computeNoFigure {
		renderFigure(cmd, ds)
	}
	fmt.Fprintln(out, "  [DONE]")
	return nil
}

// printStatistics writes the statistics and reference blocks for ds.
func printStatistics(cmd *cobra.Command, ds *survey.Dataset) {
	out := cmd.OutOrStdout()

	var excluded []report.Excluded
	for _, p := range cfg.Report.Exclude {
		if ds.Index(p) < 0 {
			continue
		}
		ps, ms := stats.Exclude(ds.Primes, ds.Mag, p)
		excluded = append(excluded, report.Excluded{P: p, Summary: stats.Summarize(ps, ms)})
	}
	all := stats.Summarize(ds.Primes, ds.Mag)
	report.Statistics(out, all, excluded...)

	refs := make([]report.Reference, 0, len(cfg.Report.References)+1)
	for _, r := range cfg.Report.References {
		refs = append(refs, report.Reference{Name: r.Name, Mean: r.Mean})
	}
	if trials := cfg.Report.SimulateTrials; trials > 0 {
		// a degree d-1 polynomial has d-2 Frobenius eigenvalues on the unit circle
		k := int(cfg.Survey.Degree) - 2
		mean := sampling.WalkMean([]byte(cfg.Report.Seed), k, trials)
		logger.Debug("Simulated random walk",
			zap.Int("vectors", k),
			zap.Int("trials", trials),
			zap.Float64("mean", mean),
			zap.Float64("rayleigh", sampling.RayleighMean(k)))
		refs = append(refs, report.Reference{Name: fmt.Sprintf("Simulated RW (%d vectors)", k), Mean: mean})
	}
	report.References(out, refs, all.Mean)
}

// renderFigure draws the figure, logging instead of failing on error.
func renderFigure(cmd *cobra.Command, ds *survey.Dataset) bool {
	opts := figure.Options{Highlight: cfg.Report.Highlight}
	for _, r := range cfg.Report.References {
		opts.References = append(opts.References, figure.Reference{Name: r.Name, Mean: r.Mean, Style: r.Style})
	}
	if err := figure.Render(ds, opts, cfg.Output.Figure); err != nil {
		logger.Warn("Figure rendering failed", zap.String("path", cfg.Output.Figure), zap.Error(err))
		fmt.Fprintf(cmd.OutOrStdout(), "  Figure not rendered: %v\n", err)
		return false
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  Figure saved to %s\n", cfg.Output.Figure)
	return true
}

