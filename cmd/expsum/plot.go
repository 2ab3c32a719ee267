package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"q47-expsums/pkg/encoding"
	"q47-expsums/pkg/figure"
	"q47-expsums/pkg/survey"
)

var (
	plotCSV    string
	plotFigure string
)

// plotCmd re-renders the figure from a saved CSV
var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render the figure from a saved CSV without recomputing",
	Args:  cobra.NoArgs,
	RunE:  runPlot,
}

func init() {
	plotCmd.Flags().StringVar(&plotCSV, "csv", "", "CSV input path (overrides config)")
	plotCmd.Flags().StringVar(&plotFigure, "figure", "", "Figure output path (overrides config)")
}

// loadDataset reads the CSV named by the flag or the config.
func loadDataset(flagPath string) (*survey.Dataset, error) {
	path := cfg.Output.CSV
	if flagPath != "" {
		path = flagPath
	}
	rs, err := encoding.Load(path)
	if err != nil {
		return nil, err
	}
	ds := survey.FromResults(rs)
	if ds.Len() == 0 {
		return nil, fmt.Errorf("%s: no rows", path)
	}
	logger.Info("Loaded dataset", zap.String("path", path), zap.Int("primes", ds.Len()))
	return ds, nil
}

func runPlot(cmd *cobra.Command, args []string) error {
	ds, err := loadDataset(plotCSV)
	if err != nil {
		return err
	}
	if plotFigure != "" {
		cfg.Output.Figure = plotFigure
	}

	opts := figure.Options{Highlight: cfg.Report.Highlight}
	for _, r := range cfg.Report.References {
		opts.References = append(opts.References, figure.Reference{Name: r.Name, Mean: r.Mean, Style: r.Style})
	}
	if err := figure.Render(ds, opts, cfg.Output.Figure); err != nil {
		return fmt.Errorf("render figure: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Figure saved to %s\n", cfg.Output.Figure)
	return nil
}
