package main

import (
	"github.com/spf13/cobra"
)

var statsCSV string

// statsCmd prints the statistics block of a saved CSV
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the statistics block for a saved CSV",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsCSV, "csv", "", "CSV input path (overrides config)")
}

func runStats(cmd *cobra.Command, args []string) error {
	ds, err := loadDataset(statsCSV)
	if err != nil {
		return err
	}
	printStatistics(cmd, ds)
	return nil
}
