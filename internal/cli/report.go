package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/OliwiaLewandowska/som-monitor/internal/analyzer"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the report for the most recent survey",
	Long:  `Rebuild and print the ranked share-of-model report from the most recently saved survey results.`,
	RunE:  runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	results, err := loadLatestResults(ctx)
	if err != nil {
		return err
	}

	report, err := analyzer.BuildReport(results, cfg.Brands, len(results), 0)
	if err != nil {
		return err
	}

	printReport(report, cfg.ConfidenceLevel)
	return nil
}
