package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OliwiaLewandowska/som-monitor/internal/models"
	"github.com/OliwiaLewandowska/som-monitor/internal/stats"
	"github.com/OliwiaLewandowska/som-monitor/internal/storage"
)

var (
	trendCategory string
	trendModel    string
)

var trendCmd = &cobra.Command{
	Use:   "trend <brand>",
	Short: "Detect a trend in a brand's mention rate over past surveys",
	Long: `Fit a least-squares line to the brand's per-survey mention rates and test
whether the slope differs significantly from zero. Needs at least three
recorded surveys.`,
	Args: cobra.ExactArgs(1),
	RunE: runTrend,
}

func init() {
	trendCmd.Flags().StringVar(&trendCategory, "category", "", "restrict to one template category")
	trendCmd.Flags().StringVar(&trendModel, "model", "", "restrict to one model")
}

func runTrend(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	brand := args[0]

	store, err := openHistoryStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	points, err := store.RateSeries(ctx, brand, storage.SeriesFilter{
		Category: trendCategory,
		Model:    trendModel,
	})
	if err != nil {
		return err
	}

	rates := make([]float64, len(points))
	for i, p := range points {
		rates[i] = p.Rate
	}

	trend, err := stats.DetectTrend(rates, cfg.SignificanceAlpha)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("%s📈 Trend for %s%s\n", HeaderStyle, brand, Reset)
	fmt.Printf("%s=============%s\n", DimStyle, Reset)
	for _, p := range points {
		fmt.Printf("  %s %.1f%%\n", FormatMeta(p.Timestamp.Format("2006-01-02 15:04")), p.Rate*100)
	}
	fmt.Println()
	fmt.Println(FormatLabelValue("Surveys:", fmt.Sprintf("%d", len(points))))
	fmt.Println(FormatLabelValue("Slope:", fmt.Sprintf("%+.4f per survey", trend.Slope)))
	fmt.Println(FormatLabelValue("P-value:", fmt.Sprintf("%.4f", trend.PValue)))

	switch trend.Direction {
	case models.TrendIncreasing:
		fmt.Printf("\n%s📈 Increasing at alpha %.2f%s\n", SuccessStyle, cfg.SignificanceAlpha, Reset)
	case models.TrendDecreasing:
		fmt.Printf("\n%s📉 Decreasing at alpha %.2f%s\n", ErrorStyle, cfg.SignificanceAlpha, Reset)
	default:
		fmt.Printf("\n%sStable: no significant trend at alpha %.2f%s\n", DimStyle, cfg.SignificanceAlpha, Reset)
	}
	return nil
}
