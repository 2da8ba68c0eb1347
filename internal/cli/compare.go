package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OliwiaLewandowska/som-monitor/internal/stats"
)

var compareCmd = &cobra.Command{
	Use:   "compare <brand-a> <brand-b>",
	Short: "Test whether two brands' mention rates differ significantly",
	Long: `Run a two-proportion z-test on the mention rates of two brands in the most
recent survey. Reports the rate difference, z statistic, p-value and Cohen's h
effect size.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	brandA, brandB := args[0], args[1]

	results, err := loadLatestResults(ctx)
	if err != nil {
		return err
	}

	cmpResult, err := stats.Compare(
		countMentions(results, brandA), len(results),
		countMentions(results, brandB), len(results),
		cfg.SignificanceAlpha,
	)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("%s⚖️  Brand Comparison%s\n", HeaderStyle, Reset)
	fmt.Printf("%s===================%s\n", DimStyle, Reset)
	fmt.Println(FormatLabelValue(brandA+":", fmt.Sprintf("%.1f%%", cmpResult.RateA*100)))
	fmt.Println(FormatLabelValue(brandB+":", fmt.Sprintf("%.1f%%", cmpResult.RateB*100)))
	fmt.Println(FormatLabelValue("Difference:", fmt.Sprintf("%+.1f pp", cmpResult.Difference*100)))
	fmt.Println(FormatLabelValue("Z statistic:", fmt.Sprintf("%.3f", cmpResult.ZStatistic)))
	fmt.Println(FormatLabelValue("P-value:", fmt.Sprintf("%.4f", cmpResult.PValue)))
	fmt.Println(FormatLabelValue("Effect size (h):", fmt.Sprintf("%.3f", cmpResult.EffectSize)))

	if cmpResult.Significant {
		fmt.Printf("\n%s✅ Significant at alpha %.2f%s\n", SuccessStyle, cfg.SignificanceAlpha, Reset)
	} else {
		fmt.Printf("\n%sNot significant at alpha %.2f%s\n", DimStyle, cfg.SignificanceAlpha, Reset)
	}
	return nil
}
