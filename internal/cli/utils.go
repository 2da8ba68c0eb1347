package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/OliwiaLewandowska/som-monitor/internal/models"
	"github.com/OliwiaLewandowska/som-monitor/internal/stats"
)

// printReport renders the ranked share-of-model table with a Wilson interval
// per brand. Degenerate reports (no successful queries) are flagged instead
// of showing misleading 0% rates.
func printReport(report *models.SOMReport, confidenceLevel float64) {
	fmt.Println()
	fmt.Printf("%s📊 Share of Model Report%s\n", HeaderStyle, Reset)
	fmt.Printf("%s========================%s\n", DimStyle, Reset)
	fmt.Println(FormatLabelValue("Generated:", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC")))
	fmt.Println(FormatLabelValue("Categories:", strings.Join(report.Metadata.Categories, ", ")))
	fmt.Println(FormatLabelValue("Models:", strings.Join(report.Metadata.Models, ", ")))
	fmt.Printf("%s%s%s %s total, %s failed\n", LabelStyle, "Queries:", Reset,
		FormatCount(report.Metadata.TotalQueries), FormatCount(report.Metadata.FailureCount))

	if report.Degenerate() {
		fmt.Printf("\n%s⚠️  No successful queries: rates below are undefined, not zero.%s\n", WarningStyle, Reset)
		return
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "RANK\tBRAND\tMENTION RATE\t%.0f%% CI\tFIRST MENTION\tAVG POSITION\tMENTIONS\n", confidenceLevel*100)
	for i, m := range report.Metrics {
		interval := "-"
		if ci, err := stats.ConfidenceInterval(m.TotalMentions, m.SampleSize, confidenceLevel); err == nil {
			interval = fmt.Sprintf("[%.1f%%, %.1f%%]", ci.Lower*100, ci.Upper*100)
		}
		position := "-"
		if m.AveragePosition != nil {
			position = fmt.Sprintf("%.2f", *m.AveragePosition)
		}
		fmt.Fprintf(w, "%d\t%s\t%.1f%%\t%s\t%.1f%%\t%s\t%d\n",
			i+1, m.Brand, m.MentionRate*100, interval, m.FirstMentionRate*100, position, m.TotalMentions)
	}
	w.Flush()
}

// loadLatestResults opens the configured result store and reads back the most
// recent survey.
func loadLatestResults(ctx context.Context) ([]models.QueryResult, error) {
	store, err := openResultStore(ctx)
	if err != nil {
		return nil, err
	}
	defer store.Close(ctx)

	return store.LoadLatest(ctx)
}

func countMentions(results []models.QueryResult, brand string) int {
	count := 0
	for _, res := range results {
		if m, ok := res.Mentions[brand]; ok && m.Mentioned {
			count++
		}
	}
	return count
}
