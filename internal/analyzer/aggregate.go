package analyzer

import (
	"fmt"
	"sort"
	"time"

	"github.com/OliwiaLewandowska/som-monitor/internal/models"
)

// Aggregate folds a set of query results into per-brand SOM metrics. The
// returned slice is ranked by mention rate descending, then first-mention
// rate descending, then brand name ascending, so report order is a
// deterministic total order. An empty result set is allowed and produces
// metrics with sample size 0 for every brand; an empty brand list is not.
func Aggregate(results []models.QueryResult, brands []string) ([]models.SOMMetrics, error) {
	if len(brands) == 0 {
		return nil, fmt.Errorf("%w: no brands to aggregate", ErrInvalidInput)
	}

	sampleSize := len(results)
	metrics := make([]models.SOMMetrics, 0, len(brands))

	for _, brand := range brands {
		var mentioned, first int
		var positionSum float64

		for i := range results {
			m, ok := results[i].Mentions[brand]
			if !ok || !m.Mentioned {
				continue
			}
			mentioned++
			if m.Position != nil {
				positionSum += float64(*m.Position)
			}
			if results[i].FirstMentioned(brand) {
				first++
			}
		}

		bm := models.SOMMetrics{
			Brand:         brand,
			SampleSize:    sampleSize,
			TotalMentions: mentioned,
		}
		if sampleSize > 0 {
			bm.MentionRate = float64(mentioned) / float64(sampleSize)
			bm.FirstMentionRate = float64(first) / float64(sampleSize)
		}
		if mentioned > 0 {
			avg := positionSum / float64(mentioned)
			bm.AveragePosition = &avg
		}
		metrics = append(metrics, bm)
	}

	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].MentionRate != metrics[j].MentionRate {
			return metrics[i].MentionRate > metrics[j].MentionRate
		}
		if metrics[i].FirstMentionRate != metrics[j].FirstMentionRate {
			return metrics[i].FirstMentionRate > metrics[j].FirstMentionRate
		}
		return metrics[i].Brand < metrics[j].Brand
	})

	return metrics, nil
}

// BuildReport aggregates results and wraps them in a SOMReport.
// totalQueries is the number of attempts the sample came from; for a report
// over loaded results it equals len(results) with failureCount 0.
func BuildReport(results []models.QueryResult, brands []string, totalQueries, failureCount int) (*models.SOMReport, error) {
	metrics, err := Aggregate(results, brands)
	if err != nil {
		return nil, err
	}

	categories := make(map[string]bool)
	modelSet := make(map[string]bool)
	for i := range results {
		categories[results[i].Category] = true
		modelSet[results[i].Model] = true
	}

	return &models.SOMReport{
		GeneratedAt: time.Now().UTC(),
		Metrics:     metrics,
		Metadata: models.ReportMetadata{
			Categories:   sortedKeys(categories),
			Models:       sortedKeys(modelSet),
			TotalQueries: totalQueries,
			FailureCount: failureCount,
		},
	}, nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
