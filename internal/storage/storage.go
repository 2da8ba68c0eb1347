package storage

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/OliwiaLewandowska/som-monitor/internal/models"
)

// ErrNoHistory indicates that no survey history exists yet for the
// requested brand and filter.
var ErrNoHistory = errors.New("no history recorded")

// ResultStore persists full survey results and retrieves the most recent
// survey for reporting.
type ResultStore interface {
	SaveResults(ctx context.Context, results []models.QueryResult) error
	LoadLatest(ctx context.Context) ([]models.QueryResult, error)
	Close(ctx context.Context) error
}

// HistoryRow is one flattened (survey, category, model, brand) observation.
// One QueryResult produces one row per tracked brand.
type HistoryRow struct {
	Timestamp time.Time
	Category  string
	Model     string
	Brand     string
	Mentioned bool
	Position  *int
}

// SeriesFilter narrows a rate series to one category and/or model.
// Empty fields match everything.
type SeriesFilter struct {
	Category string
	Model    string
}

// HistoryStore accumulates flattened rows across surveys and serves the
// per-survey mention-rate series used for trend detection. Surveys are
// identified by their shared timestamp.
type HistoryStore interface {
	Append(ctx context.Context, rows []HistoryRow) error
	RateSeries(ctx context.Context, brand string, filter SeriesFilter) ([]models.TimeSeriesPoint, error)
	Close(ctx context.Context) error
}

// Flatten converts survey results into history rows, one per result and
// tracked brand.
func Flatten(results []models.QueryResult, brands []string) []HistoryRow {
	rows := make([]HistoryRow, 0, len(results)*len(brands))
	for _, res := range results {
		for _, brand := range brands {
			row := HistoryRow{
				Timestamp: res.Timestamp,
				Category:  res.Category,
				Model:     res.Model,
				Brand:     brand,
			}
			if m, ok := res.Mentions[brand]; ok && m.Mentioned {
				row.Mentioned = true
				if m.Position != nil {
					pos := *m.Position
					row.Position = &pos
				}
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// SeriesFromRows groups rows by survey timestamp and computes the mention
// rate of brand within each survey, ordered oldest first. Shared by the
// file-backed store; the SQL store pushes the same grouping into a query.
func SeriesFromRows(rows []HistoryRow, brand string, filter SeriesFilter) ([]models.TimeSeriesPoint, error) {
	type bucket struct {
		mentioned int
		total     int
	}
	buckets := make(map[time.Time]*bucket)
	for _, row := range rows {
		if row.Brand != brand {
			continue
		}
		if filter.Category != "" && row.Category != filter.Category {
			continue
		}
		if filter.Model != "" && row.Model != filter.Model {
			continue
		}
		b := buckets[row.Timestamp]
		if b == nil {
			b = &bucket{}
			buckets[row.Timestamp] = b
		}
		b.total++
		if row.Mentioned {
			b.mentioned++
		}
	}

	if len(buckets) == 0 {
		return nil, ErrNoHistory
	}

	points := make([]models.TimeSeriesPoint, 0, len(buckets))
	for ts, b := range buckets {
		points = append(points, models.TimeSeriesPoint{
			Timestamp: ts,
			Rate:      float64(b.mentioned) / float64(b.total),
		})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points, nil
}
