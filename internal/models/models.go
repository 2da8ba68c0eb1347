package models

import (
	"time"
)

// BrandMention records whether and where a brand appeared in one response.
// Position is the 0-based rank of the brand's first occurrence among all
// mentioned brands in that response; it is nil exactly when Mentioned is false.
type BrandMention struct {
	Brand     string `json:"brand" bson:"brand"`
	Mentioned bool   `json:"mentioned" bson:"mentioned"`
	Position  *int   `json:"position,omitempty" bson:"position,omitempty"`
	Count     int    `json:"count" bson:"count"`
	Context   string `json:"context,omitempty" bson:"context,omitempty"`
}

// QueryResult is one successful provider call together with its mention
// analysis. Results are immutable once built and are the unit of persistence.
type QueryResult struct {
	ID           string                  `json:"id" bson:"_id"`
	Timestamp    time.Time               `json:"timestamp" bson:"timestamp"`
	Category     string                  `json:"category" bson:"category"`
	Query        string                  `json:"query" bson:"query"`
	Run          int                     `json:"run" bson:"run"`
	Provider     string                  `json:"provider" bson:"provider"`
	Model        string                  `json:"model" bson:"model"`
	Response     string                  `json:"response" bson:"response"`
	Mentions     map[string]BrandMention `json:"mentions" bson:"mentions"`
	MentionOrder []string                `json:"mention_order" bson:"mention_order"`
}

// FirstMentioned reports whether brand is the first brand mentioned in this result.
func (r *QueryResult) FirstMentioned(brand string) bool {
	return len(r.MentionOrder) > 0 && r.MentionOrder[0] == brand
}

// SOMMetrics holds per-brand share-of-model statistics over a result set.
// AveragePosition is nil when the brand was never mentioned in the sample.
type SOMMetrics struct {
	Brand            string   `json:"brand"`
	SampleSize       int      `json:"sample_size"`
	MentionRate      float64  `json:"mention_rate"`
	FirstMentionRate float64  `json:"first_mention_rate"`
	AveragePosition  *float64 `json:"average_position,omitempty"`
	TotalMentions    int      `json:"total_mentions"`
}

// ReportMetadata describes the sample a report was built from.
type ReportMetadata struct {
	Categories   []string `json:"categories"`
	Models       []string `json:"models"`
	TotalQueries int      `json:"total_queries"`
	FailureCount int      `json:"failure_count"`
}

// SOMReport is a ranked snapshot of SOMMetrics for every tracked brand.
// Metrics are ordered by mention rate, then first-mention rate, then name.
type SOMReport struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Metrics     []SOMMetrics   `json:"metrics"`
	Metadata    ReportMetadata `json:"metadata"`
}

// Degenerate reports whether the report was built from zero successful
// queries. Callers must flag such reports instead of displaying 0% rates.
func (r *SOMReport) Degenerate() bool {
	return len(r.Metrics) == 0 || r.Metrics[0].SampleSize == 0
}

// Failure records one query attempt that did not produce a QueryResult.
type Failure struct {
	Category string `json:"category"`
	Model    string `json:"model"`
	Query    string `json:"query"`
	Kind     string `json:"kind"`
	Error    string `json:"error,omitempty"`
}
