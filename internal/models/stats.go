package models

import (
	"time"
)

// ConfidenceInterval is an interval estimate for a proportion.
// Invariant: 0 <= Lower <= Mean <= Upper <= 1.
type ConfidenceInterval struct {
	Mean            float64 `json:"mean"`
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	ConfidenceLevel float64 `json:"confidence_level"`
}

// Width returns the width of the interval.
func (ci ConfidenceInterval) Width() float64 {
	return ci.Upper - ci.Lower
}

// Comparison is the outcome of testing two brands' mention rates against each
// other. Difference and ZStatistic negate under swapping the operands;
// PValue and Significant do not change.
type Comparison struct {
	RateA       float64 `json:"rate_a"`
	RateB       float64 `json:"rate_b"`
	Difference  float64 `json:"difference"`
	ZStatistic  float64 `json:"z_statistic"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"`
	EffectSize  float64 `json:"effect_size"`
}

// TrendDirection classifies a time-ordered series of rates.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// TrendResult is the outcome of fitting a least-squares line to a rate series.
type TrendResult struct {
	Direction   TrendDirection `json:"direction"`
	Significant bool           `json:"significant"`
	Slope       float64        `json:"slope"`
	PValue      float64        `json:"p_value"`
}

// TimeSeriesPoint is one observation of a brand's mention rate at a point in
// time, as assembled from the persisted history.
type TimeSeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Rate      float64   `json:"rate"`
}
