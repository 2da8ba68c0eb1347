package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/OliwiaLewandowska/som-monitor/internal/models"
)

// DetectTrend fits an ordinary least-squares line to the series against its
// index positions and t-tests the slope against zero using the residual
// variance. The series is increasing or decreasing only when the slope is
// significant at alpha; otherwise it is stable. A perfect-fit series has no
// residual variance to test against, so it is classified by slope alone.
func DetectTrend(series []float64, alpha float64) (models.TrendResult, error) {
	if len(series) < 3 {
		return models.TrendResult{}, fmt.Errorf("%w: need at least 3 points, got %d", ErrInsufficientSample, len(series))
	}
	if alpha <= 0 || alpha >= 1 {
		return models.TrendResult{}, fmt.Errorf("%w: alpha %v outside (0,1)", ErrInvalidInput, alpha)
	}

	n := len(series)
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}

	intercept, slope := stat.LinearRegression(xs, series, nil, false)

	var sse, sxx float64
	xMean := float64(n-1) / 2
	for i, y := range series {
		residual := y - (intercept + slope*xs[i])
		sse += residual * residual
		sxx += (xs[i] - xMean) * (xs[i] - xMean)
	}

	result := models.TrendResult{Slope: slope, Direction: models.TrendStable}

	if sse <= 1e-12 {
		// Zero residual variance: the line fits exactly.
		if slope != 0 {
			result.Significant = true
		} else {
			result.PValue = 1
		}
	} else {
		s2 := sse / float64(n-2)
		seSlope := math.Sqrt(s2 / sxx)
		t := slope / seSlope
		dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
		result.PValue = 2 * dist.CDF(-math.Abs(t))
		result.Significant = result.PValue < alpha
	}

	if result.Significant {
		if slope > 0 {
			result.Direction = models.TrendIncreasing
		} else {
			result.Direction = models.TrendDecreasing
		}
	}

	return result, nil
}
