package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/OliwiaLewandowska/som-monitor/internal/models"
)

// ErrInsufficientSample marks a statistical computation that is undefined for
// the given sample. Callers must surface it, never substitute a default.
var ErrInsufficientSample = errors.New("insufficient sample")

// ErrInvalidInput marks malformed arguments to the statistical functions.
var ErrInvalidInput = errors.New("invalid input")

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// zScore returns the two-sided critical value for the given confidence level,
// e.g. ~1.96 for 0.95.
func zScore(confidenceLevel float64) float64 {
	return stdNormal.Quantile((1 + confidenceLevel) / 2)
}

// ConfidenceInterval computes the Wilson score interval for a proportion.
// Wilson stays well-behaved at small n and proportions near 0 or 1, unlike
// the normal approximation. The reported mean is the sample proportion; the
// Wilson bounds always bracket it.
func ConfidenceInterval(successes, n int, confidenceLevel float64) (models.ConfidenceInterval, error) {
	if n == 0 {
		return models.ConfidenceInterval{}, fmt.Errorf("%w: no trials", ErrInsufficientSample)
	}
	if n < 0 || successes < 0 || successes > n {
		return models.ConfidenceInterval{}, fmt.Errorf("%w: successes=%d n=%d", ErrInvalidInput, successes, n)
	}
	if confidenceLevel <= 0 || confidenceLevel >= 1 {
		return models.ConfidenceInterval{}, fmt.Errorf("%w: confidence level %v outside (0,1)", ErrInvalidInput, confidenceLevel)
	}

	p := float64(successes) / float64(n)
	z := zScore(confidenceLevel)
	nf := float64(n)

	denominator := 1 + z*z/nf
	center := (p + z*z/(2*nf)) / denominator
	margin := z * math.Sqrt((p*(1-p)+z*z/(4*nf))/nf) / denominator

	return models.ConfidenceInterval{
		Mean:            p,
		Lower:           math.Max(0, center-margin),
		Upper:           math.Min(1, center+margin),
		ConfidenceLevel: confidenceLevel,
	}, nil
}
