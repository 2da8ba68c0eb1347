package stats

import (
	"fmt"
	"math"

	"github.com/OliwiaLewandowska/som-monitor/internal/models"
)

// Compare tests whether two mention rates differ, using a two-proportion
// z-test with the pooled proportion under the null hypothesis of equal rates.
// Swapping the operands negates Difference and ZStatistic and leaves PValue
// and Significant unchanged. EffectSize is Cohen's h, which stays meaningful
// for extreme proportions where the raw difference is misleading.
func Compare(successesA, nA, successesB, nB int, alpha float64) (models.Comparison, error) {
	if nA == 0 || nB == 0 {
		return models.Comparison{}, fmt.Errorf("%w: both samples need trials (n_a=%d, n_b=%d)", ErrInsufficientSample, nA, nB)
	}
	if successesA < 0 || successesA > nA || successesB < 0 || successesB > nB {
		return models.Comparison{}, fmt.Errorf("%w: successes out of range", ErrInvalidInput)
	}
	if alpha <= 0 || alpha >= 1 {
		return models.Comparison{}, fmt.Errorf("%w: alpha %v outside (0,1)", ErrInvalidInput, alpha)
	}

	pA := float64(successesA) / float64(nA)
	pB := float64(successesB) / float64(nB)
	pPool := float64(successesA+successesB) / float64(nA+nB)

	se := math.Sqrt(pPool * (1 - pPool) * (1/float64(nA) + 1/float64(nB)))

	cmp := models.Comparison{
		RateA:      pA,
		RateB:      pB,
		Difference: pA - pB,
		EffectSize: cohensH(pA, pB),
	}

	if se == 0 {
		// Both rates pinned at 0 or 1: no variance, nothing to test.
		cmp.PValue = 1
		return cmp, nil
	}

	cmp.ZStatistic = (pA - pB) / se
	cmp.PValue = 2 * stdNormal.CDF(-math.Abs(cmp.ZStatistic))
	cmp.Significant = cmp.PValue < alpha
	return cmp, nil
}

// cohensH is the arcsine-transformed difference between two proportions.
func cohensH(p1, p2 float64) float64 {
	return 2*math.Asin(math.Sqrt(p1)) - 2*math.Asin(math.Sqrt(p2))
}
