package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfidenceInterval_KnownValue(t *testing.T) {
	// Wilson interval for 6/10 at 95%: roughly [0.31, 0.83].
	ci, err := ConfidenceInterval(6, 10, 0.95)
	require.NoError(t, err)

	assert.InDelta(t, 0.6, ci.Mean, 1e-12)
	assert.InDelta(t, 0.3127, ci.Lower, 0.001)
	assert.InDelta(t, 0.8318, ci.Upper, 0.001)
	assert.Equal(t, 0.95, ci.ConfidenceLevel)
}

func TestConfidenceInterval_BracketsProportion(t *testing.T) {
	cases := []struct{ successes, n int }{
		{0, 10}, {10, 10}, {1, 3}, {50, 100}, {99, 100},
	}
	for _, tc := range cases {
		ci, err := ConfidenceInterval(tc.successes, tc.n, 0.95)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, ci.Mean, ci.Lower)
		assert.LessOrEqual(t, ci.Mean, ci.Upper)
		assert.GreaterOrEqual(t, ci.Lower, 0.0)
		assert.LessOrEqual(t, ci.Upper, 1.0)
	}
}

func TestConfidenceInterval_NarrowsWithSampleSize(t *testing.T) {
	small, err := ConfidenceInterval(6, 10, 0.95)
	require.NoError(t, err)
	large, err := ConfidenceInterval(60, 100, 0.95)
	require.NoError(t, err)

	assert.Less(t, large.Width(), small.Width())
}

func TestConfidenceInterval_WidensWithConfidence(t *testing.T) {
	at90, err := ConfidenceInterval(6, 10, 0.90)
	require.NoError(t, err)
	at99, err := ConfidenceInterval(6, 10, 0.99)
	require.NoError(t, err)

	assert.Greater(t, at99.Width(), at90.Width())
}

func TestConfidenceInterval_Errors(t *testing.T) {
	_, err := ConfidenceInterval(0, 0, 0.95)
	assert.ErrorIs(t, err, ErrInsufficientSample)

	_, err = ConfidenceInterval(11, 10, 0.95)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ConfidenceInterval(-1, 10, 0.95)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ConfidenceInterval(5, 10, 1.0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
