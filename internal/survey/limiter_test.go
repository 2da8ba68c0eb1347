package survey

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketGate_PacesDispatch(t *testing.T) {
	gate := NewTokenBucketGate(20 * time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, gate.Wait(context.Background()))
	}
	// First token is free; two more need ~40ms of refill.
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestTokenBucketGate_ZeroDelayIsNop(t *testing.T) {
	gate := NewTokenBucketGate(0)

	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, gate.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestFixedDelayGate_PacesDispatch(t *testing.T) {
	gate := NewFixedDelayGate(15 * time.Millisecond)

	start := time.Now()
	require.NoError(t, gate.Wait(context.Background()))
	require.NoError(t, gate.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestGates_HonorCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, NewTokenBucketGate(time.Hour).Wait(ctx))
	assert.Error(t, NewFixedDelayGate(time.Hour).Wait(ctx))
}
