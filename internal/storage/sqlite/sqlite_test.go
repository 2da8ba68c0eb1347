package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OliwiaLewandowska/som-monitor/internal/storage"
)

func intPtr(i int) *int { return &i }

func TestHistoryStore_AppendAndRateSeries(t *testing.T) {
	ctx := context.Background()
	store, err := NewHistoryStore(ctx, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close(ctx)

	day := func(d int) time.Time { return time.Date(2026, 8, d, 6, 0, 0, 0, time.UTC) }

	require.NoError(t, store.Append(ctx, []storage.HistoryRow{
		{Timestamp: day(1), Category: "general", Model: "m1", Brand: "OpenAI", Mentioned: true, Position: intPtr(0)},
		{Timestamp: day(1), Category: "general", Model: "m1", Brand: "OpenAI", Mentioned: false},
		{Timestamp: day(1), Category: "general", Model: "m1", Brand: "Anthropic", Mentioned: true},
	}))
	require.NoError(t, store.Append(ctx, []storage.HistoryRow{
		{Timestamp: day(2), Category: "general", Model: "m1", Brand: "OpenAI", Mentioned: true, Position: intPtr(1)},
	}))

	points, err := store.RateSeries(ctx, "OpenAI", storage.SeriesFilter{})
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.InDelta(t, 0.5, points[0].Rate, 1e-12)
	assert.InDelta(t, 1.0, points[1].Rate, 1e-12)
}

func TestHistoryStore_Filters(t *testing.T) {
	ctx := context.Background()
	store, err := NewHistoryStore(ctx, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close(ctx)

	ts := time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(ctx, []storage.HistoryRow{
		{Timestamp: ts, Category: "general", Model: "m1", Brand: "OpenAI", Mentioned: true},
		{Timestamp: ts, Category: "coding", Model: "m2", Brand: "OpenAI", Mentioned: false},
	}))

	points, err := store.RateSeries(ctx, "OpenAI", storage.SeriesFilter{Category: "general"})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.InDelta(t, 1.0, points[0].Rate, 1e-12)

	points, err = store.RateSeries(ctx, "OpenAI", storage.SeriesFilter{Model: "m2"})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.InDelta(t, 0.0, points[0].Rate, 1e-12)

	_, err = store.RateSeries(ctx, "Mistral", storage.SeriesFilter{})
	assert.ErrorIs(t, err, storage.ErrNoHistory)
}

func TestHistoryStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := NewHistoryStore(ctx, path)
	require.NoError(t, err)

	ts := time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(ctx, []storage.HistoryRow{
		{Timestamp: ts, Category: "general", Model: "m1", Brand: "OpenAI", Mentioned: true},
	}))
	require.NoError(t, store.Close(ctx))

	// Reopen runs migrations again; they must be idempotent.
	store, err = NewHistoryStore(ctx, path)
	require.NoError(t, err)
	defer store.Close(ctx)

	points, err := store.RateSeries(ctx, "OpenAI", storage.SeriesFilter{})
	require.NoError(t, err)
	require.Len(t, points, 1)
}
