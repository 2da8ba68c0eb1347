package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OliwiaLewandowska/som-monitor/internal/models"
)

func resultMentioning(t *testing.T, an *Analyzer, text string) models.QueryResult {
	t.Helper()
	mentions, order := an.Extract(text)
	return models.QueryResult{
		ID:           "test",
		Timestamp:    time.Now().UTC(),
		Category:     "general",
		Model:        "test-model",
		Response:     text,
		Mentions:     mentions,
		MentionOrder: order,
	}
}

func TestAggregate_RatesAndRanking(t *testing.T) {
	an, err := New([]string{"OpenAI", "Anthropic", "Mistral"})
	require.NoError(t, err)

	results := []models.QueryResult{
		resultMentioning(t, an, "OpenAI then Anthropic."),
		resultMentioning(t, an, "Anthropic then OpenAI."),
		resultMentioning(t, an, "Only OpenAI here."),
		resultMentioning(t, an, "Nothing relevant."),
	}

	metrics, err := Aggregate(results, an.Brands())
	require.NoError(t, err)
	require.Len(t, metrics, 3)

	// OpenAI: 3/4 mentioned, Anthropic: 2/4, Mistral: 0/4.
	assert.Equal(t, "OpenAI", metrics[0].Brand)
	assert.InDelta(t, 0.75, metrics[0].MentionRate, 1e-12)
	assert.InDelta(t, 0.5, metrics[0].FirstMentionRate, 1e-12)

	assert.Equal(t, "Anthropic", metrics[1].Brand)
	assert.InDelta(t, 0.5, metrics[1].MentionRate, 1e-12)
	assert.InDelta(t, 0.25, metrics[1].FirstMentionRate, 1e-12)

	assert.Equal(t, "Mistral", metrics[2].Brand)
	assert.Zero(t, metrics[2].MentionRate)
	assert.Nil(t, metrics[2].AveragePosition)

	for _, m := range metrics {
		assert.Equal(t, 4, m.SampleSize)
		assert.LessOrEqual(t, m.FirstMentionRate, m.MentionRate)
	}
}

func TestAggregate_TiesBrokenByFirstMentionThenName(t *testing.T) {
	an, err := New([]string{"Alpha", "Beta"})
	require.NoError(t, err)

	// Both mentioned in both results; Alpha leads once, Beta leads once.
	results := []models.QueryResult{
		resultMentioning(t, an, "Alpha before Beta."),
		resultMentioning(t, an, "Beta before Alpha."),
	}

	metrics, err := Aggregate(results, an.Brands())
	require.NoError(t, err)

	// Equal mention and first-mention rates: name ascending decides.
	assert.Equal(t, "Alpha", metrics[0].Brand)
	assert.Equal(t, "Beta", metrics[1].Brand)
}

func TestAggregate_AveragePosition(t *testing.T) {
	an, err := New([]string{"OpenAI", "Anthropic"})
	require.NoError(t, err)

	results := []models.QueryResult{
		resultMentioning(t, an, "OpenAI then Anthropic."), // Anthropic at rank 1
		resultMentioning(t, an, "Anthropic alone."),       // Anthropic at rank 0
	}

	metrics, err := Aggregate(results, an.Brands())
	require.NoError(t, err)

	for _, m := range metrics {
		if m.Brand == "Anthropic" {
			require.NotNil(t, m.AveragePosition)
			assert.InDelta(t, 0.5, *m.AveragePosition, 1e-12)
		}
	}
}

func TestAggregate_EmptyResults(t *testing.T) {
	metrics, err := Aggregate(nil, []string{"OpenAI"})
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.Zero(t, metrics[0].SampleSize)
	assert.Zero(t, metrics[0].MentionRate)
}

func TestAggregate_EmptyBrands(t *testing.T) {
	_, err := Aggregate(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBuildReport_MetadataAndDegenerate(t *testing.T) {
	an, err := New([]string{"OpenAI"})
	require.NoError(t, err)

	results := []models.QueryResult{resultMentioning(t, an, "OpenAI wins.")}

	report, err := BuildReport(results, an.Brands(), 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Metadata.TotalQueries)
	assert.Equal(t, 2, report.Metadata.FailureCount)
	assert.Equal(t, []string{"general"}, report.Metadata.Categories)
	assert.Equal(t, []string{"test-model"}, report.Metadata.Models)
	assert.False(t, report.Degenerate())

	empty, err := BuildReport(nil, an.Brands(), 5, 5)
	require.NoError(t, err)
	assert.True(t, empty.Degenerate())
}
