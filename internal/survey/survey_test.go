package survey

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OliwiaLewandowska/som-monitor/internal/analyzer"
	"github.com/OliwiaLewandowska/som-monitor/internal/llm"
)

// fakeProvider returns scripted responses or errors, keyed by call count.
type fakeProvider struct {
	mu       sync.Mutex
	calls    int
	response func(call int, prompt string) (string, error)
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Query(ctx context.Context, prompt, model string, opts llm.Options) (string, error) {
	f.mu.Lock()
	call := f.calls
	f.calls++
	f.mu.Unlock()
	return f.response(call, prompt)
}

func testConfig() Config {
	return Config{
		Categories:   []string{"general"},
		Models:       []string{"fake-model"},
		Templates:    map[string][]string{"general": {"Who leads in AI?"}},
		RunsPerQuery: 10,
		MaxRetries:   1,
		RetryDelay:   time.Millisecond,
		QueryTimeout: time.Second,
	}
}

func newTestRunner(t *testing.T, p llm.Provider) *Runner {
	t.Helper()
	an, err := analyzer.New([]string{"OpenAI", "Anthropic"})
	require.NoError(t, err)
	return NewRunner(p, an, nil)
}

func TestRun_AllQueriesSucceed(t *testing.T) {
	provider := &fakeProvider{response: func(call int, prompt string) (string, error) {
		return "OpenAI is ahead, Anthropic close behind.", nil
	}}
	runner := newTestRunner(t, provider)

	report, results, failures, err := runner.Run(context.Background(), testConfig())
	require.NoError(t, err)
	require.Len(t, results, 10)
	assert.Empty(t, failures)

	assert.Equal(t, 10, report.Metadata.TotalQueries)
	assert.Equal(t, 0, report.Metadata.FailureCount)
	assert.Equal(t, "OpenAI", report.Metrics[0].Brand)
	assert.InDelta(t, 1.0, report.Metrics[0].MentionRate, 1e-12)

	// All results share the survey timestamp and carry unique IDs.
	ids := make(map[string]bool)
	for _, r := range results {
		assert.Equal(t, results[0].Timestamp, r.Timestamp)
		assert.Equal(t, "fake", r.Provider)
		ids[r.ID] = true
	}
	assert.Len(t, ids, 10)
}

func TestRun_FatalFailuresAreRecordedNotFatal(t *testing.T) {
	provider := &fakeProvider{response: func(call int, prompt string) (string, error) {
		if call < 2 {
			return "", llm.NewError("fake", llm.KindFatal, errors.New("bad request"))
		}
		return "Anthropic only.", nil
	}}
	runner := newTestRunner(t, provider)

	report, results, failures, err := runner.Run(context.Background(), testConfig())
	require.NoError(t, err)

	assert.Len(t, results, 8)
	assert.Len(t, failures, 2)
	assert.Equal(t, "fatal", failures[0].Kind)
	assert.Equal(t, 10, report.Metadata.TotalQueries)
	assert.Equal(t, 2, report.Metadata.FailureCount)

	// Rates are computed over the 8 successes, not over 10 attempts.
	for _, m := range report.Metrics {
		assert.Equal(t, 8, m.SampleSize)
	}
}

func TestRun_TransientErrorsAreRetried(t *testing.T) {
	provider := &fakeProvider{response: func(call int, prompt string) (string, error) {
		if call%2 == 0 {
			return "", llm.NewError("fake", llm.KindTransient, errors.New("503"))
		}
		return "OpenAI again.", nil
	}}
	runner := newTestRunner(t, provider)

	cfg := testConfig()
	cfg.RunsPerQuery = 3

	_, results, failures, err := runner.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Empty(t, failures)
}

func TestRun_AuthErrorAbortsSurvey(t *testing.T) {
	provider := &fakeProvider{response: func(call int, prompt string) (string, error) {
		if call == 0 {
			return "Anthropic first.", nil
		}
		return "", llm.NewError("fake", llm.KindAuth, errors.New("401"))
	}}
	runner := newTestRunner(t, provider)

	report, results, failures, err := runner.Run(context.Background(), testConfig())
	require.Error(t, err)
	assert.Equal(t, llm.KindAuth, llm.KindOf(err))

	// The partial report is still produced.
	require.NotNil(t, report)
	assert.Len(t, results, 1)
	assert.NotEmpty(t, failures)
	assert.False(t, report.Degenerate())
}

func TestRun_NoSuccessesYieldsErrNoResults(t *testing.T) {
	provider := &fakeProvider{response: func(call int, prompt string) (string, error) {
		return "", llm.NewError("fake", llm.KindFatal, errors.New("broken"))
	}}
	runner := newTestRunner(t, provider)

	report, results, failures, err := runner.Run(context.Background(), testConfig())
	assert.ErrorIs(t, err, ErrNoResults)

	require.NotNil(t, report)
	assert.True(t, report.Degenerate())
	assert.Empty(t, results)
	assert.Len(t, failures, 10)
}

func TestRun_CancellationKeepsPartialResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	provider := &fakeProvider{response: func(call int, prompt string) (string, error) {
		if call == 2 {
			cancel()
		}
		return fmt.Sprintf("Response %d mentions OpenAI.", call), nil
	}}
	runner := newTestRunner(t, provider)

	report, results, _, err := runner.Run(ctx, testConfig())
	require.NoError(t, err)

	require.NotNil(t, report)
	assert.NotEmpty(t, results)
	assert.Less(t, len(results), 10)
}

func TestRun_EmptyPlanFails(t *testing.T) {
	runner := newTestRunner(t, &fakeProvider{response: func(int, string) (string, error) { return "", nil }})

	cfg := testConfig()
	cfg.Models = nil
	_, _, _, err := runner.Run(context.Background(), cfg)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Categories = nil
	_, _, _, err = runner.Run(context.Background(), cfg)
	assert.Error(t, err)
}
