package survey

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/OliwiaLewandowska/som-monitor/internal/analyzer"
	"github.com/OliwiaLewandowska/som-monitor/internal/llm"
	"github.com/OliwiaLewandowska/som-monitor/internal/logger"
	"github.com/OliwiaLewandowska/som-monitor/internal/models"
)

// ErrNoResults indicates a survey where every single query failed.
var ErrNoResults = errors.New("no queries succeeded")

// Default retry configuration, matching the provider contract: rate-limit
// and transient failures are retried with backoff before counting as failed.
const (
	DefaultMaxRetries   = 3
	DefaultRetryDelay   = 5 * time.Second
	DefaultQueryTimeout = 90 * time.Second
)

// Config describes one survey: which (category, template, run, model) tuples
// to dispatch and how.
type Config struct {
	Categories   []string
	Models       []string
	Templates    map[string][]string
	RunsPerQuery int

	Temperature  float64
	MaxTokens    int
	MaxRetries   int
	RetryDelay   time.Duration
	QueryTimeout time.Duration

	// Workers bounds concurrent dispatch. 1 (the default) is the
	// sequential baseline; higher values share the same rate gate.
	Workers int
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.RunsPerQuery <= 0 {
		out.RunsPerQuery = 1
	}
	if out.MaxRetries <= 0 {
		out.MaxRetries = DefaultMaxRetries
	}
	if out.RetryDelay <= 0 {
		out.RetryDelay = DefaultRetryDelay
	}
	if out.QueryTimeout <= 0 {
		out.QueryTimeout = DefaultQueryTimeout
	}
	if out.Workers <= 0 {
		out.Workers = 1
	}
	return out
}

// Runner drives repeated queries against a provider, extracts mentions from
// each response, and assembles the survey report. A failed query is recorded
// and never aborts the survey; only bad credentials do.
type Runner struct {
	provider llm.Provider
	analyzer *analyzer.Analyzer
	gate     Gate
}

// NewRunner creates a survey runner. The gate paces dispatch; pass a
// token-bucket gate built from the configured rate-limit delay.
func NewRunner(provider llm.Provider, an *analyzer.Analyzer, gate Gate) *Runner {
	if gate == nil {
		gate = nopGate{}
	}
	return &Runner{provider: provider, analyzer: an, gate: gate}
}

type job struct {
	category string
	query    string
	run      int
	model    string
}

// Run executes the survey and returns the report, the collected results, and
// the failure list. Cancelling ctx stops dispatching new queries but still
// builds the report from what already succeeded. The error is ErrNoResults
// when every attempt failed, or the provider's auth error when credentials
// were rejected; in both cases the (degenerate or partial) report is still
// returned.
func (r *Runner) Run(ctx context.Context, cfg Config) (*models.SOMReport, []models.QueryResult, []models.Failure, error) {
	cfg = cfg.withDefaults()

	jobs, err := buildJobs(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	logger.Info("Starting survey: %d queries across %d models with %d workers",
		len(jobs), len(cfg.Models), cfg.Workers)

	dispatchCtx, cancelDispatch := context.WithCancel(ctx)
	defer cancelDispatch()

	var (
		mu       sync.Mutex
		results  []models.QueryResult
		failures []models.Failure
		authErr  error
	)

	startedAt := time.Now().UTC()
	jobCh := make(chan job)

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				result, ferr := r.dispatch(dispatchCtx, j, cfg, startedAt)

				mu.Lock()
				switch {
				case ferr == nil && result != nil:
					results = append(results, *result)
				case ferr != nil:
					failures = append(failures, models.Failure{
						Category: j.category,
						Model:    j.model,
						Query:    j.query,
						Kind:     string(llm.KindOf(ferr)),
						Error:    ferr.Error(),
					})
					if llm.KindOf(ferr) == llm.KindAuth && authErr == nil {
						authErr = ferr
						cancelDispatch()
					}
				}
				mu.Unlock()
			}
		}()
	}

dispatch:
	for _, j := range jobs {
		select {
		case jobCh <- j:
		case <-dispatchCtx.Done():
			break dispatch
		}
	}
	close(jobCh)
	wg.Wait()

	report, err := analyzer.BuildReport(results, r.analyzer.Brands(), len(jobs), len(failures))
	if err != nil {
		return nil, nil, nil, err
	}

	logger.Info("Survey complete: %d succeeded, %d failed", len(results), len(failures))

	switch {
	case authErr != nil:
		return report, results, failures, authErr
	case len(results) == 0:
		return report, results, failures, ErrNoResults
	}
	return report, results, failures, nil
}

// dispatch runs one query attempt through the gate, with retries, and turns
// a successful response into an immutable QueryResult. A nil, nil return
// means dispatch was cancelled before the query went out.
func (r *Runner) dispatch(ctx context.Context, j job, cfg Config, startedAt time.Time) (*models.QueryResult, error) {
	if err := r.gate.Wait(ctx); err != nil {
		return nil, nil
	}

	text, err := r.queryWithRetry(ctx, j, cfg)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, nil
		}
		logger.Warning("Query failed (category=%s model=%s): %v", j.category, j.model, err)
		return nil, err
	}

	mentions, order := r.analyzer.Extract(text)

	return &models.QueryResult{
		ID:           uuid.New().String(),
		Timestamp:    startedAt,
		Category:     j.category,
		Query:        j.query,
		Run:          j.run,
		Provider:     r.provider.Name(),
		Model:        j.model,
		Response:     text,
		Mentions:     mentions,
		MentionOrder: order,
	}, nil
}

func (r *Runner) queryWithRetry(ctx context.Context, j job, cfg Config) (string, error) {
	opts := llm.Options{Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens}

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		queryCtx, cancel := context.WithTimeout(ctx, cfg.QueryTimeout)
		text, err := r.provider.Query(queryCtx, j.query, j.model, opts)
		cancel()

		if err == nil {
			return text, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !llm.IsRetryable(err) || attempt == cfg.MaxRetries {
			break
		}

		backoff := cfg.RetryDelay * (1 << attempt)
		logger.Debug("Retrying in %v after attempt %d/%d: %v", backoff, attempt+1, cfg.MaxRetries, err)

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

func buildJobs(cfg Config) ([]job, error) {
	if len(cfg.Models) == 0 {
		return nil, fmt.Errorf("no models to survey")
	}

	var jobs []job
	for _, category := range cfg.Categories {
		for _, query := range cfg.Templates[category] {
			for run := 0; run < cfg.RunsPerQuery; run++ {
				for _, model := range cfg.Models {
					jobs = append(jobs, job{
						category: category,
						query:    query,
						run:      run,
						model:    model,
					})
				}
			}
		}
	}

	if len(jobs) == 0 {
		return nil, fmt.Errorf("no queries to dispatch: check categories and templates")
	}
	return jobs, nil
}
