// Package executor applies a plan against the remote API with
// rate-limit-aware retries.
package executor

import (
	"context"
	"log/slog"
	"time"

	"github.com/hctools/hc-bulk/internal/metrics"
	"github.com/hctools/hc-bulk/internal/models"
	"github.com/hctools/hc-bulk/internal/plan"
	"github.com/hctools/hc-bulk/internal/repo"
	"github.com/hctools/hc-bulk/internal/utils"
)

// Mutator is the slice of the API client the executor needs.
type Mutator interface {
	UpdateCheck(ctx context.Context, uuid string, upd models.CheckUpdate) (*models.Check, error)
	PauseCheck(ctx context.Context, uuid string) (*models.Check, error)
}

// Failure records one check the executor could not mutate.
type Failure struct {
	UUID string
	Name string
	Err  error
}

// Result aggregates the outcome of a plan execution.
type Result struct {
	Attempted int
	Failures  []Failure
}

// Errors returns the number of failed items.
func (r Result) Errors() int {
	return len(r.Failures)
}

// Executor applies mutating calls one at a time, in plan order, sleeping
// and retrying on rate limits. Each call starts its own fresh backoff
// sequence; non-rate-limit failures propagate immediately.
type Executor struct {
	logger        *slog.Logger
	initialDelay  time.Duration
	maxDelay      time.Duration
	sleep         func(time.Duration)
	isRateLimited func(error) bool
	latencies     *utils.LatencyTracker
}

// Option adjusts executor behaviour, mainly for tests.
type Option func(*Executor)

// WithSleep replaces the wall-clock sleep.
func WithSleep(sleep func(time.Duration)) Option {
	return func(e *Executor) { e.sleep = sleep }
}

// WithRateLimitPredicate replaces the rate-limit detection predicate.
func WithRateLimitPredicate(pred func(error) bool) Option {
	return func(e *Executor) { e.isRateLimited = pred }
}

// New constructs an Executor. Zero or negative delays fall back to the
// 1s/8s defaults.
func New(logger *slog.Logger, initialDelay, maxDelay time.Duration, opts ...Option) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	if initialDelay <= 0 {
		initialDelay = time.Second
	}
	if maxDelay < initialDelay {
		maxDelay = 8 * time.Second
	}
	e := &Executor{
		logger:        logger,
		initialDelay:  initialDelay,
		maxDelay:      maxDelay,
		sleep:         time.Sleep,
		isRateLimited: repo.IsRateLimited,
		latencies:     utils.NewLatencyTracker(1024),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Do invokes call, sleeping and retrying for as long as it keeps
// reporting a rate limit. The delay starts at the configured initial
// value and doubles after each attempt up to the ceiling. There is no
// retry cap: the loop ends only on success or a non-rate-limit error.
func (e *Executor) Do(ctx context.Context, call func(context.Context) error) error {
	delay := e.initialDelay
	for {
		start := time.Now()
		err := call(ctx)
		e.latencies.Observe(time.Since(start))
		if err == nil {
			return nil
		}
		if !e.isRateLimited(err) {
			return err
		}
		e.logger.Warn("rate limited, backing off",
			slog.Duration("delay", delay),
			slog.Any("error", err))
		metrics.ObserveRateLimitRetry()
		e.sleep(delay)
		delay *= 2
		if delay > e.maxDelay {
			delay = e.maxDelay
		}
	}
}

// Run executes the plan in order: update first (when present), then pause
// (when flagged), per item. A failed item is logged and counted but never
// stops the remaining items. The optional tick callback fires once per
// item, for progress display.
func (e *Executor) Run(ctx context.Context, client Mutator, p plan.Plan, tick func()) Result {
	result := Result{}
	for _, item := range p {
		result.Attempted++
		if err := e.applyItem(ctx, client, item); err != nil {
			e.logger.Error("apply failed",
				slog.String("check", item.Check.DisplayName()),
				slog.String("uuid", item.Check.UUID),
				slog.Any("error", err))
			result.Failures = append(result.Failures, Failure{
				UUID: item.Check.UUID,
				Name: item.Check.DisplayName(),
				Err:  err,
			})
		}
		if tick != nil {
			tick()
		}
	}

	if result.Attempted > 0 {
		e.logger.Debug("api call latency",
			slog.Duration("p95", e.latencies.Percentile(95)),
			slog.Int("samples", e.latencies.Count()))
	}
	return result
}

func (e *Executor) applyItem(ctx context.Context, client Mutator, item plan.Item) error {
	if item.Update != nil {
		err := e.Do(ctx, func(ctx context.Context) error {
			_, err := client.UpdateCheck(ctx, item.Check.UUID, *item.Update)
			return err
		})
		if err != nil {
			return err
		}
		metrics.ObserveMutation("update")
	}
	if item.Pause {
		err := e.Do(ctx, func(ctx context.Context) error {
			_, err := client.PauseCheck(ctx, item.Check.UUID)
			return err
		})
		if err != nil {
			return err
		}
		metrics.ObserveMutation("pause")
	}
	return nil
}
