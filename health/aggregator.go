package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// AggregatorConfig configures an Aggregator.
type AggregatorConfig struct {
	// Timeout bounds one pass over all checks. A check still running at
	// the deadline is reported unhealthy with ErrCheckTimeout.
	// Default: 10 seconds
	Timeout time.Duration

	// MaxConcurrency bounds how many checks run at once. Zero runs all
	// of them concurrently.
	MaxConcurrency int

	// Clock stamps reports. Default: time.Now
	Clock func() time.Time
}

// Report is the outcome of one pass over every registered check.
type Report struct {
	Status    Status
	CheckedAt time.Time
	Results   map[string]Result
}

// Aggregator runs a set of named checks and folds them into one status:
// the worst result wins and an empty set is healthy.
type Aggregator struct {
	config AggregatorConfig

	mu     sync.RWMutex
	checks []Checker
}

// NewAggregator creates an aggregator holding checks.
func NewAggregator(config AggregatorConfig, checks ...Checker) *Aggregator {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	a := &Aggregator{config: config}
	for _, c := range checks {
		a.Register(c)
	}
	return a
}

// Register adds c, replacing a checker with the same name in place.
func (a *Aggregator) Register(c Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, existing := range a.checks {
		if existing.Name() == c.Name() {
			a.checks[i] = c
			return
		}
	}
	a.checks = append(a.checks, c)
}

// Names lists the registered checks in registration order.
func (a *Aggregator) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, len(a.checks))
	for i, c := range a.checks {
		names[i] = c.Name()
	}
	return names
}

// Run executes the check registered as name.
func (a *Aggregator) Run(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	var found Checker
	for _, c := range a.checks {
		if c.Name() == name {
			found = c
			break
		}
	}
	a.mu.RUnlock()
	if found == nil {
		return Result{}, ErrUnknownCheck
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()
	return run(ctx, found), nil
}

// RunAll executes every check concurrently.
func (a *Aggregator) RunAll(ctx context.Context) Report {
	a.mu.RLock()
	checks := append([]Checker(nil), a.checks...)
	a.mu.RUnlock()

	report := Report{
		Status:    StatusHealthy,
		CheckedAt: a.config.Clock(),
		Results:   make(map[string]Result, len(checks)),
	}
	if len(checks) == 0 {
		return report
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	results := make([]Result, len(checks))
	var g errgroup.Group
	if a.config.MaxConcurrency > 0 {
		g.SetLimit(a.config.MaxConcurrency)
	}
	for i, c := range checks {
		g.Go(func() error {
			results[i] = run(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	for i, c := range checks {
		report.Results[c.Name()] = results[i]
		report.Status = max(report.Status, results[i].Status)
	}
	return report
}

// run executes c and gives up when ctx ends, so a check that ignores
// its context cannot stall the report.
func run(ctx context.Context, c Checker) Result {
	start := time.Now()
	done := make(chan Result, 1)
	go func() { done <- c.Check(ctx) }()

	select {
	case r := <-done:
		r.Duration = time.Since(start)
		return r
	case <-ctx.Done():
		r := Unhealthy("check timed out", ErrCheckTimeout)
		r.Duration = time.Since(start)
		return r
	}
}
