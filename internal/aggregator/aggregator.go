// Package aggregator fans a search out to every registered source and merges
// the results into one filtered, deduplicated list.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go-jobtailor/internal/dedup"
	"go-jobtailor/internal/filter"
	"go-jobtailor/internal/scraper"

	"golang.org/x/sync/errgroup"
)

const DefaultSourceTimeout = 90 * time.Second

type Aggregator struct {
	sources       []scraper.Source
	logger        *slog.Logger
	sourceTimeout time.Duration
	filterRecent  bool
	now           func() time.Time
}

type Option func(*Aggregator)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithSourceTimeout bounds every single source call.
func WithSourceTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.sourceTimeout = d
		}
	}
}

// WithRecencyFilter toggles the date based post-filter. When disabled the
// aggregator relies on the recency hints each source passes upstream.
func WithRecencyFilter(enabled bool) Option {
	return func(a *Aggregator) { a.filterRecent = enabled }
}

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// New creates an aggregator. Sources are merged in the order given here.
func New(sources []scraper.Source, opts ...Option) *Aggregator {
	a := &Aggregator{
		sources:       sources,
		logger:        slog.Default(),
		sourceTimeout: DefaultSourceTimeout,
		filterRecent:  true,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate searches every source and returns the merged listings, or the
// fallback placeholder when nothing survives. It never fails.
func (a *Aggregator) Aggregate(ctx context.Context, query, location string, recencyHours int) []scraper.Job {
	if recencyHours <= 0 {
		recencyHours = filter.DefaultRecencyHours
	}
	log := a.logger.With("query", query, "location", location)

	//one slot per source so the merge order never depends on arrival order
	results := make([][]scraper.Job, len(a.sources))
	var g errgroup.Group
	for i, src := range a.sources {
		g.Go(func() error {
			results[i] = a.fetch(ctx, src, query, location)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		log.Warn("aggregation cancelled, discarding partial results", "error", err)
		return Fallback(query, location)
	}

	var merged []scraper.Job
	for _, jobs := range results {
		for _, job := range jobs {
			if job, ok := scraper.Finalize(job, location); ok {
				merged = append(merged, job)
			}
		}
	}
	total := len(merged)

	if a.filterRecent {
		merged = filter.FilterRecent(merged, recencyHours, a.now())
	}
	recent := len(merged)

	merged = dedup.Unique(merged)
	log.Info("aggregation finished", "collected", total, "recent", recent, "unique", len(merged))

	if len(merged) == 0 {
		log.Warn("all sources came back empty, serving fallback")
		return Fallback(query, location)
	}
	return merged
}

// fetch runs one source with a deadline and panic guard. A late result is
// dropped.
func (a *Aggregator) fetch(ctx context.Context, src scraper.Source, query, location string) []scraper.Job {
	name := sourceName(src)
	sctx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
	defer cancel()

	done := make(chan []scraper.Job, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error("source panicked", "source", name, "panic", r)
				done <- nil
			}
		}()
		done <- src.Fetch(sctx, query, location)
	}()

	start := time.Now()
	select {
	case jobs := <-done:
		a.logger.Info("source finished", "source", name, "jobs", len(jobs), "took", time.Since(start))
		return jobs
	case <-sctx.Done():
		a.logger.Warn("source timed out", "source", name, "error", sctx.Err())
		return nil
	}
}

// sourceName guards Name the same way Fetch is guarded.
func sourceName(src scraper.Source) (name string) {
	defer func() {
		if r := recover(); r != nil {
			name = fmt.Sprintf("%T", src)
		}
	}()
	return src.Name()
}
