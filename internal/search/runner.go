package search

import (
	"context"
	"log/slog"

	"go-jobtailor/internal/dedup"
	"go-jobtailor/internal/models"
	"go-jobtailor/internal/scraper"
)

// Aggregator is the single search operation the runner depends on.
type Aggregator interface {
	Aggregate(ctx context.Context, query, location string, recencyHours int) []scraper.Job
}

// Runner re-executes saved searches and merges their results.
type Runner struct {
	agg          Aggregator
	recencyHours int
	logger       *slog.Logger
}

func NewRunner(agg Aggregator, recencyHours int, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{agg: agg, recencyHours: recencyHours, logger: logger}
}

// Run aggregates every search in order, tags each listing with the query that
// found it and drops repeats across searches by title+company. Searches not
// started before ctx is done are skipped.
func (r *Runner) Run(ctx context.Context, searches []models.SavedSearch) []scraper.Job {
	r.logger.Info("running saved searches", "count", len(searches))

	var all []scraper.Job
	for _, s := range searches {
		if ctx.Err() != nil {
			r.logger.Warn("saved search run interrupted", "error", ctx.Err())
			break
		}
		r.logger.Info("automated search", "query", s.Query, "location", s.Location)
		for _, job := range r.agg.Aggregate(ctx, s.Query, s.Location, r.recencyHours) {
			job.SourceQuery = s.Query
			all = append(all, job)
		}
	}

	unique := dedup.Unique(all)
	r.logger.Info("saved searches done", "found", len(all), "unique", len(unique))
	return unique
}
