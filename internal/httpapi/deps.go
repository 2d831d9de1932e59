package httpapi

import (
	"context"
	"log/slog"
	"time"

	"go-jobtailor/internal/models"
	"go-jobtailor/internal/scraper"
)

type Searcher interface {
	Aggregate(ctx context.Context, query, location string, recencyHours int) []scraper.Job
}

type SavedSearchRunner interface {
	Run(ctx context.Context, searches []models.SavedSearch) []scraper.Job
}

// Store persists tracked jobs and saved searches.
type Store interface {
	TrackJob(ctx context.Context, job *models.TrackedJob) (*models.TrackedJob, bool, error)
	ListTrackedJobs(ctx context.Context) ([]models.TrackedJob, error)
	UpdateJobStatus(ctx context.Context, id string, status models.JobStatus) (*models.TrackedJob, error)
	DeleteTrackedJob(ctx context.Context, id string) error

	SaveSearch(ctx context.Context, s *models.SavedSearch) (*models.SavedSearch, bool, error)
	ListSavedSearches(ctx context.Context) ([]models.SavedSearch, error)
	DeleteSavedSearch(ctx context.Context, id string) error
}

type Deps struct {
	Searcher Searcher
	Runner   SavedSearchRunner
	// Store may be nil, persistence routes then answer 503
	Store Store

	DefaultLocation string
	RecencyHours    int
	// RequestTimeout bounds a search request; exceeding it answers 504
	RequestTimeout time.Duration

	Logger *slog.Logger
}
