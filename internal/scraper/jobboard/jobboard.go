package jobboard

import (
	"context"
	"log/slog"
	"strings"

	"go-jobtailor/internal/scraper"

	"golang.org/x/sync/errgroup"
)

// Options are passed to every site of one bulk search.
type Options struct {
	ResultsWanted int
	// HoursOld is the upstream recency hint; sites without one ignore it
	HoursOld int
	Country  string
}

func (o *Options) defaults() {
	if o.ResultsWanted <= 0 {
		o.ResultsWanted = 10
	}
	if o.HoursOld <= 0 {
		o.HoursOld = 72
	}
	if o.Country == "" {
		o.Country = "Germany"
	}
}

type Query struct {
	Term          string
	Location      string
	Country       string
	ResultsWanted int
	HoursOld      int
}

// Site is one general job board.
type Site interface {
	Name() string
	Search(ctx context.Context, q Query) ([]Row, error)
}

// Scraper fans a query out to several boards at once and maps their raw rows
// to jobs. It satisfies scraper.Source.
type Scraper struct {
	sites  []Site
	opts   Options
	logger *slog.Logger
}

func New(sites []Site, opts Options, logger *slog.Logger) *Scraper {
	opts.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{sites: sites, opts: opts, logger: logger}
}

func (s *Scraper) Name() string {
	names := make([]string, 0, len(s.sites))
	for _, site := range s.sites {
		names = append(names, site.Name())
	}
	return "JobBoards(" + strings.Join(names, ",") + ")"
}

// Fetch never returns an error; a failing board is logged and contributes
// nothing. Rows keep board registration order.
func (s *Scraper) Fetch(ctx context.Context, query, location string) []scraper.Job {
	q := Query{
		Term:          query,
		Location:      location,
		Country:       s.opts.Country,
		ResultsWanted: s.opts.ResultsWanted,
		HoursOld:      s.opts.HoursOld,
	}
	s.logger.Info("searching job boards", "query", query, "location", location, "boards", len(s.sites))

	results := make([][]scraper.Job, len(s.sites))
	g, gctx := errgroup.WithContext(ctx)
	for i, site := range s.sites {
		g.Go(func() error {
			// errgroup does not recover, a panic here would take the process down
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("job board panicked", "board_index", i, "panic", r)
					results[i] = nil
				}
			}()
			name := site.Name()
			rows, err := site.Search(gctx, q)
			if err != nil {
				s.logger.Warn("job board failed", "board", name, "error", err)
				return nil
			}
			if len(rows) > q.ResultsWanted {
				rows = rows[:q.ResultsWanted]
			}
			results[i] = toJobs(rows, name, location)
			return nil
		})
	}
	_ = g.Wait()

	var jobs []scraper.Job
	for _, batch := range results {
		jobs = append(jobs, batch...)
	}
	s.logger.Info("job boards done", "found", len(jobs))
	return jobs
}

func toJobs(rows []Row, source, location string) []scraper.Job {
	out := make([]scraper.Job, 0, len(rows))
	for _, row := range rows {
		row = row.Clean()
		job, ok := scraper.Finalize(scraper.Job{
			Title:       row[FieldTitle],
			Company:     row[FieldCompany],
			Location:    row[FieldLocation],
			Description: row[FieldDescription],
			URL:         row[FieldURL],
			DatePosted:  row[FieldDatePosted],
			Source:      source,
		}, location)
		if !ok {
			continue
		}
		out = append(out, job)
	}
	return out
}
