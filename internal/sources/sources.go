// Package sources assembles the configured job sources and the aggregator
// that searches them.
package sources

import (
	"log/slog"
	"strings"
	"time"

	"go-jobtailor/internal/aggregator"
	"go-jobtailor/internal/config"
	"go-jobtailor/internal/scraper"
	"go-jobtailor/internal/scraper/europeanjobdays"
	"go-jobtailor/internal/scraper/jobboard"
	"go-jobtailor/internal/scraper/visasponsor"
)

// Boards maps the config names of general job boards to their sites.
func Boards(names []string, client *jobboard.Client) []jobboard.Site {
	var sites []jobboard.Site
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "linkedin":
			sites = append(sites, jobboard.NewLinkedIn("", client))
		case "arbeitnow":
			sites = append(sites, jobboard.NewArbeitnow("", client))
		case "remotive":
			sites = append(sites, jobboard.NewRemotive("", client))
		}
	}
	return sites
}

// FromConfig returns the enabled sources in their merge order: the bulk board
// adapter first, then the browser driven sites.
func FromConfig(cfg *config.Config, logger *slog.Logger) []scraper.Source {
	var out []scraper.Source

	client := jobboard.NewClient(20*time.Second, jobboard.NewHostLimiter(1, 2))
	if sites := Boards(cfg.Sources.Boards, client); len(sites) > 0 {
		out = append(out, jobboard.New(sites, jobboard.Options{
			ResultsWanted: cfg.Search.ResultsWanted,
			HoursOld:      cfg.Search.RecencyHours,
			Country:       cfg.Search.Country,
		}, logger))
	}
	if !cfg.Sources.VisaSponsor.Disabled {
		out = append(out, visasponsor.New(cfg, logger))
	}
	if !cfg.Sources.EuropeanJobDays.Disabled {
		out = append(out, europeanjobdays.New(cfg, logger))
	}
	return out
}

func NewAggregator(cfg *config.Config, logger *slog.Logger) *aggregator.Aggregator {
	srcs := FromConfig(cfg, logger)
	names := make([]string, 0, len(srcs))
	for _, s := range srcs {
		names = append(names, s.Name())
	}
	logger.Info("sources registered", "sources", names)

	return aggregator.New(srcs,
		aggregator.WithLogger(logger),
		aggregator.WithSourceTimeout(cfg.Search.SourceTimeout),
		aggregator.WithRecencyFilter(!cfg.Search.DisableRecencyFilter),
	)
}
