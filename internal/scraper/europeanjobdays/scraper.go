package europeanjobdays

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"go-jobtailor/internal/browser"
	"go-jobtailor/internal/config"
	"go-jobtailor/internal/scraper"
)

const (
	Name           = "EuropeanJobDays"
	DefaultBaseURL = "https://europeanjobdays.eu"

	defaultCompany  = "European Employer"
	defaultLocation = "Europe"

	itemSelector  = ".teaser-item"
	titleSelector = ".teaser-item__text .heading a"
	metaGroup     = ".teaser-item__text .group.type-inline.mb-5"
)

type Scraper struct {
	baseURL     string
	headless    bool
	cookiesFile string
	debugger    *browser.ScreenshotDebugger
	logger      *slog.Logger
	table       browser.Table
}

func New(cfg *config.Config, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := strings.TrimRight(cfg.Sources.EuropeanJobDays.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Scraper{
		baseURL:     baseURL,
		headless:    !cfg.Browser.ShowWindow,
		cookiesFile: cfg.CookieFile(cfg.Sources.EuropeanJobDays),
		debugger:    browser.NewScreenshotDebugger(cfg.Browser.ScreenshotDir, logger),
		logger:      logger,
		table:       itemTable(baseURL),
	}
}

func (s *Scraper) Name() string {
	return Name
}

func itemTable(baseURL string) browser.Table {
	return browser.Table{
		{Field: "title", Required: true, Strategies: []browser.Strategy{{Selector: titleSelector}}},
		{Field: "url", Default: scraper.MissingURL, Strategies: []browser.Strategy{
			{Selector: titleSelector, Attr: "href", Transform: browser.AbsoluteURL(baseURL)},
		}},
		{Field: "company", Default: defaultCompany, Strategies: []browser.Strategy{
			{Selector: ".company-logo img", Attr: "alt"},
			{Selector: metaGroup + " span:nth-of-type(3) a"},
		}},
		{Field: "location", Default: defaultLocation, Strategies: []browser.Strategy{
			{Selector: "[class*='field']:has(> .field__label:has-text('Workplace')) > .field__value"},
		}},
		{Field: "date", Strategies: []browser.Strategy{{Selector: metaGroup + " span:first-child .field__value"}}},
	}
}

// SearchURL ignores location, the site has no location filter.
func (s *Scraper) SearchURL(query string) string {
	v := url.Values{}
	v.Set("keywords", query)
	return s.baseURL + "/en/jobs?" + v.Encode()
}

func (s *Scraper) Fetch(ctx context.Context, query, location string) []scraper.Job {
	log := s.logger.With("source", Name)
	log.Info("scraping", "query", query)

	cookies, err := browser.LoadCookies(s.cookiesFile)
	if err != nil {
		log.Warn("could not load cookies, continuing without", "file", s.cookiesFile, "error", err)
	}

	session, err := browser.Launch(ctx, browser.Options{Headless: s.headless, Cookies: cookies})
	if err != nil {
		log.Error("scrape failed", "error", err)
		return nil
	}
	defer session.Close()

	items, err := browser.OpenListing(ctx, session.Page, browser.ListingPlan{
		Name:          Name,
		URL:           s.SearchURL(query),
		CardSelectors: []string{itemSelector},
		WaitSelector:  itemSelector,
	}, s.logger, s.debugger)
	if err != nil {
		log.Error("scrape failed", "error", err)
		return nil
	}

	jobs := make([]scraper.Job, 0, len(items))
	for i, item := range items {
		job, err := s.parseItem(browser.LocatorElement{Locator: item, Timeout: 5000})
		if err != nil {
			log.Warn("error parsing item", "index", i, "error", err)
			continue
		}
		jobs = append(jobs, job)
	}
	log.Info("scrape done", "found", len(jobs))
	return jobs
}

// parseItem always yields a location, so the query location is never used.
func (s *Scraper) parseItem(el browser.Element) (scraper.Job, error) {
	fields, err := s.table.Extract(el)
	if err != nil {
		return scraper.Job{}, err
	}
	job, ok := scraper.Finalize(scraper.Job{
		Title:       fields["title"],
		Company:     fields["company"],
		Location:    fields["location"],
		Description: fmt.Sprintf("European Job Days: %s in %s", fields["title"], fields["location"]),
		URL:         fields["url"],
		DatePosted:  fields["date"],
		Source:      Name,
	}, defaultLocation)
	if !ok {
		return scraper.Job{}, browser.ErrMissingField
	}
	return job, nil
}
