package visasponsor

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
	Name           = "VisaSponsor"
	DefaultBaseURL = "https://visasponsor.jobs"

	cardSelector = "a:has(div[class*='job'])"
	// some layouts render the shadow card without the :has match, walk up to its link
	fallbackCardSelector = "div[class*='job'][class*='shadow'] >> xpath=ancestor::a[1]"
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
	baseURL := strings.TrimRight(cfg.Sources.VisaSponsor.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Scraper{
		baseURL:     baseURL,
		headless:    !cfg.Browser.ShowWindow,
		cookiesFile: cfg.CookieFile(cfg.Sources.VisaSponsor),
		debugger:    browser.NewScreenshotDebugger(cfg.Browser.ScreenshotDir, logger),
		logger:      logger,
		table:       cardTable(baseURL),
	}
}

func (s *Scraper) Name() string {
	return Name
}

func cardTable(baseURL string) browser.Table {
	return browser.Table{
		{Field: "title", Required: true, Strategies: []browser.Strategy{{Selector: ".fs-5.fw-medium"}}},
		{Field: "company", Default: scraper.UnknownCompany, Strategies: []browser.Strategy{{Selector: ".employer-name"}}},
		{Field: "url", Default: scraper.MissingURL, Strategies: []browser.Strategy{
			{Attr: "href", Transform: browser.AbsoluteURL(baseURL)},
		}},
		{Field: "location", Strategies: []browser.Strategy{{Selector: ".col-11.sub-font", Transform: trimListSeparator}}},
		{Field: "date", Strategies: []browser.Strategy{{Selector: "div.sub-font.mt-auto span:last-child"}}},
	}
}

// location spans read like "Munich, Bavaria, "
func trimListSeparator(s string) string {
	return strings.TrimRight(s, ", ")
}

// SearchURL maps the location onto the site's country filter.
func (s *Scraper) SearchURL(query, location string) string {
	country := strings.TrimSpace(location)
	if country == "" {
		country = "Germany"
	}
	v := url.Values{}
	v.Set("country", country)
	v.Set("keyword", query)
	v.Set("showMoreOptions", "false")
	return s.baseURL + "/api/jobs?" + v.Encode()
}

// Fetch drives one browser session. Any failure is logged and yields no jobs.
func (s *Scraper) Fetch(ctx context.Context, query, location string) []scraper.Job {
	log := s.logger.With("source", Name)
	log.Info("scraping", "query", query, "location", location)

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

	cards, err := browser.OpenListing(ctx, session.Page, browser.ListingPlan{
		Name:          Name,
		URL:           s.SearchURL(query, location),
		CardSelectors: []string{cardSelector, fallbackCardSelector},
		WaitSelector:  cardSelector,
		ScrollSteps:   2,
	}, s.logger, s.debugger)
	if err != nil {
		log.Error("scrape failed", "error", err)
		return nil
	}

	jobs := make([]scraper.Job, 0, len(cards))
	for i, card := range cards {
		job, err := s.parseCard(browser.LocatorElement{Locator: card, Timeout: 5000}, location)
		if err != nil {
			log.Warn("error parsing card", "index", i, "error", err)
			continue
		}
		jobs = append(jobs, job)
	}
	log.Info("scrape done", "found", len(jobs))
	return jobs
}

func (s *Scraper) parseCard(el browser.Element, location string) (scraper.Job, error) {
	fields, err := s.table.Extract(el)
	if err != nil {
		return scraper.Job{}, err
	}
	job, ok := scraper.Finalize(scraper.Job{
		Title:       fields["title"],
		Company:     fields["company"],
		Location:    fields["location"],
		Description: fmt.Sprintf("Visa Sponsored Job: %s at %s", fields["title"], fields["company"]),
		URL:         fields["url"],
		DatePosted:  fields["date"],
		Source:      Name,
	}, location)
	if !ok {
		return scraper.Job{}, browser.ErrMissingField
	}
	return job, nil
}
