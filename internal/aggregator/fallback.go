package aggregator

import (
	"fmt"

	"go-jobtailor/internal/scraper"
)

// FallbackSource marks placeholder listings so clients can tell them apart
// from real results.
const FallbackSource = "Mock"

// Fallback returns the single deterministic placeholder listing used when
// every source came back empty.
func Fallback(query, location string) []scraper.Job {
	job, _ := scraper.Finalize(scraper.Job{
		Title:       fmt.Sprintf("Senior %s (Mock/Fallback)", query),
		Company:     "Tech Corp GmbH",
		Location:    location,
		Description: "Scraping failed or was blocked. This is a fallback result. Real scraping can be brittle.",
		URL:         "https://example.com",
		Source:      FallbackSource,
	}, location)
	return []scraper.Job{job}
}

// IsFallback reports whether jobs is a placeholder result.
func IsFallback(jobs []scraper.Job) bool {
	return len(jobs) == 1 && jobs[0].Source == FallbackSource
}
