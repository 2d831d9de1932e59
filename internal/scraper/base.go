// Define the canonical job listing and the interface all sources implement
// Ensure consistency

package scraper

import (
	"context"
	"strings"
)

const (
	UnknownCompany = "Unknown Company"
	MissingURL     = "#"
)

// Job is the canonical listing every source produces.
// DatePosted is the raw, source-specific date text; empty means unknown.
type Job struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	URL         string `json:"url"`
	DatePosted  string `json:"date_posted,omitempty"`
	Source      string `json:"source"`
	SourceQuery string `json:"source_query,omitempty"`
}

// Source fetches listings from one external system.
// Implementations never fail the caller: internal errors are logged and
// turned into an empty result.
type Source interface {
	//Name is the platform name (VisaSponsor, LinkedIn, ...)
	Name() string

	Fetch(ctx context.Context, query, location string) []Job
}

// Finalize trims every field and fills the sentinels. The second return is
// false when the listing has no title and must be dropped.
func Finalize(job Job, location string) (Job, bool) {
	job.Title = strings.TrimSpace(job.Title)
	if job.Title == "" {
		return Job{}, false
	}

	job.Company = strings.TrimSpace(job.Company)
	if job.Company == "" {
		job.Company = UnknownCompany
	}

	job.URL = strings.TrimSpace(job.URL)
	if job.URL == "" {
		job.URL = MissingURL
	}

	job.Location = strings.TrimSpace(job.Location)
	if job.Location == "" {
		job.Location = strings.TrimSpace(location)
	}
	if job.Location == "" {
		job.Location = "Unknown"
	}

	job.Description = strings.TrimSpace(job.Description)
	if job.Description == "" {
		job.Description = "View full details at " + job.URL
	}

	job.DatePosted = strings.TrimSpace(job.DatePosted)
	job.Source = strings.TrimSpace(job.Source)
	if job.Source == "" {
		job.Source = "Unknown"
	}
	return job, true
}
