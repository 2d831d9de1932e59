package models

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type JobStatus string

const (
	StatusSaved     JobStatus = "Saved"
	StatusDrafting  JobStatus = "Drafting"
	StatusApplied   JobStatus = "Applied"
	StatusInterview JobStatus = "Interview"
	StatusOffer     JobStatus = "Offer"
	StatusRejected  JobStatus = "Rejected"
)

var statuses = []JobStatus{StatusSaved, StatusDrafting, StatusApplied, StatusInterview, StatusOffer, StatusRejected}

// ParseStatus accepts any casing of a known status.
func ParseStatus(raw string) (JobStatus, error) {
	raw = strings.TrimSpace(raw)
	for _, s := range statuses {
		if strings.EqualFold(raw, string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

// TrackedJob is a listing the user chose to follow through the application
// pipeline.
type TrackedJob struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Status      JobStatus `json:"status"`
	DateSaved   string    `json:"date_saved"`
	Notes       string    `json:"notes"`
	MatchScore  int       `json:"match_score"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Normalize fills id, status and date_saved the way a fresh track request
// expects.
func (j *TrackedJob) Normalize(now time.Time) error {
	j.Title = strings.TrimSpace(j.Title)
	if j.Title == "" {
		return fmt.Errorf("title is required")
	}
	if j.ID == "" {
		j.ID = j.Title + j.Company
	}
	if j.Status == "" {
		j.Status = StatusSaved
	} else {
		s, err := ParseStatus(string(j.Status))
		if err != nil {
			return err
		}
		j.Status = s
	}
	if j.DateSaved == "" {
		j.DateSaved = now.Format("2006-01-02")
	}
	return nil
}

type SavedSearch struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

// MatchKey identifies equivalent searches: "Müller Köln" and "muller koln"
// share a key.
func (s SavedSearch) MatchKey() string {
	return foldKey(s.Query) + "\x00" + foldKey(s.Location)
}

func foldKey(v string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, strings.TrimSpace(v))
	if err != nil {
		stripped = v
	}
	return cases.Fold().String(strings.Join(strings.Fields(stripped), " "))
}
