package filter

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"go-jobtailor/internal/scraper"
)

const DefaultRecencyHours = 72

// maxRelativeCount caps the N of "N hours/days ago"; anything larger is simply
// very old and must not overflow a time.Duration.
const maxRelativeCount = 100 * 365 * 24

var (
	isoDateRegex   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timestampRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}`)
	dmyDateRegex   = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	numberRegex    = regexp.MustCompile(`\d+`)
)

// NormalizeDate resolves raw date text into an absolute time relative to now.
// The second return is false when the text cannot be resolved. The checks run
// in a fixed order: ISO date, ISO timestamp, then DD-MM-YYYY, then relative
// phrases.
func NormalizeDate(raw string, now time.Time) (time.Time, bool) {
	dateStr := strings.TrimSpace(raw)
	if dateStr == "" || strings.EqualFold(dateStr, "none") {
		return time.Time{}, false
	}

	//Case 1: ISO format "2026-01-27"
	if isoDateRegex.MatchString(dateStr) {
		if t, err := time.Parse("2006-01-02", dateStr); err == nil {
			return t, true
		}
	}

	//Case 1b: ISO timestamp as served by the JSON boards, zone-less means UTC
	if timestampRegex.MatchString(dateStr) {
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
			if t, err := time.Parse(layout, dateStr); err == nil {
				return t, true
			}
		}
	}

	//Case 2: DD-MM-YYYY as shown by visasponsor cards
	if dmyDateRegex.MatchString(dateStr) {
		if t, err := time.Parse("02-01-2006", dateStr); err == nil {
			return t, true
		}
	}

	//Case 3: relative phrases
	lower := strings.ToLower(dateStr)
	switch {
	case strings.Contains(lower, "just now"), strings.Contains(lower, "today"):
		return now, true
	case strings.Contains(lower, "yesterday"):
		return now.AddDate(0, 0, -1), true
	case strings.Contains(lower, "hour"):
		return now.Add(-time.Duration(leadingCount(lower)) * time.Hour), true
	case strings.Contains(lower, "minute"):
		// minute precision is meaningless against an hours-wide window
		return now, true
	case strings.Contains(lower, "day"):
		return now.AddDate(0, 0, -leadingCount(lower)), true
	}

	return time.Time{}, false
}

// leadingCount returns the first integer in s, or 1 for phrases such as
// "an hour ago" that carry no digits.
func leadingCount(s string) int {
	match := numberRegex.FindString(s)
	if match == "" {
		return 1
	}
	n, err := strconv.Atoi(match)
	if err != nil || n > maxRelativeCount {
		// only out-of-range digits fail Atoi here
		return maxRelativeCount
	}
	return n
}

// IsRecentJob reports whether the listing was posted at or after now-window.
// Unresolvable dates are kept.
func IsRecentJob(dateStr string, now time.Time, window time.Duration) bool {
	posted, ok := NormalizeDate(dateStr, now)
	if !ok {
		return true
	}
	return !posted.Before(now.Add(-window))
}

// FilterRecent keeps listings posted within the last recencyHours, preserving order.
func FilterRecent(jobs []scraper.Job, recencyHours int, now time.Time) []scraper.Job {
	if recencyHours <= 0 {
		recencyHours = DefaultRecencyHours
	}
	window := time.Duration(recencyHours) * time.Hour

	kept := make([]scraper.Job, 0, len(jobs))
	for _, job := range jobs {
		if IsRecentJob(job.DatePosted, now, window) {
			kept = append(kept, job)
		}
	}
	return kept
}
