package dedup

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go-jobtailor/internal/scraper"
)

// Key is the identity used to merge listings: plain title+company concatenation.
func Key(job scraper.Job) string {
	return job.Title + job.Company
}

// Unique drops every listing whose Key was already seen, keeping the first
// occurrence and the original order.
func Unique(jobs []scraper.Job) []scraper.Job {
	seen := make(map[string]struct{}, len(jobs))
	out := make([]scraper.Job, 0, len(jobs))
	for _, job := range jobs {
		k := Key(job)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, job)
	}
	return out
}

// seenEntry is the on-disk form, timestamps in unix milliseconds.
type seenEntry struct {
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
}

// JobCache remembers listing URLs already delivered to a notifier across runs.
// Entries older than the ttl are forgotten.
type JobCache struct {
	mu       sync.Mutex
	filePath string
	seen     map[string]time.Time
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

const DefaultTTL = 30 * 24 * time.Hour

// NewJobCache creates or loads a job cache stored in cacheDir/seen_jobs.json.
func NewJobCache(cacheDir string, logger *slog.Logger) *JobCache {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		logger.Warn("failed to create cache directory", "dir", cacheDir, "error", err)
	}
	cache := &JobCache{
		filePath: filepath.Join(cacheDir, "seen_jobs.json"),
		seen:     make(map[string]time.Time),
		ttl:      DefaultTTL,
		logger:   logger,
		now:      time.Now,
	}
	if err := cache.load(); err != nil {
		logger.Warn("starting with an empty seen jobs cache", "path", cache.filePath, "error", err)
	}
	return cache
}

// IsSeen checks if a URL has already been delivered
func (jc *JobCache) IsSeen(url string) bool {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	_, exists := jc.seen[url]
	return exists
}

// Unseen returns the listings whose URL is not in the cache. Placeholder URLs
// ("#") never count as seen.
func (jc *JobCache) Unseen(jobs []scraper.Job) []scraper.Job {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	var out []scraper.Job
	for _, job := range jobs {
		if _, seen := jc.seen[job.URL]; !seen || job.URL == scraper.MissingURL {
			out = append(out, job)
		}
	}
	return out
}

// Add records delivered URLs and persists the cache when something changed.
// Expired entries are swept before writing.
func (jc *JobCache) Add(urls []string) {
	jc.mu.Lock()
	defer jc.mu.Unlock()

	now := jc.now()
	added := 0
	for _, url := range urls {
		if url == "" || url == scraper.MissingURL {
			continue
		}
		if _, exists := jc.seen[url]; !exists {
			jc.seen[url] = now
			added++
		}
	}
	if added == 0 {
		return
	}

	jc.prune(now)
	if err := jc.save(); err != nil {
		jc.logger.Warn("failed to persist seen jobs", "path", jc.filePath, "error", err)
	}
}

// prune drops entries older than the ttl and reports how many went. Caller
// holds mu.
func (jc *JobCache) prune(now time.Time) int {
	cutoff := now.Add(-jc.ttl)
	removed := 0
	for url, at := range jc.seen {
		if !at.After(cutoff) {
			delete(jc.seen, url)
			removed++
		}
	}
	return removed
}

func (jc *JobCache) load() error {
	data, err := os.ReadFile(jc.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var entries []seenEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse %s: %w", jc.filePath, err)
	}
	for _, e := range entries {
		jc.seen[e.URL] = time.UnixMilli(e.Timestamp)
	}
	expired := jc.prune(jc.now())
	jc.logger.Info("loaded seen jobs", "loaded", len(jc.seen), "expired", expired)
	return nil
}

// save writes through a temp file so a crash never leaves half a cache.
// Caller holds mu.
func (jc *JobCache) save() error {
	entries := make([]seenEntry, 0, len(jc.seen))
	for url, at := range jc.seen {
		entries = append(entries, seenEntry{URL: url, Timestamp: at.UnixMilli()})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	tmp := jc.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, jc.filePath); err != nil {
		return err
	}
	jc.logger.Debug("saved seen jobs", "count", len(entries))
	return nil
}
